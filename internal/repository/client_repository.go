package repository

import (
	"database/sql"
	"errors"

	"starmf/internal/models"
)

// Ошибки репозитория клиентов
var (
	ErrClientNotFound = errors.New("client not found")
)

// ClientRepository - работа с таблицей clients
type ClientRepository struct {
	db *sql.DB
}

// NewClientRepository создает новый экземпляр репозитория
func NewClientRepository(db *sql.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

// Create создает запись о клиенте
func (r *ClientRepository) Create(client *models.Client) error {
	query := `
		INSERT INTO clients (id, advisor_id, name, pan, kyc_status, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())`

	_, err := r.db.Exec(query, client.ID, client.AdvisorID, client.Name, client.PAN, client.KYCStatus)
	return err
}

// GetByID возвращает клиента по ID (UCC коду)
func (r *ClientRepository) GetByID(id string) (*models.Client, error) {
	query := `
		SELECT id, advisor_id, name, pan, kyc_status, created_at
		FROM clients
		WHERE id = $1`

	client := &models.Client{}
	err := r.db.QueryRow(query, id).Scan(
		&client.ID,
		&client.AdvisorID,
		&client.Name,
		&client.PAN,
		&client.KYCStatus,
		&client.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}

	return client, nil
}

// GetByAdvisor возвращает всех клиентов советника
func (r *ClientRepository) GetByAdvisor(advisorID string) ([]*models.Client, error) {
	query := `
		SELECT id, advisor_id, name, pan, kyc_status, created_at
		FROM clients
		WHERE advisor_id = $1
		ORDER BY name`

	rows, err := r.db.Query(query, advisorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clients []*models.Client
	for rows.Next() {
		client := &models.Client{}
		err := rows.Scan(
			&client.ID,
			&client.AdvisorID,
			&client.Name,
			&client.PAN,
			&client.KYCStatus,
			&client.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		clients = append(clients, client)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return clients, nil
}
