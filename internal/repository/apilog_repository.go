package repository

import (
	"database/sql"

	"starmf/internal/models"
)

// APILogRepository - работа с таблицей bse_api_logs (аудит обращений к бирже)
type APILogRepository struct {
	db *sql.DB
}

// NewAPILogRepository создает новый экземпляр репозитория
func NewAPILogRepository(db *sql.DB) *APILogRepository {
	return &APILogRepository{db: db}
}

// Create сохраняет аудиторскую запись. Тела запроса/ответа приходят
// уже санитизированными (токены и PAN замаскированы транспортом).
func (r *APILogRepository) Create(entry *models.APICallLog) error {
	query := `
		INSERT INTO bse_api_logs (advisor_id, api_name, endpoint, request_body, response_body, status_code, latency_ms, error_message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		RETURNING id`

	return r.db.QueryRow(
		query,
		entry.AdvisorID,
		entry.APIName,
		entry.Endpoint,
		entry.RequestBody,
		entry.ResponseBody,
		entry.StatusCode,
		entry.LatencyMs,
		entry.ErrorMessage,
	).Scan(&entry.ID)
}

// GetRecent возвращает последние N записей аудита для советника
func (r *APILogRepository) GetRecent(advisorID string, limit int) ([]*models.APICallLog, error) {
	query := `
		SELECT id, advisor_id, api_name, endpoint, request_body, response_body, status_code, latency_ms, error_message, created_at
		FROM bse_api_logs
		WHERE advisor_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.db.Query(query, advisorID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.APICallLog
	for rows.Next() {
		entry := &models.APICallLog{}
		err := rows.Scan(
			&entry.ID,
			&entry.AdvisorID,
			&entry.APIName,
			&entry.Endpoint,
			&entry.RequestBody,
			&entry.ResponseBody,
			&entry.StatusCode,
			&entry.LatencyMs,
			&entry.ErrorMessage,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}
