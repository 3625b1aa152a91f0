package repository

import (
	"database/sql"
	"errors"

	"starmf/internal/models"
)

// Ошибки репозитория учетных данных
var (
	ErrCredentialNotFound = errors.New("member credential not found")
)

// CredentialRepository - работа с таблицей member_credentials.
// Пароль и passkey попадают сюда только в зашифрованном виде.
type CredentialRepository struct {
	db *sql.DB
}

// NewCredentialRepository создает новый экземпляр репозитория
func NewCredentialRepository(db *sql.DB) *CredentialRepository {
	return &CredentialRepository{db: db}
}

// GetByAdvisor возвращает учетные данные участника для советника
func (r *CredentialRepository) GetByAdvisor(advisorID string) (*models.MemberCredential, error) {
	query := `
		SELECT advisor_id, member_id, user_id_bse, password_enc, pass_key_enc, arn, euin, active, updated_at, last_used_at
		FROM member_credentials
		WHERE advisor_id = $1`

	cred := &models.MemberCredential{}
	err := r.db.QueryRow(query, advisorID).Scan(
		&cred.AdvisorID,
		&cred.MemberID,
		&cred.UserIDBse,
		&cred.PasswordEnc,
		&cred.PassKeyEnc,
		&cred.ARN,
		&cred.EUIN,
		&cred.Active,
		&cred.UpdatedAt,
		&cred.LastUsedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCredentialNotFound
		}
		return nil, err
	}

	return cred, nil
}

// Upsert создает или обновляет учетные данные советника
func (r *CredentialRepository) Upsert(cred *models.MemberCredential) error {
	query := `
		INSERT INTO member_credentials (advisor_id, member_id, user_id_bse, password_enc, pass_key_enc, arn, euin, active, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		ON CONFLICT (advisor_id) DO UPDATE
		SET member_id = EXCLUDED.member_id,
			user_id_bse = EXCLUDED.user_id_bse,
			password_enc = EXCLUDED.password_enc,
			pass_key_enc = EXCLUDED.pass_key_enc,
			arn = EXCLUDED.arn,
			euin = EXCLUDED.euin,
			active = EXCLUDED.active,
			updated_at = NOW()`

	_, err := r.db.Exec(
		query,
		cred.AdvisorID,
		cred.MemberID,
		cred.UserIDBse,
		cred.PasswordEnc,
		cred.PassKeyEnc,
		cred.ARN,
		cred.EUIN,
		cred.Active,
	)
	return err
}

// TouchLastUsed отмечает момент последнего обращения к бирже
func (r *CredentialRepository) TouchLastUsed(advisorID string) error {
	query := `UPDATE member_credentials SET last_used_at = NOW() WHERE advisor_id = $1`

	result, err := r.db.Exec(query, advisorID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrCredentialNotFound
	}

	return nil
}
