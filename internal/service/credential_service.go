package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"starmf/internal/bse"
	"starmf/internal/models"
	"starmf/internal/repository"
	"starmf/pkg/crypto"
	"starmf/pkg/utils"
)

// Ошибки сервиса учетных данных
var (
	ErrCredentialNotFound = errors.New("member credentials not configured")
	ErrCredentialInactive = errors.New("member credentials are deactivated")
	ErrCredentialFields   = errors.New("member id, user id, password and pass key are required")
)

// SetCredentialsRequest - запрос на сохранение учетных данных участника
type SetCredentialsRequest struct {
	MemberID string `json:"member_id"`
	UserID   string `json:"user_id"`
	Password string `json:"password"`
	PassKey  string `json:"pass_key"`
	ARN      string `json:"arn"`
	EUIN     string `json:"euin,omitempty"`
}

// CredentialStatus - состояние учетных данных без чувствительных полей
type CredentialStatus struct {
	Configured bool       `json:"configured"`
	MemberID   string     `json:"member_id,omitempty"`
	UserID     string     `json:"user_id,omitempty"`
	ARN        string     `json:"arn,omitempty"`
	EUIN       string     `json:"euin,omitempty"`
	Active     bool       `json:"active"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
}

// CredentialService хранит и выдает учетные данные участника BSE.
// Пароль и passkey персистятся только зашифрованными (AES-256-GCM);
// расшифрованные значения живут на стеке одного запроса.
type CredentialService struct {
	repo   CredentialRepositoryInterface
	encKey []byte
	logger *zap.Logger
}

// NewCredentialService создает сервис учетных данных.
// encKey - 32-байтный ключ AES-256.
func NewCredentialService(repo CredentialRepositoryInterface, encKey []byte, logger *zap.Logger) (*CredentialService, error) {
	if err := crypto.ValidateKey(encKey); err != nil {
		return nil, fmt.Errorf("encryption key: %w", err)
	}
	return &CredentialService{repo: repo, encKey: encKey, logger: logger}, nil
}

var _ bse.CredentialProvider = (*CredentialService)(nil)

// Decrypted возвращает расшифрованные учетные данные советника
func (s *CredentialService) Decrypted(ctx context.Context, advisorID string) (*models.MemberCredentials, error) {
	cred, err := s.repo.GetByAdvisor(advisorID)
	if err != nil {
		if errors.Is(err, repository.ErrCredentialNotFound) {
			return nil, ErrCredentialNotFound
		}
		return nil, fmt.Errorf("load credentials: %w", err)
	}
	if !cred.Active {
		return nil, ErrCredentialInactive
	}

	password, err := crypto.Decrypt(cred.PasswordEnc, s.encKey)
	if err != nil {
		return nil, fmt.Errorf("decrypt password: %w", err)
	}
	passKey, err := crypto.Decrypt(cred.PassKeyEnc, s.encKey)
	if err != nil {
		return nil, fmt.Errorf("decrypt pass key: %w", err)
	}

	if err := s.repo.TouchLastUsed(advisorID); err != nil {
		// Не фатально: факт использования не влияет на запрос
		s.logger.Warn("touch last_used failed",
			zap.String("advisor_id", advisorID), zap.Error(err))
	}

	return &models.MemberCredentials{
		MemberID: cred.MemberID,
		UserID:   cred.UserIDBse,
		Password: password,
		PassKey:  passKey,
		ARN:      cred.ARN,
		EUIN:     cred.EUIN,
	}, nil
}

// SetCredentials шифрует и сохраняет учетные данные советника
func (s *CredentialService) SetCredentials(advisorID string, req *SetCredentialsRequest) error {
	if req.MemberID == "" || req.UserID == "" || req.Password == "" || req.PassKey == "" {
		return ErrCredentialFields
	}
	if err := utils.ValidateARN(req.ARN); err != nil {
		return fmt.Errorf("%w: %v", ErrCredentialFields, err)
	}
	if err := utils.ValidateEUIN(req.EUIN); err != nil {
		return fmt.Errorf("%w: %v", ErrCredentialFields, err)
	}

	passwordEnc, err := crypto.Encrypt(req.Password, s.encKey)
	if err != nil {
		return fmt.Errorf("encrypt password: %w", err)
	}
	passKeyEnc, err := crypto.Encrypt(req.PassKey, s.encKey)
	if err != nil {
		return fmt.Errorf("encrypt pass key: %w", err)
	}

	cred := &models.MemberCredential{
		AdvisorID:   advisorID,
		MemberID:    req.MemberID,
		UserIDBse:   req.UserID,
		PasswordEnc: passwordEnc,
		PassKeyEnc:  passKeyEnc,
		ARN:         req.ARN,
		EUIN:        req.EUIN,
		Active:      true,
	}
	if err := s.repo.Upsert(cred); err != nil {
		return fmt.Errorf("persist credentials: %w", err)
	}

	s.logger.Info("member credentials updated",
		zap.String("advisor_id", advisorID),
		zap.String("member_id", req.MemberID))
	return nil
}

// Status возвращает состояние учетных данных без чувствительных полей
func (s *CredentialService) Status(advisorID string) (*CredentialStatus, error) {
	cred, err := s.repo.GetByAdvisor(advisorID)
	if err != nil {
		if errors.Is(err, repository.ErrCredentialNotFound) {
			return &CredentialStatus{Configured: false}, nil
		}
		return nil, fmt.Errorf("load credentials: %w", err)
	}
	updatedAt := cred.UpdatedAt
	return &CredentialStatus{
		Configured: true,
		MemberID:   cred.MemberID,
		UserID:     cred.UserIDBse,
		ARN:        cred.ARN,
		EUIN:       cred.EUIN,
		Active:     cred.Active,
		UpdatedAt:  &updatedAt,
		LastUsedAt: cred.LastUsedAt,
	}, nil
}
