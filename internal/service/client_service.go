package service

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"starmf/internal/models"
	"starmf/internal/repository"
	"starmf/pkg/utils"
)

// Ошибки сервиса клиентов
var (
	ErrClientExists = errors.New("client with this ucc code already registered")
	ErrClientFields = errors.New("ucc code, name and pan are required")
)

// RegisterClientRequest - запрос на регистрацию клиента советника.
// UCC код должен совпадать с зарегистрированным в BSE: шлюз не ведет
// UCC-регистрацию, он ссылается на уже существующий код.
type RegisterClientRequest struct {
	UCC       string `json:"ucc"`
	Name      string `json:"name"`
	PAN       string `json:"pan"`
	KYCStatus string `json:"kyc_status,omitempty"` // default Y
}

// ClientService ведет реестр клиентов советника. Поручение принимается
// только от имени клиента из этого реестра.
type ClientService struct {
	repo   ClientRepositoryInterface
	logger *zap.Logger
}

// NewClientService создает сервис клиентов
func NewClientService(repo ClientRepositoryInterface, logger *zap.Logger) *ClientService {
	return &ClientService{repo: repo, logger: logger}
}

// Register регистрирует клиента за советником
func (s *ClientService) Register(advisorID string, req *RegisterClientRequest) (*models.Client, error) {
	if req.UCC == "" || req.Name == "" || req.PAN == "" {
		return nil, ErrClientFields
	}
	if err := utils.ValidateClientCode(req.UCC); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrClientFields, err)
	}
	if err := utils.ValidatePAN(req.PAN); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrClientFields, err)
	}

	if existing, err := s.repo.GetByID(req.UCC); err == nil && existing != nil {
		return nil, ErrClientExists
	} else if err != nil && !errors.Is(err, repository.ErrClientNotFound) {
		return nil, fmt.Errorf("check client: %w", err)
	}

	kyc := req.KYCStatus
	if kyc == "" {
		kyc = "Y"
	}
	client := &models.Client{
		ID:        req.UCC,
		AdvisorID: advisorID,
		Name:      req.Name,
		PAN:       req.PAN,
		KYCStatus: kyc,
	}
	if err := s.repo.Create(client); err != nil {
		return nil, fmt.Errorf("persist client: %w", err)
	}

	s.logger.Info("client registered",
		zap.String("advisor_id", advisorID),
		zap.String("client_id", client.ID))
	return client, nil
}

// List возвращает клиентов советника
func (s *ClientService) List(advisorID string) ([]*models.Client, error) {
	return s.repo.GetByAdvisor(advisorID)
}

// Get возвращает клиента советника по UCC коду
func (s *ClientService) Get(advisorID, clientID string) (*models.Client, error) {
	client, err := s.repo.GetByID(clientID)
	if err != nil {
		if errors.Is(err, repository.ErrClientNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}
	if client.AdvisorID != advisorID {
		// Чужой клиент неотличим от несуществующего
		return nil, ErrClientNotFound
	}
	return client, nil
}
