package service

import (
	"time"

	"starmf/internal/models"
	"starmf/internal/repository"
)

// OrderRepositoryInterface определяет интерфейс репозитория поручений.
// UpdateStatusIf - атомарный compare-and-set по статусу: обновление
// срабатывает только если текущий статус равен ожидаемому.
type OrderRepositoryInterface interface {
	Create(order *models.Order) error
	GetByID(id int) (*models.Order, error)
	GetByAdvisor(advisorID string, f repository.OrderFilters) ([]*models.Order, error)
	UpdateSubmitted(id int, bseOrderNumber, code, message string, submittedAt time.Time) error
	UpdateRejected(id int, code, message string) error
	UpdateCancelled(id int, code, message string) error
	UpdateStatusIf(id int, fromStatus, toStatus, message string) (bool, error)
	CountByStatus(advisorID, status string) (int, error)
}

// ClientRepositoryInterface определяет интерфейс репозитория клиентов
type ClientRepositoryInterface interface {
	Create(client *models.Client) error
	GetByID(id string) (*models.Client, error)
	GetByAdvisor(advisorID string) ([]*models.Client, error)
}

// CredentialRepositoryInterface определяет интерфейс репозитория
// учетных данных участника
type CredentialRepositoryInterface interface {
	GetByAdvisor(advisorID string) (*models.MemberCredential, error)
	Upsert(cred *models.MemberCredential) error
	TouchLastUsed(advisorID string) error
}

// Проверяем, что реальные репозитории реализуют интерфейсы
var _ OrderRepositoryInterface = (*repository.OrderRepository)(nil)
var _ ClientRepositoryInterface = (*repository.ClientRepository)(nil)
var _ CredentialRepositoryInterface = (*repository.CredentialRepository)(nil)

// OrderBroadcaster - интерфейс отправки обновлений поручений через WebSocket
type OrderBroadcaster interface {
	BroadcastOrderUpdate(order *models.Order)
}
