package websocket

import (
	"time"

	"starmf/internal/models"
)

// MessageType определяет тип WebSocket сообщения
type MessageType string

// Типы WebSocket сообщений
const (
	// MessageTypeOrderUpdate - изменение статуса поручения.
	// Отправляется при каждом переходе машины состояний:
	// SUBMITTED, REJECTED, FAILED, CANCELLED
	MessageTypeOrderUpdate MessageType = "orderUpdate"
)

// BaseMessage - базовая структура для всех WebSocket сообщений
type BaseMessage struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
}

// OrderUpdateMessage - сообщение об изменении поручения.
// Чувствительных полей протокола (токены, учетные данные) в поручении
// нет: наружу уходит то же представление, что и в REST API.
type OrderUpdateMessage struct {
	BaseMessage
	OrderID int              `json:"order_id"`
	Data    *OrderUpdateData `json:"data"`
}

// OrderUpdateData - данные обновления поручения
type OrderUpdateData struct {
	ClientID       string     `json:"client_id"`
	OrderType      string     `json:"order_type"`
	SchemeCode     string     `json:"scheme_code"`
	Status         string     `json:"status"`
	BseOrderNumber string     `json:"bse_order_number,omitempty"`
	ResponseCode   string     `json:"response_code,omitempty"`
	ResponseMsg    string     `json:"response_msg,omitempty"`
	SubmittedAt    *time.Time `json:"submitted_at,omitempty"`
}

// NewOrderUpdateMessage создает сообщение обновления поручения
func NewOrderUpdateMessage(order *models.Order) *OrderUpdateMessage {
	return &OrderUpdateMessage{
		BaseMessage: BaseMessage{
			Type:      MessageTypeOrderUpdate,
			Timestamp: time.Now(),
		},
		OrderID: order.ID,
		Data: &OrderUpdateData{
			ClientID:       order.ClientID,
			OrderType:      order.OrderType,
			SchemeCode:     order.SchemeCode,
			Status:         order.Status,
			BseOrderNumber: order.BseOrderNumber,
			ResponseCode:   order.BseResponseCode,
			ResponseMsg:    order.BseResponseMsg,
			SubmittedAt:    order.SubmittedAt,
		},
	}
}
