package service

import "starmf/internal/models"

// ValidTransitions определяет допустимые переходы статуса поручения.
// Запись создается в CREATED до любого сетевого вызова; после ответа
// биржи возможен ровно один переход на попытку подачи. Переход в FAILED
// выполняется только через условное обновление (guard на CREATED).
var ValidTransitions = map[string][]string{
	models.OrderStatusCreated:        {models.OrderStatusSubmitted, models.OrderStatusRejected, models.OrderStatusFailed},
	models.OrderStatusSubmitted:      {models.OrderStatusAccepted, models.OrderStatusPaymentPending, models.OrderStatusCancelled},
	models.OrderStatusAccepted:       {models.OrderStatusPaymentPending, models.OrderStatusCancelled},
	models.OrderStatusPaymentPending: {models.OrderStatusCancelled},
	// REJECTED, FAILED, CANCELLED - терминальные, переходов нет
}

// CanTransition проверяет допустимость перехода
func CanTransition(from, to string) bool {
	allowed, ok := ValidTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// StatusInfo возвращает описание статуса для UI
func StatusInfo(s string) string {
	switch s {
	case models.OrderStatusCreated:
		return "Поручение создано, отправка на биржу не завершена"
	case models.OrderStatusSubmitted:
		return "Поручение отправлено на биржу"
	case models.OrderStatusAccepted:
		return "Поручение принято биржей"
	case models.OrderStatusPaymentPending:
		return "Ожидается оплата"
	case models.OrderStatusRejected:
		return "Поручение отклонено биржей"
	case models.OrderStatusFailed:
		return "Сбой отправки поручения"
	case models.OrderStatusCancelled:
		return "Поручение отменено"
	default:
		return "Неизвестный статус"
	}
}
