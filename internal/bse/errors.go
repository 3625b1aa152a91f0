package bse

import (
	"errors"
	"fmt"
)

// Ошибки разбора ответа биржи. Фатальны: повторный запрос не выполняется,
// оркестратор переводит поручение в FAILED через guarded-обновление.
var (
	ErrEmptyResponse     = errors.New("bse: empty pipe response")
	ErrMalformedEnvelope = errors.New("bse: malformed soap envelope")
	ErrMissingBody       = errors.New("bse: soap body not found")
	ErrMissingResult     = errors.New("bse: result element not found")
)

// RejectionError - биржа обработала запрос, но отклонила поручение.
// Несет код и сообщение биржи в неизменном виде. К моменту возврата
// этой ошибки вызывающему поручение уже персистировано как REJECTED.
type RejectionError struct {
	Code    string
	Message string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("bse: order rejected: code=%s message=%s", e.Code, e.Message)
}

// IsParseError возвращает true для ошибок разбора конверта/ответа
func IsParseError(err error) bool {
	return errors.Is(err, ErrEmptyResponse) ||
		errors.Is(err, ErrMalformedEnvelope) ||
		errors.Is(err, ErrMissingBody) ||
		errors.Is(err, ErrMissingResult)
}

// TransportError - сетевая ошибка при обращении к бирже.
// Оркестратор трактует её как невосстановимый локальный сбой
// (guarded-переход в FAILED), автоматических повторов нет:
// повторная отправка создает риск дублирования поручения.
type TransportError struct {
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("bse: transport failure for %s: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
