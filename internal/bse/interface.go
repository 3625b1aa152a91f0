package bse

import (
	"context"

	"starmf/internal/models"
)

// CredentialProvider возвращает расшифрованные учетные данные участника
// для советника. Расшифровка выполняется вне ядра протокола.
type CredentialProvider interface {
	Decrypted(ctx context.Context, advisorID string) (*models.MemberCredentials, error)
}

// TokenProvider выдает короткоживущий токен подачи поручений.
// Токен потребляется ровно один раз на запрос, не кэшируется,
// не персистится и не логируется.
type TokenProvider interface {
	OrderEntryToken(ctx context.Context, advisorID string) (string, error)
}

// CallRequest описывает один SOAP-запрос к бирже
type CallRequest struct {
	Endpoint  string   // относительный путь endpoint'а
	Action    string   // SOAP action операции
	Body      string   // тело операции (без внешнего конверта)
	AdvisorID string   // для аудиторской записи
	APIName   string   // имя операции для аудита и метрик
	Secrets   []string // значения, маскируемые в аудиторской записи (токены)
}

// Transport отправляет конверт на endpoint биржи и возвращает сырое
// тело ответа. Любая сетевая ошибка возвращается как *TransportError.
type Transport interface {
	Call(ctx context.Context, req CallRequest) (string, error)
}

// Simulator подменяет транспорт в sandbox-режиме: по идентификатору
// операции возвращает синтетическую pipe-строку той же формы,
// что и живая биржа
type Simulator interface {
	Response(op string) string
}

// APILogRecorder сохраняет аудиторскую запись обращения к бирже
type APILogRecorder interface {
	Create(entry *models.APICallLog) error
}
