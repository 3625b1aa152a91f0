package models

import "time"

// APICallLog - аудиторская запись обращения к API биржи.
// Тело запроса сохраняется в санитизированном виде: пароль/токен
// в позиции Password и PAN маскируются до записи.
type APICallLog struct {
	ID           int       `json:"id" db:"id"`
	AdvisorID    string    `json:"advisor_id" db:"advisor_id"`
	APIName      string    `json:"api_name" db:"api_name"`
	Endpoint     string    `json:"endpoint" db:"endpoint"`
	RequestBody  string    `json:"request_body" db:"request_body"`
	ResponseBody string    `json:"response_body" db:"response_body"`
	StatusCode   int       `json:"status_code" db:"status_code"`
	LatencyMs    int64     `json:"latency_ms" db:"latency_ms"`
	ErrorMessage string    `json:"error_message,omitempty" db:"error_message"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
