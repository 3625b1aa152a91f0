package models

import "time"

// Client представляет клиента финансового советника.
// Поручения создаются советником от имени клиента; владение проверяется
// перед любым сетевым взаимодействием.
type Client struct {
	ID        string    `json:"id" db:"id"`                 // UCC код клиента в BSE
	AdvisorID string    `json:"advisor_id" db:"advisor_id"`
	Name      string    `json:"name" db:"name"`
	PAN       string    `json:"-" db:"pan"` // не отдаём наружу
	KYCStatus string    `json:"kyc_status" db:"kyc_status"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
