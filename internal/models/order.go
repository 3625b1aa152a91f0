package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order представляет поручение на сделку с паевым фондом,
// отправляемое в торговую систему BSE Star MF
type Order struct {
	ID               int             `json:"id" db:"id"`
	ClientID         string          `json:"client_id" db:"client_id"`
	AdvisorID        string          `json:"advisor_id" db:"advisor_id"`
	OrderType        string          `json:"order_type" db:"order_type"`                 // PURCHASE, REDEMPTION, SWITCH, SPREAD, SIP
	TransCode        string          `json:"trans_code" db:"trans_code"`                 // NEW, CXL
	BuySell          string          `json:"buy_sell" db:"buy_sell"`                     // P, R
	BuySellType      string          `json:"buy_sell_type" db:"buy_sell_type"`           // FRESH, ADDITIONAL
	SchemeCode       string          `json:"scheme_code" db:"scheme_code"`
	SwitchSchemeCode string          `json:"switch_scheme_code,omitempty" db:"switch_scheme_code"` // только для SWITCH (целевая схема)
	Amount           decimal.Decimal `json:"amount" db:"amount"`                         // ноль = не задано
	Units            decimal.Decimal `json:"units" db:"units"`                           // ноль = не задано
	DPTxnMode        string          `json:"dp_txn_mode" db:"dp_txn_mode"`               // P (physical) / D (demat)
	FolioNumber      string          `json:"folio_number,omitempty" db:"folio_number"`
	ReferenceNumber  string          `json:"reference_number" db:"reference_number"`     // идемпотентный токен, уникален per member
	BseOrderNumber   string          `json:"bse_order_number,omitempty" db:"bse_order_number"` // присваивается биржей при успехе
	BseResponseCode  string          `json:"bse_response_code,omitempty" db:"bse_response_code"`
	BseResponseMsg   string          `json:"bse_response_msg,omitempty" db:"bse_response_msg"`
	Status           string          `json:"status" db:"status"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
	SubmittedAt      *time.Time      `json:"submitted_at,omitempty" db:"submitted_at"` // только при успешной отправке
}

// Типы поручений
const (
	OrderTypePurchase   = "PURCHASE"
	OrderTypeRedemption = "REDEMPTION"
	OrderTypeSwitch     = "SWITCH"
	OrderTypeSpread     = "SPREAD"
	OrderTypeSIP        = "SIP"
)

// Статусы жизненного цикла поручения
const (
	OrderStatusCreated        = "CREATED"
	OrderStatusSubmitted      = "SUBMITTED"
	OrderStatusAccepted       = "ACCEPTED"
	OrderStatusPaymentPending = "PAYMENT_PENDING"
	OrderStatusRejected       = "REJECTED"
	OrderStatusFailed         = "FAILED"
	OrderStatusCancelled      = "CANCELLED"
)

// Транзакционные коды биржевого протокола
const (
	TransCodeNew    = "NEW"
	TransCodeCancel = "CXL"
)

// Направления сделки (поле BuySell протокола)
const (
	BuySellPurchase   = "P"
	BuySellRedemption = "R"
)

// Типы покупки (поле BuySellType протокола)
const (
	BuySellTypeFresh      = "FRESH"
	BuySellTypeAdditional = "ADDITIONAL"
)

// HasExchangeNumber возвращает true если биржа присвоила поручению номер.
// Номер существует тогда и только тогда, когда поручение хотя бы раз
// достигало SUBMITTED/ACCEPTED/PAYMENT_PENDING.
func (o *Order) HasExchangeNumber() bool {
	return o.BseOrderNumber != ""
}

// IsCancellable возвращает true если поручение можно отменить через CXL
func (o *Order) IsCancellable() bool {
	switch o.Status {
	case OrderStatusSubmitted, OrderStatusAccepted, OrderStatusPaymentPending:
		return o.HasExchangeNumber()
	}
	return false
}

// IsTerminal возвращает true для конечных статусов
func (o *Order) IsTerminal() bool {
	switch o.Status {
	case OrderStatusRejected, OrderStatusFailed, OrderStatusCancelled:
		return true
	}
	return false
}
