package bse

import (
	"fmt"
	"sync/atomic"
)

// Идентификаторы операций для sandbox-симулятора
const (
	OpOrderEntry  = "ORDER"
	OpOrderCancel = "CXL"
	OpSwitchEntry = "SWITCH"
	OpSpreadEntry = "SPREAD"
	OpSIPEntry    = "SIP"
)

// Sandbox возвращает синтетические pipe-ответы той же формы, что и живая
// биржа. Используется вместо транспорта когда sandbox-режим включен в
// конфигурации: сетевые вызовы не выполняются, токен не запрашивается.
//
// Ответы детерминированы: номера поручений выдаются монотонным счетчиком,
// что позволяет тестам проверять оба режима параллельно.
type Sandbox struct {
	seq atomic.Uint64
}

// NewSandbox создает симулятор биржи
func NewSandbox() *Sandbox {
	return &Sandbox{}
}

var _ Simulator = (*Sandbox)(nil)

// Response возвращает синтетический pipe-ответ для операции
func (s *Sandbox) Response(op string) string {
	switch op {
	case OpOrderCancel:
		// Отмена не несет нового номера поручения
		return SuccessCode + "|ORDER CANCELLED SUCCESSFULLY"
	case OpSIPEntry:
		return fmt.Sprintf("%s|SIP REGISTRATION SUCCESSFUL|%s", SuccessCode, s.nextNumber("SBSIP"))
	case OpOrderEntry, OpSwitchEntry, OpSpreadEntry:
		return fmt.Sprintf("%s|ORDER CONFIRMED|%s", SuccessCode, s.nextNumber("SB"))
	default:
		return "99|UNKNOWN OPERATION"
	}
}

func (s *Sandbox) nextNumber(prefix string) string {
	return fmt.Sprintf("%s%08d", prefix, s.seq.Add(1))
}
