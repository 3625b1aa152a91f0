// Package bse реализует протокольное ядро интеграции с торговой системой
// BSE Star MF: позиционное pipe-кодирование полей, SOAP обертку,
// разбор ответов и классификацию биржевых кодов.
package bse

import "strings"

// Разделитель позиционных полей протокола
const pipeDelimiter = "|"

// Количество позиций в pipe-строке для каждой операции.
// Порядок полей фиксирован спецификацией биржи: пустое поле занимает
// свою позицию пустой строкой, поля никогда не опускаются.
const (
	OrderEntryFieldCount  = 26 // orderEntryParam (NEW/CXL)
	SwitchEntryFieldCount = 23 // switchOrderEntryParam
	SpreadEntryFieldCount = 18 // spreadOrderEntryParam
	SIPEntryFieldCount    = 18 // sipOrderEntryParam
)

// SuccessCode - сигнальный код успеха в ответах order-entry семейства.
// Любой другой код означает отклонение поручения биржей.
const SuccessCode = "0"

// BuildPipeParams кодирует упорядоченный список полей в pipe-строку.
// Числовые поля должны быть заранее приведены к строке без разделителей
// тысяч; пустые опциональные поля передаются как пустые строки.
func BuildPipeParams(fields []string) string {
	return strings.Join(fields, pipeDelimiter)
}

// Result - структурированный результат разбора pipe-ответа биржи
type Result struct {
	Success bool     `json:"success"`
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Data    []string `json:"data,omitempty"`
}

// OrderNumber возвращает присвоенный биржей номер поручения
// (первый элемент данных при успехе) или пустую строку
func (r *Result) OrderNumber() string {
	if len(r.Data) > 0 {
		return r.Data[0]
	}
	return ""
}

// Err возвращает nil при успехе и типизированную ошибку отклонения
// с кодом и сообщением биржи в остальных случаях
func (r *Result) Err() error {
	if r.Success {
		return nil
	}
	return &RejectionError{Code: r.Code, Message: r.Message}
}

// ParsePipeResponse разбирает сырую pipe-строку ответа биржи:
// код статуса, человекочитаемое сообщение и хвостовые поля данных
// (номер поручения в первом слоте при успехе).
//
// Чистая функция: повторный разбор той же строки дает идентичный
// результат, побочных эффектов нет.
func ParsePipeResponse(raw string) (*Result, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrEmptyResponse
	}

	parts := strings.Split(raw, pipeDelimiter)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	result := &Result{
		Code:    parts[0],
		Success: parts[0] == SuccessCode,
	}
	if len(parts) > 1 {
		result.Message = parts[1]
	}
	if len(parts) > 2 {
		result.Data = parts[2:]
	}

	return result, nil
}
