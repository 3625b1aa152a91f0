package bse

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Пространства имен конвертов, исторически встречающиеся в ответах биржи.
// Закрытый набор: SOAP 1.1 (префикс soap:) и SOAP 1.2 (префикс s:).
// Любое другое пространство имен - ошибка разбора, а не тихий nil.
const (
	soap11Namespace = "http://schemas.xmlsoap.org/soap/envelope/"
	soap12Namespace = "http://www.w3.org/2003/05/soap-envelope"

	// Пространство имен операций BSE Star MF
	bseNamespace = "http://bsestarmf.in/"
)

// Endpoint'ы биржи (относительно базового URL)
const (
	EndpointOrderEntry = "/MFOrderEntry/MFOrder.svc"
)

// SOAP actions: каждая операция привязана к собственному идентификатору
const (
	ActionOrderEntry  = "http://bsestarmf.in/MFOrderEntry/orderEntryParam"
	ActionSwitchEntry = "http://bsestarmf.in/MFOrderEntry/switchOrderEntryParam"
	ActionSpreadEntry = "http://bsestarmf.in/MFOrderEntry/spreadOrderEntryParam"
	ActionSIPEntry    = "http://bsestarmf.in/MFOrderEntry/sipOrderEntryParam"
	ActionGetPassword = "http://bsestarmf.in/MFOrderEntry/getPassword"
)

// Имена result-элементов в теле ответа
const (
	ResultOrderEntry  = "orderEntryParamResult"
	ResultSwitchEntry = "switchOrderEntryParamResult"
	ResultSpreadEntry = "spreadOrderEntryParamResult"
	ResultSIPEntry    = "sipOrderEntryParamResult"
	ResultGetPassword = "getPasswordResult"
)

// BuildOrderEntryBody оборачивает pipe-строку в тело операции
// orderEntryParam (NEW и CXL используют одну операцию)
func BuildOrderEntryBody(pipeParams string) string {
	return buildParamBody("orderEntryParam", pipeParams)
}

// BuildSwitchOrderEntryBody оборачивает pipe-строку в тело операции
// switchOrderEntryParam
func BuildSwitchOrderEntryBody(pipeParams string) string {
	return buildParamBody("switchOrderEntryParam", pipeParams)
}

// BuildSpreadOrderEntryBody оборачивает pipe-строку в тело операции
// spreadOrderEntryParam
func BuildSpreadOrderEntryBody(pipeParams string) string {
	return buildParamBody("spreadOrderEntryParam", pipeParams)
}

// BuildSIPOrderEntryBody оборачивает pipe-строку в тело операции
// sipOrderEntryParam. Токен передается отдельным элементом Password
// (особенность SIP-операции, остальные несут токен внутри pipe-строки).
func BuildSIPOrderEntryBody(token, pipeParams string) string {
	return fmt.Sprintf(
		`<sipOrderEntryParam xmlns=%q><Password>%s</Password><Param>%s</Param></sipOrderEntryParam>`,
		bseNamespace, escapeXML(token), escapeXML(pipeParams),
	)
}

// BuildGetPasswordBody собирает тело запроса одноразового токена
// подачи поручений (getPassword)
func BuildGetPasswordBody(userID, memberID, password, passKey string) string {
	return fmt.Sprintf(
		`<getPassword xmlns=%q><UserId>%s</UserId><MemberId>%s</MemberId><Password>%s</Password><PassKey>%s</PassKey></getPassword>`,
		bseNamespace, escapeXML(userID), escapeXML(memberID), escapeXML(password), escapeXML(passKey),
	)
}

// BuildEnvelope оборачивает тело операции во внешний SOAP 1.2 конверт
func BuildEnvelope(body string) string {
	return `<?xml version="1.0" encoding="utf-8"?>` +
		`<soap12:Envelope xmlns:soap12="` + soap12Namespace + `">` +
		`<soap12:Body>` + body + `</soap12:Body></soap12:Envelope>`
}

func buildParamBody(operation, pipeParams string) string {
	return fmt.Sprintf(`<%s xmlns=%q><Param>%s</Param></%s>`,
		operation, bseNamespace, escapeXML(pipeParams), operation)
}

func escapeXML(s string) string {
	var sb strings.Builder
	// EscapeText на strings.Builder не возвращает ошибок
	_ = xml.EscapeText(&sb, []byte(s))
	return sb.String()
}

// soapEnvelope - минимальная структура для первой стадии разбора ответа.
// Body матчится по локальному имени, пространство имен конверта
// проверяется явно после декодирования.
type soapEnvelope struct {
	XMLName xml.Name
	Body    *soapBody `xml:"Body"`
}

type soapBody struct {
	Inner string `xml:",innerxml"`
}

// ExtractResult выполняет первую стадию разбора ответа биржи:
// конверт -> тело -> result-элемент операции. Отсутствие конверта,
// тела или result-элемента - именованная фатальная ошибка,
// повторный запрос не выполняется.
func ExtractResult(rawXML, resultElement string) (string, error) {
	var env soapEnvelope
	if err := xml.Unmarshal([]byte(rawXML), &env); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	if env.XMLName.Local != "Envelope" {
		return "", fmt.Errorf("%w: unexpected root element %q", ErrMalformedEnvelope, env.XMLName.Local)
	}
	// Закрытый набор известных пространств имен конверта
	switch env.XMLName.Space {
	case soap11Namespace, soap12Namespace:
	default:
		return "", fmt.Errorf("%w: unknown envelope namespace %q", ErrMalformedEnvelope, env.XMLName.Space)
	}
	if env.Body == nil || strings.TrimSpace(env.Body.Inner) == "" {
		return "", ErrMissingBody
	}

	value, found, err := findElementText(env.Body.Inner, resultElement)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	if !found {
		return "", fmt.Errorf("%w: %s", ErrMissingResult, resultElement)
	}
	return value, nil
}

// findElementText ищет первый элемент с заданным локальным именем
// и возвращает его текстовое содержимое
func findElementText(innerXML, local string) (string, bool, error) {
	dec := xml.NewDecoder(strings.NewReader(innerXML))
	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return "", false, nil
			}
			return "", false, err
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if start.Name.Local != local {
			continue
		}
		var value string
		if err := dec.DecodeElement(&value, &start); err != nil {
			return "", false, err
		}
		return value, true, nil
	}
}
