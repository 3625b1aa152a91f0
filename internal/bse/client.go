package bse

import (
	"context"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"starmf/internal/models"
	"starmf/pkg/ratelimit"
)

// panPattern - формат индийского PAN: маскируется в аудиторских записях
var panPattern = regexp.MustCompile(`\b[A-Z]{5}\d{4}[A-Z]\b`)

// passwordElementPattern - XML элементы Password/PassKey в телах запросов
var passwordElementPattern = regexp.MustCompile(`(?i)<(Password|PassKey)>[^<]*</(Password|PassKey)>`)

// Client - SOAP транспорт к бирже: собирает конверт, отправляет запрос,
// пишет аудиторскую запись с санитизацией секретов и ограничивает
// частоту запросов token-bucket лимитером
type Client struct {
	httpClient *HTTPClient
	baseURL    string
	limiter    *ratelimit.RateLimiter
	logs       APILogRecorder
	logger     *zap.Logger
}

// NewClient создает транспортный клиент биржи.
// logs может быть nil - аудит тогда отключен (используется в тестах).
func NewClient(httpClient *HTTPClient, baseURL string, limiter *ratelimit.RateLimiter, logs APILogRecorder, logger *zap.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		limiter:    limiter,
		logs:       logs,
		logger:     logger,
	}
}

var _ Transport = (*Client)(nil)

// Call отправляет тело операции на endpoint биржи и возвращает сырой XML
// ответа. Таймауты и управление соединениями - ответственность HTTP
// клиента; любая сетевая ошибка возвращается как *TransportError.
func (c *Client) Call(ctx context.Context, req CallRequest) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", &TransportError{Endpoint: req.Endpoint, Err: err}
	}

	url := c.baseURL + req.Endpoint
	envelope := BuildEnvelope(req.Body)
	start := time.Now()
	defer func() {
		ExchangeRequestDuration.WithLabelValues(req.APIName).Observe(time.Since(start).Seconds())
	}()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(envelope))
	if err != nil {
		return "", &TransportError{Endpoint: req.Endpoint, Err: err}
	}
	httpReq.Header.Set("Content-Type", `application/soap+xml; charset=utf-8; action="`+req.Action+`"`)
	httpReq.Header.Set("SOAPAction", req.Action)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.audit(req, envelope, "", 0, time.Since(start), err.Error())
		return "", &TransportError{Endpoint: req.Endpoint, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.audit(req, envelope, "", resp.StatusCode, time.Since(start), err.Error())
		return "", &TransportError{Endpoint: req.Endpoint, Err: err}
	}

	c.audit(req, envelope, string(body), resp.StatusCode, time.Since(start), "")
	return string(body), nil
}

// audit пишет аудиторскую запись обращения. Секреты (токен подачи
// поручений) и PAN маскируются до записи; сбой аудита не прерывает
// основной запрос.
func (c *Client) audit(req CallRequest, requestBody, responseBody string, statusCode int, latency time.Duration, errMsg string) {
	if c.logs == nil {
		return
	}

	entry := &models.APICallLog{
		AdvisorID:    req.AdvisorID,
		APIName:      req.APIName,
		Endpoint:     req.Endpoint,
		RequestBody:  sanitize(requestBody, req.Secrets),
		ResponseBody: sanitize(responseBody, nil),
		StatusCode:   statusCode,
		LatencyMs:    latency.Milliseconds(),
		ErrorMessage: errMsg,
	}

	if err := c.logs.Create(entry); err != nil {
		c.logger.Warn("failed to write bse api audit log",
			zap.String("api", req.APIName),
			zap.Error(err))
	}
}

// sanitize маскирует секреты, Password/PassKey элементы и PAN
func sanitize(body string, secrets []string) string {
	if body == "" {
		return body
	}
	for _, secret := range secrets {
		if secret != "" {
			body = strings.ReplaceAll(body, escapeXML(secret), "***")
			body = strings.ReplaceAll(body, secret, "***")
		}
	}
	body = passwordElementPattern.ReplaceAllString(body, "<$1>***</$2>")
	body = panPattern.ReplaceAllString(body, "***PAN***")
	return body
}
