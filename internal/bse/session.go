package bse

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"starmf/pkg/retry"
)

// Код успеха ответа getPassword (отличается от order-entry семейства)
const passwordSuccessCode = "100"

// Ошибки сессионного менеджера
var (
	ErrTokenRejected = errors.New("bse: token request rejected by exchange")
)

// SessionManager выдает одноразовые токены подачи поручений через
// операцию getPassword. Токен потребляется ровно один раз на запрос,
// поэтому не кэшируется и никогда не персистится и не логируется.
//
// Запрос токена идемпотентен на стороне биржи, поэтому - в отличие от
// подачи поручений - ретраится с экспоненциальным backoff.
type SessionManager struct {
	transport Transport
	creds     CredentialProvider
	retryCfg  retry.Config
	logger    *zap.Logger
}

// NewSessionManager создает менеджер сессионных токенов
func NewSessionManager(transport Transport, creds CredentialProvider, logger *zap.Logger) *SessionManager {
	return &SessionManager{
		transport: transport,
		creds:     creds,
		retryCfg: retry.Config{
			MaxRetries:   3,
			InitialDelay: 200 * time.Millisecond,
			MaxDelay:     2 * time.Second,
			Multiplier:   2.0,
			JitterFactor: 0.1,
			RetryIf: func(err error) bool {
				// Ретраим только сетевые сбои; отказ биржи в выдаче
				// токена (неверные учетные данные) повторять бессмысленно
				var te *TransportError
				return errors.As(err, &te)
			},
		},
		logger: logger,
	}
}

var _ TokenProvider = (*SessionManager)(nil)

// OrderEntryToken запрашивает свежий токен подачи поручений для советника
func (m *SessionManager) OrderEntryToken(ctx context.Context, advisorID string) (string, error) {
	creds, err := m.creds.Decrypted(ctx, advisorID)
	if err != nil {
		return "", err
	}

	body := BuildGetPasswordBody(creds.UserID, creds.MemberID, creds.Password, creds.PassKey)

	var token string
	err = retry.Do(ctx, func() error {
		raw, callErr := m.transport.Call(ctx, CallRequest{
			Endpoint:  EndpointOrderEntry,
			Action:    ActionGetPassword,
			Body:      body,
			AdvisorID: advisorID,
			APIName:   "GetPassword",
			Secrets:   []string{creds.Password, creds.PassKey},
		})
		if callErr != nil {
			return callErr
		}

		result, extractErr := ExtractResult(raw, ResultGetPassword)
		if extractErr != nil {
			return extractErr
		}

		token, callErr = parsePasswordResponse(result)
		return callErr
	}, m.retryCfg)
	if err != nil {
		return "", err
	}

	return token, nil
}

// parsePasswordResponse разбирает ответ getPassword: "100|<token>" при
// успехе, "<code>|<message>" при отказе
func parsePasswordResponse(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrEmptyResponse
	}

	parts := strings.SplitN(raw, pipeDelimiter, 2)
	if parts[0] != passwordSuccessCode || len(parts) < 2 || strings.TrimSpace(parts[1]) == "" {
		message := ""
		if len(parts) > 1 {
			message = strings.TrimSpace(parts[1])
		}
		return "", fmt.Errorf("%w: code=%s message=%s", ErrTokenRejected, parts[0], message)
	}

	return strings.TrimSpace(parts[1]), nil
}
