package middleware

import (
	"context"
	"net/http"

	"starmf/pkg/crypto"
)

type contextKey string

const advisorIDKey contextKey = "advisor_id"

// AdvisorIDFrom извлекает идентификатор советника из context запроса
func AdvisorIDFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(advisorIDKey).(string)
	return id, ok && id != ""
}

// WithAdvisorID кладет идентификатор советника в context
func WithAdvisorID(ctx context.Context, advisorID string) context.Context {
	return context.WithValue(ctx, advisorIDKey, advisorID)
}

// Auth - middleware аутентификации API запросов
//
// Клиент передает ключ в X-API-Key и свой идентификатор в X-Advisor-ID.
// Ключ сверяется с bcrypt-хешем из конфигурации: сам ключ на сервере
// не хранится. Идентификатор советника кладется в context запроса и
// дальше используется для проверки владения клиентами и поручениями.
func Auth(apiKeyHash string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			apiKey := r.Header.Get("X-API-Key")
			if apiKey == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			if err := crypto.VerifyPassword(apiKey, apiKeyHash); err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			advisorID := r.Header.Get("X-Advisor-ID")
			if advisorID == "" {
				http.Error(w, "X-Advisor-ID header is required", http.StatusBadRequest)
				return
			}

			ctx := WithAdvisorID(r.Context(), advisorID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
