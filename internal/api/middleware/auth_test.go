package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"starmf/pkg/crypto"
)

func TestAuth(t *testing.T) {
	hash, err := crypto.HashPasswordWithCost("secret-key", 4)
	if err != nil {
		t.Fatalf("failed to hash key: %v", err)
	}

	var gotAdvisor string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAdvisor, _ = AdvisorIDFrom(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := Auth(hash)(next)

	t.Run("valid key and advisor", func(t *testing.T) {
		gotAdvisor = ""
		req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
		req.Header.Set("X-API-Key", "secret-key")
		req.Header.Set("X-Advisor-ID", "adv-1")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
		}
		if gotAdvisor != "adv-1" {
			t.Errorf("expected advisor adv-1 in context, got %q", gotAdvisor)
		}
	})

	t.Run("missing key", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
		req.Header.Set("X-Advisor-ID", "adv-1")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
		}
	})

	t.Run("wrong key", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
		req.Header.Set("X-API-Key", "wrong-key")
		req.Header.Set("X-Advisor-ID", "adv-1")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
		}
	})

	t.Run("missing advisor header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
		req.Header.Set("X-API-Key", "secret-key")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("expected status %d, got %d", http.StatusBadRequest, w.Code)
		}
	})
}

func TestAdvisorIDFrom(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, ok := AdvisorIDFrom(req.Context()); ok {
		t.Error("expected no advisor in empty context")
	}

	ctx := WithAdvisorID(req.Context(), "adv-7")
	id, ok := AdvisorIDFrom(ctx)
	if !ok || id != "adv-7" {
		t.Errorf("expected adv-7, got %q (ok=%v)", id, ok)
	}
}
