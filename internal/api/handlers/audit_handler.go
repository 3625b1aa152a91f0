package handlers

import (
	"net/http"
	"strconv"

	"starmf/internal/api/middleware"
	"starmf/internal/models"
)

// AuditLogReader - чтение аудиторских записей обращений к бирже
type AuditLogReader interface {
	GetRecent(advisorID string, limit int) ([]*models.APICallLog, error)
}

// AuditHandler отдает журнал обращений советника к бирже.
// Записи приходят уже санитизированными: токены и PAN замаскированы
// транспортом до персиста.
//
// Endpoints:
// - GET /api/v1/audit - последние записи аудита
type AuditHandler struct {
	logs AuditLogReader
}

// NewAuditHandler создает новый AuditHandler
func NewAuditHandler(logs AuditLogReader) *AuditHandler {
	return &AuditHandler{logs: logs}
}

// ListAuditLogs возвращает последние записи аудита советника
// GET /api/v1/audit?limit=50
func (h *AuditHandler) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	advisorID, ok := middleware.AdvisorIDFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "advisor not identified")
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	entries, err := h.logs.GetRecent(advisorID, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, &SuccessResponse{Data: entries})
}
