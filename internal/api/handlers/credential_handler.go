package handlers

import (
	"errors"
	"net/http"

	"starmf/internal/api/middleware"
	"starmf/internal/service"
)

// CredentialHandler отвечает за учетные данные участника BSE
//
// Endpoints:
// - PUT /api/v1/credentials - сохранить учетные данные
// - GET /api/v1/credentials - состояние (без чувствительных полей)
type CredentialHandler struct {
	credService *service.CredentialService
}

// NewCredentialHandler создает новый CredentialHandler
func NewCredentialHandler(credService *service.CredentialService) *CredentialHandler {
	return &CredentialHandler{credService: credService}
}

// SetCredentials сохраняет учетные данные участника.
// Пароль и passkey принимаются только в теле запроса и тут же
// шифруются; в ответ не возвращаются никогда.
// PUT /api/v1/credentials
func (h *CredentialHandler) SetCredentials(w http.ResponseWriter, r *http.Request) {
	advisorID, ok := middleware.AdvisorIDFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "advisor not identified")
		return
	}

	var req service.SetCredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.credService.SetCredentials(advisorID, &req); err != nil {
		if errors.Is(err, service.ErrCredentialFields) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, &SuccessResponse{Message: "credentials updated"})
}

// GetCredentialStatus возвращает состояние учетных данных
// GET /api/v1/credentials
func (h *CredentialHandler) GetCredentialStatus(w http.ResponseWriter, r *http.Request) {
	advisorID, ok := middleware.AdvisorIDFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "advisor not identified")
		return
	}

	status, err := h.credService.Status(advisorID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, status)
}
