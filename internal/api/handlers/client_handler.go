package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"starmf/internal/api/middleware"
	"starmf/internal/service"
)

// ClientHandler отвечает за реестр клиентов советника
//
// Endpoints:
// - POST /api/v1/clients      - зарегистрировать клиента
// - GET  /api/v1/clients      - список клиентов советника
// - GET  /api/v1/clients/{id} - клиент по UCC коду
type ClientHandler struct {
	clientService *service.ClientService
}

// NewClientHandler создает новый ClientHandler
func NewClientHandler(clientService *service.ClientService) *ClientHandler {
	return &ClientHandler{clientService: clientService}
}

// RegisterClient регистрирует клиента за советником
// POST /api/v1/clients
func (h *ClientHandler) RegisterClient(w http.ResponseWriter, r *http.Request) {
	advisorID, ok := middleware.AdvisorIDFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "advisor not identified")
		return
	}

	var req service.RegisterClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	client, err := h.clientService.Register(advisorID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrClientFields):
			respondError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrClientExists):
			respondError(w, http.StatusConflict, err.Error())
		default:
			respondError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	respondJSON(w, http.StatusCreated, client)
}

// ListClients возвращает клиентов советника
// GET /api/v1/clients
func (h *ClientHandler) ListClients(w http.ResponseWriter, r *http.Request) {
	advisorID, ok := middleware.AdvisorIDFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "advisor not identified")
		return
	}

	clients, err := h.clientService.List(advisorID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, &SuccessResponse{Data: clients})
}

// GetClient возвращает клиента по UCC коду
// GET /api/v1/clients/{id}
func (h *ClientHandler) GetClient(w http.ResponseWriter, r *http.Request) {
	advisorID, ok := middleware.AdvisorIDFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "advisor not identified")
		return
	}

	client, err := h.clientService.Get(advisorID, mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, service.ErrClientNotFound) {
			respondError(w, http.StatusNotFound, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, client)
}
