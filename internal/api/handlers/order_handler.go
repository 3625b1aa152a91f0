package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"starmf/internal/api/middleware"
	"starmf/internal/bse"
	"starmf/internal/models"
	"starmf/internal/repository"
	"starmf/internal/service"
)

// OrderSubmitter - операции сервиса поручений, нужные HTTP слою
type OrderSubmitter interface {
	SubmitPurchase(ctx context.Context, advisorID string, req *service.SubmitOrderRequest) (*models.Order, error)
	SubmitRedemption(ctx context.Context, advisorID string, req *service.SubmitOrderRequest) (*models.Order, error)
	SubmitSwitch(ctx context.Context, advisorID string, req *service.SubmitOrderRequest) (*models.Order, error)
	SubmitSpread(ctx context.Context, advisorID string, req *service.SubmitOrderRequest) (*models.Order, error)
	RegisterSIP(ctx context.Context, advisorID string, req *service.SubmitOrderRequest) (*models.Order, error)
	Cancel(ctx context.Context, advisorID string, orderID int) (*models.Order, error)
	GetOrder(advisorID string, orderID int) (*models.Order, error)
	ListOrders(advisorID string, f repository.OrderFilters) ([]*models.Order, error)
	OrderStats(advisorID string) (map[string]int, error)
}

// OrderHandler отвечает за подачу и отмену поручений
//
// Endpoints:
// - POST /api/v1/orders/purchase    - поручение на покупку
// - POST /api/v1/orders/redemption  - поручение на погашение
// - POST /api/v1/orders/switch      - обмен между схемами
// - POST /api/v1/orders/spread      - spread-поручение
// - POST /api/v1/orders/sip         - регистрация SIP
// - POST /api/v1/orders/{id}/cancel - отмена поручения
// - GET  /api/v1/orders             - список поручений
// - GET  /api/v1/orders/{id}        - поручение по id
type OrderHandler struct {
	orderService OrderSubmitter
}

// NewOrderHandler создает новый OrderHandler с внедрением зависимостей
func NewOrderHandler(orderService OrderSubmitter) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

type submitFunc func(ctx context.Context, advisorID string, req *service.SubmitOrderRequest) (*models.Order, error)

// SubmitPurchase подает поручение на покупку
// POST /api/v1/orders/purchase
func (h *OrderHandler) SubmitPurchase(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, h.orderService.SubmitPurchase)
}

// SubmitRedemption подает поручение на погашение
// POST /api/v1/orders/redemption
func (h *OrderHandler) SubmitRedemption(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, h.orderService.SubmitRedemption)
}

// SubmitSwitch подает поручение на обмен
// POST /api/v1/orders/switch
func (h *OrderHandler) SubmitSwitch(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, h.orderService.SubmitSwitch)
}

// SubmitSpread подает spread-поручение
// POST /api/v1/orders/spread
func (h *OrderHandler) SubmitSpread(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, h.orderService.SubmitSpread)
}

// RegisterSIP регистрирует SIP-план
// POST /api/v1/orders/sip
func (h *OrderHandler) RegisterSIP(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, h.orderService.RegisterSIP)
}

func (h *OrderHandler) submit(w http.ResponseWriter, r *http.Request, fn submitFunc) {
	advisorID, ok := middleware.AdvisorIDFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "advisor not identified")
		return
	}

	var req service.SubmitOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := fn(r.Context(), advisorID, &req)
	if err != nil {
		h.respondSubmitError(w, order, err)
		return
	}
	respondJSON(w, http.StatusCreated, order)
}

// respondSubmitError отображает исход подачи на HTTP статус.
// Отклонение биржей отдается с записью поручения: клиент видит
// сохраненный код и сообщение биржи.
func (h *OrderHandler) respondSubmitError(w http.ResponseWriter, order *models.Order, err error) {
	var rejection *bse.RejectionError
	switch {
	case errors.As(err, &rejection):
		respondJSON(w, http.StatusUnprocessableEntity, order)
	case errors.Is(err, service.ErrClientNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrCredentialNotFound),
		errors.Is(err, service.ErrCredentialInactive):
		respondError(w, http.StatusPreconditionFailed, err.Error())
	case isValidationError(err):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		// Сетевой сбой или ошибка разбора: поручение в FAILED
		respondError(w, http.StatusBadGateway, err.Error())
	}
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, service.ErrUnsupportedOrderType),
		errors.Is(err, service.ErrClientRequired),
		errors.Is(err, service.ErrClientCodeInvalid),
		errors.Is(err, service.ErrSchemeCodeRequired),
		errors.Is(err, service.ErrSchemeCodeInvalid),
		errors.Is(err, service.ErrAmountRequired),
		errors.Is(err, service.ErrAmountOrUnitsRequired),
		errors.Is(err, service.ErrSwitchSchemesRequired),
		errors.Is(err, service.ErrSIPScheduleRequired):
		return true
	}
	return false
}

// CancelOrder отменяет поручение
// POST /api/v1/orders/{id}/cancel
func (h *OrderHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	advisorID, ok := middleware.AdvisorIDFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "advisor not identified")
		return
	}

	orderID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	order, err := h.orderService.Cancel(r.Context(), advisorID, orderID)
	if err != nil {
		var rejection *bse.RejectionError
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			respondError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrOrderNotCancellable),
			errors.Is(err, service.ErrNoExchangeOrderNumber):
			respondError(w, http.StatusConflict, err.Error())
		case errors.As(err, &rejection):
			respondJSON(w, http.StatusUnprocessableEntity, &ErrorResponse{
				Error: rejection.Message,
				Code:  rejection.Code,
			})
		default:
			respondError(w, http.StatusBadGateway, err.Error())
		}
		return
	}
	respondJSON(w, http.StatusOK, order)
}

// orderDetail - поручение с человекочитаемой расшифровкой статуса
type orderDetail struct {
	*models.Order
	StatusText string `json:"status_text"`
}

// GetOrder возвращает поручение по id
// GET /api/v1/orders/{id}
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	advisorID, ok := middleware.AdvisorIDFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "advisor not identified")
		return
	}

	orderID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	order, err := h.orderService.GetOrder(advisorID, orderID)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			respondError(w, http.StatusNotFound, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, &orderDetail{
		Order:      order,
		StatusText: service.StatusInfo(order.Status),
	})
}

// ListOrders возвращает поручения советника
// GET /api/v1/orders?client_id=&status=&order_type=&limit=&offset=
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	advisorID, ok := middleware.AdvisorIDFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "advisor not identified")
		return
	}

	q := r.URL.Query()
	filters := repository.OrderFilters{
		ClientID:  q.Get("client_id"),
		Status:    q.Get("status"),
		OrderType: q.Get("order_type"),
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			filters.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			filters.Offset = n
		}
	}

	orders, err := h.orderService.ListOrders(advisorID, filters)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, &SuccessResponse{Data: orders})
}

// OrderStats возвращает распределение поручений по статусам
// GET /api/v1/orders/stats
func (h *OrderHandler) OrderStats(w http.ResponseWriter, r *http.Request) {
	advisorID, ok := middleware.AdvisorIDFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "advisor not identified")
		return
	}

	stats, err := h.orderService.OrderStats(advisorID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, &SuccessResponse{Data: stats})
}
