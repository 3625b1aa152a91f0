package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"starmf/internal/api/handlers"
	"starmf/internal/api/middleware"
	"starmf/internal/service"
	"starmf/internal/websocket"
)

// Dependencies содержит все зависимости для API handlers
type Dependencies struct {
	OrderService      *service.OrderService
	ClientService     *service.ClientService
	CredentialService *service.CredentialService
	AuditLogs         handlers.AuditLogReader
	Hub               *websocket.Hub
	APIKeyHash        string
	Logger            *zap.Logger
}

// SetupRoutes настраивает все HTTP маршруты приложения
//
// Структура маршрутов:
//
// /api/v1/
//
//	├── /orders/
//	│   ├── POST /purchase     - поручение на покупку
//	│   ├── POST /redemption   - поручение на погашение
//	│   ├── POST /switch       - обмен между схемами
//	│   ├── POST /spread       - spread-поручение
//	│   ├── POST /sip          - регистрация SIP
//	│   ├── GET  /             - список поручений
//	│   ├── GET  /stats        - распределение по статусам
//	│   ├── GET  /{id}         - поручение по id
//	│   └── POST /{id}/cancel  - отмена поручения
//	├── /clients/
//	│   ├── POST /     - зарегистрировать клиента
//	│   ├── GET  /     - список клиентов советника
//	│   └── GET  /{id} - клиент по UCC коду
//	├── /credentials/
//	│   ├── PUT / - сохранить учетные данные участника
//	│   └── GET / - состояние учетных данных
//	└── GET /audit - журнал обращений к бирже (санитизированный)
//
// /ws/stream - WebSocket для real-time обновлений
// /metrics   - Prometheus метрики
// /health    - health check
//
// Middleware применяется в следующем порядке:
// 1. Recovery (для всех маршрутов)
// 2. Logging (для всех маршрутов)
// 3. CORS (для всех маршрутов)
// 4. Auth (только для /api/v1)
func SetupRoutes(deps *Dependencies) *mux.Router {
	router := mux.NewRouter()

	router.Use(middleware.Recovery(deps.Logger))
	router.Use(middleware.Logging(deps.Logger))
	router.Use(middleware.CORS)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Auth(deps.APIKeyHash))

	if deps.OrderService != nil {
		orderHandler := handlers.NewOrderHandler(deps.OrderService)
		api.HandleFunc("/orders/purchase", orderHandler.SubmitPurchase).Methods("POST")
		api.HandleFunc("/orders/redemption", orderHandler.SubmitRedemption).Methods("POST")
		api.HandleFunc("/orders/switch", orderHandler.SubmitSwitch).Methods("POST")
		api.HandleFunc("/orders/spread", orderHandler.SubmitSpread).Methods("POST")
		api.HandleFunc("/orders/sip", orderHandler.RegisterSIP).Methods("POST")
		api.HandleFunc("/orders", orderHandler.ListOrders).Methods("GET")
		api.HandleFunc("/orders/stats", orderHandler.OrderStats).Methods("GET")
		api.HandleFunc("/orders/{id:[0-9]+}", orderHandler.GetOrder).Methods("GET")
		api.HandleFunc("/orders/{id:[0-9]+}/cancel", orderHandler.CancelOrder).Methods("POST")
	}

	if deps.ClientService != nil {
		clientHandler := handlers.NewClientHandler(deps.ClientService)
		api.HandleFunc("/clients", clientHandler.RegisterClient).Methods("POST")
		api.HandleFunc("/clients", clientHandler.ListClients).Methods("GET")
		api.HandleFunc("/clients/{id}", clientHandler.GetClient).Methods("GET")
	}

	if deps.CredentialService != nil {
		credHandler := handlers.NewCredentialHandler(deps.CredentialService)
		api.HandleFunc("/credentials", credHandler.SetCredentials).Methods("PUT")
		api.HandleFunc("/credentials", credHandler.GetCredentialStatus).Methods("GET")
	}

	if deps.AuditLogs != nil {
		auditHandler := handlers.NewAuditHandler(deps.AuditLogs)
		api.HandleFunc("/audit", auditHandler.ListAuditLogs).Methods("GET")
	}

	if deps.Hub != nil {
		router.HandleFunc("/ws/stream", func(w http.ResponseWriter, r *http.Request) {
			websocket.ServeWS(deps.Hub, w, r)
		})
	}

	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	return router
}
