package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"starmf/internal/api"
	"starmf/internal/bse"
	"starmf/internal/config"
	"starmf/internal/repository"
	"starmf/internal/service"
	"starmf/internal/websocket"
	"starmf/pkg/ratelimit"
	"starmf/pkg/utils"
)

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := utils.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	// Инициализация базы данных
	db, err := initDatabase(cfg)
	if err != nil {
		logger.Fatal("connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("connected to database")

	// Репозитории
	orderRepo := repository.NewOrderRepository(db)
	clientRepo := repository.NewClientRepository(db)
	credRepo := repository.NewCredentialRepository(db)
	apiLogRepo := repository.NewAPILogRepository(db)

	// Сервис учетных данных (он же CredentialProvider ядра протокола)
	credService, err := service.NewCredentialService(
		credRepo, []byte(cfg.Security.EncryptionKey), logger)
	if err != nil {
		logger.Fatal("init credential service", zap.Error(err))
	}

	// Транспорт биржи
	httpCfg := bse.DefaultHTTPClientConfig()
	httpCfg.ConnectTimeout = cfg.BSE.ConnectTimeout
	httpCfg.ReadTimeout = cfg.BSE.ReadTimeout
	httpCfg.TotalTimeout = cfg.BSE.TotalTimeout
	httpClient := bse.NewHTTPClient(httpCfg)
	defer httpClient.Close()

	limiter := ratelimit.NewRateLimiter(cfg.BSE.RateLimit, cfg.BSE.RateBurst)
	transport := bse.NewClient(httpClient, cfg.BSE.BaseURL, limiter, apiLogRepo, logger)
	session := bse.NewSessionManager(transport, credService, logger)

	var simulator bse.Simulator
	if cfg.BSE.Sandbox {
		simulator = bse.NewSandbox()
		logger.Warn("sandbox mode enabled, no live exchange calls will be made")
	}

	// Сервис поручений
	orderService := service.NewOrderService(
		orderRepo,
		clientRepo,
		credService,
		session,
		transport,
		bse.NewReferenceGenerator(),
		simulator,
		logger,
	)

	clientService := service.NewClientService(clientRepo, logger)

	// WebSocket hub
	hub := websocket.NewHub(logger)
	go hub.Run()
	orderService.SetWebSocketHub(hub)

	// HTTP роутер
	router := api.SetupRoutes(&api.Dependencies{
		OrderService:      orderService,
		ClientService:     clientService,
		CredentialService: credService,
		AuditLogs:         apiLogRepo,
		Hub:               hub,
		APIKeyHash:        cfg.Security.APIKeyHash,
		Logger:            logger,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second, // order entry биржи может отвечать десятки секунд
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting server", zap.String("addr", server.Addr))
		if cfg.Server.UseHTTPS {
			if err := server.ListenAndServeTLS(cfg.Server.CertFile, cfg.Server.KeyFile); err != nil && err != http.ErrServerClosed {
				logger.Fatal("server failed", zap.Error(err))
			}
		} else {
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Fatal("server failed", zap.Error(err))
			}
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}
	hub.Stop()

	logger.Info("server exited")
}

// initDatabase создает подключение к базе данных
func initDatabase(cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open(cfg.Database.Driver, cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Настройка пула соединений
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}
