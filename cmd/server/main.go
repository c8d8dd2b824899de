package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"tradebots/internal/api"
	"tradebots/internal/auth"
	"tradebots/internal/config"
	"tradebots/internal/repository"
	"tradebots/internal/service"
	"tradebots/internal/websocket"
	"tradebots/pkg/crypto"
	"tradebots/pkg/retry"
	"tradebots/pkg/utils"
)

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := utils.InitLogger(utils.LogConfig{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	defer logger.Sync()

	// Инициализация базы данных
	db, err := initDatabase(cfg, logger.Logger)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("connected to database", zap.String("dsn", cfg.Database.DSNWithoutPassword()))

	schemaCtx, cancelSchema := context.WithTimeout(context.Background(), 30*time.Second)
	err = repository.EnsureSchema(schemaCtx, db)
	cancelSchema()
	if err != nil {
		logger.Fatal("failed to prepare schema", zap.Error(err))
	}

	// Инициализация репозиториев
	strategyRepo := repository.NewStrategyRepository(db)
	botRepo := repository.NewBotRepository(db)

	// Инициализация сервисов
	strategyService := service.NewStrategyService(strategyRepo)
	botService := service.NewBotService(botRepo)

	// WebSocket hub событий изменений
	hub := websocket.NewHub(logger.Logger)
	go hub.Run()
	strategyService.SetWebSocketHub(hub)
	botService.SetWebSocketHub(hub)

	// Проверка JWT
	keys := auth.NewKeyResolver(auth.KeyResolverConfig{
		URL:                auth.JWKSURL(cfg.Auth.Domain),
		TTL:                cfg.Auth.JWKSCacheTTL,
		Timeout:            cfg.Auth.JWKSTimeout,
		MinRefreshInterval: cfg.Auth.JWKSMinRefreshInterval,
		Logger:             logger.Logger,
	})
	verifier := auth.NewVerifier(keys, auth.VerifierConfig{
		Audience:   cfg.Auth.Audience,
		Issuer:     auth.IssuerURL(cfg.Auth.Domain),
		Algorithms: cfg.Auth.Algorithms,
		Leeway:     cfg.Auth.Leeway,
	})

	var debugCredentials *crypto.Credentials
	if cfg.Debug.Username != "" {
		debugCredentials, err = crypto.NewCredentials(cfg.Debug.Username, cfg.Debug.PasswordHash)
		if err != nil {
			logger.Fatal("invalid debug credentials", zap.Error(err))
		}
		logger.Info("metrics basic auth enabled", zap.String("user", debugCredentials.Username()))
	} else {
		logger.Info("debug credentials not configured, /metrics is disabled")
	}

	// Настройка зависимостей для API
	deps := &api.Dependencies{
		StrategyService:    strategyService,
		BotService:         botService,
		Verifier:           verifier,
		Hub:                hub,
		DB:                 db,
		DebugCredentials:   debugCredentials,
		CORSAllowedOrigins: cfg.CORS.AllowedOrigins,
		Logger:             logger.Logger,
	}

	router := api.SetupRoutes(deps)

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Запуск сервера в отдельной горутине
	go func() {
		logger.Info("starting server",
			zap.String("addr", server.Addr),
			zap.Bool("https", cfg.Server.UseHTTPS),
			zap.String("auth_domain", cfg.Auth.Domain),
			zap.String("audience", cfg.Auth.Audience),
		)

		var err error
		if cfg.Server.UseHTTPS {
			err = server.ListenAndServeTLS(cfg.Server.CertFile, cfg.Server.KeyFile)
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("shutting down server", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	// Закрываем WebSocket соединения после остановки HTTP
	hub.Stop()

	logger.Info("server exited")
}

// initDatabase создает подключение к базе данных
//
// БД может подниматься дольше сервиса, поэтому ping повторяется
// с экспоненциальной задержкой.
func initDatabase(cfg *config.Config, logger *zap.Logger) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Настройка пула соединений
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	retryCfg := retry.StartupConfig()
	retryCfg.OnRetry = func(attempt int, err error, delay time.Duration) {
		logger.Warn("database not ready, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	// Проверка подключения
	err = retry.Do(ctx, func() error {
		if err := db.PingContext(ctx); err != nil {
			if isPermanentDBError(err) {
				return retry.Permanent(err)
			}
			return err
		}
		return nil
	}, retryCfg)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// isPermanentDBError - ошибки, которые не исчезнут при повторе:
// неверные учётные данные (класс 28) и несуществующая база (3D000)
func isPermanentDBError(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code.Class() == "28" || pqErr.Code == "3D000"
}
