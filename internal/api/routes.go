package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"tradebots/internal/api/handlers"
	"tradebots/internal/api/middleware"
	"tradebots/internal/api/response"
	"tradebots/internal/service"
	"tradebots/internal/websocket"
	"tradebots/pkg/crypto"
)

// Права доступа, которые проверяются в claim permissions
const (
	PermissionGetStrategies    = "get:strategies"
	PermissionPostStrategies   = "post:strategies"
	PermissionPatchStrategies  = "patch:strategies"
	PermissionDeleteStrategies = "delete:strategies"
	PermissionGetBots          = "get:bots"
	PermissionPostBots         = "post:bots"
	PermissionPatchBots        = "patch:bots"
	PermissionDeleteBots       = "delete:bots"
)

// idPattern - {id} только из цифр, иначе маршрут не совпадает (404)
const idPattern = "{id:[0-9]+}"

// Dependencies содержит все зависимости для API handlers
type Dependencies struct {
	StrategyService service.StrategyServiceInterface
	BotService      service.BotServiceInterface

	// Verifier проверяет bearer токены. Без него защищённые маршруты
	// не регистрируются.
	Verifier middleware.TokenVerifier

	// Hub - поток событий изменений /ws/stream (опционально)
	Hub *websocket.Hub

	// DB проверяется в /health (опционально)
	DB handlers.Pinger

	// DebugCredentials - basic auth для /metrics. nil закрывает /metrics (403).
	DebugCredentials *crypto.Credentials

	// CORSAllowedOrigins - CORS_ALLOWED_ORIGINS. Пустой список разрешает всё.
	CORSAllowedOrigins []string

	Logger *zap.Logger
}

// SetupRoutes настраивает все HTTP маршруты приложения
//
// Структура маршрутов:
//
//	GET    /                    - приветствие (public)
//	GET    /health              - проверка БД (public)
//	GET    /strategies          - [{id, name}] (public)
//	GET    /strategies-detail   - get:strategies
//	POST   /strategies/create   - post:strategies
//	PATCH  /strategies/{id}     - patch:strategies
//	DELETE /strategies/{id}     - delete:strategies
//	GET    /bots                - [{id, name, active}] (public)
//	GET    /bots-detail         - get:bots
//	POST   /bots/create         - post:bots
//	PATCH  /bots/{id}           - patch:bots
//	DELETE /bots/{id}           - delete:bots
//	GET    /ws/stream           - WebSocket событий изменений (public)
//	GET    /metrics             - Prometheus (debug basic auth)
//
// Middleware применяется в следующем порядке:
// 1. Recovery
// 2. Metrics
// 3. Logging
// 4. CORS
// 5. RequirePermission (только для защищенных маршрутов)
func SetupRoutes(deps *Dependencies) *mux.Router {
	if deps == nil {
		deps = &Dependencies{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := mux.NewRouter()

	// Глобальные middleware (применяются ко всем совпавшим маршрутам)
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.Metrics)
	router.Use(middleware.Logging(logger))
	router.Use(middleware.CORS(deps.CORSAllowedOrigins))

	// Несовпавшие запросы идут мимо router.Use, логируем их отдельно
	router.NotFoundHandler = fallback(logger, response.NotFound)
	router.MethodNotAllowedHandler = fallback(logger, response.MethodNotAllowed)

	homeHandler := handlers.NewHomeHandler(deps.DB, logger)
	router.HandleFunc("/", homeHandler.Greet).Methods(withPreflight(http.MethodGet)...)
	router.HandleFunc("/health", homeHandler.Health).Methods(withPreflight(http.MethodGet)...)

	var authz *middleware.Authorizer
	if deps.Verifier != nil {
		authz = middleware.NewAuthorizer(deps.Verifier, logger)
	} else {
		logger.Warn("token verifier not configured, protected routes disabled")
	}

	protect := func(permission string, h http.HandlerFunc) http.Handler {
		return authz.RequirePermission(permission)(h)
	}

	// Strategy routes
	if deps.StrategyService != nil {
		strategyHandler := handlers.NewStrategyHandler(deps.StrategyService, logger)

		router.HandleFunc("/strategies", strategyHandler.GetStrategies).Methods(withPreflight(http.MethodGet)...)
		if authz != nil {
			router.Handle("/strategies-detail", protect(PermissionGetStrategies, strategyHandler.GetStrategiesDetail)).Methods(withPreflight(http.MethodGet)...)
			router.Handle("/strategies/create", protect(PermissionPostStrategies, strategyHandler.CreateStrategy)).Methods(withPreflight(http.MethodPost)...)
			router.Handle("/strategies/"+idPattern, protect(PermissionPatchStrategies, strategyHandler.UpdateStrategy)).Methods(withPreflight(http.MethodPatch)...)
			router.Handle("/strategies/"+idPattern, protect(PermissionDeleteStrategies, strategyHandler.DeleteStrategy)).Methods(withPreflight(http.MethodDelete)...)
		}
	}

	// Bot routes
	if deps.BotService != nil {
		botHandler := handlers.NewBotHandler(deps.BotService, logger)

		router.HandleFunc("/bots", botHandler.GetBots).Methods(withPreflight(http.MethodGet)...)
		if authz != nil {
			router.Handle("/bots-detail", protect(PermissionGetBots, botHandler.GetBotsDetail)).Methods(withPreflight(http.MethodGet)...)
			router.Handle("/bots/create", protect(PermissionPostBots, botHandler.CreateBot)).Methods(withPreflight(http.MethodPost)...)
			router.Handle("/bots/"+idPattern, protect(PermissionPatchBots, botHandler.UpdateBot)).Methods(withPreflight(http.MethodPatch)...)
			router.Handle("/bots/"+idPattern, protect(PermissionDeleteBots, botHandler.DeleteBot)).Methods(withPreflight(http.MethodDelete)...)
		}
	}

	// WebSocket route
	if deps.Hub != nil {
		router.Handle("/ws/stream", deps.Hub.Handler(websocket.NewOriginChecker(deps.CORSAllowedOrigins))).Methods(withPreflight(http.MethodGet)...)
	}

	router.Handle("/metrics", middleware.DebugAuth(deps.DebugCredentials)(promhttp.Handler())).Methods(withPreflight(http.MethodGet)...)

	return router
}

func fallback(logger *zap.Logger, h http.HandlerFunc) http.Handler {
	return middleware.Metrics(middleware.Logging(logger)(h))
}

// withPreflight добавляет OPTIONS к методам маршрута. Preflight
// отвечает middleware.CORS до обработчика и проверки прав.
func withPreflight(method string) []string {
	return []string{method, http.MethodOptions}
}
