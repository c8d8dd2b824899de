package handlers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Greeting - ответ GET /
const Greeting = "Welcome to Trading Bot App! Public endpoints are /strategies and /bots, use JWT tokens provided for all other ones."

// healthTimeout - время на ping базы в /health
const healthTimeout = 2 * time.Second

// Pinger - проверка доступности хранилища (*sql.DB)
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HomeHandler отвечает за публичные служебные эндпоинты: / и /health
type HomeHandler struct {
	db     Pinger
	logger *zap.Logger
}

// NewHomeHandler создает HomeHandler. db может быть nil, тогда /health
// проверяет только то, что процесс жив.
func NewHomeHandler(db Pinger, logger *zap.Logger) *HomeHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HomeHandler{db: db, logger: logger}
}

type greetingResponse struct {
	Message string `json:"message"`
}

// Greet возвращает приветствие
// GET /
func (h *HomeHandler) Greet(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, &greetingResponse{Message: Greeting})
}

// Health отвечает OK, если база доступна
// GET /health
func (h *HomeHandler) Health(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		if err := h.db.PingContext(ctx); err != nil {
			h.logger.Warn("health check failed", zap.Error(err))
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("database unavailable"))
			return
		}
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
