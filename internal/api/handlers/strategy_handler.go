package handlers

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"tradebots/internal/service"
	"tradebots/pkg/utils"
)

// StrategyHandler отвечает за управление стратегиями
//
// Функции:
// - Публичный список стратегий (GET /strategies)
// - Список с параметрами (GET /strategies-detail, get:strategies)
// - Создание (POST /strategies/create, post:strategies)
// - Частичное обновление (PATCH /strategies/{id}, patch:strategies)
// - Удаление (DELETE /strategies/{id}, delete:strategies)
//
// Права проверяются middleware на уровне маршрутов.
type StrategyHandler struct {
	strategyService service.StrategyServiceInterface
	logger          *zap.Logger
}

// NewStrategyHandler создает новый StrategyHandler
func NewStrategyHandler(strategyService service.StrategyServiceInterface, logger *zap.Logger) *StrategyHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StrategyHandler{
		strategyService: strategyService,
		logger:          logger.With(utils.Component("strategy_handler")),
	}
}

type strategyCreateResponse struct {
	Success bool     `json:"success"`
	ID      int      `json:"id"`
	Name    string   `json:"name"`
	Params  []string `json:"params"`
}

type strategyUpdateResponse struct {
	Success bool     `json:"success"`
	Name    string   `json:"name"`
	Params  []string `json:"params"`
}

type strategyDeleteResponse struct {
	Success  bool   `json:"success"`
	Strategy string `json:"strategy"`
}

// GetStrategies возвращает [{id, name}]
// GET /strategies
func (h *StrategyHandler) GetStrategies(w http.ResponseWriter, r *http.Request) {
	strategies, err := h.strategyService.ListStrategies(r.Context())
	if err != nil {
		h.logger.Error("failed to list strategies", zap.Error(err))
		respondInternalError(w)
		return
	}
	respondWithJSON(w, http.StatusOK, strategies)
}

// GetStrategiesDetail возвращает [{id, name, params}]
// GET /strategies-detail
func (h *StrategyHandler) GetStrategiesDetail(w http.ResponseWriter, r *http.Request) {
	strategies, err := h.strategyService.ListStrategiesDetailed(r.Context())
	if err != nil {
		h.logger.Error("failed to list strategies", zap.Error(err))
		respondInternalError(w)
		return
	}
	respondWithJSON(w, http.StatusOK, strategies)
}

// CreateStrategy создает стратегию
// POST /strategies/create
//
// Тело: {"id": 69, "name": "New Strategy", "params": "candles, signal"}
func (h *StrategyHandler) CreateStrategy(w http.ResponseWriter, r *http.Request) {
	var req service.CreateStrategyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.rejectMutation("create", err)
		respondBadRequest(w)
		return
	}

	strategy, err := h.strategyService.CreateStrategy(r.Context(), &req)
	if err != nil {
		h.rejectMutation("create", err)
		respondBadRequest(w)
		return
	}

	respondWithJSON(w, http.StatusOK, &strategyCreateResponse{
		Success: true,
		ID:      strategy.ID,
		Name:    strategy.Name,
		Params:  strategy.Params,
	})
}

// UpdateStrategy применяет переданные поля
// PATCH /strategies/{id}
func (h *StrategyHandler) UpdateStrategy(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondBadRequest(w)
		return
	}

	var req service.UpdateStrategyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.rejectMutation("update", err, utils.StrategyID(id))
		respondBadRequest(w)
		return
	}

	strategy, err := h.strategyService.UpdateStrategy(r.Context(), id, &req)
	if err != nil {
		h.rejectMutation("update", err, utils.StrategyID(id))
		respondBadRequest(w)
		return
	}

	respondWithJSON(w, http.StatusOK, &strategyUpdateResponse{
		Success: true,
		Name:    strategy.Name,
		Params:  strategy.Params,
	})
}

// DeleteStrategy удаляет стратегию
// DELETE /strategies/{id}
func (h *StrategyHandler) DeleteStrategy(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondBadRequest(w)
		return
	}

	if err := h.strategyService.DeleteStrategy(r.Context(), id); err != nil {
		h.rejectMutation("delete", err, utils.StrategyID(id))
		respondBadRequest(w)
		return
	}

	respondWithJSON(w, http.StatusOK, &strategyDeleteResponse{
		Success:  true,
		Strategy: fmt.Sprintf("Strategy with ID %d was deleted", id),
	})
}

// rejectMutation логирует причину 400. Клиент деталей не получает.
func (h *StrategyHandler) rejectMutation(op string, err error, fields ...zap.Field) {
	logMutationError(h.logger, "strategy "+op+" rejected", err, fields...)
}
