package handlers

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"tradebots/internal/service"
	"tradebots/pkg/utils"
)

// BotHandler отвечает за управление ботами
//
// Функции:
// - Публичный список ботов (GET /bots)
// - Список с данными стратегий (GET /bots-detail, get:bots)
// - Создание (POST /bots/create, post:bots)
// - Частичное обновление (PATCH /bots/{id}, patch:bots)
// - Удаление (DELETE /bots/{id}, delete:bots)
type BotHandler struct {
	botService service.BotServiceInterface
	logger     *zap.Logger
}

// NewBotHandler создает новый BotHandler
func NewBotHandler(botService service.BotServiceInterface, logger *zap.Logger) *BotHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BotHandler{
		botService: botService,
		logger:     logger.With(utils.Component("bot_handler")),
	}
}

type botCreateResponse struct {
	Success     bool     `json:"success"`
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Active      bool     `json:"active"`
	ParamValues []string `json:"param_values"`
	Timeframe   string   `json:"timeframe"`
	StrategyID  *int     `json:"strategy_id"`
}

type botUpdateResponse struct {
	Success     bool     `json:"success"`
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Active      bool     `json:"active"`
	StrategyID  *int     `json:"strategy_id"`
	Timeframe   string   `json:"timeframe"`
	ParamValues []string `json:"param_values"`
}

type botDeleteResponse struct {
	Success bool   `json:"success"`
	Bot     string `json:"bot"`
}

// GetBots возвращает [{id, name, active}]
// GET /bots
func (h *BotHandler) GetBots(w http.ResponseWriter, r *http.Request) {
	bots, err := h.botService.ListBots(r.Context())
	if err != nil {
		h.logger.Error("failed to list bots", zap.Error(err))
		respondInternalError(w)
		return
	}
	respondWithJSON(w, http.StatusOK, bots)
}

// GetBotsDetail возвращает ботов вместе с именем и параметрами стратегии
// GET /bots-detail
func (h *BotHandler) GetBotsDetail(w http.ResponseWriter, r *http.Request) {
	bots, err := h.botService.ListBotsDetailed(r.Context())
	if err != nil {
		h.logger.Error("failed to list bots", zap.Error(err))
		respondInternalError(w)
		return
	}
	respondWithJSON(w, http.StatusOK, bots)
}

// CreateBot создает бота
// POST /bots/create
//
// Тело: {"id": 3, "name": "Bot", "active": true, "timeframe": "1h",
// "param_values": "7, price", "strategy_id": 1}
func (h *BotHandler) CreateBot(w http.ResponseWriter, r *http.Request) {
	var req service.CreateBotRequest
	if err := decodeJSON(w, r, &req); err != nil {
		logMutationError(h.logger, "bot create rejected", err)
		respondBadRequest(w)
		return
	}

	bot, err := h.botService.CreateBot(r.Context(), &req)
	if err != nil {
		logMutationError(h.logger, "bot create rejected", err)
		respondBadRequest(w)
		return
	}

	respondWithJSON(w, http.StatusOK, &botCreateResponse{
		Success:     true,
		ID:          bot.ID,
		Name:        bot.Name,
		Active:      bot.Active,
		ParamValues: bot.ParamValues,
		Timeframe:   bot.Timeframe,
		StrategyID:  bot.StrategyID,
	})
}

// UpdateBot применяет переданные поля
// PATCH /bots/{id}
func (h *BotHandler) UpdateBot(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondBadRequest(w)
		return
	}

	var req service.UpdateBotRequest
	if err := decodeJSON(w, r, &req); err != nil {
		logMutationError(h.logger, "bot update rejected", err, utils.BotID(id))
		respondBadRequest(w)
		return
	}

	bot, err := h.botService.UpdateBot(r.Context(), id, &req)
	if err != nil {
		logMutationError(h.logger, "bot update rejected", err, utils.BotID(id))
		respondBadRequest(w)
		return
	}

	respondWithJSON(w, http.StatusOK, &botUpdateResponse{
		Success:     true,
		ID:          bot.ID,
		Name:        bot.Name,
		Active:      bot.Active,
		StrategyID:  bot.StrategyID,
		Timeframe:   bot.Timeframe,
		ParamValues: bot.ParamValues,
	})
}

// DeleteBot удаляет бота
// DELETE /bots/{id}
func (h *BotHandler) DeleteBot(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondBadRequest(w)
		return
	}

	if err := h.botService.DeleteBot(r.Context(), id); err != nil {
		logMutationError(h.logger, "bot delete rejected", err, utils.BotID(id))
		respondBadRequest(w)
		return
	}

	respondWithJSON(w, http.StatusOK, &botDeleteResponse{
		Success: true,
		Bot:     fmt.Sprintf("Bot with ID %d was deleted", id),
	})
}
