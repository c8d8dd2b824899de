package service

import (
	"context"
	"errors"

	"tradebots/internal/models"
	"tradebots/pkg/utils"
)

// Ошибки сервиса ботов
var (
	ErrBotIDRequired          = errors.New("bot id is required")
	ErrBotParamValuesRequired = errors.New("bot param_values are required")
)

// CreateBotRequest - тело запроса создания бота
//
// ParamValues передается одной строкой через ", ".
type CreateBotRequest struct {
	ID          *int    `json:"id"`
	Name        string  `json:"name"`
	Active      bool    `json:"active"`
	Timeframe   string  `json:"timeframe"`
	ParamValues *string `json:"param_values"`
	StrategyID  *int    `json:"strategy_id"`
}

// UpdateBotRequest - тело запроса частичного обновления бота
//
// nil-поля не изменяются. Отвязать бота от стратегии через PATCH нельзя.
type UpdateBotRequest struct {
	Name        *string `json:"name"`
	Active      *bool   `json:"active"`
	Timeframe   *string `json:"timeframe"`
	ParamValues *string `json:"param_values"`
	StrategyID  *int    `json:"strategy_id"`
}

// BotService предоставляет бизнес-логику для управления ботами.
//
// Значения параметров не сверяются со списком параметров стратегии:
// ни длина, ни порядок не проверяются.
type BotService struct {
	botRepo BotRepositoryInterface
	wsHub   ChangeBroadcaster
}

// NewBotService создает новый экземпляр BotService.
func NewBotService(botRepo BotRepositoryInterface) *BotService {
	return &BotService{botRepo: botRepo}
}

// SetWebSocketHub устанавливает hub для broadcast событий изменения.
func (s *BotService) SetWebSocketHub(hub ChangeBroadcaster) {
	s.wsHub = hub
}

// ListBots возвращает публичный список ботов (ID, имя, активность).
func (s *BotService) ListBots(ctx context.Context) ([]models.BotSummary, error) {
	bots, err := s.botRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]models.BotSummary, 0, len(bots))
	for _, bot := range bots {
		result = append(result, bot.Summary())
	}
	return result, nil
}

// ListBotsDetailed возвращает ботов вместе с именем и параметрами стратегии.
//
// Для бота без стратегии strategy = null, params = [].
func (s *BotService) ListBotsDetailed(ctx context.Context) ([]*models.BotDetail, error) {
	details, err := s.botRepo.GetAllDetailed(ctx)
	if err != nil {
		return nil, err
	}

	if details == nil {
		details = []*models.BotDetail{}
	}
	for _, detail := range details {
		if detail.StrategyParams == nil {
			detail.StrategyParams = []string{}
		}
		if detail.ParamValues == nil {
			detail.ParamValues = []string{}
		}
	}
	return details, nil
}

// CreateBot создает бота с ID, заданным клиентом.
//
// Обязательны id и param_values. Ссылка на несуществующую стратегию,
// дубликат ID и слишком длинные поля возвращают ErrBadRequest.
func (s *BotService) CreateBot(ctx context.Context, req *CreateBotRequest) (*models.Bot, error) {
	if req == nil || req.ID == nil {
		return nil, badRequest(ErrBotIDRequired)
	}
	if req.ParamValues == nil {
		return nil, badRequest(ErrBotParamValuesRequired)
	}

	bot := &models.Bot{
		ID:          *req.ID,
		Name:        req.Name,
		Active:      req.Active,
		Timeframe:   req.Timeframe,
		ParamValues: models.SplitParams(*req.ParamValues),
		StrategyID:  req.StrategyID,
	}
	if err := validateBot(bot); err != nil {
		return nil, badRequest(err)
	}

	if err := s.botRepo.Create(ctx, bot); err != nil {
		return nil, badRequest(err)
	}

	publishChange(s.wsHub, models.ResourceBot, models.ActionCreated, bot.ID, bot.Name)
	return bot, nil
}

// UpdateBot применяет к боту только переданные поля.
func (s *BotService) UpdateBot(ctx context.Context, id int, req *UpdateBotRequest) (*models.Bot, error) {
	bot, err := s.botRepo.GetByID(ctx, id)
	if err != nil {
		return nil, badRequest(err)
	}

	if req != nil {
		if req.Name != nil {
			bot.Name = *req.Name
		}
		if req.Active != nil {
			bot.Active = *req.Active
		}
		if req.Timeframe != nil {
			bot.Timeframe = *req.Timeframe
		}
		if req.ParamValues != nil {
			bot.ParamValues = models.SplitParams(*req.ParamValues)
		}
		if req.StrategyID != nil {
			strategyID := *req.StrategyID
			bot.StrategyID = &strategyID
		}
	}
	if err := validateBot(bot); err != nil {
		return nil, badRequest(err)
	}

	if err := s.botRepo.Update(ctx, bot); err != nil {
		return nil, badRequest(err)
	}

	publishChange(s.wsHub, models.ResourceBot, models.ActionUpdated, bot.ID, bot.Name)
	return bot, nil
}

// DeleteBot удаляет бота.
func (s *BotService) DeleteBot(ctx context.Context, id int) error {
	bot, err := s.botRepo.GetByID(ctx, id)
	if err != nil {
		return badRequest(err)
	}

	if err := s.botRepo.Delete(ctx, id); err != nil {
		return badRequest(err)
	}

	publishChange(s.wsHub, models.ResourceBot, models.ActionDeleted, bot.ID, bot.Name)
	return nil
}

func validateBot(bot *models.Bot) error {
	var errs utils.ValidationErrors
	errs.AddError("id", utils.ValidateID(bot.ID))
	errs.AddError("name", utils.ValidateBotName(bot.Name))
	errs.AddError("timeframe", utils.ValidateTimeframe(bot.Timeframe))
	if bot.StrategyID != nil {
		errs.AddError("strategy_id", utils.ValidateID(*bot.StrategyID))
	}
	if errs.HasErrors() {
		return errs
	}
	return nil
}
