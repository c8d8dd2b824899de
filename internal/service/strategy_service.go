package service

import (
	"context"
	"errors"

	"tradebots/internal/models"
	"tradebots/pkg/utils"
)

// Ошибки сервиса стратегий
var (
	ErrStrategyIDRequired     = errors.New("strategy id is required")
	ErrStrategyParamsRequired = errors.New("strategy params are required")
)

// CreateStrategyRequest - тело запроса создания стратегии
//
// Params передается одной строкой через ", ".
type CreateStrategyRequest struct {
	ID     *int    `json:"id"`
	Name   string  `json:"name"`
	Params *string `json:"params"`
}

// UpdateStrategyRequest - тело запроса частичного обновления стратегии
//
// nil-поля не изменяются.
type UpdateStrategyRequest struct {
	Name   *string `json:"name"`
	Params *string `json:"params"`
}

// StrategyService предоставляет бизнес-логику для управления стратегиями.
//
// Отвечает за:
// - Разбор строки параметров в список
// - Частичное обновление (только переданные поля)
// - Приведение ошибок хранилища к ErrBadRequest
// - Broadcast событий изменения через WebSocket
type StrategyService struct {
	strategyRepo StrategyRepositoryInterface
	wsHub        ChangeBroadcaster
}

// NewStrategyService создает новый экземпляр StrategyService.
func NewStrategyService(strategyRepo StrategyRepositoryInterface) *StrategyService {
	return &StrategyService{strategyRepo: strategyRepo}
}

// SetWebSocketHub устанавливает hub для broadcast событий изменения.
func (s *StrategyService) SetWebSocketHub(hub ChangeBroadcaster) {
	s.wsHub = hub
}

// ListStrategies возвращает публичный список стратегий (ID и имя).
func (s *StrategyService) ListStrategies(ctx context.Context) ([]models.StrategySummary, error) {
	strategies, err := s.strategyRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]models.StrategySummary, 0, len(strategies))
	for _, strategy := range strategies {
		result = append(result, strategy.Summary())
	}
	return result, nil
}

// ListStrategiesDetailed возвращает стратегии вместе со списками параметров.
func (s *StrategyService) ListStrategiesDetailed(ctx context.Context) ([]*models.Strategy, error) {
	strategies, err := s.strategyRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	// Гарантируем возврат пустого массива вместо nil
	if strategies == nil {
		strategies = []*models.Strategy{}
	}
	for _, strategy := range strategies {
		if strategy.Params == nil {
			strategy.Params = []string{}
		}
	}
	return strategies, nil
}

// CreateStrategy создает стратегию с ID, заданным клиентом.
//
// Обязательны id и params. Любая ошибка возвращается как ErrBadRequest.
func (s *StrategyService) CreateStrategy(ctx context.Context, req *CreateStrategyRequest) (*models.Strategy, error) {
	if req == nil || req.ID == nil {
		return nil, badRequest(ErrStrategyIDRequired)
	}
	if req.Params == nil {
		return nil, badRequest(ErrStrategyParamsRequired)
	}

	strategy := &models.Strategy{
		ID:     *req.ID,
		Name:   req.Name,
		Params: models.SplitParams(*req.Params),
	}
	if err := validateStrategy(strategy); err != nil {
		return nil, badRequest(err)
	}

	if err := s.strategyRepo.Create(ctx, strategy); err != nil {
		return nil, badRequest(err)
	}

	publishChange(s.wsHub, models.ResourceStrategy, models.ActionCreated, strategy.ID, strategy.Name)
	return strategy, nil
}

// UpdateStrategy применяет к стратегии только переданные поля.
//
// Несуществующий ID возвращает ErrBadRequest.
func (s *StrategyService) UpdateStrategy(ctx context.Context, id int, req *UpdateStrategyRequest) (*models.Strategy, error) {
	strategy, err := s.strategyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, badRequest(err)
	}

	if req != nil {
		if req.Name != nil {
			strategy.Name = *req.Name
		}
		if req.Params != nil {
			strategy.Params = models.SplitParams(*req.Params)
		}
	}
	if err := validateStrategy(strategy); err != nil {
		return nil, badRequest(err)
	}

	if err := s.strategyRepo.Update(ctx, strategy); err != nil {
		return nil, badRequest(err)
	}

	publishChange(s.wsHub, models.ResourceStrategy, models.ActionUpdated, strategy.ID, strategy.Name)
	return strategy, nil
}

// DeleteStrategy удаляет стратегию.
//
// Связанные боты не удаляются: их strategy_id обнуляется на уровне БД.
func (s *StrategyService) DeleteStrategy(ctx context.Context, id int) error {
	strategy, err := s.strategyRepo.GetByID(ctx, id)
	if err != nil {
		return badRequest(err)
	}

	if err := s.strategyRepo.Delete(ctx, id); err != nil {
		return badRequest(err)
	}

	publishChange(s.wsHub, models.ResourceStrategy, models.ActionDeleted, strategy.ID, strategy.Name)
	return nil
}

func validateStrategy(strategy *models.Strategy) error {
	var errs utils.ValidationErrors
	errs.AddError("id", utils.ValidateID(strategy.ID))
	errs.AddError("name", utils.ValidateStrategyName(strategy.Name))
	if errs.HasErrors() {
		return errs
	}
	return nil
}
