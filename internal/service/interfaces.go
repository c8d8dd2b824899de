package service

import (
	"context"

	"tradebots/internal/models"
	"tradebots/internal/repository"
)

// StrategyRepositoryInterface определяет интерфейс репозитория стратегий
type StrategyRepositoryInterface interface {
	Create(ctx context.Context, strategy *models.Strategy) error
	GetByID(ctx context.Context, id int) (*models.Strategy, error)
	GetAll(ctx context.Context) ([]*models.Strategy, error)
	Update(ctx context.Context, strategy *models.Strategy) error
	Delete(ctx context.Context, id int) error
}

// BotRepositoryInterface определяет интерфейс репозитория ботов
type BotRepositoryInterface interface {
	Create(ctx context.Context, bot *models.Bot) error
	GetByID(ctx context.Context, id int) (*models.Bot, error)
	GetAll(ctx context.Context) ([]*models.Bot, error)
	GetAllDetailed(ctx context.Context) ([]*models.BotDetail, error)
	Update(ctx context.Context, bot *models.Bot) error
	Delete(ctx context.Context, id int) error
}

// Проверяем, что реальные репозитории реализуют интерфейсы
var _ StrategyRepositoryInterface = (*repository.StrategyRepository)(nil)
var _ BotRepositoryInterface = (*repository.BotRepository)(nil)

// ============ Интерфейсы сервисов для Dependency Injection ============

// StrategyServiceInterface определяет интерфейс сервиса стратегий
type StrategyServiceInterface interface {
	ListStrategies(ctx context.Context) ([]models.StrategySummary, error)
	ListStrategiesDetailed(ctx context.Context) ([]*models.Strategy, error)
	CreateStrategy(ctx context.Context, req *CreateStrategyRequest) (*models.Strategy, error)
	UpdateStrategy(ctx context.Context, id int, req *UpdateStrategyRequest) (*models.Strategy, error)
	DeleteStrategy(ctx context.Context, id int) error
}

// BotServiceInterface определяет интерфейс сервиса ботов
type BotServiceInterface interface {
	ListBots(ctx context.Context) ([]models.BotSummary, error)
	ListBotsDetailed(ctx context.Context) ([]*models.BotDetail, error)
	CreateBot(ctx context.Context, req *CreateBotRequest) (*models.Bot, error)
	UpdateBot(ctx context.Context, id int, req *UpdateBotRequest) (*models.Bot, error)
	DeleteBot(ctx context.Context, id int) error
}

// Проверяем, что реальные сервисы реализуют интерфейсы
var _ StrategyServiceInterface = (*StrategyService)(nil)
var _ BotServiceInterface = (*BotService)(nil)
