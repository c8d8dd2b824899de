package handlers

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"tradebots/internal/models"
	"tradebots/internal/service"
)

// ErrMockDatabase - ошибка для имитации сбоя хранилища
var ErrMockDatabase = errors.New("mock database error")

// ============ MockStrategyService ============

// MockStrategyService - in-memory реализация StrategyServiceInterface
type MockStrategyService struct {
	mu         sync.Mutex
	strategies map[int]*models.Strategy
	errs       map[string]error
}

func NewMockStrategyService() *MockStrategyService {
	return &MockStrategyService{
		strategies: make(map[int]*models.Strategy),
		errs:       make(map[string]error),
	}
}

var _ service.StrategyServiceInterface = (*MockStrategyService)(nil)

func (m *MockStrategyService) ListStrategies(ctx context.Context) ([]models.StrategySummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.errs["list"]; err != nil {
		return nil, err
	}
	result := []models.StrategySummary{}
	for _, s := range m.sorted() {
		result = append(result, s.Summary())
	}
	return result, nil
}

func (m *MockStrategyService) ListStrategiesDetailed(ctx context.Context) ([]*models.Strategy, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.errs["list"]; err != nil {
		return nil, err
	}
	return m.sorted(), nil
}

func (m *MockStrategyService) CreateStrategy(ctx context.Context, req *service.CreateStrategyRequest) (*models.Strategy, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.errs["create"]; err != nil {
		return nil, err
	}
	if req.ID == nil || req.Params == nil {
		return nil, fmt.Errorf("%w: missing field", service.ErrBadRequest)
	}
	if _, exists := m.strategies[*req.ID]; exists {
		return nil, fmt.Errorf("%w: duplicate", service.ErrBadRequest)
	}
	s := &models.Strategy{ID: *req.ID, Name: req.Name, Params: models.SplitParams(*req.Params)}
	m.strategies[s.ID] = s
	return s, nil
}

func (m *MockStrategyService) UpdateStrategy(ctx context.Context, id int, req *service.UpdateStrategyRequest) (*models.Strategy, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.strategies[id]
	if !ok {
		return nil, fmt.Errorf("%w: not found", service.ErrBadRequest)
	}
	if req.Name != nil {
		s.Name = *req.Name
	}
	if req.Params != nil {
		s.Params = models.SplitParams(*req.Params)
	}
	return s, nil
}

func (m *MockStrategyService) DeleteStrategy(ctx context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.strategies[id]; !ok {
		return fmt.Errorf("%w: not found", service.ErrBadRequest)
	}
	delete(m.strategies, id)
	return nil
}

// AddStrategy добавляет стратегию напрямую
func (m *MockStrategyService) AddStrategy(s *models.Strategy) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.strategies[s.ID] = s
}

// SetError устанавливает ошибку для операции ("list", "create")
func (m *MockStrategyService) SetError(operation string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[operation] = err
}

func (m *MockStrategyService) sorted() []*models.Strategy {
	result := make([]*models.Strategy, 0, len(m.strategies))
	for _, s := range m.strategies {
		result = append(result, s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// ============ MockBotService ============

// MockBotService - in-memory реализация BotServiceInterface
type MockBotService struct {
	mu     sync.Mutex
	bots   map[int]*models.Bot
	detail []*models.BotDetail
	errs   map[string]error
}

func NewMockBotService() *MockBotService {
	return &MockBotService{
		bots: make(map[int]*models.Bot),
		errs: make(map[string]error),
	}
}

var _ service.BotServiceInterface = (*MockBotService)(nil)

func (m *MockBotService) ListBots(ctx context.Context) ([]models.BotSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.errs["list"]; err != nil {
		return nil, err
	}
	result := []models.BotSummary{}
	for _, b := range m.sorted() {
		result = append(result, b.Summary())
	}
	return result, nil
}

func (m *MockBotService) ListBotsDetailed(ctx context.Context) ([]*models.BotDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.errs["list"]; err != nil {
		return nil, err
	}
	if m.detail == nil {
		return []*models.BotDetail{}, nil
	}
	return m.detail, nil
}

func (m *MockBotService) CreateBot(ctx context.Context, req *service.CreateBotRequest) (*models.Bot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.errs["create"]; err != nil {
		return nil, err
	}
	if req.ID == nil || req.ParamValues == nil {
		return nil, fmt.Errorf("%w: missing field", service.ErrBadRequest)
	}
	if _, exists := m.bots[*req.ID]; exists {
		return nil, fmt.Errorf("%w: duplicate", service.ErrBadRequest)
	}
	b := &models.Bot{
		ID:          *req.ID,
		Name:        req.Name,
		Active:      req.Active,
		Timeframe:   req.Timeframe,
		ParamValues: models.SplitParams(*req.ParamValues),
		StrategyID:  req.StrategyID,
	}
	m.bots[b.ID] = b
	return b, nil
}

func (m *MockBotService) UpdateBot(ctx context.Context, id int, req *service.UpdateBotRequest) (*models.Bot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bots[id]
	if !ok {
		return nil, fmt.Errorf("%w: not found", service.ErrBadRequest)
	}
	if req.Name != nil {
		b.Name = *req.Name
	}
	if req.Active != nil {
		b.Active = *req.Active
	}
	if req.Timeframe != nil {
		b.Timeframe = *req.Timeframe
	}
	if req.ParamValues != nil {
		b.ParamValues = models.SplitParams(*req.ParamValues)
	}
	if req.StrategyID != nil {
		sid := *req.StrategyID
		b.StrategyID = &sid
	}
	return b, nil
}

func (m *MockBotService) DeleteBot(ctx context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.errs["delete"]; err != nil {
		return err
	}
	if _, ok := m.bots[id]; !ok {
		return fmt.Errorf("%w: not found", service.ErrBadRequest)
	}
	delete(m.bots, id)
	return nil
}

// AddBot добавляет бота напрямую
func (m *MockBotService) AddBot(b *models.Bot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bots[b.ID] = b
}

// SetDetail задает ответ ListBotsDetailed
func (m *MockBotService) SetDetail(detail []*models.BotDetail) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.detail = detail
}

// SetError устанавливает ошибку для операции ("list", "create", "delete")
func (m *MockBotService) SetError(operation string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[operation] = err
}

func (m *MockBotService) sorted() []*models.Bot {
	result := make([]*models.Bot, 0, len(m.bots))
	for _, b := range m.bots {
		result = append(result, b)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// ============ Helpers ============

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

// mockPinger - Pinger для /health
type mockPinger struct {
	err error
}

func (p *mockPinger) PingContext(ctx context.Context) error { return p.err }
