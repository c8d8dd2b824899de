package service

import (
	"context"
	"sort"
	"sync"

	"tradebots/internal/models"
	"tradebots/internal/repository"
)

// ============ Mock StrategyRepository ============

type MockStrategyRepository struct {
	mu         sync.Mutex
	strategies map[int]*models.Strategy
	createErr  error
	getErr     error
	updateErr  error
	deleteErr  error
}

func NewMockStrategyRepository() *MockStrategyRepository {
	return &MockStrategyRepository{
		strategies: make(map[int]*models.Strategy),
	}
}

func (m *MockStrategyRepository) Create(ctx context.Context, strategy *models.Strategy) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	if _, exists := m.strategies[strategy.ID]; exists {
		return repository.ErrStrategyExists
	}
	stored := *strategy
	m.strategies[strategy.ID] = &stored
	return nil
}

func (m *MockStrategyRepository) GetByID(ctx context.Context, id int) (*models.Strategy, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	strategy, exists := m.strategies[id]
	if !exists {
		return nil, repository.ErrStrategyNotFound
	}
	copied := *strategy
	return &copied, nil
}

func (m *MockStrategyRepository) GetAll(ctx context.Context) ([]*models.Strategy, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	var result []*models.Strategy
	for _, s := range m.strategies {
		copied := *s
		result = append(result, &copied)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *MockStrategyRepository) Update(ctx context.Context, strategy *models.Strategy) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, exists := m.strategies[strategy.ID]; !exists {
		return repository.ErrStrategyNotFound
	}
	stored := *strategy
	m.strategies[strategy.ID] = &stored
	return nil
}

func (m *MockStrategyRepository) Delete(ctx context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, exists := m.strategies[id]; !exists {
		return repository.ErrStrategyNotFound
	}
	delete(m.strategies, id)
	return nil
}

// ============ Mock BotRepository ============

type MockBotRepository struct {
	mu        sync.Mutex
	bots      map[int]*models.Bot
	names     map[int]string // strategy id -> name, для GetAllDetailed
	params    map[int][]string
	createErr error
	getErr    error
	updateErr error
	deleteErr error
}

func NewMockBotRepository() *MockBotRepository {
	return &MockBotRepository{
		bots:   make(map[int]*models.Bot),
		names:  make(map[int]string),
		params: make(map[int][]string),
	}
}

func (m *MockBotRepository) Create(ctx context.Context, bot *models.Bot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	if _, exists := m.bots[bot.ID]; exists {
		return repository.ErrBotExists
	}
	stored := *bot
	m.bots[bot.ID] = &stored
	return nil
}

func (m *MockBotRepository) GetByID(ctx context.Context, id int) (*models.Bot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	bot, exists := m.bots[id]
	if !exists {
		return nil, repository.ErrBotNotFound
	}
	copied := *bot
	return &copied, nil
}

func (m *MockBotRepository) GetAll(ctx context.Context) ([]*models.Bot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	var result []*models.Bot
	for _, b := range m.bots {
		copied := *b
		result = append(result, &copied)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *MockBotRepository) GetAllDetailed(ctx context.Context) ([]*models.BotDetail, error) {
	bots, err := m.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*models.BotDetail
	for _, b := range bots {
		detail := &models.BotDetail{Bot: *b}
		if b.StrategyID != nil {
			if name, ok := m.names[*b.StrategyID]; ok {
				detail.StrategyName = &name
				detail.StrategyParams = m.params[*b.StrategyID]
			}
		}
		result = append(result, detail)
	}
	return result, nil
}

func (m *MockBotRepository) Update(ctx context.Context, bot *models.Bot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, exists := m.bots[bot.ID]; !exists {
		return repository.ErrBotNotFound
	}
	stored := *bot
	m.bots[bot.ID] = &stored
	return nil
}

func (m *MockBotRepository) Delete(ctx context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, exists := m.bots[id]; !exists {
		return repository.ErrBotNotFound
	}
	delete(m.bots, id)
	return nil
}

// ============ Mock ChangeBroadcaster ============

type MockChangeBroadcaster struct {
	mu     sync.Mutex
	events []*models.ChangeEvent
}

func NewMockChangeBroadcaster() *MockChangeBroadcaster {
	return &MockChangeBroadcaster{}
}

func (m *MockChangeBroadcaster) BroadcastChange(event *models.ChangeEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
}

func (m *MockChangeBroadcaster) Events() []*models.ChangeEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*models.ChangeEvent(nil), m.events...)
}

// ============ helpers ============

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
func boolPtr(b bool) *bool    { return &b }
