package service

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"tradebots/internal/models"
	"tradebots/internal/repository"
)

func newBotServiceWithMocks() (*BotService, *MockBotRepository, *MockChangeBroadcaster) {
	repo := NewMockBotRepository()
	hub := NewMockChangeBroadcaster()
	svc := NewBotService(repo)
	svc.SetWebSocketHub(hub)
	return svc, repo, hub
}

func seedGreatBot(repo *MockBotRepository) {
	repo.bots[1] = &models.Bot{
		ID:          1,
		Name:        "Great Bot",
		Active:      true,
		Timeframe:   "1h",
		ParamValues: []string{"20", "close"},
		StrategyID:  intPtr(1),
	}
	repo.names[1] = "Donchian Strategy"
	repo.params[1] = []string{"channel", "reference"}
}

func TestBotService_CreateBot(t *testing.T) {
	tests := []struct {
		name    string
		req     *CreateBotRequest
		setup   func(repo *MockBotRepository)
		wantErr bool
	}{
		{
			name: "success",
			req: &CreateBotRequest{
				ID: intPtr(69), Name: "New Bot", Active: true, Timeframe: "4h",
				ParamValues: strPtr("7, price"), StrategyID: intPtr(1),
			},
		},
		{
			name: "without strategy",
			req:  &CreateBotRequest{ID: intPtr(70), Name: "Orphan", ParamValues: strPtr("1")},
		},
		{
			name:    "missing id",
			req:     &CreateBotRequest{Name: "No ID", ParamValues: strPtr("1")},
			wantErr: true,
		},
		{
			name:    "missing param_values",
			req:     &CreateBotRequest{ID: intPtr(1), Name: "No values"},
			wantErr: true,
		},
		{
			name:    "name too long",
			req:     &CreateBotRequest{ID: intPtr(1), Name: "This bot name is way too long", ParamValues: strPtr("1")},
			wantErr: true,
		},
		{
			name:    "timeframe too long",
			req:     &CreateBotRequest{ID: intPtr(1), Name: "Bot", Timeframe: "weekly", ParamValues: strPtr("1")},
			wantErr: true,
		},
		{
			name: "nonexistent strategy",
			req:  &CreateBotRequest{ID: intPtr(2), Name: "Lost", ParamValues: strPtr("1"), StrategyID: intPtr(404)},
			setup: func(repo *MockBotRepository) {
				repo.createErr = repository.ErrInvalidReference
			},
			wantErr: true,
		},
		{
			name: "duplicate id",
			req:  &CreateBotRequest{ID: intPtr(1), Name: "Dup", ParamValues: strPtr("1")},
			setup: func(repo *MockBotRepository) {
				seedGreatBot(repo)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, hub := newBotServiceWithMocks()
			if tt.setup != nil {
				tt.setup(repo)
			}

			bot, err := svc.CreateBot(context.Background(), tt.req)
			if tt.wantErr {
				if !errors.Is(err, ErrBadRequest) {
					t.Fatalf("expected ErrBadRequest, got %v", err)
				}
				if len(hub.Events()) != 0 {
					t.Errorf("no events expected on failure")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if bot.ID != *tt.req.ID || bot.Name != tt.req.Name {
				t.Errorf("unexpected bot: %+v", bot)
			}
			if !reflect.DeepEqual(bot.ParamValues, models.SplitParams(*tt.req.ParamValues)) {
				t.Errorf("unexpected param values: %q", bot.ParamValues)
			}
			if events := hub.Events(); len(events) != 1 || events[0].Resource != models.ResourceBot {
				t.Errorf("expected one bot event, got %+v", events)
			}
		})
	}
}

func TestBotService_UpdateBot_NameOnly(t *testing.T) {
	svc, repo, hub := newBotServiceWithMocks()
	seedGreatBot(repo)

	bot, err := svc.UpdateBot(context.Background(), 1, &UpdateBotRequest{Name: strPtr("Great Bot!")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := &models.Bot{
		ID:          1,
		Name:        "Great Bot!",
		Active:      true,
		Timeframe:   "1h",
		ParamValues: []string{"20", "close"},
		StrategyID:  intPtr(1),
	}
	if !reflect.DeepEqual(bot, expected) {
		t.Errorf("expected %+v, got %+v", expected, bot)
	}
	if !reflect.DeepEqual(repo.bots[1], expected) {
		t.Errorf("update was not persisted: %+v", repo.bots[1])
	}
	if events := hub.Events(); len(events) != 1 || events[0].Action != models.ActionUpdated {
		t.Errorf("expected one update event, got %+v", events)
	}
}

func TestBotService_UpdateBot(t *testing.T) {
	tests := []struct {
		name    string
		id      int
		req     *UpdateBotRequest
		check   func(t *testing.T, bot *models.Bot)
		wantErr bool
	}{
		{
			name: "deactivate",
			id:   1,
			req:  &UpdateBotRequest{Active: boolPtr(false)},
			check: func(t *testing.T, bot *models.Bot) {
				if bot.Active {
					t.Error("bot should be inactive")
				}
				if bot.Name != "Great Bot" {
					t.Errorf("name must stay unchanged, got %q", bot.Name)
				}
			},
		},
		{
			name: "param values and timeframe",
			id:   1,
			req:  &UpdateBotRequest{ParamValues: strPtr("50, open"), Timeframe: strPtr("15m")},
			check: func(t *testing.T, bot *models.Bot) {
				if !reflect.DeepEqual(bot.ParamValues, []string{"50", "open"}) || bot.Timeframe != "15m" {
					t.Errorf("unexpected bot: %+v", bot)
				}
			},
		},
		{
			name: "move to another strategy",
			id:   1,
			req:  &UpdateBotRequest{StrategyID: intPtr(2)},
			check: func(t *testing.T, bot *models.Bot) {
				if bot.StrategyID == nil || *bot.StrategyID != 2 {
					t.Errorf("unexpected strategy id: %v", bot.StrategyID)
				}
			},
		},
		{
			name:    "nonexistent id",
			id:      404,
			req:     &UpdateBotRequest{Name: strPtr("Ghost")},
			wantErr: true,
		},
		{
			name:    "timeframe too long",
			id:      1,
			req:     &UpdateBotRequest{Timeframe: strPtr("monthly")},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _ := newBotServiceWithMocks()
			seedGreatBot(repo)

			bot, err := svc.UpdateBot(context.Background(), tt.id, tt.req)
			if tt.wantErr {
				if !errors.Is(err, ErrBadRequest) {
					t.Fatalf("expected ErrBadRequest, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tt.check(t, bot)
		})
	}
}

func TestBotService_UpdateBot_StoreFailure(t *testing.T) {
	svc, repo, hub := newBotServiceWithMocks()
	seedGreatBot(repo)
	repo.updateErr = repository.ErrInvalidReference

	_, err := svc.UpdateBot(context.Background(), 1, &UpdateBotRequest{StrategyID: intPtr(404)})
	if !errors.Is(err, ErrBadRequest) {
		t.Fatalf("expected ErrBadRequest, got %v", err)
	}
	if len(hub.Events()) != 0 {
		t.Error("no events expected on failure")
	}
}

func TestBotService_ListBots(t *testing.T) {
	svc, repo, _ := newBotServiceWithMocks()
	seedGreatBot(repo)
	repo.bots[2] = &models.Bot{ID: 2, Name: "Idle", ParamValues: []string{""}}

	summaries, err := svc.ListBots(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := []models.BotSummary{
		{ID: 1, Name: "Great Bot", Active: true},
		{ID: 2, Name: "Idle", Active: false},
	}
	if !reflect.DeepEqual(summaries, expected) {
		t.Errorf("expected %+v, got %+v", expected, summaries)
	}
}

func TestBotService_ListBotsDetailed(t *testing.T) {
	svc, repo, _ := newBotServiceWithMocks()
	seedGreatBot(repo)
	repo.bots[2] = &models.Bot{ID: 2, Name: "Orphan", ParamValues: []string{"5"}}

	details, err := svc.ListBotsDetailed(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(details) != 2 {
		t.Fatalf("expected 2 details, got %d", len(details))
	}

	if details[0].StrategyName == nil || *details[0].StrategyName != "Donchian Strategy" {
		t.Errorf("unexpected strategy name: %v", details[0].StrategyName)
	}
	if !reflect.DeepEqual(details[0].StrategyParams, []string{"channel", "reference"}) {
		t.Errorf("unexpected strategy params: %v", details[0].StrategyParams)
	}

	orphan := details[1]
	if orphan.StrategyName != nil {
		t.Errorf("orphan bot must have nil strategy name")
	}
	if orphan.StrategyParams == nil || len(orphan.StrategyParams) != 0 {
		t.Errorf("orphan bot must have empty params, got %v", orphan.StrategyParams)
	}
}

func TestBotService_DeleteBot(t *testing.T) {
	svc, repo, hub := newBotServiceWithMocks()
	seedGreatBot(repo)

	if err := svc.DeleteBot(context.Background(), 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, exists := repo.bots[1]; exists {
		t.Error("bot should be deleted")
	}
	if events := hub.Events(); len(events) != 1 || events[0].Action != models.ActionDeleted || events[0].ID != 1 {
		t.Errorf("unexpected events: %+v", events)
	}

	if err := svc.DeleteBot(context.Background(), 1); !errors.Is(err, ErrBadRequest) {
		t.Errorf("expected ErrBadRequest, got %v", err)
	}
}
