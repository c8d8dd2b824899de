package websocket

import (
	"fmt"
	"time"

	"tradebots/internal/models"
)

// MessageType определяет тип WebSocket сообщения
type MessageType string

// Типы WebSocket сообщений
const (
	MessageTypeStrategyCreated MessageType = "strategyCreated"
	MessageTypeStrategyUpdated MessageType = "strategyUpdated"
	MessageTypeStrategyDeleted MessageType = "strategyDeleted"
	MessageTypeBotCreated      MessageType = "botCreated"
	MessageTypeBotUpdated      MessageType = "botUpdated"
	MessageTypeBotDeleted      MessageType = "botDeleted"
)

type changeKey struct {
	resource models.ResourceKind
	action   models.ChangeAction
}

var changeMessageTypes = map[changeKey]MessageType{
	{models.ResourceStrategy, models.ActionCreated}: MessageTypeStrategyCreated,
	{models.ResourceStrategy, models.ActionUpdated}: MessageTypeStrategyUpdated,
	{models.ResourceStrategy, models.ActionDeleted}: MessageTypeStrategyDeleted,
	{models.ResourceBot, models.ActionCreated}:      MessageTypeBotCreated,
	{models.ResourceBot, models.ActionUpdated}:      MessageTypeBotUpdated,
	{models.ResourceBot, models.ActionDeleted}:      MessageTypeBotDeleted,
}

// ChangeMessage - сообщение об изменении стратегии или бота
//
// Только публичные поля: параметры и значения параметров не отправляются,
// их видно лишь через защищённые *-detail эндпоинты.
type ChangeMessage struct {
	Type      MessageType `json:"type"`
	ID        int         `json:"id"`
	Name      string      `json:"name"`
	Timestamp time.Time   `json:"timestamp"`
}

// MessageTypeFor возвращает тип сообщения для пары сущность/действие
func MessageTypeFor(resource models.ResourceKind, action models.ChangeAction) (MessageType, error) {
	t, ok := changeMessageTypes[changeKey{resource, action}]
	if !ok {
		return "", fmt.Errorf("unknown change event %s/%s", resource, action)
	}
	return t, nil
}

// NewChangeMessage создает сообщение из события изменения
func NewChangeMessage(event *models.ChangeEvent) (*ChangeMessage, error) {
	if event == nil {
		return nil, fmt.Errorf("nil change event")
	}

	msgType, err := MessageTypeFor(event.Resource, event.Action)
	if err != nil {
		return nil, err
	}

	ts := event.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	return &ChangeMessage{
		Type:      msgType,
		ID:        event.ID,
		Name:      event.Name,
		Timestamp: ts.UTC(),
	}, nil
}
