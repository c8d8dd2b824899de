package service

import (
	"errors"
	"fmt"
	"time"

	"tradebots/internal/models"
)

// ErrBadRequest - любая ошибка изменения данных: невалидный запрос,
// несуществующий ID, дубликат, ссылка на несуществующую стратегию.
// Handler отвечает на нее 400 без подробностей.
var ErrBadRequest = errors.New("bad request")

func badRequest(err error) error {
	return fmt.Errorf("%w: %v", ErrBadRequest, err)
}

// ChangeBroadcaster - интерфейс для отправки событий изменений через WebSocket
//
// Позволяет избежать циклических зависимостей между пакетами
// и упрощает тестирование (можно подставить mock)
type ChangeBroadcaster interface {
	BroadcastChange(event *models.ChangeEvent)
}

// publishChange отправляет событие, если hub настроен
func publishChange(hub ChangeBroadcaster, resource models.ResourceKind, action models.ChangeAction, id int, name string) {
	if hub == nil {
		return
	}
	hub.BroadcastChange(&models.ChangeEvent{
		Resource:  resource,
		Action:    action,
		ID:        id,
		Name:      name,
		Timestamp: time.Now(),
	})
}
