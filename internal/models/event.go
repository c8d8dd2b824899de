package models

import "time"

// ResourceKind - тип сущности, к которой относится событие изменения
type ResourceKind string

const (
	ResourceStrategy ResourceKind = "strategy"
	ResourceBot      ResourceKind = "bot"
)

// ChangeAction - действие над сущностью
type ChangeAction string

const (
	ActionCreated ChangeAction = "created"
	ActionUpdated ChangeAction = "updated"
	ActionDeleted ChangeAction = "deleted"
)

// ChangeEvent - событие изменения стратегии или бота
//
// Содержит только публичные поля (ID и имя), параметры не передаются.
type ChangeEvent struct {
	Resource  ResourceKind
	Action    ChangeAction
	ID        int
	Name      string
	Timestamp time.Time
}
