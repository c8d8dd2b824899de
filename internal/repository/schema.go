package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// schemaStatements создает таблицы strategy и bot, если их нет
//
// bot.strategy_id ссылается на strategy.id с ON DELETE SET NULL:
// удаление стратегии не блокируется и не удаляет ботов, ссылка обнуляется.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS strategy (
		id INTEGER PRIMARY KEY,
		name VARCHAR(50),
		params TEXT[] NOT NULL DEFAULT '{}'
	)`,
	`CREATE TABLE IF NOT EXISTS bot (
		id INTEGER PRIMARY KEY,
		name VARCHAR(20),
		active BOOLEAN NOT NULL DEFAULT FALSE,
		timeframe VARCHAR(5),
		param_values TEXT[] NOT NULL DEFAULT '{}',
		strategy_id INTEGER NULL REFERENCES strategy(id) ON DELETE SET NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_bot_strategy_id ON bot(strategy_id)`,
}

// EnsureSchema применяет схему базы данных (идемпотентно)
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
