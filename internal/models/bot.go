package models

// Bot представляет экземпляр стратегии с конкретными значениями параметров
//
// ParamValues позиционно соответствуют Strategy.Params по соглашению,
// длина и порядок не проверяются.
// StrategyID может быть nil: при удалении стратегии ссылка обнуляется.
type Bot struct {
	ID          int      `json:"id" db:"id"`
	Name        string   `json:"name" db:"name"`                 // до 20 символов
	Active      bool     `json:"active" db:"active"`             // включен ли бот
	Timeframe   string   `json:"timeframe" db:"timeframe"`       // 1m, 1h, 4h, 1d ...
	ParamValues []string `json:"param_values" db:"param_values"` // значения параметров
	StrategyID  *int     `json:"strategy_id" db:"strategy_id"`
}

// BotSummary - публичное представление бота
type BotSummary struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// Summary возвращает публичное представление бота
func (b *Bot) Summary() BotSummary {
	return BotSummary{ID: b.ID, Name: b.Name, Active: b.Active}
}

// BotDetail - бот вместе с данными связанной стратегии (LEFT JOIN)
//
// StrategyName и StrategyParams пустые, если стратегия удалена
// или не была указана.
type BotDetail struct {
	Bot
	StrategyName   *string  `json:"strategy"`
	StrategyParams []string `json:"params"`
}
