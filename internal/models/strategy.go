package models

import "strings"

// ParamsDelimiter - разделитель списка параметров во входящих запросах
// "candles, signal" -> ["candles", "signal"]
const ParamsDelimiter = ", "

// Strategy представляет шаблон торговой стратегии
//
// ID задается клиентом (автоинкремента нет).
// Params - упорядоченный список имен параметров стратегии.
// Боты ссылаются на стратегию через Bot.StrategyID.
type Strategy struct {
	ID     int      `json:"id" db:"id"`
	Name   string   `json:"name" db:"name"`     // до 50 символов
	Params []string `json:"params" db:"params"` // имена параметров
}

// StrategySummary - публичное представление стратегии (без параметров)
type StrategySummary struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Summary возвращает публичное представление стратегии
func (s *Strategy) Summary() StrategySummary {
	return StrategySummary{ID: s.ID, Name: s.Name}
}

// SplitParams разбивает строку параметров по разделителю ", "
//
// Порядок сохраняется, пустые сегменты не отбрасываются:
// "candles, signal" -> ["candles", "signal"]
// "7,price"         -> ["7,price"]
func SplitParams(raw string) []string {
	return strings.Split(raw, ParamsDelimiter)
}
