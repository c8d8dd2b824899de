package utils

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"
)

// Ограничения колонок таблиц strategy и bot
const (
	MaxStrategyNameLength = 50
	MaxBotNameLength      = 20
	MaxTimeframeLength    = 5
)

// Ошибки валидации
var (
	ErrInvalidID        = errors.New("id must fit into a 32-bit integer")
	ErrNameTooLong      = errors.New("name is too long")
	ErrTimeframeTooLong = errors.New("timeframe is too long")
)

// ValidationError - ошибка валидации конкретного поля
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors накапливает ошибки по нескольким полям
type ValidationErrors []ValidationError

// Add добавляет ошибку поля
func (v *ValidationErrors) Add(field, message string) {
	*v = append(*v, ValidationError{Field: field, Message: message})
}

// AddError добавляет ошибку, если она не nil
func (v *ValidationErrors) AddError(field string, err error) {
	if err != nil {
		v.Add(field, err.Error())
	}
}

// HasErrors возвращает true, если есть хотя бы одна ошибка
func (v ValidationErrors) HasErrors() bool {
	return len(v) > 0
}

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, e := range v {
		parts = append(parts, e.Error())
	}
	return strings.Join(parts, "; ")
}

// ValidateID проверяет, что ID помещается в колонку INTEGER
func ValidateID(id int) error {
	if int64(id) > math.MaxInt32 || int64(id) < math.MinInt32 {
		return ErrInvalidID
	}
	return nil
}

// ValidateStrategyName проверяет длину имени стратегии (VARCHAR(50))
func ValidateStrategyName(name string) error {
	return validateLength(name, MaxStrategyNameLength, ErrNameTooLong)
}

// ValidateBotName проверяет длину имени бота (VARCHAR(20))
func ValidateBotName(name string) error {
	return validateLength(name, MaxBotNameLength, ErrNameTooLong)
}

// ValidateTimeframe проверяет длину таймфрейма (VARCHAR(5))
//
// Формат ("1h", "15m") не проверяется.
func ValidateTimeframe(timeframe string) error {
	return validateLength(timeframe, MaxTimeframeLength, ErrTimeframeTooLong)
}

// validateLength считает длину в символах, как VARCHAR в PostgreSQL
func validateLength(value string, max int, errTooLong error) error {
	if utf8.RuneCountInString(value) > max {
		return fmt.Errorf("%w: %d characters, max %d", errTooLong, utf8.RuneCountInString(value), max)
	}
	return nil
}
