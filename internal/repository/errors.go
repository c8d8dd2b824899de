package repository

import (
	"errors"
	"strings"

	"github.com/lib/pq"
)

// Коды ошибок PostgreSQL, которые репозитории различают явно
const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
	pqStringTooLong       = "22001"
	pqNotNullViolation    = "23502"
)

// ErrInvalidReference - ссылка на несуществующую запись (например, strategy_id)
var ErrInvalidReference = errors.New("referenced record does not exist")

// ErrInvalidValue - значение не помещается в колонку или нарушает NOT NULL
var ErrInvalidValue = errors.New("value violates column constraints")

// pqCode возвращает SQLSTATE код ошибки драйвера lib/pq (или пустую строку)
func pqCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

// isUniqueViolation проверяет, является ли ошибка нарушением UNIQUE/PRIMARY KEY
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if pqCode(err) == pqUniqueViolation {
		return true
	}
	return strings.Contains(err.Error(), "duplicate key")
}

// isForeignKeyViolation проверяет нарушение внешнего ключа
func isForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	if pqCode(err) == pqForeignKeyViolation {
		return true
	}
	return strings.Contains(err.Error(), "violates foreign key constraint")
}

// isInvalidValue проверяет ошибки значения (слишком длинная строка, NULL)
func isInvalidValue(err error) bool {
	switch pqCode(err) {
	case pqStringTooLong, pqNotNullViolation:
		return true
	}
	return false
}
