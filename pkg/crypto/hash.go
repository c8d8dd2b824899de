package crypto

import (
	"crypto/subtle"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// Ошибки хеширования
var (
	ErrEmptyPassword    = errors.New("password cannot be empty")
	ErrPasswordMismatch = errors.New("password does not match hash")
	ErrInvalidHash      = errors.New("invalid password hash format")
	ErrPasswordTooLong  = errors.New("password exceeds maximum length of 72 bytes")
	ErrEmptyUsername    = errors.New("username cannot be empty")
)

// MaxPasswordLength - максимальная длина пароля для bcrypt (72 байта)
const MaxPasswordLength = 72

// HashPasswordWithCost хеширует пароль с указанной стоимостью
// cost приводится к диапазону bcrypt.MinCost..bcrypt.MaxCost
func HashPasswordWithCost(password string, cost int) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	// bcrypt ограничен 72 байтами
	if len(password) > MaxPasswordLength {
		return "", ErrPasswordTooLong
	}

	if cost < bcrypt.MinCost {
		cost = bcrypt.MinCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// VerifyPassword проверяет соответствие пароля хешу
func VerifyPassword(password, hash string) error {
	if password == "" {
		return ErrEmptyPassword
	}

	if hash == "" {
		return ErrInvalidHash
	}

	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrPasswordMismatch
		}
		return ErrInvalidHash
	}

	return nil
}

// ValidateHash проверяет что строка является bcrypt хешем
func ValidateHash(hash string) error {
	if hash == "" {
		return ErrInvalidHash
	}
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return ErrInvalidHash
	}
	return nil
}

// Credentials - учётные данные basic auth для служебных эндпоинтов
// (/metrics). Пароль хранится только в виде bcrypt хеша.
type Credentials struct {
	username     string
	passwordHash string
}

// NewCredentials создаёт учётные данные, проверяя формат хеша
func NewCredentials(username, passwordHash string) (*Credentials, error) {
	if username == "" {
		return nil, ErrEmptyUsername
	}
	if err := ValidateHash(passwordHash); err != nil {
		return nil, err
	}
	return &Credentials{username: username, passwordHash: passwordHash}, nil
}

// Check сравнивает пару логин/пароль.
// nil Credentials не пропускает никого.
func (c *Credentials) Check(username, password string) bool {
	if c == nil {
		return false
	}
	userMatch := subtle.ConstantTimeCompare([]byte(username), []byte(c.username)) == 1
	// bcrypt выполняется всегда, чтобы время ответа не зависело от логина
	passErr := VerifyPassword(password, c.passwordHash)
	return userMatch && passErr == nil
}

// Username возвращает логин
func (c *Credentials) Username() string {
	if c == nil {
		return ""
	}
	return c.username
}
