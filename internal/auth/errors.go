package auth

import (
	"errors"
	"net/http"
)

// Kind - вид ошибки авторизации
//
// Значение совпадает с кодом, который отдается клиенту в поле "code".
type Kind string

const (
	KindMissingHeader           Kind = "authorization_header_missing"
	KindMalformedHeader         Kind = "invalid_header"
	KindMalformedToken          Kind = "invalid_token"
	KindKeyNotFound             Kind = "key_not_found"
	KindKeyFetchFailed          Kind = "jwks_unavailable"
	KindInvalidSignature        Kind = "invalid_signature"
	KindExpiredToken            Kind = "token_expired"
	KindInvalidClaims           Kind = "invalid_claims"
	KindPermissionsClaimMissing Kind = "permissions_missing"
	KindPermissionDenied        Kind = "permission_denied"
)

// Sentinel-ошибки для errors.Is, по одной на каждый вид
var (
	ErrMissingHeader           = &Error{Kind: KindMissingHeader}
	ErrMalformedHeader         = &Error{Kind: KindMalformedHeader}
	ErrMalformedToken          = &Error{Kind: KindMalformedToken}
	ErrKeyNotFound             = &Error{Kind: KindKeyNotFound}
	ErrKeyFetchFailed          = &Error{Kind: KindKeyFetchFailed}
	ErrInvalidSignature        = &Error{Kind: KindInvalidSignature}
	ErrExpiredToken            = &Error{Kind: KindExpiredToken}
	ErrInvalidClaims           = &Error{Kind: KindInvalidClaims}
	ErrPermissionsClaimMissing = &Error{Kind: KindPermissionsClaimMissing}
	ErrPermissionDenied        = &Error{Kind: KindPermissionDenied}
)

// Error - ошибка авторизации
//
// Description уходит клиенту, Err (если есть) только в логи.
type Error struct {
	Kind        Kind
	Description string
	Err         error
}

func newError(kind Kind, description string, err error) *Error {
	return &Error{Kind: kind, Description: description, Err: err}
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Description != "" {
		msg += ": " + e.Description
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is сравнивает только вид ошибки, чтобы errors.Is(err, ErrExpiredToken) работал
// для любой ошибки этого вида
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Code возвращает код ошибки для ответа клиенту
func (e *Error) Code() string {
	return string(e.Kind)
}

// StatusCode возвращает HTTP статус ответа
//
// Все ошибки авторизации, включая отсутствие прав, отвечают 401.
func (e *Error) StatusCode() int {
	return http.StatusUnauthorized
}

// AsError извлекает *Error из цепочки ошибок
func AsError(err error) (*Error, bool) {
	var authErr *Error
	if errors.As(err, &authErr) {
		return authErr, true
	}
	return nil, false
}
