package auth

import (
	"context"
	"crypto/rsa"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// KeyProvider возвращает публичный ключ по kid
//
// Реализуется KeyResolver; в тестах подменяется статическим набором.
type KeyProvider interface {
	PublicKey(ctx context.Context, kid string) (*rsa.PublicKey, error)
}

// VerifierConfig - параметры проверки токена
type VerifierConfig struct {
	// Audience должна содержаться в claim aud
	Audience string

	// Issuer должен совпадать с claim iss, например https://<domain>/
	Issuer string

	// Algorithms - допустимые алгоритмы подписи (по умолчанию RS256)
	Algorithms []string

	// Leeway - допуск на расхождение часов при проверке exp
	Leeway time.Duration

	Now func() time.Time
}

// IssuerURL возвращает issuer для домена провайдера
func IssuerURL(domain string) string {
	return "https://" + strings.TrimSuffix(domain, "/") + "/"
}

// Claims - проверенные данные токена
//
// Живут только в контексте одного запроса.
type Claims struct {
	Subject   string
	Issuer    string
	Audience  []string
	ExpiresAt time.Time

	// Permissions - содержимое claim permissions.
	// HasPermissions различает отсутствующий claim и пустой список.
	Permissions    []string
	HasPermissions bool

	Raw jwt.MapClaims
}

// HasPermission проверяет точное совпадение строки права
func (c *Claims) HasPermission(permission string) bool {
	if c == nil {
		return false
	}
	for _, p := range c.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// Verifier проверяет заголовок Authorization и возвращает Claims
//
// Этапы: заголовок -> схема Bearer -> kid -> ключ -> подпись -> exp/aud/iss.
// На каждом этапе ошибка возвращается как *Error своего вида.
type Verifier struct {
	keys     KeyProvider
	audience string
	issuer   string
	parser   *jwt.Parser
}

// NewVerifier создает Verifier
func NewVerifier(keys KeyProvider, cfg VerifierConfig) *Verifier {
	algorithms := cfg.Algorithms
	if len(algorithms) == 0 {
		algorithms = []string{jwt.SigningMethodRS256.Alg()}
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods(algorithms),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(cfg.Leeway),
		jwt.WithTimeFunc(now),
		jwt.WithAudience(cfg.Audience),
		jwt.WithIssuer(cfg.Issuer),
	}

	return &Verifier{
		keys:     keys,
		audience: cfg.Audience,
		issuer:   cfg.Issuer,
		parser:   jwt.NewParser(opts...),
	}
}

// Verify проверяет значение заголовка Authorization
func (v *Verifier) Verify(ctx context.Context, header string) (*Claims, error) {
	token, err := ExtractBearerToken(header)
	if err != nil {
		return nil, err
	}

	kid, err := unverifiedKeyID(token)
	if err != nil {
		return nil, err
	}

	key, err := v.keys.PublicKey(ctx, kid)
	if err != nil {
		if _, ok := AsError(err); ok {
			return nil, err
		}
		return nil, newError(KindKeyFetchFailed, "Unable to fetch signing keys.", err)
	}

	raw := jwt.MapClaims{}
	_, err = v.parser.ParseWithClaims(token, raw, func(*jwt.Token) (interface{}, error) {
		return key, nil
	})
	if err != nil {
		return nil, classifyParseError(err, raw)
	}

	return claimsFromMap(raw), nil
}

// ExtractBearerToken достает токен из заголовка "Bearer <token>"
//
// Схема сравнивается без учета регистра. Ровно две части.
func ExtractBearerToken(header string) (string, error) {
	if header == "" {
		return "", newError(KindMissingHeader, "Authorization header is missing.", nil)
	}

	parts := strings.Fields(header)
	switch {
	case len(parts) == 0:
		return "", newError(KindMalformedHeader, "Authorization header must be a bearer token.", nil)
	case !strings.EqualFold(parts[0], "bearer"):
		return "", newError(KindMalformedHeader, `Authorization header must start with "Bearer".`, nil)
	case len(parts) == 1:
		return "", newError(KindMalformedHeader, "Token not found.", nil)
	case len(parts) > 2:
		return "", newError(KindMalformedHeader, "Authorization header must be a bearer token.", nil)
	}

	return parts[1], nil
}

// unverifiedKeyID читает kid из заголовка токена без проверки подписи
func unverifiedKeyID(token string) (string, error) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return "", newError(KindMalformedToken, "Unable to parse authentication token.", err)
	}

	kid, _ := parsed.Header["kid"].(string)
	if kid == "" {
		return "", newError(KindMalformedToken, "Authorization malformed.", nil)
	}
	return kid, nil
}

// classifyParseError сопоставляет ошибки golang-jwt видам ошибок авторизации
func classifyParseError(err error, raw jwt.MapClaims) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable):
		return newError(KindInvalidSignature, "Token signature is invalid.", err)

	case errors.Is(err, jwt.ErrTokenExpired):
		return newError(KindExpiredToken, "Token expired.", err)

	case errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		if _, ok := raw["exp"]; !ok {
			return newError(KindExpiredToken, "Token expiration is missing.", err)
		}
		return newError(KindInvalidClaims, "Incorrect claims. Please, check the audience and issuer.", err)

	case errors.Is(err, jwt.ErrTokenInvalidAudience),
		errors.Is(err, jwt.ErrTokenInvalidIssuer),
		errors.Is(err, jwt.ErrTokenNotValidYet),
		errors.Is(err, jwt.ErrTokenUsedBeforeIssued),
		errors.Is(err, jwt.ErrTokenInvalidClaims):
		return newError(KindInvalidClaims, "Incorrect claims. Please, check the audience and issuer.", err)

	default:
		return newError(KindMalformedToken, "Unable to parse authentication token.", err)
	}
}

func claimsFromMap(raw jwt.MapClaims) *Claims {
	claims := &Claims{Raw: raw}

	claims.Subject, _ = raw.GetSubject()
	claims.Issuer, _ = raw.GetIssuer()
	if aud, err := raw.GetAudience(); err == nil {
		claims.Audience = aud
	}
	if exp, err := raw.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}

	// Не-список считается отсутствующим claim
	if list, ok := raw["permissions"].([]interface{}); ok {
		claims.HasPermissions = true
		claims.Permissions = make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				claims.Permissions = append(claims.Permissions, s)
			}
		}
	}

	return claims
}
