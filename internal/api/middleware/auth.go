package middleware

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"tradebots/internal/api/response"
	"tradebots/internal/auth"
	"tradebots/internal/metrics"
	"tradebots/pkg/crypto"
	"tradebots/pkg/utils"
)

// TokenVerifier проверяет заголовок Authorization
type TokenVerifier interface {
	Verify(ctx context.Context, header string) (*auth.Claims, error)
}

// Authorizer строит middleware проверки прав для маршрутов
type Authorizer struct {
	verifier TokenVerifier
	logger   *zap.Logger
}

// NewAuthorizer создает Authorizer. nil logger заменяется на zap.NewNop().
func NewAuthorizer(verifier TokenVerifier, logger *zap.Logger) *Authorizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Authorizer{
		verifier: verifier,
		logger:   logger.With(utils.Component("auth")),
	}
}

// RequirePermission пропускает запрос только с валидным токеном,
// содержащим permission в claim "permissions"
//
// При отказе: 401 и конверт {"success":false,"error":401,"message":...,"code":...}.
// При успехе claims кладутся в context (auth.ClaimsFromContext).
//
//	router.Handle("/bots-detail", authz.RequirePermission("get:bots")(handler))
func (a *Authorizer) RequirePermission(permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := a.verifier.Verify(r.Context(), r.Header.Get("Authorization"))
			if err == nil {
				err = auth.CheckPermissions(permission, claims)
			}
			if err != nil {
				a.reject(w, r, permission, err)
				return
			}

			a.logger.Debug("request authorized",
				utils.Permission(permission),
				utils.Subject(claims.Subject),
			)

			next.ServeHTTP(w, r.WithContext(auth.WithClaims(r.Context(), claims)))
		})
	}
}

func (a *Authorizer) reject(w http.ResponseWriter, r *http.Request, permission string, err error) {
	authErr, ok := auth.AsError(err)
	if !ok {
		// Verifier всегда возвращает *auth.Error, сюда попадать не должны
		a.logger.Error("unexpected verifier error", zap.Error(err))
		metrics.RecordAuthFailure("unknown")
		response.Error(w, http.StatusUnauthorized, response.MessageUnauthorized)
		return
	}

	metrics.RecordAuthFailure(authErr.Code())
	a.logger.Info("request rejected",
		utils.Permission(permission),
		utils.AuthCode(authErr.Code()),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)

	response.ErrorWithCode(w, authErr.StatusCode(), authErr.Description, authErr.Code())
}

// RequirePermission - вариант без логгера
func RequirePermission(verifier TokenVerifier, permission string) func(http.Handler) http.Handler {
	return NewAuthorizer(verifier, nil).RequirePermission(permission)
}

// DebugAuth защищает служебные эндпоинты (/metrics) через HTTP Basic Auth
//
// Пароль сверяется с bcrypt хешем из DEBUG_PASSWORD_HASH.
// Если учётные данные не настроены, доступ закрыт (403).
func DebugAuth(creds *crypto.Credentials) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if creds == nil {
				response.Error(w, http.StatusForbidden, response.MessageForbidden)
				return
			}

			user, pass, ok := r.BasicAuth()
			if !ok || !creds.Check(user, pass) {
				w.Header().Set("WWW-Authenticate", `Basic realm="debug"`)
				response.Error(w, http.StatusUnauthorized, response.MessageUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
