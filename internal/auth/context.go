package auth

import "context"

// claimsContextKey - ключ для хранения Claims в context.Context
type claimsContextKey struct{}

// WithClaims возвращает контекст с проверенными Claims
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey{}, claims)
}

// ClaimsFromContext возвращает Claims из контекста или nil
func ClaimsFromContext(ctx context.Context) *Claims {
	claims, _ := ctx.Value(claimsContextKey{}).(*Claims)
	return claims
}
