package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"go.uber.org/zap"

	"tradebots/internal/api/response"
)

// Recovery перехватывает panic в handlers
//
// Логирует значение и stack trace, клиенту отдаёт конверт 500 без деталей.
// http.ErrAbortHandler пробрасывается дальше.
func Recovery(logger *zap.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				logger.Error("panic recovered",
					zap.String("panic", fmt.Sprint(rec)),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.ByteString("stack", debug.Stack()),
				)

				response.Error(w, http.StatusInternalServerError, response.MessageInternalError)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
