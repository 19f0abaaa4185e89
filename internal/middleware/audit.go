package middleware

import (
	"net/http"

	logpkg "github.com/benvon/mood-poll/internal/logger"
	"github.com/benvon/mood-poll/internal/request"
	"go.uber.org/zap"
)

// Audit logs poll mutations and abusive requests
func Audit(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wrapped := wrapResponseWriter(w)

			next.ServeHTTP(wrapped, r)

			statusCode := wrapped.statusCode
			fields := func() []zap.Field {
				return []zap.Field{
					zap.Int("status_code", statusCode),
					zap.String("method", r.Method),
					zap.String("path", logpkg.SanitizePath(r.URL.Path)),
					zap.String("ip", logpkg.SanitizeString(request.ClientIP(r), logpkg.MaxGeneralStringLength)),
				}
			}

			switch {
			case statusCode == http.StatusTooManyRequests:
				logger.Warn("rate_limit_violation", fields()...)
			case statusCode == http.StatusRequestEntityTooLarge:
				logger.Warn("oversized_request", fields()...)
			case r.Method == http.MethodPost && statusCode >= 200 && statusCode < 300:
				logger.Info("poll_mutation", fields()...)
			}
		})
	}
}
