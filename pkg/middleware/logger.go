package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/fkhayef/sharedexpenses/internal/logger"
)

// RequestLogger puts a request-scoped logger carrying the request id into the
// context and logs one line per request when it completes. It must run after
// chi's RequestID middleware.
func RequestLogger(base zerolog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			reqLog := base.With().
				Str("request_id", middleware.GetReqID(r.Context())).
				Logger()
			ctx := logger.WithContext(r.Context(), reqLog)

			start := time.Now()
			defer func() {
				status := ww.Status()
				if status == 0 {
					status = http.StatusOK
				}

				event := reqLog.Info()
				if status >= 500 {
					event = reqLog.Error()
				}
				event.
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Str("remote_addr", r.RemoteAddr).
					Int("status", status).
					Int("bytes", ww.BytesWritten()).
					Dur("latency", time.Since(start)).
					Msg("request completed")
			}()

			next.ServeHTTP(ww, r.WithContext(ctx))
		}
		return http.HandlerFunc(fn)
	}
}

// LogUser adds the caller id to the request logger. It runs after Identity.
func LogUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if userID, ok := GetUserID(ctx); ok {
			enriched := logger.FromContext(ctx).With().Int64("user_id", userID).Logger()
			ctx = logger.WithContext(ctx, enriched)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
