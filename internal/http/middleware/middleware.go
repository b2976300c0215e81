// Package middleware holds the net/http middleware that wraps the
// router: request logging, panic recovery, rate limiting and bearer-token
// authentication.
package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"github.com/aanand-mishra/students-api/internal/utils/response"
)

// RequestLogger logs every request on arrival and on completion.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqID := chimw.GetReqID(r.Context())

		slog.Info("incoming request",
			slog.String("request_id", reqID),
			slog.String("method", r.Method),
			slog.String("url", r.URL.RequestURI()),
			slog.String("ip", r.RemoteAddr),
			slog.String("user_agent", r.UserAgent()))

		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		slog.Info("request completed",
			slog.String("request_id", reqID),
			slog.String("method", r.Method),
			slog.String("url", r.URL.RequestURI()),
			slog.Int("status", status),
			slog.Int("bytes", ww.BytesWritten()),
			slog.Duration("duration", time.Since(start)),
			slog.String("ip", r.RemoteAddr))
	})
}

// Recover turns a panic into a JSON 500. The panic value is only sent to
// the client when exposeErrors is set (development mode).
func Recover(exposeErrors bool) func(http.Handler) http.Handler {
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

				slog.Error("unhandled error",
					slog.String("request_id", chimw.GetReqID(r.Context())),
					slog.String("panic", fmt.Sprint(rec)),
					slog.String("stack", string(debug.Stack())))

				message := "Internal server error"
				if exposeErrors {
					message = fmt.Sprint(rec)
				}
				response.WriteJSON(w, http.StatusInternalServerError,
					response.Error("Something went wrong!", message))
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// RateLimit allows requests per window for each client IP (sliding
// window counter). Rejected requests get a JSON 429 with title as the
// error.
func RateLimit(requests int, window time.Duration, title, message string) func(http.Handler) http.Handler {
	return httprate.Limit(requests, window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			slog.Warn("rate limit exceeded",
				slog.String("ip", r.RemoteAddr),
				slog.String("path", r.URL.Path))
			response.WriteJSON(w, http.StatusTooManyRequests, response.Error(title, message))
		}),
	)
}
