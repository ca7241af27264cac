package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"
)

// PanicHandler writes the error response after a recovered panic
type PanicHandler func(w http.ResponseWriter, r *http.Request, err any)

// Recovery turns a panicking handler into a logged error and a response
// written by handler.
func Recovery(logger *slog.Logger, handler PanicHandler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					attrs := append(requestAttrs(r),
						slog.Any("error", err),
						slog.String("stack", string(debug.Stack())),
					)
					logger.LogAttrs(r.Context(), slog.LevelError, "panic recovered", attrs...)

					handler(w, r, err)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
