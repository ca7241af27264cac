package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/userdata-go/internal/api/apierr"
	"github.com/mcoot/userdata-go/internal/middleware"
)

// Recovery creates panic recovery middleware for the link API. Userdata
// servers get an INTERNAL_ERROR body instead of a dropped connection.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger.With(slog.String("component", "api")), func(w http.ResponseWriter, _ *http.Request, _ any) {
		apierr.WriteError(w, apierr.NewInternalError())
	})
}
