package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/userdata-go/internal/middleware"
	"github.com/mcoot/userdata-go/internal/web/templates/layout"
	"github.com/mcoot/userdata-go/internal/web/templates/pages"
)

// Recovery creates panic recovery middleware for the host page. A panic
// renders an error page that offers a fresh login frame.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger.With(slog.String("component", "web")), hostPanicHandler)
}

func hostPanicHandler(w http.ResponseWriter, r *http.Request, _ any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusInternalServerError)
	_ = pages.ServerError(layout.PageData{
		Title: "Error",
		Flash: &layout.FlashMessage{Type: "error", Message: "Something went wrong"},
	}).Render(r.Context(), w)
}
