package web

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/userdata-go/internal/i18n"
	"github.com/mcoot/userdata-go/internal/services/link"
	"github.com/mcoot/userdata-go/internal/web/handler"
	"github.com/mcoot/userdata-go/internal/web/middleware"
	"github.com/mcoot/userdata-go/internal/web/sse"
)

// RouterConfig holds configuration for the web router
type RouterConfig struct {
	Logger      *slog.Logger
	LinkService *link.Service
	Catalogs    i18n.Catalogs
	HubManager  *sse.HubManager
	StaticDir   string // Path to static files directory
}

//go:generate go run github.com/a-h/templ/cmd/templ@v0.3.977 generate -path templates

// NewRouter creates a new web router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))

	hubManager := cfg.HubManager
	if hubManager == nil {
		hubManager = sse.NewHubManager(cfg.Logger)
	}

	hostHandler := handler.NewHostHandler(cfg.LinkService, cfg.Catalogs, hubManager, cfg.Logger)

	if cfg.StaticDir != "" {
		staticHandler := http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticDir)))
		r.PathPrefix("/static/").Handler(staticHandler)
	}

	pages := r.NewRoute().Subrouter()
	pages.Use(middleware.Flash())
	pages.HandleFunc("/", hostHandler.Page).Methods(http.MethodGet)
	pages.HandleFunc("/userdata/logout", hostHandler.Logout).Methods(http.MethodPost)
	pages.HandleFunc("/userdata/menu", hostHandler.Menu).Methods(http.MethodPost)

	r.HandleFunc("/userdata/frame", hostHandler.Frame).Methods(http.MethodPost)
	r.HandleFunc("/userdata/address", hostHandler.Address).Methods(http.MethodPost)
	r.HandleFunc("/userdata/events", hostHandler.Events).Methods(http.MethodGet)

	return r
}
