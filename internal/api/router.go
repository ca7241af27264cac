package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/userdata-go/internal/api/handler"
	"github.com/mcoot/userdata-go/internal/api/middleware"
	"github.com/mcoot/userdata-go/internal/api/response"
	"github.com/mcoot/userdata-go/internal/services/link"
	"github.com/mcoot/userdata-go/internal/web/sse"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger      *slog.Logger
	LinkService *link.Service
	Broadcaster *sse.Broadcaster
	// APIKey is the bearer token userdata servers must present; empty disables the check
	APIKey string
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()
	Register(r, cfg)
	return r
}

// Register mounts the API under /api/v1 on r
func Register(r *mux.Router, cfg RouterConfig) {
	linkHandler := handler.NewLinkHandler(cfg.LinkService, cfg.Broadcaster, cfg.Logger)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Recovery(cfg.Logger))
	api.Use(middleware.Logging(cfg.Logger))

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	links := api.PathPrefix("/links").Subrouter()
	links.Use(middleware.APIKey(cfg.APIKey))
	links.HandleFunc("/{gcid}", linkHandler.Get).Methods(http.MethodGet)
	links.HandleFunc("/{gcid}", linkHandler.Delete).Methods(http.MethodDelete)
	links.HandleFunc("/{gcid}/connect", linkHandler.Connect).Methods(http.MethodPost)
	links.HandleFunc("/{gcid}/logout", linkHandler.Logout).Methods(http.MethodPost)
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, response.HealthResponse{Status: "ok"})
}
