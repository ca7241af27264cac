package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/mcoot/userdata-go/internal/api"
	"github.com/mcoot/userdata-go/internal/factory"
	"github.com/mcoot/userdata-go/internal/services/link"
	redisstorage "github.com/mcoot/userdata-go/internal/storage/redis"
	"github.com/mcoot/userdata-go/internal/web"
)

func main() {
	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Build factory config from environment
	linkCfg := link.DefaultConfig()
	linkCfg.GameURL = os.Getenv("GAME_URL")
	linkCfg.DefaultUserdata = os.Getenv("DEFAULT_USERDATA")
	if v := os.Getenv("LOCAL_USERDATA"); v != "" {
		linkCfg.LocalUserdata = v
	}
	linkCfg.AllowLocal = envBool("ALLOW_LOCAL", linkCfg.AllowLocal)
	linkCfg.AllowOther = !envBool("NO_ALLOW_OTHER", !linkCfg.AllowOther)
	linkCfg.AllowNewPlayers = envBool("ALLOW_NEW_PLAYERS", linkCfg.AllowNewPlayers)

	cfg := factory.Config{
		Link:        linkCfg,
		LangDir:     os.Getenv("LANG_DIR"),
		Logger:      logger,
		StorageType: os.Getenv("STORAGE_TYPE"),
	}

	// Configure Redis if storage type is redis
	if cfg.StorageType == factory.StorageTypeRedis {
		redisURL := os.Getenv("REDIS_URL")
		if redisURL == "" {
			logger.Error("REDIS_URL required when STORAGE_TYPE=redis")
			os.Exit(1)
		}
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = redisURL
		cfg.RedisConfig = &redisCfg
	}

	// Create application factory
	app, err := factory.New(cfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Create API router
	apiRouter := api.NewRouter(api.RouterConfig{
		Logger:      logger,
		LinkService: app.LinkService,
		Broadcaster: app.Broadcaster,
		APIKey:      os.Getenv("API_KEY"),
	})

	// Create web router
	webRouter := web.NewRouter(web.RouterConfig{
		Logger:      logger,
		LinkService: app.LinkService,
		Catalogs:    app.Catalogs,
		HubManager:  app.HubManager,
		StaticDir:   os.Getenv("STATIC_DIR"),
	})

	// Combine routers
	mux := http.NewServeMux()
	mux.Handle("/api/", apiRouter)
	mux.Handle("/", webRouter)

	// Create server
	serverConfig := api.DefaultServerConfig()
	if port, err := strconv.Atoi(os.Getenv("PORT")); err == nil {
		serverConfig.Port = port
	}
	server := api.NewServer(mux, serverConfig, logger)

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started",
		slog.String("addr", server.Addr()),
		slog.Bool("allow_local", linkCfg.AllowLocal),
		slog.Bool("allow_other", linkCfg.AllowOther))

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case <-ctx.Done():
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	logger.Info("server stopped")
}

// envBool reads a boolean environment variable. Unset or unparsable values
// yield def.
func envBool(key string, def bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}
