package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/mcoot/userdata-go/internal/dependencies/clock"
	"github.com/mcoot/userdata-go/internal/dependencies/random"
	"github.com/mcoot/userdata-go/internal/i18n"
	"github.com/mcoot/userdata-go/internal/services/link"
	"github.com/mcoot/userdata-go/internal/storage"
	"github.com/mcoot/userdata-go/internal/storage/memory"
	redisstorage "github.com/mcoot/userdata-go/internal/storage/redis"
	"github.com/mcoot/userdata-go/internal/web/sse"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	LinkService *link.Service
	Catalogs    i18n.Catalogs
	HubManager  *sse.HubManager
	Broadcaster *sse.Broadcaster
}

// Config holds configuration for the application factory
type Config struct {
	// Link describes the userdata servers offered to players
	// If zero value, defaults to link.DefaultConfig()
	Link link.Config
	// LangDir is a directory of <lang>.yaml translation catalogs (optional)
	LangDir string
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	linkCfg := cfg.Link
	if linkCfg == (link.Config{}) {
		linkCfg = link.DefaultConfig()
	}
	if err := linkCfg.Validate(); err != nil {
		return nil, err
	}

	catalogs := i18n.Catalogs{}
	if cfg.LangDir != "" {
		loaded, err := i18n.LoadCatalogs(cfg.LangDir)
		if err != nil {
			return nil, err
		}
		catalogs = loaded
		logger.Info("translations loaded", slog.Any("languages", catalogs.Languages()))
	}

	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	return newWithDependencies(store, clock.New(), random.New(), linkCfg, catalogs, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, linkCfg link.Config, catalogs i18n.Catalogs, logger *slog.Logger) *App {
	hubManager := sse.NewHubManager(logger)

	return &App{
		Storage:     store,
		Clock:       clk,
		Random:      rnd,
		LinkService: link.New(store, clk, rnd, linkCfg, logger),
		Catalogs:    catalogs,
		HubManager:  hubManager,
		Broadcaster: sse.NewBroadcaster(hubManager, catalogs, logger),
	}
}
