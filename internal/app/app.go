package app

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	dbpkg "github.com/yungbote/rango-rater-backend/internal/data/db"
	"github.com/yungbote/rango-rater-backend/internal/http"
	"github.com/yungbote/rango-rater-backend/internal/observability"
	"github.com/yungbote/rango-rater-backend/internal/platform/envutil"
	"github.com/yungbote/rango-rater-backend/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Server   *http.Server
	Cfg      Config
	Repos    Repos
	Clients  Clients
	Services Services
	Metrics  *observability.Metrics

	dbService *dbpkg.Service
	cancel    context.CancelFunc
}

func New() (*App, error) {
	log, err := logger.New(envutil.String("LOG_MODE", "development"))
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	dbs, err := dbpkg.Open(log, cfg.DB)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := dbs.EnsureSchema(); err != nil {
		_ = dbs.Close()
		log.Sync()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	theDB := dbs.DB()

	var metrics *observability.Metrics
	if cfg.MetricsEnabled {
		metrics = observability.Init(log)
	}

	clientset, err := wireClients(log, cfg)
	if err != nil {
		_ = dbs.Close()
		log.Sync()
		return nil, err
	}

	reposet := wireRepos(theDB, log)
	serviceset := wireServices(theDB, log, cfg, reposet, clientset)
	handlerset := wireHandlers(log, theDB, serviceset)
	middleware := wireMiddleware(log, serviceset)
	server := wireRouter(log, cfg, metrics, handlerset, middleware)

	return &App{
		Log:       log,
		DB:        theDB,
		Server:    server,
		Cfg:       cfg,
		Repos:     reposet,
		Clients:   clientset,
		Services:  serviceset,
		Metrics:   metrics,
		dbService: dbs,
	}, nil
}

// Start launches the background metric collectors.
func (a *App) Start() {
	if a == nil || a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	if a.Metrics != nil {
		a.Metrics.StartDBCollector(ctx, a.Log, a.DB, 15*time.Second)
		if a.Clients.QuestionCache != nil {
			a.Metrics.StartRedisCollector(ctx, a.Log, a.Clients.QuestionCache.Client(), 15*time.Second)
		}
	}
}

func (a *App) Run(addr string) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	return a.Server.Run(addr)
}

// Shutdown stops accepting requests and waits for in-flight ones until ctx ends.
func (a *App) Shutdown(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return nil
	}
	return a.Server.Shutdown(ctx)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if err := a.Clients.Close(); err != nil && a.Log != nil {
		a.Log.Warn("Failed to close redis", "error", err)
	}
	if a.dbService != nil {
		if err := a.dbService.Close(); err != nil && a.Log != nil {
			a.Log.Warn("Failed to close database", "error", err)
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
