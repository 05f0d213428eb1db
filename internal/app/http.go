package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/rango-rater-backend/internal/http"
	httpH "github.com/yungbote/rango-rater-backend/internal/http/handlers"
	httpMW "github.com/yungbote/rango-rater-backend/internal/http/middleware"
	"github.com/yungbote/rango-rater-backend/internal/observability"
	"github.com/yungbote/rango-rater-backend/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health *httpH.HealthHandler
	Auth   *httpH.AuthHandler
	Sync   *httpH.SyncHandler
	Chat   *httpH.ChatHandler
	Admin  *httpH.AdminHandler
}

func wireMiddleware(log *logger.Logger, s Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, s.Auth),
	}
}

func wireHandlers(log *logger.Logger, db *gorm.DB, s Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health: httpH.NewHealthHandler(db),
		Auth:   httpH.NewAuthHandler(s.Auth),
		Sync:   httpH.NewSyncHandler(s.Sync),
		Chat:   httpH.NewChatHandler(s.Chat),
		Admin:  httpH.NewAdminHandler(s.Aggregation),
	}
}

func wireRouter(log *logger.Logger, cfg Config, metrics *observability.Metrics, h Handlers, mw Middleware) *http.Server {
	rc := http.RouterConfig{
		Log:            log,
		Metrics:        metrics,
		AllowedOrigins: cfg.AllowedOrigins,
		AuthMiddleware: mw.Auth,
		AuthHandler:    h.Auth,
		SyncHandler:    h.Sync,
		ChatHandler:    h.Chat,
		AdminHandler:   h.Admin,
		HealthHandler:  h.Health,
	}
	if cfg.OtelEnabled {
		rc.ServiceName = cfg.ServiceName
	}
	return http.NewServer(rc)
}
