package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/rango-rater-backend/internal/http/handlers"
	httpMW "github.com/yungbote/rango-rater-backend/internal/http/middleware"
	"github.com/yungbote/rango-rater-backend/internal/observability"
	"github.com/yungbote/rango-rater-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	Metrics        *observability.Metrics
	AllowedOrigins []string
	// ServiceName enables otelgin spans when non-empty.
	ServiceName string

	AuthMiddleware *httpMW.AuthMiddleware
	AuthHandler    *httpH.AuthHandler
	SyncHandler    *httpH.SyncHandler
	ChatHandler    *httpH.ChatHandler
	AdminHandler   *httpH.AdminHandler
	HealthHandler  *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.AllowedOrigins...))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api")
	{
		// Auth (public)
		if cfg.AuthHandler != nil {
			api.POST("/auth/google", cfg.AuthHandler.GoogleSignIn)
		}
	}

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		if cfg.SyncHandler != nil {
			protected.POST("/sync", cfg.SyncHandler.SyncCalendar)
		}

		// Rating chat
		if cfg.ChatHandler != nil {
			protected.GET("/chat", cfg.ChatHandler.GetQueue)
			protected.POST("/chat/pending", cfg.ChatHandler.RecordPending)
			protected.POST("/chat/submit", cfg.ChatHandler.Submit)
		}

		if cfg.AdminHandler != nil {
			protected.GET("/admin/averages", cfg.AdminHandler.Averages)
		}
	}

	return r
}
