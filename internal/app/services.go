package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/rango-rater-backend/internal/platform/logger"
	"github.com/yungbote/rango-rater-backend/internal/services"
)

type Services struct {
	Ingestion   services.IngestionService
	Sync        services.SyncService
	Auth        services.AuthService
	Chat        services.ChatService
	Aggregation services.AggregationService
}

// wireServices builds the AI chain as degrade(cache(breaker(openai))) for the
// generator and degrade(breaker(openai)) for the classifier.
func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos, c Clients) Services {
	log.Info("Wiring services...")

	ai := services.NewActivityAI(c.OpenAI, log)
	classifier := services.DegradeClassifier(ai, log)
	generator := services.DegradeGenerator(services.CacheGenerator(ai, c.QuestionCache, log), log)

	ingestion := services.NewIngestionService(db, log, r.Activity, r.Rating, r.SyncRun, generator, cfg.QuestionScope)
	syncService := services.NewSyncService(log, c.Calendar, classifier, ingestion, cfg.CalendarLookback)
	auth := services.NewAuthService(log, r.User, c.Identity, syncService, cfg.JWTSecretKey, cfg.AccessTokenTTL)

	return Services{
		Ingestion:   ingestion,
		Sync:        syncService,
		Auth:        auth,
		Chat:        services.NewChatService(log, r.Rating),
		Aggregation: services.NewAggregationService(log, r.Rating),
	}
}
