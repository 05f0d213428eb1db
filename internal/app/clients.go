package app

import (
	"fmt"
	"strings"

	redisclient "github.com/yungbote/rango-rater-backend/internal/clients/redis"
	"github.com/yungbote/rango-rater-backend/internal/platform/envutil"
	"github.com/yungbote/rango-rater-backend/internal/platform/gcp"
	"github.com/yungbote/rango-rater-backend/internal/platform/logger"
	"github.com/yungbote/rango-rater-backend/internal/platform/openai"
)

type Clients struct {
	OpenAI        openai.Client
	Identity      gcp.Identity
	Calendar      gcp.Calendar
	QuestionCache redisclient.Cache
}

func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	// Redis (optional)
	var cache redisclient.Cache
	if strings.TrimSpace(cfg.RedisAddr) != "" {
		c, err := redisclient.NewCache(log, redisclient.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.QuestionCacheTTL,
		})
		if err != nil {
			return Clients{}, fmt.Errorf("init redis question cache: %w", err)
		}
		cache = c
	}

	// OpenAI
	openaiClient, err := openai.NewClient(log, openai.ConfigFromEnv())
	if err != nil {
		return Clients{}, fmt.Errorf("init openai client: %w", err)
	}
	openaiClient = openai.WithBreaker(openaiClient, log, openai.BreakerConfig{
		Name:                "openai",
		ConsecutiveFailures: cfg.AIBreakerFailures,
		Timeout:             cfg.AIBreakerTimeout,
	})

	// Google
	gcfg := gcp.Config{
		CalendarEndpoint: envutil.String("GOOGLE_CALENDAR_ENDPOINT", ""),
		UserinfoEndpoint: envutil.String("GOOGLE_USERINFO_ENDPOINT", ""),
	}
	identity, err := gcp.NewIdentity(log, gcfg)
	if err != nil {
		return Clients{}, fmt.Errorf("init google identity client: %w", err)
	}
	calendar, err := gcp.NewCalendar(log, gcfg)
	if err != nil {
		return Clients{}, fmt.Errorf("init google calendar client: %w", err)
	}

	return Clients{
		OpenAI:        openaiClient,
		Identity:      identity,
		Calendar:      calendar,
		QuestionCache: cache,
	}, nil
}

func (c Clients) Close() error {
	if c.QuestionCache != nil {
		return c.QuestionCache.Close()
	}
	return nil
}
