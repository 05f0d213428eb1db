package app

import (
	"time"

	dbpkg "github.com/yungbote/rango-rater-backend/internal/data/db"
	"github.com/yungbote/rango-rater-backend/internal/platform/envutil"
	"github.com/yungbote/rango-rater-backend/internal/platform/logger"
	"github.com/yungbote/rango-rater-backend/internal/services"
)

const defaultJWTSecret = "defaultsecret"

type Config struct {
	Port    string
	LogMode string

	DB dbpkg.Config

	JWTSecretKey   string
	AccessTokenTTL time.Duration

	AIBreakerFailures uint32
	AIBreakerTimeout  time.Duration

	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	QuestionCacheTTL time.Duration

	CalendarLookback time.Duration
	QuestionScope    services.QuestionScope

	AllowedOrigins []string

	MetricsEnabled bool
	OtelEnabled    bool
	ServiceName    string
	Environment    string
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Port:    envutil.String("PORT", "8080"),
		LogMode: envutil.String("LOG_MODE", "development"),
		DB: dbpkg.Config{
			Driver:           envutil.String("DB_DRIVER", dbpkg.DriverSQLite),
			SQLitePath:       envutil.String("SQLITE_PATH", "rango.db"),
			PostgresHost:     envutil.String("POSTGRES_HOST", "localhost"),
			PostgresPort:     envutil.String("POSTGRES_PORT", "5432"),
			PostgresUser:     envutil.String("POSTGRES_USER", "postgres"),
			PostgresPassword: envutil.String("POSTGRES_PASSWORD", ""),
			PostgresName:     envutil.String("POSTGRES_NAME", "rango"),
			PostgresSSLMode:  envutil.String("POSTGRES_SSLMODE", "disable"),
			SlowThreshold:    envutil.Duration("DB_SLOW_THRESHOLD", time.Second),
		},
		JWTSecretKey:      envutil.String("JWT_SECRET_KEY", defaultJWTSecret),
		AccessTokenTTL:    envutil.Duration("ACCESS_TOKEN_TTL", services.DefaultAccessTTL),
		AIBreakerFailures: uint32(max(envutil.Int("AI_BREAKER_FAILURES", 5), 0)),
		AIBreakerTimeout:  envutil.Duration("AI_BREAKER_TIMEOUT", 30*time.Second),
		RedisAddr:         envutil.String("REDIS_ADDR", ""),
		RedisPassword:     envutil.String("REDIS_PASSWORD", ""),
		RedisDB:           envutil.Int("REDIS_DB", 0),
		QuestionCacheTTL:  envutil.Duration("QUESTION_CACHE_TTL", 7*24*time.Hour),
		CalendarLookback:  time.Duration(envutil.Int("CALENDAR_LOOKBACK_DAYS", 30)) * 24 * time.Hour,
		QuestionScope:     services.ParseQuestionScope(envutil.String("INGEST_QUESTION_SCOPE", string(services.ScopeActivity))),
		AllowedOrigins:    envutil.List("CORS_ALLOWED_ORIGINS"),
		MetricsEnabled:    envutil.Bool("METRICS_ENABLED", true),
		OtelEnabled:       envutil.Bool("OTEL_ENABLED", false),
		ServiceName:       envutil.String("OTEL_SERVICE_NAME", "rango-rater"),
		Environment:       envutil.String("APP_ENV", "development"),
	}
	if cfg.JWTSecretKey == defaultJWTSecret {
		log.Warn("JWT_SECRET_KEY not set; using the development default")
	}
	return cfg
}
