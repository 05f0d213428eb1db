package db

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/rango-rater-backend/internal/platform/logger"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Driver string

	SQLitePath string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresName     string
	PostgresSSLMode  string

	SlowThreshold time.Duration
}

type Service struct {
	db     *gorm.DB
	log    *logger.Logger
	driver string
}

func Open(logg *logger.Logger, cfg Config) (*Service, error) {
	serviceLog := logg.With("service", "DatabaseService")

	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if driver == "" {
		driver = DriverSQLite
	}
	slow := cfg.SlowThreshold
	if slow <= 0 {
		slow = time.Second
	}
	gormLog := gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             slow,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	var dialector gorm.Dialector
	switch driver {
	case DriverSQLite:
		dialector = sqlite.Open(SQLiteDSN(cfg.SQLitePath))
	case DriverPostgres:
		dialector = postgres.Open(PostgresDSN(cfg))
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
	}

	serviceLog.Info("Connecting to database...", "driver", driver)
	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, Classify(fmt.Errorf("connect %s: %w", driver, err))
	}
	if driver == DriverSQLite {
		// One writer connection: SQLite serializes writers anyway and a shared
		// in-memory database must not be split across connections.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, Classify(err)
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return &Service{db: db, log: serviceLog, driver: driver}, nil
}

// Wrap adopts an already opened connection (tests, tools).
func Wrap(db *gorm.DB, logg *logger.Logger) *Service {
	return &Service{db: db, log: logg.With("service", "DatabaseService"), driver: db.Dialector.Name()}
}

func (s *Service) DB() *gorm.DB { return s.db }

func (s *Service) Driver() string { return s.driver }

func (s *Service) EnsureSchema() error {
	s.log.Info("Ensuring schema...")
	if err := EnsureSchema(s.db); err != nil {
		s.log.Error("Schema migration failed", "error", err)
		return err
	}
	return nil
}

func (s *Service) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func SQLiteDSN(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		path = "rango_rater.db"
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_foreign_keys=on&_busy_timeout=5000"
}

func PostgresDSN(cfg Config) string {
	sslMode := cfg.PostgresSSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		cfg.PostgresUser,
		cfg.PostgresPassword,
		cfg.PostgresHost,
		cfg.PostgresPort,
		cfg.PostgresName,
		sslMode,
	)
}
