package testutil

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	dbpkg "github.com/yungbote/rango-rater-backend/internal/data/db"
	"github.com/yungbote/rango-rater-backend/internal/platform/logger"
)

var (
	logOnce sync.Once
	logg    *logger.Logger
	logErr  error

	dbSeq atomic.Int64
)

func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	logOnce.Do(func() {
		logg, logErr = logger.New("test")
	})
	if logErr != nil {
		tb.Fatalf("failed to init logger: %v", logErr)
	}
	return logg
}

// DB opens a private in-memory SQLite database with the schema applied.
// The database lives until the test finishes.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(tb.Name())
	dsn := dbpkg.SQLiteDSN(fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, dbSeq.Add(1)))

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		tb.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("test db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })

	if err := dbpkg.EnsureSchema(db); err != nil {
		tb.Fatalf("ensure schema: %v", err)
	}
	return db
}

// Tx opens a transaction rolled back at cleanup. With a single SQLite
// connection every statement of the test must go through the returned tx.
func Tx(tb testing.TB, db *gorm.DB) *gorm.DB {
	tb.Helper()
	tx := db.Begin()
	if tx.Error != nil {
		tb.Fatalf("begin tx: %v", tx.Error)
	}
	tb.Cleanup(func() {
		_ = tx.Rollback().Error
	})
	return tx
}
