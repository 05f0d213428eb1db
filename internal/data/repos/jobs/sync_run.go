package jobs

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	dbpkg "github.com/yungbote/rango-rater-backend/internal/data/db"
	types "github.com/yungbote/rango-rater-backend/internal/domain"
	"github.com/yungbote/rango-rater-backend/internal/pkg/dbctx"
	"github.com/yungbote/rango-rater-backend/internal/platform/logger"
)

type SyncRunRepo interface {
	Create(dbc dbctx.Context, run *types.SyncRun) (*types.SyncRun, error)
	ListByUser(dbc dbctx.Context, userID int64, limit int) ([]*types.SyncRun, error)
}

type syncRunRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSyncRunRepo(db *gorm.DB, baseLog *logger.Logger) SyncRunRepo {
	return &syncRunRepo{
		db:  db,
		log: baseLog.With("repo", "SyncRunRepo"),
	}
}

func (r *syncRunRepo) Create(dbc dbctx.Context, run *types.SyncRun) (*types.SyncRun, error) {
	if run == nil {
		return nil, nil
	}
	if len(run.Labels) == 0 {
		run.Labels = datatypes.JSON([]byte("[]"))
	}
	if len(run.ActivityIDs) == 0 {
		run.ActivityIDs = datatypes.JSON([]byte("[]"))
	}
	if err := dbc.DB(r.db).Create(run).Error; err != nil {
		return nil, dbpkg.Classify(fmt.Errorf("insert sync run: %w", err))
	}
	return run, nil
}

// ListByUser returns the newest runs first. limit <= 0 means no limit.
func (r *syncRunRepo) ListByUser(dbc dbctx.Context, userID int64, limit int) ([]*types.SyncRun, error) {
	var out []*types.SyncRun
	q := dbc.DB(r.db).
		Where("user_id = ?", userID).
		Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, dbpkg.Classify(err)
	}
	return out, nil
}

// JSONList encodes v for a datatypes.JSON column, falling back to an empty list.
func JSONList[T any](v []T) datatypes.JSON {
	if len(v) == 0 {
		return datatypes.JSON([]byte("[]"))
	}
	b, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON([]byte("[]"))
	}
	return datatypes.JSON(b)
}
