package rating

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	dbpkg "github.com/yungbote/rango-rater-backend/internal/data/db"
	types "github.com/yungbote/rango-rater-backend/internal/domain"
	"github.com/yungbote/rango-rater-backend/internal/pkg/dbctx"
	apperrors "github.com/yungbote/rango-rater-backend/internal/pkg/errors"
	"github.com/yungbote/rango-rater-backend/internal/platform/logger"
)

type ActivityRepo interface {
	// InsertIgnore reports whether a new row was created for label.
	InsertIgnore(dbc dbctx.Context, label string) (bool, error)
	GetIDByLabel(dbc dbctx.Context, label string) (int64, error)
	GetByIDs(dbc dbctx.Context, ids []int64) ([]*types.Activity, error)
}

type activityRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewActivityRepo(db *gorm.DB, baseLog *logger.Logger) ActivityRepo {
	return &activityRepo{db: db, log: baseLog.With("repo", "ActivityRepo")}
}

func (r *activityRepo) InsertIgnore(dbc dbctx.Context, label string) (bool, error) {
	if strings.TrimSpace(label) == "" {
		return false, fmt.Errorf("insert activity: empty label: %w", apperrors.ErrInvalidArgument)
	}
	res := dbc.DB(r.db).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "activity"}}, DoNothing: true}).
		Create(&types.Activity{Label: label})
	if res.Error != nil {
		return false, dbpkg.Classify(fmt.Errorf("insert activity: %w", res.Error))
	}
	return res.RowsAffected > 0, nil
}

func (r *activityRepo) GetIDByLabel(dbc dbctx.Context, label string) (int64, error) {
	var row types.Activity
	err := dbc.DB(r.db).
		Select("id").
		Where("activity = ?", label).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, fmt.Errorf("activity %q: %w", label, apperrors.ErrNotFound)
	}
	if err != nil {
		return 0, dbpkg.Classify(err)
	}
	return row.ID, nil
}

func (r *activityRepo) GetByIDs(dbc dbctx.Context, ids []int64) ([]*types.Activity, error) {
	var out []*types.Activity
	if len(ids) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, dbpkg.Classify(err)
	}
	return out, nil
}
