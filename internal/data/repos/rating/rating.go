package rating

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	dbpkg "github.com/yungbote/rango-rater-backend/internal/data/db"
	types "github.com/yungbote/rango-rater-backend/internal/domain"
	domain "github.com/yungbote/rango-rater-backend/internal/domain/rating"
	"github.com/yungbote/rango-rater-backend/internal/pkg/dbctx"
	apperrors "github.com/yungbote/rango-rater-backend/internal/pkg/errors"
	"github.com/yungbote/rango-rater-backend/internal/platform/logger"
)

// TopicAggregate is the raw rollup of rated rows for one (activity, topic).
// FirstID is the smallest rating id in the group and fixes presentation order.
type TopicAggregate struct {
	ActivityID int64  `gorm:"column:activity_id"`
	Activity   string `gorm:"column:activity"`
	Topic      string `gorm:"column:topic"`
	Sum        int64  `gorm:"column:rating_sum"`
	Count      int64  `gorm:"column:rating_count"`
	FirstID    int64  `gorm:"column:first_id"`
}

type RatingRepo interface {
	// InsertIgnoreBatch writes all rows in one statement, skipping tuples that already exist.
	InsertIgnoreBatch(dbc dbctx.Context, rows []*types.RatingQuestion) (int64, error)
	ListByUser(dbc dbctx.Context, userID int64) ([]*types.RatingQuestion, error)
	UpdateRating(dbc dbctx.Context, id int64, value int) error
	ListRated(dbc dbctx.Context) ([]types.RatedQuestion, error)
	CountForUserActivity(dbc dbctx.Context, userID, activityID int64) (int64, error)
	TopicAggregates(dbc dbctx.Context) ([]TopicAggregate, error)
}

type ratingRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRatingRepo(db *gorm.DB, baseLog *logger.Logger) RatingRepo {
	return &ratingRepo{db: db, log: baseLog.With("repo", "RatingRepo")}
}

var ratingTupleColumns = []clause.Column{
	{Name: "user_id"},
	{Name: "activity_id"},
	{Name: "topic"},
	{Name: "question"},
}

func (r *ratingRepo) InsertIgnoreBatch(dbc dbctx.Context, rows []*types.RatingQuestion) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	res := dbc.DB(r.db).
		Clauses(clause.OnConflict{Columns: ratingTupleColumns, DoNothing: true}).
		Create(&rows)
	if res.Error != nil {
		return 0, dbpkg.Classify(fmt.Errorf("insert ratings: %w", res.Error))
	}
	return res.RowsAffected, nil
}

func (r *ratingRepo) ListByUser(dbc dbctx.Context, userID int64) ([]*types.RatingQuestion, error) {
	var out []*types.RatingQuestion
	if userID == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Preload("Activity").
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, dbpkg.Classify(err)
	}
	return out, nil
}

func (r *ratingRepo) UpdateRating(dbc dbctx.Context, id int64, value int) error {
	if !domain.ValidSubmittedRating(value) {
		return fmt.Errorf("rating %d: %w", value, apperrors.ErrRatingOutOfRange)
	}
	res := dbc.DB(r.db).
		Model(&types.RatingQuestion{}).
		Where("id = ?", id).
		Update("rating", value)
	if res.Error != nil {
		return dbpkg.Classify(fmt.Errorf("update rating %d: %w", id, res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("rating %d: %w", id, apperrors.ErrNotFound)
	}
	return nil
}

func (r *ratingRepo) ListRated(dbc dbctx.Context) ([]types.RatedQuestion, error) {
	var out []types.RatedQuestion
	if err := dbc.DB(r.db).
		Table("ratings").
		Select("ratings.id, ratings.user_id, ratings.activity_id, ratings.topic, ratings.question, ratings.rating, activities.activity AS activity").
		Joins("JOIN activities ON activities.id = ratings.activity_id").
		Where("ratings.rating <> ?", domain.Unrated).
		Order("ratings.id ASC").
		Scan(&out).Error; err != nil {
		return nil, dbpkg.Classify(err)
	}
	return out, nil
}

func (r *ratingRepo) CountForUserActivity(dbc dbctx.Context, userID, activityID int64) (int64, error) {
	var n int64
	if err := dbc.DB(r.db).
		Model(&types.RatingQuestion{}).
		Where("user_id = ? AND activity_id = ?", userID, activityID).
		Count(&n).Error; err != nil {
		return 0, dbpkg.Classify(err)
	}
	return n, nil
}

func (r *ratingRepo) TopicAggregates(dbc dbctx.Context) ([]TopicAggregate, error) {
	var out []TopicAggregate
	if err := dbc.DB(r.db).
		Table("ratings").
		Select(`ratings.activity_id AS activity_id,
			activities.activity AS activity,
			ratings.topic AS topic,
			SUM(ratings.rating) AS rating_sum,
			COUNT(*) AS rating_count,
			MIN(ratings.id) AS first_id`).
		Joins("JOIN activities ON activities.id = ratings.activity_id").
		Where("ratings.rating <> ?", domain.Unrated).
		Group("ratings.activity_id, activities.activity, ratings.topic").
		Order("activity_id ASC, first_id ASC").
		Scan(&out).Error; err != nil {
		return nil, dbpkg.Classify(err)
	}
	return out, nil
}
