package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/rango-rater-backend/internal/data/repos/jobs"
	"github.com/yungbote/rango-rater-backend/internal/data/repos/rating"
	"github.com/yungbote/rango-rater-backend/internal/data/repos/user"
	"github.com/yungbote/rango-rater-backend/internal/platform/logger"
)

type UserRepo = user.UserRepo

type ActivityRepo = rating.ActivityRepo
type RatingRepo = rating.RatingRepo
type TopicAggregate = rating.TopicAggregate

type SyncRunRepo = jobs.SyncRunRepo

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	return user.NewUserRepo(db, baseLog)
}

func NewActivityRepo(db *gorm.DB, baseLog *logger.Logger) ActivityRepo {
	return rating.NewActivityRepo(db, baseLog)
}

func NewRatingRepo(db *gorm.DB, baseLog *logger.Logger) RatingRepo {
	return rating.NewRatingRepo(db, baseLog)
}

func NewSyncRunRepo(db *gorm.DB, baseLog *logger.Logger) SyncRunRepo {
	return jobs.NewSyncRunRepo(db, baseLog)
}
