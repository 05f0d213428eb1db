package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/rango-rater-backend/internal/data/repos"
	"github.com/yungbote/rango-rater-backend/internal/platform/logger"
)

type Repos struct {
	User     repos.UserRepo
	Activity repos.ActivityRepo
	Rating   repos.RatingRepo
	SyncRun  repos.SyncRunRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:     repos.NewUserRepo(db, log),
		Activity: repos.NewActivityRepo(db, log),
		Rating:   repos.NewRatingRepo(db, log),
		SyncRun:  repos.NewSyncRunRepo(db, log),
	}
}
