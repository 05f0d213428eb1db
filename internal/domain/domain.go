package domain

import (
	"github.com/yungbote/rango-rater-backend/internal/domain/jobs"
	"github.com/yungbote/rango-rater-backend/internal/domain/rating"
	"github.com/yungbote/rango-rater-backend/internal/domain/user"
)

type User = user.User

type Activity = rating.Activity
type RatingQuestion = rating.RatingQuestion
type RatedQuestion = rating.RatedQuestion

type SyncRun = jobs.SyncRun

// Models lists every persisted model in dependency order (parents first).
func Models() []any {
	return []any{
		&User{},
		&Activity{},
		&RatingQuestion{},
		&SyncRun{},
	}
}
