package user

import (
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

type UserRepo interface {
	// Upsert inserts the email if it is new and returns the user id either way.
	Upsert(dbc dbctx.Context, email string) (int64, error)
	GetByIDs(dbc dbctx.Context, userIDs []int64) ([]*types.User, error)
	GetByEmail(dbc dbctx.Context, email string) (*types.User, error)
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	repoLog := baseLog.With("repo", "UserRepo")
	return &userRepo{db: db, log: repoLog}
}

func (ur *userRepo) Upsert(dbc dbctx.Context, email string) (int64, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return 0, fmt.Errorf("upsert user: empty email: %w", apperrors.ErrInvalidArgument)
	}
	transaction := dbc.DB(ur.db)

	row := &types.User{Email: email}
	res := transaction.
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "email"}}, DoNothing: true}).
		Create(row)
	if res.Error != nil {
		return 0, dbpkg.Classify(fmt.Errorf("insert user: %w", res.Error))
	}

	var id int64
	if err := transaction.Model(&types.User{}).
		Where("email = ?", email).
		Select("id").
		Scan(&id).Error; err != nil {
		return 0, dbpkg.Classify(fmt.Errorf("lookup user id: %w", err))
	}
	if id == 0 {
		return 0, fmt.Errorf("lookup user id: %w", apperrors.ErrNotFound)
	}
	if res.RowsAffected > 0 {
		ur.log.Info("Created user", "user_id", id)
	}
	return id, nil
}

func (ur *userRepo) GetByIDs(dbc dbctx.Context, userIDs []int64) ([]*types.User, error) {
	var results []*types.User
	if len(userIDs) == 0 {
		return results, nil
	}
	if err := dbc.DB(ur.db).
		Where("id IN ?", userIDs).
		Order("id ASC").
		Find(&results).Error; err != nil {
		return nil, dbpkg.Classify(err)
	}
	return results, nil
}

func (ur *userRepo) GetByEmail(dbc dbctx.Context, email string) (*types.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, nil
	}
	var results []*types.User
	if err := dbc.DB(ur.db).
		Where("email = ?", email).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, dbpkg.Classify(err)
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}
