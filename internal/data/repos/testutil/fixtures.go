package testutil

import (
	"context"
	"testing"

	"gorm.io/gorm"

	types "github.com/yungbote/rango-rater-backend/internal/domain"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.User {
	tb.Helper()
	u := &types.User{Email: email}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedActivity(tb testing.TB, ctx context.Context, tx *gorm.DB, label string) *types.Activity {
	tb.Helper()
	a := &types.Activity{Label: label}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed activity: %v", err)
	}
	return a
}

// SeedRating inserts one question row. Use rating.Unrated for a fresh question.
func SeedRating(tb testing.TB, ctx context.Context, tx *gorm.DB, userID, activityID int64, topic, question string, value int) *types.RatingQuestion {
	tb.Helper()
	q := &types.RatingQuestion{
		UserID:     userID,
		ActivityID: activityID,
		Topic:      topic,
		Question:   question,
		Rating:     value,
	}
	if err := tx.WithContext(ctx).Create(q).Error; err != nil {
		tb.Fatalf("seed rating: %v", err)
	}
	return q
}
