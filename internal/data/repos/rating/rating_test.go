package rating

import (
	"context"
	"errors"
	"testing"

	"github.com/yungbote/rango-rater-backend/internal/data/repos/testutil"
	types "github.com/yungbote/rango-rater-backend/internal/domain"
	domain "github.com/yungbote/rango-rater-backend/internal/domain/rating"
	"github.com/yungbote/rango-rater-backend/internal/pkg/dbctx"
	apperrors "github.com/yungbote/rango-rater-backend/internal/pkg/errors"
)

func TestRatingRepoInsertIgnoreBatch(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	repo := NewRatingRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	u := testutil.SeedUser(t, ctx, tx, "rater@example.com")
	a := testutil.SeedActivity(t, ctx, tx, "Museum")

	batch := func() []*types.RatingQuestion {
		return []*types.RatingQuestion{
			{UserID: u.ID, ActivityID: a.ID, Topic: "Cleanliness", Question: "How clean was it?"},
			{UserID: u.ID, ActivityID: a.ID, Topic: "Staff", Question: "How friendly was the staff?"},
		}
	}

	n, err := repo.InsertIgnoreBatch(dbc, batch())
	if err != nil {
		t.Fatalf("InsertIgnoreBatch: %v", err)
	}
	if n != 2 {
		t.Fatalf("InsertIgnoreBatch: expected 2 rows, got %d", n)
	}

	n, err = repo.InsertIgnoreBatch(dbc, batch())
	if err != nil {
		t.Fatalf("InsertIgnoreBatch (duplicate): %v", err)
	}
	if n != 0 {
		t.Fatalf("InsertIgnoreBatch (duplicate): expected 0 rows, got %d", n)
	}

	count, err := repo.CountForUserActivity(dbc, u.ID, a.ID)
	if err != nil {
		t.Fatalf("CountForUserActivity: %v", err)
	}
	if count != 2 {
		t.Fatalf("CountForUserActivity: expected 2, got %d", count)
	}

	rows, err := repo.ListByUser(dbc, u.ID)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("ListByUser: expected 2 rows, got %d", len(rows))
	}
	for i, row := range rows {
		if row.Rating != domain.Unrated {
			t.Fatalf("ListByUser[%d]: expected unrated, got %d", i, row.Rating)
		}
		if row.Activity == nil || row.Activity.Label != "Museum" {
			t.Fatalf("ListByUser[%d]: expected preloaded activity, got %+v", i, row.Activity)
		}
	}
	if rows[0].Topic != "Cleanliness" || rows[1].Topic != "Staff" {
		t.Fatalf("ListByUser: expected insertion order, got %q, %q", rows[0].Topic, rows[1].Topic)
	}
}

func TestRatingRepoUpdateRatingBounds(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	repo := NewRatingRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	u := testutil.SeedUser(t, ctx, tx, "bounds@example.com")
	a := testutil.SeedActivity(t, ctx, tx, "Park")
	q := testutil.SeedRating(t, ctx, tx, u.ID, a.ID, "Scenery", "How nice was the view?", domain.Unrated)

	tests := []struct {
		name    string
		value   int
		wantErr error
	}{
		{name: "zero is reserved", value: 0, wantErr: apperrors.ErrRatingOutOfRange},
		{name: "above scale", value: 6, wantErr: apperrors.ErrRatingOutOfRange},
		{name: "negative", value: -1, wantErr: apperrors.ErrRatingOutOfRange},
		{name: "lowest", value: 1},
		{name: "highest", value: 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.UpdateRating(dbc, q.ID, tt.value)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("UpdateRating(%d): expected %v, got %v", tt.value, tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("UpdateRating(%d): %v", tt.value, err)
			}
			var got types.RatingQuestion
			if err := tx.First(&got, q.ID).Error; err != nil {
				t.Fatalf("reload: %v", err)
			}
			if got.Rating != tt.value {
				t.Fatalf("UpdateRating(%d): stored %d", tt.value, got.Rating)
			}
		})
	}

	if err := repo.UpdateRating(dbc, q.ID+1000, 3); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("UpdateRating (missing id): expected ErrNotFound, got %v", err)
	}
}

func TestRatingCheckConstraint(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	u := testutil.SeedUser(t, ctx, tx, "check@example.com")
	a := testutil.SeedActivity(t, ctx, tx, "Zoo")
	q := testutil.SeedRating(t, ctx, tx, u.ID, a.ID, "Animals", "How were the animals?", domain.Unrated)

	sp := "check_constraint"
	if err := tx.SavePoint(sp).Error; err != nil {
		t.Fatalf("savepoint: %v", err)
	}
	if err := tx.Exec("UPDATE ratings SET rating = ? WHERE id = ?", 6, q.ID).Error; err == nil {
		t.Fatalf("expected the check constraint to reject rating 6")
	}
	if err := tx.RollbackTo(sp).Error; err != nil {
		t.Fatalf("rollback to savepoint: %v", err)
	}

	if err := tx.Create(&types.RatingQuestion{UserID: u.ID, ActivityID: 999999, Topic: "t", Question: "q"}).Error; err == nil {
		t.Fatalf("expected the foreign key to reject an unknown activity")
	}
}

func TestRatingRepoAggregatesAndRated(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	repo := NewRatingRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	u1 := testutil.SeedUser(t, ctx, tx, "a@example.com")
	u2 := testutil.SeedUser(t, ctx, tx, "b@example.com")
	museum := testutil.SeedActivity(t, ctx, tx, "Museum")
	park := testutil.SeedActivity(t, ctx, tx, "Park")

	testutil.SeedRating(t, ctx, tx, u1.ID, museum.ID, "Cleanliness", "How clean was it?", 3)
	testutil.SeedRating(t, ctx, tx, u2.ID, museum.ID, "Cleanliness", "How clean was it?", 5)
	testutil.SeedRating(t, ctx, tx, u1.ID, museum.ID, "Staff", "How was the staff?", domain.Unrated)
	testutil.SeedRating(t, ctx, tx, u1.ID, park.ID, "Scenery", "How was the view?", 4)

	rated, err := repo.ListRated(dbc)
	if err != nil {
		t.Fatalf("ListRated: %v", err)
	}
	if len(rated) != 3 {
		t.Fatalf("ListRated: expected 3 rows, got %d", len(rated))
	}
	if rated[0].Activity != "Museum" || rated[2].Activity != "Park" {
		t.Fatalf("ListRated: unexpected labels: %+v", rated)
	}

	aggs, err := repo.TopicAggregates(dbc)
	if err != nil {
		t.Fatalf("TopicAggregates: %v", err)
	}
	if len(aggs) != 2 {
		t.Fatalf("TopicAggregates: expected 2 groups, got %d: %+v", len(aggs), aggs)
	}
	if aggs[0].ActivityID != museum.ID || aggs[0].Topic != "Cleanliness" || aggs[0].Sum != 8 || aggs[0].Count != 2 {
		t.Fatalf("TopicAggregates[0]: unexpected %+v", aggs[0])
	}
	if aggs[1].ActivityID != park.ID || aggs[1].Activity != "Park" || aggs[1].Sum != 4 || aggs[1].Count != 1 {
		t.Fatalf("TopicAggregates[1]: unexpected %+v", aggs[1])
	}
}
