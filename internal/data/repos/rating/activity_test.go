package rating

import (
	"context"
	"errors"
	"testing"

	"github.com/yungbote/rango-rater-backend/internal/data/repos/testutil"
	"github.com/yungbote/rango-rater-backend/internal/pkg/dbctx"
	apperrors "github.com/yungbote/rango-rater-backend/internal/pkg/errors"
)

func TestActivityRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewActivityRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	created, err := repo.InsertIgnore(dbc, "Museum Visit")
	if err != nil {
		t.Fatalf("InsertIgnore: %v", err)
	}
	if !created {
		t.Fatalf("InsertIgnore: expected a new row")
	}

	created, err = repo.InsertIgnore(dbc, "Museum Visit")
	if err != nil {
		t.Fatalf("InsertIgnore (again): %v", err)
	}
	if created {
		t.Fatalf("InsertIgnore (again): expected the existing row to be kept")
	}

	id, err := repo.GetIDByLabel(dbc, "Museum Visit")
	if err != nil {
		t.Fatalf("GetIDByLabel: %v", err)
	}

	rows, err := repo.GetByIDs(dbc, []int64{id})
	if err != nil {
		t.Fatalf("GetByIDs: %v", err)
	}
	if len(rows) != 1 || rows[0].Label != "Museum Visit" {
		t.Fatalf("GetByIDs: unexpected result: %+v", rows)
	}

	if _, err := repo.GetIDByLabel(dbc, "Park"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("GetIDByLabel (missing): expected ErrNotFound, got %v", err)
	}

	if _, err := repo.InsertIgnore(dbc, " "); !errors.Is(err, apperrors.ErrInvalidArgument) {
		t.Fatalf("InsertIgnore (blank): expected ErrInvalidArgument, got %v", err)
	}
}
