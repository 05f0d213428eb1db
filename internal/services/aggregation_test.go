package services

import (
	"context"
	"testing"

	"github.com/yungbote/rango-rater-backend/internal/data/repos"
	"github.com/yungbote/rango-rater-backend/internal/data/repos/testutil"
	"github.com/yungbote/rango-rater-backend/internal/domain/rating"
	"github.com/yungbote/rango-rater-backend/internal/pkg/dbctx"
)

func TestComputeAverages(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	ctx := context.Background()
	svc := NewAggregationService(log, repos.NewRatingRepo(db, log))

	alice := testutil.SeedUser(t, ctx, db, "alice@example.com")
	bob := testutil.SeedUser(t, ctx, db, "bob@example.com")
	museum := testutil.SeedActivity(t, ctx, db, "Museum")
	park := testutil.SeedActivity(t, ctx, db, "Park")

	testutil.SeedRating(t, ctx, db, alice.ID, museum.ID, "X", "How was X?", 3)
	testutil.SeedRating(t, ctx, db, bob.ID, museum.ID, "X", "How was X?", 5)
	testutil.SeedRating(t, ctx, db, alice.ID, museum.ID, "Y", "How was Y?", 2)
	testutil.SeedRating(t, ctx, db, alice.ID, museum.ID, "Z", "How was Z?", rating.Unrated)
	testutil.SeedRating(t, ctx, db, alice.ID, park.ID, "Shade", "How shady?", 1)
	testutil.SeedRating(t, ctx, db, bob.ID, park.ID, "Shade", "How shady?", 2)
	testutil.SeedRating(t, ctx, db, bob.ID, park.ID, "Shade", "Any shade at all?", 2)

	got, err := svc.ComputeAverages(dbctx.Context{Ctx: ctx})
	if err != nil {
		t.Fatalf("ComputeAverages: %v", err)
	}
	m := got[museum.ID]
	if len(m) != 2 {
		t.Fatalf("expected 2 rated museum topics, got %+v", m)
	}
	if m[0].Topic != "X" || m[0].Rating != 4.00 || m[0].Activity != "Museum" {
		t.Fatalf("unexpected first museum topic: %+v", m[0])
	}
	if m[1].Topic != "Y" || m[1].Rating != 2 {
		t.Fatalf("unexpected second museum topic: %+v", m[1])
	}
	p := got[park.ID]
	if len(p) != 1 || p[0].Rating != 1.67 {
		t.Fatalf("expected park shade 1.67, got %+v", p)
	}

	sums, err := svc.Summaries(dbctx.Context{Ctx: ctx})
	if err != nil {
		t.Fatalf("Summaries: %v", err)
	}
	if len(sums) != 2 || sums[0].ActivityID != museum.ID || sums[1].ActivityID != park.ID {
		t.Fatalf("unexpected summaries order: %+v", sums)
	}
	if sums[0].Average != 3.00 {
		t.Fatalf("expected museum overall 3.00, got %v", sums[0].Average)
	}
}

func TestComputeAveragesEmpty(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	svc := NewAggregationService(log, repos.NewRatingRepo(db, log))

	got, err := svc.ComputeAverages(dbctx.Context{Ctx: context.Background()})
	if err != nil {
		t.Fatalf("ComputeAverages: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no averages, got %+v", got)
	}
}

func TestRound2(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{4, 4},
		{5.0 / 3.0, 1.67},
		{3.333, 3.33},
	}
	for _, tc := range tests {
		if got := round2(tc.in); got != tc.want {
			t.Fatalf("round2(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
