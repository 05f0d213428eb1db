package services

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/yungbote/rango-rater-backend/internal/data/repos"
	"github.com/yungbote/rango-rater-backend/internal/data/repos/testutil"
	"github.com/yungbote/rango-rater-backend/internal/pkg/dbctx"
	apperrors "github.com/yungbote/rango-rater-backend/internal/pkg/errors"
	"github.com/yungbote/rango-rater-backend/internal/platform/ctxutil"
)

type fakeIdentity struct {
	email string
	err   error
}

func (f *fakeIdentity) Email(ctx context.Context, accessToken string) (string, error) {
	return f.email, f.err
}

const testSecret = "test-secret"

type authFixture struct {
	svc      *authService
	identity *fakeIdentity
	sync     *syncFixture
	users    repos.UserRepo
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	sf := &syncFixture{
		calendar:   &fakeCalendar{},
		classifier: &fakeClassifier{},
		gen:        &fakeGenerator{items: map[string][]QuestionItem{}, fail: map[string]error{}},
	}
	ingestion := NewIngestionService(db, log,
		repos.NewActivityRepo(db, log),
		repos.NewRatingRepo(db, log),
		repos.NewSyncRunRepo(db, log),
		sf.gen, ScopeActivity)
	syncSvc := NewSyncService(log, sf.calendar, sf.classifier, ingestion, 0)
	f := &authFixture{
		identity: &fakeIdentity{},
		sync:     sf,
		users:    repos.NewUserRepo(db, log),
	}
	f.svc = NewAuthService(log, f.users, f.identity, syncSvc, testSecret, time.Hour).(*authService)
	return f
}

func TestSignInWithGoogle(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.identity.email = "traveller@example.com"
	f.sync.calendar.summaries = []string{"Louvre visit"}
	f.sync.classifier.out = []string{"Louvre visit"}
	f.sync.gen.items["Louvre visit"] = []QuestionItem{{Topic: "Crowds", Question: "How crowded was it?"}}

	res, err := f.svc.SignInWithGoogle(ctx, "google-token")
	if err != nil {
		t.Fatalf("SignInWithGoogle: %v", err)
	}
	u, err := f.users.GetByEmail(dbctx.Context{Ctx: ctx}, "traveller@example.com")
	if err != nil || u == nil {
		t.Fatalf("GetByEmail: %v (user=%v)", err, u)
	}
	if res.UserID != u.ID || len(res.ActivityIDs) != 1 || res.Token == "" {
		t.Fatalf("unexpected result: %+v", res)
	}

	authed, err := f.svc.SetContextFromToken(ctx, res.Token)
	if err != nil {
		t.Fatalf("SetContextFromToken: %v", err)
	}
	if got := ctxutil.UserID(authed); got != u.ID {
		t.Fatalf("expected user %d in context, got %d", u.ID, got)
	}

	again, err := f.svc.SignInWithGoogle(ctx, "google-token")
	if err != nil {
		t.Fatalf("SignInWithGoogle (again): %v", err)
	}
	if again.UserID != u.ID || len(again.ActivityIDs) != 0 {
		t.Fatalf("expected same user and no new activities, got %+v", again)
	}
}

func TestSignInWithGoogleRejects(t *testing.T) {
	tests := []struct {
		name  string
		token string
		email string
		err   error
	}{
		{"missing token", " ", "a@example.com", nil},
		{"empty email", "tok", "", nil},
		{"identity failure", "tok", "", apperrors.ErrUnauthorized},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newAuthFixture(t)
			f.identity.email = tc.email
			f.identity.err = tc.err
			if _, err := f.svc.SignInWithGoogle(context.Background(), tc.token); !errors.Is(err, apperrors.ErrUnauthorized) {
				t.Fatalf("expected ErrUnauthorized, got %v", err)
			}
		})
	}
}

func TestSetContextFromTokenRejects(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	sign := func(secret, subject string, exp time.Time) string {
		tok := jwt.NewWithClaims(jwt.SigningMethodHS256, JWTClaims{RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(exp),
		}})
		s, err := tok.SignedString([]byte(secret))
		if err != nil {
			t.Fatalf("SignedString: %v", err)
		}
		return s
	}
	future := time.Now().Add(time.Hour)
	tests := map[string]string{
		"empty":         "",
		"garbage":       "not-a-jwt",
		"wrong secret":  sign("other", "1", future),
		"expired":       sign(testSecret, "1", time.Now().Add(-time.Hour)),
		"bad subject":   sign(testSecret, "abc", future),
		"zero subject":  sign(testSecret, "0", future),
		"valid control": sign(testSecret, strconv.Itoa(7), future),
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			out, err := f.svc.SetContextFromToken(ctx, token)
			if name == "valid control" {
				if err != nil || ctxutil.UserID(out) != 7 {
					t.Fatalf("expected user 7, got %d err=%v", ctxutil.UserID(out), err)
				}
				return
			}
			if !errors.Is(err, apperrors.ErrUnauthorized) {
				t.Fatalf("expected ErrUnauthorized, got %v", err)
			}
		})
	}
}
