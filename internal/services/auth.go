package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/rango-rater-backend/internal/data/repos"
	"github.com/yungbote/rango-rater-backend/internal/pkg/dbctx"
	apperrors "github.com/yungbote/rango-rater-backend/internal/pkg/errors"
	"github.com/yungbote/rango-rater-backend/internal/platform/ctxutil"
	"github.com/yungbote/rango-rater-backend/internal/platform/gcp"
	"github.com/yungbote/rango-rater-backend/internal/platform/logger"
)

const DefaultAccessTTL = 24 * time.Hour

type JWTClaims struct {
	jwt.RegisteredClaims
}

// SignInResult is returned once the user row exists and the first sync has finished.
type SignInResult struct {
	Token       string    `json:"token"`
	UserID      int64     `json:"user_id"`
	Email       string    `json:"email"`
	ActivityIDs []int64   `json:"activity_ids"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type AuthService interface {
	// SignInWithGoogle resolves the Google account behind accessToken, upserts the
	// user, issues a session token and syncs the calendar before returning.
	SignInWithGoogle(ctx context.Context, accessToken string) (*SignInResult, error)
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	GetAccessTTL() time.Duration
}

type authService struct {
	log          *logger.Logger
	userRepo     repos.UserRepo
	identity     gcp.Identity
	syncService  SyncService
	jwtSecretKey string
	accessTTL    time.Duration
	now          func() time.Time
}

func NewAuthService(
	log *logger.Logger,
	userRepo repos.UserRepo,
	identity gcp.Identity,
	syncService SyncService,
	jwtSecretKey string,
	accessTTL time.Duration,
) AuthService {
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTTL
	}
	return &authService{
		log:          log.With("service", "AuthService"),
		userRepo:     userRepo,
		identity:     identity,
		syncService:  syncService,
		jwtSecretKey: jwtSecretKey,
		accessTTL:    accessTTL,
		now:          time.Now,
	}
}

func (as *authService) SignInWithGoogle(ctx context.Context, accessToken string) (*SignInResult, error) {
	accessToken = strings.TrimSpace(accessToken)
	if accessToken == "" {
		return nil, fmt.Errorf("missing access token: %w", apperrors.ErrUnauthorized)
	}

	var (
		email     string
		summaries []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		email, err = as.identity.Email(gctx, accessToken)
		return err
	})
	g.Go(func() error {
		summaries = as.syncService.FetchLabels(gctx, accessToken)
		return nil
	})
	if err := g.Wait(); err != nil {
		as.log.Warn("Google sign-in rejected", "error", err)
		return nil, err
	}
	if strings.TrimSpace(email) == "" {
		return nil, fmt.Errorf("google account has no email: %w", apperrors.ErrUnauthorized)
	}

	userID, err := as.userRepo.Upsert(dbctx.Context{Ctx: ctx}, email)
	if err != nil {
		as.log.Error("Failed to upsert user", "email", email, "error", err)
		return nil, err
	}
	token, expiresAt, err := as.generateAccessToken(userID)
	if err != nil {
		return nil, fmt.Errorf("sign session token: %w", err)
	}

	res, err := as.syncService.IngestSummaries(ctx, userID, summaries)
	if err != nil {
		return nil, err
	}
	as.log.Info("User signed in",
		"user_id", userID,
		"events", len(summaries),
		"activities", len(res.ActivityIDs),
	)
	return &SignInResult{
		Token:       token,
		UserID:      userID,
		Email:       email,
		ActivityIDs: res.ActivityIDs,
		ExpiresAt:   expiresAt,
	}, nil
}

func (as *authService) generateAccessToken(userID int64) (string, time.Time, error) {
	now := as.now()
	expiresAt := now.Add(as.accessTTL)
	claims := JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(as.jwtSecretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if tokenString == "" {
		return ctx, fmt.Errorf("missing token: %w", apperrors.ErrUnauthorized)
	}
	parsedToken, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(as.jwtSecretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(as.now))
	if err != nil {
		return ctx, fmt.Errorf("parse token: %w: %w", apperrors.ErrUnauthorized, err)
	}
	claims, ok := parsedToken.Claims.(*JWTClaims)
	if !ok || !parsedToken.Valid {
		return ctx, fmt.Errorf("invalid or expired token: %w", apperrors.ErrUnauthorized)
	}
	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return ctx, fmt.Errorf("invalid user id in token: %w", apperrors.ErrUnauthorized)
	}
	ctx = ctxutil.WithRequestData(ctx, &ctxutil.RequestData{
		TokenString: tokenString,
		UserID:      userID,
	})
	return ctx, nil
}

func (as *authService) GetAccessTTL() time.Duration {
	return as.accessTTL
}
