package gcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	googleoauth2 "google.golang.org/api/oauth2/v2"

	"github.com/yungbote/rango-rater-backend/internal/observability"
	apperrors "github.com/yungbote/rango-rater-backend/internal/pkg/errors"
	"github.com/yungbote/rango-rater-backend/internal/platform/ctxutil"
	"github.com/yungbote/rango-rater-backend/internal/platform/logger"
)

type Identity interface {
	// Email returns the address of the account that granted accessToken.
	Email(ctx context.Context, accessToken string) (string, error)
}

type identityService struct {
	log      *logger.Logger
	endpoint string
}

func NewIdentity(log *logger.Logger, cfg Config) (Identity, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &identityService{
		log:      log.With("service", "gcp.Identity"),
		endpoint: cfg.UserinfoEndpoint,
	}, nil
}

func (s *identityService) Email(ctx context.Context, accessToken string) (string, error) {
	if strings.TrimSpace(accessToken) == "" {
		return "", fmt.Errorf("missing access token: %w", apperrors.ErrUnauthorized)
	}
	ctx = ctxutil.Default(ctx)
	start := time.Now()

	svc, err := googleoauth2.NewService(ctx, userClientOptions(accessToken, s.endpoint)...)
	if err != nil {
		return "", fmt.Errorf("%w: userinfo client: %w", apperrors.ErrExternalService, err)
	}
	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		observability.Current().ObserveExternalCall("google_userinfo", "error", time.Since(start))
		if isAuthError(err) {
			return "", fmt.Errorf("userinfo: %w: %w", apperrors.ErrUnauthorized, err)
		}
		return "", fmt.Errorf("%w: userinfo: %w", apperrors.ErrExternalService, err)
	}
	observability.Current().ObserveExternalCall("google_userinfo", "ok", time.Since(start))

	email := strings.TrimSpace(info.Email)
	if email == "" {
		return "", fmt.Errorf("userinfo returned no email: %w", apperrors.ErrUnauthorized)
	}
	return email, nil
}
