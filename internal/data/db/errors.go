package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	apperrors "github.com/yungbote/rango-rater-backend/internal/pkg/errors"
)

var unavailableFragments = []string{
	"connection refused",
	"no such host",
	"unable to open database file",
	"database is locked",
	"sql: database is closed",
	"broken pipe",
	"connection reset by peer",
}

// Classify wraps connection-level failures with ErrStoreUnavailable and returns
// every other error unchanged.
func Classify(err error) error {
	if err == nil || errors.Is(err, apperrors.ErrStoreUnavailable) {
		return err
	}
	if IsUnavailable(err) {
		return fmt.Errorf("%w: %w", apperrors.ErrStoreUnavailable, err)
	}
	return err
}

func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, apperrors.ErrStoreUnavailable) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}
	if pgconn.Timeout(err) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, frag := range unavailableFragments {
		if strings.Contains(msg, frag) {
			return true
		}
	}
	return false
}
