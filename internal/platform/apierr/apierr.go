package apierr

import (
	"errors"
	"fmt"
	"net/http"

	apperrors "github.com/yungbote/rango-rater-backend/internal/pkg/errors"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// FromError maps the service sentinels onto an HTTP status and code.
func FromError(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	switch {
	case err == nil:
		return nil
	case errors.Is(err, apperrors.ErrUnauthorized):
		return New(http.StatusUnauthorized, "unauthorized", err)
	case errors.Is(err, apperrors.ErrNotFound):
		return New(http.StatusNotFound, "not_found", err)
	case errors.Is(err, apperrors.ErrInvalidArgument), errors.Is(err, apperrors.ErrRatingOutOfRange):
		return New(http.StatusBadRequest, "invalid_argument", err)
	case errors.Is(err, apperrors.ErrStoreUnavailable):
		return New(http.StatusServiceUnavailable, "store_unavailable", err)
	case errors.Is(err, apperrors.ErrExternalService), errors.Is(err, apperrors.ErrMalformedResponse):
		return New(http.StatusBadGateway, "external_service", err)
	default:
		return New(http.StatusInternalServerError, "internal", err)
	}
}
