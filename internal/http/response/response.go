package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/rango-rater-backend/internal/platform/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondAPIError picks status and code from the error's sentinel.
func RespondAPIError(c *gin.Context, err error) {
	ae := apierr.FromError(err)
	if ae == nil {
		ae = apierr.New(http.StatusInternalServerError, "internal", err)
	}
	RespondError(c, ae.Status, ae.Code, ae.Err)
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
