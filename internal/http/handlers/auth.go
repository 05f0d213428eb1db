package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/rango-rater-backend/internal/http/response"
	"github.com/yungbote/rango-rater-backend/internal/services"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type googleSignInReq struct {
	AccessToken string `json:"access_token" binding:"required"`
}

// POST /api/auth/google
func (ah *AuthHandler) GoogleSignIn(c *gin.Context) {
	var req googleSignInReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	res, err := ah.authService.SignInWithGoogle(c.Request.Context(), req.AccessToken)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"access_token": res.Token,
		"expires_in":   int(ah.authService.GetAccessTTL().Seconds()),
		"user_id":      res.UserID,
		"email":        res.Email,
		"activity_ids": res.ActivityIDs,
	})
}
