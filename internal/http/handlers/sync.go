package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/rango-rater-backend/internal/http/response"
	"github.com/yungbote/rango-rater-backend/internal/platform/ctxutil"
	"github.com/yungbote/rango-rater-backend/internal/services"
)

type SyncHandler struct {
	sync services.SyncService
}

func NewSyncHandler(sync services.SyncService) *SyncHandler {
	return &SyncHandler{sync: sync}
}

type syncReq struct {
	AccessToken string `json:"access_token" binding:"required"`
}

// POST /api/sync
func (h *SyncHandler) SyncCalendar(c *gin.Context) {
	var req syncReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	ctx := c.Request.Context()
	res, err := h.sync.SyncCalendar(ctx, ctxutil.UserID(ctx), req.AccessToken)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, res)
}
