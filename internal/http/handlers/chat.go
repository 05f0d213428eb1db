package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/rango-rater-backend/internal/http/response"
	"github.com/yungbote/rango-rater-backend/internal/services"
)

type ChatHandler struct {
	chat services.ChatService
}

func NewChatHandler(chat services.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

// GET /api/chat
func (h *ChatHandler) GetQueue(c *gin.Context) {
	snap, err := h.chat.Queue(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"snapshot": snap})
}

type pendingRatingReq struct {
	QuestionID int64 `json:"question_id" binding:"required,gt=0"`
	Rating     int   `json:"rating" binding:"min=0,max=5"`
}

// POST /api/chat/pending
func (h *ChatHandler) RecordPending(c *gin.Context) {
	var req pendingRatingReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	snap, err := h.chat.RecordPending(c.Request.Context(), req.QuestionID, req.Rating)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"snapshot": snap})
}

type submitRatingReq struct {
	QuestionID   int64 `json:"question_id" binding:"required,gt=0"`
	FirstUnrated bool  `json:"first_unrated"`
}

// POST /api/chat/submit
func (h *ChatHandler) Submit(c *gin.Context) {
	var req submitRatingReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	applied, snap, err := h.chat.Submit(c.Request.Context(), req.QuestionID, req.FirstUnrated)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"applied": applied, "snapshot": snap})
}
