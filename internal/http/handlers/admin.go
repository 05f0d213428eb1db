package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/rango-rater-backend/internal/http/response"
	"github.com/yungbote/rango-rater-backend/internal/pkg/dbctx"
	"github.com/yungbote/rango-rater-backend/internal/services"
)

type AdminHandler struct {
	aggregation services.AggregationService
}

func NewAdminHandler(aggregation services.AggregationService) *AdminHandler {
	return &AdminHandler{aggregation: aggregation}
}

// GET /api/admin/averages
func (h *AdminHandler) Averages(c *gin.Context) {
	summaries, err := h.aggregation.Summaries(dbctx.Context{Ctx: c.Request.Context()})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"activities": summaries})
}
