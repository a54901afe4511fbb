package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tripplanner-backend/utils"
)

// GET /api/plans/:id/expenses/summary
func (h *Handler) GetExpenseSummary(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	planID, ok := uuidParam(c, "id", "plan")
	if !ok {
		return
	}

	summary, err := h.summaries.GetExpenseSummary(c.Request.Context(), actor, planID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", summary)
}
