package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tripplanner-backend/utils"
)

// GET /api/plans/:id/activity
func (h *Handler) GetPlanActivity(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	planID, ok := uuidParam(c, "id", "plan")
	if !ok {
		return
	}

	var pagination utils.PaginationQuery
	if err := c.ShouldBindQuery(&pagination); err != nil {
		utils.BadRequest(c, "Invalid pagination parameters")
		return
	}

	activities, err := h.expenses.GetPlanActivity(c.Request.Context(), actor, planID, pagination)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", activities)
}
