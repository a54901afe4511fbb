package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tripplanner-backend/models"
	"tripplanner-backend/utils"
)

// POST /api/expenses
func (h *Handler) CreateExpense(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req models.CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	expense, err := h.expenses.CreateExpense(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Expense added", expense)
}

// GET /api/expenses
func (h *Handler) GetExpenses(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	filter, err := parseExpenseFilter(c)
	if err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	var pagination utils.PaginationQuery
	if err := c.ShouldBindQuery(&pagination); err != nil {
		utils.BadRequest(c, "Invalid pagination parameters")
		return
	}

	page, err := h.expenses.GetExpenses(c.Request.Context(), actor, filter, pagination)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", page)
}

// GET /api/expenses/:id
func (h *Handler) GetExpense(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	expenseID, ok := uuidParam(c, "id", "expense")
	if !ok {
		return
	}

	expense, err := h.expenses.GetExpense(c.Request.Context(), actor, expenseID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", expense)
}

// PATCH /api/expenses/:id
func (h *Handler) UpdateExpense(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	expenseID, ok := uuidParam(c, "id", "expense")
	if !ok {
		return
	}

	var req models.UpdateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	expense, err := h.expenses.UpdateExpense(c.Request.Context(), actor, expenseID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Expense updated", expense)
}

// DELETE /api/expenses/:id
func (h *Handler) DeleteExpense(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	expenseID, ok := uuidParam(c, "id", "expense")
	if !ok {
		return
	}

	if err := h.expenses.DeleteExpense(c.Request.Context(), actor, expenseID); err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Expense deleted", nil)
}

// POST /api/expenses/:id/participants/:participantId/settle
func (h *Handler) SettleExpense(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	expenseID, ok := uuidParam(c, "id", "expense")
	if !ok {
		return
	}
	participantID, ok := uuidParam(c, "participantId", "participant")
	if !ok {
		return
	}

	participant, err := h.expenses.SettleExpense(c.Request.Context(), actor, expenseID, participantID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Share settled", participant)
}

type filterError string

func (e filterError) Error() string { return string(e) }

// parseExpenseFilter reads planId, payerId, category, splitType, from, to
// and search from the query string. A date-only "to" covers the whole day.
func parseExpenseFilter(c *gin.Context) (models.ExpenseFilter, error) {
	var filter models.ExpenseFilter

	if raw := c.Query("planId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filter, filterError("Invalid planId")
		}
		filter.PlanID = &id
	}
	if raw := c.Query("payerId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filter, filterError("Invalid payerId")
		}
		filter.PayerID = &id
	}
	if raw := c.Query("category"); raw != "" {
		category := models.ExpenseCategory(strings.ToUpper(raw))
		if !category.Valid() {
			return filter, filterError("Invalid category: " + raw)
		}
		filter.Category = &category
	}
	if raw := c.Query("splitType"); raw != "" {
		splitType := models.SplitType(strings.ToUpper(raw))
		if !splitType.Valid() {
			return filter, filterError("Invalid splitType: " + raw)
		}
		filter.SplitType = &splitType
	}
	if raw := c.Query("from"); raw != "" {
		from, _, err := parseQueryDate(raw)
		if err != nil {
			return filter, filterError("Invalid from date")
		}
		filter.From = &from
	}
	if raw := c.Query("to"); raw != "" {
		to, dateOnly, err := parseQueryDate(raw)
		if err != nil {
			return filter, filterError("Invalid to date")
		}
		if dateOnly {
			to = to.Add(24*time.Hour - time.Nanosecond)
		}
		filter.To = &to
	}
	filter.SearchTerm = strings.TrimSpace(c.Query("search"))

	return filter, nil
}

func parseQueryDate(raw string) (time.Time, bool, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, false, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	return t, true, err
}
