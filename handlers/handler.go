package handlers

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tripplanner-backend/models"
	"tripplanner-backend/services"
	"tripplanner-backend/utils"
)

// ExpenseService is the subset of services.ExpenseService the handlers use.
type ExpenseService interface {
	CreateExpense(ctx context.Context, actor models.Actor, req models.CreateExpenseRequest) (*models.Expense, error)
	GetExpense(ctx context.Context, actor models.Actor, expenseID uuid.UUID) (*models.Expense, error)
	GetExpenses(ctx context.Context, actor models.Actor, filter models.ExpenseFilter, page utils.PaginationQuery) (*models.ExpensePage, error)
	UpdateExpense(ctx context.Context, actor models.Actor, expenseID uuid.UUID, patch models.UpdateExpenseRequest) (*models.Expense, error)
	DeleteExpense(ctx context.Context, actor models.Actor, expenseID uuid.UUID) error
	SettleExpense(ctx context.Context, actor models.Actor, expenseID, participantID uuid.UUID) (*models.ExpenseParticipant, error)
	GetPlanActivity(ctx context.Context, actor models.Actor, planID uuid.UUID, page utils.PaginationQuery) ([]models.Activity, error)
}

type SummaryService interface {
	GetExpenseSummary(ctx context.Context, actor models.Actor, planID uuid.UUID) (*models.ExpenseSummary, error)
}

type Handler struct {
	expenses  ExpenseService
	summaries SummaryService
}

func New(expenses ExpenseService, summaries SummaryService) *Handler {
	return &Handler{expenses: expenses, summaries: summaries}
}

// Register mounts the expense routes on an authenticated group.
func (h *Handler) Register(api *gin.RouterGroup) {
	api.POST("/expenses", h.CreateExpense)
	api.GET("/expenses", h.GetExpenses)
	api.GET("/expenses/:id", h.GetExpense)
	api.PATCH("/expenses/:id", h.UpdateExpense)
	api.DELETE("/expenses/:id", h.DeleteExpense)
	api.POST("/expenses/:id/participants/:participantId/settle", h.SettleExpense)

	api.GET("/plans/:id/expenses/summary", h.GetExpenseSummary)
	api.GET("/plans/:id/activity", h.GetPlanActivity)
}

func currentActor(c *gin.Context) (models.Actor, bool) {
	actor, ok := utils.GetCurrentActor(c)
	if !ok {
		utils.Unauthorized(c, "Authentication required")
	}
	return actor, ok
}

func uuidParam(c *gin.Context, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		utils.BadRequest(c, "Invalid "+label+" ID")
		return uuid.Nil, false
	}
	return id, true
}

// respondError maps service error kinds onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	var svcErr *services.Error
	if !errors.As(err, &svcErr) {
		slog.Error("Request failed", "path", c.FullPath(), "error", err)
		utils.InternalError(c, "Internal server error")
		return
	}

	switch svcErr.Kind {
	case services.KindNotFound:
		utils.NotFound(c, svcErr.Message)
	case services.KindForbidden:
		utils.Forbidden(c, svcErr.Message)
	default:
		utils.BadRequest(c, svcErr.Message)
	}
}
