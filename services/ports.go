package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tripplanner-backend/models"
)

const (
	CapabilityViewPlan      = "plan:view"
	CapabilityCreateExpense = "expense:create"
	CapabilityManageExpense = "expense:manage"
)

// MembershipCapabilities is the capability port's answer for one actor on
// one plan. Member is nil when the actor has no membership row.
type MembershipCapabilities struct {
	Member       *models.PlanMember
	Capabilities []string
}

func (mc *MembershipCapabilities) Has(capability string) bool {
	for _, c := range mc.Capabilities {
		if c == capability {
			return true
		}
	}
	return false
}

// CapabilityPort resolves plan roles and permissions, owned by the
// membership module.
type CapabilityPort interface {
	GetMembershipAndCapabilities(ctx context.Context, actor models.Actor, planID uuid.UUID) (*MembershipCapabilities, error)
	// AssertCapability returns a FORBIDDEN error carrying message when the
	// actor lacks the capability.
	AssertCapability(ctx context.Context, actor models.Actor, planID uuid.UUID, capability, message string) error
}

type PlanLookup interface {
	// GetPlan returns ErrNotFound for an unknown plan.
	GetPlan(ctx context.Context, planID uuid.UUID) (*models.Plan, error)
}

type MembershipLookup interface {
	JoinedMembers(ctx context.Context, planID uuid.UUID) ([]models.PlanMember, error)
	IsJoinedMember(ctx context.Context, planID, userID uuid.UUID) (bool, error)
}

type UserDirectory interface {
	UserNames(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]string, error)
}

// Notifier delivers events out of band. Implementations must not block the
// caller and must swallow their own failures.
type Notifier interface {
	NotifyPlanMembers(ctx context.Context, planID, excludeUserID uuid.UUID, event models.NotificationEvent)
	NotifyUser(ctx context.Context, userID uuid.UUID, event models.NotificationEvent)
}

type SummaryCache interface {
	Get(ctx context.Context, planID uuid.UUID) (*models.ExpenseSummary, bool, error)
	Set(ctx context.Context, planID uuid.UUID, summary *models.ExpenseSummary) error
	Invalidate(ctx context.Context, planID uuid.UUID) error
}

// ExpenseRepository persists expenses, participants and activity rows.
type ExpenseRepository interface {
	// Transaction runs fn against a repository bound to a single database
	// transaction. Returning an error rolls everything back.
	Transaction(ctx context.Context, fn func(tx ExpenseRepository) error) error

	CreateExpense(ctx context.Context, expense *models.Expense) error
	// GetExpense loads the expense with its participants, or ErrNotFound.
	GetExpense(ctx context.Context, expenseID uuid.UUID) (*models.Expense, error)
	ListExpenses(ctx context.Context, filter models.ExpenseFilter, offset, limit int) ([]models.Expense, int64, error)
	// PlanExpenses loads every expense of a plan with participants, ordered
	// by expense date then creation time.
	PlanExpenses(ctx context.Context, planID uuid.UUID) ([]models.Expense, error)
	SaveExpense(ctx context.Context, expense *models.Expense) error
	DeleteExpense(ctx context.Context, expenseID uuid.UUID) error

	UpdateParticipantAmount(ctx context.Context, participantID uuid.UUID, amount decimal.Decimal) error
	ReplaceParticipants(ctx context.Context, expenseID uuid.UUID, participants []models.ExpenseParticipant) error
	// MarkParticipantPaid flips is_paid for an unpaid participant. It
	// reports false when the row was already paid.
	MarkParticipantPaid(ctx context.Context, participantID uuid.UUID, paidAt time.Time) (bool, error)

	CreateActivity(ctx context.Context, activity *models.Activity) error
	PlanActivity(ctx context.Context, planID uuid.UUID, offset, limit int) ([]models.Activity, error)
}
