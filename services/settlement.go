package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tripplanner-backend/models"
	"tripplanner-backend/utils"
)

// SettlementEngine computes each user's global net position on a plan. It
// does not pair debtors with creditors.
type SettlementEngine struct {
	expenses ExpenseRepository
	users    UserDirectory
}

func NewSettlementEngine(expenses ExpenseRepository, users UserDirectory) *SettlementEngine {
	return &SettlementEngine{expenses: expenses, users: users}
}

// CalculateSettlementSummary loads every expense of the plan and nets them.
func (e *SettlementEngine) CalculateSettlementSummary(ctx context.Context, planID uuid.UUID) ([]models.UserBalance, error) {
	expenses, err := e.expenses.PlanExpenses(ctx, planID)
	if err != nil {
		return nil, fmt.Errorf("failed to load plan expenses: %w", err)
	}
	return e.summarize(ctx, expenses)
}

func (e *SettlementEngine) summarize(ctx context.Context, expenses []models.Expense) ([]models.UserBalance, error) {
	names, err := e.users.UserNames(ctx, involvedUsers(expenses))
	if err != nil {
		return nil, fmt.Errorf("failed to load user names: %w", err)
	}
	return ComputeSettlement(expenses, names), nil
}

// ComputeSettlement credits each payer with the full expense amount and
// charges each participant row (the payer included, when listed) with its
// share. NetAmount = owed - paid.
func ComputeSettlement(expenses []models.Expense, names map[uuid.UUID]string) []models.UserBalance {
	balances := make(map[uuid.UUID]*models.UserBalance)
	get := func(userID uuid.UUID) *models.UserBalance {
		b, ok := balances[userID]
		if !ok {
			b = &models.UserBalance{
				UserID:    userID,
				UserName:  names[userID],
				TotalPaid: decimal.Zero,
				TotalOwed: decimal.Zero,
			}
			balances[userID] = b
		}
		return b
	}

	for _, exp := range expenses {
		payer := get(exp.PayerID)
		payer.TotalPaid = payer.TotalPaid.Add(exp.Amount)

		for _, p := range exp.Participants {
			owed := get(p.UserID)
			owed.TotalOwed = owed.TotalOwed.Add(p.Amount)
		}
	}

	result := make([]models.UserBalance, 0, len(balances))
	for _, b := range balances {
		b.TotalPaid = utils.RoundToTwo(b.TotalPaid)
		b.TotalOwed = utils.RoundToTwo(b.TotalOwed)
		b.NetAmount = utils.RoundToTwo(b.TotalOwed.Sub(b.TotalPaid))
		result = append(result, *b)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].UserName != result[j].UserName {
			return result[i].UserName < result[j].UserName
		}
		return result[i].UserID.String() < result[j].UserID.String()
	})
	return result
}

func involvedUsers(expenses []models.Expense) []uuid.UUID {
	seen := make(map[uuid.UUID]bool)
	var ids []uuid.UUID
	add := func(id uuid.UUID) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, exp := range expenses {
		add(exp.PayerID)
		for _, p := range exp.Participants {
			add(p.UserID)
		}
	}
	return ids
}
