package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UserBalance is one user's global net position across a plan.
// NetAmount = TotalOwed - TotalPaid: positive owes, negative is owed.
type UserBalance struct {
	UserID    uuid.UUID       `json:"userId"`
	UserName  string          `json:"userName"`
	TotalPaid decimal.Decimal `json:"totalPaid"`
	TotalOwed decimal.Decimal `json:"totalOwed"`
	NetAmount decimal.Decimal `json:"netAmount"`
}

type Breakdown struct {
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

type BudgetComparison struct {
	BudgetMin      *decimal.Decimal `json:"budgetMin"`
	BudgetMax      *decimal.Decimal `json:"budgetMax"`
	ActualSpent    decimal.Decimal  `json:"actualSpent"`
	PercentageUsed *decimal.Decimal `json:"percentageUsed"`
	IsOverBudget   bool             `json:"isOverBudget"`
}

type ExpenseSummary struct {
	PlanID           uuid.UUID                     `json:"planId"`
	TotalExpenses    decimal.Decimal               `json:"totalExpenses"`
	Currency         string                        `json:"currency"`
	ExpenseCount     int                           `json:"expenseCount"`
	ByCategory       map[ExpenseCategory]Breakdown `json:"byCategory"`
	ByPayer          map[uuid.UUID]Breakdown       `json:"byPayer"`
	Settlement       []UserBalance                 `json:"settlement"`
	BudgetComparison *BudgetComparison             `json:"budgetComparison,omitempty"`
}
