package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tripplanner-backend/models"
	"tripplanner-backend/utils"
)

// SummaryAggregator builds the plan-wide expense report: totals, category
// and payer breakdowns, settlement and budget comparison.
type SummaryAggregator struct {
	plans      PlanLookup
	gate       *AuthorizationGate
	expenses   ExpenseRepository
	settlement *SettlementEngine
	cache      SummaryCache
}

// NewSummaryAggregator wires the aggregator. cache may be nil.
func NewSummaryAggregator(plans PlanLookup, gate *AuthorizationGate, expenses ExpenseRepository, settlement *SettlementEngine, cache SummaryCache) *SummaryAggregator {
	return &SummaryAggregator{
		plans:      plans,
		gate:       gate,
		expenses:   expenses,
		settlement: settlement,
		cache:      cache,
	}
}

func (a *SummaryAggregator) GetExpenseSummary(ctx context.Context, actor models.Actor, planID uuid.UUID) (*models.ExpenseSummary, error) {
	plan, err := loadPlan(ctx, a.plans, planID)
	if err != nil {
		return nil, err
	}
	if err := a.gate.CanView(ctx, actor, plan); err != nil {
		return nil, err
	}

	if a.cache != nil {
		cached, ok, err := a.cache.Get(ctx, planID)
		switch {
		case err != nil:
			slog.Warn("Summary cache read failed", "plan_id", planID, "error", err)
		case ok:
			summaryCacheLookups.WithLabelValues("hit").Inc()
			return cached, nil
		default:
			summaryCacheLookups.WithLabelValues("miss").Inc()
		}
	}

	expenses, err := a.expenses.PlanExpenses(ctx, planID)
	if err != nil {
		return nil, fmt.Errorf("failed to load plan expenses: %w", err)
	}

	var balances []models.UserBalance
	if len(expenses) > 0 {
		balances, err = a.settlement.summarize(ctx, expenses)
		if err != nil {
			return nil, err
		}
	}

	summary := BuildExpenseSummary(plan, expenses, balances)

	if a.cache != nil {
		if err := a.cache.Set(ctx, planID, summary); err != nil {
			slog.Warn("Summary cache write failed", "plan_id", planID, "error", err)
		}
	}
	return summary, nil
}

// BuildExpenseSummary aggregates already-loaded expenses. With no expenses
// the summary is zeroed and percentageUsed stays null.
func BuildExpenseSummary(plan *models.Plan, expenses []models.Expense, balances []models.UserBalance) *models.ExpenseSummary {
	summary := &models.ExpenseSummary{
		PlanID:        plan.ID,
		TotalExpenses: decimal.Zero,
		Currency:      models.DefaultCurrency,
		ExpenseCount:  len(expenses),
		ByCategory:    map[models.ExpenseCategory]models.Breakdown{},
		ByPayer:       map[uuid.UUID]models.Breakdown{},
		Settlement:    []models.UserBalance{},
	}

	if len(expenses) == 0 {
		if plan.HasBudget() {
			summary.BudgetComparison = &models.BudgetComparison{
				BudgetMin:   plan.BudgetMin,
				BudgetMax:   plan.BudgetMax,
				ActualSpent: decimal.Zero,
			}
		}
		return summary
	}

	summary.Currency = expenses[0].Currency
	for _, exp := range expenses {
		summary.TotalExpenses = summary.TotalExpenses.Add(exp.Amount)

		cat := summary.ByCategory[exp.Category]
		cat.Total = cat.Total.Add(exp.Amount)
		cat.Count++
		summary.ByCategory[exp.Category] = cat

		payer := summary.ByPayer[exp.PayerID]
		payer.Total = payer.Total.Add(exp.Amount)
		payer.Count++
		summary.ByPayer[exp.PayerID] = payer
	}
	summary.TotalExpenses = utils.RoundToTwo(summary.TotalExpenses)
	if balances != nil {
		summary.Settlement = balances
	}

	if plan.HasBudget() {
		summary.BudgetComparison = compareBudget(plan, summary.TotalExpenses)
	}
	return summary
}

func compareBudget(plan *models.Plan, actual decimal.Decimal) *models.BudgetComparison {
	bc := &models.BudgetComparison{
		BudgetMin:   plan.BudgetMin,
		BudgetMax:   plan.BudgetMax,
		ActualSpent: actual,
	}
	if plan.BudgetMax != nil {
		if !plan.BudgetMax.IsZero() {
			pct := utils.RoundToTwo(actual.Div(*plan.BudgetMax).Mul(hundred))
			bc.PercentageUsed = &pct
		}
		bc.IsOverBudget = actual.GreaterThan(*plan.BudgetMax)
	}
	return bc
}
