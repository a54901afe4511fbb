package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripplanner-backend/models"
)

func TestBuildExpenseSummaryEmpty(t *testing.T) {
	plan := &models.Plan{BudgetMax: decPtr("1000")}

	summary := BuildExpenseSummary(plan, nil, nil)

	assert.True(t, summary.TotalExpenses.IsZero())
	assert.Equal(t, models.DefaultCurrency, summary.Currency)
	assert.Zero(t, summary.ExpenseCount)
	assert.Empty(t, summary.ByCategory)
	assert.Empty(t, summary.ByPayer)
	assert.NotNil(t, summary.Settlement)
	assert.Empty(t, summary.Settlement)
	require.NotNil(t, summary.BudgetComparison)
	assert.Nil(t, summary.BudgetComparison.PercentageUsed)
	assert.False(t, summary.BudgetComparison.IsOverBudget)
}

func TestBuildExpenseSummaryWithoutBudget(t *testing.T) {
	summary := BuildExpenseSummary(&models.Plan{}, nil, nil)
	assert.Nil(t, summary.BudgetComparison)
}

func TestCompareBudget(t *testing.T) {
	tests := []struct {
		name        string
		min, max    string
		actual      string
		wantPct     string
		wantOver    bool
		wantNullPct bool
	}{
		{name: "over budget", max: "1000", actual: "1200", wantPct: "120", wantOver: true},
		{name: "under budget", max: "1000", actual: "250", wantPct: "25"},
		{name: "exactly at budget", max: "1000", actual: "1000", wantPct: "100"},
		{name: "zero max", max: "0", actual: "10", wantNullPct: true, wantOver: true},
		{name: "min only", min: "100", actual: "50", wantNullPct: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := &models.Plan{}
			if tt.min != "" {
				plan.BudgetMin = decPtr(tt.min)
			}
			if tt.max != "" {
				plan.BudgetMax = decPtr(tt.max)
			}

			got := compareBudget(plan, dec(tt.actual))
			assert.Equal(t, tt.wantOver, got.IsOverBudget)
			if tt.wantNullPct {
				assert.Nil(t, got.PercentageUsed)
				return
			}
			require.NotNil(t, got.PercentageUsed)
			assert.True(t, dec(tt.wantPct).Equal(*got.PercentageUsed), "got %s", got.PercentageUsed)
		})
	}
}

func TestGetExpenseSummary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.plan.BudgetMax = decPtr("1000")

	create := func(payer uuid.UUID, amount string, category models.ExpenseCategory) {
		t.Helper()
		_, err := f.expenses.CreateExpense(ctx, actorFor(payer), models.CreateExpenseRequest{
			PlanID:      f.plan.ID,
			PayerID:     payer,
			Amount:      dec(amount),
			Currency:    "eur",
			Category:    category,
			ExpenseDate: "2026-06-03",
			SplitType:   models.SplitEqual,
		})
		require.NoError(t, err)
	}
	create(f.alice, "600", models.CategoryAccommodation)
	create(f.bob, "450", models.CategoryFood)
	create(f.alice, "150", models.CategoryFood)

	summary, err := f.summaries.GetExpenseSummary(ctx, actorFor(f.bob), f.plan.ID)
	require.NoError(t, err)

	assert.True(t, dec("1200").Equal(summary.TotalExpenses))
	assert.Equal(t, "EUR", summary.Currency)
	assert.Equal(t, 3, summary.ExpenseCount)

	food := summary.ByCategory[models.CategoryFood]
	assert.True(t, dec("600").Equal(food.Total))
	assert.Equal(t, 2, food.Count)
	assert.Equal(t, 1, summary.ByCategory[models.CategoryAccommodation].Count)

	assert.True(t, dec("750").Equal(summary.ByPayer[f.alice].Total))
	assert.Equal(t, 2, summary.ByPayer[f.alice].Count)
	assert.True(t, dec("450").Equal(summary.ByPayer[f.bob].Total))

	require.Len(t, summary.Settlement, 3)
	// Each of the three joined members owes 400; alice paid 750, bob 450.
	assert.True(t, dec("-350").Equal(balanceFor(t, summary.Settlement, f.alice).NetAmount))
	assert.True(t, dec("-50").Equal(balanceFor(t, summary.Settlement, f.bob).NetAmount))
	assert.True(t, dec("400").Equal(balanceFor(t, summary.Settlement, f.owner).NetAmount))

	require.NotNil(t, summary.BudgetComparison)
	require.NotNil(t, summary.BudgetComparison.PercentageUsed)
	assert.True(t, dec("120").Equal(*summary.BudgetComparison.PercentageUsed))
	assert.True(t, summary.BudgetComparison.IsOverBudget)
}

func TestGetExpenseSummaryAccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.summaries.GetExpenseSummary(ctx, actorFor(f.outsider), f.plan.ID)
	assert.Equal(t, KindForbidden, KindOf(err))

	_, err = f.summaries.GetExpenseSummary(ctx, actorFor(f.carol), f.plan.ID)
	assert.Equal(t, KindForbidden, KindOf(err), "invited members cannot view")

	_, err = f.summaries.GetExpenseSummary(ctx, models.Actor{UserID: f.outsider, Role: models.RoleAdmin}, f.plan.ID)
	assert.NoError(t, err)

	_, err = f.summaries.GetExpenseSummary(ctx, actorFor(f.alice), uuid.New())
	assert.Equal(t, KindNotFound, KindOf(err))

	f.plan.Visibility = models.VisibilityPublic
	_, err = f.summaries.GetExpenseSummary(ctx, actorFor(f.outsider), f.plan.ID)
	assert.NoError(t, err)
}

func TestGetExpenseSummaryCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.summaries.GetExpenseSummary(ctx, actorFor(f.alice), f.plan.ID)
	require.NoError(t, err)
	assert.Zero(t, first.ExpenseCount)
	assert.Contains(t, f.cache.entries, f.plan.ID)

	_, err = f.expenses.CreateExpense(ctx, actorFor(f.alice), models.CreateExpenseRequest{
		PlanID:      f.plan.ID,
		PayerID:     f.alice,
		Amount:      dec("9"),
		Category:    models.CategoryTransport,
		ExpenseDate: "2026-06-01",
		SplitType:   models.SplitEqual,
	})
	require.NoError(t, err)
	assert.NotContains(t, f.cache.entries, f.plan.ID, "writes invalidate the cached summary")

	second, err := f.summaries.GetExpenseSummary(ctx, actorFor(f.alice), f.plan.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, second.ExpenseCount)

	cached, err := f.summaries.GetExpenseSummary(ctx, actorFor(f.alice), f.plan.ID)
	require.NoError(t, err)
	assert.Same(t, second, cached)
}

func TestGetExpenseSummaryCacheFailure(t *testing.T) {
	f := newFixture(t)
	f.cache.failGet = true

	summary, err := f.summaries.GetExpenseSummary(context.Background(), actorFor(f.alice), f.plan.ID)
	require.NoError(t, err)
	assert.Zero(t, summary.ExpenseCount)
}
