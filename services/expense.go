package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tripplanner-backend/models"
	"tripplanner-backend/utils"
)

const cacheTimeout = 5 * time.Second

// ExpenseDeps are the collaborators of ExpenseService. Cache may be nil.
type ExpenseDeps struct {
	Repo     ExpenseRepository
	Plans    PlanLookup
	Members  MembershipLookup
	Users    UserDirectory
	Gate     *AuthorizationGate
	Notifier Notifier
	Cache    SummaryCache
}

// ExpenseService drives the expense lifecycle: create, read, update,
// delete and settle.
type ExpenseService struct {
	repo     ExpenseRepository
	plans    PlanLookup
	members  MembershipLookup
	users    UserDirectory
	gate     *AuthorizationGate
	notifier Notifier
	cache    SummaryCache
	now      func() time.Time
}

func NewExpenseService(deps ExpenseDeps) *ExpenseService {
	return &ExpenseService{
		repo:     deps.Repo,
		plans:    deps.Plans,
		members:  deps.Members,
		users:    deps.Users,
		gate:     deps.Gate,
		notifier: deps.Notifier,
		cache:    deps.Cache,
		now:      time.Now,
	}
}

func (s *ExpenseService) CreateExpense(ctx context.Context, actor models.Actor, req models.CreateExpenseRequest) (*models.Expense, error) {
	plan, err := loadPlan(ctx, s.plans, req.PlanID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.CanCreate(ctx, actor, plan); err != nil {
		return nil, err
	}
	if err := s.requireJoined(ctx, plan.ID, req.PayerID, "Payer"); err != nil {
		return nil, err
	}
	amount, err := validateAmount(req.Amount)
	if err != nil {
		return nil, err
	}
	if !req.Category.Valid() {
		return nil, BadRequest("Invalid category: %s", req.Category)
	}
	if !req.SplitType.Valid() {
		return nil, BadRequest("Invalid split type: %s", req.SplitType)
	}
	expenseDate, err := validateExpenseDate(plan, req.ExpenseDate)
	if err != nil {
		return nil, err
	}

	currency := models.DefaultCurrency
	if strings.TrimSpace(req.Currency) != "" {
		if currency, err = normalizeCurrency(req.Currency); err != nil {
			return nil, err
		}
	}

	participants, err := s.buildParticipants(ctx, plan.ID, amount, req.SplitType, req.Participants)
	if err != nil {
		return nil, err
	}

	expense := &models.Expense{
		PlanID:       plan.ID,
		PayerID:      req.PayerID,
		Amount:       amount,
		Currency:     currency,
		Category:     req.Category,
		Description:  req.Description,
		ExpenseDate:  expenseDate,
		SplitType:    req.SplitType,
		LocationID:   req.LocationID,
		Participants: participants,
	}

	err = s.repo.Transaction(ctx, func(tx ExpenseRepository) error {
		if err := tx.CreateExpense(ctx, expense); err != nil {
			return err
		}
		return tx.CreateActivity(ctx, &models.Activity{
			PlanID:      plan.ID,
			UserID:      actor.UserID,
			Type:        models.ActivityExpenseAdded,
			ReferenceID: expense.ID,
			Description: fmt.Sprintf("Added \"%s\" (%s %s)", describe(expense), expense.Currency, expense.Amount.StringFixed(2)),
		})
	})
	if err != nil {
		slog.Error("CreateExpense failed", "plan_id", plan.ID, "error", err)
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}

	expensesCreated.WithLabelValues(string(expense.SplitType)).Inc()
	slog.Info("Expense created",
		"expense_id", expense.ID,
		"plan_id", plan.ID,
		"split_type", expense.SplitType,
		"participants", len(expense.Participants),
	)

	s.invalidateSummary(ctx, plan.ID)
	s.notifier.NotifyPlanMembers(ctx, plan.ID, actor.UserID, models.NotificationEvent{
		Type:      models.NotificationExpenseCreated,
		PlanID:    plan.ID,
		ExpenseID: expense.ID,
		ActorID:   actor.UserID,
		Title:     fmt.Sprintf("New expense in %s", plan.Title),
		Body:      fmt.Sprintf("\"%s\" for %s %s was added", describe(expense), expense.Currency, expense.Amount.StringFixed(2)),
	})

	s.attachNames(ctx, expense)
	return expense, nil
}

func (s *ExpenseService) GetExpense(ctx context.Context, actor models.Actor, expenseID uuid.UUID) (*models.Expense, error) {
	expense, err := loadExpense(ctx, s.repo, expenseID)
	if err != nil {
		return nil, err
	}
	plan, err := loadPlan(ctx, s.plans, expense.PlanID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.CanView(ctx, actor, plan); err != nil {
		return nil, err
	}

	s.attachNames(ctx, expense)
	return expense, nil
}

// GetExpenses lists expenses matching filter. Without a plan filter the
// result is limited to plans the actor can see.
func (s *ExpenseService) GetExpenses(ctx context.Context, actor models.Actor, filter models.ExpenseFilter, page utils.PaginationQuery) (*models.ExpensePage, error) {
	page.Normalize()

	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return nil, BadRequest("Date range start must not be after its end")
	}

	filter.VisibleTo = nil
	if filter.PlanID != nil {
		plan, err := loadPlan(ctx, s.plans, *filter.PlanID)
		if err != nil {
			return nil, err
		}
		if err := s.gate.CanView(ctx, actor, plan); err != nil {
			return nil, err
		}
	} else if !actor.IsAdmin() {
		filter.VisibleTo = &actor.UserID
	}

	items, total, err := s.repo.ListExpenses(ctx, filter, page.Offset(), page.Limit)
	if err != nil {
		slog.Error("GetExpenses failed", "error", err)
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}

	ptrs := make([]*models.Expense, len(items))
	for i := range items {
		ptrs[i] = &items[i]
	}
	s.attachNames(ctx, ptrs...)

	totalPages := int((total + int64(page.Limit) - 1) / int64(page.Limit))
	return &models.ExpensePage{
		Items: items,
		Meta: models.PageMeta{
			Total:      total,
			Page:       page.Page,
			Limit:      page.Limit,
			TotalPages: totalPages,
		},
	}, nil
}

// UpdateExpense applies patch. When the amount changes, EQUAL shares are
// recomputed, PERCENTAGE shares are rescaled from their implied
// percentage, and CUSTOM shares are kept as they are.
func (s *ExpenseService) UpdateExpense(ctx context.Context, actor models.Actor, expenseID uuid.UUID, patch models.UpdateExpenseRequest) (*models.Expense, error) {
	expense, err := loadExpense(ctx, s.repo, expenseID)
	if err != nil {
		return nil, err
	}
	plan, err := loadPlan(ctx, s.plans, expense.PlanID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.CanModify(ctx, actor, plan, expense); err != nil {
		return nil, err
	}

	// Reject bad patches before opening a transaction.
	scratch := *expense
	if err := applyPatch(plan, &scratch, patch); err != nil {
		return nil, err
	}
	if patch.PayerID != nil {
		if err := s.requireJoined(ctx, plan.ID, *patch.PayerID, "Payer"); err != nil {
			return nil, err
		}
	}
	if len(patch.Participants) > 0 {
		if err := s.requireAllJoined(ctx, plan.ID, patch.Participants); err != nil {
			return nil, err
		}
	}

	var updated *models.Expense
	err = s.repo.Transaction(ctx, func(tx ExpenseRepository) error {
		// The patch is applied to the row read under lock, so fields it
		// does not touch keep their committed values.
		current, err := tx.GetExpense(ctx, expenseID)
		if err != nil {
			return err
		}
		if err := s.gate.CanModify(ctx, actor, plan, current); err != nil {
			return err
		}
		oldAmount := current.Amount
		existing := current.Participants
		if err := applyPatch(plan, current, patch); err != nil {
			return err
		}

		if err := tx.SaveExpense(ctx, current); err != nil {
			return err
		}

		var participants []models.ExpenseParticipant
		switch {
		case len(patch.Participants) > 0:
			participants = mergeCustomParticipants(expenseID, existing, patch.Participants)
			if err := tx.ReplaceParticipants(ctx, expenseID, participants); err != nil {
				return err
			}
		case !oldAmount.Equal(current.Amount):
			participants, err = recomputeShares(current.SplitType, existing, oldAmount, current.Amount)
			if err != nil {
				return err
			}
			if current.SplitType != models.SplitCustom {
				for _, p := range participants {
					if err := tx.UpdateParticipantAmount(ctx, p.ID, p.Amount); err != nil {
						return err
					}
				}
			}
		default:
			participants = existing
		}
		current.Participants = participants

		if err := tx.CreateActivity(ctx, &models.Activity{
			PlanID:      plan.ID,
			UserID:      actor.UserID,
			Type:        models.ActivityExpenseUpdated,
			ReferenceID: current.ID,
			Description: fmt.Sprintf("Updated \"%s\"", describe(current)),
		}); err != nil {
			return err
		}
		updated = current
		return nil
	})
	if err != nil {
		if KindOf(err) != "" {
			return nil, err
		}
		if errors.Is(err, ErrNotFound) {
			return nil, NotFound("Expense not found")
		}
		slog.Error("UpdateExpense failed", "expense_id", expenseID, "error", err)
		return nil, fmt.Errorf("failed to update expense: %w", err)
	}

	slog.Info("Expense updated", "expense_id", updated.ID, "plan_id", plan.ID)

	s.invalidateSummary(ctx, plan.ID)
	s.notifier.NotifyPlanMembers(ctx, plan.ID, actor.UserID, models.NotificationEvent{
		Type:      models.NotificationExpenseUpdated,
		PlanID:    plan.ID,
		ExpenseID: updated.ID,
		ActorID:   actor.UserID,
		Title:     fmt.Sprintf("Expense updated in %s", plan.Title),
		Body:      fmt.Sprintf("\"%s\" is now %s %s", describe(updated), updated.Currency, updated.Amount.StringFixed(2)),
	})

	s.attachNames(ctx, updated)
	return updated, nil
}

// applyPatch copies the non-nil patch fields onto e, validating each one.
// Replacement participants must add up to the resulting amount.
func applyPatch(plan *models.Plan, e *models.Expense, patch models.UpdateExpenseRequest) error {
	if patch.PayerID != nil {
		e.PayerID = *patch.PayerID
	}
	if patch.Amount != nil {
		amount, err := validateAmount(*patch.Amount)
		if err != nil {
			return err
		}
		e.Amount = amount
	}
	if patch.Currency != nil {
		currency, err := normalizeCurrency(*patch.Currency)
		if err != nil {
			return err
		}
		e.Currency = currency
	}
	if patch.Category != nil {
		if !patch.Category.Valid() {
			return BadRequest("Invalid category: %s", *patch.Category)
		}
		e.Category = *patch.Category
	}
	if patch.Description != nil {
		e.Description = *patch.Description
	}
	if patch.ExpenseDate != nil {
		expenseDate, err := validateExpenseDate(plan, *patch.ExpenseDate)
		if err != nil {
			return err
		}
		e.ExpenseDate = expenseDate
	}
	if patch.LocationID != nil {
		e.LocationID = patch.LocationID
	}
	if len(patch.Participants) > 0 {
		if e.SplitType != models.SplitCustom {
			return BadRequest("Participants can only be replaced on %s split expenses", models.SplitCustom)
		}
		if err := ValidateCustomSplit(e.Amount, patch.Participants); err != nil {
			return err
		}
	}
	return nil
}

func (s *ExpenseService) DeleteExpense(ctx context.Context, actor models.Actor, expenseID uuid.UUID) error {
	expense, err := loadExpense(ctx, s.repo, expenseID)
	if err != nil {
		return err
	}
	plan, err := loadPlan(ctx, s.plans, expense.PlanID)
	if err != nil {
		return err
	}
	if err := s.gate.CanModify(ctx, actor, plan, expense); err != nil {
		return err
	}

	err = s.repo.Transaction(ctx, func(tx ExpenseRepository) error {
		if err := tx.DeleteExpense(ctx, expenseID); err != nil {
			return err
		}
		return tx.CreateActivity(ctx, &models.Activity{
			PlanID:      plan.ID,
			UserID:      actor.UserID,
			Type:        models.ActivityExpenseDeleted,
			ReferenceID: expense.ID,
			Description: fmt.Sprintf("Deleted \"%s\" (%s %s)", describe(expense), expense.Currency, expense.Amount.StringFixed(2)),
		})
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return NotFound("Expense not found")
		}
		slog.Error("DeleteExpense failed", "expense_id", expenseID, "error", err)
		return fmt.Errorf("failed to delete expense: %w", err)
	}

	expensesDeleted.Inc()
	slog.Info("Expense deleted", "expense_id", expenseID, "plan_id", plan.ID)

	s.invalidateSummary(ctx, plan.ID)
	s.notifier.NotifyPlanMembers(ctx, plan.ID, actor.UserID, models.NotificationEvent{
		Type:      models.NotificationExpenseDeleted,
		PlanID:    plan.ID,
		ExpenseID: expense.ID,
		ActorID:   actor.UserID,
		Title:     fmt.Sprintf("Expense removed from %s", plan.Title),
		Body:      fmt.Sprintf("\"%s\" (%s %s) was deleted", describe(expense), expense.Currency, expense.Amount.StringFixed(2)),
	})
	return nil
}

// SettleExpense marks one participant's share as paid. Settling twice is
// an error, including when a concurrent settle wins the race.
func (s *ExpenseService) SettleExpense(ctx context.Context, actor models.Actor, expenseID, participantID uuid.UUID) (*models.ExpenseParticipant, error) {
	expense, err := loadExpense(ctx, s.repo, expenseID)
	if err != nil {
		return nil, err
	}
	participant := expense.Participant(participantID)
	if participant == nil {
		return nil, NotFound("Participant not found")
	}
	plan, err := loadPlan(ctx, s.plans, expense.PlanID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.CanSettle(ctx, actor, plan, participant); err != nil {
		return nil, err
	}
	if participant.IsPaid {
		return nil, errAlreadySettled()
	}

	paidAt := s.now().UTC()
	err = s.repo.Transaction(ctx, func(tx ExpenseRepository) error {
		updated, err := tx.MarkParticipantPaid(ctx, participant.ID, paidAt)
		if err != nil {
			return err
		}
		if !updated {
			return errAlreadySettled()
		}
		return tx.CreateActivity(ctx, &models.Activity{
			PlanID:      plan.ID,
			UserID:      actor.UserID,
			Type:        models.ActivityExpenseSettled,
			ReferenceID: expense.ID,
			Description: fmt.Sprintf("Settled %s %s of \"%s\"", expense.Currency, participant.Amount.StringFixed(2), describe(expense)),
		})
	})
	if err != nil {
		if KindOf(err) != "" {
			return nil, err
		}
		slog.Error("SettleExpense failed", "expense_id", expenseID, "participant_id", participantID, "error", err)
		return nil, fmt.Errorf("failed to settle expense: %w", err)
	}

	participant.IsPaid = true
	participant.PaidAt = &paidAt
	participantsSettled.Inc()
	slog.Info("Participant settled", "expense_id", expenseID, "participant_id", participantID)

	s.invalidateSummary(ctx, plan.ID)
	if actor.UserID != expense.PayerID {
		s.notifier.NotifyUser(ctx, expense.PayerID, models.NotificationEvent{
			Type:      models.NotificationExpenseSettled,
			PlanID:    plan.ID,
			ExpenseID: expense.ID,
			ActorID:   actor.UserID,
			Title:     "A share was settled",
			Body:      fmt.Sprintf("%s %s of \"%s\" was marked as paid", expense.Currency, participant.Amount.StringFixed(2), describe(expense)),
		})
	}

	s.attachNames(ctx, expense)
	settled := *expense.Participant(participantID)
	return &settled, nil
}

// GetPlanActivity returns the plan's activity feed, newest first.
func (s *ExpenseService) GetPlanActivity(ctx context.Context, actor models.Actor, planID uuid.UUID, page utils.PaginationQuery) ([]models.Activity, error) {
	page.Normalize()

	plan, err := loadPlan(ctx, s.plans, planID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.CanView(ctx, actor, plan); err != nil {
		return nil, err
	}

	activities, err := s.repo.PlanActivity(ctx, planID, page.Offset(), page.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load activity: %w", err)
	}
	return activities, nil
}

func (s *ExpenseService) buildParticipants(ctx context.Context, planID uuid.UUID, amount decimal.Decimal, splitType models.SplitType, inputs []models.SplitInput) ([]models.ExpenseParticipant, error) {
	switch splitType {
	case models.SplitEqual:
		members, err := s.members.JoinedMembers(ctx, planID)
		if err != nil {
			return nil, fmt.Errorf("failed to load plan members: %w", err)
		}
		if len(members) == 0 {
			return nil, BadRequest("Plan has no joined members to split between")
		}
		share, err := CalculateEqualSplit(amount, len(members))
		if err != nil {
			return nil, err
		}
		participants := make([]models.ExpenseParticipant, len(members))
		for i, m := range members {
			participants[i] = models.ExpenseParticipant{UserID: m.UserID, Amount: share}
		}
		return participants, nil

	case models.SplitCustom:
		if err := ValidateCustomSplit(amount, inputs); err != nil {
			return nil, err
		}
		if err := s.requireAllJoined(ctx, planID, inputs); err != nil {
			return nil, err
		}
		participants := make([]models.ExpenseParticipant, len(inputs))
		for i, in := range inputs {
			participants[i] = models.ExpenseParticipant{UserID: in.UserID, Amount: utils.RoundToTwo(*in.Amount)}
		}
		return participants, nil

	case models.SplitPercentage:
		if err := ValidatePercentageSplit(inputs); err != nil {
			return nil, err
		}
		if err := s.requireAllJoined(ctx, planID, inputs); err != nil {
			return nil, err
		}
		participants := make([]models.ExpenseParticipant, len(inputs))
		for i, in := range inputs {
			participants[i] = models.ExpenseParticipant{UserID: in.UserID, Amount: PercentageToAmount(amount, *in.Percentage)}
		}
		return participants, nil
	}
	return nil, BadRequest("Invalid split type: %s", splitType)
}

// recomputeShares returns the participant set for a new expense total.
// CUSTOM shares are returned unchanged.
func recomputeShares(splitType models.SplitType, participants []models.ExpenseParticipant, oldTotal, newTotal decimal.Decimal) ([]models.ExpenseParticipant, error) {
	out := make([]models.ExpenseParticipant, len(participants))
	copy(out, participants)

	switch splitType {
	case models.SplitEqual:
		share, err := CalculateEqualSplit(newTotal, len(out))
		if err != nil {
			return nil, err
		}
		for i := range out {
			out[i].Amount = share
		}
	case models.SplitPercentage:
		for i := range out {
			out[i].Amount = rescalePercentageShare(out[i].Amount, oldTotal, newTotal)
		}
	}
	return out, nil
}

// mergeCustomParticipants builds the replacement participant set, carrying
// over paid state for users that stay on the expense.
func mergeCustomParticipants(expenseID uuid.UUID, existing []models.ExpenseParticipant, inputs []models.SplitInput) []models.ExpenseParticipant {
	byUser := make(map[uuid.UUID]models.ExpenseParticipant, len(existing))
	for _, p := range existing {
		byUser[p.UserID] = p
	}

	out := make([]models.ExpenseParticipant, len(inputs))
	for i, in := range inputs {
		p := models.ExpenseParticipant{
			ExpenseID: expenseID,
			UserID:    in.UserID,
			Amount:    utils.RoundToTwo(*in.Amount),
		}
		if prev, ok := byUser[in.UserID]; ok {
			p.ID = prev.ID
			p.IsPaid = prev.IsPaid
			p.PaidAt = prev.PaidAt
			p.CreatedAt = prev.CreatedAt
		}
		out[i] = p
	}
	return out
}

func (s *ExpenseService) requireJoined(ctx context.Context, planID, userID uuid.UUID, who string) error {
	ok, err := s.members.IsJoinedMember(ctx, planID, userID)
	if err != nil {
		return fmt.Errorf("failed to check plan membership: %w", err)
	}
	if !ok {
		return BadRequest("%s %s is not a joined member of this plan", who, userID)
	}
	return nil
}

func (s *ExpenseService) requireAllJoined(ctx context.Context, planID uuid.UUID, inputs []models.SplitInput) error {
	members, err := s.members.JoinedMembers(ctx, planID)
	if err != nil {
		return fmt.Errorf("failed to load plan members: %w", err)
	}
	joined := make(map[uuid.UUID]bool, len(members))
	for _, m := range members {
		joined[m.UserID] = true
	}
	for _, in := range inputs {
		if !joined[in.UserID] {
			return BadRequest("Participant %s is not a joined member of this plan", in.UserID)
		}
	}
	return nil
}

func (s *ExpenseService) invalidateSummary(ctx context.Context, planID uuid.UUID) {
	if s.cache == nil {
		return
	}
	// The write has committed; a cancelled request must not leave a stale
	// summary behind.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cacheTimeout)
	defer cancel()
	if err := s.cache.Invalidate(ctx, planID); err != nil {
		slog.Warn("Summary cache invalidation failed", "plan_id", planID, "error", err)
	}
}

// attachNames fills payer and participant display names. Missing names are
// not an error.
func (s *ExpenseService) attachNames(ctx context.Context, expenses ...*models.Expense) {
	if len(expenses) == 0 {
		return
	}
	var ids []uuid.UUID
	for _, e := range expenses {
		ids = append(ids, e.PayerID)
		for _, p := range e.Participants {
			ids = append(ids, p.UserID)
		}
	}
	names, err := s.users.UserNames(ctx, ids)
	if err != nil {
		slog.Warn("Failed to load user names", "error", err)
		return
	}
	for _, e := range expenses {
		e.PayerName = names[e.PayerID]
		for i := range e.Participants {
			e.Participants[i].UserName = names[e.Participants[i].UserID]
		}
	}
}

// validateAmount rounds to cents before checking the sign, so sub-cent
// amounts are rejected rather than stored as zero.
func validateAmount(raw decimal.Decimal) (decimal.Decimal, error) {
	amount := utils.RoundToTwo(raw)
	if !amount.IsPositive() {
		return decimal.Zero, BadRequest("Amount must be at least 0.01")
	}
	return amount, nil
}

// normalizeCurrency upper-cases a currency code and requires three letters.
func normalizeCurrency(raw string) (string, error) {
	currency := strings.ToUpper(strings.TrimSpace(raw))
	if len(currency) != 3 {
		return "", BadRequest("Currency must be a 3-letter ISO 4217 code")
	}
	for _, r := range currency {
		if r < 'A' || r > 'Z' {
			return "", BadRequest("Currency must be a 3-letter ISO 4217 code")
		}
	}
	return currency, nil
}

var expenseDateLayouts = []string{time.RFC3339, "2006-01-02"}

func validateExpenseDate(plan *models.Plan, raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range expenseDateLayouts {
		t, err := time.Parse(layout, raw)
		if err != nil {
			continue
		}
		if !plan.ContainsDate(t) {
			return time.Time{}, BadRequest("Expense date must be between %s and %s",
				plan.StartDate.Format("2006-01-02"), plan.EndDate.Format("2006-01-02"))
		}
		return t, nil
	}
	return time.Time{}, BadRequest("Invalid expense date: %q", raw)
}

func loadPlan(ctx context.Context, plans PlanLookup, planID uuid.UUID) (*models.Plan, error) {
	plan, err := plans.GetPlan(ctx, planID)
	if errors.Is(err, ErrNotFound) {
		return nil, NotFound("Plan not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load plan: %w", err)
	}
	return plan, nil
}

func loadExpense(ctx context.Context, repo ExpenseRepository, expenseID uuid.UUID) (*models.Expense, error) {
	expense, err := repo.GetExpense(ctx, expenseID)
	if errors.Is(err, ErrNotFound) {
		return nil, NotFound("Expense not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load expense: %w", err)
	}
	return expense, nil
}

func errAlreadySettled() error {
	return BadRequest("This share has already been settled")
}

func describe(e *models.Expense) string {
	if e.Description != "" {
		return e.Description
	}
	return strings.ToLower(string(e.Category)) + " expense"
}
