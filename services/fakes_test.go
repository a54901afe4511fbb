package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tripplanner-backend/models"
)

// memStore is an in-memory stand-in for the gorm store. It implements
// every read/write port the services depend on.
type memStore struct {
	plans      map[uuid.UUID]*models.Plan
	members    map[uuid.UUID][]models.PlanMember
	users      map[uuid.UUID]string
	expenses   map[uuid.UUID]*models.Expense
	activities []models.Activity

	clock time.Time

	// loseSettleRace makes MarkParticipantPaid behave as if another
	// request flipped the row first.
	loseSettleRace bool
	failActivity   error

	// beforeTx runs as a transaction opens, standing in for a writer that
	// committed between a service's first read and its locked re-read.
	beforeTx func()
	// afterCommit runs once a transaction has committed.
	afterCommit func()
}

func newMemStore() *memStore {
	return &memStore{
		plans:    map[uuid.UUID]*models.Plan{},
		members:  map[uuid.UUID][]models.PlanMember{},
		users:    map[uuid.UUID]string{},
		expenses: map[uuid.UUID]*models.Expense{},
		clock:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (m *memStore) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func cloneExpense(e *models.Expense) *models.Expense {
	c := *e
	c.Participants = append([]models.ExpenseParticipant(nil), e.Participants...)
	return &c
}

func (m *memStore) Transaction(ctx context.Context, fn func(tx ExpenseRepository) error) error {
	if m.beforeTx != nil {
		m.beforeTx()
		m.beforeTx = nil
	}
	snapshot := make(map[uuid.UUID]*models.Expense, len(m.expenses))
	for id, e := range m.expenses {
		snapshot[id] = cloneExpense(e)
	}
	activities := len(m.activities)

	if err := fn(m); err != nil {
		m.expenses = snapshot
		m.activities = m.activities[:activities]
		return err
	}
	if m.afterCommit != nil {
		m.afterCommit()
	}
	return nil
}

func (m *memStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == uuid.Nil {
		expense.ID = uuid.New()
	}
	now := m.tick()
	expense.CreatedAt, expense.UpdatedAt = now, now
	for i := range expense.Participants {
		p := &expense.Participants[i]
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
		}
		p.ExpenseID = expense.ID
		p.CreatedAt, p.UpdatedAt = now, now
	}
	m.expenses[expense.ID] = cloneExpense(expense)
	return nil
}

func (m *memStore) GetExpense(ctx context.Context, expenseID uuid.UUID) (*models.Expense, error) {
	e, ok := m.expenses[expenseID]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneExpense(e), nil
}

func (m *memStore) ListExpenses(ctx context.Context, f models.ExpenseFilter, offset, limit int) ([]models.Expense, int64, error) {
	var out []models.Expense
	for _, e := range m.expenses {
		if f.PlanID != nil && e.PlanID != *f.PlanID ||
			f.PayerID != nil && e.PayerID != *f.PayerID ||
			f.Category != nil && e.Category != *f.Category ||
			f.SplitType != nil && e.SplitType != *f.SplitType ||
			f.From != nil && e.ExpenseDate.Before(*f.From) ||
			f.To != nil && e.ExpenseDate.After(*f.To) {
			continue
		}
		if f.SearchTerm != "" && !strings.Contains(strings.ToLower(e.Description), strings.ToLower(f.SearchTerm)) {
			continue
		}
		if f.VisibleTo != nil && !m.visibleTo(e.PlanID, *f.VisibleTo) {
			continue
		}
		out = append(out, *cloneExpense(e))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ExpenseDate.Equal(out[j].ExpenseDate) {
			return out[i].ExpenseDate.After(out[j].ExpenseDate)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	total := int64(len(out))
	if offset >= len(out) {
		return []models.Expense{}, total, nil
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], total, nil
}

func (m *memStore) visibleTo(planID, userID uuid.UUID) bool {
	plan, ok := m.plans[planID]
	if !ok {
		return false
	}
	if plan.IsPublic() || plan.OwnerID == userID {
		return true
	}
	joined, _ := m.IsJoinedMember(context.Background(), planID, userID)
	return joined
}

func (m *memStore) PlanExpenses(ctx context.Context, planID uuid.UUID) ([]models.Expense, error) {
	var out []models.Expense
	for _, e := range m.expenses {
		if e.PlanID == planID {
			out = append(out, *cloneExpense(e))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ExpenseDate.Equal(out[j].ExpenseDate) {
			return out[i].ExpenseDate.Before(out[j].ExpenseDate)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (m *memStore) SaveExpense(ctx context.Context, expense *models.Expense) error {
	stored, ok := m.expenses[expense.ID]
	if !ok {
		return ErrNotFound
	}
	c := cloneExpense(expense)
	c.Participants = stored.Participants
	c.UpdatedAt = m.tick()
	m.expenses[expense.ID] = c
	return nil
}

func (m *memStore) DeleteExpense(ctx context.Context, expenseID uuid.UUID) error {
	if _, ok := m.expenses[expenseID]; !ok {
		return ErrNotFound
	}
	delete(m.expenses, expenseID)
	return nil
}

func (m *memStore) participant(participantID uuid.UUID) *models.ExpenseParticipant {
	for _, e := range m.expenses {
		if p := e.Participant(participantID); p != nil {
			return p
		}
	}
	return nil
}

func (m *memStore) UpdateParticipantAmount(ctx context.Context, participantID uuid.UUID, amount decimal.Decimal) error {
	p := m.participant(participantID)
	if p == nil {
		return ErrNotFound
	}
	p.Amount = amount
	return nil
}

func (m *memStore) ReplaceParticipants(ctx context.Context, expenseID uuid.UUID, participants []models.ExpenseParticipant) error {
	stored, ok := m.expenses[expenseID]
	if !ok {
		return ErrNotFound
	}
	for i := range participants {
		if participants[i].ID == uuid.Nil {
			participants[i].ID = uuid.New()
		}
		participants[i].ExpenseID = expenseID
	}
	stored.Participants = append([]models.ExpenseParticipant(nil), participants...)
	return nil
}

func (m *memStore) MarkParticipantPaid(ctx context.Context, participantID uuid.UUID, paidAt time.Time) (bool, error) {
	p := m.participant(participantID)
	if p == nil {
		return false, nil
	}
	if m.loseSettleRace {
		p.IsPaid = true
		return false, nil
	}
	if p.IsPaid {
		return false, nil
	}
	p.IsPaid = true
	p.PaidAt = &paidAt
	return true, nil
}

func (m *memStore) CreateActivity(ctx context.Context, activity *models.Activity) error {
	if m.failActivity != nil {
		return m.failActivity
	}
	if activity.ID == uuid.Nil {
		activity.ID = uuid.New()
	}
	activity.CreatedAt = m.tick()
	m.activities = append(m.activities, *activity)
	return nil
}

func (m *memStore) PlanActivity(ctx context.Context, planID uuid.UUID, offset, limit int) ([]models.Activity, error) {
	var out []models.Activity
	for i := len(m.activities) - 1; i >= 0; i-- {
		if m.activities[i].PlanID == planID {
			out = append(out, m.activities[i])
		}
	}
	if offset >= len(out) {
		return []models.Activity{}, nil
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], nil
}

func (m *memStore) GetPlan(ctx context.Context, planID uuid.UUID) (*models.Plan, error) {
	p, ok := m.plans[planID]
	if !ok {
		return nil, ErrNotFound
	}
	c := *p
	return &c, nil
}

func (m *memStore) JoinedMembers(ctx context.Context, planID uuid.UUID) ([]models.PlanMember, error) {
	var out []models.PlanMember
	for _, mem := range m.members[planID] {
		if mem.IsJoined() {
			out = append(out, mem)
		}
	}
	return out, nil
}

func (m *memStore) IsJoinedMember(ctx context.Context, planID, userID uuid.UUID) (bool, error) {
	for _, mem := range m.members[planID] {
		if mem.UserID == userID {
			return mem.IsJoined(), nil
		}
	}
	return false, nil
}

func (m *memStore) UserNames(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]string, error) {
	names := make(map[uuid.UUID]string, len(userIDs))
	for _, id := range userIDs {
		if name, ok := m.users[id]; ok {
			names[id] = name
		}
	}
	return names, nil
}

func (m *memStore) member(planID, userID uuid.UUID) *models.PlanMember {
	for i, mem := range m.members[planID] {
		if mem.UserID == userID {
			return &m.members[planID][i]
		}
	}
	return nil
}

func (m *memStore) GetMembershipAndCapabilities(ctx context.Context, actor models.Actor, planID uuid.UUID) (*MembershipCapabilities, error) {
	mc := &MembershipCapabilities{Member: m.member(planID, actor.UserID)}
	if mc.Member != nil && mc.Member.IsJoined() {
		mc.Capabilities = []string{CapabilityViewPlan, CapabilityCreateExpense}
		if mc.Member.CanManage() {
			mc.Capabilities = append(mc.Capabilities, CapabilityManageExpense)
		}
	}
	return mc, nil
}

func (m *memStore) AssertCapability(ctx context.Context, actor models.Actor, planID uuid.UUID, capability, message string) error {
	mc, err := m.GetMembershipAndCapabilities(ctx, actor, planID)
	if err != nil {
		return err
	}
	if !mc.Has(capability) {
		return Forbidden("%s", message)
	}
	return nil
}

type sentNotification struct {
	PlanID    uuid.UUID
	UserID    uuid.UUID
	ExcludeID uuid.UUID
	Event     models.NotificationEvent
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
}

func (n *recordingNotifier) NotifyPlanMembers(ctx context.Context, planID, excludeUserID uuid.UUID, event models.NotificationEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentNotification{PlanID: planID, ExcludeID: excludeUserID, Event: event})
}

func (n *recordingNotifier) NotifyUser(ctx context.Context, userID uuid.UUID, event models.NotificationEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentNotification{UserID: userID, Event: event})
}

func (n *recordingNotifier) all() []sentNotification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]sentNotification(nil), n.sent...)
}

type memCache struct {
	entries       map[uuid.UUID]*models.ExpenseSummary
	invalidations int
	failGet       bool
	// honorCtx makes Invalidate fail on a done context like a real
	// network client would.
	honorCtx bool
}

func newMemCache() *memCache {
	return &memCache{entries: map[uuid.UUID]*models.ExpenseSummary{}}
}

func (c *memCache) Get(ctx context.Context, planID uuid.UUID) (*models.ExpenseSummary, bool, error) {
	if c.failGet {
		return nil, false, errors.New("cache unavailable")
	}
	s, ok := c.entries[planID]
	return s, ok, nil
}

func (c *memCache) Set(ctx context.Context, planID uuid.UUID, summary *models.ExpenseSummary) error {
	c.entries[planID] = summary
	return nil
}

func (c *memCache) Invalidate(ctx context.Context, planID uuid.UUID) error {
	if c.honorCtx && ctx.Err() != nil {
		return ctx.Err()
	}
	c.invalidations++
	delete(c.entries, planID)
	return nil
}

// fixture is a private plan running 2026-06-01..2026-06-10 with an owner,
// two joined members (alice, bob), one invited user (carol) and an
// outsider with no membership.
type fixture struct {
	store     *memStore
	notifier  *recordingNotifier
	cache     *memCache
	expenses  *ExpenseService
	summaries *SummaryAggregator

	plan                               *models.Plan
	owner, alice, bob, carol, outsider uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		store:    newMemStore(),
		notifier: &recordingNotifier{},
		cache:    newMemCache(),
		owner:    uuid.New(),
		alice:    uuid.New(),
		bob:      uuid.New(),
		carol:    uuid.New(),
		outsider: uuid.New(),
	}
	f.plan = &models.Plan{
		ID:         uuid.New(),
		Title:      "Lisbon",
		OwnerID:    f.owner,
		Visibility: models.VisibilityPrivate,
		StartDate:  time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC),
	}
	f.store.plans[f.plan.ID] = f.plan
	f.store.members[f.plan.ID] = []models.PlanMember{
		{PlanID: f.plan.ID, UserID: f.owner, Role: models.PlanRoleOwner, Status: models.MemberJoined},
		{PlanID: f.plan.ID, UserID: f.alice, Role: models.PlanRoleMember, Status: models.MemberJoined},
		{PlanID: f.plan.ID, UserID: f.bob, Role: models.PlanRoleMember, Status: models.MemberJoined},
		{PlanID: f.plan.ID, UserID: f.carol, Role: models.PlanRoleMember, Status: models.MemberInvited},
	}
	f.store.users[f.owner] = "Olivia"
	f.store.users[f.alice] = "Alice"
	f.store.users[f.bob] = "Bob"
	f.store.users[f.carol] = "Carol"
	f.store.users[f.outsider] = "Oscar"

	gate := NewAuthorizationGate(f.store)
	f.expenses = NewExpenseService(ExpenseDeps{
		Repo:     f.store,
		Plans:    f.store,
		Members:  f.store,
		Users:    f.store,
		Gate:     gate,
		Notifier: f.notifier,
		Cache:    f.cache,
	})
	f.expenses.now = func() time.Time { return time.Date(2026, 6, 5, 12, 0, 0, 0, time.UTC) }
	f.summaries = NewSummaryAggregator(f.store, gate, f.store, NewSettlementEngine(f.store, f.store), f.cache)
	return f
}

func actorFor(id uuid.UUID) models.Actor {
	return models.Actor{UserID: id, Role: models.RoleUser}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func amountFor(userID uuid.UUID, amount string) models.SplitInput {
	return models.SplitInput{UserID: userID, Amount: decPtr(amount)}
}

func percentFor(userID uuid.UUID, pct string) models.SplitInput {
	return models.SplitInput{UserID: userID, Percentage: decPtr(pct)}
}

func shareOf(e *models.Expense, userID uuid.UUID) *models.ExpenseParticipant {
	for i := range e.Participants {
		if e.Participants[i].UserID == userID {
			return &e.Participants[i]
		}
	}
	return nil
}
