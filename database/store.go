package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tripplanner-backend/models"
	"tripplanner-backend/services"
)

// Store is the gorm implementation of the expense repository and of the
// plan, membership and user lookups.
type Store struct {
	db   *gorm.DB
	inTx bool
}

var (
	_ services.ExpenseRepository  = (*Store)(nil)
	_ services.PlanLookup         = (*Store)(nil)
	_ services.MembershipLookup   = (*Store)(nil)
	_ services.UserDirectory      = (*Store)(nil)
	_ services.CapabilityPort     = (*Store)(nil)
	_ services.RecipientDirectory = (*Store)(nil)
)

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return services.ErrNotFound
	}
	return err
}

func (s *Store) Transaction(ctx context.Context, fn func(tx services.ExpenseRepository) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx, inTx: true})
	})
}

func (s *Store) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if err := s.db.WithContext(ctx).Create(expense).Error; err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}
	return nil
}

// GetExpense locks the expense row when called inside a transaction.
func (s *Store) GetExpense(ctx context.Context, expenseID uuid.UUID) (*models.Expense, error) {
	q := s.db.WithContext(ctx)
	if s.inTx {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var expense models.Expense
	err := q.Preload("Participants", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC")
	}).First(&expense, "id = ?", expenseID).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &expense, nil
}

func (s *Store) ListExpenses(ctx context.Context, filter models.ExpenseFilter, offset, limit int) ([]models.Expense, int64, error) {
	var total int64
	err := s.db.WithContext(ctx).
		Model(&models.Expense{}).
		Scopes(s.filterScope(filter)).
		Count(&total).Error
	if err != nil {
		return nil, 0, fmt.Errorf("count expenses: %w", err)
	}

	var expenses []models.Expense
	err = s.db.WithContext(ctx).
		Scopes(s.filterScope(filter)).
		Preload("Participants", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Order("expense_date DESC, created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&expenses).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list expenses: %w", err)
	}
	return expenses, total, nil
}

func (s *Store) filterScope(filter models.ExpenseFilter) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		if filter.PlanID != nil {
			q = q.Where("plan_id = ?", *filter.PlanID)
		}
		if filter.PayerID != nil {
			q = q.Where("payer_id = ?", *filter.PayerID)
		}
		if filter.Category != nil {
			q = q.Where("category = ?", *filter.Category)
		}
		if filter.SplitType != nil {
			q = q.Where("split_type = ?", *filter.SplitType)
		}
		if filter.From != nil {
			q = q.Where("expense_date >= ?", *filter.From)
		}
		if filter.To != nil {
			q = q.Where("expense_date <= ?", *filter.To)
		}
		if filter.SearchTerm != "" {
			q = q.Where(`description ILIKE ? ESCAPE '\'`, "%"+escapeLike(filter.SearchTerm)+"%")
		}
		if filter.VisibleTo != nil {
			userID := *filter.VisibleTo
			visible := s.db.Model(&models.Plan{}).
				Select("plans.id").
				Joins("LEFT JOIN plan_members pm ON pm.plan_id = plans.id AND pm.user_id = ? AND pm.status = ?", userID, models.MemberJoined).
				Where("plans.visibility = ? OR plans.owner_id = ? OR pm.user_id IS NOT NULL", models.VisibilityPublic, userID)
			q = q.Where("plan_id IN (?)", visible)
		}
		return q
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes a search term match literally inside a LIKE pattern.
func escapeLike(term string) string {
	return likeEscaper.Replace(term)
}

func (s *Store) PlanExpenses(ctx context.Context, planID uuid.UUID) ([]models.Expense, error) {
	var expenses []models.Expense
	err := s.db.WithContext(ctx).
		Preload("Participants").
		Where("plan_id = ?", planID).
		Order("expense_date ASC, created_at ASC").
		Find(&expenses).Error
	if err != nil {
		return nil, fmt.Errorf("load plan expenses: %w", err)
	}
	return expenses, nil
}

func (s *Store) SaveExpense(ctx context.Context, expense *models.Expense) error {
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Save(expense).Error; err != nil {
		return fmt.Errorf("save expense: %w", err)
	}
	return nil
}

func (s *Store) DeleteExpense(ctx context.Context, expenseID uuid.UUID) error {
	db := s.db.WithContext(ctx)
	if err := db.Where("expense_id = ?", expenseID).Delete(&models.ExpenseParticipant{}).Error; err != nil {
		return fmt.Errorf("delete participants: %w", err)
	}
	res := db.Delete(&models.Expense{}, "id = ?", expenseID)
	if res.Error != nil {
		return fmt.Errorf("delete expense: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return services.ErrNotFound
	}
	return nil
}

func (s *Store) UpdateParticipantAmount(ctx context.Context, participantID uuid.UUID, amount decimal.Decimal) error {
	err := s.db.WithContext(ctx).
		Model(&models.ExpenseParticipant{}).
		Where("id = ?", participantID).
		Update("amount", amount).Error
	if err != nil {
		return fmt.Errorf("update participant amount: %w", err)
	}
	return nil
}

// ReplaceParticipants removes rows not present in participants and upserts
// the rest. New rows get their ids assigned in place.
func (s *Store) ReplaceParticipants(ctx context.Context, expenseID uuid.UUID, participants []models.ExpenseParticipant) error {
	db := s.db.WithContext(ctx)

	var keep []uuid.UUID
	for _, p := range participants {
		if p.ID != uuid.Nil {
			keep = append(keep, p.ID)
		}
	}

	del := db.Where("expense_id = ?", expenseID)
	if len(keep) > 0 {
		del = del.Where("id NOT IN ?", keep)
	}
	if err := del.Delete(&models.ExpenseParticipant{}).Error; err != nil {
		return fmt.Errorf("delete replaced participants: %w", err)
	}

	for i := range participants {
		participants[i].ExpenseID = expenseID
		if err := db.Save(&participants[i]).Error; err != nil {
			return fmt.Errorf("save participant: %w", err)
		}
	}
	return nil
}

func (s *Store) MarkParticipantPaid(ctx context.Context, participantID uuid.UUID, paidAt time.Time) (bool, error) {
	res := s.db.WithContext(ctx).
		Model(&models.ExpenseParticipant{}).
		Where("id = ? AND is_paid = ?", participantID, false).
		Updates(map[string]interface{}{
			"is_paid": true,
			"paid_at": paidAt,
		})
	if res.Error != nil {
		return false, fmt.Errorf("mark participant paid: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (s *Store) CreateActivity(ctx context.Context, activity *models.Activity) error {
	if err := s.db.WithContext(ctx).Create(activity).Error; err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

func (s *Store) PlanActivity(ctx context.Context, planID uuid.UUID, offset, limit int) ([]models.Activity, error) {
	var activities []models.Activity
	err := s.db.WithContext(ctx).
		Where("plan_id = ?", planID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&activities).Error
	if err != nil {
		return nil, fmt.Errorf("load activity: %w", err)
	}
	return activities, nil
}
