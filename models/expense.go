package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ExpenseCategory string

const (
	CategoryFood          ExpenseCategory = "FOOD"
	CategoryTransport     ExpenseCategory = "TRANSPORT"
	CategoryAccommodation ExpenseCategory = "ACCOMMODATION"
	CategoryActivity      ExpenseCategory = "ACTIVITY"
	CategoryShopping      ExpenseCategory = "SHOPPING"
	CategoryOther         ExpenseCategory = "OTHER"
)

func (c ExpenseCategory) Valid() bool {
	switch c {
	case CategoryFood, CategoryTransport, CategoryAccommodation, CategoryActivity, CategoryShopping, CategoryOther:
		return true
	}
	return false
}

// SplitType is fixed when the expense is created.
type SplitType string

const (
	SplitEqual      SplitType = "EQUAL"
	SplitCustom     SplitType = "CUSTOM"
	SplitPercentage SplitType = "PERCENTAGE"
)

func (s SplitType) Valid() bool {
	return s == SplitEqual || s == SplitCustom || s == SplitPercentage
}

const DefaultCurrency = "USD"

type Expense struct {
	ID           uuid.UUID            `gorm:"type:uuid;primaryKey" json:"id"`
	PlanID       uuid.UUID            `gorm:"type:uuid;index;not null" json:"planId"`
	PayerID      uuid.UUID            `gorm:"type:uuid;index;not null" json:"payerId"`
	PayerName    string               `gorm:"-" json:"payerName,omitempty"`
	Amount       decimal.Decimal      `gorm:"type:decimal(12,2);not null" json:"amount"`
	Currency     string               `gorm:"default:USD;size:3" json:"currency"`
	Category     ExpenseCategory      `gorm:"size:20;not null" json:"category"`
	Description  string               `gorm:"size:500" json:"description,omitempty"`
	ExpenseDate  time.Time            `gorm:"not null;index" json:"expenseDate"`
	SplitType    SplitType            `gorm:"size:20;not null" json:"splitType"`
	LocationID   *uuid.UUID           `gorm:"type:uuid" json:"locationId,omitempty"`
	Participants []ExpenseParticipant `gorm:"foreignKey:ExpenseID;constraint:OnDelete:CASCADE" json:"participants,omitempty"`
	CreatedAt    time.Time            `json:"createdAt"`
	UpdatedAt    time.Time            `json:"updatedAt"`
}

func (e *Expense) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// Participant returns the participant row with the given id, or nil.
func (e *Expense) Participant(id uuid.UUID) *ExpenseParticipant {
	for i := range e.Participants {
		if e.Participants[i].ID == id {
			return &e.Participants[i]
		}
	}
	return nil
}

// ExpenseParticipant is one user's share of an expense. IsPaid only ever
// moves from false to true.
type ExpenseParticipant struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	ExpenseID uuid.UUID       `gorm:"type:uuid;index;not null" json:"expenseId"`
	UserID    uuid.UUID       `gorm:"type:uuid;index;not null" json:"userId"`
	UserName  string          `gorm:"-" json:"userName,omitempty"`
	Amount    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	IsPaid    bool            `gorm:"default:false;not null" json:"isPaid"`
	PaidAt    *time.Time      `json:"paidAt,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

func (ep *ExpenseParticipant) BeforeCreate(tx *gorm.DB) error {
	if ep.ID == uuid.Nil {
		ep.ID = uuid.New()
	}
	return nil
}

// Request structs
type CreateExpenseRequest struct {
	PlanID       uuid.UUID       `json:"planId" binding:"required"`
	PayerID      uuid.UUID       `json:"payerId" binding:"required"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	Category     ExpenseCategory `json:"category" binding:"required,oneof=FOOD TRANSPORT ACCOMMODATION ACTIVITY SHOPPING OTHER"`
	Description  string          `json:"description"`
	ExpenseDate  string          `json:"expenseDate" binding:"required"` // RFC 3339 or YYYY-MM-DD
	SplitType    SplitType       `json:"splitType" binding:"required,oneof=EQUAL CUSTOM PERCENTAGE"`
	LocationID   *uuid.UUID      `json:"locationId"`
	Participants []SplitInput    `json:"participants"` // required for CUSTOM and PERCENTAGE
}

// SplitInput carries an amount for CUSTOM splits or a percentage for
// PERCENTAGE splits.
type SplitInput struct {
	UserID     uuid.UUID        `json:"userId" binding:"required"`
	Amount     *decimal.Decimal `json:"amount,omitempty"`
	Percentage *decimal.Decimal `json:"percentage,omitempty"`
}

// UpdateExpenseRequest is a patch: nil fields are left untouched.
type UpdateExpenseRequest struct {
	PayerID      *uuid.UUID       `json:"payerId"`
	Amount       *decimal.Decimal `json:"amount"`
	Currency     *string          `json:"currency"`
	Category     *ExpenseCategory `json:"category" binding:"omitempty,oneof=FOOD TRANSPORT ACCOMMODATION ACTIVITY SHOPPING OTHER"`
	Description  *string          `json:"description"`
	ExpenseDate  *string          `json:"expenseDate"`
	LocationID   *uuid.UUID       `json:"locationId"`
	Participants []SplitInput     `json:"participants"` // CUSTOM only
}

type ExpenseFilter struct {
	PlanID     *uuid.UUID
	PayerID    *uuid.UUID
	Category   *ExpenseCategory
	SplitType  *SplitType
	From       *time.Time
	To         *time.Time
	SearchTerm string

	// VisibleTo restricts results to plans the user may view. Set by the
	// service, never by callers.
	VisibleTo *uuid.UUID
}

type PageMeta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

type ExpensePage struct {
	Items []Expense `json:"items"`
	Meta  PageMeta  `json:"meta"`
}
