package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ActivityType string

const (
	ActivityExpenseAdded   ActivityType = "expense_added"
	ActivityExpenseUpdated ActivityType = "expense_updated"
	ActivityExpenseDeleted ActivityType = "expense_deleted"
	ActivityExpenseSettled ActivityType = "expense_settled"
)

type Activity struct {
	ID          uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	PlanID      uuid.UUID    `gorm:"type:uuid;index" json:"planId"`
	UserID      uuid.UUID    `gorm:"type:uuid" json:"userId"`
	Type        ActivityType `gorm:"not null;size:30" json:"type"`
	ReferenceID uuid.UUID    `gorm:"type:uuid" json:"referenceId,omitempty"`
	Description string       `json:"description"`
	CreatedAt   time.Time    `json:"createdAt"`
}

func (a *Activity) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
