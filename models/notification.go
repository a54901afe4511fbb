package models

import "github.com/google/uuid"

type NotificationType string

const (
	NotificationExpenseCreated NotificationType = "expense_created"
	NotificationExpenseUpdated NotificationType = "expense_updated"
	NotificationExpenseDeleted NotificationType = "expense_deleted"
	NotificationExpenseSettled NotificationType = "expense_settled"
)

// NotificationEvent is channel-agnostic; push and email render it their own way.
type NotificationEvent struct {
	Type      NotificationType
	PlanID    uuid.UUID
	ExpenseID uuid.UUID
	ActorID   uuid.UUID
	Title     string
	Body      string
}

// Data is the string payload attached to push messages.
func (e NotificationEvent) Data() map[string]string {
	return map[string]string{
		"type":       string(e.Type),
		"plan_id":    e.PlanID.String(),
		"expense_id": e.ExpenseID.String(),
	}
}
