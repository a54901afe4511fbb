package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PlanVisibility string

const (
	VisibilityPublic  PlanVisibility = "PUBLIC"
	VisibilityPrivate PlanVisibility = "PRIVATE"
)

// Plan is owned by the planning module; this service only reads it.
type Plan struct {
	ID         uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	Title      string           `gorm:"not null;size:200" json:"title"`
	OwnerID    uuid.UUID        `gorm:"type:uuid;index;not null" json:"ownerId"`
	Visibility PlanVisibility   `gorm:"size:20;default:PRIVATE" json:"visibility"`
	StartDate  time.Time        `json:"startDate"`
	EndDate    time.Time        `json:"endDate"`
	BudgetMin  *decimal.Decimal `gorm:"type:decimal(12,2)" json:"budgetMin,omitempty"`
	BudgetMax  *decimal.Decimal `gorm:"type:decimal(12,2)" json:"budgetMax,omitempty"`
	CreatedAt  time.Time        `json:"createdAt"`
	UpdatedAt  time.Time        `json:"updatedAt"`
}

func (p *Plan) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (p *Plan) IsPublic() bool {
	return p.Visibility == VisibilityPublic
}

func (p *Plan) HasBudget() bool {
	return p.BudgetMin != nil || p.BudgetMax != nil
}

// ContainsDate reports whether t falls on a calendar day (UTC) inside the
// plan window, both ends inclusive.
func (p *Plan) ContainsDate(t time.Time) bool {
	day := truncateDay(t)
	return !day.Before(truncateDay(p.StartDate)) && !day.After(truncateDay(p.EndDate))
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type MemberStatus string

const (
	MemberInvited MemberStatus = "INVITED"
	MemberPending MemberStatus = "PENDING"
	MemberJoined  MemberStatus = "JOINED"
	MemberRemoved MemberStatus = "REMOVED"
)

type PlanRole string

const (
	PlanRoleOwner  PlanRole = "OWNER"
	PlanRoleAdmin  PlanRole = "ADMIN"
	PlanRoleMember PlanRole = "MEMBER"
)

type PlanMember struct {
	PlanID    uuid.UUID    `gorm:"type:uuid;primaryKey" json:"planId"`
	UserID    uuid.UUID    `gorm:"type:uuid;primaryKey" json:"userId"`
	User      User         `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Role      PlanRole     `gorm:"size:20;default:MEMBER" json:"role"`
	Status    MemberStatus `gorm:"size:20;default:INVITED;index" json:"status"`
	JoinedAt  *time.Time   `json:"joinedAt,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
}

func (m *PlanMember) IsJoined() bool {
	return m.Status == MemberJoined
}

// CanManage reports whether the member holds a manage-level plan role.
func (m *PlanMember) CanManage() bool {
	return m.IsJoined() && (m.Role == PlanRoleOwner || m.Role == PlanRoleAdmin)
}
