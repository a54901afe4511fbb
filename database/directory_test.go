package database

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"tripplanner-backend/models"
	"tripplanner-backend/services"
)

func TestCapabilitiesFor(t *testing.T) {
	user := models.Actor{UserID: uuid.New(), Role: models.RoleUser}
	admin := models.Actor{UserID: uuid.New(), Role: models.RoleAdmin}

	all := []string{services.CapabilityViewPlan, services.CapabilityCreateExpense, services.CapabilityManageExpense}
	member := []string{services.CapabilityViewPlan, services.CapabilityCreateExpense}

	tests := []struct {
		name   string
		actor  models.Actor
		member *models.PlanMember
		want   []string
	}{
		{name: "no membership", actor: user},
		{name: "invited", actor: user, member: &models.PlanMember{Role: models.PlanRoleMember, Status: models.MemberInvited}},
		{name: "removed owner", actor: user, member: &models.PlanMember{Role: models.PlanRoleOwner, Status: models.MemberRemoved}},
		{name: "joined member", actor: user, member: &models.PlanMember{Role: models.PlanRoleMember, Status: models.MemberJoined}, want: member},
		{name: "joined plan admin", actor: user, member: &models.PlanMember{Role: models.PlanRoleAdmin, Status: models.MemberJoined}, want: all},
		{name: "joined owner", actor: user, member: &models.PlanMember{Role: models.PlanRoleOwner, Status: models.MemberJoined}, want: all},
		{name: "system admin without membership", actor: admin, want: all},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CapabilitiesFor(tt.actor, tt.member))
		})
	}
}

func TestSummaryKey(t *testing.T) {
	id := uuid.MustParse("0b6f1a52-7c1e-4a8e-9d4c-2f1f4e3b9a10")
	assert.Equal(t, "plan:0b6f1a52-7c1e-4a8e-9d4c-2f1f4e3b9a10:expense-summary", summaryKey(id))
}
