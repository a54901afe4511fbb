package services

import (
	"context"

	"tripplanner-backend/models"
)

// AuthorizationGate answers "may this actor do that to this expense".
// Plan roles come from the capability port; the gate never reads
// memberships itself.
type AuthorizationGate struct {
	caps CapabilityPort
}

func NewAuthorizationGate(caps CapabilityPort) *AuthorizationGate {
	return &AuthorizationGate{caps: caps}
}

// CanView allows anyone on a public plan and JOINED members otherwise.
func (g *AuthorizationGate) CanView(ctx context.Context, actor models.Actor, plan *models.Plan) error {
	if plan.IsPublic() || actor.IsAdmin() {
		return nil
	}
	return g.caps.AssertCapability(ctx, actor, plan.ID, CapabilityViewPlan, "You do not have access to this plan")
}

// CanCreate allows members of the plan, or anyone when the plan is public.
// The payer's own membership is checked separately.
func (g *AuthorizationGate) CanCreate(ctx context.Context, actor models.Actor, plan *models.Plan) error {
	if plan.IsPublic() {
		return nil
	}
	return g.caps.AssertCapability(ctx, actor, plan.ID, CapabilityCreateExpense, "You must be a member of this plan to add expenses")
}

// CanModify covers update and delete: the payer, the plan owner, an
// ADMIN user, or a plan OWNER/ADMIN.
func (g *AuthorizationGate) CanModify(ctx context.Context, actor models.Actor, plan *models.Plan, expense *models.Expense) error {
	if expense.PayerID == actor.UserID {
		return nil
	}
	ok, err := g.isPrivileged(ctx, actor, plan)
	if err != nil {
		return err
	}
	if !ok {
		return Forbidden("Only the payer or a plan manager can modify this expense")
	}
	return nil
}

// CanSettle allows the participant themself, the plan owner, an ADMIN
// user, or a plan OWNER/ADMIN.
func (g *AuthorizationGate) CanSettle(ctx context.Context, actor models.Actor, plan *models.Plan, participant *models.ExpenseParticipant) error {
	if participant.UserID == actor.UserID {
		return nil
	}
	ok, err := g.isPrivileged(ctx, actor, plan)
	if err != nil {
		return err
	}
	if !ok {
		return Forbidden("Only the participant or a plan manager can settle this share")
	}
	return nil
}

func (g *AuthorizationGate) isPrivileged(ctx context.Context, actor models.Actor, plan *models.Plan) (bool, error) {
	if actor.IsAdmin() || plan.OwnerID == actor.UserID {
		return true, nil
	}
	mc, err := g.caps.GetMembershipAndCapabilities(ctx, actor, plan.ID)
	if err != nil {
		return false, err
	}
	if mc.Member != nil && mc.Member.CanManage() {
		return true, nil
	}
	return mc.Has(CapabilityManageExpense), nil
}
