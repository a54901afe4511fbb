package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"tripplanner-backend/models"
	"tripplanner-backend/services"
)

func (s *Store) GetPlan(ctx context.Context, planID uuid.UUID) (*models.Plan, error) {
	var plan models.Plan
	if err := s.db.WithContext(ctx).First(&plan, "id = ?", planID).Error; err != nil {
		return nil, notFound(err)
	}
	return &plan, nil
}

func (s *Store) JoinedMembers(ctx context.Context, planID uuid.UUID) ([]models.PlanMember, error) {
	var members []models.PlanMember
	err := s.db.WithContext(ctx).
		Where("plan_id = ? AND status = ?", planID, models.MemberJoined).
		Order("joined_at ASC, user_id ASC").
		Find(&members).Error
	if err != nil {
		return nil, fmt.Errorf("load joined members: %w", err)
	}
	return members, nil
}

func (s *Store) IsJoinedMember(ctx context.Context, planID, userID uuid.UUID) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.PlanMember{}).
		Where("plan_id = ? AND user_id = ? AND status = ?", planID, userID, models.MemberJoined).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check membership: %w", err)
	}
	return count > 0, nil
}

func (s *Store) UserNames(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]string, error) {
	names := make(map[uuid.UUID]string, len(userIDs))
	if len(userIDs) == 0 {
		return names, nil
	}

	ids := make(pq.StringArray, 0, len(userIDs))
	seen := make(map[uuid.UUID]bool, len(userIDs))
	for _, id := range userIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id.String())
	}

	var users []models.User
	err := s.db.WithContext(ctx).
		Select("id", "name").
		Where("id = ANY(?::uuid[])", ids).
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("load user names: %w", err)
	}
	for _, u := range users {
		names[u.ID] = u.Name
	}
	return names, nil
}

// PlanRecipients returns the users joined to the plan.
func (s *Store) PlanRecipients(ctx context.Context, planID uuid.UUID) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).
		Joins("JOIN plan_members pm ON pm.user_id = users.id").
		Where("pm.plan_id = ? AND pm.status = ?", planID, models.MemberJoined).
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("load plan recipients: %w", err)
	}
	return users, nil
}

func (s *Store) GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (s *Store) GetMembershipAndCapabilities(ctx context.Context, actor models.Actor, planID uuid.UUID) (*services.MembershipCapabilities, error) {
	var members []models.PlanMember
	err := s.db.WithContext(ctx).
		Where("plan_id = ? AND user_id = ?", planID, actor.UserID).
		Limit(1).
		Find(&members).Error
	if err != nil {
		return nil, fmt.Errorf("load membership: %w", err)
	}

	result := &services.MembershipCapabilities{}
	if len(members) == 1 {
		result.Member = &members[0]
	}
	result.Capabilities = CapabilitiesFor(actor, result.Member)
	return result, nil
}

func (s *Store) AssertCapability(ctx context.Context, actor models.Actor, planID uuid.UUID, capability, message string) error {
	mc, err := s.GetMembershipAndCapabilities(ctx, actor, planID)
	if err != nil {
		return err
	}
	if !mc.Has(capability) {
		return services.Forbidden("%s", message)
	}
	return nil
}

// CapabilitiesFor derives plan capabilities from the actor's role and
// membership row. Only JOINED members hold any.
func CapabilitiesFor(actor models.Actor, member *models.PlanMember) []string {
	if actor.IsAdmin() {
		return []string{services.CapabilityViewPlan, services.CapabilityCreateExpense, services.CapabilityManageExpense}
	}
	if member == nil || !member.IsJoined() {
		return nil
	}
	caps := []string{services.CapabilityViewPlan, services.CapabilityCreateExpense}
	if member.CanManage() {
		caps = append(caps, services.CapabilityManageExpense)
	}
	return caps
}
