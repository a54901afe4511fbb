package services

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tripplanner-backend/models"
	"tripplanner-backend/utils"
)

var (
	// splitTolerance is the accepted drift between a split's sum and its target.
	splitTolerance = decimal.New(1, -2)
	hundred        = decimal.NewFromInt(100)
)

// CalculateEqualSplit returns round(total / memberCount, 2). The residual
// cent is not redistributed, so 10.00 over 3 yields 3.33 each.
func CalculateEqualSplit(total decimal.Decimal, memberCount int) (decimal.Decimal, error) {
	if memberCount <= 0 {
		return decimal.Zero, BadRequest("Cannot split an expense between %d members", memberCount)
	}
	return utils.RoundToTwo(total.Div(decimal.NewFromInt(int64(memberCount)))), nil
}

func ValidateCustomSplit(total decimal.Decimal, participants []models.SplitInput) error {
	if len(participants) == 0 {
		return BadRequest("Participants are required for a custom split")
	}
	if err := checkDuplicateParticipants(participants); err != nil {
		return err
	}

	sum := decimal.Zero
	for _, p := range participants {
		if p.Amount == nil {
			return BadRequest("Participant %s is missing an amount", p.UserID)
		}
		if p.Amount.IsNegative() {
			return BadRequest("Participant %s has a negative amount", p.UserID)
		}
		sum = sum.Add(*p.Amount)
	}

	if sum.Sub(total).Abs().GreaterThan(splitTolerance) {
		return BadRequest("Split amounts (%s) don't add up to total (%s)", sum.StringFixed(2), total.StringFixed(2))
	}
	return nil
}

func ValidatePercentageSplit(participants []models.SplitInput) error {
	if len(participants) == 0 {
		return BadRequest("Participants are required for a percentage split")
	}
	if err := checkDuplicateParticipants(participants); err != nil {
		return err
	}

	sum := decimal.Zero
	for _, p := range participants {
		if p.Percentage == nil {
			return BadRequest("Participant %s is missing a percentage", p.UserID)
		}
		if p.Percentage.IsNegative() {
			return BadRequest("Participant %s has a negative percentage", p.UserID)
		}
		sum = sum.Add(*p.Percentage)
	}

	if sum.Sub(hundred).Abs().GreaterThan(splitTolerance) {
		return BadRequest("Percentages must add up to 100, got %s", sum.StringFixed(2))
	}
	return nil
}

// PercentageToAmount returns round(total * pct / 100, 2).
func PercentageToAmount(total, pct decimal.Decimal) decimal.Decimal {
	return utils.RoundToTwo(total.Mul(pct).Div(hundred))
}

// rescalePercentageShare recovers a participant's original percentage from
// the stored amounts and applies it to the new total.
func rescalePercentageShare(oldShare, oldTotal, newTotal decimal.Decimal) decimal.Decimal {
	if oldTotal.IsZero() {
		return decimal.Zero
	}
	pct := oldShare.Div(oldTotal).Mul(hundred)
	return PercentageToAmount(newTotal, pct)
}

func checkDuplicateParticipants(participants []models.SplitInput) error {
	seen := make(map[uuid.UUID]bool, len(participants))
	for _, p := range participants {
		if seen[p.UserID] {
			return BadRequest("Participant %s is listed more than once", p.UserID)
		}
		seen[p.UserID] = true
	}
	return nil
}
