package access

import (
	"time"

	"socialhub-app/internal/domain/billing"
	"socialhub-app/internal/domain/plans"
)

// ComputeEffectiveAccessState interprets the projected subscription for the
// product: full|limited|locked.
func ComputeEffectiveAccessState(now time.Time, sub *billing.Subscription) AccessState {
	// No row yet: the user has not been synced.
	if sub == nil {
		return AccessLocked
	}

	switch sub.Status {
	case billing.StatusActive:
		return AccessFull

	case billing.StatusPastDue:
		return AccessLimited

	case billing.StatusCanceled:
		// Inside the paid-through period the account stays unrestricted, on
		// the free tier (see EffectivePlan).
		if sub.CurrentPeriodEnd != nil && now.Before(*sub.CurrentPeriodEnd) {
			return AccessFull
		}
		return AccessLimited

	default:
		return AccessLocked
	}
}

// EffectivePlan is the tier the user is entitled to right now. A canceled
// subscription grants only the free tier, even inside its last paid period.
func EffectivePlan(now time.Time, sub *billing.Subscription) plans.PlanType {
	if sub == nil || sub.Status == billing.StatusCanceled {
		return plans.PlanFree
	}
	return plans.Normalize(string(sub.PlanType))
}
