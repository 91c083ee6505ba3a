package users

import (
	"time"

	"socialhub-app/internal/domain/access"
	"socialhub-app/internal/domain/billing"
	"socialhub-app/internal/domain/plans"
	"socialhub-app/internal/domain/users"
)

func BuildUserDTO(u users.User) UserDTO {
	return UserDTO{
		ID:               u.ID,
		Email:            u.Email,
		FirstName:        u.FirstName,
		LastName:         u.LastName,
		ImageURL:         stringPtrIfNotEmpty(u.ImageURL),
		StripeCustomerID: u.StripeCustomerID,
	}
}

func BuildPlanDTO(policy access.Policy, sub *billing.Subscription) PlanDTO {
	dto := PlanDTO{Key: string(policy.Plan)}
	if sub != nil && policy.Plan != plans.PlanFree {
		dto.StripePriceID = sub.StripePriceID
	}
	return dto
}

func BuildSubscriptionDTO(now time.Time, sub *billing.Subscription) *SubscriptionDTO {
	if sub == nil {
		return nil
	}
	return &SubscriptionDTO{
		Status:               string(sub.Status),
		CurrentPeriodEnd:     sub.CurrentPeriodEnd,
		DaysLeft:             daysLeft(now, sub.CurrentPeriodEnd),
		StripeSubscriptionID: sub.StripeSubscriptionID,
	}
}

func BuildAccessDTO(policy access.Policy) AccessDTO {
	caps := make([]string, 0, len(policy.Capabilities))
	for _, c := range policy.Capabilities {
		caps = append(caps, string(c))
	}
	return AccessDTO{
		State:        string(policy.State),
		Capabilities: caps,
		MaxPlatforms: policy.MaxPlatforms,
	}
}

func daysLeft(now time.Time, end *time.Time) *int {
	if end == nil {
		return nil
	}
	d := 0
	if now.Before(*end) {
		d = int(end.Sub(now).Hours() / 24)
	}
	return &d
}

func stringPtrIfNotEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
