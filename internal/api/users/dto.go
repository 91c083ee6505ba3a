package users

import "time"

type MeResponse struct {
	User    UserDTO    `json:"user"`
	Billing BillingDTO `json:"billing"`
	Access  AccessDTO  `json:"access"`
}

/* ---------- USER ---------- */

type UserDTO struct {
	ID               uint    `json:"id"`
	Email            string  `json:"email"`
	FirstName        string  `json:"firstName"`
	LastName         string  `json:"lastName"`
	ImageURL         *string `json:"imageUrl"`
	StripeCustomerID *string `json:"stripeCustomerId"`
}

/* ---------- BILLING ---------- */

type BillingDTO struct {
	Plan         PlanDTO          `json:"plan"`
	Subscription *SubscriptionDTO `json:"subscription"`
}

type PlanDTO struct {
	Key           string  `json:"key"`
	StripePriceID *string `json:"stripePriceId"`
}

type SubscriptionDTO struct {
	Status               string     `json:"status"`
	CurrentPeriodEnd     *time.Time `json:"currentPeriodEnd"`
	DaysLeft             *int       `json:"daysLeft"`
	StripeSubscriptionID *string    `json:"stripeSubscriptionId"`
}

/* ---------- ACCESS ---------- */

type AccessDTO struct {
	State        string   `json:"state"` // full|limited|locked
	Capabilities []string `json:"capabilities"`
	MaxPlatforms int      `json:"maxPlatforms"` // -1 = unlimited
}

/* ---------- SYNC ---------- */

type SyncUserRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	ImageURL  string `json:"imageUrl"`
}

type SyncUserResponse struct {
	User  UserDTO `json:"user"`
	IsNew bool    `json:"isNew"`
}
