package billing

import (
	"time"

	"socialhub-app/internal/domain/plans"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusPastDue  Status = "past_due"
	StatusCanceled Status = "canceled"
)

// Subscription is the current billing state of one user, projected from
// Stripe events. Rows are never deleted; canceled is retained as a status.
type Subscription struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"column:user_id;not null;uniqueIndex:idx_subscriptions_user_id" json:"userId"`

	StripeCustomerID     *string `gorm:"column:stripe_customer_id;index" json:"stripeCustomerId,omitempty"`
	StripeSubscriptionID *string `gorm:"column:stripe_subscription_id;uniqueIndex:idx_subscriptions_stripe_subscription_id" json:"stripeSubscriptionId,omitempty"`
	StripePriceID        *string `gorm:"column:stripe_price_id" json:"stripePriceId,omitempty"`

	PlanType         plans.PlanType `gorm:"column:plan_type;type:varchar(20);not null;default:'free'" json:"planType"`
	Status           Status         `gorm:"column:status;type:varchar(20);not null;default:'active'" json:"status"`
	CurrentPeriodEnd *time.Time     `gorm:"column:current_period_end" json:"currentPeriodEnd,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewDefaultSubscription is the row every user gets at registration.
func NewDefaultSubscription(userID uint) *Subscription {
	return &Subscription{
		UserID:   userID,
		PlanType: plans.PlanFree,
		Status:   StatusActive,
	}
}
