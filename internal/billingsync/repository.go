package billingsync

import (
	"context"
	"time"

	"socialhub-app/internal/domain/billing"
	"socialhub-app/internal/domain/plans"
	"socialhub-app/internal/domain/users"
)

type AppendResult int

const (
	Inserted AppendResult = iota
	Duplicate
)

func (r AppendResult) String() string {
	if r == Duplicate {
		return "duplicate"
	}
	return "inserted"
}

// EventStore is the append-only log of Stripe events. Append must rely on
// the storage layer's unique constraint on the Stripe event id, so that two
// concurrent deliveries of the same event cannot both be inserted.
type EventStore interface {
	Append(ctx context.Context, ev *billing.Event) (AppendResult, error)
}

// UserDirectory links Stripe customers to local users. Lookups return a nil
// user and a nil error when nothing matches.
type UserDirectory interface {
	FindUserByEmail(ctx context.Context, email string) (*users.User, error)
	FindUserByStripeCustomerID(ctx context.Context, customerID string) (*users.User, error)
	SetStripeCustomerID(ctx context.Context, userID uint, customerID string) error
}

// SubscriptionUpdate lists the fields an event overwrites. Nil fields are
// left untouched.
type SubscriptionUpdate struct {
	Status           *billing.Status
	PlanType         *plans.PlanType
	StripePriceID    *string
	CurrentPeriodEnd *time.Time
}

func (u SubscriptionUpdate) columns() map[string]interface{} {
	cols := map[string]interface{}{}
	if u.Status != nil {
		cols["status"] = *u.Status
	}
	if u.PlanType != nil {
		cols["plan_type"] = *u.PlanType
	}
	if u.StripePriceID != nil {
		cols["stripe_price_id"] = *u.StripePriceID
	}
	if u.CurrentPeriodEnd != nil {
		cols["current_period_end"] = *u.CurrentPeriodEnd
	}
	return cols
}

// SubscriptionStore is the projection. Only the Reconciler writes to it after
// a user has been created.
type SubscriptionStore interface {
	// ReplaceForUser creates or overwrites the single row owned by sub.UserID.
	ReplaceForUser(ctx context.Context, sub *billing.Subscription) error
	// ReleaseStripeSubscription detaches stripeSubscriptionID from rows not
	// owned by keepUserID and drops them to a canceled free plan. It returns
	// the number of rows released.
	ReleaseStripeSubscription(ctx context.Context, stripeSubscriptionID string, keepUserID uint) (int64, error)
	// UpdateByStripeSubscriptionID reports false when no row carries that id.
	UpdateByStripeSubscriptionID(ctx context.Context, stripeSubscriptionID string, u SubscriptionUpdate) (bool, error)
	FindByUserID(ctx context.Context, userID uint) (*billing.Subscription, error)
}

// Repositories is one consistent view of storage, usually bound to a
// transaction.
type Repositories struct {
	Events        EventStore
	Users         UserDirectory
	Subscriptions SubscriptionStore
}

// UnitOfWork runs fn atomically: if fn returns an error nothing it wrote is
// kept, including the event append.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(r Repositories) error) error
}
