package billingsync

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"socialhub-app/internal/domain/billing"
	"socialhub-app/internal/domain/plans"
	stripeinfra "socialhub-app/internal/infra/stripe"
)

type Outcome string

const (
	OutcomeApplied   Outcome = "applied"
	OutcomeDuplicate Outcome = "duplicate"
	// The event references a user or subscription we have no row for.
	OutcomeOrphan Outcome = "orphan"
	// Recorded for audit; the type is not projected.
	OutcomeIgnored Outcome = "ignored"
)

// PlanResolver maps a Stripe price id to a plan tier. It must be total.
type PlanResolver interface {
	PlanFor(priceID string) plans.PlanType
}

// Reconciler applies one verified Stripe event to the subscription
// projection, exactly once per event id.
//
// Every mutation overwrites specific fields (last writer wins); there is no
// version check, because Stripe resends the full object on every event.
type Reconciler struct {
	uow   UnitOfWork
	plans PlanResolver
	log   logrus.FieldLogger
}

func NewReconciler(uow UnitOfWork, resolver PlanResolver, log logrus.FieldLogger) *Reconciler {
	return &Reconciler{
		uow:   uow,
		plans: resolver,
		log:   log,
	}
}

// Reconcile records ev and projects it in one unit of work. Errors are
// either billing.ErrMalformedEvent or storage failures; in both cases nothing
// is kept, so a redelivery is processed from scratch.
func (r *Reconciler) Reconcile(ctx context.Context, ev *billing.Event) (Outcome, error) {
	log := r.log.WithFields(logrus.Fields{
		"event_id":   ev.StripeEventID,
		"event_type": ev.EventType,
	})

	var outcome Outcome
	err := r.uow.Do(ctx, func(repos Repositories) error {
		res, err := repos.Events.Append(ctx, ev)
		if err != nil {
			return err
		}
		if res == Duplicate {
			outcome = OutcomeDuplicate
			return nil
		}

		outcome, err = r.project(ctx, repos, ev, log)
		return err
	})
	if err != nil {
		return "", err
	}

	log.WithField("outcome", outcome).Info("billing event reconciled")
	return outcome, nil
}

func (r *Reconciler) project(ctx context.Context, repos Repositories, ev *billing.Event, log logrus.FieldLogger) (Outcome, error) {
	if !ev.EventType.Known() {
		return OutcomeIgnored, nil
	}
	obj, err := stripeinfra.EventObject(ev.Payload)
	if err != nil {
		return "", err
	}

	switch ev.EventType {
	case billing.EventCustomerCreated:
		return r.customerCreated(ctx, repos, obj, log)
	case billing.EventSubscriptionCreated:
		return r.subscriptionCreated(ctx, repos, obj, log)
	case billing.EventSubscriptionUpdated:
		return r.subscriptionUpdated(ctx, repos, obj, log)
	case billing.EventSubscriptionDeleted:
		return r.subscriptionDeleted(ctx, repos, obj, log)
	case billing.EventPaymentSucceeded:
		return r.paymentStatus(ctx, repos, obj, billing.StatusActive, log)
	case billing.EventPaymentFailed:
		return r.paymentStatus(ctx, repos, obj, billing.StatusPastDue, log)
	default:
		return OutcomeIgnored, nil
	}
}

func (r *Reconciler) customerCreated(ctx context.Context, repos Repositories, obj json.RawMessage, log logrus.FieldLogger) (Outcome, error) {
	cus, err := stripeinfra.DecodeCustomer(obj)
	if err != nil {
		return "", err
	}
	if cus.Email == "" {
		log.WithField("stripe_customer_id", cus.ID).Info("customer without email, nothing to link")
		return OutcomeOrphan, nil
	}

	user, err := repos.Users.FindUserByEmail(ctx, cus.Email)
	if err != nil {
		return "", err
	}
	if user == nil {
		log.WithField("stripe_customer_id", cus.ID).Info("no local user for customer email")
		return OutcomeOrphan, nil
	}

	if err := repos.Users.SetStripeCustomerID(ctx, user.ID, cus.ID); err != nil {
		return "", err
	}
	return OutcomeApplied, nil
}

func (r *Reconciler) subscriptionCreated(ctx context.Context, repos Repositories, obj json.RawMessage, log logrus.FieldLogger) (Outcome, error) {
	snap, err := stripeinfra.DecodeSubscription(obj)
	if err != nil {
		return "", err
	}

	user, err := repos.Users.FindUserByStripeCustomerID(ctx, snap.CustomerID)
	if err != nil {
		return "", err
	}
	if user == nil {
		log.WithFields(logrus.Fields{
			"stripe_customer_id":     snap.CustomerID,
			"stripe_subscription_id": snap.ID,
		}).Info("subscription for unlinked customer")
		return OutcomeOrphan, nil
	}

	sub := &billing.Subscription{
		UserID:               user.ID,
		StripeCustomerID:     optional(snap.CustomerID),
		StripeSubscriptionID: optional(snap.ID),
		StripePriceID:        optional(snap.PriceID),
		PlanType:             r.plans.PlanFor(snap.PriceID),
		Status:               snap.Status,
		CurrentPeriodEnd:     snap.CurrentPeriodEnd,
	}
	// The customer may have been relinked to another user; the old holder
	// loses the subscription so the unique stripe_subscription_id holds.
	released, err := repos.Subscriptions.ReleaseStripeSubscription(ctx, snap.ID, user.ID)
	if err != nil {
		return "", err
	}
	if released > 0 {
		log.WithFields(logrus.Fields{
			"stripe_subscription_id": snap.ID,
			"user_id":                user.ID,
		}).Warn("subscription moved from another user")
	}
	if err := repos.Subscriptions.ReplaceForUser(ctx, sub); err != nil {
		return "", err
	}
	return OutcomeApplied, nil
}

func (r *Reconciler) subscriptionUpdated(ctx context.Context, repos Repositories, obj json.RawMessage, log logrus.FieldLogger) (Outcome, error) {
	snap, err := stripeinfra.DecodeSubscription(obj)
	if err != nil {
		return "", err
	}

	plan := r.plans.PlanFor(snap.PriceID)
	return r.update(ctx, repos, snap.ID, SubscriptionUpdate{
		Status:           &snap.Status,
		PlanType:         &plan,
		StripePriceID:    optional(snap.PriceID),
		CurrentPeriodEnd: snap.CurrentPeriodEnd,
	}, log)
}

func (r *Reconciler) subscriptionDeleted(ctx context.Context, repos Repositories, obj json.RawMessage, log logrus.FieldLogger) (Outcome, error) {
	snap, err := stripeinfra.DecodeSubscription(obj)
	if err != nil {
		return "", err
	}

	status := billing.StatusCanceled
	plan := plans.PlanFree
	return r.update(ctx, repos, snap.ID, SubscriptionUpdate{
		Status:   &status,
		PlanType: &plan,
	}, log)
}

func (r *Reconciler) paymentStatus(ctx context.Context, repos Repositories, obj json.RawMessage, status billing.Status, log logrus.FieldLogger) (Outcome, error) {
	inv, err := stripeinfra.DecodeInvoice(obj)
	if err != nil {
		return "", err
	}
	if inv.SubscriptionID == "" {
		// one-off invoice
		return OutcomeOrphan, nil
	}

	return r.update(ctx, repos, inv.SubscriptionID, SubscriptionUpdate{Status: &status}, log)
}

func (r *Reconciler) update(ctx context.Context, repos Repositories, stripeSubscriptionID string, u SubscriptionUpdate, log logrus.FieldLogger) (Outcome, error) {
	found, err := repos.Subscriptions.UpdateByStripeSubscriptionID(ctx, stripeSubscriptionID, u)
	if err != nil {
		return "", err
	}
	if !found {
		// Possibly delivered before customer.subscription.created.
		log.WithField("stripe_subscription_id", stripeSubscriptionID).Info("no subscription row to update")
		return OutcomeOrphan, nil
	}
	return OutcomeApplied, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// IsClientError reports whether err is caused by the event itself rather
// than by storage.
func IsClientError(err error) bool {
	return errors.Is(err, billing.ErrMalformedEvent) || errors.Is(err, billing.ErrInvalidSignature)
}
