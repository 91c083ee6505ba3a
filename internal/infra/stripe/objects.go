package stripe

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/pkg/errors"
	stripeapi "github.com/stripe/stripe-go/v75"

	"socialhub-app/internal/domain/billing"
)

// CustomerSnapshot is the part of a Stripe customer object we project.
type CustomerSnapshot struct {
	ID    string
	Email string
}

// SubscriptionSnapshot is the part of a Stripe subscription object we project.
type SubscriptionSnapshot struct {
	ID               string
	CustomerID       string
	PriceID          string
	Status           billing.Status
	CurrentPeriodEnd *time.Time
}

// InvoiceSnapshot carries the subscription an invoice was raised for, if any.
type InvoiceSnapshot struct {
	ID             string
	SubscriptionID string
}

// EventObject returns data.object from a stored Stripe event payload.
func EventObject(payload json.RawMessage) (json.RawMessage, error) {
	var ev stripeapi.Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		return nil, errors.Wrap(billing.ErrMalformedEvent, err.Error())
	}
	if ev.Data == nil || len(ev.Data.Raw) == 0 {
		return nil, errors.Wrap(billing.ErrMalformedEvent, "event without data.object")
	}
	return ev.Data.Raw, nil
}

func DecodeCustomer(raw json.RawMessage) (CustomerSnapshot, error) {
	var c stripeapi.Customer
	if err := json.Unmarshal(raw, &c); err != nil {
		return CustomerSnapshot{}, errors.Wrap(billing.ErrMalformedEvent, err.Error())
	}
	if c.ID == "" {
		return CustomerSnapshot{}, errors.Wrap(billing.ErrMalformedEvent, "customer without id")
	}
	return CustomerSnapshot{
		ID:    c.ID,
		Email: strings.TrimSpace(c.Email),
	}, nil
}

func DecodeSubscription(raw json.RawMessage) (SubscriptionSnapshot, error) {
	var sub stripeapi.Subscription
	if err := json.Unmarshal(raw, &sub); err != nil {
		return SubscriptionSnapshot{}, errors.Wrap(billing.ErrMalformedEvent, err.Error())
	}
	if sub.ID == "" {
		return SubscriptionSnapshot{}, errors.Wrap(billing.ErrMalformedEvent, "subscription without id")
	}

	out := SubscriptionSnapshot{
		ID:     sub.ID,
		Status: NormalizeStatus(string(sub.Status)),
	}
	if sub.Customer != nil {
		out.CustomerID = sub.Customer.ID
	}
	if sub.Items != nil && len(sub.Items.Data) > 0 && sub.Items.Data[0].Price != nil {
		out.PriceID = sub.Items.Data[0].Price.ID
	}
	if sub.CurrentPeriodEnd > 0 {
		periodEnd := time.Unix(sub.CurrentPeriodEnd, 0).UTC()
		out.CurrentPeriodEnd = &periodEnd
	}
	return out, nil
}

func DecodeInvoice(raw json.RawMessage) (InvoiceSnapshot, error) {
	var inv stripeapi.Invoice
	if err := json.Unmarshal(raw, &inv); err != nil {
		return InvoiceSnapshot{}, errors.Wrap(billing.ErrMalformedEvent, err.Error())
	}

	out := InvoiceSnapshot{ID: inv.ID}
	if inv.Subscription != nil {
		out.SubscriptionID = inv.Subscription.ID
	}
	return out, nil
}
