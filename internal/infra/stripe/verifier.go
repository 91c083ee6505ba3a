package stripe

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	stripeapi "github.com/stripe/stripe-go/v75"
	"github.com/stripe/stripe-go/v75/webhook"

	"socialhub-app/internal/domain/billing"
)

// WebhookVerifier checks the Stripe-Signature header (timestamped HMAC-SHA256)
// before anything in the payload is trusted.
type WebhookVerifier struct {
	secret    string
	tolerance time.Duration
	now       func() time.Time
}

func NewWebhookVerifier(secret string, tolerance time.Duration) *WebhookVerifier {
	if tolerance <= 0 {
		tolerance = webhook.DefaultTolerance
	}
	return &WebhookVerifier{
		secret:    secret,
		tolerance: tolerance,
		now:       time.Now,
	}
}

func (v *WebhookVerifier) Verify(payload []byte, signatureHeader string) (*billing.Event, error) {
	if v.secret == "" {
		return nil, errors.Wrap(billing.ErrInvalidSignature, "webhook secret not configured")
	}
	if err := webhook.ValidatePayloadWithTolerance(payload, signatureHeader, v.secret, v.tolerance); err != nil {
		return nil, errors.Wrap(billing.ErrInvalidSignature, err.Error())
	}

	var ev stripeapi.Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		return nil, errors.Wrap(billing.ErrMalformedEvent, err.Error())
	}
	if ev.ID == "" {
		return nil, errors.Wrap(billing.ErrMalformedEvent, "event without id")
	}

	// The whole envelope is kept: data.previous_attributes, created and
	// api_version belong in the audit log.
	return &billing.Event{
		StripeEventID: ev.ID,
		EventType:     billing.EventType(ev.Type),
		Payload:       append(json.RawMessage(nil), payload...),
		ReceivedAt:    v.now().UTC(),
	}, nil
}
