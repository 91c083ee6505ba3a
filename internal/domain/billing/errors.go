package billing

import "github.com/pkg/errors"

var (
	// ErrInvalidSignature means the webhook payload was not signed by Stripe
	// with our endpoint secret (or the signature is outside the tolerance).
	ErrInvalidSignature = errors.New("invalid webhook signature")

	// ErrMalformedEvent means a verified event could not be decoded.
	ErrMalformedEvent = errors.New("malformed billing event")
)
