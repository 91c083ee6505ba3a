package stripe

import (
	"strings"

	"socialhub-app/internal/domain/billing"
)

// NormalizeStatus folds Stripe's subscription statuses onto the three states
// the projection stores.
func NormalizeStatus(s string) billing.Status {
	switch strings.TrimSpace(s) {
	case "active", "trialing":
		return billing.StatusActive
	case "canceled", "incomplete_expired":
		return billing.StatusCanceled
	default:
		// past_due, unpaid, incomplete, paused and anything Stripe adds later
		return billing.StatusPastDue
	}
}
