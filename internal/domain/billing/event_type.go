package billing

type EventType string

const (
	EventCustomerCreated     EventType = "customer.created"
	EventSubscriptionCreated EventType = "customer.subscription.created"
	EventSubscriptionUpdated EventType = "customer.subscription.updated"
	EventSubscriptionDeleted EventType = "customer.subscription.deleted"
	EventPaymentSucceeded    EventType = "invoice.payment_succeeded"
	EventPaymentFailed       EventType = "invoice.payment_failed"
)

// Known reports whether t is one of the event types the reconciler projects.
// Everything else is recorded for audit only.
func (t EventType) Known() bool {
	switch t {
	case EventCustomerCreated,
		EventSubscriptionCreated,
		EventSubscriptionUpdated,
		EventSubscriptionDeleted,
		EventPaymentSucceeded,
		EventPaymentFailed:
		return true
	default:
		return false
	}
}
