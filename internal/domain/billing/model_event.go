package billing

import (
	"encoding/json"
	"time"
)

// Event is one Stripe webhook delivery, stored append-only. StripeEventID is
// unique; the database constraint is what makes recording idempotent.
type Event struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	StripeEventID string          `gorm:"column:stripe_event_id;not null;uniqueIndex:idx_billing_events_stripe_event_id" json:"stripeEventId"`
	EventType     EventType       `gorm:"column:event_type;type:varchar(100);not null;index" json:"eventType"`
	Payload       json.RawMessage `gorm:"column:payload;type:jsonb" json:"payload"`
	ReceivedAt    time.Time       `gorm:"column:received_at;not null" json:"receivedAt"`
}

func (Event) TableName() string {
	return "billing_events"
}
