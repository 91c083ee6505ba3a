package billingsync

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"socialhub-app/internal/domain/billing"
	"socialhub-app/internal/domain/plans"
	"socialhub-app/internal/domain/users"
)

// memStore is an in-memory UnitOfWork. Do holds the lock for the whole unit
// and restores a snapshot when fn fails, like a rolled back transaction.
type memStore struct {
	mu sync.Mutex

	events map[string]billing.Event
	users  map[uint]users.User
	subs   map[uint]billing.Subscription // by user id

	failUpdates error
}

func newMemStore() *memStore {
	return &memStore{
		events: map[string]billing.Event{},
		users:  map[uint]users.User{},
		subs:   map[uint]billing.Subscription{},
	}
}

func (m *memStore) Do(ctx context.Context, fn func(r Repositories) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	events, usrs, subs := m.snapshot()
	if err := fn(Repositories{Events: m, Users: m, Subscriptions: m}); err != nil {
		m.events, m.users, m.subs = events, usrs, subs
		return err
	}
	return nil
}

func (m *memStore) snapshot() (map[string]billing.Event, map[uint]users.User, map[uint]billing.Subscription) {
	events := make(map[string]billing.Event, len(m.events))
	for k, v := range m.events {
		events[k] = v
	}
	usrs := make(map[uint]users.User, len(m.users))
	for k, v := range m.users {
		usrs[k] = v
	}
	subs := make(map[uint]billing.Subscription, len(m.subs))
	for k, v := range m.subs {
		subs[k] = v
	}
	return events, usrs, subs
}

func (m *memStore) Append(ctx context.Context, ev *billing.Event) (AppendResult, error) {
	if _, ok := m.events[ev.StripeEventID]; ok {
		return Duplicate, nil
	}
	m.events[ev.StripeEventID] = *ev
	return Inserted, nil
}

func (m *memStore) FindUserByEmail(ctx context.Context, email string) (*users.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (m *memStore) FindUserByStripeCustomerID(ctx context.Context, customerID string) (*users.User, error) {
	for _, u := range m.users {
		if u.StripeCustomerID != nil && *u.StripeCustomerID == customerID {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (m *memStore) SetStripeCustomerID(ctx context.Context, userID uint, customerID string) error {
	u, ok := m.users[userID]
	if !ok {
		return nil
	}
	u.StripeCustomerID = &customerID
	m.users[userID] = u
	return nil
}

func (m *memStore) ReplaceForUser(ctx context.Context, sub *billing.Subscription) error {
	m.subs[sub.UserID] = *sub
	return nil
}

func (m *memStore) ReleaseStripeSubscription(ctx context.Context, stripeSubscriptionID string, keepUserID uint) (int64, error) {
	if stripeSubscriptionID == "" {
		return 0, nil
	}
	var released int64
	for userID, sub := range m.subs {
		if userID == keepUserID || sub.StripeSubscriptionID == nil || *sub.StripeSubscriptionID != stripeSubscriptionID {
			continue
		}
		sub.StripeSubscriptionID = nil
		sub.StripePriceID = nil
		sub.PlanType = plans.PlanFree
		sub.Status = billing.StatusCanceled
		m.subs[userID] = sub
		released++
	}
	return released, nil
}

func (m *memStore) UpdateByStripeSubscriptionID(ctx context.Context, stripeSubscriptionID string, u SubscriptionUpdate) (bool, error) {
	if m.failUpdates != nil {
		return false, m.failUpdates
	}
	for userID, sub := range m.subs {
		if sub.StripeSubscriptionID == nil || *sub.StripeSubscriptionID != stripeSubscriptionID {
			continue
		}
		if u.Status != nil {
			sub.Status = *u.Status
		}
		if u.PlanType != nil {
			sub.PlanType = *u.PlanType
		}
		if u.StripePriceID != nil {
			sub.StripePriceID = u.StripePriceID
		}
		if u.CurrentPeriodEnd != nil {
			sub.CurrentPeriodEnd = u.CurrentPeriodEnd
		}
		m.subs[userID] = sub
		return true, nil
	}
	return false, nil
}

func (m *memStore) FindByUserID(ctx context.Context, userID uint) (*billing.Subscription, error) {
	sub, ok := m.subs[userID]
	if !ok {
		return nil, nil
	}
	return &sub, nil
}

func (m *memStore) addUser(u users.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
	m.subs[u.ID] = *billing.NewDefaultSubscription(u.ID)
}

func (m *memStore) subscription(userID uint) (billing.Subscription, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sub, ok := m.subs[userID]
	return sub, ok
}

func (m *memStore) eventCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}

// envelope wraps a data.object the way Stripe delivers it.
func envelope(eventID string, typ billing.EventType, object string) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(
		`{"id":%q,"object":"event","api_version":"2023-10-16","created":1700000000,"type":%q,"data":{"object":%s,"previous_attributes":{}}}`,
		eventID, typ, object))
}

func subscriptionEvent(eventID string, typ billing.EventType, subID, customerID, priceID, status string, periodEnd time.Time) *billing.Event {
	items := `{"object":"list","data":[]}`
	if priceID != "" {
		items = fmt.Sprintf(`{"object":"list","data":[{"id":"si_1","price":{"id":%q}}]}`, priceID)
	}
	object := fmt.Sprintf(`{"id":%q,"object":"subscription","customer":%q,"status":%q,"current_period_end":%d,"items":%s}`,
		subID, customerID, status, periodEnd.Unix(), items)
	return &billing.Event{
		StripeEventID: eventID,
		EventType:     typ,
		Payload:       envelope(eventID, typ, object),
		ReceivedAt:    time.Now().UTC(),
	}
}

func invoiceEvent(eventID string, typ billing.EventType, subID string) *billing.Event {
	sub := "null"
	if subID != "" {
		sub = fmt.Sprintf("%q", subID)
	}
	return &billing.Event{
		StripeEventID: eventID,
		EventType:     typ,
		Payload:       envelope(eventID, typ, fmt.Sprintf(`{"id":"in_%s","object":"invoice","subscription":%s}`, eventID, sub)),
		ReceivedAt:    time.Now().UTC(),
	}
}

func customerEvent(eventID, customerID, email string) *billing.Event {
	return &billing.Event{
		StripeEventID: eventID,
		EventType:     billing.EventCustomerCreated,
		Payload:       envelope(eventID, billing.EventCustomerCreated, fmt.Sprintf(`{"id":%q,"object":"customer","email":%q}`, customerID, email)),
		ReceivedAt:    time.Now().UTC(),
	}
}
