package billingsync

import (
	"context"
	"sync"
	"testing"
	"time"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socialhub-app/database/dbtest"
	"socialhub-app/internal/domain/billing"
	"socialhub-app/internal/domain/plans"
	"socialhub-app/internal/domain/users"
)

func TestGormEventStoreAppend(t *testing.T) {
	db := dbtest.Open(t)
	store := &GormEventStore{db: db}
	ctx := context.Background()

	ev := &billing.Event{StripeEventID: "evt_1", EventType: billing.EventCustomerCreated, Payload: []byte(`{}`), ReceivedAt: time.Now()}
	res, err := store.Append(ctx, ev)
	require.NoError(t, err)
	assert.Equal(t, Inserted, res)

	dup := &billing.Event{StripeEventID: "evt_1", EventType: billing.EventCustomerCreated, Payload: []byte(`{}`), ReceivedAt: time.Now()}
	res, err = store.Append(ctx, dup)
	require.NoError(t, err)
	assert.Equal(t, Duplicate, res)

	var count int64
	require.NoError(t, db.Model(&billing.Event{}).Where("stripe_event_id = ?", "evt_1").Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

// SQLite serializes these inserts on its single connection, so this covers
// the ON CONFLICT path under contention. Against Postgres the guarantee comes
// from the unique index on stripe_event_id: the second insert blocks on the
// first and then becomes a no-op.
func TestGormEventStoreConcurrentAppend(t *testing.T) {
	db := dbtest.Open(t)
	store := &GormEventStore{db: db}

	const workers = 12
	results := make([]AppendResult, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ev := &billing.Event{StripeEventID: "evt_race", EventType: billing.EventPaymentFailed, Payload: []byte(`{}`), ReceivedAt: time.Now()}
			res, err := store.Append(context.Background(), ev)
			assert.NoError(t, err)
			results[i] = res
		}(i)
	}
	wg.Wait()

	inserted := 0
	for _, r := range results {
		if r == Inserted {
			inserted++
		}
	}
	assert.Equal(t, 1, inserted)
}

func TestGormSubscriptionStore(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	dbtest.SeedUser(t, db, &users.User{ExternalAuthID: "user_1", Email: "ada@example.com"})

	subs := &GormSubscriptionStore{db: db}

	found, err := subs.UpdateByStripeSubscriptionID(ctx, "sub_1", SubscriptionUpdate{})
	require.NoError(t, err)
	assert.False(t, found)

	end := time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, subs.ReplaceForUser(ctx, &billing.Subscription{
		UserID:               1,
		StripeCustomerID:     strPtr("cus_1"),
		StripeSubscriptionID: strPtr("sub_1"),
		StripePriceID:        strPtr("price_basic"),
		PlanType:             plans.PlanBasic,
		Status:               billing.StatusActive,
		CurrentPeriodEnd:     &end,
	}))

	var rows int64
	require.NoError(t, db.Model(&billing.Subscription{}).Count(&rows).Error)
	assert.EqualValues(t, 1, rows, "replace keeps one row per user")

	status := billing.StatusPastDue
	found, err = subs.UpdateByStripeSubscriptionID(ctx, "sub_1", SubscriptionUpdate{Status: &status})
	require.NoError(t, err)
	assert.True(t, found)

	found, err = subs.UpdateByStripeSubscriptionID(ctx, "sub_other", SubscriptionUpdate{Status: &status})
	require.NoError(t, err)
	assert.False(t, found)

	sub, err := subs.FindByUserID(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Equal(t, billing.StatusPastDue, sub.Status)
	assert.Equal(t, plans.PlanBasic, sub.PlanType)

	none, err := subs.FindByUserID(ctx, 99)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestGormUserDirectory(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	dbtest.SeedUser(t, db, &users.User{ExternalAuthID: "user_1", Email: "ada@example.com"})

	dir := &GormUserDirectory{db: db}

	u, err := dir.FindUserByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	require.NotNil(t, u)

	require.NoError(t, dir.SetStripeCustomerID(ctx, u.ID, "cus_1"))

	linked, err := dir.FindUserByStripeCustomerID(ctx, "cus_1")
	require.NoError(t, err)
	require.NotNil(t, linked)
	assert.Equal(t, u.ID, linked.ID)

	missing, err := dir.FindUserByStripeCustomerID(ctx, "")
	require.NoError(t, err)
	assert.Nil(t, missing)

	missing, err = dir.FindUserByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestReconcileWithGorm(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	dbtest.SeedUser(t, db, &users.User{ExternalAuthID: "user_1", Email: "ada@example.com", StripeCustomerID: strPtr("cus_1")})

	log, _ := logtest.NewNullLogger()
	r := NewReconciler(NewGormUnitOfWork(db), plans.NewCatalog("price_basic", "price_pro", "price_enterprise"), log)

	ev := subscriptionEvent("evt_1", billing.EventSubscriptionCreated, "sub_1", "cus_1", "price_pro", "active", periodEnd)
	outcome, err := r.Reconcile(ctx, ev)
	require.NoError(t, err)
	assert.Equal(t, OutcomeApplied, outcome)

	outcome, err = r.Reconcile(ctx, subscriptionEvent("evt_1", billing.EventSubscriptionCreated, "sub_1", "cus_1", "price_pro", "active", periodEnd))
	require.NoError(t, err)
	assert.Equal(t, OutcomeDuplicate, outcome)

	outcome, err = r.Reconcile(ctx, invoiceEvent("evt_2", billing.EventPaymentFailed, "sub_1"))
	require.NoError(t, err)
	assert.Equal(t, OutcomeApplied, outcome)

	var sub billing.Subscription
	require.NoError(t, db.Where("user_id = ?", 1).First(&sub).Error)
	assert.Equal(t, plans.PlanPro, sub.PlanType)
	assert.Equal(t, billing.StatusPastDue, sub.Status)
	require.NotNil(t, sub.StripeSubscriptionID)
	assert.Equal(t, "sub_1", *sub.StripeSubscriptionID)

	var events int64
	require.NoError(t, db.Model(&billing.Event{}).Count(&events).Error)
	assert.EqualValues(t, 2, events)
}

func TestReconcileWithGormRollsBackMalformed(t *testing.T) {
	db := dbtest.Open(t)
	log, _ := logtest.NewNullLogger()
	r := NewReconciler(NewGormUnitOfWork(db), plans.NewCatalog("price_basic", "price_pro", "price_enterprise"), log)

	_, err := r.Reconcile(context.Background(), &billing.Event{
		StripeEventID: "evt_bad",
		EventType:     billing.EventSubscriptionDeleted,
		Payload:       []byte(`{"id":`),
		ReceivedAt:    time.Now(),
	})
	require.Error(t, err)

	var events int64
	require.NoError(t, db.Model(&billing.Event{}).Count(&events).Error)
	assert.EqualValues(t, 0, events)
}

func TestGormReleaseStripeSubscription(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	dbtest.SeedUser(t, db, &users.User{ExternalAuthID: "user_1", Email: "ada@example.com"})
	dbtest.SeedUser(t, db, &users.User{ExternalAuthID: "user_2", Email: "grace@example.com"})

	subs := &GormSubscriptionStore{db: db}
	require.NoError(t, subs.ReplaceForUser(ctx, &billing.Subscription{
		UserID:               1,
		StripeSubscriptionID: strPtr("sub_1"),
		StripePriceID:        strPtr("price_pro"),
		PlanType:             plans.PlanPro,
		Status:               billing.StatusActive,
	}))

	released, err := subs.ReleaseStripeSubscription(ctx, "sub_1", 1)
	require.NoError(t, err)
	assert.EqualValues(t, 0, released, "the owner keeps its own subscription")

	released, err = subs.ReleaseStripeSubscription(ctx, "sub_1", 2)
	require.NoError(t, err)
	assert.EqualValues(t, 1, released)

	sub, err := subs.FindByUserID(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Nil(t, sub.StripeSubscriptionID)
	assert.Nil(t, sub.StripePriceID)
	assert.Equal(t, plans.PlanFree, sub.PlanType)
	assert.Equal(t, billing.StatusCanceled, sub.Status)
}

func TestReconcileWithGormMovesSubscriptionToRelinkedUser(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	dbtest.SeedUser(t, db, &users.User{ExternalAuthID: "user_1", Email: "ada@example.com", StripeCustomerID: strPtr("cus_old")})
	dbtest.SeedUser(t, db, &users.User{ExternalAuthID: "user_2", Email: "grace@example.com", StripeCustomerID: strPtr("cus_new")})

	log, hook := logtest.NewNullLogger()
	r := NewReconciler(NewGormUnitOfWork(db), plans.NewCatalog("price_basic", "price_pro", "price_enterprise"), log)

	_, err := r.Reconcile(ctx, subscriptionEvent("evt_1", billing.EventSubscriptionCreated, "sub_1", "cus_old", "price_pro", "active", periodEnd))
	require.NoError(t, err)

	// The same Stripe subscription reported under the customer now linked to user 2.
	outcome, err := r.Reconcile(ctx, subscriptionEvent("evt_2", billing.EventSubscriptionCreated, "sub_1", "cus_new", "price_basic", "active", periodEnd))
	require.NoError(t, err)
	assert.Equal(t, OutcomeApplied, outcome)

	var old, moved billing.Subscription
	require.NoError(t, db.Where("user_id = ?", 1).First(&old).Error)
	require.NoError(t, db.Where("user_id = ?", 2).First(&moved).Error)

	assert.Nil(t, old.StripeSubscriptionID)
	assert.Equal(t, plans.PlanFree, old.PlanType)
	assert.Equal(t, billing.StatusCanceled, old.Status)

	require.NotNil(t, moved.StripeSubscriptionID)
	assert.Equal(t, "sub_1", *moved.StripeSubscriptionID)
	assert.Equal(t, plans.PlanBasic, moved.PlanType)
	assert.Equal(t, billing.StatusActive, moved.Status)

	var warned bool
	for _, e := range hook.AllEntries() {
		if e.Message == "subscription moved from another user" {
			warned = true
		}
	}
	assert.True(t, warned)
}

func TestReconcileWithGormStoresFullEnvelope(t *testing.T) {
	db := dbtest.Open(t)
	log, _ := logtest.NewNullLogger()
	r := NewReconciler(NewGormUnitOfWork(db), plans.NewCatalog("price_basic", "price_pro", "price_enterprise"), log)

	ev := subscriptionEvent("evt_1", billing.EventSubscriptionUpdated, "sub_1", "cus_1", "price_pro", "active", periodEnd)
	_, err := r.Reconcile(context.Background(), ev)
	require.NoError(t, err)

	var stored billing.Event
	require.NoError(t, db.Where("stripe_event_id = ?", "evt_1").First(&stored).Error)
	assert.JSONEq(t, string(ev.Payload), string(stored.Payload))
	assert.Contains(t, string(stored.Payload), `"previous_attributes"`)
	assert.Contains(t, string(stored.Payload), `"api_version":"2023-10-16"`)
}
