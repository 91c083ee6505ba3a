package admin

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"socialhub-app/internal/domain/billing"
	"socialhub-app/internal/domain/users"
)

const (
	defaultEventLimit = 50
	maxEventLimit     = 500
)

type AdminUser struct {
	ID                   uint       `json:"id"`
	Email                string     `json:"email"`
	FirstName            string     `json:"firstName"`
	LastName             string     `json:"lastName"`
	StripeCustomerID     *string    `json:"stripeCustomerId,omitempty"`
	PlanType             *string    `json:"planType,omitempty"`
	Status               *string    `json:"status,omitempty"`
	StripeSubscriptionID *string    `json:"stripeSubscriptionId,omitempty"`
	CurrentPeriodEnd     *time.Time `json:"currentPeriodEnd,omitempty"`
}

type AdminEvent struct {
	ID            uint      `json:"id"`
	StripeEventID string    `json:"stripeEventId"`
	EventType     string    `json:"eventType"`
	Known         bool      `json:"known"`
	ReceivedAt    time.Time `json:"receivedAt"`
}

type AdminStats struct {
	TotalUsers            int64            `json:"totalUsers"`
	SubscriptionsByPlan   map[string]int64 `json:"subscriptionsByPlan"`
	SubscriptionsByStatus map[string]int64 `json:"subscriptionsByStatus"`
	EventsByType          map[string]int64 `json:"eventsByType"`
	EventsLast24h         int64            `json:"eventsLast24h"`
}

type Handler struct {
	db  *gorm.DB
	log logrus.FieldLogger
	now func() time.Time
}

func NewHandler(db *gorm.DB, log logrus.FieldLogger) *Handler {
	return &Handler{db: db, log: log, now: time.Now}
}

func (h *Handler) ListUsers(c *gin.Context) {
	var out []AdminUser
	err := h.db.WithContext(c.Request.Context()).
		Table("users").
		Select(`users.id, users.email, users.first_name, users.last_name, users.stripe_customer_id,
			subscriptions.plan_type, subscriptions.status, subscriptions.stripe_subscription_id,
			subscriptions.current_period_end`).
		Joins("LEFT JOIN subscriptions ON subscriptions.user_id = users.id").
		Order("users.id ASC").
		Scan(&out).Error
	if err != nil {
		h.log.WithError(err).Error("admin list users")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load users"})
		return
	}
	if out == nil {
		out = []AdminUser{}
	}

	c.JSON(http.StatusOK, out)
}

func (h *Handler) GetUserDetails(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}
	db := h.db.WithContext(c.Request.Context())

	var user users.User
	if err := db.First(&user, uint(userID)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		h.log.WithError(err).Error("admin load user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user"})
		return
	}

	var subs []billing.Subscription
	if err := db.Where("user_id = ?", user.ID).Find(&subs).Error; err != nil {
		h.log.WithError(err).Error("admin load subscription")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch subscription"})
		return
	}

	var sub *billing.Subscription
	if len(subs) > 0 {
		sub = &subs[0]
	}
	c.JSON(http.StatusOK, gin.H{
		"user":         user,
		"subscription": sub,
	})
}

// ListBillingEvents pages through the webhook event log, newest first.
// Payloads are omitted; ?type= filters on the raw event type.
func (h *Handler) ListBillingEvents(c *gin.Context) {
	limit := defaultEventLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		if n > maxEventLimit {
			n = maxEventLimit
		}
		limit = n
	}

	q := h.db.WithContext(c.Request.Context()).
		Model(&billing.Event{}).
		Select("id, stripe_event_id, event_type, received_at").
		Order("received_at DESC, id DESC").
		Limit(limit)
	if t := c.Query("type"); t != "" {
		q = q.Where("event_type = ?", t)
	}

	var events []billing.Event
	if err := q.Find(&events).Error; err != nil {
		h.log.WithError(err).Error("admin list billing events")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load billing events"})
		return
	}

	out := make([]AdminEvent, 0, len(events))
	for _, e := range events {
		out = append(out, AdminEvent{
			ID:            e.ID,
			StripeEventID: e.StripeEventID,
			EventType:     string(e.EventType),
			Known:         e.EventType.Known(),
			ReceivedAt:    e.ReceivedAt,
		})
	}
	c.JSON(http.StatusOK, out)
}

// GetBillingEvent returns one logged event including its payload.
func (h *Handler) GetBillingEvent(c *gin.Context) {
	var ev billing.Event
	err := h.db.WithContext(c.Request.Context()).
		Where("stripe_event_id = ?", c.Param("eventId")).
		First(&ev).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		return
	}
	if err != nil {
		h.log.WithError(err).Error("admin load billing event")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load billing event"})
		return
	}
	c.JSON(http.StatusOK, ev)
}

func (h *Handler) GetStats(c *gin.Context) {
	db := h.db.WithContext(c.Request.Context())
	stats := AdminStats{
		SubscriptionsByPlan:   map[string]int64{},
		SubscriptionsByStatus: map[string]int64{},
		EventsByType:          map[string]int64{},
	}

	type bucket struct {
		Name  string
		Count int64
	}
	group := func(model interface{}, column string, into map[string]int64) error {
		var rows []bucket
		if err := db.Model(model).
			Select(column + " AS name, COUNT(*) AS count").
			Group(column).
			Scan(&rows).Error; err != nil {
			return errors.Wrapf(err, "count by %s", column)
		}
		for _, r := range rows {
			into[r.Name] = r.Count
		}
		return nil
	}

	err := db.Model(&users.User{}).Count(&stats.TotalUsers).Error
	if err == nil {
		err = group(&billing.Subscription{}, "plan_type", stats.SubscriptionsByPlan)
	}
	if err == nil {
		err = group(&billing.Subscription{}, "status", stats.SubscriptionsByStatus)
	}
	if err == nil {
		err = group(&billing.Event{}, "event_type", stats.EventsByType)
	}
	if err == nil {
		err = db.Model(&billing.Event{}).
			Where("received_at >= ?", h.now().Add(-24*time.Hour)).
			Count(&stats.EventsLast24h).Error
	}
	if err != nil {
		h.log.WithError(err).Error("admin stats")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}
