package billingsync

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"socialhub-app/internal/domain/billing"
	"socialhub-app/internal/domain/plans"
	"socialhub-app/internal/domain/users"
)

type gormUnitOfWork struct {
	db *gorm.DB
}

// NewGormUnitOfWork runs every unit in one database transaction.
func NewGormUnitOfWork(db *gorm.DB) UnitOfWork {
	return &gormUnitOfWork{db: db}
}

func (u *gormUnitOfWork) Do(ctx context.Context, fn func(r Repositories) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewGormRepositories(tx))
	})
}

// NewGormRepositories binds all stores to db (a plain handle or a transaction).
func NewGormRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Events:        &GormEventStore{db: db},
		Users:         &GormUserDirectory{db: db},
		Subscriptions: &GormSubscriptionStore{db: db},
	}
}

type GormEventStore struct {
	db *gorm.DB
}

func (s *GormEventStore) Append(ctx context.Context, ev *billing.Event) (AppendResult, error) {
	tx := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "stripe_event_id"}},
		DoNothing: true,
	}).Create(ev)
	if tx.Error != nil {
		return Inserted, errors.Wrapf(tx.Error, "append billing event %s", ev.StripeEventID)
	}
	if tx.RowsAffected == 0 {
		return Duplicate, nil
	}
	return Inserted, nil
}

type GormUserDirectory struct {
	db *gorm.DB
}

func (d *GormUserDirectory) FindUserByEmail(ctx context.Context, email string) (*users.User, error) {
	return d.first(ctx, "email = ?", email)
}

func (d *GormUserDirectory) FindUserByStripeCustomerID(ctx context.Context, customerID string) (*users.User, error) {
	return d.first(ctx, "stripe_customer_id = ?", customerID)
}

func (d *GormUserDirectory) first(ctx context.Context, query string, arg string) (*users.User, error) {
	if arg == "" {
		return nil, nil
	}
	var u users.User
	err := d.db.WithContext(ctx).Where(query, arg).Order("id ASC").First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "find user")
	}
	return &u, nil
}

func (d *GormUserDirectory) SetStripeCustomerID(ctx context.Context, userID uint, customerID string) error {
	err := d.db.WithContext(ctx).Model(&users.User{}).
		Where("id = ?", userID).
		Update("stripe_customer_id", customerID).Error
	return errors.Wrapf(err, "link user %d to stripe customer", userID)
}

type GormSubscriptionStore struct {
	db *gorm.DB
}

func (s *GormSubscriptionStore) ReplaceForUser(ctx context.Context, sub *billing.Subscription) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"stripe_customer_id",
			"stripe_subscription_id",
			"stripe_price_id",
			"plan_type",
			"status",
			"current_period_end",
			"updated_at",
		}),
	}).Create(sub).Error
	return errors.Wrapf(err, "replace subscription for user %d", sub.UserID)
}

func (s *GormSubscriptionStore) ReleaseStripeSubscription(ctx context.Context, stripeSubscriptionID string, keepUserID uint) (int64, error) {
	if stripeSubscriptionID == "" {
		return 0, nil
	}
	tx := s.db.WithContext(ctx).Model(&billing.Subscription{}).
		Where("stripe_subscription_id = ? AND user_id <> ?", stripeSubscriptionID, keepUserID).
		Updates(map[string]interface{}{
			"stripe_subscription_id": nil,
			"stripe_price_id":        nil,
			"plan_type":              plans.PlanFree,
			"status":                 billing.StatusCanceled,
		})
	if tx.Error != nil {
		return 0, errors.Wrapf(tx.Error, "release subscription %s", stripeSubscriptionID)
	}
	return tx.RowsAffected, nil
}

func (s *GormSubscriptionStore) UpdateByStripeSubscriptionID(ctx context.Context, stripeSubscriptionID string, u SubscriptionUpdate) (bool, error) {
	cols := u.columns()
	if stripeSubscriptionID == "" || len(cols) == 0 {
		return false, nil
	}

	tx := s.db.WithContext(ctx).Model(&billing.Subscription{}).
		Where("stripe_subscription_id = ?", stripeSubscriptionID).
		Updates(cols)
	if tx.Error != nil {
		return false, errors.Wrapf(tx.Error, "update subscription %s", stripeSubscriptionID)
	}
	return tx.RowsAffected > 0, nil
}

func (s *GormSubscriptionStore) FindByUserID(ctx context.Context, userID uint) (*billing.Subscription, error) {
	var sub billing.Subscription
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "find subscription")
	}
	return &sub, nil
}
