package users

import "time"

type User struct {
	ID uint `gorm:"primaryKey" json:"id"`

	// Subject of the auth provider's session token.
	ExternalAuthID string `gorm:"column:external_auth_id;not null;uniqueIndex:idx_users_external_auth_id" json:"externalAuthId"`

	Email     string `gorm:"not null;index:idx_users_email" json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	ImageURL  string `json:"imageUrl"`

	// Set on the first payment interaction; links Stripe events back to the user.
	StripeCustomerID *string `gorm:"column:stripe_customer_id;uniqueIndex:idx_users_stripe_customer_id" json:"stripeCustomerId,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
