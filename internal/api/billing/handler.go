package billing

import (
	"context"

	"github.com/sirupsen/logrus"

	"socialhub-app/internal/domain/plans"
	stripeinfra "socialhub-app/internal/infra/stripe"
)

// Gateway is the subset of the Stripe API the billing routes call.
type Gateway interface {
	CreateCustomer(ctx context.Context, email, authUserID string) (string, error)
	CreateCheckoutSession(ctx context.Context, req stripeinfra.CheckoutRequest) (*stripeinfra.CheckoutSession, error)
	CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error)
}

type CustomerLinker interface {
	SetStripeCustomerID(ctx context.Context, userID uint, customerID string) error
}

type Handler struct {
	gateway   Gateway
	customers CustomerLinker
	catalog   *plans.Catalog
	appURL    string
	log       logrus.FieldLogger
}

func NewHandler(gateway Gateway, customers CustomerLinker, catalog *plans.Catalog, appURL string, log logrus.FieldLogger) *Handler {
	return &Handler{
		gateway:   gateway,
		customers: customers,
		catalog:   catalog,
		appURL:    appURL,
		log:       log,
	}
}
