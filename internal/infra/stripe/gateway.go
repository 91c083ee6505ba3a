package stripe

import (
	"context"

	"github.com/pkg/errors"
	stripeapi "github.com/stripe/stripe-go/v75"
	"github.com/stripe/stripe-go/v75/client"
)

type CheckoutRequest struct {
	CustomerID string
	PriceID    string
	AuthUserID string
	SuccessURL string
	CancelURL  string
}

type CheckoutSession struct {
	ID  string
	URL string
}

// Gateway wraps the Stripe API calls the app makes on behalf of a user.
// It owns its own client; nothing writes stripe.Key.
type Gateway struct {
	api *client.API
}

func NewGateway(secretKey string) *Gateway {
	return newGateway(secretKey, nil)
}

// newGateway with nil backends talks to api.stripe.com.
func newGateway(secretKey string, backends *stripeapi.Backends) *Gateway {
	sc := &client.API{}
	sc.Init(secretKey, backends)
	return &Gateway{api: sc}
}

func (g *Gateway) CreateCustomer(ctx context.Context, email, authUserID string) (string, error) {
	params := &stripeapi.CustomerParams{
		Email: stripeapi.String(email),
	}
	params.Context = ctx
	params.AddMetadata("auth_user_id", authUserID)

	cus, err := g.api.Customers.New(params)
	if err != nil {
		return "", errors.Wrap(err, "create stripe customer")
	}
	return cus.ID, nil
}

func (g *Gateway) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	params := &stripeapi.CheckoutSessionParams{
		Customer:           stripeapi.String(req.CustomerID),
		Mode:               stripeapi.String(string(stripeapi.CheckoutSessionModeSubscription)),
		PaymentMethodTypes: stripeapi.StringSlice([]string{"card"}),
		SuccessURL:         stripeapi.String(req.SuccessURL),
		CancelURL:          stripeapi.String(req.CancelURL),
		LineItems: []*stripeapi.CheckoutSessionLineItemParams{
			{Price: stripeapi.String(req.PriceID), Quantity: stripeapi.Int64(1)},
		},
		ClientReferenceID: stripeapi.String(req.AuthUserID),
	}
	params.Context = ctx
	params.AddMetadata("auth_user_id", req.AuthUserID)

	s, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, errors.Wrap(err, "create checkout session")
	}
	return &CheckoutSession{ID: s.ID, URL: s.URL}, nil
}

func (g *Gateway) CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error) {
	params := &stripeapi.BillingPortalSessionParams{
		Customer:  stripeapi.String(customerID),
		ReturnURL: stripeapi.String(returnURL),
	}
	params.Context = ctx

	portal, err := g.api.BillingPortalSessions.New(params)
	if err != nil {
		return "", errors.Wrap(err, "create billing portal session")
	}
	return portal.URL, nil
}
