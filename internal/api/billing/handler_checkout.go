package billing

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"socialhub-app/internal/app/http/middleware"
	stripeinfra "socialhub-app/internal/infra/stripe"
)

type checkoutRequest struct {
	PriceID    string `json:"priceId"`
	SuccessURL string `json:"successUrl"`
	CancelURL  string `json:"cancelUrl"`
}

func (h *Handler) CreateCheckoutSession(c *gin.Context) {
	var body checkoutRequest
	if err := c.ShouldBindJSON(&body); err != nil || strings.TrimSpace(body.PriceID) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Price ID is required"})
		return
	}

	// allow-list price id
	if !h.catalog.Knows(body.PriceID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown price ID"})
		return
	}

	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not identified"})
		return
	}
	log := h.log.WithField("user_id", user.ID)
	ctx := c.Request.Context()

	// ensure stripe customer
	if user.StripeCustomerID == nil || *user.StripeCustomerID == "" {
		customerID, err := h.gateway.CreateCustomer(ctx, user.Email, user.ExternalAuthID)
		if err != nil {
			log.WithError(err).Error("create stripe customer")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Stripe customer"})
			return
		}
		if err := h.customers.SetStripeCustomerID(ctx, user.ID, customerID); err != nil {
			log.WithError(err).Error("store stripe customer")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store Stripe customer"})
			return
		}
		user.StripeCustomerID = &customerID
	}

	successURL := body.SuccessURL
	if successURL == "" {
		successURL = h.appURL + "/dashboard?success=true"
	}
	cancelURL := body.CancelURL
	if cancelURL == "" {
		cancelURL = h.appURL + "/dashboard?canceled=true"
	}

	s, err := h.gateway.CreateCheckoutSession(ctx, stripeinfra.CheckoutRequest{
		CustomerID: *user.StripeCustomerID,
		PriceID:    body.PriceID,
		AuthUserID: user.ExternalAuthID,
		SuccessURL: successURL,
		CancelURL:  cancelURL,
	})
	if err != nil {
		log.WithError(err).Error("create checkout session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create checkout session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"sessionId": s.ID, "url": s.URL})
}
