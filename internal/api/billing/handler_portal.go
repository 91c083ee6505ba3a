package billing

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"socialhub-app/internal/app/http/middleware"
)

func (h *Handler) CreateBillingPortal(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not identified"})
		return
	}
	if user.StripeCustomerID == nil || *user.StripeCustomerID == "" {
		c.JSON(http.StatusConflict, gin.H{"error": "No Stripe customer yet (subscribe first)"})
		return
	}

	url, err := h.gateway.CreatePortalSession(c.Request.Context(), *user.StripeCustomerID, h.appURL+"/dashboard")
	if err != nil {
		h.log.WithError(err).WithField("user_id", user.ID).Error("create billing portal session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create billing portal session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}
