package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"socialhub-app/internal/domain/access"
	"socialhub-app/internal/domain/billing"
)

type SubscriptionReader interface {
	FindByUserID(ctx context.Context, userID uint) (*billing.Subscription, error)
}

// RequireCapability rejects requests whose projected subscription does not
// grant capability. Must run after RequireUser.
func RequireCapability(subs SubscriptionReader, capability access.Capability, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		policy, ok := LoadPolicy(c, subs, log)
		if !ok {
			return
		}
		if !policy.Allows(capability) {
			c.AbortWithStatusJSON(http.StatusPaymentRequired, gin.H{
				"error":      "Your plan does not include this feature",
				"capability": capability,
				"plan":       policy.Plan,
			})
			return
		}
		c.Next()
	}
}

// LoadPolicy computes the caller's access policy. It writes the error
// response itself and returns false when that fails.
func LoadPolicy(c *gin.Context, subs SubscriptionReader, log logrus.FieldLogger) (access.Policy, bool) {
	userID := c.GetUint(CtxUserID)
	if userID == 0 {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not identified"})
		return access.Policy{}, false
	}

	sub, err := subs.FindByUserID(c.Request.Context(), userID)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("load subscription")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to load subscription"})
		return access.Policy{}, false
	}
	return access.ComputePolicy(time.Now(), sub), true
}
