package stripewebhooks

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"socialhub-app/internal/billingsync"
	"socialhub-app/internal/domain/billing"
)

const maxBodyBytes = 65536

type EventVerifier interface {
	Verify(payload []byte, signatureHeader string) (*billing.Event, error)
}

type EventReconciler interface {
	Reconcile(ctx context.Context, ev *billing.Event) (billingsync.Outcome, error)
}

type Handler struct {
	verifier   EventVerifier
	reconciler EventReconciler
	log        logrus.FieldLogger
}

func NewHandler(verifier EventVerifier, reconciler EventReconciler, log logrus.FieldLogger) *Handler {
	return &Handler{
		verifier:   verifier,
		reconciler: reconciler,
		log:        log,
	}
}

// StripeWebhook acknowledges with 200 only once the event is durably recorded
// and projected (or was already). Anything else makes Stripe retry.
func (h *Handler) StripeWebhook(c *gin.Context) {
	payload, err := readStripeBody(c, maxBodyBytes)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Error reading request body"})
		return
	}

	ev, err := h.verifier.Verify(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		if errors.Is(err, billing.ErrInvalidSignature) {
			h.log.WithError(err).Warn("stripe signature verification failed")
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid signature"})
			return
		}
		h.log.WithError(err).Warn("unreadable stripe event")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse event"})
		return
	}

	outcome, err := h.reconciler.Reconcile(c.Request.Context(), ev)
	if err != nil {
		log := h.log.WithError(err).WithFields(logrus.Fields{
			"event_id":   ev.StripeEventID,
			"event_type": ev.EventType,
		})
		if billingsync.IsClientError(err) {
			log.Warn("rejected stripe event")
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse event"})
			return
		}
		log.Error("stripe webhook processing failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Webhook processing failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true, "outcome": outcome})
}

func readStripeBody(c *gin.Context, maxBytes int64) ([]byte, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
	return io.ReadAll(c.Request.Body)
}
