package posts

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"socialhub-app/internal/app/http/middleware"
	"socialhub-app/internal/infra/ayrshare"
)

// Publisher is the Ayrshare surface the routes use.
type Publisher interface {
	PostContent(ctx context.Context, req ayrshare.PostRequest) (*ayrshare.PostResponse, error)
	SchedulePost(ctx context.Context, req ayrshare.PostRequest) (*ayrshare.PostResponse, error)
	GetAnalytics(ctx context.Context, postID string) (json.RawMessage, error)
	GetAccounts(ctx context.Context) (json.RawMessage, error)
	ConnectAccount(ctx context.Context, platform string, authData map[string]interface{}) (json.RawMessage, error)
	GetScheduledPosts(ctx context.Context) (json.RawMessage, error)
	DeleteScheduledPost(ctx context.Context, postID string) (json.RawMessage, error)
}

type Handler struct {
	db        *gorm.DB
	publisher Publisher
	subs      middleware.SubscriptionReader
	log       logrus.FieldLogger
	now       func() time.Time
}

func NewHandler(db *gorm.DB, publisher Publisher, subs middleware.SubscriptionReader, log logrus.FieldLogger) *Handler {
	return &Handler{
		db:        db,
		publisher: publisher,
		subs:      subs,
		log:       log,
		now:       time.Now,
	}
}

// upstreamError maps an Ayrshare failure onto our response. Client errors are
// passed through so the caller sees e.g. an unlinked platform.
func (h *Handler) upstreamError(c *gin.Context, err error, msg string) {
	var apiErr *ayrshare.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
		c.JSON(apiErr.StatusCode, gin.H{"error": msg, "details": json.RawMessage(rawOrString(apiErr.Body))})
		return
	}
	h.log.WithError(err).Error(msg)
	c.JSON(http.StatusBadGateway, gin.H{"error": msg})
}

func rawOrString(body string) []byte {
	if json.Valid([]byte(body)) {
		return []byte(body)
	}
	quoted, _ := json.Marshal(body)
	return quoted
}
