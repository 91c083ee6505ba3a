package posts

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"socialhub-app/internal/app/http/middleware"
	"socialhub-app/internal/domain/access"
	"socialhub-app/internal/domain/posts"
	"socialhub-app/internal/infra/ayrshare"
)

type createPostRequest struct {
	Post         string   `json:"post"`
	Platforms    []string `json:"platforms"`
	MediaURLs    []string `json:"mediaUrls"`
	ScheduleDate string   `json:"scheduleDate"`
	AutoSchedule bool     `json:"autoSchedule"`
}

func (h *Handler) CreatePost(c *gin.Context) {
	var body createPostRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	body.Post = strings.TrimSpace(body.Post)
	if body.Post == "" || len(body.Platforms) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Post content and platforms are required"})
		return
	}

	var scheduledAt *time.Time
	if body.ScheduleDate != "" {
		t, err := time.Parse(time.RFC3339, body.ScheduleDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "scheduleDate must be RFC3339"})
			return
		}
		t = t.UTC()
		scheduledAt = &t
	}

	policy, ok := middleware.LoadPolicy(c, h.subs, h.log)
	if !ok {
		return
	}
	if scheduledAt != nil && !policy.Allows(access.CapabilitySchedule) {
		c.JSON(http.StatusPaymentRequired, gin.H{"error": "Your plan does not include scheduling", "plan": policy.Plan})
		return
	}
	if policy.MaxPlatforms != access.Unlimited && len(body.Platforms) > policy.MaxPlatforms {
		c.JSON(http.StatusPaymentRequired, gin.H{
			"error":        "Too many platforms for your plan",
			"plan":         policy.Plan,
			"maxPlatforms": policy.MaxPlatforms,
		})
		return
	}

	user := middleware.CurrentUser(c)
	req := ayrshare.PostRequest{
		Post:         body.Post,
		Platforms:    body.Platforms,
		MediaURLs:    body.MediaURLs,
		AutoSchedule: body.AutoSchedule,
	}

	var (
		resp *ayrshare.PostResponse
		err  error
	)
	if scheduledAt != nil {
		req.ScheduleDate = scheduledAt.Format(time.RFC3339)
		resp, err = h.publisher.SchedulePost(c.Request.Context(), req)
	} else {
		resp, err = h.publisher.PostContent(c.Request.Context(), req)
	}
	if err != nil {
		h.upstreamError(c, err, "Failed to publish post")
		return
	}

	post := posts.Post{
		UserID:         user.ID,
		AyrsharePostID: resp.ID,
		Content:        body.Post,
		Platforms:      body.Platforms,
		MediaURLs:      body.MediaURLs,
	}
	if scheduledAt != nil {
		post.Status = posts.StatusScheduled
		post.ScheduledAt = scheduledAt
	} else {
		now := h.now().UTC()
		post.Status = posts.StatusPublished
		post.PublishedAt = &now
	}

	if err := h.db.WithContext(c.Request.Context()).Create(&post).Error; err != nil {
		// Already sent upstream; the caller still gets the Ayrshare answer.
		h.log.WithError(err).WithFields(logrus.Fields{
			"user_id":          user.ID,
			"ayrshare_post_id": resp.ID,
		}).Error("store post")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Post sent but could not be saved", "ayrshareResponse": resp.Raw})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"post":             post,
		"ayrshareResponse": resp.Raw,
	})
}

func (h *Handler) ListPosts(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var out []posts.Post
	if err := h.db.WithContext(c.Request.Context()).
		Where("user_id = ?", user.ID).
		Order("created_at DESC, id DESC").
		Limit(100).
		Find(&out).Error; err != nil {
		h.log.WithError(err).Error("list posts")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load posts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"posts": out})
}

func (h *Handler) ListScheduled(c *gin.Context) {
	raw, err := h.publisher.GetScheduledPosts(c.Request.Context())
	if err != nil {
		h.upstreamError(c, err, "Failed to load scheduled posts")
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", raw)
}

// DeleteScheduled cancels one of the caller's scheduled posts. The id is the
// Ayrshare post id.
func (h *Handler) DeleteScheduled(c *gin.Context) {
	user := middleware.CurrentUser(c)
	ayrshareID := c.Param("id")

	var post posts.Post
	err := h.db.WithContext(c.Request.Context()).
		Where("user_id = ? AND ayrshare_post_id = ?", user.ID, ayrshareID).
		First(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Scheduled post not found"})
		return
	}
	if err != nil {
		h.log.WithError(err).Error("load post")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load post"})
		return
	}
	if post.Status != posts.StatusScheduled {
		c.JSON(http.StatusConflict, gin.H{"error": "Post is not scheduled", "status": post.Status})
		return
	}

	raw, err := h.publisher.DeleteScheduledPost(c.Request.Context(), ayrshareID)
	if err != nil {
		h.upstreamError(c, err, "Failed to delete scheduled post")
		return
	}

	if err := h.db.WithContext(c.Request.Context()).
		Model(&post).
		Update("status", posts.StatusCanceled).Error; err != nil {
		h.log.WithError(err).WithField("post_id", post.ID).Error("mark post canceled")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update post"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "ayrshareResponse": raw})
}
