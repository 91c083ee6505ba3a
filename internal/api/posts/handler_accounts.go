package posts

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type connectRequest struct {
	Platform string                 `json:"platform"`
	AuthData map[string]interface{} `json:"authData"`
}

func (h *Handler) ListAccounts(c *gin.Context) {
	raw, err := h.publisher.GetAccounts(c.Request.Context())
	if err != nil {
		h.upstreamError(c, err, "Failed to load accounts")
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", raw)
}

func (h *Handler) ConnectAccount(c *gin.Context) {
	var body connectRequest
	if err := c.ShouldBindJSON(&body); err != nil || strings.TrimSpace(body.Platform) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Platform is required"})
		return
	}

	raw, err := h.publisher.ConnectAccount(c.Request.Context(), body.Platform, body.AuthData)
	if err != nil {
		h.upstreamError(c, err, "Failed to connect account")
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", raw)
}

func (h *Handler) GetAnalytics(c *gin.Context) {
	postID := strings.TrimSpace(c.Param("postId"))
	if postID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Post ID is required"})
		return
	}

	raw, err := h.publisher.GetAnalytics(c.Request.Context(), postID)
	if err != nil {
		h.upstreamError(c, err, "Failed to load analytics")
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", raw)
}
