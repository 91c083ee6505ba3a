package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"socialhub-app/internal/domain/users"
	"socialhub-app/internal/infra/authn"
)

const (
	CtxAuthSubject = "auth_sub"
	CtxEmail       = "email"
	CtxUser        = "user"
	CtxUserID      = "user_id"
)

// AuthMiddleware verifies the bearer session token and stores its subject
// and email in the gin context.
func AuthMiddleware(verifier authn.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader || strings.TrimSpace(tokenString) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Bearer token malformed"})
			return
		}

		claims, err := verifier.Verify(c.Request.Context(), strings.TrimSpace(tokenString))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(CtxAuthSubject, claims.Subject)
		if claims.Email != "" {
			c.Set(CtxEmail, claims.Email)
		}
		c.Next()
	}
}

// RequireUser loads the local user for the authenticated subject. Users that
// have not been synced yet get 404.
func RequireUser(db *gorm.DB, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sub := c.GetString(CtxAuthSubject)
		if sub == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		var user users.User
		err := db.WithContext(c.Request.Context()).Where("external_auth_id = ?", sub).First(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		if err != nil {
			log.WithError(err).Error("load user")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user"})
			return
		}

		c.Set(CtxUser, &user)
		c.Set(CtxUserID, user.ID)
		c.Next()
	}
}

// CurrentUser returns the user stored by RequireUser.
func CurrentUser(c *gin.Context) *users.User {
	v, ok := c.Get(CtxUser)
	if !ok {
		return nil
	}
	u, _ := v.(*users.User)
	return u
}

// RequireAdmin allows only the configured operator subjects.
func RequireAdmin(subjects []string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(subjects))
	for _, s := range subjects {
		if s = strings.TrimSpace(s); s != "" {
			allowed[s] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		if _, ok := allowed[c.GetString(CtxAuthSubject)]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied"})
			return
		}
		c.Next()
	}
}
