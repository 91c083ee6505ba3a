package users

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
	"socialhub-app/internal/domain/billing"
	"socialhub-app/internal/domain/users"
)

type Handler struct {
	db   *gorm.DB
	subs middleware.SubscriptionReader
	log  logrus.FieldLogger
	now  func() time.Time
}

func NewHandler(db *gorm.DB, subs middleware.SubscriptionReader, log logrus.FieldLogger) *Handler {
	return &Handler{db: db, subs: subs, log: log, now: time.Now}
}

// SyncUser mirrors the auth provider's profile into the local users table.
// New users get the default free subscription in the same transaction.
func (h *Handler) SyncUser(c *gin.Context) {
	sub := c.GetString(middleware.CtxAuthSubject)
	if sub == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req SyncUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		email = strings.ToLower(c.GetString(middleware.CtxEmail))
	}
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email is required"})
		return
	}

	var (
		user  users.User
		isNew bool
	)
	err := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("external_auth_id = ?", sub).First(&user).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			user = users.User{
				ExternalAuthID: sub,
				Email:          email,
				FirstName:      req.FirstName,
				LastName:       req.LastName,
				ImageURL:       req.ImageURL,
			}
			if err := tx.Create(&user).Error; err != nil {
				return errors.Wrap(err, "create user")
			}
			if err := tx.Create(billing.NewDefaultSubscription(user.ID)).Error; err != nil {
				return errors.Wrap(err, "create default subscription")
			}
			isNew = true
			return nil
		case err != nil:
			return errors.Wrap(err, "load user")
		}

		user.Email = email
		user.FirstName = req.FirstName
		user.LastName = req.LastName
		user.ImageURL = req.ImageURL
		return errors.Wrap(tx.Save(&user).Error, "update user")
	})
	if err != nil {
		h.log.WithError(err).WithField("auth_sub", sub).Error("user sync failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sync user"})
		return
	}

	if isNew {
		h.log.WithFields(logrus.Fields{"user_id": user.ID, "auth_sub": sub}).Info("user created")
	}
	c.JSON(http.StatusOK, SyncUserResponse{User: BuildUserDTO(user), IsNew: isNew})
}

func (h *Handler) GetCurrentUser(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	sub, err := h.subs.FindByUserID(c.Request.Context(), user.ID)
	if err != nil {
		h.log.WithError(err).WithField("user_id", user.ID).Error("load subscription")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load subscription"})
		return
	}

	now := h.now()
	policy := access.ComputePolicy(now, sub)

	c.JSON(http.StatusOK, MeResponse{
		User: BuildUserDTO(*user),
		Billing: BillingDTO{
			Plan:         BuildPlanDTO(policy, sub),
			Subscription: BuildSubscriptionDTO(now, sub),
		},
		Access: BuildAccessDTO(policy),
	})
}
