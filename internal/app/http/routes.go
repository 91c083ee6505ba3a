package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"socialhub-app/internal/api/admin"
	"socialhub-app/internal/api/billing"
	"socialhub-app/internal/api/plans"
	"socialhub-app/internal/api/posts"
	stripewebhooks "socialhub-app/internal/api/stripewebhook"
	"socialhub-app/internal/api/users"
	"socialhub-app/internal/app/http/middleware"
	"socialhub-app/internal/billingsync"
	"socialhub-app/internal/domain/access"
	planscatalog "socialhub-app/internal/domain/plans"
	"socialhub-app/internal/infra/authn"
)

// Deps is everything the route table needs; main builds it once.
type Deps struct {
	DB         *gorm.DB
	Log        logrus.FieldLogger
	Auth       authn.Verifier
	Catalog    *planscatalog.Catalog
	Webhook    stripewebhooks.EventVerifier
	Reconciler stripewebhooks.EventReconciler
	Gateway    billing.Gateway
	Publisher  posts.Publisher
	AppURL     string
	AdminIDs   []string
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	repos := billingsync.NewGormRepositories(d.DB)

	webhookHandler := stripewebhooks.NewHandler(d.Webhook, d.Reconciler, d.Log)
	userHandler := users.NewHandler(d.DB, repos.Subscriptions, d.Log)
	billingHandler := billing.NewHandler(d.Gateway, repos.Users, d.Catalog, d.AppURL, d.Log)
	postHandler := posts.NewHandler(d.DB, d.Publisher, repos.Subscriptions, d.Log)
	adminHandler := admin.NewHandler(d.DB, d.Log)

	// Raw body; must not go through the sanitizer.
	r.POST("/api/webhooks/stripe", webhookHandler.StripeWebhook)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/api/plans", plans.ListPlans(d.Catalog))

	// Authenticated, before the local user exists
	authed := r.Group("/api")
	authed.Use(middleware.AuthMiddleware(d.Auth))
	authed.POST("/users/sync", middleware.SanitizeAndCleanInputMiddleware(), userHandler.SyncUser)

	// Authenticated and synced
	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware(d.Auth), middleware.RequireUser(d.DB, d.Log))
	api.GET("/me", userHandler.GetCurrentUser)

	api.POST("/stripe/checkout", billingHandler.CreateCheckoutSession)
	api.POST("/stripe/portal", billingHandler.CreateBillingPortal)

	api.GET("/posts", postHandler.ListPosts)
	api.GET("/posts/scheduled", postHandler.ListScheduled)
	api.DELETE("/posts/scheduled/:id", postHandler.DeleteScheduled)
	api.GET("/accounts", postHandler.ListAccounts)
	api.POST("/accounts/connect", postHandler.ConnectAccount)

	// Plan-gated
	api.POST("/posts",
		middleware.RequireCapability(repos.Subscriptions, access.CapabilityPublish, d.Log),
		postHandler.CreatePost,
	)
	api.GET("/analytics/:postId",
		middleware.RequireCapability(repos.Subscriptions, access.CapabilityAnalytics, d.Log),
		postHandler.GetAnalytics,
	)

	// Operator routes
	ops := r.Group("/api/admin")
	ops.Use(middleware.AuthMiddleware(d.Auth), middleware.RequireAdmin(d.AdminIDs))
	ops.GET("/stats", adminHandler.GetStats)
	ops.GET("/users", adminHandler.ListUsers)
	ops.GET("/users/:id", adminHandler.GetUserDetails)
	ops.GET("/billing-events", adminHandler.ListBillingEvents)
	ops.GET("/billing-events/:eventId", adminHandler.GetBillingEvent)
}
