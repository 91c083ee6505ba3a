package main

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"socialhub-app/config"
	"socialhub-app/database"
	routes "socialhub-app/internal/app/http"
	"socialhub-app/internal/billingsync"
	"socialhub-app/internal/domain/plans"
	"socialhub-app/internal/infra/authn"
	"socialhub-app/internal/infra/ayrshare"
	"socialhub-app/internal/infra/logging"
	stripeinfra "socialhub-app/internal/infra/stripe"
)

func main() {
	cfg, foundEnvFile, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}

	log := logging.New(cfg.LogLevel, cfg.IsProduction())
	if !foundEnvFile {
		log.Debug("no .env file, using process environment")
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Open(cfg.DBURL, log)
	if err != nil {
		log.WithError(err).Fatal("database unavailable")
	}

	catalog := plans.NewCatalog(cfg.StripePriceBasic, cfg.StripePricePro, cfg.StripePriceEnterprise)

	r := gin.New()
	r.Use(gin.Recovery(), logging.RequestLogger(log))

	// CORS before routes
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.CORSOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, routes.Deps{
		DB:         db,
		Log:        log,
		Auth:       newAuthVerifier(cfg, log),
		Catalog:    catalog,
		Webhook:    stripeinfra.NewWebhookVerifier(cfg.StripeWebhookSecret, cfg.StripeWebhookTolerance),
		Reconciler: billingsync.NewReconciler(billingsync.NewGormUnitOfWork(db), catalog, log),
		Gateway:    stripeinfra.NewGateway(cfg.StripeSecretKey),
		Publisher:  ayrshare.NewClient(cfg.AyrshareAPIURL, cfg.AyrshareAPIKey),
		AppURL:     cfg.AppURL,
		AdminIDs:   cfg.AdminAuthIDs,
	})

	log.WithField("port", cfg.Port).Info("listening")
	if err := r.Run(":" + cfg.Port); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}

func newAuthVerifier(cfg *config.Config, log logrus.FieldLogger) authn.Verifier {
	if cfg.AuthIssuerURL != "" {
		log.WithField("issuer", cfg.AuthIssuerURL).Info("verifying session tokens against issuer JWKS")
		return authn.NewOIDCVerifier(context.Background(), cfg.AuthIssuerURL, cfg.AuthJWKSURL)
	}
	log.Warn("AUTH_ISSUER_URL not set, using JWT_SECRET (development only)")
	return authn.NewHMACVerifier(cfg.JWTSecret)
}
