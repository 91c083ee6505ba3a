package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socialhub-app/database/dbtest"
	"socialhub-app/internal/billingsync"
	"socialhub-app/internal/domain/plans"
	"socialhub-app/internal/infra/authn"
	"socialhub-app/internal/infra/ayrshare"
	stripeinfra "socialhub-app/internal/infra/stripe"
)

func TestRegisterRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := dbtest.Open(t)
	log, _ := logtest.NewNullLogger()
	catalog := plans.NewCatalog("price_basic", "price_pro", "price_enterprise")

	r := gin.New()
	RegisterRoutes(r, Deps{
		DB:         db,
		Log:        log,
		Auth:       authn.NewHMACVerifier("dev-secret"),
		Catalog:    catalog,
		Webhook:    stripeinfra.NewWebhookVerifier("whsec_test", 5*time.Minute),
		Reconciler: billingsync.NewReconciler(billingsync.NewGormUnitOfWork(db), catalog, log),
		Gateway:    stripeinfra.NewGateway("sk_test_unused"),
		Publisher:  ayrshare.NewClient("http://127.0.0.1:0", "unused"),
		AppURL:     "http://localhost:3000",
		AdminIDs:   []string{"user_ops"},
	})

	serve := func(method, path, token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, serve(http.MethodGet, "/health", "").Code)
	assert.Equal(t, http.StatusOK, serve(http.MethodGet, "/api/plans", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(http.MethodGet, "/api/me", "").Code)
	assert.Equal(t, http.StatusBadRequest, serve(http.MethodPost, "/api/webhooks/stripe", "").Code)

	token, err := authn.SignHMAC("dev-secret", "user_new", "new@example.com", time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, serve(http.MethodGet, "/api/me", token).Code, "not synced yet")
	assert.Equal(t, http.StatusForbidden, serve(http.MethodGet, "/api/admin/stats", token).Code)

	ops, err := authn.SignHMAC("dev-secret", "user_ops", "ops@example.com", time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, serve(http.MethodGet, "/api/admin/stats", ops).Code)
}
