package handlers

import (
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func routeSet(r *gin.Engine) map[string]bool {
	set := map[string]bool{}
	for _, rt := range r.Routes() {
		set[rt.Method+" "+rt.Path] = true
	}
	return set
}

func TestRegisterSubscriptionRoutes_RegistersEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterSubscriptionRoutes(r.Group("/api/v1"), nil)

	routes := routeSet(r)
	require.True(t, routes["POST /api/v1/subscriptions/setup"])
	require.True(t, routes["POST /api/v1/subscriptions/confirm"])
	require.True(t, routes["GET /api/v1/subscriptions"])
	require.True(t, routes["PATCH /api/v1/subscriptions/:id"])
	require.True(t, routes["DELETE /api/v1/subscriptions/:id"])
}

func TestRegisterAdminBatchRoutes_RegistersEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterAdminBatchRoutes(r.Group("/api/v1/admin"), nil)

	routes := routeSet(r)
	require.True(t, routes["POST /api/v1/admin/batches"])
	require.True(t, routes["GET /api/v1/admin/batches"])
	require.True(t, routes["PATCH /api/v1/admin/batches/:id"])
	require.True(t, routes["DELETE /api/v1/admin/batches/:id"])
}

func TestRegisterPaymentWebhookRoutes_RegistersEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterPaymentWebhookRoutes(r.Group("/webhook"), nil)

	routes := routeSet(r)
	require.True(t, routes["POST /webhook/payments"])
}
