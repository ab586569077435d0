package handlers

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ovenline/bakehouse/internal/app/service/billing"
	"github.com/ovenline/bakehouse/pkg/config"
	"github.com/ovenline/bakehouse/pkg/response"
)

// CronSecretMiddleware authorizes the external scheduler that triggers the
// billing sweep. Separate from user auth: the scheduler is a machine, not a
// logged-in admin.
func CronSecretMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		secret := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if cfg.Billing.CronSecret == "" ||
			subtle.ConstantTimeCompare([]byte(secret), []byte(cfg.Billing.CronSecret)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorT[any](response.APIResponseCodeBadRequest, "unauthorized"))
			return
		}
		c.Next()
	}
}

// @Summary      Run billing sweep
// @Description  Processes every active subscription due today. Idempotent; safe to re-trigger.
// @Tags         Billing
// @Produce      json
// @Param        date query string false "Override sweep date (YYYY-MM-DD), defaults to today"
// @Success      200  {object}  handlers.RespOK
// @Router       /internal/billing/run [post]
func ApiRunBillingSweep(sweep *billing.Sweep) gin.HandlerFunc {
	return func(c *gin.Context) {
		today := time.Now()
		if v := c.Query("date"); v != "" {
			parsed, err := time.Parse("2006-01-02", v)
			if err != nil {
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "invalid date"))
				return
			}
			today = parsed
		}

		summary, err := sweep.RunSweep(c.Request.Context(), today)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(summary))
	}
}

func RegisterBillingRoutes(r gin.IRouter, cfg *config.Config, sweep *billing.Sweep) {
	g := r.Group("/billing")
	g.Use(CronSecretMiddleware(cfg))
	g.POST("/run", ApiRunBillingSweep(sweep))
}
