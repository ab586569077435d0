package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	batchsvc "github.com/ovenline/bakehouse/internal/app/service/batch"
	"github.com/ovenline/bakehouse/pkg/response"
)

func parseDateQuery(c *gin.Context, key string) (*time.Time, bool) {
	v := c.Query(key)
	if v == "" {
		return nil, true
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return nil, false
	}
	return &t, true
}

// @Summary      Batch availability
// @Description  Returns purchasable dates and remaining quantities for a product. Defaults to the next 90 days.
// @Tags         Catalog
// @Produce      json
// @Param        product_id query string true "Product ID"
// @Param        from query string false "Start date (YYYY-MM-DD)"
// @Param        to query string false "End date (YYYY-MM-DD)"
// @Success      200  {object}  handlers.RespAvailability
// @Router       /api/v1/availability [get]
func ApiAvailability(svc *batchsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		productID := c.Query("product_id")
		if productID == "" {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "missing product_id"))
			return
		}
		from, ok := parseDateQuery(c, "from")
		if !ok {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "invalid from date"))
			return
		}
		to, ok := parseDateQuery(c, "to")
		if !ok {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "invalid to date"))
			return
		}

		slots, err := svc.Availability(c.Request.Context(), productID, from, to)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(slots))
	}
}

func RegisterAvailabilityRoutes(r gin.IRouter, svc *batchsvc.Service) {
	r.GET("/availability", ApiAvailability(svc))
}
