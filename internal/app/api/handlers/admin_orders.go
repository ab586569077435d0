package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	ordersvc "github.com/ovenline/bakehouse/internal/app/service/order"
	"github.com/ovenline/bakehouse/internal/app/service/statistics"
	"github.com/ovenline/bakehouse/pkg/response"
)

// @Summary      List orders (Admin)
// @Description  Paginated and filterable listing of all orders.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body ordersvc.ScanOrdersRequest true "Filters, pagination, and sorting"
// @Success      200  {object}  handlers.RespScanOrders
// @Router       /api/v1/admin/orders/scan [post]
func ApiScanOrders(svc *ordersvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ordersvc.ScanOrdersRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		res, err := svc.ScanOrders(c.Request.Context(), &req)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

// @Summary      Sales statistics (Admin)
// @Description  Daily order counts, revenue, units sold, batch utilization, and subscription split.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body statistics.SalesStatisticRequest true "Requested series and date window"
// @Success      200  {object}  handlers.RespSalesStatistic
// @Router       /api/v1/admin/statistics [post]
func ApiGetSalesStatistics(svc *statistics.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req statistics.SalesStatisticRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		res, err := svc.GetSalesStatistics(c.Request.Context(), &req)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

func RegisterAdminOrderRoutes(r gin.IRouter, orders *ordersvc.Service, stats *statistics.Service) {
	r.POST("/orders/scan", ApiScanOrders(orders))
	r.POST("/statistics", ApiGetSalesStatistics(stats))
}
