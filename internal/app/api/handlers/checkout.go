package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	mw "github.com/ovenline/bakehouse/internal/app/api/middleware"
	ordersvc "github.com/ovenline/bakehouse/internal/app/service/order"
	"github.com/ovenline/bakehouse/pkg/response"
)

type checkoutSessionResp struct {
	URL string `json:"url"`
}

// @Summary      Create checkout session
// @Description  Validates the cart against current availability and opens a hosted payment session. Prices are re-derived server side.
// @Tags         Checkout
// @Accept       json
// @Produce      json
// @Param        request body ordersvc.CheckoutRequest true "Cart contents"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/checkout/session [post]
func ApiCreateCheckoutSession(svc *ordersvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ordersvc.CheckoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}

		url, err := svc.CreateCheckoutSession(c.Request.Context(), c.GetString(mw.CtxUserIDKey), c.GetString(mw.CtxUserEmailKey), &req)
		if err != nil {
			var oversold *ordersvc.OversoldError
			if errors.As(err, &oversold) {
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
				return
			}
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(checkoutSessionResp{URL: url}))
	}
}

// @Summary      List my orders
// @Description  Returns the caller's orders, newest first.
// @Tags         Checkout
// @Produce      json
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/orders [get]
func ApiListMyOrders(svc *ordersvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		orders, err := svc.ListUserOrders(c.Request.Context(), c.GetString(mw.CtxUserIDKey))
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(orders))
	}
}

func RegisterCheckoutRoutes(r gin.IRouter, svc *ordersvc.Service) {
	r.POST("/checkout/session", ApiCreateCheckoutSession(svc))
	r.GET("/orders", ApiListMyOrders(svc))
}
