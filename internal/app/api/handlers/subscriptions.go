package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	mw "github.com/ovenline/bakehouse/internal/app/api/middleware"
	subsvc "github.com/ovenline/bakehouse/internal/app/service/subscription"
	"github.com/ovenline/bakehouse/pkg/response"
)

type setupSessionResp struct {
	URL string `json:"url"`
}

// @Summary      Start subscription setup
// @Description  Opens a card-on-file session for a new recurring standing order. No charge happens here.
// @Tags         Subscription
// @Accept       json
// @Produce      json
// @Param        request body subsvc.SetupRequest true "Subscription parameters"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/subscriptions/setup [post]
func ApiSubscriptionSetup(svc *subsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req subsvc.SetupRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		url, err := svc.Setup(c.Request.Context(), c.GetString(mw.CtxUserIDKey), c.GetString(mw.CtxUserEmailKey), &req)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(setupSessionResp{URL: url}))
	}
}

type confirmSubscriptionReq struct {
	SessionID string `json:"session_id" binding:"required"`
}

// @Summary      Confirm subscription setup
// @Description  Finalizes a completed setup session into a live subscription. Idempotent per saved payment method.
// @Tags         Subscription
// @Accept       json
// @Produce      json
// @Param        request body confirmSubscriptionReq true "Completed setup session"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/subscriptions/confirm [post]
func ApiSubscriptionConfirm(svc *subsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req confirmSubscriptionReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		sub, err := svc.Confirm(c.Request.Context(), c.GetString(mw.CtxUserIDKey), req.SessionID)
		if err != nil {
			if errors.Is(err, subsvc.ErrSetupIncomplete) || errors.Is(err, subsvc.ErrSubscriptionNotFound) {
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
				return
			}
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(sub))
	}
}

// @Summary      List my subscriptions
// @Tags         Subscription
// @Produce      json
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/subscriptions [get]
func ApiListSubscriptions(svc *subsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		subs, err := svc.ListForUser(c.Request.Context(), c.GetString(mw.CtxUserIDKey))
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(subs))
	}
}

// @Summary      Update my subscription
// @Description  Changes quantity and/or pauses or resumes a subscription. Resuming resets the failure counter.
// @Tags         Subscription
// @Accept       json
// @Produce      json
// @Param        id path string true "Subscription ID"
// @Param        request body subsvc.UpdateRequest true "Fields to change"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/subscriptions/{id} [patch]
func ApiUpdateSubscription(svc *subsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req subsvc.UpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		sub, err := svc.Update(c.Request.Context(), c.GetString(mw.CtxUserIDKey), c.Param("id"), &req)
		if err != nil {
			if errors.Is(err, subsvc.ErrSubscriptionNotFound) {
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
				return
			}
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(sub))
	}
}

// @Summary      Cancel my subscription
// @Description  Soft-cancels a subscription. Order history is retained.
// @Tags         Subscription
// @Produce      json
// @Param        id path string true "Subscription ID"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/subscriptions/{id} [delete]
func ApiCancelSubscription(svc *subsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Cancel(c.Request.Context(), c.GetString(mw.CtxUserIDKey), c.Param("id")); err != nil {
			if errors.Is(err, subsvc.ErrSubscriptionNotFound) {
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
				return
			}
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT[any](nil))
	}
}

func RegisterSubscriptionRoutes(r gin.IRouter, svc *subsvc.Service) {
	r.POST("/subscriptions/setup", ApiSubscriptionSetup(svc))
	r.POST("/subscriptions/confirm", ApiSubscriptionConfirm(svc))
	r.GET("/subscriptions", ApiListSubscriptions(svc))
	r.PATCH("/subscriptions/:id", ApiUpdateSubscription(svc))
	r.DELETE("/subscriptions/:id", ApiCancelSubscription(svc))
}
