package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ovenline/bakehouse/internal/app/service/paymentevent"
	"github.com/ovenline/bakehouse/internal/platform/payments"
	"github.com/ovenline/bakehouse/pkg/logctx"
	"github.com/ovenline/bakehouse/pkg/response"
	"github.com/ovenline/bakehouse/pkg/types"
)

// @Summary      Payment provider webhook
// @Description  Receives signed payment confirmation events. Replays are acknowledged without reprocessing.
// @Tags         Webhook
// @Accept       json
// @Produce      json
// @Param        Payment-Signature header string true "Event signature"
// @Success      200  {object}  handlers.RespOK
// @Failure      400  {object}  handlers.RespOK
// @Router       /webhook/payments [post]
func ApiPaymentWebhook(gate *paymentevent.Gate) gin.HandlerFunc {
	return func(c *gin.Context) {
		payload, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, "failed to read body"))
			return
		}

		res, err := gate.HandleEvent(c.Request.Context(), types.PaymentProviderStripe, payload, c.GetHeader("Payment-Signature"))
		if err != nil {
			if errors.Is(err, payments.ErrSignature) {
				// No detail: a forger learns nothing about why it was rejected.
				logctx.FromCtx(c, gate.Logger).Warnw("webhook_signature_rejected")
				c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, "invalid signature"))
				return
			}
			if errors.Is(err, paymentevent.ErrBadPayload) {
				c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
				return
			}
			// Transient failure: non-2xx so the provider redelivers.
			logctx.FromCtx(c, gate.Logger).Errorw("webhook_handle_error", "error", err.Error())
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

func RegisterPaymentWebhookRoutes(r gin.IRouter, gate *paymentevent.Gate) {
	r.POST("/payments", ApiPaymentWebhook(gate))
}
