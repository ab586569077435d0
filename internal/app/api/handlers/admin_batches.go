package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	batchsvc "github.com/ovenline/bakehouse/internal/app/service/batch"
	"github.com/ovenline/bakehouse/pkg/response"
)

// @Summary      Create batch (Admin)
// @Description  Schedules a production run for a product and date. One batch per product per date.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body batchsvc.CreateBatchRequest true "Batch to create"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/admin/batches [post]
func ApiCreateBatch(svc *batchsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req batchsvc.CreateBatchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		b, err := svc.Create(c.Request.Context(), &req)
		if err != nil {
			if errors.Is(err, batchsvc.ErrBatchExists) {
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
				return
			}
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(b))
	}
}

// @Summary      List batches (Admin)
// @Tags         Admin
// @Produce      json
// @Param        from query string false "Start date (YYYY-MM-DD)"
// @Param        to query string false "End date (YYYY-MM-DD)"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/admin/batches [get]
func ApiListBatches(svc *batchsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
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
		batches, err := svc.List(c.Request.Context(), from, to)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(batches))
	}
}

// @Summary      Update batch (Admin)
// @Description  Adjusts capacity or the subscription cap. Capacity can never drop below units already sold.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        id path string true "Batch ID"
// @Param        request body batchsvc.UpdateBatchRequest true "Fields to change"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/admin/batches/{id} [patch]
func ApiUpdateBatch(svc *batchsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req batchsvc.UpdateBatchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		b, err := svc.Update(c.Request.Context(), c.Param("id"), &req)
		if err != nil {
			var capErr *batchsvc.CapacityReductionError
			if errors.Is(err, batchsvc.ErrBatchNotFound) || errors.As(err, &capErr) {
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
				return
			}
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(b))
	}
}

// @Summary      Delete batch (Admin)
// @Description  Removes an unsold batch. Batches with sales are immutable history.
// @Tags         Admin
// @Produce      json
// @Param        id path string true "Batch ID"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/admin/batches/{id} [delete]
func ApiDeleteBatch(svc *batchsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
			if errors.Is(err, batchsvc.ErrBatchNotFound) || errors.Is(err, batchsvc.ErrBatchHasSales) {
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
				return
			}
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT[any](nil))
	}
}

func RegisterAdminBatchRoutes(r gin.IRouter, svc *batchsvc.Service) {
	r.POST("/batches", ApiCreateBatch(svc))
	r.GET("/batches", ApiListBatches(svc))
	r.PATCH("/batches/:id", ApiUpdateBatch(svc))
	r.DELETE("/batches/:id", ApiDeleteBatch(svc))
}
