package httpserver

import (
	"net/http"
	"strconv"

	"marketplace-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

func listOrdersHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
		offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

		userID := c.Query("userId")
		sellerID := c.Query("sellerId")
		ctx := c.Request.Context()

		var (
			orders []domain.Order
			err    error
		)
		switch {
		case userID != "":
			orders, err = deps.OrderSvc.ListByUser(ctx, userID, limit, offset)
		case sellerID != "":
			orders, err = deps.OrderSvc.ListBySeller(ctx, sellerID, limit, offset)
		default:
			badRequest(c, "userId or sellerId query parameter is required")
			return
		}
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"orders": orders})
	}
}

func getOrderHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		o, err := deps.OrderSvc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

func updateOrderStatusHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req statusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "status is required")
			return
		}
		o, err := deps.OrderSvc.UpdateStatus(c.Request.Context(), c.Param("id"), domain.OrderStatus(req.Status))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

func updatePaymentStatusHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req statusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "status is required")
			return
		}
		o, err := deps.OrderSvc.UpdatePaymentStatus(c.Request.Context(), c.Param("id"), domain.PaymentStatus(req.Status))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

func cancelOrderHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		o, err := deps.OrderSvc.Cancel(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

func deleteOrderHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := deps.OrderSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func restoreOrderHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := deps.OrderSvc.Restore(c.Request.Context(), c.Param("id")); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func getOrderCommissionHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		commission, err := deps.CommissionSvc.GetByOrder(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, commission)
	}
}
