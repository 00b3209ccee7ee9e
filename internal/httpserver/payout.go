package httpserver

import (
	"net/http"
	"strconv"

	payoutsvc "marketplace-backend/internal/service/payout"

	"github.com/gin-gonic/gin"
)

func createPayoutHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req payoutsvc.CreateInput
		if err := c.ShouldBindJSON(&req); err != nil || req.SellerID == "" {
			badRequest(c, "sellerId is required")
			return
		}
		p, err := deps.PayoutSvc.CreateForSeller(c.Request.Context(), req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, p)
	}
}

func getPayoutHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := deps.PayoutSvc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

func listSellerPayoutsHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
		offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
		payouts, err := deps.PayoutSvc.ListBySeller(c.Request.Context(), c.Param("id"), limit, offset)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"payouts": payouts})
	}
}

func processPayoutHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := deps.PayoutSvc.Process(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

type completePayoutRequest struct {
	TransactionID *string `json:"transactionId,omitempty"`
}

func completePayoutHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req completePayoutRequest
		if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
			badRequest(c, "invalid payload")
			return
		}
		p, err := deps.PayoutSvc.Complete(c.Request.Context(), c.Param("id"), req.TransactionID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

type failPayoutRequest struct {
	Reason string `json:"reason" binding:"required"`
}

func failPayoutHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req failPayoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "reason is required")
			return
		}
		p, err := deps.PayoutSvc.Fail(c.Request.Context(), c.Param("id"), req.Reason)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

func cancelPayoutHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := deps.PayoutSvc.Cancel(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}
