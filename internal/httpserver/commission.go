package httpserver

import (
	"net/http"

	"marketplace-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

func getCommissionHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		commission, err := deps.CommissionSvc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, commission)
	}
}

type transactionFeeRequest struct {
	Fee      string `json:"fee" binding:"required"`
	Currency string `json:"currency"`
}

func setTransactionFeeHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req transactionFeeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "fee is required")
			return
		}
		currency := req.Currency
		if currency == "" {
			currency = deps.DefaultCurrency
		}
		fee, err := domain.NewMoney(req.Fee, currency)
		if err != nil {
			respondError(c, err)
			return
		}
		commission, err := deps.CommissionSvc.SetTransactionFee(c.Request.Context(), c.Param("id"), fee)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, commission)
	}
}

func collectCommissionHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		commission, err := deps.CommissionSvc.Collect(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, commission)
	}
}

func disputeCommissionHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		commission, err := deps.CommissionSvc.Dispute(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, commission)
	}
}
