package httpserver

import (
	"net/http"

	"marketplace-backend/internal/domain"
	couponsvc "marketplace-backend/internal/service/coupon"

	"github.com/gin-gonic/gin"
)

func createCouponHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req couponsvc.CreateInput
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid coupon payload")
			return
		}
		coupon, err := deps.CouponSvc.Create(c.Request.Context(), req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, coupon)
	}
}

func getCouponHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		coupon, err := deps.CouponSvc.GetByCode(c.Request.Context(), c.Param("code"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, coupon)
	}
}

func deactivateCouponHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		coupon, err := deps.CouponSvc.Deactivate(c.Request.Context(), c.Param("code"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, coupon)
	}
}

func deleteCouponHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := deps.CouponSvc.Delete(c.Request.Context(), c.Param("code")); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func restoreCouponHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := deps.CouponSvc.Restore(c.Request.Context(), c.Param("code")); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func listCouponUsagesHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		coupon, err := deps.CouponSvc.GetByCode(ctx, c.Param("code"))
		if err != nil {
			respondError(c, err)
			return
		}
		usages, err := deps.CouponSvc.ListUsages(ctx, coupon.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"usages": usages})
	}
}

type validateCouponRequest struct {
	Code        string `json:"code" binding:"required"`
	UserID      string `json:"userId" binding:"required"`
	OrderAmount string `json:"orderAmount" binding:"required"`
	Currency    string `json:"currency"`
}

func validateCouponHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req validateCouponRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "code, userId and orderAmount are required")
			return
		}
		currency := req.Currency
		if currency == "" {
			currency = deps.DefaultCurrency
		}
		amount, err := domain.NewMoney(req.OrderAmount, currency)
		if err != nil {
			respondError(c, err)
			return
		}
		result, err := deps.CouponSvc.Validate(c.Request.Context(), req.Code, req.UserID, amount)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}
