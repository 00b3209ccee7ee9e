package httpserver

import (
	"net/http"

	"marketplace-backend/internal/domain"
	cartsvc "marketplace-backend/internal/service/cart"

	"github.com/gin-gonic/gin"
)

type createCartRequest struct {
	UserID   string `json:"userId" binding:"required"`
	Currency string `json:"currency"`
}

func createCartHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createCartRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "userId is required")
			return
		}
		currency := req.Currency
		if currency == "" {
			currency = deps.DefaultCurrency
		}
		cart, err := deps.CartSvc.GetOrCreate(c.Request.Context(), req.UserID, currency)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, cart)
	}
}

func getCartHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		cart, err := deps.CartSvc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

func addCartItemHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req cartsvc.AddItemInput
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid item payload")
			return
		}
		cart, err := deps.CartSvc.AddItem(c.Request.Context(), c.Param("id"), req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

func updateCartItemHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req updateQuantityRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "quantity is required")
			return
		}
		cart, err := deps.CartSvc.UpdateQuantity(c.Request.Context(), c.Param("id"), c.Param("itemId"), req.Quantity)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

func removeCartItemHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		cart, err := deps.CartSvc.RemoveItem(c.Request.Context(), c.Param("id"), c.Param("itemId"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

func clearCartHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		cart, err := deps.CartSvc.Clear(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

type applyCouponRequest struct {
	Code   string `json:"code" binding:"required"`
	UserID string `json:"userId" binding:"required"`
}

func applyCouponHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req applyCouponRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "code and userId are required")
			return
		}
		cart, err := deps.CartSvc.ApplyCoupon(c.Request.Context(), c.Param("id"), req.Code, req.UserID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

func removeCouponHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		cart, err := deps.CartSvc.RemoveCoupon(c.Request.Context(), c.Param("id"), c.Param("code"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

type checkoutRequest struct {
	MarketplaceID   string         `json:"marketplaceId" binding:"required"`
	BillingAddress  domain.Address `json:"billingAddress" binding:"required"`
	ShippingAddress domain.Address `json:"shippingAddress" binding:"required"`
}

type checkoutResponse struct {
	Orders []domain.Order `json:"orders"`
}

func checkoutHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req checkoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "marketplaceId and addresses are required")
			return
		}
		orders, err := deps.CartSvc.Checkout(c.Request.Context(), c.Param("id"), cartsvc.CheckoutInput{
			MarketplaceID:   req.MarketplaceID,
			BillingAddress:  req.BillingAddress,
			ShippingAddress: req.ShippingAddress,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, checkoutResponse{Orders: orders})
	}
}
