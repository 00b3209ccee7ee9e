package httpserver

import (
	"errors"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps) (*gin.Engine, error) {
	if deps.CartSvc == nil || deps.OrderSvc == nil || deps.CommissionSvc == nil ||
		deps.CouponSvc == nil || deps.SellerSvc == nil || deps.PayoutSvc == nil {
		return nil, errors.New("httpserver: missing service dependency")
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	api := router.Group("/api/v1")

	carts := api.Group("/carts")
	carts.POST("", createCartHandler(deps))
	carts.GET("/:id", getCartHandler(deps))
	carts.POST("/:id/items", addCartItemHandler(deps))
	carts.PATCH("/:id/items/:itemId", updateCartItemHandler(deps))
	carts.DELETE("/:id/items/:itemId", removeCartItemHandler(deps))
	carts.DELETE("/:id/items", clearCartHandler(deps))
	carts.POST("/:id/coupons", applyCouponHandler(deps))
	carts.DELETE("/:id/coupons/:code", removeCouponHandler(deps))
	carts.POST("/:id/checkout", checkoutHandler(deps))

	orders := api.Group("/orders")
	orders.GET("", listOrdersHandler(deps))
	orders.GET("/:id", getOrderHandler(deps))
	orders.PUT("/:id/status", updateOrderStatusHandler(deps))
	orders.PUT("/:id/payment-status", updatePaymentStatusHandler(deps))
	orders.POST("/:id/cancel", cancelOrderHandler(deps))
	orders.DELETE("/:id", deleteOrderHandler(deps))
	orders.POST("/:id/restore", restoreOrderHandler(deps))
	orders.GET("/:id/commission", getOrderCommissionHandler(deps))

	commissions := api.Group("/commissions")
	commissions.GET("/:id", getCommissionHandler(deps))
	commissions.PUT("/:id/transaction-fee", setTransactionFeeHandler(deps))
	commissions.POST("/:id/collect", collectCommissionHandler(deps))
	commissions.POST("/:id/dispute", disputeCommissionHandler(deps))

	coupons := api.Group("/coupons")
	coupons.POST("", createCouponHandler(deps))
	coupons.POST("/validate", validateCouponHandler(deps))
	coupons.GET("/:code", getCouponHandler(deps))
	coupons.POST("/:code/deactivate", deactivateCouponHandler(deps))
	coupons.DELETE("/:code", deleteCouponHandler(deps))
	coupons.POST("/:code/restore", restoreCouponHandler(deps))
	coupons.GET("/:code/usages", listCouponUsagesHandler(deps))

	sellers := api.Group("/sellers")
	sellers.POST("", createSellerHandler(deps))
	sellers.GET("/:id", getSellerHandler(deps))
	sellers.POST("/:id/approve", sellerTransitionHandler(deps, "approve"))
	sellers.POST("/:id/reject", sellerTransitionHandler(deps, "reject"))
	sellers.POST("/:id/suspend", sellerTransitionHandler(deps, "suspend"))
	sellers.POST("/:id/reactivate", sellerTransitionHandler(deps, "reactivate"))
	sellers.POST("/:id/deactivate", sellerTransitionHandler(deps, "deactivate"))
	sellers.PUT("/:id/vacation", setVacationModeHandler(deps))
	sellers.DELETE("/:id", deleteSellerHandler(deps))
	sellers.POST("/:id/restore", restoreSellerHandler(deps))
	sellers.GET("/:id/payouts", listSellerPayoutsHandler(deps))

	payouts := api.Group("/payouts")
	payouts.POST("", createPayoutHandler(deps))
	payouts.GET("/:id", getPayoutHandler(deps))
	payouts.POST("/:id/process", processPayoutHandler(deps))
	payouts.POST("/:id/complete", completePayoutHandler(deps))
	payouts.POST("/:id/fail", failPayoutHandler(deps))
	payouts.POST("/:id/cancel", cancelPayoutHandler(deps))

	return router, nil
}
