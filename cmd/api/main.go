package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"marketplace-backend/internal/config"
	"marketplace-backend/internal/db"
	"marketplace-backend/internal/domain"
	"marketplace-backend/internal/httpserver"
	cartrepo "marketplace-backend/internal/repository/cart"
	checkoutrepo "marketplace-backend/internal/repository/checkout"
	commissionrepo "marketplace-backend/internal/repository/commission"
	couponrepo "marketplace-backend/internal/repository/coupon"
	orderrepo "marketplace-backend/internal/repository/order"
	payoutrepo "marketplace-backend/internal/repository/payout"
	productrepo "marketplace-backend/internal/repository/product"
	sellerrepo "marketplace-backend/internal/repository/seller"
	cartsvc "marketplace-backend/internal/service/cart"
	commissionsvc "marketplace-backend/internal/service/commission"
	couponsvc "marketplace-backend/internal/service/coupon"
	ordersvc "marketplace-backend/internal/service/order"
	payoutsvc "marketplace-backend/internal/service/payout"
	sellersvc "marketplace-backend/internal/service/seller"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	clock := domain.SystemClock()

	productRepo := productrepo.NewPostgres(dbpool)
	cartRepo := cartrepo.NewPostgres(dbpool)
	couponRepo := couponrepo.NewPostgres(dbpool, cfg.DefaultCurrency)
	orderRepo := orderrepo.NewPostgres(dbpool)
	sellerRepo := sellerrepo.NewPostgres(dbpool)
	commissionRepo := commissionrepo.NewPostgres(dbpool)
	payoutRepo := payoutrepo.NewPostgres(dbpool)
	checkoutRepo := checkoutrepo.NewPostgres(dbpool)

	cartService := cartsvc.New(cartRepo, productRepo, couponRepo, sellerRepo, checkoutRepo, clock, cfg.CartExpiryWindow)
	orderService := ordersvc.New(orderRepo, clock)
	commissionService := commissionsvc.New(commissionRepo, sellerRepo, clock)
	couponService := couponsvc.New(couponRepo, clock, cfg.DefaultCurrency)
	sellerService := sellersvc.New(sellerRepo, clock)
	payoutService := payoutsvc.New(payoutRepo, commissionRepo, sellerRepo, clock)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		CartSvc:         cartService,
		OrderSvc:        orderService,
		CommissionSvc:   commissionService,
		CouponSvc:       couponService,
		SellerSvc:       sellerService,
		PayoutSvc:       payoutService,
		DefaultCurrency: cfg.DefaultCurrency,
	})
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}
