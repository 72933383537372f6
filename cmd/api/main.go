package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/cache"
	"storefront/internal/config"
	"storefront/internal/db"
	stripegw "storefront/internal/gateway/stripe"
	"storefront/internal/httpserver"
	cartrepo "storefront/internal/repository/cart"
	categoryrepo "storefront/internal/repository/category"
	customerrepo "storefront/internal/repository/customer"
	orderrepo "storefront/internal/repository/order"
	productrepo "storefront/internal/repository/product"
	tokenrepo "storefront/internal/repository/token"
	cartsvc "storefront/internal/service/cart"
	categorysvc "storefront/internal/service/category"
	checkoutsvc "storefront/internal/service/checkout"
	customersvc "storefront/internal/service/customer"
	productsvc "storefront/internal/service/product"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString, cfg.DBMaxConns)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	var summaries *cache.SummaryStore
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Printf("redis unreachable, summary cache disabled: %v", err)
		} else {
			summaries = cache.NewSummaryStore(rdb, 0)
		}
	}

	productRepo := productrepo.NewPostgres(dbpool, logger)
	categoryRepo := categoryrepo.NewPostgres(dbpool)
	customerRepo := customerrepo.NewPostgres(dbpool)
	tokenRepo := tokenrepo.NewPostgres(dbpool)
	cartRepo := cartrepo.NewPostgres(dbpool)
	orderRepo := orderrepo.NewPostgres(dbpool)

	productService := productsvc.New(productRepo)
	categoryService := categorysvc.New(categoryRepo)
	customerService := customersvc.New(customerRepo, tokenRepo)
	cartService := cartsvc.New(cartRepo, productRepo, summaries)
	go sweepExpiredTokens(ctx, customerService, cfg.TokenSweepInterval, logger)

	gateway := stripegw.New(cfg.StripeSecretKey, cfg.CheckoutSuccessURL, cfg.CheckoutCancelURL)
	checkoutService := checkoutsvc.New(cartService, cartRepo, productRepo, orderRepo, gateway, cfg.Currency)

	srv := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		Carts:      cartService,
		Checkout:   checkoutService,
		Customers:  customerService,
		Products:   productService,
		Categories: categoryService,
		Orders:     orderRepo,
	}, httpserver.Options{
		FrontendOrigin: cfg.FrontendOrigin,
		CookieSecure:   cfg.CookieSecure,
	})

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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}

// sweepExpiredTokens purges expired auth tokens once at startup and then on
// every tick, so tokens nobody presents again still leave the table.
func sweepExpiredTokens(ctx context.Context, customers *customersvc.Service, interval time.Duration, logger *log.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if n, err := customers.PurgeExpiredTokens(ctx); err != nil {
			logger.Printf("token sweep: %v", err)
		} else if n > 0 {
			logger.Printf("token sweep removed %d expired tokens", n)
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}
	}
}
