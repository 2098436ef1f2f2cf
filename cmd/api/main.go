package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/orderdesk/orderdesk-backend/api/routes"
	authsvc "github.com/orderdesk/orderdesk-backend/internal/auth"
	backupsvc "github.com/orderdesk/orderdesk-backend/internal/backup"
	billingsvc "github.com/orderdesk/orderdesk-backend/internal/billing"
	dashboardsvc "github.com/orderdesk/orderdesk-backend/internal/dashboard"
	dispatchsvc "github.com/orderdesk/orderdesk-backend/internal/dispatch"
	expensesvc "github.com/orderdesk/orderdesk-backend/internal/expenses"
	ordersvc "github.com/orderdesk/orderdesk-backend/internal/orders"
	"github.com/orderdesk/orderdesk-backend/internal/pricing"
	productsvc "github.com/orderdesk/orderdesk-backend/internal/products"
	returnssvc "github.com/orderdesk/orderdesk-backend/internal/returns"
	"github.com/orderdesk/orderdesk-backend/pkg/config"
	"github.com/orderdesk/orderdesk-backend/pkg/db"
	"github.com/orderdesk/orderdesk-backend/pkg/logger"
	"github.com/orderdesk/orderdesk-backend/pkg/migrate"
	"github.com/orderdesk/orderdesk-backend/pkg/redis"
	"github.com/orderdesk/orderdesk-backend/pkg/security"
	"github.com/joho/godotenv"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(context.Background(), cfg.Redis)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
	} else {
		logg.Warn(context.Background(), "redis not configured, login throttling disabled")
	}

	conn := dbClient.DB()
	hasher := security.NewPasswordHasher(cfg.Password)

	userRepo := authsvc.NewRepository(conn)
	productRepo := productsvc.NewRepository(conn)
	orderRepo := ordersvc.NewRepository(conn)
	billRepo := billingsvc.NewRepository(conn)
	expenseRepo := expensesvc.NewRepository(conn)
	dispatchRepo := dispatchsvc.NewRepository(conn)
	returnsRepo := returnssvc.NewRepository(conn)

	calculator := pricing.NewCalculator(productRepo, logg)

	if err := authsvc.EnsureAdmin(context.Background(), userRepo, hasher, cfg.Bootstrap.AdminUsername, cfg.Bootstrap.AdminPassword, logg); err != nil {
		logg.Error(context.Background(), "failed to bootstrap admin account", err)
		os.Exit(1)
	}

	authService, err := authsvc.NewService(userRepo, hasher, cfg.JWT, dbClient, logg)
	exitOnError(logg, "auth service", err)

	productService, err := productsvc.NewService(productRepo, dbClient, logg)
	exitOnError(logg, "product service", err)

	orderService, err := ordersvc.NewService(orderRepo, calculator, dbClient, logg)
	exitOnError(logg, "order service", err)

	policy, err := billingsvc.NewPolicyResolver(cfg.Billing)
	exitOnError(logg, "billing policy", err)

	billingService, err := billingsvc.NewService(billRepo, orderRepo, expenseRepo, userRepo, hasher, policy, dbClient, logg)
	exitOnError(logg, "billing service", err)

	dispatchService, err := dispatchsvc.NewService(dispatchRepo, orderRepo, dbClient, logg)
	exitOnError(logg, "dispatch service", err)

	returnsService, err := returnssvc.NewService(returnsRepo, orderRepo, dbClient, logg)
	exitOnError(logg, "return-scan service", err)

	dashboardService, err := dashboardsvc.NewService(conn)
	exitOnError(logg, "dashboard service", err)

	backupService, err := backupsvc.NewService(conn, logg)
	exitOnError(logg, "backup service", err)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, routes.Services{
			Auth:      authService,
			Products:  productService,
			Orders:    orderService,
			Billing:   billingService,
			Dispatch:  dispatchService,
			Returns:   returnsService,
			Dashboard: dashboardService,
			Backup:    backupService,
		}),
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-shutdownCtx.Done():
		logg.Info(ctx, "shutdown signal received")
		drainCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(drainCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}

func exitOnError(logg *logger.Logger, component string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), "failed to create "+component, err)
	os.Exit(1)
}
