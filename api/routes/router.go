package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/orderdesk/orderdesk-backend/api/controllers"
	"github.com/orderdesk/orderdesk-backend/api/middleware"
	authsvc "github.com/orderdesk/orderdesk-backend/internal/auth"
	backupsvc "github.com/orderdesk/orderdesk-backend/internal/backup"
	billingsvc "github.com/orderdesk/orderdesk-backend/internal/billing"
	dashboardsvc "github.com/orderdesk/orderdesk-backend/internal/dashboard"
	dispatchsvc "github.com/orderdesk/orderdesk-backend/internal/dispatch"
	ordersvc "github.com/orderdesk/orderdesk-backend/internal/orders"
	productsvc "github.com/orderdesk/orderdesk-backend/internal/products"
	returnssvc "github.com/orderdesk/orderdesk-backend/internal/returns"
	"github.com/orderdesk/orderdesk-backend/pkg/config"
	"github.com/orderdesk/orderdesk-backend/pkg/db"
	"github.com/orderdesk/orderdesk-backend/pkg/logger"
	"github.com/orderdesk/orderdesk-backend/pkg/metrics"
	"github.com/orderdesk/orderdesk-backend/pkg/redis"
)

// Services bundles every wired service the router exposes.
type Services struct {
	Auth      authsvc.Service
	Products  productsvc.Service
	Orders    ordersvc.Service
	Billing   billingsvc.Service
	Dispatch  dispatchsvc.Service
	Returns   returnssvc.Service
	Dashboard dashboardsvc.Service
	Backup    backupsvc.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
		metrics.Middleware,
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginUsernameLimit,
	)
	loginLimiter := middleware.AuthRateLimit(loginPolicy, nil, logg)
	if redisClient != nil {
		loginLimiter = middleware.AuthRateLimit(loginPolicy, redisClient, logg)
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.With(loginLimiter).Post("/login", controllers.Login(svcs.Auth, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin(logg))
				r.Post("/create-seller", controllers.CreateSeller(svcs.Auth, logg))
				r.Get("/sellers", controllers.ListSellers(svcs.Auth, logg))
				r.Post("/block-seller", controllers.BlockSeller(svcs.Auth, logg))
				r.Post("/unblock-seller", controllers.UnblockSeller(svcs.Auth, logg))
				r.Delete("/delete-seller/{id}", controllers.DeleteSeller(svcs.Auth, logg))
			})

			r.Route("/products", func(r chi.Router) {
				r.Get("/", controllers.ListProducts(svcs.Products, logg))
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireAdmin(logg))
					r.Post("/", controllers.UpsertProduct(svcs.Products, logg))
					r.Post("/bulk", controllers.BulkUpsertProducts(svcs.Products, logg))
					r.Delete("/{id}", controllers.DeleteProduct(svcs.Products, logg))
				})
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.ListOrders(svcs.Orders, logg))
				r.Post("/", controllers.CreateOrder(svcs.Orders, logg))
				r.Get("/search", controllers.SearchOrders(svcs.Orders, logg))

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireAdmin(logg))
					r.Post("/bulk", controllers.BulkImportOrders(svcs.Orders, logg))
					r.Delete("/delete-all", controllers.DeleteAllOrders(svcs.Orders, logg))
					r.Delete("/delete-all-for-seller", controllers.DeleteAllOrdersForSeller(svcs.Orders, logg))
				})

				r.Post("/bulk-update-status", controllers.BulkUpdateOrderStatus(svcs.Orders, logg))
				r.Post("/bulk-update-tracking", controllers.BulkUpdateOrderTracking(svcs.Orders, logg))
				r.Post("/bulk-scan-return", controllers.BulkScanReturn(svcs.Orders, logg))
				r.Post("/bulk-update-delivered", controllers.BulkUpdateDelivered(svcs.Orders, logg))

				r.Put("/{id}", controllers.UpdateOrder(svcs.Orders, logg))
				r.Delete("/{id}", controllers.DeleteOrder(svcs.Orders, logg))
			})

			r.Route("/dispatched", func(r chi.Router) {
				r.Post("/scan", controllers.ScanParcel(svcs.Dispatch, logg))
				r.Get("/", controllers.ListDispatched(svcs.Dispatch, logg))
				r.Get("/stats", controllers.DispatchStats(svcs.Dispatch, logg))
				r.Delete("/{id}", controllers.DeleteDispatched(svcs.Dispatch, logg))
			})

			r.Post("/return-scan", controllers.ScanReturn(svcs.Returns, logg))
			r.Route("/return-scans", func(r chi.Router) {
				r.Get("/", controllers.ListReturnScans(svcs.Returns, logg))
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireAdmin(logg))
					r.Delete("/{id}", controllers.DeleteReturnScan(svcs.Returns, logg))
					r.Delete("/clear/{date}", controllers.ClearReturnScans(svcs.Returns, logg))
				})
			})

			r.Route("/billing", func(r chi.Router) {
				r.Get("/unpaid-orders", controllers.UnpaidOrders(svcs.Orders, logg))
				r.Post("/mark-paid", controllers.MarkOrdersPaid(svcs.Orders, logg))
				r.Post("/generate-bill", controllers.GenerateBill(svcs.Billing, logg))
			})

			r.Route("/bills", func(r chi.Router) {
				r.Get("/", controllers.ListBills(svcs.Billing, logg))
				r.Get("/{bill_number}", controllers.GetBill(svcs.Billing, logg))
				r.With(middleware.RequireAdmin(logg)).Delete("/{bill_number}", controllers.DeleteBill(svcs.Billing, logg))
			})

			r.Get("/dashboard/stats", controllers.DashboardStats(svcs.Dashboard, logg))

			r.Route("/backup", func(r chi.Router) {
				r.Use(middleware.RequireAdmin(logg))
				r.Get("/create", controllers.CreateBackup(svcs.Backup, logg))
				r.Post("/restore", controllers.RestoreBackup(svcs.Backup, logg))
			})
		})
	})

	return r
}
