package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/karavanrugs/karavan-backend/api/controllers"
	"github.com/karavanrugs/karavan-backend/api/middleware"
	"github.com/karavanrugs/karavan-backend/internal/cart"
	"github.com/karavanrugs/karavan-backend/internal/categories"
	"github.com/karavanrugs/karavan-backend/internal/discounts"
	"github.com/karavanrugs/karavan-backend/internal/orders"
	"github.com/karavanrugs/karavan-backend/internal/products"
	"github.com/karavanrugs/karavan-backend/internal/traders"
	"github.com/karavanrugs/karavan-backend/internal/users"
	"github.com/karavanrugs/karavan-backend/pkg/config"
	"github.com/karavanrugs/karavan-backend/pkg/enums"
	"github.com/karavanrugs/karavan-backend/pkg/logger"
	"github.com/karavanrugs/karavan-backend/pkg/metrics"
	pkgredis "github.com/karavanrugs/karavan-backend/pkg/redis"
)

// Deps bundles everything the HTTP surface needs. Nil optional fields
// (limiter, idempotency store, metrics) disable their middleware.
type Deps struct {
	Config *config.Config
	Logger *logger.Logger

	DBPinger    controllers.Pinger
	RedisPinger controllers.Pinger

	Limiter          middleware.AttemptLimiter
	IdempotencyStore pkgredis.IdempotencyStore
	HTTPMetrics      *metrics.HTTPMetrics
	MetricsGatherer  prometheus.Gatherer

	Users      users.Service
	Traders    traders.Service
	Products   products.Service
	Categories categories.Service
	Discounts  discounts.Service
	Cart       cart.Service
	Orders     orders.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)
	if deps.HTTPMetrics != nil {
		r.Use(middleware.Metrics(deps.HTTPMetrics))
	}
	r.Use(middleware.CORS())

	loginPolicy := middleware.AuthRateLimitPolicy{
		Name:   "login",
		Window: cfg.RateLimit.LoginWindow,
		Limit:  cfg.RateLimit.LoginLimit,
	}
	registerPolicy := middleware.AuthRateLimitPolicy{
		Name:   "register",
		Window: cfg.RateLimit.RegisterWindow,
		Limit:  cfg.RateLimit.RegisterLimit,
	}

	auth := middleware.Auth(cfg.JWT, logg)
	adminOnly := middleware.RequireRole(enums.ActorRoleAdmin, logg)
	idempotency := middleware.Idempotency(deps.IdempotencyStore, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"postgres": deps.DBPinger,
			"redis":    deps.RedisPinger,
		}))
	})

	if deps.MetricsGatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.MetricsGatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, deps.Limiter, logg), idempotency).
			Post("/register", controllers.AuthRegister(deps.Users, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Limiter, logg)).
			Post("/login", controllers.AuthLogin(deps.Users, logg))
	})

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", controllers.ProductList(deps.Products, logg))
		r.Get("/{productRef}", controllers.ProductDetail(deps.Products, logg))
	})
	r.Get("/api/v1/categories", controllers.CategoryList(deps.Categories, logg))

	r.Route("/api/v1/account", func(r chi.Router) {
		r.Use(auth)
		r.Get("/me", controllers.AccountMe(deps.Users, logg))
		r.With(idempotency).Post("/trader-application", controllers.TraderApply(deps.Users, logg))
	})

	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Use(auth)
		r.Get("/", controllers.CartFetch(deps.Cart, logg))
		r.Post("/items", controllers.CartAddItem(deps.Cart, logg))
		r.Delete("/items/{itemID}", controllers.CartRemoveItem(deps.Cart, logg))
		r.Delete("/", controllers.CartClear(deps.Cart, logg))
	})

	r.Route("/api/v1/orders", func(r chi.Router) {
		r.Use(auth)
		r.With(idempotency).Post("/", controllers.OrderCreate(deps.Orders, deps.Cart, logg))
		r.Get("/", controllers.OrderList(deps.Orders, logg))
		r.With(idempotency).Post("/payment/verify", controllers.OrderVerifyPayment(deps.Orders, logg))
		r.Get("/{orderID}", controllers.OrderDetail(deps.Orders, logg))
		r.With(idempotency).Post("/{orderID}/payment", controllers.OrderBeginPayment(deps.Orders, logg))
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(auth, adminOnly)

		r.Route("/products", func(r chi.Router) {
			r.With(idempotency).Post("/", controllers.AdminProductCreate(deps.Products, logg))
			r.Patch("/{productID}", controllers.AdminProductUpdate(deps.Products, logg))
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", controllers.AdminCategoryList(deps.Categories, logg))
			r.With(idempotency).Post("/", controllers.AdminCategoryCreate(deps.Categories, logg))
			r.Patch("/{categoryID}", controllers.AdminCategoryUpdate(deps.Categories, logg))
		})

		r.Route("/discounts", func(r chi.Router) {
			r.Get("/", controllers.AdminDiscountList(deps.Discounts, logg))
			r.With(idempotency).Post("/", controllers.AdminDiscountCreate(deps.Discounts, logg))
		})

		r.Route("/traders", func(r chi.Router) {
			r.Get("/applications", controllers.AdminTraderApplications(deps.Traders, logg))
			r.With(idempotency).Post("/{userID}/approve", controllers.AdminTraderApprove(deps.Traders, logg))
			r.Post("/{userID}/revoke", controllers.AdminTraderRevoke(deps.Traders, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrderList(deps.Orders, logg))
			r.Get("/{orderID}", controllers.OrderDetail(deps.Orders, logg))
			r.With(idempotency).Post("/{orderID}/deliver", controllers.AdminOrderDeliver(deps.Orders, logg))
		})
	})

	return r
}
