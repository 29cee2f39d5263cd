package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pujasera/pos-backend/api/controllers"
	"github.com/pujasera/pos-backend/api/middleware"
	"github.com/pujasera/pos-backend/internal/fees"
	"github.com/pujasera/pos-backend/internal/stores"
	"github.com/pujasera/pos-backend/pkg/config"
	"github.com/pujasera/pos-backend/pkg/logger"
	pkgredis "github.com/pujasera/pos-backend/pkg/redis"
)

// RedisStore backs request idempotency and rate limiting.
type RedisStore interface {
	pkgredis.IdempotencyStore
	controllers.Pinger
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// Dependencies is everything the HTTP surface needs. The router never reads
// configuration or builds clients on its own.
type Dependencies struct {
	Config       *config.Config
	Logger       *logger.Logger
	DB           controllers.Pinger
	Redis        RedisStore
	Enqueuer     controllers.JobEnqueuer
	Jobs         controllers.JobReader
	Transactions controllers.TransactionService
	Tables       controllers.TableService
	Stores       stores.Service
	Fees         fees.ScheduleSource
	Hasher       controllers.PasswordHasher
	Metrics      http.Handler
}

func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	registerPolicy := middleware.NewRateLimitPolicy(
		"register",
		cfg.RateLimit.RegisterWindow,
		cfg.RateLimit.RegisterIPLimit,
		cfg.RateLimit.RegisterEmailLimit,
	)
	checkoutPolicy := middleware.NewRateLimitPolicy(
		"checkout",
		cfg.RateLimit.CheckoutWindow,
		cfg.RateLimit.CheckoutIPLimit,
		0,
	)

	var cache controllers.Pinger
	if deps.Redis != nil {
		cache = deps.Redis
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps.DB, cache, logg))
	})

	metricsHandler := deps.Metrics
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.StoreScope(logg))
		if deps.Redis != nil {
			r.Use(middleware.Idempotency(deps.Redis, logg))
		}

		limited := func(policy middleware.RateLimitPolicy) func(http.Handler) http.Handler {
			if deps.Redis == nil {
				return func(next http.Handler) http.Handler { return next }
			}
			return middleware.RateLimit(policy, deps.Redis, logg)
		}

		r.With(limited(checkoutPolicy)).Post("/checkout", controllers.Checkout(deps.Enqueuer, logg))
		r.Get("/jobs/{jobId}", controllers.JobStatus(deps.Jobs, logg))
		r.Get("/fees/preview", controllers.FeePreview(deps.Fees, logg))
		r.Post("/notifications", controllers.SendNotification(deps.Enqueuer, logg))
		r.With(limited(registerPolicy)).Post("/registrations/{kind}", controllers.Register(deps.Enqueuer, deps.Hasher, logg))

		r.Route("/transactions", func(r chi.Router) {
			r.Post("/", controllers.CreateTransaction(deps.Transactions, logg))
			r.Get("/{transactionId}", controllers.GetTransaction(deps.Transactions, logg))
			r.Post("/{transactionId}/cancel", controllers.CancelTransaction(deps.Transactions, logg))
			r.Post("/{transactionId}/settle", controllers.SettleTransaction(deps.Transactions, logg))
			r.Post("/{transactionId}/pay", controllers.PayTransaction(deps.Transactions, logg))
			r.Post("/{transactionId}/kitchen", controllers.UpdateKitchenStatus(deps.Transactions, logg))
		})

		r.Route("/stores/{storeId}", func(r chi.Router) {
			r.Get("/", controllers.StoreProfile(deps.Stores, logg))
			r.Get("/group", controllers.StoreGroup(deps.Stores, logg))
			r.Get("/transactions", controllers.ListStoreTransactions(deps.Transactions, logg))
			r.Post("/tables", controllers.CreateTable(deps.Tables, logg))
		})

		r.Post("/tables/{tableId}/{action}", controllers.ApplyTableAction(deps.Tables, logg))
	})

	return r
}
