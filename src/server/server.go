package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"

	"tradejournal/src/csvimport"
	"tradejournal/src/handler"
	"tradejournal/src/repository"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Dependencies are the stores the HTTP layer is built on.
type Dependencies struct {
	Strategies *repository.StrategyRepository
	Accounts   *repository.AccountRepository
	Tags       *repository.TagRepository
	Trades     *repository.TradeRepository
	Exceptions *repository.ExceptionRepository
}

func NewDependencies(db *gorm.DB) Dependencies {
	return Dependencies{
		Strategies: repository.NewStrategyRepositoryWithDB(db),
		Accounts:   repository.NewAccountRepositoryWithDB(db),
		Tags:       repository.NewTagRepositoryWithDB(db),
		Trades:     repository.NewTradeRepositoryWithDB(db),
		Exceptions: repository.NewExceptionRepositoryWithDB(db),
	}
}

// DefaultDependencies wires the stores to database.MainDB.
func DefaultDependencies() Dependencies {
	return Dependencies{
		Strategies: repository.NewStrategyRepository(),
		Accounts:   repository.NewAccountRepository(),
		Tags:       repository.NewTagRepository(),
		Trades:     repository.NewTradeRepository(),
		Exceptions: repository.NewExceptionRepository(),
	}
}

func NewRouter(cfg *Config, hcfg handler.Config, deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// === Global Middleware ===
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(AccessLog)
	r.Use(Recoverer(deps.Exceptions))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"Not Found"}`))
	})

	// Public routes
	r.Get("/health", handler.HealthHandler)
	r.Get("/healthcheck", handler.HealthHandler)

	trades := handler.NewTradeHandlers(hcfg, deps.Trades, deps.Strategies, deps.Accounts,
		csvimport.NewImporter(deps.Trades, hcfg.AutoDetectSession))
	dashboard := handler.NewDashboardHandlers(deps.Trades, deps.Strategies, deps.Accounts)

	r.Route("/api", func(r chi.Router) {
		r.Route("/strategies", func(r chi.Router) {
			r.Get("/", handler.ListStrategiesHandler(deps.Strategies))
			r.Post("/", handler.CreateStrategyHandler(deps.Strategies))
			r.Get("/{id}", handler.GetStrategyHandler(deps.Strategies))
			r.Put("/{id}", handler.UpdateStrategyHandler(deps.Strategies))
			r.Delete("/{id}", handler.DeleteStrategyHandler(deps.Strategies))
		})

		r.Route("/accounts", func(r chi.Router) {
			r.Get("/", handler.ListAccountsHandler(deps.Accounts))
			r.Post("/", handler.CreateAccountHandler(deps.Accounts))
			r.Get("/{id}", handler.GetAccountHandler(deps.Accounts))
			r.Put("/{id}", handler.UpdateAccountHandler(deps.Accounts))
			r.Delete("/{id}", handler.DeleteAccountHandler(deps.Accounts))
		})

		r.Get("/tags", handler.ListTagsHandler(deps.Tags))

		r.Route("/trades", func(r chi.Router) {
			r.Get("/", trades.List)
			r.Post("/", trades.Create)
			r.Post("/manual", trades.Create)
			r.Post("/csv", trades.ImportCSV)
			r.Get("/{id}", trades.Get)
			r.Put("/{id}", trades.Update)
		})

		r.Route("/dashboard", func(r chi.Router) {
			r.Get("/kpis", dashboard.KPIs)
			r.Get("/equity-curve", dashboard.EquityCurve)
			r.Get("/performance-by-tag", dashboard.PerformanceByTag)
			r.Get("/strategies", dashboard.Strategies)
			r.Get("/accounts", dashboard.Accounts)
		})
	})

	return r
}

// Run serves h on ln until ctx is done, then drains in-flight requests for
// at most cfg.ShutdownTimeout.
func Run(ctx context.Context, cfg *Config, ln net.Listener, h http.Handler) error {
	srv := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: cfg.RequestTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("Listening on %s", ln.Addr())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Shutdown error")
		return err
	}
	return nil
}

// StartServer serves the API on the configured port until SIGINT or SIGTERM.
func StartServer(cfg *Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", ":"+cfg.Port)
	if err != nil {
		return err
	}

	return Run(ctx, cfg, ln, NewRouter(cfg, handler.GetConfig(), DefaultDependencies()))
}
