package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	auth "Ductsizer/internal/auth"
	batch "Ductsizer/internal/calc/batch"
	duct "Ductsizer/internal/calc/duct"
	fit "Ductsizer/internal/calc/fit"
	importer "Ductsizer/internal/calc/importer"
	report "Ductsizer/internal/calc/report"
	"Ductsizer/internal/calc/units"
	"Ductsizer/internal/config"
	"Ductsizer/internal/observability"
	repo "Ductsizer/internal/repo"

	"github.com/gorilla/mux"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

var wg sync.WaitGroup

// App carries the dependencies shared by all routes. Repo is nil when API
// accounts are disabled.
type App struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics *observability.Metrics
	Repo    repo.Repository
	Clock   clockwork.Clock
}

func CORS(origin string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func HandleList(router *mux.Router, app App) {
	sys := units.System(app.Config.DefaultUnits)

	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		duct.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods("GET")
	router.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if app.Repo != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := app.Repo.Ping(ctx); err != nil {
				app.Logger.Warn("readiness check failed", "error", err)
				duct.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "database unavailable"})
				return
			}
		}
		duct.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	limiter := auth.NewIPRateLimiter(rate.Limit(app.Config.RateLimitRPS), app.Config.RateLimitBurst)

	api := router.PathPrefix("/api").Subrouter()
	api.Use(limiter.LimitMiddleware)

	tools := api.PathPrefix("/tools").Subrouter()
	app.Metrics.SetAuthEnabled(app.Config.AuthEnabled)
	if app.Config.AuthEnabled {
		authEnv := &auth.Authenv{
			JWTkey:       []byte(app.Config.TokenKey),
			Repo:         app.Repo,
			Logger:       app.Logger,
			SecureCookie: app.Config.TLS(),
		}
		api.HandleFunc("/login", authEnv.AuthHandler).Methods("POST")
		api.HandleFunc("/register", authEnv.RegisterHandler).Methods("POST")
		tools.Use(authEnv.AuthMiddleware)
	}

	ductH := &duct.Handler{Logger: app.Logger, Metrics: app.Metrics, Units: sys}
	fitH := &fit.Handler{Logger: app.Logger, Metrics: app.Metrics, Units: sys}
	batchH := &batch.Handler{Logger: app.Logger, Metrics: app.Metrics, Units: sys}
	importH := &importer.Handler{Logger: app.Logger, Metrics: app.Metrics, Units: sys}
	reportH := &report.Handler{Logger: app.Logger, Metrics: app.Metrics, Units: sys, Clock: app.Clock}

	tools.HandleFunc("/duct/calc", ductH.Calc).Methods("POST")
	tools.HandleFunc("/duct/width", fitH.Width).Methods("POST")
	tools.HandleFunc("/duct/batch", batchH.Calc).Methods("POST")
	tools.HandleFunc("/duct/import", importH.Duct).Methods("POST")
	tools.HandleFunc("/duct/export", reportH.Export).Methods("POST")
	tools.HandleFunc("/report/pdf", reportH.Generate).Methods("POST")
}

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := observability.NewLogger(cfg)
	slog.SetDefault(logger)

	app := App{
		Config:  cfg,
		Logger:  logger,
		Metrics: observability.NewMetrics(),
		Clock:   clockwork.NewRealClock(),
	}
	if cfg.AuthEnabled {
		db, err := repo.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()
		app.Repo = repo.NewPostgresUserDB(db)
	}

	router := mux.NewRouter()
	HandleList(router, app)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           CORS(cfg.CORSOrigin, router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info("starting server", "addr", cfg.HTTPAddr, "tls", cfg.TLS(), "auth", cfg.AuthEnabled, "units", cfg.DefaultUnits)
		var err error
		if cfg.TLS() {
			err = server.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	wg.Wait()
	logger.Info("server stopped")
	return nil
}
