package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	_ "github.com/jackc/pgx/v5/stdlib"

	"mbatrack/internal/audit"
	auditmemory "mbatrack/internal/audit/store/memory"
	auditpostgres "mbatrack/internal/audit/store/postgres"
	"mbatrack/internal/mba/handler"
	"mbatrack/internal/mba/service"
	clientstore "mbatrack/internal/mba/store/client"
	invoicestore "mbatrack/internal/mba/store/invoice"
	mbastore "mbatrack/internal/mba/store/mba"
	spendstore "mbatrack/internal/mba/store/spend"
	"mbatrack/internal/platform/config"
	"mbatrack/internal/platform/httpserver"
	"mbatrack/internal/platform/logger"
	"mbatrack/internal/platform/metrics"
	"mbatrack/internal/platform/middleware"
	"mbatrack/pkg/platform/tx"
)

const shutdownTimeout = 10 * time.Second

// main wires dependencies and runs the HTTP server. With DATABASE_URL set the
// stores are Postgres-backed; without it everything runs in memory, which is
// enough for local development.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	m := metrics.New()

	svc, db, err := buildService(cfg, log, m)
	if err != nil {
		log.Error("failed to initialize service", "error", err)
		os.Exit(1)
	}
	if db != nil {
		defer db.Close()
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RequestTime)
	router.Use(middleware.Actor)
	router.Use(middleware.RequireAdminToken(cfg.AdminToken, log))

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Method(http.MethodGet, "/metrics", promhttp.Handler())
	handler.New(svc, log).Register(router)

	srv := httpserver.New(cfg.Addr, router)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting mbatrack", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}

func buildService(cfg config.Server, log *slog.Logger, m *metrics.Metrics) (*service.Service, *sql.DB, error) {
	opts := []service.Option{
		service.WithLogger(log),
		service.WithMetrics(m),
	}

	if cfg.DatabaseURL == "" {
		log.Warn("DATABASE_URL not set, using in-memory stores")
		auditStore := auditmemory.NewInMemoryStore()
		opts = append(opts,
			service.WithRecorder(audit.NewRecorder(auditStore, audit.WithLogger(log), audit.WithMetrics(m))),
			service.WithAuditReader(auditStore),
		)
		svc := service.New(
			clientstore.NewInMemory(),
			mbastore.NewInMemory(),
			invoicestore.NewInMemory(),
			spendstore.NewInMemory(),
			opts...,
		)
		return svc, nil, nil
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	auditStore := auditpostgres.New(db)
	opts = append(opts,
		service.WithRecorder(audit.NewRecorder(auditStore, audit.WithLogger(log), audit.WithMetrics(m))),
		service.WithAuditReader(auditStore),
		service.WithTxRunner(tx.NewSQLRunner(db)),
	)
	svc := service.New(
		clientstore.NewPostgres(db),
		mbastore.NewPostgres(db),
		invoicestore.NewPostgres(db),
		spendstore.NewPostgres(db),
		opts...,
	)
	return svc, db, nil
}
