package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"spendwise/internal/amqp"
	"spendwise/internal/backend"
	"spendwise/internal/cache"
	"spendwise/internal/cli"
	apphttp "spendwise/internal/http"
	applog "spendwise/internal/log"
	"spendwise/internal/report"
	"spendwise/internal/services"
	"spendwise/internal/session"
)

const (
	shutdownTimeout = 30 * time.Second
	sweepInterval   = time.Minute
)

func main() {
	cfg, logger := cli.Bootstrap()

	backendConfig, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	factory, err := backend.NewFactory(backendConfig, logger.WithComponent(applog.ComponentBackend).Logger)
	if err != nil {
		logger.Error("Failed to create backend factory", applog.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	sessions, err := session.NewManager(factory, session.Config{
		TTL:         cfg.SessionTTL,
		MaxSessions: cfg.MaxSessions,
		MonthOrder:  report.MonthOrder(cfg.MonthOrder),
	}, logger.WithComponent(applog.ComponentSession).Logger)
	if err != nil {
		logger.Error("Failed to create session manager", applog.FieldError, err)
		os.Exit(1)
	}
	defer sessions.Close()

	// The activity feed is optional; a nil publisher disables it.
	var publisher services.Publisher
	if cfg.AMQPURL != "" {
		client := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPRoutingPrefix,
			logger.WithComponent(applog.ComponentAMQP).Logger)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := client.Connect(ctx); err != nil {
			logger.Warn("AMQP broker unavailable, will retry on publish", applog.FieldError, err)
		}
		cancel()
		defer client.Close()
		publisher = client
	} else {
		logger.Info("Activity feed disabled - no AMQP_URL provided")
	}

	ledger := services.NewLedger(publisher, logger.WithComponent(applog.ComponentLedger))

	srv, err := apphttp.NewServer(apphttp.Config{
		Addr:               cli.ListenAddr(cfg.Port),
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	}, sessions, ledger, logger)
	if err != nil {
		logger.Error("Failed to create HTTP server", applog.FieldError, err)
		os.Exit(1)
	}

	janitor := cache.NewManager(logger.WithComponent(applog.ComponentCache).Logger)
	janitor.Register(sessions.Cache())

	ctx, cancel := cli.ShutdownContext(logger)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting spendwise server",
			"port", cfg.Port,
			"backend", cfg.DataBackend,
			"month_order", cfg.MonthOrder,
			applog.FieldOperation, applog.OpStartup)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		janitor.Run(sweepInterval)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down", applog.FieldOperation, applog.OpShutdown)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()

		janitor.Stop()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
