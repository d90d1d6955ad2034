package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andymarkow/paydash/internal/config"
	"github.com/andymarkow/paydash/internal/httpclient"
	"github.com/andymarkow/paydash/internal/logger"
	"github.com/andymarkow/paydash/internal/orders/ordclient"
	"github.com/andymarkow/paydash/internal/payments/payclient"
	"github.com/andymarkow/paydash/internal/reconciler"
	"github.com/andymarkow/paydash/internal/server"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

type Application struct {
	log        *slog.Logger
	server     *server.Server
	controller *reconciler.Controller
}

func New() (*Application, error) {
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, fmt.Errorf("config.NewConfig: %w", err)
	}

	logLevel, err := logger.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("logger.ParseLogLevel: %w", err)
	}

	logg := logger.NewLogger(
		logger.WithLevel(logLevel),
		logger.WithFormat(logger.LogFormatJSON),
		logger.WithAddSource(false),
		logger.WithAttrs(slog.String("user_id", cfg.UserID)),
	)

	httpClient := httpclient.New(
		httpclient.WithBaseURL(cfg.APIBaseURL),
		httpclient.WithTimeout(cfg.HTTPTimeout),
	)

	payClient := payclient.New(
		payclient.WithLogger(logg),
		payclient.WithClient(httpClient),
	)

	ordClient := ordclient.New(
		ordclient.WithLogger(logg),
		ordclient.WithClient(httpClient),
	)

	ctrl := reconciler.New(payClient, ordClient,
		reconciler.WithLogger(logg),
		reconciler.WithUserID(cfg.UserID),
		reconciler.WithPollInterval(cfg.PollInterval),
		reconciler.WithPollMaxAttempts(cfg.PollMaxAttempts),
		reconciler.WithOrder(decimal.NewFromFloat(cfg.OrderAmount), cfg.OrderDescription),
	)

	srv := server.NewServer(ctrl,
		server.WithServerAddr(cfg.ServerAddr),
		server.WithLogger(logg),
	)

	return &Application{
		log:        logg,
		server:     srv,
		controller: ctrl,
	}, nil
}

func (a *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		// The dashboard stays usable after a failed initial sync; the error is in its state.
		if err := a.controller.Start(ctx); err != nil {
			a.log.Warn("Initial sync incomplete", slog.Any("error", err))
		}

		return nil
	})

	g.Go(func() error {
		return a.server.Start()
	})

	// Graceful shutdown handler
	g.Go(func() error {
		<-ctx.Done()

		a.log.Info("Gracefully shutting down application...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		err := a.server.Shutdown(shutdownCtx)

		a.controller.Close()

		return err
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("errgroup.Wait: %w", err)
	}

	return nil
}
