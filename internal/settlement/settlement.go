// Package settlement watches a single order until the order service settles it.
package settlement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/andymarkow/paydash/internal/domain/orders"
)

var ErrTimeout = errors.New("order settlement timed out")

type StatusFetcher interface {
	GetOrderStatus(ctx context.Context, orderID string) (*orders.Order, error)
}

type Poller struct {
	log         *slog.Logger
	fetcher     StatusFetcher
	interval    time.Duration
	maxAttempts int
}

type Config struct {
	logger      *slog.Logger
	interval    time.Duration
	maxAttempts int
}

type Option func(c *Config)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.logger = logger
	}
}

func WithInterval(interval time.Duration) Option {
	return func(c *Config) {
		c.interval = interval
	}
}

// WithMaxAttempts limits the number of status checks. Zero means no limit.
func WithMaxAttempts(attempts int) Option {
	return func(c *Config) {
		c.maxAttempts = attempts
	}
}

func New(fetcher StatusFetcher, opts ...Option) *Poller {
	cfg := &Config{
		logger:      slog.Default(),
		interval:    2 * time.Second,
		maxAttempts: 150,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return &Poller{
		log:         cfg.logger.With(slog.String("module", "settlement_poller")),
		fetcher:     fetcher,
		interval:    cfg.interval,
		maxAttempts: cfg.maxAttempts,
	}
}

// Watch checks the order status once per interval until the order leaves the new state.
// The next check is armed only after the previous one has been evaluated.
// Failed checks are logged and retried on the next interval.
func (p *Poller) Watch(ctx context.Context, orderID string) (*orders.Order, error) {
	log := p.log.With(slog.String("order_id", orderID))

	timer := time.NewTimer(p.interval)
	defer timer.Stop()

	log.Info("Start settlement watch")

	for attempt := 1; ; attempt++ {
		select {
		case <-ctx.Done():
			log.Info("Context done, stopping settlement watch")

			return nil, ctx.Err() //nolint:wrapcheck

		case <-timer.C:
		}

		ord, err := p.fetcher.GetOrderStatus(ctx, orderID)

		switch {
		case err != nil:
			if ctx.Err() != nil {
				return nil, ctx.Err() //nolint:wrapcheck
			}

			log.Warn("fetcher.GetOrderStatus", slog.Int("attempt", attempt), slog.Any("error", err))

		case ord.IsSettled():
			log.Info("Order settled",
				slog.Int("attempt", attempt),
				slog.String("order_status", string(ord.Status())),
			)

			return ord, nil

		default:
			log.Debug("Order is not settled yet", slog.Int("attempt", attempt))
		}

		if p.maxAttempts > 0 && attempt >= p.maxAttempts {
			return nil, fmt.Errorf("%w: order %s still unsettled after %d checks", ErrTimeout, orderID, attempt)
		}

		timer.Reset(p.interval)
	}
}
