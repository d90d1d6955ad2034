// Package reconciler keeps the cached account and order state of a single user
// in line with the account and order services.
package reconciler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/andymarkow/paydash/internal/domain/accounts"
	"github.com/andymarkow/paydash/internal/domain/orders"
	"github.com/andymarkow/paydash/internal/settlement"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

var (
	ErrInvalidAmount   = errors.New("invalid top-up amount")
	ErrAccountNotReady = errors.New("account is not ready")
	ErrOrderInFlight   = errors.New("order settlement is already in progress")
	ErrClosed          = errors.New("controller is closed")
)

type AccountService interface {
	CreateAccount(ctx context.Context, userID string) (*accounts.Account, error)
	TopUp(ctx context.Context, billID, userID string, amount decimal.Decimal) error
	GetBalance(ctx context.Context, billID, userID string) (decimal.Decimal, error)
}

type OrderService interface {
	settlement.StatusFetcher
	CreateOrder(ctx context.Context, userID string, amount decimal.Decimal, description string) (*orders.Order, error)
	ListOrders(ctx context.Context, userID string) ([]*orders.Order, error)
}

// ErrorSource names the concern a failure belongs to.
// A success only clears the error of its own concern.
type ErrorSource string

const (
	ErrorSourceAccount ErrorSource = "account"
	ErrorSourceBalance ErrorSource = "balance"
	ErrorSourceOrders  ErrorSource = "orders"
	ErrorSourceOrder   ErrorSource = "order"
)

var errorSources = []ErrorSource{ErrorSourceAccount, ErrorSourceBalance, ErrorSourceOrders, ErrorSourceOrder}

type State string

const (
	StateIdle               State = "idle"
	StateCreating           State = "creating"
	StateAwaitingSettlement State = "awaiting_settlement"
	StateReconciling        State = "reconciling"
)

type Controller struct {
	log              *slog.Logger
	userID           string
	accounts         AccountService
	orders           OrderService
	poller           *settlement.Poller
	orderAmount      decimal.Decimal
	orderDescription string

	mu            sync.RWMutex
	billID        string
	balance       decimal.Decimal
	orderList     []*orders.Order
	state         State
	activeOrderID string
	warning       string
	errs          map[ErrorSource]string
	updatedAt     time.Time
	closed        bool
	cancelWatch   context.CancelFunc
	watchDone     chan struct{}

	subsMu    sync.Mutex
	subs      map[int]chan Snapshot
	nextSubID int
}

type Config struct {
	logger           *slog.Logger
	userID           string
	pollInterval     time.Duration
	pollMaxAttempts  int
	orderAmount      decimal.Decimal
	orderDescription string
}

type Option func(c *Config)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.logger = logger
	}
}

func WithUserID(userID string) Option {
	return func(c *Config) {
		c.userID = userID
	}
}

func WithPollInterval(interval time.Duration) Option {
	return func(c *Config) {
		c.pollInterval = interval
	}
}

func WithPollMaxAttempts(attempts int) Option {
	return func(c *Config) {
		c.pollMaxAttempts = attempts
	}
}

// WithOrder sets the payload used for every order placed by the controller.
func WithOrder(amount decimal.Decimal, description string) Option {
	return func(c *Config) {
		c.orderAmount = amount
		c.orderDescription = description
	}
}

func New(accountSvc AccountService, orderSvc OrderService, opts ...Option) *Controller {
	cfg := &Config{
		logger:           slog.Default(),
		pollInterval:     2 * time.Second,
		pollMaxAttempts:  150,
		orderAmount:      decimal.NewFromFloat(50.0),
		orderDescription: "test order",
	}

	for _, opt := range opts {
		opt(cfg)
	}

	log := cfg.logger.With(slog.String("module", "reconciler"))

	return &Controller{
		log:      log,
		userID:   cfg.userID,
		accounts: accountSvc,
		orders:   orderSvc,
		poller: settlement.New(orderSvc,
			settlement.WithLogger(cfg.logger),
			settlement.WithInterval(cfg.pollInterval),
			settlement.WithMaxAttempts(cfg.pollMaxAttempts),
		),
		orderAmount:      cfg.orderAmount,
		orderDescription: cfg.orderDescription,
		orderList:        []*orders.Order{},
		state:            StateIdle,
		errs:             make(map[ErrorSource]string),
		updatedAt:        time.Now(),
		subs:             make(map[int]chan Snapshot),
	}
}

// Start bootstraps the account and loads the order history concurrently.
// A failure of one does not cancel the other.
func (c *Controller) Start(ctx context.Context) error {
	c.log.Info("Start reconciler", slog.String("user_id", c.userID))

	var accErr, ordErr error

	g := new(errgroup.Group)

	g.Go(func() error {
		_, accErr = c.EnsureAccount(ctx)

		return nil
	})

	g.Go(func() error {
		ordErr = c.RefreshOrders(ctx)

		return nil
	})

	g.Wait() //nolint:errcheck

	return errors.Join(accErr, ordErr)
}

// EnsureAccount creates or fetches the user's account and caches its bill id and balance.
func (c *Controller) EnsureAccount(ctx context.Context) (*accounts.Account, error) {
	acc, err := c.accounts.CreateAccount(ctx, c.userID)
	if err != nil {
		c.log.Error("accounts.CreateAccount", slog.Any("error", err))
		c.recordError(ErrorSourceAccount, err)

		return nil, fmt.Errorf("accounts.CreateAccount: %w", err)
	}

	c.update(func() {
		c.billID = acc.BillID()
		c.balance = acc.Balance()
		delete(c.errs, ErrorSourceAccount)
	})

	c.log.Info("Account ready",
		slog.String("bill_id", acc.BillID()),
		slog.String("balance", acc.Balance().String()),
	)

	return acc, nil
}

// TopUp credits a user supplied amount and then re-reads the balance.
// Invalid input or a missing account abort the operation before any request is sent.
func (c *Controller) TopUp(ctx context.Context, rawAmount string) error {
	amount, err := accounts.ParseAmount(strings.TrimSpace(rawAmount))
	if err != nil {
		c.log.Debug("Top-up rejected", slog.String("amount", rawAmount), slog.Any("error", err))

		return fmt.Errorf("%w: %q", ErrInvalidAmount, rawAmount)
	}

	billID := c.BillID()
	if billID == "" {
		return ErrAccountNotReady
	}

	if err := c.accounts.TopUp(ctx, billID, c.userID, amount); err != nil {
		c.log.Error("accounts.TopUp", slog.Any("error", err))
		c.recordError(ErrorSourceBalance, err)

		return fmt.Errorf("accounts.TopUp: %w", err)
	}

	c.log.Info("Balance topped up", slog.String("bill_id", billID), slog.String("amount", amount.String()))

	return c.RefreshBalance(ctx)
}

// RefreshBalance re-reads the balance. It never credits the account.
func (c *Controller) RefreshBalance(ctx context.Context) error {
	billID := c.BillID()
	if billID == "" {
		return ErrAccountNotReady
	}

	balance, err := c.accounts.GetBalance(ctx, billID, c.userID)
	if err != nil {
		c.log.Error("accounts.GetBalance", slog.Any("error", err))
		c.recordError(ErrorSourceBalance, err)

		return fmt.Errorf("accounts.GetBalance: %w", err)
	}

	c.update(func() {
		c.balance = balance
		delete(c.errs, ErrorSourceBalance)
	})

	return nil
}

// RefreshOrders replaces the cached order history with the order service's list.
// On failure the previous list is kept.
func (c *Controller) RefreshOrders(ctx context.Context) error {
	ords, err := c.orders.ListOrders(ctx, c.userID)
	if err != nil {
		c.log.Error("orders.ListOrders", slog.Any("error", err))
		c.recordError(ErrorSourceOrders, err)

		return fmt.Errorf("orders.ListOrders: %w", err)
	}

	if ords == nil {
		ords = []*orders.Order{}
	}

	c.update(func() {
		c.orderList = ords
		delete(c.errs, ErrorSourceOrders)
	})

	return nil
}

// PlaceOrder creates an order and starts watching its settlement in the background.
// Only one order can be awaiting settlement at a time.
func (c *Controller) PlaceOrder(ctx context.Context) (*orders.Order, error) {
	c.mu.Lock()

	if c.closed {
		c.mu.Unlock()

		return nil, ErrClosed
	}

	if c.state != StateIdle {
		c.mu.Unlock()

		return nil, ErrOrderInFlight
	}

	c.state = StateCreating
	c.warning = ""
	c.updatedAt = time.Now()
	c.mu.Unlock()
	c.notify()

	ord, err := c.orders.CreateOrder(ctx, c.userID, c.orderAmount, c.orderDescription)
	if err != nil {
		c.log.Error("orders.CreateOrder", slog.Any("error", err))
		c.update(func() {
			c.state = StateIdle
			c.errs[ErrorSourceOrder] = err.Error()
		})

		return nil, fmt.Errorf("orders.CreateOrder: %w", err)
	}

	c.mu.Lock()

	if c.closed {
		c.state = StateIdle
		c.mu.Unlock()
		c.notify()

		c.log.Warn("Order created after close, its settlement is not watched",
			slog.String("order_id", ord.ID()),
			slog.String("order_status", string(ord.Status())),
		)

		return ord, ErrClosed
	}

	watchCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	c.cancelWatch = cancel
	c.watchDone = done
	c.state = StateAwaitingSettlement
	c.activeOrderID = ord.ID()
	delete(c.errs, ErrorSourceOrder)
	c.updatedAt = time.Now()
	c.mu.Unlock()
	c.notify()

	c.log.Info("Order created",
		slog.String("order_id", ord.ID()),
		slog.String("order_status", string(ord.Status())),
	)

	go c.awaitSettlement(watchCtx, cancel, done, ord.ID())

	return ord, nil
}

func (c *Controller) awaitSettlement(ctx context.Context, cancel context.CancelFunc, done chan struct{}, orderID string) {
	defer close(done)
	defer cancel()

	settled, err := c.poller.Watch(ctx, orderID)

	switch {
	case ctx.Err() != nil:
		c.log.Info("Settlement watch cancelled", slog.String("order_id", orderID))
		c.finishWatch()

		return

	case errors.Is(err, settlement.ErrTimeout):
		c.log.Warn("Order is still awaiting settlement", slog.String("order_id", orderID), slog.Any("error", err))
		c.update(func() {
			c.warning = err.Error()
		})

	case err != nil:
		c.log.Error("poller.Watch", slog.String("order_id", orderID), slog.Any("error", err))
		c.recordError(ErrorSourceOrder, err)

	default:
		c.log.Info("Order settled",
			slog.String("order_id", orderID),
			slog.String("order_status", string(settled.Status())),
		)
	}

	c.update(func() {
		c.state = StateReconciling
	})

	if err := c.RefreshOrders(ctx); err != nil {
		c.log.Error("Reconcile order history", slog.String("order_id", orderID), slog.Any("error", err))
	}

	if err := c.RefreshBalance(ctx); err != nil {
		c.log.Error("Reconcile balance", slog.String("order_id", orderID), slog.Any("error", err))
	}

	c.finishWatch()
}

func (c *Controller) finishWatch() {
	c.update(func() {
		c.state = StateIdle
		c.activeOrderID = ""
		c.cancelWatch = nil
		c.watchDone = nil
	})
}

// Close cancels an active settlement watch, waits for it to stop and
// closes all subscriptions. Calling Close more than once is safe.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	cancel, done := c.cancelWatch, c.watchDone
	c.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}

	c.subsMu.Lock()
	defer c.subsMu.Unlock()

	for id, ch := range c.subs {
		close(ch)
		delete(c.subs, id)
	}

	c.log.Info("Reconciler closed")
}

func (c *Controller) BillID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.billID
}

func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.state
}

func (c *Controller) recordError(source ErrorSource, err error) {
	c.update(func() {
		c.errs[source] = err.Error()
	})
}

// update applies fn under the state lock and notifies subscribers.
func (c *Controller) update(fn func()) {
	c.mu.Lock()
	fn()
	c.updatedAt = time.Now()
	c.mu.Unlock()

	c.notify()
}
