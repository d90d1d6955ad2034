package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/andymarkow/paydash/internal/domain/orders"
	"github.com/andymarkow/paydash/internal/errmsg"
	"github.com/andymarkow/paydash/internal/reconciler"
	"github.com/andymarkow/paydash/internal/server/models"
)

// Dashboard is the controller state and commands exposed to the presentation layer.
type Dashboard interface {
	Snapshot() reconciler.Snapshot
	Subscribe() (<-chan reconciler.Snapshot, func())
	TopUp(ctx context.Context, rawAmount string) error
	RefreshBalance(ctx context.Context) error
	RefreshOrders(ctx context.Context) error
	PlaceOrder(ctx context.Context) (*orders.Order, error)
}

type Handlers struct {
	dashboard Dashboard
	log       *slog.Logger
}

// NewHandlers returns a new Handlers instance.
func NewHandlers(dashboard Dashboard, opts ...Option) *Handlers {
	handlers := &Handlers{
		dashboard: dashboard,
		log:       slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		opt(handlers)
	}

	return handlers
}

// Option is a functional option for Handlers.
type Option func(h *Handlers)

// WithLogger is a option for Handlers that sets logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handlers) {
		h.log = logger
	}
}

type JSONResponse struct {
	Message any `json:"message,omitempty"`
	Error   any `json:"error,omitempty"`
}

func handleJSONResponse(w http.ResponseWriter, status int, resp any) {
	w.Header().Set("content-type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func handleError(w http.ResponseWriter, err errmsg.HTTPError) {
	resp := &JSONResponse{
		Error: err.Error(),
	}

	w.Header().Set("content-type", "application/json")
	w.WriteHeader(err.Code)

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
}

// handleDashboardError maps controller errors onto HTTP errors.
func (h *Handlers) handleDashboardError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, reconciler.ErrInvalidAmount):
		h.log.Debug(op, slog.Any("error", err))
		handleError(w, errmsg.ErrTopUpAmountInvalid)

	case errors.Is(err, reconciler.ErrAccountNotReady):
		h.log.Warn(op, slog.Any("error", err))
		handleError(w, errmsg.ErrAccountNotReady)

	case errors.Is(err, reconciler.ErrOrderInFlight):
		h.log.Warn(op, slog.Any("error", err))
		handleError(w, errmsg.ErrOrderInFlight)

	case errors.Is(err, reconciler.ErrClosed):
		handleError(w, errmsg.ErrDashboardClosed)

	default:
		h.log.Error(op, slog.Any("error", err))
		handleError(w, errmsg.NewUpstreamError(err))
	}
}

func (h *Handlers) Ping(w http.ResponseWriter, _ *http.Request) {
	handleJSONResponse(w, http.StatusOK, &JSONResponse{Message: "ok"})
}

func (h *Handlers) GetDashboard(w http.ResponseWriter, _ *http.Request) {
	handleJSONResponse(w, http.StatusOK, models.NewDashboardResponse(h.dashboard.Snapshot()))
}

func (h *Handlers) TopUpBalance(w http.ResponseWriter, r *http.Request) {
	var payload models.TopUpRequest

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		if errors.Is(err, io.EOF) {
			h.log.Error("json.NewDecoder().Decode()", slog.Any("error", err))
			handleError(w, errmsg.ErrRequestPayloadEmpty)

			return
		}

		h.log.Error("json.NewDecoder().Decode()", slog.Any("error", err))
		handleError(w, errmsg.ErrRequestPayloadInvalid)

		return
	}

	defer r.Body.Close()

	if err := h.dashboard.TopUp(r.Context(), string(payload.Amount)); err != nil {
		h.handleDashboardError(w, "dashboard.TopUp()", err)

		return
	}

	handleJSONResponse(w, http.StatusOK, models.NewDashboardResponse(h.dashboard.Snapshot()))
}

func (h *Handlers) RefreshBalance(w http.ResponseWriter, r *http.Request) {
	if err := h.dashboard.RefreshBalance(r.Context()); err != nil {
		h.handleDashboardError(w, "dashboard.RefreshBalance()", err)

		return
	}

	handleJSONResponse(w, http.StatusOK, models.NewDashboardResponse(h.dashboard.Snapshot()))
}

func (h *Handlers) CreateOrder(w http.ResponseWriter, r *http.Request) {
	ord, err := h.dashboard.PlaceOrder(r.Context())
	if err != nil {
		h.handleDashboardError(w, "dashboard.PlaceOrder()", err)

		return
	}

	handleJSONResponse(w, http.StatusAccepted, models.NewOrderResponse(ord))
}

func (h *Handlers) GetOrders(w http.ResponseWriter, _ *http.Request) {
	handleJSONResponse(w, http.StatusOK, models.NewOrderListResponse(h.dashboard.Snapshot().Orders))
}

func (h *Handlers) RefreshOrders(w http.ResponseWriter, r *http.Request) {
	if err := h.dashboard.RefreshOrders(r.Context()); err != nil {
		h.handleDashboardError(w, "dashboard.RefreshOrders()", err)

		return
	}

	handleJSONResponse(w, http.StatusOK, models.NewOrderListResponse(h.dashboard.Snapshot().Orders))
}
