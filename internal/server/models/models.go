package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/andymarkow/paydash/internal/domain/orders"
	"github.com/andymarkow/paydash/internal/reconciler"
	"github.com/shopspring/decimal"
)

// TopUpAmount keeps the raw amount text whether it was sent as a JSON string or a JSON number.
type TopUpAmount string

func (a *TopUpAmount) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err //nolint:wrapcheck
		}

		*a = TopUpAmount(s)

		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("amount must be a string or a number: %w", err)
	}

	*a = TopUpAmount(n.String())

	return nil
}

type TopUpRequest struct {
	Amount TopUpAmount `json:"amount"`
}

type OrderResponse struct {
	ID          string             `json:"id"`
	Amount      decimal.Decimal    `json:"amount"`
	Description string             `json:"description,omitempty"`
	Status      orders.OrderStatus `json:"status"`
}

type DashboardResponse struct {
	UserID          string            `json:"user_id"`
	BillID          string            `json:"bill_id,omitempty"`
	Balance         decimal.Decimal   `json:"balance"`
	Orders          []OrderResponse   `json:"orders"`
	State           reconciler.State  `json:"state"`
	OrderingEnabled bool              `json:"ordering_enabled"`
	ActiveOrderID   string            `json:"active_order_id,omitempty"`
	Warning         string            `json:"warning,omitempty"`
	LastError       string            `json:"last_error,omitempty"`
	Errors          map[string]string `json:"errors,omitempty"`
	UpdatedAt       string            `json:"updated_at"`
}

func NewOrderResponse(ord *orders.Order) OrderResponse {
	return OrderResponse{
		ID:          ord.ID(),
		Amount:      ord.Amount(),
		Description: ord.Description(),
		Status:      ord.Status(),
	}
}

func NewOrderListResponse(ords []*orders.Order) []OrderResponse {
	resp := make([]OrderResponse, 0, len(ords))

	for _, ord := range ords {
		resp = append(resp, NewOrderResponse(ord))
	}

	return resp
}

func NewDashboardResponse(snap reconciler.Snapshot) DashboardResponse {
	return DashboardResponse{
		UserID:          snap.UserID,
		BillID:          snap.BillID,
		Balance:         snap.Balance,
		Orders:          NewOrderListResponse(snap.Orders),
		State:           snap.State,
		OrderingEnabled: snap.OrderingEnabled(),
		ActiveOrderID:   snap.ActiveOrderID,
		Warning:         snap.Warning,
		LastError:       snap.LastError(),
		Errors:          newErrorsResponse(snap.Errors),
		UpdatedAt:       snap.UpdatedAt.Format(time.RFC3339),
	}
}

func newErrorsResponse(errs map[reconciler.ErrorSource]string) map[string]string {
	if len(errs) == 0 {
		return nil
	}

	resp := make(map[string]string, len(errs))
	for source, msg := range errs {
		resp[string(source)] = msg
	}

	return resp
}
