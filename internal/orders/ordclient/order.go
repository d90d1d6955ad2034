package ordclient

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/andymarkow/paydash/internal/domain/orders"
	"github.com/shopspring/decimal"
)

// orderID accepts both string and numeric identifiers.
type orderID string

func (id *orderID) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err //nolint:wrapcheck
		}

		*id = orderID(s)

		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("order id must be a string or a number: %w", err)
	}

	*id = orderID(n.String())

	return nil
}

type OrderModel struct {
	ID          orderID         `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Status      string          `json:"status"`
}

func (m *OrderModel) toOrder() (*orders.Order, error) {
	return orders.NewOrder(string(m.ID), m.Amount, m.Description, m.Status) //nolint:wrapcheck
}

type createOrderRequest struct {
	Amount      json.Number `json:"amount"`
	Description string      `json:"description"`
}

// isJSONArray reports whether body holds a JSON array, ignoring leading whitespace.
func isJSONArray(body []byte) bool {
	trimmed := bytes.TrimLeft(body, " \t\r\n")

	return len(trimmed) > 0 && trimmed[0] == '['
}
