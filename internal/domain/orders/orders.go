package orders

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrOrderIDEmpty     = errors.New("order id is empty")
	ErrOrderStatusEmpty = errors.New("order status is empty")
)

// OrderStatus is the settlement state reported by the order service.
// Values other than the ones declared below are kept as-is.
type OrderStatus string

const (
	OrderStatusNew      OrderStatus = "new"
	OrderStatusFinished OrderStatus = "finished"
	OrderStatusCanceled OrderStatus = "canceled"
)

// IsSettled reports whether the order has left the only non-terminal state.
func (s OrderStatus) IsSettled() bool {
	return s != OrderStatusNew
}

type Order struct {
	id          string
	amount      decimal.Decimal
	description string
	status      OrderStatus
}

func NewOrder(id string, amount decimal.Decimal, description string, status string) (*Order, error) {
	if id == "" {
		return nil, ErrOrderIDEmpty
	}

	if status == "" {
		return nil, ErrOrderStatusEmpty
	}

	return &Order{
		id:          id,
		amount:      amount,
		description: description,
		status:      OrderStatus(status),
	}, nil
}

func (o *Order) ID() string {
	return o.id
}

func (o *Order) Amount() decimal.Decimal {
	return o.amount
}

func (o *Order) Description() string {
	return o.description
}

func (o *Order) Status() OrderStatus {
	return o.status
}

func (o *Order) IsSettled() bool {
	return o.status.IsSettled()
}
