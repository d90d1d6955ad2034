package accounts

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrBillIDEmpty       = errors.New("bill id is empty")
	ErrBalanceNegative   = errors.New("balance is negative")
	ErrAmountNotPositive = errors.New("amount must be positive")
)

// Account is the client-side view of a user's bill as reported by the account service.
type Account struct {
	billID  string
	balance decimal.Decimal
}

func NewAccount(billID string, balance decimal.Decimal) (*Account, error) {
	if billID == "" {
		return nil, ErrBillIDEmpty
	}

	if balance.IsNegative() {
		return nil, ErrBalanceNegative
	}

	return &Account{
		billID:  billID,
		balance: balance,
	}, nil
}

func (a *Account) BillID() string {
	return a.billID
}

func (a *Account) Balance() decimal.Decimal {
	return a.balance
}

// ParseAmount parses a user supplied top-up amount. Only positive finite values are accepted.
func ParseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, err //nolint:wrapcheck
	}

	if !amount.IsPositive() {
		return decimal.Zero, ErrAmountNotPositive
	}

	return amount, nil
}
