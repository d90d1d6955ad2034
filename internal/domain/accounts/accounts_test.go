package accounts

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAccount(t *testing.T) {
	acc, err := NewAccount("b1", decimal.NewFromInt(10))
	require.NoError(t, err)
	assert.Equal(t, "b1", acc.BillID())
	assert.True(t, decimal.NewFromInt(10).Equal(acc.Balance()))

	_, err = NewAccount("", decimal.Zero)
	require.ErrorIs(t, err, ErrBillIDEmpty)

	_, err = NewAccount("b1", decimal.NewFromInt(-1))
	require.ErrorIs(t, err, ErrBalanceNegative)
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "integer", raw: "100", want: "100"},
		{name: "fraction", raw: "12.5", want: "12.5"},
		{name: "empty", raw: "", wantErr: true},
		{name: "not a number", raw: "abc", wantErr: true},
		{name: "zero", raw: "0", wantErr: true},
		{name: "negative", raw: "-5", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.raw)
			if tt.wantErr {
				require.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}
