package payclient

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/andymarkow/paydash/internal/domain/accounts"
	"github.com/andymarkow/paydash/internal/httpclient"
	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

// PaymentsClient talks to the account service.
type PaymentsClient struct {
	log    *slog.Logger
	client *resty.Client
}

func New(opts ...Option) *PaymentsClient {
	payClient := &PaymentsClient{
		log:    slog.Default(),
		client: httpclient.New(),
	}

	for _, opt := range opts {
		opt(payClient)
	}

	payClient.log = payClient.log.With(slog.String("module", "payments_client"))

	return payClient
}

type Option func(p *PaymentsClient)

func WithLogger(logger *slog.Logger) Option {
	return func(p *PaymentsClient) {
		p.log = logger
	}
}

func WithClient(client *resty.Client) Option {
	return func(p *PaymentsClient) {
		p.client = client
	}
}

type accountModel struct {
	BillID  string          `json:"bill_id"`
	Balance decimal.Decimal `json:"balance"`
}

type balanceModel struct {
	Balance decimal.Decimal `json:"balance"`
}

type topUpRequest struct {
	Amount json.Number `json:"amount"`
}

// CreateAccount creates the user's bill or returns the existing one.
func (p *PaymentsClient) CreateAccount(ctx context.Context, userID string) (*accounts.Account, error) {
	resp, err := p.client.R().
		SetContext(ctx).
		SetPathParams(map[string]string{
			"userID": userID,
		}).
		Post("/payments/create/{userID}")
	if err := httpclient.Check(resp, err); err != nil {
		return nil, fmt.Errorf("client.R: %w", err)
	}

	data := new(accountModel)
	if err := httpclient.Decode(resp, data); err != nil {
		return nil, fmt.Errorf("httpclient.Decode: %w", err)
	}

	acc, err := accounts.NewAccount(data.BillID, data.Balance)
	if err != nil {
		return nil, fmt.Errorf("%w: accounts.NewAccount: %w", httpclient.ErrMalformedResponse, err)
	}

	p.log.Debug("Account ready", slog.String("bill_id", acc.BillID()))

	return acc, nil
}

// TopUp credits amount to the bill. The response body is ignored.
func (p *PaymentsClient) TopUp(ctx context.Context, billID, userID string, amount decimal.Decimal) error {
	resp, err := p.client.R().
		SetContext(ctx).
		SetPathParams(map[string]string{
			"billID": billID,
		}).
		SetQueryParam("user_id", userID).
		SetBody(&topUpRequest{Amount: json.Number(amount.String())}).
		Post("/payments/add/{billID}")
	if err := httpclient.Check(resp, err); err != nil {
		return fmt.Errorf("client.R: %w", err)
	}

	return nil
}

func (p *PaymentsClient) GetBalance(ctx context.Context, billID, userID string) (decimal.Decimal, error) {
	resp, err := p.client.R().
		SetContext(ctx).
		SetPathParams(map[string]string{
			"billID": billID,
		}).
		SetQueryParam("user_id", userID).
		Get("/payments/balance/{billID}")
	if err := httpclient.Check(resp, err); err != nil {
		return decimal.Zero, fmt.Errorf("client.R: %w", err)
	}

	data := new(balanceModel)
	if err := httpclient.Decode(resp, data); err != nil {
		return decimal.Zero, fmt.Errorf("httpclient.Decode: %w", err)
	}

	return data.Balance, nil
}
