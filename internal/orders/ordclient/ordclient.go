package ordclient

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/andymarkow/paydash/internal/domain/orders"
	"github.com/andymarkow/paydash/internal/httpclient"
	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

// OrdersClient talks to the order service.
type OrdersClient struct {
	log    *slog.Logger
	client *resty.Client
}

func New(opts ...Option) *OrdersClient {
	ordClient := &OrdersClient{
		log:    slog.Default(),
		client: httpclient.New(),
	}

	for _, opt := range opts {
		opt(ordClient)
	}

	ordClient.log = ordClient.log.With(slog.String("module", "orders_client"))

	return ordClient
}

type Option func(o *OrdersClient)

func WithLogger(logger *slog.Logger) Option {
	return func(o *OrdersClient) {
		o.log = logger
	}
}

func WithClient(client *resty.Client) Option {
	return func(o *OrdersClient) {
		o.client = client
	}
}

func (o *OrdersClient) CreateOrder(ctx context.Context, userID string, amount decimal.Decimal, description string) (*orders.Order, error) {
	resp, err := o.client.R().
		SetContext(ctx).
		SetPathParams(map[string]string{
			"userID": userID,
		}).
		SetBody(&createOrderRequest{
			Amount:      json.Number(amount.String()),
			Description: description,
		}).
		Post("/orders/create/{userID}")
	if err := httpclient.Check(resp, err); err != nil {
		return nil, fmt.Errorf("client.R: %w", err)
	}

	return decodeOrder(resp)
}

func (o *OrdersClient) GetOrderStatus(ctx context.Context, orderID string) (*orders.Order, error) {
	resp, err := o.client.R().
		SetContext(ctx).
		SetPathParams(map[string]string{
			"orderID": orderID,
		}).
		Get("/orders/status/{orderID}")
	if err := httpclient.Check(resp, err); err != nil {
		return nil, fmt.Errorf("client.R: %w", err)
	}

	return decodeOrder(resp)
}

// ListOrders returns the user's order history as sent by the order service.
// A successful response that is not a JSON array yields an empty list.
func (o *OrdersClient) ListOrders(ctx context.Context, userID string) ([]*orders.Order, error) {
	resp, err := o.client.R().
		SetContext(ctx).
		SetPathParams(map[string]string{
			"userID": userID,
		}).
		Get("/orders/orders/{userID}")
	if err := httpclient.Check(resp, err); err != nil {
		return nil, fmt.Errorf("client.R: %w", err)
	}

	if !isJSONArray(resp.Body()) {
		o.log.Warn("Order list response is not an array, using empty list",
			slog.String("user_id", userID),
		)

		return []*orders.Order{}, nil
	}

	var data []OrderModel
	if err := httpclient.Decode(resp, &data); err != nil {
		return nil, fmt.Errorf("httpclient.Decode: %w", err)
	}

	ords := make([]*orders.Order, 0, len(data))

	for i := range data {
		ord, err := data[i].toOrder()
		if err != nil {
			return nil, fmt.Errorf("%w: order #%d: %w", httpclient.ErrMalformedResponse, i, err)
		}

		ords = append(ords, ord)
	}

	return ords, nil
}

func decodeOrder(resp *resty.Response) (*orders.Order, error) {
	data := new(OrderModel)
	if err := httpclient.Decode(resp, data); err != nil {
		return nil, fmt.Errorf("httpclient.Decode: %w", err)
	}

	ord, err := data.toOrder()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", httpclient.ErrMalformedResponse, err)
	}

	return ord, nil
}
