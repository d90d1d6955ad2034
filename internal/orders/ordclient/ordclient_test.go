package ordclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/andymarkow/paydash/internal/domain/orders"
	"github.com/andymarkow/paydash/internal/httpclient"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUserID = "120338e1-bd44-4ee3-9258-01f57c2c5a5c"

func newTestClient(t *testing.T, handler http.HandlerFunc) *OrdersClient {
	t.Helper()

	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	return New(WithClient(httpclient.New(
		httpclient.WithBaseURL(ts.URL),
		httpclient.WithRetryCount(0),
		httpclient.WithTimeout(time.Second),
	)))
}

func TestCreateOrder(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/orders/create/"+testUserID, r.URL.Path)

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, 50.0, body["amount"])
		assert.Equal(t, "test", body["description"])

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"o1","amount":50,"description":"test","status":"new"}`)) //nolint:errcheck
	})

	ord, err := client.CreateOrder(context.Background(), testUserID, decimal.NewFromFloat(50.0), "test")
	require.NoError(t, err)
	assert.Equal(t, "o1", ord.ID())
	assert.Equal(t, orders.OrderStatusNew, ord.Status())
	assert.Equal(t, "test", ord.Description())
}

func TestCreateOrderFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.CreateOrder(context.Background(), testUserID, decimal.NewFromInt(50), "test")
	require.ErrorIs(t, err, httpclient.ErrUnexpectedStatus)
}

func TestGetOrderStatus(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantID     string
		wantStatus orders.OrderStatus
	}{
		{name: "string id", body: `{"id":"o1","status":"finished"}`, wantID: "o1", wantStatus: orders.OrderStatusFinished},
		{name: "numeric id", body: `{"id":42,"status":"canceled","amount":50}`, wantID: "42", wantStatus: orders.OrderStatusCanceled},
		{name: "unknown status", body: `{"id":"o1","status":"refunded"}`, wantID: "o1", wantStatus: orders.OrderStatus("refunded")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, "/orders/status/o1", r.URL.Path)
				w.Write([]byte(tt.body)) //nolint:errcheck
			})

			ord, err := client.GetOrderStatus(context.Background(), "o1")
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, ord.ID())
			assert.Equal(t, tt.wantStatus, ord.Status())
		})
	}
}

func TestGetOrderStatusNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.GetOrderStatus(context.Background(), "o1")
	require.ErrorIs(t, err, httpclient.ErrNotFound)
}

func TestListOrders(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders/orders/"+testUserID, r.URL.Path)
		w.Write([]byte(` [{"id":"o2","amount":10,"status":"new"},{"id":"o1","amount":50,"status":"finished"}]`)) //nolint:errcheck
	})

	ords, err := client.ListOrders(context.Background(), testUserID)
	require.NoError(t, err)
	require.Len(t, ords, 2)
	assert.Equal(t, "o2", ords[0].ID())
	assert.Equal(t, "o1", ords[1].ID())
	assert.Equal(t, orders.OrderStatusFinished, ords[1].Status())
}

func TestListOrdersNonArray(t *testing.T) {
	for _, body := range []string{`{"error":"db down"}`, `null`, ``} {
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(body)) //nolint:errcheck
		})

		ords, err := client.ListOrders(context.Background(), testUserID)
		require.NoError(t, err)
		assert.NotNil(t, ords)
		assert.Empty(t, ords)
	}
}

func TestListOrdersServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.ListOrders(context.Background(), testUserID)
	require.ErrorIs(t, err, httpclient.ErrUnexpectedStatus)
}

func TestListOrdersMalformedItem(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`[{"amount":10,"status":"new"}]`)) //nolint:errcheck
	})

	_, err := client.ListOrders(context.Background(), testUserID)
	require.ErrorIs(t, err, httpclient.ErrMalformedResponse)
}
