package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seatrelay/seatrelay-backend/pkg/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(config.GatewayConfig{
		BaseURL:     srv.URL,
		APISecret:   "sk_test",
		StoreID:     "store-1",
		HTTPTimeout: 2 * time.Second,
	})
	require.NoError(t, err)
	return client, srv
}

func TestGetPaymentPaid(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/payments/sess-1", r.URL.Path)
		assert.Equal(t, "PortOne sk_test", r.Header.Get("Authorization"))
		assert.Equal(t, "store-1", r.URL.Query().Get("storeId"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"sess-1","status":"PAID","amount":{"total":55000}}`))
	})

	result, err := client.GetPayment(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, result.Status)
	assert.Equal(t, int64(55000), result.Amount)
	assert.True(t, result.Status.IsTerminal())
}

func TestGetPaymentNormalizesUnknownStatus(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"sess-2","status":"VIRTUAL_ACCOUNT_ISSUED"}`))
	})

	result, err := client.GetPayment(context.Background(), "sess-2")
	require.NoError(t, err)
	assert.Equal(t, StatusReady, result.Status)
	assert.False(t, result.Status.IsTerminal())
}

func TestGetPaymentNotFound(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.GetPayment(context.Background(), "missing")
	require.ErrorIs(t, err, ErrPaymentNotFound)
}

func TestGetPaymentGatewayError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`upstream exploded`))
	})

	_, err := client.GetPayment(context.Background(), "sess-3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}
