package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/saradorri/edrewards/internal/domain"
	"github.com/saradorri/edrewards/internal/infrastructure/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(baseURL string, timeout time.Duration, retries int) domain.PaymentProvider {
	return NewPaymentProvider(Config{
		BaseURL:      baseURL,
		APIUser:      "api-user",
		APIKey:       "api-key",
		Timeout:      timeout,
		RetryMax:     retries,
		RetryWaitMin: time.Millisecond,
		RetryWaitMax: 5 * time.Millisecond,
	}, logger.NewLogger("test", "debug"))
}

func TestInitiatePayment(t *testing.T) {
	ctx := context.Background()
	request := domain.PaymentRequest{
		Amount:     47500,
		Phone:      "677123456",
		UserID:     "u1",
		ExternalID: "purchase:pro:u1:1",
		Message:    "Machine purchase",
	}

	t.Run("Success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/direct-pay", r.URL.Path)
			assert.Equal(t, "api-user", r.Header.Get("apiuser"))
			assert.Equal(t, "api-key", r.Header.Get("apikey"))

			var body domain.PaymentRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, request, body)

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"transId":"tx-1","message":"Accepted"}`))
		}))
		defer server.Close()

		resp, err := newTestProvider(server.URL, time.Second, 0).InitiatePayment(ctx, request)
		require.NoError(t, err)
		assert.Equal(t, "tx-1", resp.TransID)
	})

	t.Run("Error_Body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"message":"Insufficient funds","code":"LOW_BALANCE"}`))
		}))
		defer server.Close()

		_, err := newTestProvider(server.URL, time.Second, 0).InitiatePayment(ctx, request)
		var providerErr *domain.ProviderError
		require.True(t, errors.As(err, &providerErr), "got %v", err)
		assert.Equal(t, http.StatusBadRequest, providerErr.StatusCode)
		assert.Equal(t, "LOW_BALANCE", providerErr.Code)
		assert.Equal(t, "Insufficient funds", providerErr.Message)
	})

	t.Run("Server_Error_Is_Not_Resent", func(t *testing.T) {
		var calls int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte("boom"))
		}))
		defer server.Close()

		_, err := newTestProvider(server.URL, time.Second, 3).InitiatePayment(ctx, request)
		var providerErr *domain.ProviderError
		require.True(t, errors.As(err, &providerErr), "got %v", err)
		assert.Equal(t, http.StatusInternalServerError, providerErr.StatusCode)
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	})

	t.Run("Empty_Transaction_ID", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"message":"ok"}`))
		}))
		defer server.Close()

		_, err := newTestProvider(server.URL, time.Second, 0).InitiatePayment(ctx, request)
		var providerErr *domain.ProviderError
		require.True(t, errors.As(err, &providerErr), "got %v", err)
		assert.Equal(t, "EMPTY_TRANS_ID", providerErr.Code)
	})

	t.Run("Timeout", func(t *testing.T) {
		release := make(chan struct{})
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-time.After(time.Second):
			}
		}))
		defer server.Close()
		defer close(release)

		_, err := newTestProvider(server.URL, 50*time.Millisecond, 0).InitiatePayment(ctx, request)
		assert.True(t, errors.Is(err, domain.ErrProviderTimeout), "got %v", err)
	})
}

func TestPaymentStatus(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/payment-status/tx-1", r.URL.Path)
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"transId":"tx-1","status":"SUCCESSFUL","externalId":"purchase:pro:u1:1","amount":47500}`))
	}))
	defer server.Close()

	payment, err := newTestProvider(server.URL, time.Second, 2).PaymentStatus(context.Background(), "tx-1")
	require.NoError(t, err)
	assert.Equal(t, domain.ProviderStatusSuccessful, payment.Status)
	assert.Equal(t, int64(47500), payment.Amount)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestFindPaymentByExternalID(t *testing.T) {
	ctx := context.Background()

	t.Run("Returns_Latest_Attempt", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/transaction/external/purchase:pro:u1:1", r.URL.Path)
			_, _ = w.Write([]byte(`[{"transId":"tx-1","status":"FAILED"},{"transId":"tx-2","status":"SUCCESSFUL"}]`))
		}))
		defer server.Close()

		payment, err := newTestProvider(server.URL, time.Second, 0).FindPaymentByExternalID(ctx, "purchase:pro:u1:1")
		require.NoError(t, err)
		require.NotNil(t, payment)
		assert.Equal(t, "tx-2", payment.TransID)
	})

	t.Run("Not_Found", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"no transaction"}`))
		}))
		defer server.Close()

		payment, err := newTestProvider(server.URL, time.Second, 0).FindPaymentByExternalID(ctx, "purchase:pro:u1:1")
		require.NoError(t, err)
		assert.Nil(t, payment)
	})

	t.Run("Empty_List", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`[]`))
		}))
		defer server.Close()

		payment, err := newTestProvider(server.URL, time.Second, 0).FindPaymentByExternalID(ctx, "purchase:pro:u1:1")
		require.NoError(t, err)
		assert.Nil(t, payment)
	})

	t.Run("Unreachable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := server.URL
		server.Close()

		_, err := newTestProvider(url, time.Second, 0).FindPaymentByExternalID(ctx, "purchase:pro:u1:1")
		assert.Error(t, err)
		assert.False(t, IsNotFound(err))
	})
}
