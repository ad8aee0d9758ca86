package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coursely/payrelay/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.Config{
		Gateway: config.GatewayConfig{
			BaseURL:   srv.URL,
			SecretKey: "sk_test_secret",
			Timeout:   2 * time.Second,
		},
	}
	return NewClient(cfg, zap.NewNop()), srv
}

func TestInitializeSendsMinorUnitsAndReference(t *testing.T) {
	var got map[string]any
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/transaction/initialize", r.URL.Path)
		require.Equal(t, "Bearer sk_test_secret", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		json.NewEncoder(w).Encode(map[string]any{
			"status": true,
			"data": map[string]any{
				"authorization_url": "https://checkout.example/abc",
				"access_code":       "abc",
				"reference":         got["reference"],
			},
		})
	}))

	result, err := client.Initialize(context.Background(), InitializeRequest{
		Email:       "a@b.com",
		FullName:    "Jane Doe",
		AmountMajor: 4900,
		GCLID:       "gclid_123",
	})
	require.NoError(t, err)

	assert.Equal(t, "https://checkout.example/abc", result.AuthorizationURL)
	assert.Equal(t, float64(490000), got["amount"], "major units converted to minor for the gateway")
	assert.True(t, strings.HasPrefix(result.Reference, "ref_"))

	metadata, ok := got["metadata"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Jane Doe", metadata["full_name"])
	assert.Equal(t, "gclid_123", metadata["gclid"])
}

func TestVerifyNormalizesSuccessfulTransaction(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/transaction/verify/txn_1", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"status": true,
			"data": map[string]any{
				"status":     "success",
				"reference":  "txn_1",
				"amount":     490000,
				"currency":   "ngn",
				"paid_at":    "2026-03-01T10:30:00Z",
				"ip_address": "41.0.0.1",
				"customer": map[string]any{
					"email":      "a@b.com",
					"first_name": "Jane",
					"last_name":  "Doe",
				},
				"metadata": map[string]any{
					"full_name": "Jane Doe",
					"country":   "NG",
				},
			},
		})
	}))

	result, err := client.Verify(context.Background(), "txn_1")
	require.NoError(t, err)

	assert.True(t, result.Succeeded)
	assert.Equal(t, int64(490000), result.AmountMinor)
	assert.Equal(t, "NGN", result.Currency)
	assert.Equal(t, "a@b.com", result.Email)
	assert.Equal(t, "Jane Doe", result.FullName)
	assert.Equal(t, "", result.GCLID)
	assert.Equal(t, "41.0.0.1", result.IP)
	assert.Equal(t, "NG", result.Country)
	assert.Equal(t, time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC), result.PaidAt)
}

func TestVerifyFailsWhenTransactionNotSuccessful(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"status": true,
			"data":   map[string]any{"status": "failed", "reference": "txn_2"},
		})
	}))

	_, err := client.Verify(context.Background(), "txn_2")
	assert.ErrorIs(t, err, ErrVerificationFailed)
}

func TestVerifyFailsWhenTransactionNotFound(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := client.Verify(context.Background(), "txn_missing")
	assert.ErrorIs(t, err, ErrVerificationFailed)
}

func TestVerifyReportsUpstreamError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("gateway exploded"))
	}))

	_, err := client.Verify(context.Background(), "txn_3")
	assert.ErrorIs(t, err, ErrUpstream)
	assert.Contains(t, err.Error(), "gateway exploded")
}
