package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signHex(secret string, message []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(message)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyPaymentSignature(t *testing.T) {
	service := NewPaymentService("key_id", "key_secret", "webhook_secret", "http://gateway", nil)

	signature := signHex("key_secret", []byte("order_123|pay_456"))
	require.True(t, service.VerifyPaymentSignature("order_123", "pay_456", signature))

	require.False(t, service.VerifyPaymentSignature("order_123", "pay_456", "deadbeef"))
	require.False(t, service.VerifyPaymentSignature("order_999", "pay_456", signature))
	require.False(t, service.VerifyPaymentSignature("order_123", "pay_456", ""))
}

func TestVerifyWebhookSignature(t *testing.T) {
	service := NewPaymentService("key_id", "key_secret", "webhook_secret", "http://gateway", nil)

	body := []byte(`{"event":"payment.captured"}`)
	require.True(t, service.VerifyWebhookSignature(body, signHex("webhook_secret", body)))

	// signed with the wrong secret
	require.False(t, service.VerifyWebhookSignature(body, signHex("key_secret", body)))
	// tampered body
	require.False(t, service.VerifyWebhookSignature([]byte(`{"event":"payment.failed"}`), signHex("webhook_secret", body)))
}

func TestCreateOrder(t *testing.T) {
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/orders", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "key_id", user)
		assert.Equal(t, "key_secret", pass)

		var payload map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, float64(49900), payload["amount"])
		assert.Equal(t, "INR", payload["currency"])

		json.NewEncoder(w).Encode(GatewayOrder{
			ID:       "order_test_1",
			Amount:   49900,
			Currency: "INR",
			Receipt:  payload["receipt"].(string),
			Status:   "created",
		})
	}))
	defer gateway.Close()

	service := NewPaymentService("key_id", "key_secret", "webhook_secret", gateway.URL, gateway.Client())

	order, err := service.CreateOrder(context.Background(), 49900, "INR", "rcpt_abc")
	require.NoError(t, err)
	require.Equal(t, "order_test_1", order.ID)
	require.Equal(t, int64(49900), order.Amount)
	require.Equal(t, "rcpt_abc", order.Receipt)
}

func TestCreateOrderGatewayError(t *testing.T) {
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer gateway.Close()

	service := NewPaymentService("bad", "creds", "whsec", gateway.URL, gateway.Client())

	_, err := service.CreateOrder(context.Background(), 100, "INR", "rcpt_x")
	require.Error(t, err)
}

func TestRefund(t *testing.T) {
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/payments/pay_123/refund", r.URL.Path)
		w.Write([]byte(`{"id":"rfnd_1","status":"processed"}`))
	}))
	defer gateway.Close()

	service := NewPaymentService("key_id", "key_secret", "webhook_secret", gateway.URL, gateway.Client())
	require.NoError(t, service.Refund(context.Background(), "pay_123", 49900))
}
