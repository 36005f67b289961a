package services

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"learnhub/config"
)

// GatewayOrder is the order object returned by the payment gateway
type GatewayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// PaymentService talks to the Razorpay-style checkout API and verifies the
// signed callbacks it sends back.
type PaymentService struct {
	keyID         string
	keySecret     string
	webhookSecret string
	baseURL       string
	client        *http.Client
}

var paymentService *PaymentService

// NewPaymentService creates a gateway client. baseURL and client are
// injectable so tests can point at a local server.
func NewPaymentService(keyID, keySecret, webhookSecret, baseURL string, client *http.Client) *PaymentService {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &PaymentService{
		keyID:         keyID,
		keySecret:     keySecret,
		webhookSecret: webhookSecret,
		baseURL:       baseURL,
		client:        client,
	}
}

// InitPaymentService wires the singleton gateway client from config
func InitPaymentService(cfg *config.Config) {
	paymentService = NewPaymentService(
		cfg.Razorpay.KeyId,
		cfg.Razorpay.KeySecret,
		cfg.Razorpay.WebhookSecret,
		cfg.Razorpay.BaseURL,
		nil,
	)
}

// GetPaymentService returns the singleton gateway client
func GetPaymentService() *PaymentService {
	return paymentService
}

// KeyID returns the public key id the frontend needs to open checkout
func (p *PaymentService) KeyID() string {
	return p.keyID
}

// CreateOrder registers an order with the gateway before checkout opens
func (p *PaymentService) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*GatewayOrder, error) {
	payload := map[string]interface{}{
		"amount":   amount,
		"currency": currency,
		"receipt":  receipt,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/orders", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build order request: %w", err)
	}
	req.SetBasicAuth(p.keyID, p.keySecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway order request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gateway returned status %d creating order", resp.StatusCode)
	}

	var order GatewayOrder
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, fmt.Errorf("failed to decode gateway order: %w", err)
	}
	return &order, nil
}

// VerifyPaymentSignature checks the HMAC the gateway attaches to a successful
// checkout callback: HMAC-SHA256(orderID|paymentID, keySecret) in hex.
func (p *PaymentService) VerifyPaymentSignature(orderID, paymentID, signature string) bool {
	return verifyHMAC([]byte(orderID+"|"+paymentID), signature, p.keySecret)
}

// VerifyWebhookSignature checks the X-Razorpay-Signature header of a webhook
func (p *PaymentService) VerifyWebhookSignature(body []byte, signature string) bool {
	return verifyHMAC(body, signature, p.webhookSecret)
}

func verifyHMAC(message []byte, signature, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(message)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// Refund asks the gateway to refund a captured payment
func (p *PaymentService) Refund(ctx context.Context, paymentID string, amount int64) error {
	payload := map[string]interface{}{"amount": amount}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal refund payload: %w", err)
	}

	url := fmt.Sprintf("%s/payments/%s/refund", p.baseURL, paymentID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build refund request: %w", err)
	}
	req.SetBasicAuth(p.keyID, p.keySecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("gateway refund request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gateway returned status %d refunding payment %s", resp.StatusCode, paymentID)
	}
	return nil
}
