// Package razorpay is a minimal client for the Razorpay Orders API plus the
// callback signature check. Only the pieces the booking flow needs.
package razorpay

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/medibook/booking-api/pkg/circuitbreaker"
)

type Config struct {
	KeyID     string
	KeySecret string
	BaseURL   string
	Timeout   time.Duration
}

type Client struct {
	keyID     string
	keySecret string
	baseURL   string
	http      *http.Client
	cb        *circuitbreaker.CircuitBreaker
}

// Order is the subset of the gateway order object the caller needs.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type orderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.razorpay.com"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		keyID:     cfg.KeyID,
		keySecret: cfg.KeySecret,
		baseURL:   cfg.BaseURL,
		http:      &http.Client{Timeout: cfg.Timeout},
		cb: circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
			Name:        "razorpay",
			MaxFailures: 5,
			Timeout:     30 * time.Second,
		}),
	}
}

// KeyID returns the public key identifier, safe to hand to clients.
func (c *Client) KeyID() string {
	return c.keyID
}

// CreateOrder creates a gateway order. Amount is in the gateway's minor unit
// (paise for INR).
func (c *Client) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*Order, error) {
	body, err := json.Marshal(orderRequest{
		Amount:   amount,
		Currency: currency,
		Receipt:  receipt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order request: %w", err)
	}

	var order Order
	err = c.cb.Execute(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			c.baseURL+"/v1/orders", bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("failed to build order request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.SetBasicAuth(c.keyID, c.keySecret)

		resp, err := c.http.Do(req)
		if err != nil {
			return fmt.Errorf("order request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			// Error bodies never include credentials; safe to surface.
			msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
			return fmt.Errorf("gateway returned %d: %s", resp.StatusCode, msg)
		}

		if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
			return fmt.Errorf("failed to decode order response: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// VerifySignature checks a payment confirmation against the key secret:
// HMAC-SHA256 over "orderID|paymentID", hex-encoded, compared in constant
// time. This is the sole authentication mechanism for payment truth.
func (c *Client) VerifySignature(orderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(c.keySecret))
	fmt.Fprintf(mac, "%s|%s", orderID, paymentID)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
