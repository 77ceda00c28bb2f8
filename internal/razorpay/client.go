package razorpay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/WebUp-555/ecommerce-api/internal/models"
)

// Client is HTTP client for the Razorpay orders API
type Client struct {
	client    *http.Client
	baseURL   string
	keyID     string
	keySecret string
}

// NewClient creates new Client instance
func NewClient(baseURL, keyID, keySecret string) *Client {
	return &Client{
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
		baseURL:   baseURL,
		keyID:     keyID,
		keySecret: keySecret,
	}
}

type createOrderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type createOrderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// CreateOrder opens a payment session for amount in minor units
// and returns the gateway order id.
func (c *Client) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (string, error) {
	// POST /v1/orders
	url, err := url.JoinPath(c.baseURL, "v1", "orders")
	if err != nil {
		return "", err
	}

	body, err := json.Marshal(createOrderRequest{
		Amount:   amount,
		Currency: currency,
		Receipt:  receipt,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.client.Do(req)
	if resp != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrPaymentGateway, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: unexpected status %d", models.ErrPaymentGateway, resp.StatusCode)
	}

	orderResp := createOrderResponse{}
	if err := json.NewDecoder(resp.Body).Decode(&orderResp); err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrPaymentGateway, err)
	}
	if orderResp.ID == "" {
		return "", fmt.Errorf("%w: empty order id", models.ErrPaymentGateway)
	}

	return orderResp.ID, nil
}
