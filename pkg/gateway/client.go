package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/seatrelay/seatrelay-backend/pkg/config"
)

// Status is the gateway-side view of a payment attempt.
type Status string

const (
	StatusReady     Status = "READY"
	StatusPaid      Status = "PAID"
	StatusFailed    Status = "FAILED"
	StatusCancelled Status = "CANCELLED"
)

// IsTerminal reports whether the gateway will not change this status again.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusPaid, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// PaymentResult is the normalized response for a payment lookup.
type PaymentResult struct {
	PaymentID     string `json:"payment_id"`
	Status        Status `json:"status"`
	Amount        int64  `json:"amount"`
	FailureReason string `json:"failure_reason,omitempty"`
}

// Client queries the external payment gateway over HTTP.
type Client struct {
	baseURL    string
	apiSecret  string
	storeID    string
	httpClient *http.Client
}

// NewClient builds a gateway client from configuration.
func NewClient(cfg config.GatewayConfig) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("gateway base url is required")
	}
	if cfg.APISecret == "" {
		return nil, fmt.Errorf("gateway api secret is required")
	}
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		apiSecret:  cfg.APISecret,
		storeID:    cfg.StoreID,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

type statusResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Amount struct {
		Total int64 `json:"total"`
	} `json:"amount"`
	FailureReason string `json:"failureReason"`
}

// GetPayment fetches the current state of a payment by its correlation id.
func (c *Client) GetPayment(ctx context.Context, paymentID string) (*PaymentResult, error) {
	if paymentID == "" {
		return nil, fmt.Errorf("payment id is required")
	}

	endpoint := fmt.Sprintf("%s/payments/%s", c.baseURL, url.PathEscape(paymentID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("building gateway request: %w", err)
	}
	req.Header.Set("Authorization", "PortOne "+c.apiSecret)
	if c.storeID != "" {
		q := req.URL.Query()
		q.Set("storeId", c.storeID)
		req.URL.RawQuery = q.Encode()
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling gateway: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("reading gateway response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrPaymentNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gateway returned status %d: %s", resp.StatusCode, truncate(body, 256))
	}

	var parsed statusResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decoding gateway response: %w", err)
	}

	return &PaymentResult{
		PaymentID:     parsed.ID,
		Status:        normalizeStatus(parsed.Status),
		Amount:        parsed.Amount.Total,
		FailureReason: parsed.FailureReason,
	}, nil
}

// ErrPaymentNotFound is returned when the gateway has no record of the payment.
var ErrPaymentNotFound = fmt.Errorf("payment not found at gateway")

func normalizeStatus(raw string) Status {
	switch Status(raw) {
	case StatusPaid, StatusFailed, StatusCancelled, StatusReady:
		return Status(raw)
	}
	// Gateways report intermediate states (VIRTUAL_ACCOUNT_ISSUED, PAY_PENDING)
	// that the ledger treats as still in flight.
	return StatusReady
}

func truncate(body []byte, max int) string {
	if len(body) <= max {
		return string(body)
	}
	return string(body[:max]) + "..."
}
