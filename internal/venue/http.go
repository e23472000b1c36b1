package venue

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ChinmayGopal931/delta-neutral/internal/model"
)

// HTTPClient is a Venue backed by the venue's REST API:
//
//	GET  {base}/positions?account={account} → {"positions": [...]}
//	POST {base}/orders                      → {"order_id": "..."}
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient creates a venue client against the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

type positionsResponse struct {
	Positions []model.HedgePosition `json:"positions"`
}

type orderResponse struct {
	OrderID string `json:"order_id"`
}

func (c *HTTPClient) ListPositions(ctx context.Context, account string) ([]model.HedgePosition, error) {
	u := fmt.Sprintf("%s/positions?account=%s", c.baseURL, url.QueryEscape(account))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("venue: build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("venue: list positions: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("venue: unexpected status %d", resp.StatusCode)
	}

	var body positionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("venue: decode positions: %w", err)
	}
	return body.Positions, nil
}

func (c *HTTPClient) SubmitOrder(ctx context.Context, order model.CorrectiveOrder) (string, error) {
	payload, err := json.Marshal(order)
	if err != nil {
		return "", fmt.Errorf("venue: marshal order: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/orders", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("venue: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("venue: submit order: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("venue: order rejected with status %d", resp.StatusCode)
	}

	var body orderResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("venue: decode order response: %w", err)
	}
	return body.OrderID, nil
}
