// Package flyers implements the weekly-deal port against a store-locator
// HTTP API, with caching decorators so a week of plans hits the upstream
// once per (store, postal code).
package flyers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/planea/aiserver/internal/infrastructure/config"
	"github.com/planea/aiserver/internal/ports/outbound"
)

// Client implements outbound.DealSource over HTTP.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *zap.Logger
}

// NewClient creates a deal-source client from configuration.
func NewClient(cfg config.FlyersConfig, logger *zap.Logger) *Client {
	timeout := cfg.RequestTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type flyerItem struct {
	Name         string  `json:"name"`
	CurrentPrice float64 `json:"current_price"`
	OnSale       bool    `json:"on_sale"`
}

type flyerResponse struct {
	Items []flyerItem `json:"items"`
}

// GetWeeklyDeals fetches and normalizes the current flyer items for a
// store and postal code. Callers treat failures as an empty deal set.
func (c *Client) GetWeeklyDeals(ctx context.Context, store, postalCode string) ([]outbound.Deal, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("flyers base URL not configured")
	}

	q := url.Values{}
	q.Set("postal_code", postalCode)
	if store != "" {
		q.Set("store", store)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/flyers?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("flyer request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("flyer API error %d: %s", resp.StatusCode, string(body))
	}

	var payload flyerResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal flyer response: %w", err)
	}

	deals := make([]outbound.Deal, 0, len(payload.Items))
	for _, item := range payload.Items {
		name := strings.ToLower(strings.TrimSpace(item.Name))
		if name == "" {
			continue
		}
		deals = append(deals, outbound.Deal{
			Name:   name,
			Price:  item.CurrentPrice,
			OnSale: true,
		})
	}
	c.logger.Debug("weekly deals fetched",
		zap.String("store", store),
		zap.String("postal_code", postalCode),
		zap.Int("count", len(deals)))
	return deals, nil
}
