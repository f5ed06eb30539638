// Package alpaca implements the Alpaca market data client, the secondary
// broker leg of the quote chain.
package alpaca

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"flint/internal/domain/marketdata"
)

const defaultTimeout = 10 * time.Second

// Client fetches stock snapshots from the Alpaca data API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	keyID      string
	secretKey  string
}

var _ marketdata.Provider = (*Client)(nil)

func NewClient(keyID, secretKey string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    "https://data.alpaca.markets",
		keyID:      keyID,
		secretKey:  secretKey,
	}
}

func (c *Client) Name() string { return "alpaca" }

type snapshot struct {
	LatestTrade *struct {
		Price float64 `json:"p"`
	} `json:"latestTrade"`
	DailyBar *struct {
		Close  float64 `json:"c"`
		Volume float64 `json:"v"`
	} `json:"dailyBar"`
	PrevDailyBar *struct {
		Close float64 `json:"c"`
	} `json:"prevDailyBar"`
}

// Quote returns the latest snapshot price for symbol, or (nil, nil) when
// Alpaca has no data for it.
func (c *Client) Quote(ctx context.Context, symbol string) (*marketdata.Quote, error) {
	if c.keyID == "" || c.secretKey == "" {
		return nil, nil
	}

	url := fmt.Sprintf("%s/v2/stocks/%s/snapshot", c.baseURL, symbol)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("APCA-API-KEY-ID", c.keyID)
	req.Header.Set("APCA-API-SECRET-KEY", c.secretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("alpaca request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("alpaca: unexpected status %d", resp.StatusCode)
	}

	var snap snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return nil, fmt.Errorf("failed to decode alpaca response: %w", err)
	}

	var price float64
	if snap.LatestTrade != nil {
		price = snap.LatestTrade.Price
	}
	if price == 0 && snap.DailyBar != nil {
		price = snap.DailyBar.Close
	}
	if price == 0 {
		return nil, nil
	}

	quote := &marketdata.Quote{Symbol: symbol, Price: price}
	if snap.DailyBar != nil {
		quote.Volume = int64(snap.DailyBar.Volume)
	}
	if snap.PrevDailyBar != nil && snap.PrevDailyBar.Close > 0 {
		quote.ChangePct = (price - snap.PrevDailyBar.Close) / snap.PrevDailyBar.Close * 100
	}
	return quote, nil
}
