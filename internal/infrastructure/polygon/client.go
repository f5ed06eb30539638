// Package polygon implements the Polygon.io market data client used as the
// delayed-aggregator leg of the quote chain and the primary candle source.
package polygon

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"flint/internal/domain/marketdata"
)

const defaultTimeout = 10 * time.Second

// Client fetches quotes and daily aggregates from Polygon.io.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

var (
	_ marketdata.Provider       = (*Client)(nil)
	_ marketdata.CandleProvider = (*Client)(nil)
)

func NewClient(apiKey string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    "https://api.polygon.io",
		apiKey:     apiKey,
	}
}

func (c *Client) Name() string { return "polygon" }

// snapshotResponse is the per-ticker snapshot envelope.
type snapshotResponse struct {
	Status string `json:"status"`
	Ticker struct {
		Day struct {
			Close  float64 `json:"c"`
			Volume float64 `json:"v"`
		} `json:"day"`
		PrevDay struct {
			Close float64 `json:"c"`
		} `json:"prevDay"`
		TodaysChangePerc float64 `json:"todaysChangePerc"`
		LastTrade        struct {
			Price float64 `json:"p"`
		} `json:"lastTrade"`
	} `json:"ticker"`
}

// Quote returns the latest snapshot price for symbol, or (nil, nil) when
// Polygon has no data for it.
func (c *Client) Quote(ctx context.Context, symbol string) (*marketdata.Quote, error) {
	if c.apiKey == "" {
		return nil, nil
	}

	url := fmt.Sprintf("%s/v2/snapshot/locale/us/markets/stocks/tickers/%s?apiKey=%s",
		c.baseURL, symbol, c.apiKey)

	var snap snapshotResponse
	if err := c.getJSON(ctx, url, &snap); err != nil {
		return nil, err
	}

	price := snap.Ticker.LastTrade.Price
	if price == 0 {
		price = snap.Ticker.Day.Close
	}
	if price == 0 {
		return nil, nil
	}

	return &marketdata.Quote{
		Symbol:    symbol,
		Price:     price,
		ChangePct: snap.Ticker.TodaysChangePerc,
		Volume:    int64(snap.Ticker.Day.Volume),
	}, nil
}

// aggsResponse is the daily-aggregates envelope.
type aggsResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Timestamp int64   `json:"t"` // ms since epoch
		Open      float64 `json:"o"`
		High      float64 `json:"h"`
		Low       float64 `json:"l"`
		Close     float64 `json:"c"`
		Volume    float64 `json:"v"`
	} `json:"results"`
}

// Candles returns up to days daily bars ending today.
func (c *Client) Candles(ctx context.Context, symbol string, days int) ([]marketdata.Candle, error) {
	if c.apiKey == "" {
		return nil, nil
	}

	to := time.Now()
	from := to.AddDate(0, 0, -days)
	url := fmt.Sprintf("%s/v2/aggs/ticker/%s/range/1/day/%s/%s?adjusted=true&sort=asc&apiKey=%s",
		c.baseURL, symbol, from.Format("2006-01-02"), to.Format("2006-01-02"), c.apiKey)

	var aggs aggsResponse
	if err := c.getJSON(ctx, url, &aggs); err != nil {
		return nil, err
	}

	candles := make([]marketdata.Candle, 0, len(aggs.Results))
	for _, bar := range aggs.Results {
		candles = append(candles, marketdata.Candle{
			Time:   time.UnixMilli(bar.Timestamp),
			Open:   bar.Open,
			High:   bar.High,
			Low:    bar.Low,
			Close:  bar.Close,
			Volume: bar.Volume,
		})
	}
	return candles, nil
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("polygon request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("polygon: unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode polygon response: %w", err)
	}
	return nil
}
