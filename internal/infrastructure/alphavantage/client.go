// Package alphavantage implements the Alpha Vantage client, the last
// network leg of the quote chain. The free tier is heavily rate limited,
// which is why it sits at the back of the provider order.
package alphavantage

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"flint/internal/domain/marketdata"
)

const defaultTimeout = 10 * time.Second

// Client fetches quotes and daily series from Alpha Vantage.
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
		baseURL:    "https://www.alphavantage.co",
		apiKey:     apiKey,
	}
}

func (c *Client) Name() string { return "alphavantage" }

type globalQuoteResponse struct {
	GlobalQuote struct {
		Price         string `json:"05. price"`
		Volume        string `json:"06. volume"`
		ChangePercent string `json:"10. change percent"` // e.g. "2.8500%"
	} `json:"Global Quote"`
	Note string `json:"Note"` // set when rate limited
}

// Quote returns the latest global quote for symbol, or (nil, nil) when
// Alpha Vantage has no data for it.
func (c *Client) Quote(ctx context.Context, symbol string) (*marketdata.Quote, error) {
	if c.apiKey == "" {
		return nil, nil
	}

	url := fmt.Sprintf("%s/query?function=GLOBAL_QUOTE&symbol=%s&apikey=%s", c.baseURL, symbol, c.apiKey)

	var result globalQuoteResponse
	if err := c.getJSON(ctx, url, &result); err != nil {
		return nil, err
	}
	if result.Note != "" {
		return nil, fmt.Errorf("alphavantage rate limited: %s", result.Note)
	}
	if result.GlobalQuote.Price == "" {
		return nil, nil
	}

	price, err := strconv.ParseFloat(result.GlobalQuote.Price, 64)
	if err != nil {
		return nil, fmt.Errorf("failed to parse price %q: %w", result.GlobalQuote.Price, err)
	}

	quote := &marketdata.Quote{Symbol: symbol, Price: price}
	if v, err := strconv.ParseInt(result.GlobalQuote.Volume, 10, 64); err == nil {
		quote.Volume = v
	}
	pctStr := strings.TrimSuffix(result.GlobalQuote.ChangePercent, "%")
	if pct, err := strconv.ParseFloat(pctStr, 64); err == nil {
		quote.ChangePct = pct
	}
	return quote, nil
}

type dailySeriesResponse struct {
	TimeSeriesDaily map[string]struct {
		Open   string `json:"1. open"`
		High   string `json:"2. high"`
		Low    string `json:"3. low"`
		Close  string `json:"4. close"`
		Volume string `json:"5. volume"`
	} `json:"Time Series (Daily)"`
	Note string `json:"Note"`
}

// Candles returns up to days daily bars, oldest first.
func (c *Client) Candles(ctx context.Context, symbol string, days int) ([]marketdata.Candle, error) {
	if c.apiKey == "" {
		return nil, nil
	}

	url := fmt.Sprintf("%s/query?function=TIME_SERIES_DAILY&symbol=%s&apikey=%s", c.baseURL, symbol, c.apiKey)

	var result dailySeriesResponse
	if err := c.getJSON(ctx, url, &result); err != nil {
		return nil, err
	}
	if result.Note != "" {
		return nil, fmt.Errorf("alphavantage rate limited: %s", result.Note)
	}
	if len(result.TimeSeriesDaily) == 0 {
		return nil, nil
	}

	dates := make([]string, 0, len(result.TimeSeriesDaily))
	for date := range result.TimeSeriesDaily {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	if len(dates) > days {
		dates = dates[len(dates)-days:]
	}

	candles := make([]marketdata.Candle, 0, len(dates))
	for _, date := range dates {
		bar := result.TimeSeriesDaily[date]
		t, err := time.Parse("2006-01-02", date)
		if err != nil {
			continue
		}
		candle := marketdata.Candle{Time: t}
		candle.Open, _ = strconv.ParseFloat(bar.Open, 64)
		candle.High, _ = strconv.ParseFloat(bar.High, 64)
		candle.Low, _ = strconv.ParseFloat(bar.Low, 64)
		candle.Close, _ = strconv.ParseFloat(bar.Close, 64)
		candle.Volume, _ = strconv.ParseFloat(bar.Volume, 64)
		candles = append(candles, candle)
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
		return fmt.Errorf("alphavantage request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("alphavantage: unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode alphavantage response: %w", err)
	}
	return nil
}
