package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"flint/internal/domain/marketdata"
)

type stubCandleProvider struct {
	candlesFunc func(ctx context.Context, symbol string, days int) ([]marketdata.Candle, error)
}

func (p *stubCandleProvider) Name() string { return "stub" }

func (p *stubCandleProvider) Candles(ctx context.Context, symbol string, days int) ([]marketdata.Candle, error) {
	return p.candlesFunc(ctx, symbol, days)
}

func newCandlesHandler(provider marketdata.CandleProvider) *MarketDataHandler {
	svc := marketdata.NewService(time.Second, nil,
		marketdata.WithCandleProviders(nil, time.Hour, provider))
	return NewMarketDataHandler(svc, nil, nil)
}

func TestHandleCandles(t *testing.T) {
	provider := &stubCandleProvider{
		candlesFunc: func(ctx context.Context, symbol string, days int) ([]marketdata.Candle, error) {
			if symbol != "TSLA" {
				t.Errorf("provider asked for %q, want TSLA", symbol)
			}
			if days != 5 {
				t.Errorf("provider asked for %d days, want 5", days)
			}
			return []marketdata.Candle{
				{Time: time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC), Close: 320.5},
				{Time: time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC), Close: 322.0},
			}, nil
		},
	}
	h := newCandlesHandler(provider)

	req := httptest.NewRequest(http.MethodGet, "/api/market-data/candles?symbol=tsla&days=5", nil)
	rr := httptest.NewRecorder()
	h.HandleCandles(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var candles []marketdata.Candle
	if err := json.NewDecoder(rr.Body).Decode(&candles); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if len(candles) != 2 {
		t.Fatalf("got %d candles, want 2", len(candles))
	}
	if candles[1].Close != 322.0 {
		t.Errorf("last close = %v, want 322.0", candles[1].Close)
	}
}

func TestHandleCandlesProviderFailure(t *testing.T) {
	provider := &stubCandleProvider{
		candlesFunc: func(ctx context.Context, symbol string, days int) ([]marketdata.Candle, error) {
			return nil, errors.New("provider unavailable")
		},
	}
	h := newCandlesHandler(provider)

	req := httptest.NewRequest(http.MethodGet, "/api/market-data/candles?symbol=TSLA", nil)
	rr := httptest.NewRecorder()
	h.HandleCandles(rr, req)

	// Provider failures degrade to an empty result, never a 5xx.
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if body := strings.TrimSpace(rr.Body.String()); body != "null" {
		t.Errorf("body = %q, want null", body)
	}
}

func TestHandleCandlesValidation(t *testing.T) {
	h := newCandlesHandler(&stubCandleProvider{})

	tests := []struct {
		name   string
		target string
	}{
		{"missing symbol", "/api/market-data/candles"},
		{"bad days", "/api/market-data/candles?symbol=TSLA&days=zero"},
		{"days out of range", "/api/market-data/candles?symbol=TSLA&days=9999"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			rr := httptest.NewRecorder()
			h.HandleCandles(rr, req)

			if rr.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rr.Code)
			}
		})
	}
}
