package marketdata

import (
	"context"
	"errors"
	"testing"
	"time"
)

// mockProvider implements Provider for testing
type mockProvider struct {
	name      string
	quoteFunc func(ctx context.Context, symbol string) (*Quote, error)
	calls     int
}

func (m *mockProvider) Name() string { return m.name }

func (m *mockProvider) Quote(ctx context.Context, symbol string) (*Quote, error) {
	m.calls++
	if m.quoteFunc != nil {
		return m.quoteFunc(ctx, symbol)
	}
	return nil, nil
}

func failing(name string) *mockProvider {
	return &mockProvider{
		name: name,
		quoteFunc: func(ctx context.Context, symbol string) (*Quote, error) {
			return nil, errors.New("upstream unavailable")
		},
	}
}

func priced(name string, price float64) *mockProvider {
	return &mockProvider{
		name: name,
		quoteFunc: func(ctx context.Context, symbol string) (*Quote, error) {
			return &Quote{Price: price}, nil
		},
	}
}

func TestGetQuote_CacheHitReturnsIdenticalQuote(t *testing.T) {
	now := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	provider := priced("broker", 101.50)
	svc := NewService(5*time.Second, []Provider{provider}, WithClock(clock))

	first := svc.GetQuote(context.Background(), "AAPL")
	if first == nil {
		t.Fatal("GetQuote() returned nil on populated provider")
	}
	if provider.calls != 1 {
		t.Fatalf("provider calls = %d, want 1", provider.calls)
	}

	// Repeated calls within the TTL return the identical cached object
	// without invoking any provider.
	now = now.Add(4 * time.Second)
	second := svc.GetQuote(context.Background(), "AAPL")
	if second != first {
		t.Error("GetQuote() within TTL returned a different object")
	}
	if provider.calls != 1 {
		t.Errorf("provider calls = %d after cache hit, want 1", provider.calls)
	}

	// Past the TTL the chain is walked again.
	now = now.Add(2 * time.Second)
	svc.GetQuote(context.Background(), "AAPL")
	if provider.calls != 2 {
		t.Errorf("provider calls = %d after TTL expiry, want 2", provider.calls)
	}
}

func TestGetQuote_FallbackOrderRespected(t *testing.T) {
	var order []string
	record := func(name string, q *Quote, err error) *mockProvider {
		return &mockProvider{
			name: name,
			quoteFunc: func(ctx context.Context, symbol string) (*Quote, error) {
				order = append(order, name)
				return q, err
			},
		}
	}

	tests := []struct {
		name       string
		providers  []Provider
		wantSource string
		wantOrder  []string
	}{
		{
			name: "first provider wins",
			providers: []Provider{
				record("snaptrade", &Quote{Price: 100}, nil),
				record("polygon", &Quote{Price: 200}, nil),
			},
			wantSource: "snaptrade",
			wantOrder:  []string{"snaptrade"},
		},
		{
			name: "error falls through to second",
			providers: []Provider{
				record("snaptrade", nil, errors.New("401")),
				record("polygon", &Quote{Price: 200}, nil),
			},
			wantSource: "polygon",
			wantOrder:  []string{"snaptrade", "polygon"},
		},
		{
			name: "nil quote falls through to second",
			providers: []Provider{
				record("snaptrade", nil, nil),
				record("polygon", &Quote{Price: 200}, nil),
			},
			wantSource: "polygon",
			wantOrder:  []string{"snaptrade", "polygon"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order = nil
			svc := NewService(5*time.Second, tt.providers)

			q := svc.GetQuote(context.Background(), "MSFT")
			if q == nil {
				t.Fatal("GetQuote() = nil, want quote")
			}
			if q.Source != tt.wantSource {
				t.Errorf("Source = %q, want %q", q.Source, tt.wantSource)
			}
			if len(order) != len(tt.wantOrder) {
				t.Fatalf("providers called = %v, want %v", order, tt.wantOrder)
			}
			for i := range order {
				if order[i] != tt.wantOrder[i] {
					t.Errorf("call %d = %q, want %q", i, order[i], tt.wantOrder[i])
				}
			}
		})
	}
}

func TestGetQuote_StaticFallbackWhenAllProvidersFail(t *testing.T) {
	svc := NewService(5*time.Second, []Provider{
		failing("snaptrade"),
		failing("polygon"),
		failing("alpaca"),
		failing("alphavantage"),
	})

	q := svc.GetQuote(context.Background(), "TSLA")
	if q == nil {
		t.Fatal("GetQuote(TSLA) = nil, want static fallback quote")
	}
	if q.Price != 322.00 {
		t.Errorf("Price = %v, want 322.00", q.Price)
	}
	if q.ChangePct != 2.85 {
		t.Errorf("ChangePct = %v, want 2.85", q.ChangePct)
	}
	if q.Source != "static" {
		t.Errorf("Source = %q, want %q", q.Source, "static")
	}
}

func TestGetQuote_NilWhenNoSourceHasData(t *testing.T) {
	svc := NewService(5*time.Second, []Provider{failing("snaptrade")})

	if q := svc.GetQuote(context.Background(), "ZZZZ9"); q != nil {
		t.Errorf("GetQuote(unknown symbol) = %+v, want nil", q)
	}
	if q := svc.GetQuote(context.Background(), ""); q != nil {
		t.Errorf("GetQuote(empty symbol) = %+v, want nil", q)
	}
}

func TestGetQuote_NormalizesSymbol(t *testing.T) {
	svc := NewService(5*time.Second, []Provider{failing("broker")})

	q := svc.GetQuote(context.Background(), " tsla ")
	if q == nil {
		t.Fatal("GetQuote(' tsla ') = nil, want fallback quote")
	}
	if q.Symbol != "TSLA" {
		t.Errorf("Symbol = %q, want %q", q.Symbol, "TSLA")
	}
}

func TestGetQuotes_OmitsUnavailableSymbols(t *testing.T) {
	svc := NewService(5*time.Second, []Provider{failing("broker")})

	quotes := svc.GetQuotes(context.Background(), []string{"TSLA", "ZZZZ9", "AAPL"})
	if len(quotes) != 2 {
		t.Fatalf("len(quotes) = %d, want 2", len(quotes))
	}
	if _, ok := quotes["ZZZZ9"]; ok {
		t.Error("GetQuotes() included symbol with no data")
	}
	if quotes["TSLA"] == nil || quotes["AAPL"] == nil {
		t.Error("GetQuotes() missing fallback-table symbols")
	}
}

// mockCandleProvider implements CandleProvider
type mockCandleProvider struct {
	name        string
	candlesFunc func(ctx context.Context, symbol string, days int) ([]Candle, error)
}

func (m *mockCandleProvider) Name() string { return m.name }

func (m *mockCandleProvider) Candles(ctx context.Context, symbol string, days int) ([]Candle, error) {
	if m.candlesFunc != nil {
		return m.candlesFunc(ctx, symbol, days)
	}
	return nil, nil
}

type memoryCandleCache struct {
	entries map[string][]Candle
}

func (c *memoryCandleCache) GetCandles(ctx context.Context, key string) ([]Candle, bool) {
	candles, ok := c.entries[key]
	return candles, ok
}

func (c *memoryCandleCache) SetCandles(ctx context.Context, key string, candles []Candle, ttl time.Duration) {
	c.entries[key] = candles
}

func TestCandles_FallbackChainAndCache(t *testing.T) {
	polygonCalls := 0
	cache := &memoryCandleCache{entries: make(map[string][]Candle)}

	svc := NewService(5*time.Second, nil, WithCandleProviders(cache, time.Hour,
		&mockCandleProvider{
			name: "polygon",
			candlesFunc: func(ctx context.Context, symbol string, days int) ([]Candle, error) {
				polygonCalls++
				return nil, errors.New("rate limited")
			},
		},
		&mockCandleProvider{
			name: "alphavantage",
			candlesFunc: func(ctx context.Context, symbol string, days int) ([]Candle, error) {
				return []Candle{{Close: 101.2}, {Close: 103.4}}, nil
			},
		},
	))

	candles := svc.Candles(context.Background(), "AAPL", 30)
	if len(candles) != 2 {
		t.Fatalf("Candles() returned %d bars, want 2", len(candles))
	}
	if polygonCalls != 1 {
		t.Errorf("polygon calls = %d, want 1", polygonCalls)
	}

	// Second call is served from the cache; the failing provider is not hit again.
	svc.Candles(context.Background(), "AAPL", 30)
	if polygonCalls != 1 {
		t.Errorf("polygon calls after cached read = %d, want 1", polygonCalls)
	}
}
