// Package marketdata aggregates price quotes from an ordered chain of
// upstream providers behind a short in-memory TTL cache.
package marketdata

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	mdMeter           = otel.Meter("flint/marketdata")
	cacheHits, _      = mdMeter.Int64Counter("marketdata.cache.hits", metric.WithDescription("Quote cache hits"))
	cacheMisses, _    = mdMeter.Int64Counter("marketdata.cache.misses", metric.WithDescription("Quote cache misses"))
	providerErrors, _ = mdMeter.Int64Counter("marketdata.provider.errors", metric.WithDescription("Provider failures by name"))
)

// CandleCache caches historical bar series (backed by Redis in production).
type CandleCache interface {
	GetCandles(ctx context.Context, key string) ([]Candle, bool)
	SetCandles(ctx context.Context, key string, candles []Candle, ttl time.Duration)
}

type cacheEntry struct {
	quote   *Quote
	fetched time.Time
}

// Service resolves quotes through the provider chain. It is explicitly
// constructed with its provider list and TTL rather than being a package
// singleton, so tests and tenants can run isolated instances.
//
// Concurrent misses for the same symbol each walk the full chain; there is
// no in-flight deduplication, so a stampede at the TTL boundary costs one
// provider round-trip per caller.
type Service struct {
	providers       []Provider
	candleProviders []CandleProvider
	candleCache     CandleCache
	candleTTL       time.Duration
	ttl             time.Duration
	now             func() time.Time

	mu    sync.Mutex
	cache map[string]cacheEntry
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithCandleProviders sets the historical-bar provider chain.
func WithCandleProviders(cache CandleCache, ttl time.Duration, providers ...CandleProvider) Option {
	return func(s *Service) {
		s.candleCache = cache
		s.candleTTL = ttl
		s.candleProviders = providers
	}
}

// NewService creates a quote aggregation service. Providers are tried in
// the given order; the static fallback table sits behind all of them.
func NewService(ttl time.Duration, providers []Provider, opts ...Option) *Service {
	s := &Service{
		providers: providers,
		ttl:       ttl,
		now:       time.Now,
		cache:     make(map[string]cacheEntry),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetQuote returns a best-effort quote for symbol, or nil when no source
// (including the static table) has data. Provider errors are logged and
// swallowed; this method never fails.
//
// A cached quote younger than the TTL is returned as-is, without touching
// any provider.
func (s *Service) GetQuote(ctx context.Context, symbol string) *Quote {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil
	}

	now := s.now()

	s.mu.Lock()
	if entry, ok := s.cache[symbol]; ok && now.Sub(entry.fetched) < s.ttl {
		s.mu.Unlock()
		cacheHits.Add(ctx, 1)
		return entry.quote
	}
	s.mu.Unlock()
	cacheMisses.Add(ctx, 1)

	quote := s.fetch(ctx, symbol, now)
	if quote == nil {
		return nil
	}

	s.mu.Lock()
	s.cache[symbol] = cacheEntry{quote: quote, fetched: now}
	s.mu.Unlock()

	return quote
}

// GetQuotes resolves a batch of symbols. Symbols with no data anywhere are
// omitted from the result.
func (s *Service) GetQuotes(ctx context.Context, symbols []string) map[string]*Quote {
	quotes := make(map[string]*Quote, len(symbols))
	for _, symbol := range symbols {
		if q := s.GetQuote(ctx, symbol); q != nil {
			quotes[q.Symbol] = q
		}
	}
	return quotes
}

// fetch walks the provider chain and falls back to the static table.
func (s *Service) fetch(ctx context.Context, symbol string, now time.Time) *Quote {
	for _, p := range s.providers {
		quote, err := p.Quote(ctx, symbol)
		if err != nil {
			providerErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("provider", p.Name())))
			log.Printf("Market data: %s failed for %s: %v", p.Name(), symbol, err)
			continue
		}
		if quote == nil {
			continue
		}
		quote.Symbol = symbol
		quote.Source = p.Name()
		if quote.AsOf.IsZero() {
			quote.AsOf = now
		}
		return quote
	}

	if q := fallbackQuote(symbol, now); q != nil {
		log.Printf("Market data: all providers failed for %s, using static fallback", symbol)
		return q
	}

	return nil
}

// Candles returns up to `days` daily bars for symbol, trying the candle
// provider chain in order behind the external cache. Returns nil when no
// provider has data.
func (s *Service) Candles(ctx context.Context, symbol string, days int) []Candle {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" || days <= 0 {
		return nil
	}

	key := candleKey(symbol, days)
	if s.candleCache != nil {
		if candles, ok := s.candleCache.GetCandles(ctx, key); ok {
			return candles
		}
	}

	for _, p := range s.candleProviders {
		candles, err := p.Candles(ctx, symbol, days)
		if err != nil {
			providerErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("provider", p.Name())))
			log.Printf("Market data: %s candles failed for %s: %v", p.Name(), symbol, err)
			continue
		}
		if len(candles) == 0 {
			continue
		}
		if s.candleCache != nil {
			s.candleCache.SetCandles(ctx, key, candles, s.candleTTL)
		}
		return candles
	}

	return nil
}

func candleKey(symbol string, days int) string {
	return fmt.Sprintf("candles:%s:%d", symbol, days)
}
