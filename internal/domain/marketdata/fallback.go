package marketdata

import "time"

// fallbackQuotes is the static last-resort table used when every network
// provider fails. Prices are refreshed manually and are only meant to keep
// the dashboard rendering something instead of N/A during outages.
var fallbackQuotes = map[string]Quote{
	"AAPL":  {Symbol: "AAPL", Price: 229.35, ChangePct: 0.41},
	"MSFT":  {Symbol: "MSFT", Price: 517.93, ChangePct: -0.22},
	"GOOGL": {Symbol: "GOOGL", Price: 207.14, ChangePct: 1.10},
	"AMZN":  {Symbol: "AMZN", Price: 228.84, ChangePct: 0.65},
	"NVDA":  {Symbol: "NVDA", Price: 181.77, ChangePct: 1.94},
	"TSLA":  {Symbol: "TSLA", Price: 322.00, ChangePct: 2.85},
	"META":  {Symbol: "META", Price: 754.08, ChangePct: -0.87},
	"SPY":  {Symbol: "SPY", Price: 646.52, ChangePct: 0.30},
	"QQQ":  {Symbol: "QQQ", Price: 573.81, ChangePct: 0.52},
	"BTC":  {Symbol: "BTC", Price: 112540.00, ChangePct: -1.35},
	"ETH":  {Symbol: "ETH", Price: 4610.25, ChangePct: 2.12},
}

// fallbackQuote returns the static table entry for symbol, or nil.
func fallbackQuote(symbol string, now time.Time) *Quote {
	q, ok := fallbackQuotes[symbol]
	if !ok {
		return nil
	}
	q.Source = "static"
	q.AsOf = now
	return &q
}
