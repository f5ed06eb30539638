package marketdata

import "context"

// Provider fetches a live quote from one upstream source. Implementations
// return (nil, err) on failure and (nil, nil) when the source has no data
// for the symbol; the service treats both as a miss and moves on.
type Provider interface {
	Name() string
	Quote(ctx context.Context, symbol string) (*Quote, error)
}

// CandleProvider fetches historical daily bars from one upstream source.
type CandleProvider interface {
	Name() string
	Candles(ctx context.Context, symbol string, days int) ([]Candle, error)
}
