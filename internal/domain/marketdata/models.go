package marketdata

import "time"

// Quote is a best-effort price snapshot for a symbol. Values are
// provider-reported and never locally derived.
type Quote struct {
	Symbol    string    `json:"symbol"`
	Price     float64   `json:"price"`
	ChangePct float64   `json:"changePct"`
	Volume    int64     `json:"volume"`
	MarketCap float64   `json:"marketCap"`
	Source    string    `json:"source"`
	AsOf      time.Time `json:"asOf"`
}

// Candle is a single daily OHLCV bar.
type Candle struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}
