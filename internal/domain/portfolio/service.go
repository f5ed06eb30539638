package portfolio

import (
	"context"
	"log"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"flint/internal/domain/marketdata"
	"flint/internal/infrastructure/snaptrade"
)

type Service struct {
	broker snaptrade.ClientInterface
	quotes *marketdata.Service
	now    func() time.Time
}

func NewService(broker snaptrade.ClientInterface, quotes *marketdata.Service) *Service {
	return &Service{broker: broker, quotes: quotes, now: time.Now}
}

// Summarize aggregates positions across every connected brokerage
// account into a single set of holdings. Positions with missing prices
// fall back to the market-data chain before counting as zero.
func (s *Service) Summarize(ctx context.Context, creds snaptrade.Credentials) (*Summary, error) {
	accounts, err := s.broker.ListAccounts(ctx, creds)
	if err != nil {
		return nil, err
	}

	bySymbol := make(map[string]*Holding)
	for _, acct := range accounts {
		positions, err := s.broker.ListPositions(ctx, creds, acct.ID)
		if err != nil {
			log.Printf("portfolio: listing positions for account %s: %v", acct.ID, err)
			continue
		}
		for _, p := range positions {
			s.merge(ctx, bySymbol, p)
		}
	}

	summary := &Summary{AsOf: s.now()}
	for _, h := range bySymbol {
		if h.CostBasis.IsPositive() {
			h.UnrealizedPLPct = h.UnrealizedPL.Div(h.CostBasis).Mul(decimal.NewFromInt(100)).Round(2)
		}
		summary.TotalValue = summary.TotalValue.Add(h.MarketValue)
		summary.TotalCost = summary.TotalCost.Add(h.CostBasis)
		summary.UnrealizedPL = summary.UnrealizedPL.Add(h.UnrealizedPL)
		summary.Holdings = append(summary.Holdings, *h)
	}
	sort.Slice(summary.Holdings, func(i, j int) bool {
		return summary.Holdings[i].MarketValue.GreaterThan(summary.Holdings[j].MarketValue)
	})
	if summary.TotalValue.IsPositive() {
		weightedChange := decimal.Zero
		for i := range summary.Holdings {
			h := &summary.Holdings[i]
			h.Weight = h.MarketValue.Div(summary.TotalValue).Mul(decimal.NewFromInt(100)).Round(2)
			if q := s.quotes.GetQuote(ctx, h.Symbol); q != nil {
				weightedChange = weightedChange.Add(h.MarketValue.Mul(decimal.NewFromFloat(q.ChangePct)))
			}
		}
		summary.DayChangePct = weightedChange.Div(summary.TotalValue).Round(2)
	}
	return summary, nil
}

func (s *Service) merge(ctx context.Context, bySymbol map[string]*Holding, p snaptrade.Position) {
	symbol := p.Symbol.Symbol.Symbol
	if symbol == "" {
		return
	}

	units := decimal.NewFromFloat(p.Units)
	price := decimal.Zero
	switch {
	case p.Price != nil:
		price = decimal.NewFromFloat(*p.Price)
	default:
		if q := s.quotes.GetQuote(ctx, symbol); q != nil {
			price = decimal.NewFromFloat(q.Price)
		}
	}

	cost := decimal.Zero
	if p.AverageBuyPrice != nil {
		cost = decimal.NewFromFloat(*p.AverageBuyPrice).Mul(units)
	}
	pnl := decimal.Zero
	if p.OpenPnL != nil {
		pnl = decimal.NewFromFloat(*p.OpenPnL)
	}

	h, ok := bySymbol[symbol]
	if !ok {
		h = &Holding{Symbol: symbol, Description: p.Symbol.Symbol.Description, Price: price}
		bySymbol[symbol] = h
	}
	h.Units = h.Units.Add(units)
	h.MarketValue = h.MarketValue.Add(price.Mul(units))
	h.CostBasis = h.CostBasis.Add(cost)
	h.UnrealizedPL = h.UnrealizedPL.Add(pnl)
}

// History reconstructs portfolio value over the past days using current
// units against daily closes. Symbols without candle data are skipped.
func (s *Service) History(ctx context.Context, creds snaptrade.Credentials, days int) ([]HistoryPoint, error) {
	summary, err := s.Summarize(ctx, creds)
	if err != nil {
		return nil, err
	}

	byDate := make(map[string]decimal.Decimal)
	dates := make(map[string]time.Time)
	for _, h := range summary.Holdings {
		candles := s.quotes.Candles(ctx, h.Symbol, days)
		if len(candles) == 0 {
			continue
		}
		for _, c := range candles {
			key := c.Time.Format("2006-01-02")
			byDate[key] = byDate[key].Add(decimal.NewFromFloat(c.Close).Mul(h.Units))
			dates[key] = c.Time
		}
	}

	points := make([]HistoryPoint, 0, len(byDate))
	for key, value := range byDate {
		points = append(points, HistoryPoint{Date: dates[key], Value: value})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	return points, nil
}
