package portfolio

import (
	"context"
	"errors"
	"testing"
	"time"

	"flint/internal/domain/marketdata"
	"flint/internal/infrastructure/snaptrade"
)

type mockBroker struct {
	accountsFunc  func(ctx context.Context, creds snaptrade.Credentials) ([]snaptrade.Account, error)
	positionsFunc func(ctx context.Context, creds snaptrade.Credentials, accountID string) ([]snaptrade.Position, error)
}

func (m *mockBroker) RegisterUser(ctx context.Context, userID string) (*snaptrade.Registration, error) {
	return nil, errors.New("not implemented")
}

func (m *mockBroker) DeleteUser(ctx context.Context, creds snaptrade.Credentials) error {
	return errors.New("not implemented")
}

func (m *mockBroker) LoginPortalURL(ctx context.Context, creds snaptrade.Credentials) (string, error) {
	return "", errors.New("not implemented")
}

func (m *mockBroker) ListAccounts(ctx context.Context, creds snaptrade.Credentials) ([]snaptrade.Account, error) {
	return m.accountsFunc(ctx, creds)
}

func (m *mockBroker) ListPositions(ctx context.Context, creds snaptrade.Credentials, accountID string) ([]snaptrade.Position, error) {
	return m.positionsFunc(ctx, creds, accountID)
}

func (m *mockBroker) GetQuotes(ctx context.Context, creds snaptrade.Credentials, accountID string, symbols []string) ([]snaptrade.SymbolQuote, error) {
	return nil, errors.New("not implemented")
}

func (m *mockBroker) PlaceOrder(ctx context.Context, creds snaptrade.Credentials, accountID, symbol, action string, units float64) (*snaptrade.Order, error) {
	return nil, errors.New("not implemented")
}

func (m *mockBroker) GetOrderStatus(ctx context.Context, creds snaptrade.Credentials, accountID, orderID string) (*snaptrade.Order, error) {
	return nil, errors.New("not implemented")
}

func position(symbol string, units float64, price, avgCost, pnl *float64) snaptrade.Position {
	var p snaptrade.Position
	p.Symbol.Symbol.Symbol = symbol
	p.Units = units
	p.Price = price
	p.AverageBuyPrice = avgCost
	p.OpenPnL = pnl
	return p
}

func fp(v float64) *float64 { return &v }

func TestSummarizeAggregatesAcrossAccounts(t *testing.T) {
	broker := &mockBroker{
		accountsFunc: func(ctx context.Context, creds snaptrade.Credentials) ([]snaptrade.Account, error) {
			return []snaptrade.Account{{ID: "acct-1"}, {ID: "acct-2"}}, nil
		},
		positionsFunc: func(ctx context.Context, creds snaptrade.Credentials, accountID string) ([]snaptrade.Position, error) {
			if accountID == "acct-1" {
				return []snaptrade.Position{
					position("AAPL", 10, fp(200), fp(150), fp(500)),
				}, nil
			}
			return []snaptrade.Position{
				position("AAPL", 5, fp(200), fp(180), fp(100)),
				position("MSFT", 2, fp(400), fp(300), fp(200)),
			}, nil
		},
	}
	svc := NewService(broker, marketdata.NewService(time.Second, nil))

	summary, err := svc.Summarize(context.Background(), snaptrade.Credentials{UserID: "u", UserSecret: "s"})
	if err != nil {
		t.Fatalf("Summarize returned error: %v", err)
	}

	if len(summary.Holdings) != 2 {
		t.Fatalf("got %d holdings, want 2", len(summary.Holdings))
	}
	// AAPL: 15 units * 200 = 3000 beats MSFT's 800, so it sorts first.
	aapl := summary.Holdings[0]
	if aapl.Symbol != "AAPL" {
		t.Fatalf("largest holding = %s, want AAPL", aapl.Symbol)
	}
	if got := aapl.Units.String(); got != "15" {
		t.Errorf("AAPL units = %s, want 15", got)
	}
	if got := aapl.MarketValue.String(); got != "3000" {
		t.Errorf("AAPL market value = %s, want 3000", got)
	}
	if got := summary.TotalValue.String(); got != "3800" {
		t.Errorf("total value = %s, want 3800", got)
	}
	if got := summary.UnrealizedPL.String(); got != "800" {
		t.Errorf("unrealized P&L = %s, want 800", got)
	}
}

func TestSummarizeComputesWeights(t *testing.T) {
	broker := &mockBroker{
		accountsFunc: func(ctx context.Context, creds snaptrade.Credentials) ([]snaptrade.Account, error) {
			return []snaptrade.Account{{ID: "acct-1"}}, nil
		},
		positionsFunc: func(ctx context.Context, creds snaptrade.Credentials, accountID string) ([]snaptrade.Position, error) {
			return []snaptrade.Position{
				position("AAPL", 3, fp(100), nil, nil),
				position("MSFT", 1, fp(100), nil, nil),
			}, nil
		},
	}
	svc := NewService(broker, marketdata.NewService(time.Second, nil))

	summary, err := svc.Summarize(context.Background(), snaptrade.Credentials{})
	if err != nil {
		t.Fatalf("Summarize returned error: %v", err)
	}
	if got := summary.Holdings[0].Weight.String(); got != "75" {
		t.Errorf("AAPL weight = %s, want 75", got)
	}
	if got := summary.Holdings[1].Weight.String(); got != "25" {
		t.Errorf("MSFT weight = %s, want 25", got)
	}
}

func TestSummarizeFallsBackToQuoteChainForMissingPrice(t *testing.T) {
	broker := &mockBroker{
		accountsFunc: func(ctx context.Context, creds snaptrade.Credentials) ([]snaptrade.Account, error) {
			return []snaptrade.Account{{ID: "acct-1"}}, nil
		},
		positionsFunc: func(ctx context.Context, creds snaptrade.Credentials, accountID string) ([]snaptrade.Position, error) {
			return []snaptrade.Position{
				position("TSLA", 2, nil, nil, nil),
			}, nil
		},
	}
	// With no providers the chain resolves TSLA from the static table.
	svc := NewService(broker, marketdata.NewService(time.Second, nil))

	summary, err := svc.Summarize(context.Background(), snaptrade.Credentials{})
	if err != nil {
		t.Fatalf("Summarize returned error: %v", err)
	}
	if got := summary.Holdings[0].MarketValue.String(); got != "644" {
		t.Errorf("TSLA market value = %s, want 644", got)
	}
}

func TestSummarizeSkipsFailingAccount(t *testing.T) {
	broker := &mockBroker{
		accountsFunc: func(ctx context.Context, creds snaptrade.Credentials) ([]snaptrade.Account, error) {
			return []snaptrade.Account{{ID: "bad"}, {ID: "good"}}, nil
		},
		positionsFunc: func(ctx context.Context, creds snaptrade.Credentials, accountID string) ([]snaptrade.Position, error) {
			if accountID == "bad" {
				return nil, errors.New("brokerage unavailable")
			}
			return []snaptrade.Position{position("MSFT", 1, fp(400), nil, nil)}, nil
		},
	}
	svc := NewService(broker, marketdata.NewService(time.Second, nil))

	summary, err := svc.Summarize(context.Background(), snaptrade.Credentials{})
	if err != nil {
		t.Fatalf("Summarize returned error: %v", err)
	}
	if len(summary.Holdings) != 1 || summary.Holdings[0].Symbol != "MSFT" {
		t.Errorf("holdings = %+v, want only MSFT", summary.Holdings)
	}
}
