package snaptrade

import (
	"context"

	"flint/internal/domain/marketdata"
)

// QuoteProvider adapts the SnapTrade client into the market-data provider
// chain. It only produces quotes when the request context carries user
// credentials; anonymous lookups fall straight through to the next provider.
type QuoteProvider struct {
	client ClientInterface
}

var _ marketdata.Provider = (*QuoteProvider)(nil)

func NewQuoteProvider(client ClientInterface) *QuoteProvider {
	return &QuoteProvider{client: client}
}

func (p *QuoteProvider) Name() string { return "snaptrade" }

func (p *QuoteProvider) Quote(ctx context.Context, symbol string) (*marketdata.Quote, error) {
	creds, accountID, ok := CredentialsFromContext(ctx)
	if !ok || accountID == "" {
		return nil, nil
	}

	quotes, err := p.client.GetQuotes(ctx, creds, accountID, []string{symbol})
	if err != nil {
		return nil, err
	}
	if len(quotes) == 0 || quotes[0].LastTradePrice <= 0 {
		return nil, nil
	}

	return &marketdata.Quote{
		Symbol: symbol,
		Price:  quotes[0].LastTradePrice,
	}, nil
}
