// Package snaptrade implements the SnapTrade brokerage aggregation and
// trading API client. Requests are authenticated with the application
// clientId plus an HMAC signature derived from the consumer key; user-scoped
// calls additionally carry the userId/userSecret pair issued at registration.
package snaptrade

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

// Credentials is the per-user secret pair issued by SnapTrade registration.
type Credentials struct {
	UserID     string
	UserSecret string
}

// Client handles communication with the SnapTrade API
type Client struct {
	httpClient  *http.Client
	baseURL     string
	clientID    string
	consumerKey string
	now         func() time.Time
}

// Ensure Client implements ClientInterface
var _ ClientInterface = (*Client)(nil)

// NewClient creates a SnapTrade API client.
func NewClient(baseURL, clientID, consumerKey string) *Client {
	return &Client{
		httpClient:  &http.Client{Timeout: defaultTimeout},
		baseURL:     baseURL,
		clientID:    clientID,
		consumerKey: consumerKey,
		now:         time.Now,
	}
}

// Registration is the userId/userSecret pair returned when a user is
// registered with SnapTrade.
type Registration struct {
	UserID     string `json:"userId"`
	UserSecret string `json:"userSecret"`
}

// Account represents a brokerage account from the SnapTrade API
type Account struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Number      string `json:"number"`
	Institution string `json:"institution_name"`
	RawType     string `json:"raw_type"` // e.g. MARGIN, CASH, CRYPTO
	Balance     struct {
		Total *struct {
			Amount   float64 `json:"amount"`
			Currency string  `json:"currency"`
		} `json:"total"`
	} `json:"balance"`
	SyncStatus struct {
		Holdings struct {
			LastSuccessfulSync string `json:"last_successful_sync"`
		} `json:"holdings"`
	} `json:"sync_status"`
}

// Position represents one holding inside a brokerage account
type Position struct {
	Symbol struct {
		Symbol struct {
			Symbol      string `json:"symbol"`
			Description string `json:"description"`
		} `json:"symbol"`
	} `json:"symbol"`
	Units           float64  `json:"units"`
	Price           *float64 `json:"price"`
	AverageBuyPrice *float64 `json:"average_purchase_price"`
	OpenPnL         *float64 `json:"open_pnl"`
}

// SymbolQuote is a quote from the user's connected brokerage.
type SymbolQuote struct {
	Symbol struct {
		Symbol string `json:"symbol"`
	} `json:"symbol"`
	LastTradePrice float64 `json:"last_trade_price"`
	BidPrice       float64 `json:"bid_price"`
	AskPrice       float64 `json:"ask_price"`
}

// Order represents a placed or tracked brokerage order
type Order struct {
	BrokerageOrderID string   `json:"brokerage_order_id"`
	Status           string   `json:"status"` // PENDING, EXECUTED, FAILED, ...
	Symbol           string   `json:"universal_symbol_id"`
	Action           string   `json:"action"`
	TotalQuantity    float64  `json:"total_quantity"`
	ExecutionPrice   *float64 `json:"execution_price"`
}

// LoginRedirect carries the connection-portal URL for linking a brokerage.
type LoginRedirect struct {
	RedirectURI string `json:"redirectURI"`
}

// RegisterUser registers an application user with SnapTrade and returns
// the credential pair to persist.
func (c *Client) RegisterUser(ctx context.Context, userID string) (*Registration, error) {
	body := map[string]string{"userId": userID}
	var reg Registration
	if err := c.do(ctx, http.MethodPost, "/snapTrade/registerUser", nil, body, &reg); err != nil {
		return nil, err
	}
	return &reg, nil
}

// DeleteUser removes a user and all their connections from SnapTrade.
func (c *Client) DeleteUser(ctx context.Context, creds Credentials) error {
	return c.do(ctx, http.MethodDelete, "/snapTrade/deleteUser", &creds, nil, nil)
}

// LoginPortalURL returns the connection-portal URL where the user links
// a brokerage.
func (c *Client) LoginPortalURL(ctx context.Context, creds Credentials) (string, error) {
	var redirect LoginRedirect
	if err := c.do(ctx, http.MethodPost, "/snapTrade/login", &creds, map[string]string{}, &redirect); err != nil {
		return "", err
	}
	return redirect.RedirectURI, nil
}

// ListAccounts returns the user's connected brokerage accounts.
func (c *Client) ListAccounts(ctx context.Context, creds Credentials) ([]Account, error) {
	var accounts []Account
	if err := c.do(ctx, http.MethodGet, "/accounts", &creds, nil, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

// ListPositions returns the holdings of one account.
func (c *Client) ListPositions(ctx context.Context, creds Credentials, accountID string) ([]Position, error) {
	var positions []Position
	path := "/accounts/" + accountID + "/positions"
	if err := c.do(ctx, http.MethodGet, path, &creds, nil, &positions); err != nil {
		return nil, err
	}
	return positions, nil
}

// GetQuotes fetches broker quotes for the given symbols through one of the
// user's accounts.
func (c *Client) GetQuotes(ctx context.Context, creds Credentials, accountID string, symbols []string) ([]SymbolQuote, error) {
	path := fmt.Sprintf("/accounts/%s/quotes?symbols=%s&use_ticker=true",
		accountID, url.QueryEscape(strings.Join(symbols, ",")))
	var quotes []SymbolQuote
	if err := c.do(ctx, http.MethodGet, path, &creds, nil, &quotes); err != nil {
		return nil, err
	}
	return quotes, nil
}

// PlaceOrder submits a market order and returns the brokerage order record.
func (c *Client) PlaceOrder(ctx context.Context, creds Credentials, accountID, symbol, action string, units float64) (*Order, error) {
	body := map[string]any{
		"account_id":       accountID,
		"action":           action, // BUY | SELL
		"universal_symbol": symbol,
		"order_type":       "Market",
		"time_in_force":    "Day",
		"units":            units,
	}
	var order Order
	if err := c.do(ctx, http.MethodPost, "/trade/place", &creds, body, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrderStatus fetches the current state of an order.
func (c *Client) GetOrderStatus(ctx context.Context, creds Credentials, accountID, orderID string) (*Order, error) {
	path := fmt.Sprintf("/accounts/%s/orders/%s", accountID, orderID)
	var order Order
	if err := c.do(ctx, http.MethodGet, path, &creds, nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) do(ctx context.Context, method, path string, creds *Credentials, body, out any) error {
	parsed, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("invalid snaptrade path: %w", err)
	}

	// Application auth travels in the query string alongside any user creds.
	query := parsed.Query()
	query.Set("clientId", c.clientID)
	query.Set("timestamp", strconv.FormatInt(c.now().Unix(), 10))
	if creds != nil {
		query.Set("userId", creds.UserID)
		query.Set("userSecret", creds.UserSecret)
	}
	parsed.RawQuery = query.Encode()

	var encoded []byte
	if body != nil {
		encoded, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	sig, err := sign(c.consumerKey, parsed.Path, parsed.RawQuery, encoded)
	if err != nil {
		return fmt.Errorf("failed to sign request: %w", err)
	}

	var reqBody io.Reader
	if encoded != nil {
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, parsed.String(), reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Signature", sig)
	if encoded != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("snaptrade request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("snaptrade %s %s: unexpected status %d: %s", method, parsed.Path, resp.StatusCode, string(data))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode snaptrade response: %w", err)
		}
	}
	return nil
}
