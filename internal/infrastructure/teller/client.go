// Package teller implements the Teller.io bank aggregation API client.
// Teller authenticates applications with mutual TLS and scopes data access
// with per-enrollment access tokens passed as HTTP basic auth usernames.
package teller

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultTimeout = 15 * time.Second

// Client handles communication with the Teller API
type Client struct {
	httpClient    *http.Client
	baseURL       string
	applicationID string
	environment   string
}

// Ensure Client implements ClientInterface
var _ ClientInterface = (*Client)(nil)

// Config holds the settings needed to construct a client.
type Config struct {
	BaseURL       string
	ApplicationID string
	Environment   string
	CertPath      string
	KeyPath       string
}

// NewClient creates a Teller API client. The client certificate is required
// outside the sandbox environment.
func NewClient(cfg Config) (*Client, error) {
	transport := &http.Transport{}

	if cfg.CertPath != "" && cfg.KeyPath != "" {
		cert, err := tls.LoadX509KeyPair(cfg.CertPath, cfg.KeyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load teller client certificate: %w", err)
		}
		transport.TLSClientConfig = &tls.Config{
			Certificates: []tls.Certificate{cert},
		}
	}

	return &Client{
		httpClient: &http.Client{
			Timeout:   defaultTimeout,
			Transport: transport,
		},
		baseURL:       cfg.BaseURL,
		applicationID: cfg.ApplicationID,
		environment:   cfg.Environment,
	}, nil
}

// ConnectConfig is handed to the Teller Connect widget on the client.
type ConnectConfig struct {
	ApplicationID string `json:"applicationId"`
	Environment   string `json:"environment"`
}

// ConnectInit returns the widget configuration for starting an enrollment.
func (c *Client) ConnectInit() ConnectConfig {
	return ConnectConfig{
		ApplicationID: c.applicationID,
		Environment:   c.environment,
	}
}

// Account represents a bank account from the Teller API
type Account struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Type         string `json:"type"`    // depository | credit
	Subtype      string `json:"subtype"` // checking, savings, credit_card, ...
	Currency     string `json:"currency"`
	Status       string `json:"status"`
	LastFour     string `json:"last_four"`
	EnrollmentID string `json:"enrollment_id"`
	Institution  struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"institution"`
}

// Balance represents account balances from the Teller API. Values arrive
// as decimal strings.
type Balance struct {
	AccountID string  `json:"account_id"`
	Ledger    *string `json:"ledger"`
	Available *string `json:"available"`
}

// Transaction represents a bank transaction from the Teller API
type Transaction struct {
	ID          string `json:"id"`
	AccountID   string `json:"account_id"`
	Date        string `json:"date"` // YYYY-MM-DD
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Status      string `json:"status"` // posted | pending
	Type        string `json:"type"`
	Details     struct {
		Category     string `json:"category"`
		Counterparty struct {
			Name string `json:"name"`
			Type string `json:"type"`
		} `json:"counterparty"`
	} `json:"details"`
}

// PaymentParams describes a Zelle payment to a card issuer.
type PaymentParams struct {
	Amount string `json:"amount"`
	Memo   string `json:"memo,omitempty"`
	Payee  Payee  `json:"payee"`
}

// Payee identifies the payment recipient.
type Payee struct {
	Scheme  string `json:"scheme"` // zelle
	Address string `json:"address"`
	Name    string `json:"name"`
	Type    string `json:"type"` // business | person
}

// Payment represents a payment resource from the Teller API
type Payment struct {
	ID        string `json:"id"`
	Status    string `json:"status"` // pending | processing | sent | failed
	Amount    string `json:"amount"`
	Reference string `json:"reference"`
}

// apiError is Teller's error envelope.
type apiError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ExchangeToken validates an access token received from Teller Connect by
// listing its accounts. A valid token yields the enrolled accounts.
func (c *Client) ExchangeToken(ctx context.Context, accessToken string) ([]Account, error) {
	return c.ListAccounts(ctx, accessToken)
}

// ListAccounts returns all accounts reachable with the access token.
func (c *Client) ListAccounts(ctx context.Context, accessToken string) ([]Account, error) {
	var accounts []Account
	if err := c.get(ctx, accessToken, "/accounts", &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

// GetBalances returns the balances for one account.
func (c *Client) GetBalances(ctx context.Context, accessToken, accountID string) (*Balance, error) {
	var balance Balance
	if err := c.get(ctx, accessToken, "/accounts/"+accountID+"/balances", &balance); err != nil {
		return nil, err
	}
	return &balance, nil
}

// ListTransactions returns up to count recent transactions for one account.
func (c *Client) ListTransactions(ctx context.Context, accessToken, accountID string, count int) ([]Transaction, error) {
	path := fmt.Sprintf("/accounts/%s/transactions?count=%d", accountID, count)
	var txns []Transaction
	if err := c.get(ctx, accessToken, path, &txns); err != nil {
		return nil, err
	}
	return txns, nil
}

// CreatePayment initiates a payment from the given funding account.
func (c *Client) CreatePayment(ctx context.Context, accessToken, accountID string, params PaymentParams) (*Payment, error) {
	var payment Payment
	path := "/accounts/" + accountID + "/payments"
	if err := c.do(ctx, http.MethodPost, accessToken, path, params, &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}

// VerifyPayee registers the payee against the funding account. Teller
// checks zelle eligibility of the address before any payment can
// reference it.
func (c *Client) VerifyPayee(ctx context.Context, accessToken, accountID string, payee Payee) (*Payee, error) {
	var verified Payee
	path := "/accounts/" + accountID + "/payments/payees"
	if err := c.do(ctx, http.MethodPost, accessToken, path, payee, &verified); err != nil {
		return nil, err
	}
	return &verified, nil
}

// GetPayment fetches the current state of a payment.
func (c *Client) GetPayment(ctx context.Context, accessToken, accountID, paymentID string) (*Payment, error) {
	var payment Payment
	path := "/accounts/" + accountID + "/payments/" + paymentID
	if err := c.get(ctx, accessToken, path, &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}

func (c *Client) get(ctx context.Context, accessToken, path string, out any) error {
	return c.do(ctx, http.MethodGet, accessToken, path, nil, out)
}

func (c *Client) do(ctx context.Context, method, accessToken, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	// The enrollment access token is the basic auth username; the password
	// is always empty.
	req.SetBasicAuth(accessToken, "")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("teller request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var apiErr apiError
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error.Code != "" {
			return fmt.Errorf("teller %s %s: %s (%s)", method, path, apiErr.Error.Message, apiErr.Error.Code)
		}
		return fmt.Errorf("teller %s %s: unexpected status %d", method, path, resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode teller response: %w", err)
		}
	}
	return nil
}
