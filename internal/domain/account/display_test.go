package account

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestDisplay_CreditAccounts(t *testing.T) {
	tests := []struct {
		name      string
		acc       *ConnectedAccount
		wantValue string
	}{
		{
			name:      "negative current balance shows magnitude",
			acc:       &ConnectedAccount{AccountType: TypeCredit, Current: dec("-450.32")},
			wantValue: "450.32",
		},
		{
			name:      "positive current balance passes through",
			acc:       &ConnectedAccount{AccountType: TypeCredit, Current: dec("1287.90")},
			wantValue: "1287.90",
		},
		{
			name: "current balance preferred over limit minus available",
			acc: &ConnectedAccount{
				AccountType: TypeCredit,
				Current:     dec("-100"),
				CreditLimit: dec("5000"),
				Available:   dec("4000"),
			},
			wantValue: "100",
		},
		{
			name: "limit minus available when current missing",
			acc: &ConnectedAccount{
				AccountType: TypeCredit,
				CreditLimit: dec("5000"),
				Available:   dec("4250.50"),
			},
			wantValue: "749.50",
		},
		{
			name:      "no balance data at all shows zero",
			acc:       &ConnectedAccount{AccountType: TypeCredit},
			wantValue: "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Display(tt.acc)

			if !d.Value.Equal(decimal.RequireFromString(tt.wantValue)) {
				t.Errorf("Value = %s, want %s", d.Value, tt.wantValue)
			}
			if d.Value.IsNegative() {
				t.Errorf("credit display value is negative: %s", d.Value)
			}
			if d.Label != LabelAmountSpent {
				t.Errorf("Label = %q, want %q", d.Label, LabelAmountSpent)
			}
			if d.Color != ColorRed {
				t.Errorf("Color = %q, want %q", d.Color, ColorRed)
			}
			if d.PercentOfTotal != nil {
				t.Error("credit account has PercentOfTotal set")
			}
		})
	}
}

func TestDisplay_AssetAccounts(t *testing.T) {
	tests := []struct {
		name      string
		acc       *ConnectedAccount
		wantValue string
	}{
		{
			name:      "available balance preferred",
			acc:       &ConnectedAccount{AccountType: TypeBank, Available: dec("900"), Ledger: dec("1000"), Current: dec("1100")},
			wantValue: "900",
		},
		{
			name:      "ledger when available missing",
			acc:       &ConnectedAccount{AccountType: TypeBank, Ledger: dec("1000"), Current: dec("1100")},
			wantValue: "1000",
		},
		{
			name:      "current as last resort",
			acc:       &ConnectedAccount{AccountType: TypeInvestment, Current: dec("1100")},
			wantValue: "1100",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Display(tt.acc)

			if !d.Value.Equal(decimal.RequireFromString(tt.wantValue)) {
				t.Errorf("Value = %s, want %s", d.Value, tt.wantValue)
			}
			if d.Label != LabelAvailableBalance {
				t.Errorf("Label = %q, want %q", d.Label, LabelAvailableBalance)
			}
			if d.Color != ColorGreen {
				t.Errorf("Color = %q, want %q", d.Color, ColorGreen)
			}
		})
	}
}

func TestNormalize_PercentOfTotal(t *testing.T) {
	accounts := []*ConnectedAccount{
		{ID: "checking", AccountType: TypeBank, Available: dec("600")},
		{ID: "savings", AccountType: TypeBank, Available: dec("300")},
		{ID: "brokerage", AccountType: TypeInvestment, Available: dec("100")},
		// Failed balance fetch: no available balance, drops out of the total.
		{ID: "stale", AccountType: TypeBank, Ledger: dec("5000")},
		// Credit accounts never participate.
		{ID: "card", AccountType: TypeCredit, Current: dec("-450.32")},
	}

	displays := Normalize(accounts)
	if len(displays) != len(accounts) {
		t.Fatalf("len(displays) = %d, want %d", len(displays), len(accounts))
	}

	byID := make(map[string]DisplayBalance)
	for _, d := range displays {
		byID[d.AccountID] = d
	}

	wantPct := map[string]string{
		"checking":  "60",
		"savings":   "30",
		"brokerage": "10",
	}
	sum := decimal.Zero
	for id, want := range wantPct {
		d := byID[id]
		if d.PercentOfTotal == nil {
			t.Fatalf("%s: PercentOfTotal = nil, want %s", id, want)
		}
		if !d.PercentOfTotal.Equal(decimal.RequireFromString(want)) {
			t.Errorf("%s: PercentOfTotal = %s, want %s", id, d.PercentOfTotal, want)
		}
		sum = sum.Add(*d.PercentOfTotal)
	}

	if sum.GreaterThan(decimal.NewFromInt(100)) {
		t.Errorf("percent sum = %s, want <= 100", sum)
	}

	if byID["stale"].PercentOfTotal != nil {
		t.Error("account without available balance has PercentOfTotal set")
	}
	if byID["card"].PercentOfTotal != nil {
		t.Error("credit account has PercentOfTotal set")
	}
}

func TestNormalize_RoundingKeepsSumUnderHundred(t *testing.T) {
	// Three equal thirds round to 33.33 each; the sum must not exceed 100.
	accounts := []*ConnectedAccount{
		{ID: "a", AccountType: TypeBank, Available: dec("100")},
		{ID: "b", AccountType: TypeBank, Available: dec("100")},
		{ID: "c", AccountType: TypeBank, Available: dec("100")},
	}

	sum := decimal.Zero
	for _, d := range Normalize(accounts) {
		if d.PercentOfTotal == nil {
			t.Fatal("PercentOfTotal = nil for asset account with available balance")
		}
		sum = sum.Add(*d.PercentOfTotal)
	}

	if sum.GreaterThan(decimal.NewFromInt(100)) {
		t.Errorf("percent sum = %s, want <= 100", sum)
	}
}

func TestNormalize_ZeroTotalLeavesPercentsNil(t *testing.T) {
	accounts := []*ConnectedAccount{
		{ID: "a", AccountType: TypeBank, Available: dec("0")},
		{ID: "b", AccountType: TypeCredit, Current: dec("-10")},
	}

	for _, d := range Normalize(accounts) {
		if d.PercentOfTotal != nil {
			t.Errorf("%s: PercentOfTotal set with zero asset total", d.AccountID)
		}
	}
}

func TestUpsertParamsValidate(t *testing.T) {
	valid := UpsertParams{
		ID:          "acc-1",
		UserID:      1,
		Provider:    ProviderTeller,
		Name:        "Checking",
		AccountType: TypeBank,
		Currency:    "USD",
	}

	if err := valid.Validate(); err != nil {
		t.Errorf("Validate() on valid params = %v", err)
	}

	bad := valid
	bad.AccountType = "margin"
	if err := bad.Validate(); err != ErrInvalidAccountType {
		t.Errorf("Validate() = %v, want ErrInvalidAccountType", err)
	}

	bad = valid
	bad.Provider = "plaid"
	if err := bad.Validate(); err != ErrInvalidProvider {
		t.Errorf("Validate() = %v, want ErrInvalidProvider", err)
	}

	bad = valid
	bad.UserID = 0
	if err := bad.Validate(); err == nil {
		t.Error("Validate() accepted zero user ID")
	}
}
