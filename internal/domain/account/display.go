package account

import "github.com/shopspring/decimal"

// Display labels and colors for the single-number balance card.
const (
	LabelAmountSpent      = "Amount spent"
	LabelAvailableBalance = "Available balance"

	ColorRed   = "red"
	ColorGreen = "green"
)

var hundred = decimal.NewFromInt(100)

// DisplayBalance is the normalized card model for one account: the number
// shown, how it is labeled and colored, and its share of the asset total.
type DisplayBalance struct {
	AccountID      string           `json:"accountId"`
	Value          decimal.Decimal  `json:"displayValue"`
	Label          string           `json:"displayLabel"`
	Color          string           `json:"displayColor"`
	PercentOfTotal *decimal.Decimal `json:"percentOfTotal,omitempty"`
}

// Display maps one provider account onto the card model.
//
// Credit accounts show magnitude of debt: the current balance when the
// provider reported one (some report it negative, so take the absolute
// value), otherwise credit limit minus available credit. Asset accounts
// show the available balance, falling back to ledger, then current.
func Display(a *ConnectedAccount) DisplayBalance {
	d := DisplayBalance{AccountID: a.ID}

	if a.IsCredit() {
		d.Label = LabelAmountSpent
		d.Color = ColorRed
		switch {
		case a.Current != nil:
			d.Value = a.Current.Abs()
		case a.CreditLimit != nil && a.Available != nil:
			d.Value = a.CreditLimit.Sub(*a.Available).Abs()
		}
		return d
	}

	d.Label = LabelAvailableBalance
	d.Color = ColorGreen
	switch {
	case a.Available != nil:
		d.Value = *a.Available
	case a.Ledger != nil:
		d.Value = *a.Ledger
	case a.Current != nil:
		d.Value = *a.Current
	}
	return d
}

// Normalize maps a set of accounts onto card models and fills in
// PercentOfTotal for asset accounts.
//
// Only asset accounts with a reported available balance participate in the
// percentage: they form both the numerator and the denominator, so an
// account whose balance fetch failed simply drops out of the total rather
// than zeroing everyone else.
func Normalize(accounts []*ConnectedAccount) []DisplayBalance {
	displays := make([]DisplayBalance, 0, len(accounts))
	total := decimal.Zero
	for _, a := range accounts {
		displays = append(displays, Display(a))
		if !a.IsCredit() && a.Available != nil {
			total = total.Add(*a.Available)
		}
	}

	if !total.IsPositive() {
		return displays
	}

	for i, a := range accounts {
		if a.IsCredit() || a.Available == nil {
			continue
		}
		pct := a.Available.Div(total).Mul(hundred).Round(2)
		displays[i].PercentOfTotal = &pct
	}

	return displays
}
