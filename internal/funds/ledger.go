// Package funds implements the per-currency raised-funds ledger kept on
// every startup. The currency set is open; codes are normalized to
// upper case and amounts are exact decimals.
package funds

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// SeededCurrencies are the codes every new ledger is expected to display
// even before any amount is recorded.
var SeededCurrencies = []string{"ETH", "BTC", "USDT"}

// Ledger maps an upper-case currency code to the cumulative amount
// raised in it. Amounts are never negative.
type Ledger map[string]decimal.Decimal

// InvalidAmountError names the first currency whose submitted amount
// failed to parse as a non-negative decimal.
type InvalidAmountError struct {
	Currency string
	Value    string
}

func (e *InvalidAmountError) Error() string {
	return fmt.Sprintf("invalid amount %q for currency %s", e.Value, e.Currency)
}

// Parse validates a currency→amount-string mapping submitted by a
// client and builds the replacement ledger. Empty strings coerce to
// zero; the first invalid or negative entry aborts the whole parse.
func Parse(amounts map[string]string) (Ledger, error) {
	ledger := make(Ledger, len(amounts))

	for currency, raw := range amounts {
		code := strings.ToUpper(strings.TrimSpace(currency))
		if code == "" {
			return nil, &InvalidAmountError{Currency: currency, Value: raw}
		}

		value := strings.TrimSpace(raw)
		if value == "" {
			ledger[code] = decimal.Zero
			continue
		}

		amount, err := decimal.NewFromString(value)
		if err != nil || amount.IsNegative() {
			return nil, &InvalidAmountError{Currency: code, Value: raw}
		}

		ledger[code] = amount
	}

	return ledger, nil
}

// Amount returns the recorded amount for code, or zero when the
// currency is absent from the ledger.
func (l Ledger) Amount(code string) decimal.Decimal {
	if amount, ok := l[strings.ToUpper(code)]; ok {
		return amount
	}
	return decimal.Zero
}
