package funds

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name        string
		amounts     map[string]string
		expect      map[string]string
		badCurrency string
	}{
		{
			name:    "plain amounts",
			amounts: map[string]string{"ETH": "1.5", "BTC": "0.01"},
			expect:  map[string]string{"ETH": "1.5", "BTC": "0.01"},
		},
		{
			name:    "currency codes normalize to upper case",
			amounts: map[string]string{"eth": "2"},
			expect:  map[string]string{"ETH": "2"},
		},
		{
			name:    "empty string coerces to zero",
			amounts: map[string]string{"USDT": ""},
			expect:  map[string]string{"USDT": "0"},
		},
		{
			name:    "open currency set",
			amounts: map[string]string{"SOL": "10"},
			expect:  map[string]string{"SOL": "10"},
		},
		{
			name:        "negative amount fails naming the currency",
			amounts:     map[string]string{"ETH": "1", "BTC": "-0.5"},
			badCurrency: "BTC",
		},
		{
			name:        "garbage fails naming the currency",
			amounts:     map[string]string{"USDT": "lots"},
			badCurrency: "USDT",
		},
		{
			name:        "blank currency code",
			amounts:     map[string]string{"  ": "1"},
			badCurrency: "  ",
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			ledger, err := Parse(tc.amounts)

			if tc.badCurrency != "" {
				var invalid *InvalidAmountError
				if !errors.As(err, &invalid) {
					t.Fatalf("expected InvalidAmountError, got %v", err)
				}
				if invalid.Currency != tc.badCurrency {
					t.Fatalf("error names %q, expected %q", invalid.Currency, tc.badCurrency)
				}
				if ledger != nil {
					t.Fatal("no partial ledger may be returned on failure")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(ledger) != len(tc.expect) {
				t.Fatalf("ledger has %d entries, expected %d", len(ledger), len(tc.expect))
			}
			for code, want := range tc.expect {
				expected, perr := decimal.NewFromString(want)
				if perr != nil {
					t.Fatalf("bad expectation %q: %v", want, perr)
				}
				if !ledger[code].Equal(expected) {
					t.Fatalf("ledger[%s] = %s, expected %s", code, ledger[code], want)
				}
			}
		})
	}
}

func TestAmountDefaultsToZero(t *testing.T) {
	ledger := Ledger{"ETH": decimal.NewFromInt(3)}

	if !ledger.Amount("eth").Equal(decimal.NewFromInt(3)) {
		t.Fatal("lookup must be case-insensitive")
	}
	if !ledger.Amount("BTC").IsZero() {
		t.Fatal("absent currencies must read as zero")
	}
}
