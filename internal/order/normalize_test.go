package order

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"primetrade/internal/exchange"
)

func mustDecimal(t *testing.T, raw string) decimal.Decimal {
	t.Helper()
	value, err := decimal.NewFromString(raw)
	if err != nil {
		t.Fatalf("parse decimal %q: %v", raw, err)
	}
	return value
}

func btcRules(t *testing.T) exchange.RuleSet {
	t.Helper()
	return exchange.RuleSet{
		Symbol:      "BTCUSDT",
		PriceTick:   mustDecimal(t, "0.10"),
		MinPrice:    mustDecimal(t, "556.80"),
		MaxPrice:    mustDecimal(t, "4529764"),
		QtyStep:     mustDecimal(t, "0.001"),
		MinQty:      mustDecimal(t, "0.001"),
		MaxQty:      mustDecimal(t, "1000"),
		MinNotional: mustDecimal(t, "100"),
	}
}

func TestRoundToStep(t *testing.T) {
	cases := []struct {
		name  string
		value string
		step  string
		want  string
	}{
		{"rounds down to qty step", "0.0034", "0.001", "0.003"},
		{"rounds down to price tick", "123.456", "0.01", "123.45"},
		{"exact multiple unchanged", "0.25", "0.05", "0.25"},
		{"zero step passes through", "1.2345", "0", "1.2345"},
		{"coarse step", "7.9", "2", "6"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := RoundToStep(mustDecimal(t, tc.value), mustDecimal(t, tc.step))
			if !got.Equal(mustDecimal(t, tc.want)) {
				t.Errorf("RoundToStep(%s, %s) = %s, want %s", tc.value, tc.step, got, tc.want)
			}
		})
	}
}

func TestRoundToStepProperties(t *testing.T) {
	steps := []string{"0.00001", "0.001", "0.1", "0.5", "1", "25"}
	values := []string{"0.00004", "0.0034", "0.999", "1", "3.14159", "123456.789"}

	for _, rawStep := range steps {
		step := mustDecimal(t, rawStep)
		for _, rawValue := range values {
			value := mustDecimal(t, rawValue)
			got := RoundToStep(value, step)

			if !got.Mod(step).IsZero() {
				t.Errorf("RoundToStep(%s, %s) = %s is not a multiple of step", rawValue, rawStep, got)
			}
			if got.Cmp(value) > 0 {
				t.Errorf("RoundToStep(%s, %s) = %s exceeds input", rawValue, rawStep, got)
			}
			if value.Sub(got).Cmp(step) >= 0 {
				t.Errorf("RoundToStep(%s, %s) = %s left a remainder >= step", rawValue, rawStep, got)
			}
		}
	}
}

func TestValidateQuantity(t *testing.T) {
	rules := btcRules(t)

	cases := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{"negative rejected", "-1", "", true},
		{"zero rejected", "0", "", true},
		{"below min after rounding", "0.0009", "", true},
		{"rounded down to step", "0.0034", "0.003", false},
		{"exact value unchanged", "0.005", "0.005", false},
		{"above max rejected", "1200", "", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ValidateQuantity(rules, mustDecimal(t, tc.raw))
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidQuantity) {
					t.Fatalf("expected ErrInvalidQuantity, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(mustDecimal(t, tc.want)) {
				t.Errorf("ValidateQuantity(%s) = %s, want %s", tc.raw, got, tc.want)
			}
		})
	}
}

func TestValidateQuantityUnboundedRules(t *testing.T) {
	got, err := ValidateQuantity(exchange.RuleSet{}, mustDecimal(t, "0.7"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(mustDecimal(t, "0.7")) {
		t.Errorf("expected quantity unchanged, got %s", got)
	}
}

func TestValidatePrice(t *testing.T) {
	rules := btcRules(t)

	cases := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{"negative rejected", "-5", "", true},
		{"zero rejected", "0", "", true},
		{"rounded down to tick", "50001.37", "50001.3", false},
		{"exact value unchanged", "110000", "110000", false},
		{"below min rejected", "100", "", true},
		{"above max rejected", "9999999", "", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ValidatePrice(rules, mustDecimal(t, tc.raw))
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidPrice) {
					t.Fatalf("expected ErrInvalidPrice, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(mustDecimal(t, tc.want)) {
				t.Errorf("ValidatePrice(%s) = %s, want %s", tc.raw, got, tc.want)
			}
		})
	}
}

func TestValidatePriceNegativeAlwaysFails(t *testing.T) {
	// 无论规则如何，负价格一律拒绝。
	if _, err := ValidatePrice(exchange.RuleSet{}, mustDecimal(t, "-5")); !errors.Is(err, ErrInvalidPrice) {
		t.Fatalf("expected ErrInvalidPrice for empty rules, got %v", err)
	}
	if _, err := ValidatePrice(btcRules(t), mustDecimal(t, "-5")); !errors.Is(err, ErrInvalidPrice) {
		t.Fatalf("expected ErrInvalidPrice for bounded rules, got %v", err)
	}
}

func TestValidateNotional(t *testing.T) {
	rules := btcRules(t)

	if err := ValidateNotional(rules, mustDecimal(t, "10"), mustDecimal(t, "5")); !errors.Is(err, ErrNotionalTooLow) {
		t.Fatalf("expected ErrNotionalTooLow, got %v", err)
	}
	// 名义价值恰好等于下限应当放行。
	if err := ValidateNotional(rules, mustDecimal(t, "100000"), mustDecimal(t, "0.001")); err != nil {
		t.Fatalf("unexpected error at boundary: %v", err)
	}
	if err := ValidateNotional(exchange.RuleSet{}, mustDecimal(t, "0.01"), mustDecimal(t, "0.01")); err != nil {
		t.Fatalf("expected no error without min notional, got %v", err)
	}
}

func TestValidateSide(t *testing.T) {
	if err := ValidateSide(SideBuy); err != nil {
		t.Fatalf("BUY should be valid: %v", err)
	}
	if err := ValidateSide(SideSell); err != nil {
		t.Fatalf("SELL should be valid: %v", err)
	}
	if err := ValidateSide(Side("HOLD")); !errors.Is(err, ErrInvalidSide) {
		t.Fatalf("expected ErrInvalidSide, got %v", err)
	}
	if err := ValidateSide(Side("buy")); !errors.Is(err, ErrInvalidSide) {
		t.Fatalf("expected ErrInvalidSide for lowercase side, got %v", err)
	}
}
