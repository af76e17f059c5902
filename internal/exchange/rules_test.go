package exchange

import (
	"encoding/json"
	"testing"
)

const sampleSymbolJSON = `{
  "symbol": "BTCUSDT",
  "status": "TRADING",
  "filters": [
    {"filterType": "PRICE_FILTER", "tickSize": "0.10", "minPrice": "556.80", "maxPrice": "4529764"},
    {"filterType": "LOT_SIZE", "stepSize": "0.001", "minQty": "0.001", "maxQty": "1000"},
    {"filterType": "MARKET_LOT_SIZE", "stepSize": "0.001", "minQty": "0.001", "maxQty": "120"},
    {"filterType": "NOTIONAL", "minNotional": "100"},
    {"filterType": "MIN_NOTIONAL", "minNotional": "5"},
    {"filterType": "MAX_NUM_ORDERS"}
  ]
}`

func TestRuleSetFromSymbol(t *testing.T) {
	var info symbolInfo
	if err := json.Unmarshal([]byte(sampleSymbolJSON), &info); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}

	rules, err := ruleSetFromSymbol(info)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	checks := []struct {
		name string
		got  string
		want string
	}{
		{"symbol", rules.Symbol, "BTCUSDT"},
		{"price tick", rules.PriceTick.String(), "0.1"},
		{"min price", rules.MinPrice.String(), "556.8"},
		{"max price", rules.MaxPrice.String(), "4529764"},
		{"qty step", rules.QtyStep.String(), "0.001"},
		{"min qty", rules.MinQty.String(), "0.001"},
		{"max qty", rules.MaxQty.String(), "1000"},
		// NOTIONAL 先出现，后续 MIN_NOTIONAL 被忽略。
		{"min notional", rules.MinNotional.String(), "100"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %s, want %s", c.name, c.got, c.want)
		}
	}
}

func TestRuleSetFromSymbolMissingFilters(t *testing.T) {
	rules, err := ruleSetFromSymbol(symbolInfo{Symbol: "NEWUSDT"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !rules.PriceTick.IsZero() || !rules.MinQty.IsZero() || !rules.MinNotional.IsZero() {
		t.Errorf("expected zero rules for symbol without filters, got %+v", rules)
	}
}

func TestRuleSetFromSymbolBadDecimal(t *testing.T) {
	info := symbolInfo{
		Symbol: "BTCUSDT",
		Filters: []symbolFilter{
			{FilterType: filterLotSize, StepSize: "not-a-number"},
		},
	}
	if _, err := ruleSetFromSymbol(info); err == nil {
		t.Fatal("expected parse error for malformed stepSize")
	}
}
