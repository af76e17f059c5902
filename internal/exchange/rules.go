package exchange

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	filterPrice       = "PRICE_FILTER"
	filterLotSize     = "LOT_SIZE"
	filterNotional    = "NOTIONAL"
	filterMinNotional = "MIN_NOTIONAL"
)

type exchangeInfoResponse struct {
	Symbols []symbolInfo `json:"symbols"`
}

type symbolInfo struct {
	Symbol  string         `json:"symbol"`
	Status  string         `json:"status"`
	Filters []symbolFilter `json:"filters"`
}

// symbolFilter 汇总各 filterType 可能出现的字段，未出现的字段留空。
type symbolFilter struct {
	FilterType  string `json:"filterType"`
	TickSize    string `json:"tickSize"`
	MinPrice    string `json:"minPrice"`
	MaxPrice    string `json:"maxPrice"`
	StepSize    string `json:"stepSize"`
	MinQty      string `json:"minQty"`
	MaxQty      string `json:"maxQty"`
	MinNotional string `json:"minNotional"`
}

// ruleSetFromSymbol 把交易所的过滤器列表折叠成 RuleSet。
// 合约市场的最小名义价值可能出现在 NOTIONAL 或 MIN_NOTIONAL，取先到者。
func ruleSetFromSymbol(info symbolInfo) (RuleSet, error) {
	rules := RuleSet{Symbol: info.Symbol}

	for _, f := range info.Filters {
		var err error
		switch f.FilterType {
		case filterPrice:
			if rules.PriceTick, err = parseDecimal(f.TickSize); err != nil {
				return RuleSet{}, fmt.Errorf("解析 %s.tickSize 失败: %w", info.Symbol, err)
			}
			if rules.MinPrice, err = parseDecimal(f.MinPrice); err != nil {
				return RuleSet{}, fmt.Errorf("解析 %s.minPrice 失败: %w", info.Symbol, err)
			}
			if rules.MaxPrice, err = parseDecimal(f.MaxPrice); err != nil {
				return RuleSet{}, fmt.Errorf("解析 %s.maxPrice 失败: %w", info.Symbol, err)
			}
		case filterLotSize:
			if rules.QtyStep, err = parseDecimal(f.StepSize); err != nil {
				return RuleSet{}, fmt.Errorf("解析 %s.stepSize 失败: %w", info.Symbol, err)
			}
			if rules.MinQty, err = parseDecimal(f.MinQty); err != nil {
				return RuleSet{}, fmt.Errorf("解析 %s.minQty 失败: %w", info.Symbol, err)
			}
			if rules.MaxQty, err = parseDecimal(f.MaxQty); err != nil {
				return RuleSet{}, fmt.Errorf("解析 %s.maxQty 失败: %w", info.Symbol, err)
			}
		case filterNotional, filterMinNotional:
			if !rules.MinNotional.IsZero() {
				continue
			}
			if rules.MinNotional, err = parseDecimal(f.MinNotional); err != nil {
				return RuleSet{}, fmt.Errorf("解析 %s.minNotional 失败: %w", info.Symbol, err)
			}
		}
	}

	return rules, nil
}

func parseDecimal(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Decimal{}, nil
	}
	return decimal.NewFromString(raw)
}
