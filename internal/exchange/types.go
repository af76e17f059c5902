package exchange

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// RuleSet 为单一交易对的交易约束快照，获取后视为只读。
// tick/step 为 0 表示不做取整；min/max 为 0 表示无界。
type RuleSet struct {
	Symbol      string
	PriceTick   decimal.Decimal
	MinPrice    decimal.Decimal
	MaxPrice    decimal.Decimal
	QtyStep     decimal.Decimal
	MinQty      decimal.Decimal
	MaxQty      decimal.Decimal
	MinNotional decimal.Decimal
}

// OrderResult 为交易所返回的下单回执，核心层只做透传不解释字段。
type OrderResult struct {
	OrderID       int64  `json:"orderId"`
	Symbol        string `json:"symbol"`
	Status        string `json:"status"`
	ClientOrderID string `json:"clientOrderId"`
	Price         string `json:"price"`
	OrigQty       string `json:"origQty"`
	ExecutedQty   string `json:"executedQty"`
	UpdateTime    int64  `json:"updateTime"`

	// Raw 保留原始响应，供流水记录与排障使用。
	Raw json.RawMessage `json:"-"`
}
