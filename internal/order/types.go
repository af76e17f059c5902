package order

import (
	"github.com/shopspring/decimal"
)

// Side 表示下单方向。
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Type 表示订单类型。STOP 即止损限价单，需同时携带触发价与限价。
type Type string

const (
	TypeMarket Type = "MARKET"
	TypeLimit  Type = "LIMIT"
	TypeStop   Type = "STOP"
)

// TimeInForce 表示订单有效期策略。
type TimeInForce string

const (
	TIFGoodTilCanceled   TimeInForce = "GTC"
	TIFImmediateOrCancel TimeInForce = "IOC"
	TIFFillOrKill        TimeInForce = "FOK"
)

// Spec 描述一笔待构建订单的原始输入，数值未经归一化。
type Spec struct {
	Symbol        string
	Side          Side
	Type          Type
	Quantity      decimal.Decimal
	Price         decimal.Decimal // LIMIT 的限价；STOP 的止损限价，为零时回落到 StopPrice
	StopPrice     decimal.Decimal // 仅 STOP 使用的触发价
	TimeInForce   TimeInForce     // 空值按 GTC 处理
	ClientOrderID string
}

// Request 为通过全部校验的最终委托，构建后不再修改、一次性使用。
type Request struct {
	Symbol        string
	Side          Side
	Type          Type
	Quantity      decimal.Decimal
	Price         decimal.Decimal
	StopPrice     decimal.Decimal
	TimeInForce   TimeInForce
	ClientOrderID string
}

// Params 生成提交交易所的请求参数。
// 字段名由交易所定义，数值一律为十进制字符串。
func (r Request) Params() map[string]string {
	params := map[string]string{
		"symbol":   r.Symbol,
		"side":     string(r.Side),
		"type":     string(r.Type),
		"quantity": r.Quantity.String(),
	}

	if r.Type != TypeMarket {
		params["price"] = r.Price.String()
		params["timeInForce"] = string(r.TimeInForce)
	}
	if r.Type == TypeStop {
		params["stopPrice"] = r.StopPrice.String()
	}
	if r.ClientOrderID != "" {
		params["newClientOrderId"] = r.ClientOrderID
	}

	return params
}
