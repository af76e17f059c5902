package order

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"primetrade/internal/exchange"
)

// RuleSource 提供交易规则查询，便于测试时替换真实网关。
type RuleSource interface {
	FetchRules(ctx context.Context, symbol string) (exchange.RuleSet, error)
}

// Builder 把原始输入组装成可直接提交的委托。
// 所有单笔下单路径都必须经过这里，不存在绕过校验的提交入口。
type Builder struct {
	rules  RuleSource
	logger *zap.Logger
}

// NewBuilder 创建订单构建器。
func NewBuilder(rules RuleSource, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{rules: rules, logger: logger}
}

// Build 获取最新交易规则并构建订单，任一校验失败立即终止。
func (b *Builder) Build(ctx context.Context, spec Spec) (Request, error) {
	rules, err := b.rules.FetchRules(ctx, spec.Symbol)
	if err != nil {
		return Request{}, err
	}

	req, err := Build(rules, spec)
	if err != nil {
		b.logger.Warn("订单校验未通过",
			zap.String("symbol", spec.Symbol),
			zap.String("type", string(spec.Type)),
			zap.Error(err),
		)
		return Request{}, err
	}

	return req, nil
}

// Build 按固定顺序执行校验：方向 → 数量 → 价格 → 触发价 → 名义价值。
// 返回的 Request 满足 RuleSet 的全部适用约束；失败时不产出部分结果。
func Build(rules exchange.RuleSet, spec Spec) (Request, error) {
	if err := ValidateSide(spec.Side); err != nil {
		return Request{}, err
	}

	switch spec.Type {
	case TypeMarket, TypeLimit, TypeStop:
	default:
		return Request{}, fmt.Errorf("%w: 不支持的订单类型 %q", ErrInvalidArgument, spec.Type)
	}

	qty, err := ValidateQuantity(rules, spec.Quantity)
	if err != nil {
		return Request{}, err
	}

	req := Request{
		Symbol:        spec.Symbol,
		Side:          spec.Side,
		Type:          spec.Type,
		Quantity:      qty,
		ClientOrderID: spec.ClientOrderID,
	}

	if spec.Type == TypeMarket {
		// MARKET 不带价格，名义价值检查因缺少成交价而跳过。
		return req, nil
	}

	limitInput := spec.Price
	if spec.Type == TypeStop && limitInput.IsZero() {
		// 止损限价缺省时回落到触发价。
		limitInput = spec.StopPrice
	}

	price, err := ValidatePrice(rules, limitInput)
	if err != nil {
		return Request{}, err
	}
	req.Price = price

	if spec.Type == TypeStop {
		trigger, err := ValidatePrice(rules, spec.StopPrice)
		if err != nil {
			return Request{}, err
		}
		req.StopPrice = trigger
	}

	req.TimeInForce = spec.TimeInForce
	if req.TimeInForce == "" {
		req.TimeInForce = TIFGoodTilCanceled
	}

	if err := ValidateNotional(rules, req.Price, qty); err != nil {
		return Request{}, err
	}

	return req, nil
}
