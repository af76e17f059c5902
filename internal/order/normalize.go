package order

import (
	"fmt"

	"github.com/shopspring/decimal"

	"primetrade/internal/exchange"
)

// RoundToStep 将 value 向下取整到 step 的整数倍，并约束到 step 蕴含的小数位。
// 只向下取整：向上会把数量或价格推出边界，或悄悄抬高成本。
// step 为 0 时原样返回。
func RoundToStep(value, step decimal.Decimal) decimal.Decimal {
	if step.IsZero() {
		return value
	}

	places := int32(0)
	if exp := step.Exponent(); exp < 0 {
		places = -exp
	}

	return value.Sub(value.Mod(step)).Truncate(places)
}

// ValidateSide 校验下单方向。
func ValidateSide(side Side) error {
	if side != SideBuy && side != SideSell {
		return fmt.Errorf("%w: %q，只接受 BUY 或 SELL", ErrInvalidSide, side)
	}
	return nil
}

// ValidateQuantity 校验并归一化数量。
// 返回取整后的值，调用方必须继续使用返回值而不是原始输入，
// 后续的名义价值等检查都依赖取整结果。
func ValidateQuantity(rules exchange.RuleSet, raw decimal.Decimal) (decimal.Decimal, error) {
	if raw.Sign() <= 0 {
		return decimal.Decimal{}, fmt.Errorf("%w: 数量必须为正，收到 %s", ErrInvalidQuantity, raw)
	}

	qty := RoundToStep(raw, rules.QtyStep)
	if qty.Cmp(rules.MinQty) < 0 {
		return decimal.Decimal{}, fmt.Errorf("%w: 数量 %s 低于下限 %s", ErrInvalidQuantity, qty, rules.MinQty)
	}
	if rules.MaxQty.Sign() > 0 && qty.Cmp(rules.MaxQty) > 0 {
		return decimal.Decimal{}, fmt.Errorf("%w: 数量 %s 超过上限 %s", ErrInvalidQuantity, qty, rules.MaxQty)
	}

	return qty, nil
}

// ValidatePrice 校验并归一化价格，min/max 为 0 表示无界。
func ValidatePrice(rules exchange.RuleSet, raw decimal.Decimal) (decimal.Decimal, error) {
	if raw.Sign() <= 0 {
		return decimal.Decimal{}, fmt.Errorf("%w: 价格必须为正，收到 %s", ErrInvalidPrice, raw)
	}

	price := RoundToStep(raw, rules.PriceTick)
	if rules.MinPrice.Sign() > 0 && price.Cmp(rules.MinPrice) < 0 {
		return decimal.Decimal{}, fmt.Errorf("%w: 价格 %s 低于下限 %s", ErrInvalidPrice, price, rules.MinPrice)
	}
	if rules.MaxPrice.Sign() > 0 && price.Cmp(rules.MaxPrice) > 0 {
		return decimal.Decimal{}, fmt.Errorf("%w: 价格 %s 超过上限 %s", ErrInvalidPrice, price, rules.MaxPrice)
	}

	return price, nil
}

// ValidateNotional 校验名义价值下限。
// MARKET 单拿不到成交价，调用方应跳过本检查，这是有意保留的缺口。
func ValidateNotional(rules exchange.RuleSet, price, qty decimal.Decimal) error {
	if rules.MinNotional.Sign() <= 0 {
		return nil
	}

	notional := price.Mul(qty)
	if notional.Cmp(rules.MinNotional) < 0 {
		return fmt.Errorf("%w: %s 低于下限 %s", ErrNotionalTooLow, notional, rules.MinNotional)
	}

	return nil
}
