package strategy

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"primetrade/internal/order"
)

// TWAP 将一笔大额订单按固定间隔拆分为等量子单顺序提交。
// 子单严格按序号升序执行；任一子单提交失败立即终止整个执行，
// 已完成的子单照常返回，便于操作员核对实际成交的部分。
type TWAP struct {
	gateway Gateway
	logger  *zap.Logger
}

// NewTWAP 创建时间切片执行器。
func NewTWAP(gateway Gateway, logger *zap.Logger) *TWAP {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TWAP{gateway: gateway, logger: logger}
}

// TWAPParams 描述一次时间切片执行的全部输入。
type TWAPParams struct {
	Symbol        string
	Side          order.Side
	TotalQuantity decimal.Decimal
	Slices        int
	Interval      time.Duration
	Type          order.Type      // MARKET 或 LIMIT
	LimitPrice    decimal.Decimal // Type 为 LIMIT 时必填
	TimeInForce   order.TimeInForce
}

// Run 顺序执行全部切片：构建 → 提交 → 记录 → 等待间隔。
// 总量只在开始时校验一次；LIMIT 价格校验一次后所有切片复用。
func (t *TWAP) Run(ctx context.Context, p TWAPParams) (Run, error) {
	run := Run{
		Strategy:  "twap",
		Symbol:    p.Symbol,
		StartedAt: time.Now().UTC(),
	}

	if p.Slices <= 0 {
		return run, fmt.Errorf("%w: slices 必须大于0，收到 %d", order.ErrInvalidArgument, p.Slices)
	}
	if p.Interval < 0 {
		return run, fmt.Errorf("%w: interval 不能为负，收到 %s", order.ErrInvalidArgument, p.Interval)
	}
	switch p.Type {
	case order.TypeMarket, order.TypeLimit:
	default:
		return run, fmt.Errorf("%w: TWAP 只支持 MARKET 或 LIMIT，收到 %q", order.ErrInvalidArgument, p.Type)
	}

	rules, err := t.gateway.FetchRules(ctx, p.Symbol)
	if err != nil {
		return run, err
	}

	if err := order.ValidateSide(p.Side); err != nil {
		return run, err
	}

	total, err := order.ValidateQuantity(rules, p.TotalQuantity)
	if err != nil {
		return run, err
	}

	var price decimal.Decimal
	tif := p.TimeInForce
	if tif == "" {
		tif = order.TIFGoodTilCanceled
	}
	if p.Type == order.TypeLimit {
		price, err = order.ValidatePrice(rules, p.LimitPrice)
		if err != nil {
			return run, err
		}
	}

	perSlice, lastSlice, err := splitQuantity(total, p.Slices, rules.QtyStep)
	if err != nil {
		return run, err
	}

	run.ClientTag = clientTag("twap", p.Symbol)
	t.logger.Info("TWAP 开始执行",
		zap.String("symbol", p.Symbol),
		zap.String("total", total.String()),
		zap.Int("slices", p.Slices),
		zap.Duration("interval", p.Interval),
		zap.String("per_slice", perSlice.String()),
		zap.String("last_slice", lastSlice.String()),
	)

	for i := 1; i <= p.Slices; i++ {
		qty := perSlice
		if i == p.Slices {
			qty = lastSlice
		}

		req := order.Request{
			Symbol:        p.Symbol,
			Side:          p.Side,
			Type:          p.Type,
			Quantity:      qty,
			ClientOrderID: fmt.Sprintf("%s-%d", run.ClientTag, i),
		}
		if p.Type == order.TypeLimit {
			req.Price = price
			req.TimeInForce = tif
		}

		result, err := t.gateway.PlaceOrder(ctx, req.Params())
		if err != nil {
			t.logger.Error("TWAP 切片提交失败，终止剩余切片",
				zap.Int("slice", i),
				zap.Int("completed", len(run.Orders)),
				zap.Error(err),
			)
			run.FinishedAt = time.Now().UTC()
			return run, err
		}

		run.Orders = append(run.Orders, ChildOrder{Index: i, Request: req, Result: result})
		t.logger.Info("TWAP 切片已提交",
			zap.Int("slice", i),
			zap.String("quantity", qty.String()),
			zap.Int64("order_id", result.OrderID),
		)

		if i < p.Slices && p.Interval > 0 {
			timer := time.NewTimer(p.Interval)
			select {
			case <-ctx.Done():
				timer.Stop()
				run.FinishedAt = time.Now().UTC()
				return run, ctx.Err()
			case <-timer.C:
			}
		}
	}

	run.FinishedAt = time.Now().UTC()
	return run, nil
}

// splitQuantity 将已取整的总量均分为 n 份。
// 每份向下对齐到 step，除不尽的余数并入最后一份，
// 保证每个子单都是步长的整数倍且总和等于校验后的总量。
func splitQuantity(total decimal.Decimal, slices int, step decimal.Decimal) (perSlice, lastSlice decimal.Decimal, err error) {
	n := decimal.NewFromInt(int64(slices))
	perSlice = total.Div(n)

	if step.Sign() > 0 {
		perSlice = order.RoundToStep(perSlice, step)
	} else {
		scale := int32(0)
		if exp := total.Exponent(); exp < 0 {
			scale = -exp
		}
		perSlice = perSlice.Truncate(scale)
	}

	if perSlice.Sign() <= 0 {
		return decimal.Decimal{}, decimal.Decimal{},
			fmt.Errorf("%w: 切片数 %d 过大，单片数量取整后归零", order.ErrInvalidArgument, slices)
	}

	lastSlice = total.Sub(perSlice.Mul(n.Sub(decimal.NewFromInt(1))))
	return perSlice, lastSlice, nil
}
