package strategy

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"primetrade/internal/order"
)

// OCO 以限价单加止损限价单的双腿提交模拟 one-cancels-the-other。
// 合约接口没有原生 OCO：两腿彼此独立，不存在成交即撤销对腿的机制，
// 需要互斥语义的调用方必须在外部自建订单监控与撤单层。
// 这里只保证两腿各自完成归一化校验后都被提交，并共享关联前缀便于追踪。
type OCO struct {
	gateway Gateway
	logger  *zap.Logger
}

// NewOCO 创建双腿组合下单器。
func NewOCO(gateway Gateway, logger *zap.Logger) *OCO {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OCO{gateway: gateway, logger: logger}
}

// OCOParams 描述一次双腿组合下单的全部输入。
type OCOParams struct {
	Symbol         string
	Side           order.Side
	Quantity       decimal.Decimal
	LimitPrice     decimal.Decimal
	TriggerPrice   decimal.Decimal
	StopLimitPrice decimal.Decimal // 为零时回落到 TriggerPrice
	TimeInForce    order.TimeInForce
}

// Run 校验共享数量一次、三个价格各自独立校验（取整结果可能不同），
// 然后并发提交两腿。两腿失败各自记录在对应子单上，互不阻塞。
func (o *OCO) Run(ctx context.Context, p OCOParams) (Run, error) {
	run := Run{
		Strategy:  "oco",
		Symbol:    p.Symbol,
		StartedAt: time.Now().UTC(),
	}

	rules, err := o.gateway.FetchRules(ctx, p.Symbol)
	if err != nil {
		return run, err
	}

	if err := order.ValidateSide(p.Side); err != nil {
		return run, err
	}

	qty, err := order.ValidateQuantity(rules, p.Quantity)
	if err != nil {
		return run, err
	}

	limitPrice, err := order.ValidatePrice(rules, p.LimitPrice)
	if err != nil {
		return run, err
	}

	triggerPrice, err := order.ValidatePrice(rules, p.TriggerPrice)
	if err != nil {
		return run, err
	}

	stopLimitInput := p.StopLimitPrice
	if stopLimitInput.IsZero() {
		stopLimitInput = p.TriggerPrice
	}
	stopLimitPrice, err := order.ValidatePrice(rules, stopLimitInput)
	if err != nil {
		return run, err
	}

	tif := p.TimeInForce
	if tif == "" {
		tif = order.TIFGoodTilCanceled
	}

	run.ClientTag = clientTag("oco", p.Symbol)

	legs := []ChildOrder{
		{
			Index: 1,
			Tag:   TagLimit,
			Request: order.Request{
				Symbol:        p.Symbol,
				Side:          p.Side,
				Type:          order.TypeLimit,
				Quantity:      qty,
				Price:         limitPrice,
				TimeInForce:   tif,
				ClientOrderID: run.ClientTag + "-" + TagLimit,
			},
		},
		{
			Index: 2,
			Tag:   TagStop,
			Request: order.Request{
				Symbol:        p.Symbol,
				Side:          p.Side,
				Type:          order.TypeStop,
				Quantity:      qty,
				Price:         stopLimitPrice,
				StopPrice:     triggerPrice,
				TimeInForce:   tif,
				ClientOrderID: run.ClientTag + "-" + TagStop,
			},
		},
	}

	o.logger.Info("OCO 开始提交双腿",
		zap.String("symbol", p.Symbol),
		zap.String("quantity", qty.String()),
		zap.String("limit_price", limitPrice.String()),
		zap.String("trigger_price", triggerPrice.String()),
		zap.String("stop_limit_price", stopLimitPrice.String()),
		zap.String("client_tag", run.ClientTag),
	)

	var g errgroup.Group
	for i := range legs {
		leg := &legs[i]
		g.Go(func() error {
			result, placeErr := o.gateway.PlaceOrder(ctx, leg.Request.Params())
			if placeErr != nil {
				leg.Err = placeErr
				o.logger.Error("OCO 腿提交失败",
					zap.String("leg", leg.Tag),
					zap.Error(placeErr),
				)
				return placeErr
			}
			leg.Result = result
			return nil
		})
	}

	// Wait 只返回首个错误，逐腿的失败细节保留在各自的子单上。
	_ = g.Wait()

	run.Orders = legs
	run.FinishedAt = time.Now().UTC()

	var combined error
	for _, leg := range legs {
		if leg.Err != nil {
			combined = multierr.Append(combined, fmt.Errorf("%s: %w", leg.Tag, leg.Err))
		}
	}

	return run, combined
}
