package app

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"primetrade/internal/config"
	"primetrade/internal/exchange"
	"primetrade/internal/journal"
	"primetrade/internal/order"
	"primetrade/internal/strategy"
)

// App 聚合网关、订单构建与策略执行入口，CLI 与表单服务共用同一套入口。
type App struct {
	cfg     *config.Config
	logger  *zap.Logger
	gateway *exchange.Client
	builder *order.Builder
	twap    *strategy.TWAP
	oco     *strategy.OCO
	journal *journal.Service
}

// New 创建应用实例并完成内部组件装配。
func New(cfg *config.Config, logger *zap.Logger, journalSvc *journal.Service) *App {
	if logger == nil {
		logger = zap.NewNop()
	}

	gateway := exchange.NewClient(cfg.Exchange, logger)

	return &App{
		cfg:     cfg,
		logger:  logger,
		gateway: gateway,
		builder: order.NewBuilder(gateway, logger),
		twap:    strategy.NewTWAP(gateway, logger),
		oco:     strategy.NewOCO(gateway, logger),
		journal: journalSvc,
	}
}

// Journal 返回流水服务，供表单界面查询。
func (a *App) Journal() *journal.Service {
	return a.journal
}

// PlaceMarket 提交市价单。
func (a *App) PlaceMarket(ctx context.Context, symbol string, side order.Side, quantity decimal.Decimal) (exchange.OrderResult, error) {
	spec := order.Spec{
		Symbol:   symbol,
		Side:     side,
		Type:     order.TypeMarket,
		Quantity: quantity,
	}
	return a.placeSingle(ctx, "market", spec)
}

// PlaceLimit 提交限价单。
func (a *App) PlaceLimit(ctx context.Context, symbol string, side order.Side, quantity, price decimal.Decimal, tif order.TimeInForce) (exchange.OrderResult, error) {
	spec := order.Spec{
		Symbol:      symbol,
		Side:        side,
		Type:        order.TypeLimit,
		Quantity:    quantity,
		Price:       price,
		TimeInForce: tif,
	}
	return a.placeSingle(ctx, "limit", spec)
}

// PlaceStopLimit 提交止损限价单，止损限价缺省时回落到触发价。
func (a *App) PlaceStopLimit(ctx context.Context, symbol string, side order.Side, quantity, price, stopPrice decimal.Decimal, tif order.TimeInForce) (exchange.OrderResult, error) {
	spec := order.Spec{
		Symbol:      symbol,
		Side:        side,
		Type:        order.TypeStop,
		Quantity:    quantity,
		Price:       price,
		StopPrice:   stopPrice,
		TimeInForce: tif,
	}
	return a.placeSingle(ctx, "stop-limit", spec)
}

// RunTWAP 执行时间切片策略并记录全部子单流水。
func (a *App) RunTWAP(ctx context.Context, params strategy.TWAPParams) (strategy.Run, error) {
	run, err := a.twap.Run(ctx, params)
	a.recordRun(ctx, run, err)
	return run, err
}

// PlaceOCO 执行双腿组合下单并记录两腿流水。
func (a *App) PlaceOCO(ctx context.Context, params strategy.OCOParams) (strategy.Run, error) {
	run, err := a.oco.Run(ctx, params)
	a.recordRun(ctx, run, err)
	return run, err
}

func (a *App) placeSingle(ctx context.Context, name string, spec order.Spec) (exchange.OrderResult, error) {
	req, err := a.builder.Build(ctx, spec)
	if err != nil {
		return exchange.OrderResult{}, err
	}

	result, err := a.gateway.PlaceOrder(ctx, req.Params())
	a.record(ctx, journal.Event{
		Strategy:      name,
		Symbol:        req.Symbol,
		ClientOrderID: req.ClientOrderID,
		Request:       req.Params(),
		Response:      result.Raw,
		Error:         errString(err),
	})

	return result, err
}

// recordRun 将一次策略执行逐子单写入流水；
// 策略整体失败但无子单时也留一条记录，便于追溯校验阶段的失败。
func (a *App) recordRun(ctx context.Context, run strategy.Run, runErr error) {
	if a.journal == nil {
		return
	}

	for _, child := range run.Orders {
		a.record(ctx, journal.Event{
			Strategy:      run.Strategy,
			Symbol:        run.Symbol,
			ClientOrderID: child.Request.ClientOrderID,
			Request:       child.Request.Params(),
			Response:      child.Result.Raw,
			Error:         errString(child.Err),
		})
	}

	if runErr != nil && len(run.Orders) == 0 {
		a.record(ctx, journal.Event{
			Strategy: run.Strategy,
			Symbol:   run.Symbol,
			Request:  map[string]string{},
			Error:    runErr.Error(),
		})
	}
}

// record 为尽力而为：流水写入失败只告警，不影响交易结果的返回。
func (a *App) record(ctx context.Context, event journal.Event) {
	if a.journal == nil {
		return
	}
	if err := a.journal.Record(ctx, event); err != nil {
		a.logger.Warn("写入订单流水失败", zap.Error(err))
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
