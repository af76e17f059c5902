package strategy

import (
	"context"
	"fmt"
	"time"

	"primetrade/internal/exchange"
	"primetrade/internal/order"
)

// 双腿策略的子单标签。
const (
	TagLimit = "limit"
	TagStop  = "stop"
)

// Gateway 聚合策略执行所需的网关能力。
type Gateway interface {
	FetchRules(ctx context.Context, symbol string) (exchange.RuleSet, error)
	PlaceOrder(ctx context.Context, params map[string]string) (exchange.OrderResult, error)
}

// ChildOrder 记录策略内单个子单的请求与回执。
type ChildOrder struct {
	Index   int
	Tag     string
	Request order.Request
	Result  exchange.OrderResult
	Err     error `json:"-"`
}

// Run 为一次策略执行的完整结果，按子单完成顺序累积，
// 执行中途不对外暴露，整体返回给调用方。
type Run struct {
	Strategy   string
	Symbol     string
	ClientTag  string
	Orders     []ChildOrder
	StartedAt  time.Time
	FinishedAt time.Time
}

// clientTag 生成策略级关联前缀：策略名、交易对加毫秒时间戳，
// 避免同进程内重复执行相互碰撞。
func clientTag(strategy, symbol string) string {
	return fmt.Sprintf("%s-%s-%d", strategy, symbol, time.Now().UnixMilli())
}
