package strategy

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"primetrade/internal/exchange"
	"primetrade/internal/order"
)

// mockGateway 记录所有提交的参数，OCO 双腿并发提交因此需要加锁。
type mockGateway struct {
	mu       sync.Mutex
	rules    exchange.RuleSet
	rulesErr error
	failAt   int                          // 第 n 次提交返回错误，0 表示不失败
	failWhen func(map[string]string) bool // 按参数决定是否失败
	calls    []map[string]string
}

func (m *mockGateway) FetchRules(ctx context.Context, symbol string) (exchange.RuleSet, error) {
	if m.rulesErr != nil {
		return exchange.RuleSet{}, m.rulesErr
	}
	return m.rules, nil
}

func (m *mockGateway) PlaceOrder(ctx context.Context, params map[string]string) (exchange.OrderResult, error) {
	m.mu.Lock()
	m.calls = append(m.calls, params)
	n := len(m.calls)
	m.mu.Unlock()

	if m.failAt == n || (m.failWhen != nil && m.failWhen(params)) {
		return exchange.OrderResult{}, fmt.Errorf("%w: mock rejection", exchange.ErrSubmissionFailed)
	}
	return exchange.OrderResult{OrderID: int64(n), Symbol: params["symbol"], Status: "NEW"}, nil
}

func (m *mockGateway) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func mustDecimal(t *testing.T, raw string) decimal.Decimal {
	t.Helper()
	value, err := decimal.NewFromString(raw)
	if err != nil {
		t.Fatalf("parse decimal %q: %v", raw, err)
	}
	return value
}

func btcRules(t *testing.T) exchange.RuleSet {
	t.Helper()
	return exchange.RuleSet{
		Symbol:      "BTCUSDT",
		PriceTick:   mustDecimal(t, "0.1"),
		MinPrice:    mustDecimal(t, "556.8"),
		MaxPrice:    mustDecimal(t, "4529764"),
		QtyStep:     mustDecimal(t, "0.001"),
		MinQty:      mustDecimal(t, "0.001"),
		MaxQty:      mustDecimal(t, "1000"),
		MinNotional: mustDecimal(t, "100"),
	}
}

func TestTWAPEvenSlices(t *testing.T) {
	gw := &mockGateway{rules: btcRules(t)}
	twap := NewTWAP(gw, nil)

	run, err := twap.Run(context.Background(), TWAPParams{
		Symbol:        "BTCUSDT",
		Side:          order.SideBuy,
		TotalQuantity: mustDecimal(t, "1.0"),
		Slices:        4,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(run.Orders) != 4 {
		t.Fatalf("expected 4 child orders, got %d", len(run.Orders))
	}

	sum := decimal.Zero
	for i, child := range run.Orders {
		if child.Index != i+1 {
			t.Errorf("child %d has index %d", i, child.Index)
		}
		if !child.Request.Quantity.Equal(mustDecimal(t, "0.25")) {
			t.Errorf("slice %d quantity = %s, want 0.25", child.Index, child.Request.Quantity)
		}
		sum = sum.Add(child.Request.Quantity)

		wantID := fmt.Sprintf("%s-%d", run.ClientTag, child.Index)
		if child.Request.ClientOrderID != wantID {
			t.Errorf("slice %d clientOrderID = %s, want %s", child.Index, child.Request.ClientOrderID, wantID)
		}
	}
	if !sum.Equal(mustDecimal(t, "1.0")) {
		t.Errorf("slice quantities sum to %s, want 1.0", sum)
	}
}

func TestTWAPRemainderGoesToLastSlice(t *testing.T) {
	gw := &mockGateway{rules: btcRules(t)}
	twap := NewTWAP(gw, nil)

	run, err := twap.Run(context.Background(), TWAPParams{
		Symbol:        "BTCUSDT",
		Side:          order.SideBuy,
		TotalQuantity: mustDecimal(t, "0.010"),
		Slices:        3,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	step := mustDecimal(t, "0.001")
	want := []string{"0.003", "0.003", "0.004"}
	sum := decimal.Zero
	for i, child := range run.Orders {
		if got := child.Request.Quantity.String(); got != want[i] {
			t.Errorf("slice %d quantity = %s, want %s", i+1, got, want[i])
		}
		if !child.Request.Quantity.Mod(step).IsZero() {
			t.Errorf("slice %d quantity %s is not step aligned", i+1, child.Request.Quantity)
		}
		sum = sum.Add(child.Request.Quantity)
	}
	if !sum.Equal(mustDecimal(t, "0.010")) {
		t.Errorf("slice quantities sum to %s, want 0.010", sum)
	}
}

func TestTWAPLimitSlicesShareValidatedPrice(t *testing.T) {
	gw := &mockGateway{rules: btcRules(t)}
	twap := NewTWAP(gw, nil)

	run, err := twap.Run(context.Background(), TWAPParams{
		Symbol:        "BTCUSDT",
		Side:          order.SideSell,
		TotalQuantity: mustDecimal(t, "0.02"),
		Slices:        2,
		Type:          order.TypeLimit,
		LimitPrice:    mustDecimal(t, "50001.37"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, child := range run.Orders {
		params := child.Request.Params()
		if params["price"] != "50001.3" {
			t.Errorf("slice %d price = %s, want 50001.3", child.Index, params["price"])
		}
		if params["timeInForce"] != "GTC" {
			t.Errorf("slice %d timeInForce = %s, want GTC", child.Index, params["timeInForce"])
		}
	}
}

func TestTWAPStopsAfterSubmissionFailure(t *testing.T) {
	gw := &mockGateway{rules: btcRules(t), failAt: 2}
	twap := NewTWAP(gw, nil)

	run, err := twap.Run(context.Background(), TWAPParams{
		Symbol:        "BTCUSDT",
		Side:          order.SideBuy,
		TotalQuantity: mustDecimal(t, "0.05"),
		Slices:        5,
	})
	if !errors.Is(err, exchange.ErrSubmissionFailed) {
		t.Fatalf("expected ErrSubmissionFailed, got %v", err)
	}
	if len(run.Orders) != 1 {
		t.Errorf("expected 1 completed child order, got %d", len(run.Orders))
	}
	// 第 2 片失败后第 3~5 片不再尝试。
	if gw.callCount() != 2 {
		t.Errorf("expected 2 submissions, got %d", gw.callCount())
	}
}

func TestTWAPArgumentValidation(t *testing.T) {
	gw := &mockGateway{rules: btcRules(t)}
	twap := NewTWAP(gw, nil)

	cases := []struct {
		name   string
		params TWAPParams
	}{
		{
			"zero slices",
			TWAPParams{Symbol: "BTCUSDT", Side: order.SideBuy, TotalQuantity: mustDecimal(t, "1"), Slices: 0},
		},
		{
			"negative interval",
			TWAPParams{Symbol: "BTCUSDT", Side: order.SideBuy, TotalQuantity: mustDecimal(t, "1"), Slices: 2, Interval: -1},
		},
		{
			"stop type not allowed",
			TWAPParams{Symbol: "BTCUSDT", Side: order.SideBuy, TotalQuantity: mustDecimal(t, "1"), Slices: 2, Type: order.TypeStop},
		},
		{
			"too many slices for quantity",
			TWAPParams{Symbol: "BTCUSDT", Side: order.SideBuy, TotalQuantity: mustDecimal(t, "0.003"), Slices: 10},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := twap.Run(context.Background(), tc.params)
			if !errors.Is(err, order.ErrInvalidArgument) {
				t.Fatalf("expected ErrInvalidArgument, got %v", err)
			}
		})
	}
	if gw.callCount() != 0 {
		t.Errorf("expected no submissions, got %d", gw.callCount())
	}
}

func TestTWAPRuleFailurePreventsSubmission(t *testing.T) {
	gw := &mockGateway{rulesErr: fmt.Errorf("%w: NOPEUSDT", exchange.ErrSymbolNotFound)}
	twap := NewTWAP(gw, nil)

	_, err := twap.Run(context.Background(), TWAPParams{
		Symbol:        "NOPEUSDT",
		Side:          order.SideBuy,
		TotalQuantity: mustDecimal(t, "1"),
		Slices:        2,
	})
	if !errors.Is(err, exchange.ErrSymbolNotFound) {
		t.Fatalf("expected ErrSymbolNotFound, got %v", err)
	}
	if gw.callCount() != 0 {
		t.Errorf("expected no submissions, got %d", gw.callCount())
	}
}

func TestTWAPLimitRequiresValidPrice(t *testing.T) {
	gw := &mockGateway{rules: btcRules(t)}
	twap := NewTWAP(gw, nil)

	_, err := twap.Run(context.Background(), TWAPParams{
		Symbol:        "BTCUSDT",
		Side:          order.SideBuy,
		TotalQuantity: mustDecimal(t, "0.02"),
		Slices:        2,
		Type:          order.TypeLimit,
	})
	if !errors.Is(err, order.ErrInvalidPrice) {
		t.Fatalf("expected ErrInvalidPrice, got %v", err)
	}
	if gw.callCount() != 0 {
		t.Errorf("expected no submissions, got %d", gw.callCount())
	}
}

func TestTWAPClientTagSharedPrefix(t *testing.T) {
	gw := &mockGateway{rules: btcRules(t)}
	twap := NewTWAP(gw, nil)

	run, err := twap.Run(context.Background(), TWAPParams{
		Symbol:        "BTCUSDT",
		Side:          order.SideBuy,
		TotalQuantity: mustDecimal(t, "0.01"),
		Slices:        2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(run.ClientTag, "twap-BTCUSDT-") {
		t.Errorf("client tag = %s, want twap-BTCUSDT- prefix", run.ClientTag)
	}
	for _, child := range run.Orders {
		if !strings.HasPrefix(child.Request.ClientOrderID, run.ClientTag+"-") {
			t.Errorf("child %d clientOrderID %s does not share run tag %s", child.Index, child.Request.ClientOrderID, run.ClientTag)
		}
	}
}
