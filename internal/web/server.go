package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"primetrade/internal/app"
	"primetrade/internal/order"
	"primetrade/internal/strategy"
)

// Server 提供最小的下单表单与流水查询接口，复用 App 的下单入口。
type Server struct {
	app    *app.App
	logger *zap.Logger
}

// NewServer 创建表单服务。
func NewServer(application *app.App, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{app: application, logger: logger}
}

// Start 启动 HTTP 服务并随 ctx 结束而优雅关闭。
func (s *Server) Start(ctx context.Context, port int) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/orders/market", s.handleMarket)
	mux.HandleFunc("/orders/limit", s.handleLimit)
	mux.HandleFunc("/orders/stop-limit", s.handleStopLimit)
	mux.HandleFunc("/orders/twap", s.handleTWAP)
	mux.HandleFunc("/orders/oco", s.handleOCO)
	mux.HandleFunc("/events", s.handleEvents)

	addr := fmt.Sprintf(":%d", port)
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil && err != http.ErrServerClosed {
			s.logger.Warn("关闭表单服务失败", zap.Error(err))
		}
	}()

	s.logger.Info("表单服务已启动", zap.String("addr", addr))

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(indexHTML))
}

func (s *Server) handleMarket(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	symbol, side, err := parseCommon(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	quantity, err := parseDecimalField(r, "quantity")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := s.app.PlaceMarket(r.Context(), symbol, side, quantity)
	writeResult(w, s.logger, result, err)
}

func (s *Server) handleLimit(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	symbol, side, err := parseCommon(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	quantity, err := parseDecimalField(r, "quantity")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	price, err := parseDecimalField(r, "price")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := s.app.PlaceLimit(r.Context(), symbol, side, quantity, price, parseTIF(r))
	writeResult(w, s.logger, result, err)
}

func (s *Server) handleStopLimit(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	symbol, side, err := parseCommon(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	quantity, err := parseDecimalField(r, "quantity")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	price, err := parseDecimalField(r, "price")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	stopPrice, err := parseDecimalField(r, "stop_price")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := s.app.PlaceStopLimit(r.Context(), symbol, side, quantity, price, stopPrice, parseTIF(r))
	writeResult(w, s.logger, result, err)
}

func (s *Server) handleTWAP(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	symbol, side, err := parseCommon(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	total, err := parseDecimalField(r, "total_quantity")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	slices, err := strconv.Atoi(strings.TrimSpace(r.FormValue("slices")))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("slices 解析失败: %w", err))
		return
	}
	intervalSec, err := strconv.ParseFloat(strings.TrimSpace(r.FormValue("interval")), 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("interval 解析失败: %w", err))
		return
	}

	params := strategy.TWAPParams{
		Symbol:        symbol,
		Side:          side,
		TotalQuantity: total,
		Slices:        slices,
		Interval:      time.Duration(intervalSec * float64(time.Second)),
		Type:          order.TypeMarket,
	}
	if typ := strings.ToUpper(strings.TrimSpace(r.FormValue("type"))); typ != "" {
		params.Type = order.Type(typ)
	}
	if params.Type == order.TypeLimit {
		price, err := parseDecimalField(r, "limit_price")
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		params.LimitPrice = price
	}

	run, err := s.app.RunTWAP(r.Context(), params)
	writeResult(w, s.logger, run, err)
}

func (s *Server) handleOCO(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	symbol, side, err := parseCommon(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	quantity, err := parseDecimalField(r, "quantity")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	price, err := parseDecimalField(r, "price")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	stopPrice, err := parseDecimalField(r, "stop_price")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	params := strategy.OCOParams{
		Symbol:       symbol,
		Side:         side,
		Quantity:     quantity,
		LimitPrice:   price,
		TriggerPrice: stopPrice,
		TimeInForce:  parseTIF(r),
	}
	if raw := strings.TrimSpace(r.FormValue("stop_limit_price")); raw != "" {
		stopLimit, err := decimal.NewFromString(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("stop_limit_price 解析失败: %w", err))
			return
		}
		params.StopLimitPrice = stopLimit
	}

	run, err := s.app.PlaceOCO(r.Context(), params)
	writeResult(w, s.logger, run, err)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := 200
	if qs := q.Get("limit"); qs != "" {
		if v, err := strconv.Atoi(qs); err == nil && v > 0 {
			if v > 1000 {
				v = 1000
			}
			limit = v
		}
	}

	strategyFilter := strings.TrimSpace(q.Get("strategy"))

	events, err := s.app.Journal().ListEvents(r.Context(), strategyFilter, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(events); err != nil {
		s.logger.Warn("写入流水响应失败", zap.Error(err))
	}
}

func requirePost(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

func parseCommon(r *http.Request) (string, order.Side, error) {
	if err := r.ParseForm(); err != nil {
		return "", "", fmt.Errorf("表单解析失败: %w", err)
	}
	symbol := strings.ToUpper(strings.TrimSpace(r.FormValue("symbol")))
	if symbol == "" {
		return "", "", fmt.Errorf("symbol 不能为空")
	}
	side := order.Side(strings.ToUpper(strings.TrimSpace(r.FormValue("side"))))
	return symbol, side, nil
}

func parseDecimalField(r *http.Request, name string) (decimal.Decimal, error) {
	raw := strings.TrimSpace(r.FormValue(name))
	if raw == "" {
		return decimal.Decimal{}, fmt.Errorf("%s 不能为空", name)
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%s 解析失败: %w", name, err)
	}
	return value, nil
}

func parseTIF(r *http.Request) order.TimeInForce {
	return order.TimeInForce(strings.ToUpper(strings.TrimSpace(r.FormValue("tif"))))
}

func writeResult(w http.ResponseWriter, logger *zap.Logger, payload interface{}, err error) {
	w.Header().Set("Content-Type", "application/json")

	body := map[string]interface{}{"result": payload}
	status := http.StatusOK
	if err != nil {
		body["error"] = err.Error()
		status = http.StatusUnprocessableEntity
	}

	w.WriteHeader(status)
	if encodeErr := json.NewEncoder(w).Encode(body); encodeErr != nil {
		logger.Warn("写入下单响应失败", zap.Error(encodeErr))
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
