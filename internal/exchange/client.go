package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"primetrade/internal/config"
)

const (
	// TestnetBaseURL 为默认的测试网接入点。
	TestnetBaseURL = "https://testnet.binancefuture.com"
	// MainnetBaseURL 为主网接入点。
	MainnetBaseURL = "https://fapi.binance.com"

	fapiPrefix = "/fapi/v1"
)

// Client 实现 USDⓈ-M 合约的 REST 网关：交易规则查询与下单提交。
// 所有数值参数以十进制字符串透传，不经过二进制浮点。
type Client struct {
	cfg     config.ExchangeConfig
	logger  *zap.Logger
	httpc   *http.Client
	signer  *signer
	baseURL string
}

// NewClient 构造 REST 网关客户端。
func NewClient(cfg config.ExchangeConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = MainnetBaseURL
		if cfg.UseTestnet {
			baseURL = TestnetBaseURL
		}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		cfg:     cfg,
		logger:  logger,
		httpc:   &http.Client{Timeout: timeout},
		signer:  newSigner(cfg.APISecret),
		baseURL: baseURL,
	}
}

// BaseURL 返回实际使用的接入点。
func (c *Client) BaseURL() string {
	return c.baseURL
}

// FetchRules 拉取 exchangeInfo 并提取指定交易对的交易规则。
// 每次顶层操作前重新获取，避免过期的步长悄悄破坏取整。
func (c *Client) FetchRules(ctx context.Context, symbol string) (RuleSet, error) {
	var body []byte

	err := c.callWithRetry(ctx, "exchange_info", func() error {
		raw, doErr := c.do(ctx, http.MethodGet, "/exchangeInfo", nil, false)
		if doErr != nil {
			return doErr
		}
		body = raw
		return nil
	})
	if err != nil {
		return RuleSet{}, err
	}

	var payload exchangeInfoResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return RuleSet{}, fmt.Errorf("解析 exchangeInfo 失败: %w", err)
	}

	for _, info := range payload.Symbols {
		if info.Symbol == symbol {
			return ruleSetFromSymbol(info)
		}
	}

	return RuleSet{}, fmt.Errorf("%w: %s", ErrSymbolNotFound, symbol)
}

// PlaceOrder 提交签名下单请求。下单不做重试，失败直接上抛由调用方处置。
func (c *Client) PlaceOrder(ctx context.Context, params map[string]string) (OrderResult, error) {
	body, err := c.do(ctx, http.MethodPost, "/order", params, true)
	if err != nil {
		c.logger.Error("下单请求被拒绝",
			zap.String("symbol", params["symbol"]),
			zap.String("type", params["type"]),
			zap.Error(err),
		)
		return OrderResult{}, fmt.Errorf("%w: %w", ErrSubmissionFailed, err)
	}

	var result OrderResult
	if err := json.Unmarshal(body, &result); err != nil {
		return OrderResult{}, fmt.Errorf("%w: 解析下单回执失败: %w", ErrSubmissionFailed, err)
	}
	result.Raw = body

	c.logger.Info("下单已提交",
		zap.String("symbol", result.Symbol),
		zap.Int64("order_id", result.OrderID),
		zap.String("status", result.Status),
		zap.String("client_order_id", result.ClientOrderID),
	)

	return result, nil
}

// do 执行单次 HTTP 请求。私有接口追加 timestamp/recvWindow 并签名，
// 签名串必须与最终发送的查询串逐字节一致，signature 追加在末尾。
func (c *Client) do(ctx context.Context, method, path string, params map[string]string, private bool) ([]byte, error) {
	values := url.Values{}
	for k, v := range params {
		values.Set(k, v)
	}

	if private {
		values.Set("timestamp", strconv.FormatInt(time.Now().UnixMilli(), 10))
		values.Set("recvWindow", strconv.FormatInt(c.cfg.RecvWindow, 10))
	}

	encoded := values.Encode()
	if private {
		encoded = encoded + "&signature=" + c.signer.Sign(encoded)
	}

	endpoint := c.baseURL + fapiPrefix + path

	var req *http.Request
	var err error
	if method == http.MethodGet {
		if encoded != "" {
			endpoint = endpoint + "?" + encoded
		}
		req, err = http.NewRequestWithContext(ctx, method, endpoint, nil)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, endpoint, strings.NewReader(encoded))
		if err == nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	}
	if err != nil {
		return nil, fmt.Errorf("构造请求失败: %w", err)
	}

	if private {
		req.Header.Set("X-MBX-APIKEY", c.cfg.APIKey)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应失败: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{HTTPStatus: resp.StatusCode}
		var payload struct {
			Code int64  `json:"code"`
			Msg  string `json:"msg"`
		}
		if json.Unmarshal(body, &payload) == nil {
			apiErr.Code = payload.Code
			apiErr.Message = payload.Msg
		}
		if apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(body))
		}
		return nil, apiErr
	}

	return body, nil
}

// callWithRetry 为幂等的只读请求提供指数退避重试。
func (c *Client) callWithRetry(ctx context.Context, operation string, fn func() error) error {
	attempt := 0
	delay := c.cfg.Retry.MinDelay
	if delay <= 0 {
		delay = 500 * time.Millisecond
	}
	maxDelay := c.cfg.Retry.MaxDelay
	if maxDelay <= 0 {
		maxDelay = 5 * time.Second
	}
	maxAttempts := c.cfg.Retry.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	for {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		attempt++
		start := time.Now()
		err := fn()
		duration := time.Since(start)
		if err == nil {
			if attempt > 1 {
				c.logger.Info("交易所调用重试后成功",
					zap.String("operation", operation),
					zap.Int("attempts", attempt),
					zap.Duration("latency", duration),
				)
			}
			return nil
		}

		if !IsRetryable(err) || attempt >= maxAttempts {
			c.logger.Error("交易所调用失败",
				zap.String("operation", operation),
				zap.Int("attempts", attempt),
				zap.Duration("latency", duration),
				zap.Error(err),
			)
			return err
		}

		wait := delay
		if wait > maxDelay {
			wait = maxDelay
		}

		c.logger.Warn("交易所调用失败，等待重试",
			zap.String("operation", operation),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err),
		)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		delay *= 2
		if delay > maxDelay {
			delay = maxDelay
		}
	}
}
