package exchange

import (
	"errors"
	"fmt"
	"net"
)

var (
	// ErrSymbolNotFound 表示交易所元数据中不存在该交易对。
	ErrSymbolNotFound = errors.New("symbol not found")
	// ErrSubmissionFailed 表示下单请求被传输层或交易所拒绝。
	ErrSubmissionFailed = errors.New("order submission failed")
)

// APIError 携带交易所返回的业务错误码与报文。
type APIError struct {
	HTTPStatus int
	Code       int64
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("exchange api error: status=%d code=%d msg=%s", e.HTTPStatus, e.Code, e.Message)
}

// IsRetryable 判断错误是否为可重试的瞬时故障。
// 仅用于幂等的只读请求，下单失败一律不重试。
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatus >= 500 || apiErr.HTTPStatus == 429
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}
