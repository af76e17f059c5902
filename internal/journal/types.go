package journal

import (
	"encoding/json"
	"time"
)

// Event 描述一次订单提交的完整流水：
// 发出的请求参数、交易所回执或失败原因，以及所属策略。
type Event struct {
	ID            int64             `json:"id"`
	Strategy      string            `json:"strategy"`
	Symbol        string            `json:"symbol"`
	ClientOrderID string            `json:"client_order_id,omitempty"`
	Request       map[string]string `json:"request"`
	Response      json.RawMessage   `json:"response,omitempty"`
	Error         string            `json:"error,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
}
