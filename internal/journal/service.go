package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"primetrade/internal/store"
)

// Service 负责持久化订单提交流水，供事后核对与表单界面查询。
type Service struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewService 初始化流水服务，创建所需表结构。
func NewService(store *store.Store, logger *zap.Logger) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("journal: store 不能为空")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Service{
		db:     store.DB(),
		logger: logger,
	}

	if err := s.initSchema(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Service) initSchema() error {
	stmt := `
CREATE TABLE IF NOT EXISTS order_events (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	strategy TEXT NOT NULL,
	symbol TEXT NOT NULL,
	client_order_id TEXT NOT NULL DEFAULT '',
	request TEXT NOT NULL,
	response TEXT,
	error TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_order_events_strategy ON order_events(strategy);
CREATE INDEX IF NOT EXISTS idx_order_events_symbol ON order_events(symbol);
`
	if _, err := s.db.Exec(stmt); err != nil {
		return fmt.Errorf("journal: 初始化表失败: %w", err)
	}
	return nil
}

// Record 写入单条流水。
func (s *Service) Record(ctx context.Context, event Event) error {
	request, err := json.Marshal(event.Request)
	if err != nil {
		return fmt.Errorf("journal: 序列化请求参数失败: %w", err)
	}

	var response interface{}
	if len(event.Response) > 0 {
		response = string(event.Response)
	}

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO order_events (strategy, symbol, client_order_id, request, response, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		event.Strategy, event.Symbol, event.ClientOrderID,
		string(request), response, event.Error,
		event.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("journal: 写入流水失败: %w", err)
	}

	return nil
}

// ListEvents 按时间倒序返回流水，strategy 为空时不过滤。
func (s *Service) ListEvents(ctx context.Context, strategy string, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `SELECT id, strategy, symbol, client_order_id, request, response, error, created_at
		FROM order_events`
	args := make([]interface{}, 0, 2)
	if strategy != "" {
		query += ` WHERE strategy = ?`
		args = append(args, strategy)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("journal: 查询流水失败: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	events := make([]Event, 0, limit)
	for rows.Next() {
		var (
			event     Event
			request   string
			response  sql.NullString
			createdAt string
		)
		if err := rows.Scan(&event.ID, &event.Strategy, &event.Symbol, &event.ClientOrderID,
			&request, &response, &event.Error, &createdAt); err != nil {
			return nil, fmt.Errorf("journal: 读取流水失败: %w", err)
		}

		if err := json.Unmarshal([]byte(request), &event.Request); err != nil {
			s.logger.Warn("流水请求参数解析失败", zap.Int64("id", event.ID), zap.Error(err))
		}
		if response.Valid && response.String != "" {
			event.Response = json.RawMessage(response.String)
		}
		if ts, err := time.Parse(time.RFC3339, createdAt); err == nil {
			event.CreatedAt = ts
		}

		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("journal: 遍历流水失败: %w", err)
	}

	return events, nil
}
