package order

import "errors"

var (
	// ErrInvalidSide 表示方向不在 BUY/SELL 之内。
	ErrInvalidSide = errors.New("invalid order side")
	// ErrInvalidQuantity 表示数量非正或取整后越界。
	ErrInvalidQuantity = errors.New("invalid quantity")
	// ErrInvalidPrice 表示价格非正或取整后越界。
	ErrInvalidPrice = errors.New("invalid price")
	// ErrNotionalTooLow 表示名义价值低于交易所下限。
	ErrNotionalTooLow = errors.New("notional below minimum")
	// ErrInvalidArgument 表示策略级参数使用错误。
	ErrInvalidArgument = errors.New("invalid argument")
)
