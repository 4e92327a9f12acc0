package domain

// TradeType represents the side recorded when a trade is opened (BUY or SELL).
type TradeType string

const (
	Buy  TradeType = "BUY"
	Sell TradeType = "SELL"
)

// TradeStatus represents the lifecycle state of a trade.
// The only transition is OPEN -> CLOSED; trades are never reopened or deleted.
type TradeStatus string

const (
	StatusOpen   TradeStatus = "OPEN"
	StatusClosed TradeStatus = "CLOSED"
)
