package domain

import "time"

// Trade represents a simulated trade in the paper-trading ledger.
type Trade struct {
	ID         string      // Opaque identifier assigned by the store on creation
	Symbol     string      // Ticker symbol, stored upper-cased (e.g., "RELIANCE")
	Quantity   int64       // Number of shares, fixed at open time
	EntryPrice float64     // Price at which the simulated entry was recorded
	Type       TradeType   // Side recorded at open time (BUY or SELL)
	Status     TradeStatus // Current status (OPEN, CLOSED)
	EntryDate  time.Time   // Timestamp set at creation

	// Exit fields are zero-valued while the trade is OPEN and are set
	// together, exactly once, when the trade is closed.
	ExitPrice float64   // Price at which the trade was closed
	ExitDate  time.Time // Timestamp of the close (zero value while open)
	PNL       float64   // Realized profit/loss, fixed at close
}

// IsOpen checks if the trade status is open.
func (t *Trade) IsOpen() bool {
	return t.Status == StatusOpen
}

// Invested returns the capital committed at entry.
func (t *Trade) Invested() float64 {
	return t.EntryPrice * float64(t.Quantity)
}
