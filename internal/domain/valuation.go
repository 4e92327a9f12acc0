package domain

import "time"

// ValuedPosition pairs an open trade with its live market data. When the
// price feed cannot supply a quote, PriceAvailable is false and the derived
// fields are left at zero.
type ValuedPosition struct {
	Trade          *Trade
	LivePrice      float64 // Last traded price reported by the feed
	CurrentValue   float64 // LivePrice * Quantity
	UnrealizedPNL  float64 // (LivePrice - EntryPrice) * Quantity
	PriceAvailable bool
}

// PortfolioSnapshot aggregates the valued open positions at a point in time.
// Positions without a live price contribute zero to TotalCurrentValue.
type PortfolioSnapshot struct {
	Positions          []ValuedPosition
	TotalInvested      float64 // Sum of EntryPrice * Quantity over all positions
	TotalCurrentValue  float64 // Sum of CurrentValue over priced positions only
	TotalUnrealizedPNL float64 // TotalCurrentValue - TotalInvested
	AsOf               time.Time
}
