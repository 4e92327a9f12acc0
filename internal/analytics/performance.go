package analytics

import "papertrader/internal/domain"

// Stats holds performance figures derived from a user's closed trades.
type Stats struct {
	TotalTrades   int
	WinningTrades int
	LosingTrades  int
	WinRate       float64
	TotalProfit   float64
	AverageWin    float64
	AverageLoss   float64 // Negative or zero
	ProfitFactor  float64 // Gross win / gross loss; zero when there are no losses
	Expectancy    float64 // Average pnl per trade weighted by win rate
	BestTrade     float64
	WorstTrade    float64
}

// Analyze computes performance statistics over the closed trades in the
// given set. Open trades are skipped. An empty history yields zero-valued
// stats.
func Analyze(trades []*domain.Trade) *Stats {
	s := &Stats{}
	var grossWin, grossLoss float64

	for _, t := range trades {
		if t.IsOpen() {
			continue
		}
		if s.TotalTrades == 0 {
			s.BestTrade = t.PNL
			s.WorstTrade = t.PNL
		} else {
			if t.PNL > s.BestTrade {
				s.BestTrade = t.PNL
			}
			if t.PNL < s.WorstTrade {
				s.WorstTrade = t.PNL
			}
		}
		s.TotalTrades++
		s.TotalProfit += t.PNL
		if t.PNL > 0 {
			s.WinningTrades++
			grossWin += t.PNL
		} else {
			s.LosingTrades++
			grossLoss += -t.PNL
		}
	}
	if s.TotalTrades == 0 {
		return s
	}

	s.WinRate = float64(s.WinningTrades) / float64(s.TotalTrades)
	if s.WinningTrades > 0 {
		s.AverageWin = grossWin / float64(s.WinningTrades)
	}
	if s.LosingTrades > 0 {
		s.AverageLoss = -grossLoss / float64(s.LosingTrades)
	}
	if grossLoss > 0 {
		s.ProfitFactor = grossWin / grossLoss
	}
	s.Expectancy = s.WinRate*s.AverageWin + (1-s.WinRate)*s.AverageLoss

	return s
}
