package equity

import (
	"math"

	"github.com/montanaflynn/stats"
)

// tradingDaysPerYear annualizes the Sharpe ratio assuming daily samples.
const tradingDaysPerYear = 252

// Summary describes a built curve: final value, return, worst drawdown,
// and dispersion of per-point returns.
type Summary struct {
	Points         int
	FinalEquity    float64
	TotalReturnPct float64
	MaxDrawdownPct float64
	VolatilityPct  float64
	SharpeRatio    float64
}

// Summarize computes summary statistics over a curve. Curves with fewer
// than two points produce a zero Summary apart from the final equity.
func Summarize(points []Point, initialCapital float64) Summary {
	var s Summary
	s.Points = len(points)
	if len(points) == 0 {
		return s
	}

	s.FinalEquity = points[len(points)-1].Equity
	if initialCapital > 0 {
		s.TotalReturnPct = (s.FinalEquity - initialCapital) / initialCapital * 100
	}
	if len(points) < 2 {
		return s
	}

	peak := points[0].Equity
	for _, p := range points {
		if p.Equity > peak {
			peak = p.Equity
		}
		if peak > 0 {
			dd := (peak - p.Equity) / peak * 100
			if dd > s.MaxDrawdownPct {
				s.MaxDrawdownPct = dd
			}
		}
	}

	returns := make([]float64, 0, len(points)-1)
	for i := 1; i < len(points); i++ {
		prev := points[i-1].Equity
		if prev > 0 {
			returns = append(returns, (points[i].Equity-prev)/prev)
		}
	}
	if len(returns) < 2 {
		return s
	}

	sd, err := stats.StandardDeviation(returns)
	if err != nil {
		return s
	}
	s.VolatilityPct = sd * 100

	mean, err := stats.Mean(returns)
	if err != nil {
		return s
	}
	if sd > 0 {
		s.SharpeRatio = mean / sd * math.Sqrt(tradingDaysPerYear)
	}
	return s
}
