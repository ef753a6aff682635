// Package metrics pulls summary statistics out of a raw backtest result.
// The engine reports statistics under several possible keys, with values
// that are variously plain numbers, fractions, percent strings, or
// currency strings; every field defaults to zero when absent or
// unparseable.
package metrics

import (
	"strconv"
	"strings"

	"github.com/rustyeddy/workbench/result"
)

// Summary is the extracted headline statistics, all in display units
// (percent fields already scaled to percent).
type Summary struct {
	TotalReturnPct float64
	MaxDrawdownPct float64
	WinRatePct     float64
	TotalTrades    int
	SharpeRatio    float64
}

// Extract probes the result's statistics sections and returns the summary.
func Extract(raw *result.Raw) Summary {
	var s Summary
	if raw == nil {
		return s
	}

	stats := statsSection(raw)

	s.TotalReturnPct = firstPercent(stats, "Net Profit", "Total Net Profit", "Compounding Annual Return")
	s.MaxDrawdownPct = firstPercent(stats, "Drawdown")
	s.WinRatePct = firstPercent(stats, "Win Rate")
	s.SharpeRatio = plainNumber(stats, "Sharpe Ratio")
	s.TotalTrades = tradeCount(raw, stats)
	return s
}

// statsSection returns the first non-empty candidate statistics map.
func statsSection(raw *result.Raw) result.StatMap {
	for _, candidate := range []result.StatMap{
		raw.TotalPerformanceStats,
		raw.Statistics,
		raw.PortfolioStatistics,
	} {
		if len(candidate) > 0 {
			return candidate
		}
	}
	return nil
}

// tradeCount prefers an explicit order-count statistic, halved because the
// engine counts buys and sells separately (round-trip approximation). With
// no statistic available it counts filled orders as min(buys, sells).
func tradeCount(raw *result.Raw, stats result.StatMap) int {
	for _, key := range []string{"Total Orders", "Total Trades"} {
		if stat, ok := stats[key]; ok {
			if n, ok := statNumber(stat); ok && n > 0 {
				return int(n) / 2
			}
		}
	}

	orders := raw.SortedOrders()
	if len(orders) == 0 {
		return 0
	}

	anyFilled := false
	for _, o := range orders {
		if o.Status == 3 {
			anyFilled = true
			break
		}
	}

	var buys, sells int
	for _, o := range orders {
		// Results without status information are treated as all filled.
		if anyFilled && o.Status != 3 {
			continue
		}
		if o.Direction == result.Buy {
			buys++
		} else {
			sells++
		}
	}
	if buys < sells {
		return buys
	}
	return sells
}

// firstPercent returns the first present key's value under the
// percent-or-fraction convention: percent strings are stripped and parsed,
// numbers in [-1, 1] are fractions scaled by 100, anything else is already
// in percent.
func firstPercent(stats result.StatMap, keys ...string) float64 {
	for _, key := range keys {
		stat, ok := stats[key]
		if !ok {
			continue
		}
		if v, ok := percentValue(stat); ok {
			return v
		}
	}
	return 0
}

func percentValue(stat result.Stat) (float64, bool) {
	if stat.IsNum {
		return scaleFraction(stat.Num), true
	}
	s := strings.TrimSpace(stat.Str)
	if s == "" {
		return 0, false
	}
	hadPercent := strings.HasSuffix(s, "%")
	s = strings.ReplaceAll(strings.TrimSuffix(s, "%"), ",", "")
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	if hadPercent {
		return v, true
	}
	return scaleFraction(v), true
}

func scaleFraction(v float64) float64 {
	if v >= -1 && v <= 1 {
		return v * 100
	}
	return v
}

// plainNumber parses a statistic that is always a direct number
// (e.g. "Sharpe Ratio"), tolerating string encodings with separators.
func plainNumber(stats result.StatMap, key string) float64 {
	stat, ok := stats[key]
	if !ok {
		return 0
	}
	if n, ok := statNumber(stat); ok {
		return n
	}
	return 0
}

func statNumber(stat result.Stat) (float64, bool) {
	if stat.IsNum {
		return stat.Num, true
	}
	s := strings.ReplaceAll(strings.TrimSpace(stat.Str), ",", "")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// StartEquity returns the "Start Equity" statistic parsed as currency,
// or the supplied fallback when absent.
func StartEquity(raw *result.Raw, fallback float64) float64 {
	if raw == nil {
		return fallback
	}
	if v, ok := currency(raw.Statistics, "Start Equity"); ok {
		return v
	}
	return fallback
}

// EndEquity returns the "End Equity" statistic parsed as currency, falling
// back to the runtime "Equity" statistic, else zero.
func EndEquity(raw *result.Raw) float64 {
	if raw == nil {
		return 0
	}
	if v, ok := currency(raw.Statistics, "End Equity"); ok {
		return v
	}
	if v, ok := currency(raw.RuntimeStatistics, "Equity"); ok {
		return v
	}
	return 0
}

func currency(stats result.StatMap, key string) (float64, bool) {
	stat, ok := stats[key]
	if !ok {
		return 0, false
	}
	if stat.IsNum {
		return stat.Num, true
	}
	clean := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			return r
		}
		return -1
	}, stat.Str)
	if clean == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
