// Package equity reconstructs a time-ordered equity curve from a raw
// backtest result. Three extraction strategies are tried in priority
// order: realized profit/loss accumulation, a pre-computed chart series,
// and last-resort reconstruction from the order list. The first strategy
// that yields data wins; if none does, the curve is empty and the caller
// renders a "no trades" state.
package equity

import (
	"errors"
	"math"
	"sort"
	"time"

	"github.com/rustyeddy/workbench/result"
)

// DefaultInitialCapital is used when the caller supplies no capital of
// its own.
const DefaultInitialCapital = 100_000

// Point is one sample of total portfolio value.
type Point struct {
	Time   time.Time
	Equity float64
}

// ErrBadInitialCapital is returned when the caller passes a negative or
// non-finite initial capital. This is a contract violation, not a data
// problem, so it fails fast instead of degrading.
var ErrBadInitialCapital = errors.New("initial capital must be a finite, non-negative number")

// Build produces the equity curve for a raw result. The returned slice is
// ordered by time ascending and may be empty when the result carries no
// usable data.
func Build(raw *result.Raw, initialCapital float64) ([]Point, error) {
	if initialCapital < 0 || math.IsNaN(initialCapital) || math.IsInf(initialCapital, 0) {
		return nil, ErrBadInitialCapital
	}
	if raw == nil {
		return nil, nil
	}

	if pts, ok := fromProfitLoss(raw, initialCapital); ok {
		return pts, nil
	}
	if pts, ok := fromChartSeries(raw); ok {
		return pts, nil
	}
	if pts, ok := fromOrders(raw, initialCapital); ok {
		return pts, nil
	}
	return nil, nil
}

// fromProfitLoss folds realized P/L deltas into a step-function curve:
// one seed point at initial capital, then one point per closed trade.
func fromProfitLoss(raw *result.Raw, initialCapital float64) ([]Point, bool) {
	type entry struct {
		time  time.Time
		delta float64
	}

	var entries []entry
	for key, delta := range raw.ProfitLoss {
		if !delta.Valid() {
			continue
		}
		ts, ok := result.ParseTime(key)
		if !ok {
			continue
		}
		entries = append(entries, entry{time: ts, delta: float64(delta)})
	}
	if len(entries) == 0 {
		return nil, false
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].time.Before(entries[j].time) })

	points := make([]Point, 0, len(entries)+1)
	points = append(points, Point{Time: entries[0].time, Equity: initialCapital})

	equity := initialCapital
	for _, e := range entries {
		equity += e.delta
		points = append(points, Point{Time: e.time, Equity: equity})
	}
	return points, true
}

// fromChartSeries maps a pre-computed equity series into curve points.
// The engine's "Strategy Equity"/"Equity" series is preferred; otherwise
// the first series (by chart then series name) with parseable values wins.
func fromChartSeries(raw *result.Raw) ([]Point, bool) {
	if len(raw.Charts) == 0 {
		return nil, false
	}

	if chart, ok := raw.Charts["Strategy Equity"]; ok {
		if series, ok := chart.Series["Equity"]; ok {
			if pts := seriesPoints(series); len(pts) > 0 {
				return pts, true
			}
		}
	}

	chartNames := make([]string, 0, len(raw.Charts))
	for name := range raw.Charts {
		chartNames = append(chartNames, name)
	}
	sort.Strings(chartNames)

	for _, chartName := range chartNames {
		chart := raw.Charts[chartName]
		seriesNames := make([]string, 0, len(chart.Series))
		for name := range chart.Series {
			seriesNames = append(seriesNames, name)
		}
		sort.Strings(seriesNames)

		for _, seriesName := range seriesNames {
			if pts := seriesPoints(chart.Series[seriesName]); len(pts) > 0 {
				return pts, true
			}
		}
	}
	return nil, false
}

func seriesPoints(s result.Series) []Point {
	samples := s.Points()
	if len(samples) == 0 {
		return nil
	}
	points := make([]Point, len(samples))
	for i, sample := range samples {
		points[i] = Point{Time: sample.Time, Equity: sample.Value}
	}
	return points
}

// fromOrders reconstructs the curve from the order list alone, assuming a
// single open position at a time. A buy with no position opens one; a sell
// with a position realizes (exit - entry) * quantity. Every order appends
// a point, whether or not it moved equity.
func fromOrders(raw *result.Raw, initialCapital float64) ([]Point, bool) {
	orders := raw.SortedOrders()
	if len(orders) == 0 {
		return nil, false
	}

	points := make([]Point, 0, len(orders)+1)
	points = append(points, Point{Time: orders[0].Time.Time, Equity: initialCapital})

	equity := initialCapital
	var open bool
	var entryPrice, quantity float64

	for _, o := range orders {
		switch {
		case o.Direction == result.Buy && !open:
			open = true
			entryPrice = o.Price
			quantity = math.Abs(o.Quantity)
		case o.Direction == result.Sell && open:
			equity += (o.Price - entryPrice) * quantity
			open = false
			entryPrice, quantity = 0, 0
		}
		points = append(points, Point{Time: o.Time.Time, Equity: equity})
	}
	return points, true
}
