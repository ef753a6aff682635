// Package replay reconstructs portfolio state from a backtest result's
// order list. The engine computes the state after any prefix of the
// time-sorted orders as a pure fold, so seeking to an arbitrary index and
// stepping there one order at a time produce identical results.
package replay

import (
	"errors"
	"fmt"
	"math"

	log "github.com/sirupsen/logrus"

	"github.com/rustyeddy/workbench/result"
)

var (
	// ErrBadInitialCapital signals a caller contract violation.
	ErrBadInitialCapital = errors.New("initial capital must be a finite, non-negative number")
	// ErrNoOrders is returned by seek/skip on an engine with no orders.
	ErrNoOrders = errors.New("replay engine has no orders")
	// ErrIndexOutOfRange is returned when a requested prefix length is
	// outside [0, OrdersCount].
	ErrIndexOutOfRange = errors.New("replay index out of range")
)

// Position is the open exposure in one symbol. EntryPrice is the
// volume-weighted average cost: EntryValue / Quantity.
type Position struct {
	Quantity   float64
	EntryPrice float64
	EntryValue float64
}

// ClosedTrade is a realized round-trip.
type ClosedTrade struct {
	Symbol     string
	Quantity   float64
	EntryPrice float64
	ExitPrice  float64
	PnL        float64
	Win        bool
	ClosedAt   result.Timestamp
}

// Snapshot is the portfolio state after replaying a prefix of the order
// sequence. It is recomputed from scratch for every requested index; there
// is no mutable carry-over between calls.
type Snapshot struct {
	Index       int
	Order       *result.Order // order at Index-1; nil for the empty prefix
	Equity      float64
	PeakEquity  float64
	TotalPnL    float64
	TotalTrades int
	Winning     int
	Losing      int
	WinRatePct  float64
	ReturnPct   float64

	// MaxDrawdownPct is the running minimum of (equity-peak)/peak*100
	// over the whole prefix; CurrentDrawdownPct is the same expression at
	// the final processed order only.
	MaxDrawdownPct     float64
	CurrentDrawdownPct float64

	Positions   map[string]Position
	Closed      []ClosedTrade
	ProgressPct float64
	Warnings    []string
}

// Engine replays one result's orders. It is immutable after construction
// and safe for concurrent StateAt calls.
type Engine struct {
	orders         []result.Order
	initialCapital float64
}

// NewEngine builds an engine over the result's orders, sorted by time
// ascending once up front.
func NewEngine(raw *result.Raw, initialCapital float64) (*Engine, error) {
	if initialCapital < 0 || math.IsNaN(initialCapital) || math.IsInf(initialCapital, 0) {
		return nil, ErrBadInitialCapital
	}
	var orders []result.Order
	if raw != nil {
		orders = raw.SortedOrders()
	}
	return &Engine{orders: orders, initialCapital: initialCapital}, nil
}

// NewEngineFromOrders builds an engine over an explicit order slice. The
// orders are copied and sorted the same way NewEngine sorts them.
func NewEngineFromOrders(orders []result.Order, initialCapital float64) (*Engine, error) {
	raw := &result.Raw{Orders: make(map[string]result.Order, len(orders))}
	for i, o := range orders {
		key := o.ID
		if key == "" {
			key = fmt.Sprintf("%06d", i)
		}
		raw.Orders[key] = o
	}
	return NewEngine(raw, initialCapital)
}

// OrdersCount returns the number of replayable orders.
func (e *Engine) OrdersCount() int { return len(e.orders) }

// InitialCapital returns the capital the fold starts from.
func (e *Engine) InitialCapital() float64 { return e.initialCapital }

// OrderAt returns the i-th time-sorted order.
func (e *Engine) OrderAt(i int) (result.Order, bool) {
	if i < 0 || i >= len(e.orders) {
		return result.Order{}, false
	}
	return e.orders[i], true
}

// StateAt replays the first n orders and returns the resulting snapshot.
// n is a prefix length: 0 returns initial-capital defaults, OrdersCount
// returns the final state. Out-of-range n is an error.
func (e *Engine) StateAt(n int) (Snapshot, error) {
	if n < 0 || n > len(e.orders) {
		return Snapshot{}, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, n, len(e.orders))
	}

	snap := Snapshot{
		Index:      n,
		Equity:     e.initialCapital,
		PeakEquity: e.initialCapital,
		Positions:  make(map[string]Position),
	}

	for i := 0; i < n; i++ {
		o := e.orders[i]
		e.applyOrder(&snap, o)

		if snap.Equity > snap.PeakEquity {
			snap.PeakEquity = snap.Equity
		}
		if snap.PeakEquity > 0 {
			dd := (snap.Equity - snap.PeakEquity) / snap.PeakEquity * 100
			snap.CurrentDrawdownPct = dd
			if dd < snap.MaxDrawdownPct {
				snap.MaxDrawdownPct = dd
			}
		}
	}

	if n > 0 {
		o := e.orders[n-1]
		snap.Order = &o
	}

	snap.TotalTrades = len(snap.Closed)
	if snap.TotalTrades > 0 {
		snap.WinRatePct = float64(snap.Winning) / float64(snap.TotalTrades) * 100
	}
	if e.initialCapital > 0 {
		snap.ReturnPct = (snap.Equity - e.initialCapital) / e.initialCapital * 100
	}
	if len(e.orders) > 0 {
		snap.ProgressPct = float64(n) / float64(len(e.orders)) * 100
	}
	return snap, nil
}

// applyOrder mutates the in-flight snapshot for one order. Buys accumulate
// into the symbol's position at volume-weighted cost; sells realize P/L
// against that cost. A sell with no open position is a defined no-op for
// P/L; an over-sell clamps to the open quantity and flags the snapshot.
func (e *Engine) applyOrder(snap *Snapshot, o result.Order) {
	symbol := o.ResolveSymbol()
	quantity := math.Abs(o.Quantity)
	notional := math.Abs(o.Value)

	if o.Direction == result.Buy {
		pos := snap.Positions[symbol]
		pos.Quantity += quantity
		pos.EntryValue += notional
		if pos.Quantity > 0 {
			pos.EntryPrice = pos.EntryValue / pos.Quantity
		}
		snap.Positions[symbol] = pos
		return
	}

	pos, ok := snap.Positions[symbol]
	if !ok || pos.Quantity <= 0 {
		// Sell against nothing: ignored for metrics purposes.
		return
	}

	sellQty := quantity
	proceeds := notional
	if sellQty > pos.Quantity {
		warning := fmt.Sprintf("sell of %.4f %s exceeds open quantity %.4f; clamped", sellQty, symbol, pos.Quantity)
		log.WithField("symbol", symbol).Warn(warning)
		snap.Warnings = append(snap.Warnings, warning)

		sellQty = pos.Quantity
		proceeds = o.Price * sellQty
	}

	pnl := proceeds - pos.EntryPrice*sellQty
	snap.Equity += pnl
	snap.TotalPnL += pnl

	trade := ClosedTrade{
		Symbol:     symbol,
		Quantity:   sellQty,
		EntryPrice: pos.EntryPrice,
		ExitPrice:  o.Price,
		PnL:        pnl,
		Win:        pnl > 0,
		ClosedAt:   o.Time,
	}
	snap.Closed = append(snap.Closed, trade)
	if trade.Win {
		snap.Winning++
	} else {
		snap.Losing++
	}

	pos.Quantity -= sellQty
	if pos.Quantity <= 0 {
		pos = Position{}
	} else {
		pos.EntryValue = pos.EntryPrice * pos.Quantity
	}
	snap.Positions[symbol] = pos
}
