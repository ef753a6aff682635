package replay

import (
	"sync"
	"time"

	"github.com/rustyeddy/workbench/journal"
)

// State is the playback state machine's current mode.
type State int

const (
	Stopped State = iota
	Playing
	Paused
)

func (s State) String() string {
	switch s {
	case Playing:
		return "Playing"
	case Paused:
		return "Paused"
	default:
		return "Stopped"
	}
}

// DefaultInterval is the time between playback ticks when none is
// configured.
const DefaultInterval = 500 * time.Millisecond

// Options configures a Player.
type Options struct {
	// Interval is the delay between ticks (one order per tick).
	Interval time.Duration
	// OnStep, when set, is invoked with each new snapshot. It is called
	// without the player lock held, so it may call back into the player.
	OnStep func(Snapshot)
	// Journal, when set, receives an equity snapshot per step and a trade
	// record per newly closed round-trip.
	Journal journal.Journal
	// RunID tags journal records; defaults to a fresh ULID.
	RunID string
}

// Player drives timer-based playback over an Engine. Each tick advances
// the replay index by one and recomputes the snapshot from scratch; the
// next tick is armed only after the current recomputation completes, so
// ticks never overlap. Every external mutation cancels any pending tick
// first, so a stale tick can never overwrite a user-initiated jump.
type Player struct {
	mu        sync.Mutex
	engine    *Engine
	interval  time.Duration
	onStep    func(Snapshot)
	sink      *journalSink
	state     State
	index     int
	timer     *time.Timer
	ticketSeq uint64 // invalidates ticks scheduled before a mutation
}

// NewPlayer wraps an engine in a playback controller.
func NewPlayer(engine *Engine, opts Options) *Player {
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Player{
		engine:   engine,
		interval: interval,
		onStep:   opts.OnStep,
		sink:     newJournalSink(opts.Journal, opts.RunID),
	}
}

// Engine returns the underlying replay engine.
func (p *Player) Engine() *Engine { return p.engine }

// RunID returns the identifier journal records are tagged with.
func (p *Player) RunID() string { return p.sink.runIDValue() }

// Index returns the current replay prefix length.
func (p *Player) Index() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.index
}

// State returns the playback state.
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Current recomputes and returns the snapshot at the current index.
func (p *Player) Current() (Snapshot, error) {
	p.mu.Lock()
	idx := p.index
	p.mu.Unlock()
	return p.engine.StateAt(idx)
}

// Play starts or resumes playback. If the index is already at the end of
// the order sequence, playback restarts from zero.
func (p *Player) Play() {
	p.mu.Lock()
	p.cancelPendingLocked()

	if p.engine.OrdersCount() == 0 {
		p.state = Stopped
		p.mu.Unlock()
		return
	}
	if p.index >= p.engine.OrdersCount() {
		p.index = 0
		p.sink.reset()
	}
	p.state = Playing
	p.scheduleLocked()
	p.mu.Unlock()
}

// Pause halts the timer without moving the index.
func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cancelPendingLocked()
	if p.state == Playing {
		p.state = Paused
	}
}

// Reset stops playback and rewinds to the empty prefix.
func (p *Player) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cancelPendingLocked()
	p.state = Stopped
	p.index = 0
	p.sink.reset()
}

// Skip advances the index by n orders without starting playback, clamped
// to the last order.
func (p *Player) Skip(n int) (Snapshot, error) {
	p.mu.Lock()
	target := p.index + n
	p.mu.Unlock()
	return p.Seek(target)
}

// Seek jumps directly to the given index (clamped to [0, OrdersCount])
// and recomputes state. Because the fold is prefix-pure, the result is
// identical to arriving at the index via sequential ticks.
func (p *Player) Seek(index int) (Snapshot, error) {
	if p.engine.OrdersCount() == 0 {
		return Snapshot{}, ErrNoOrders
	}

	p.mu.Lock()
	p.cancelPendingLocked()

	if index < 0 {
		index = 0
	}
	if index > p.engine.OrdersCount() {
		index = p.engine.OrdersCount()
	}
	p.index = index
	wasPlaying := p.state == Playing
	p.mu.Unlock()

	snap, err := p.engine.StateAt(index)
	if err != nil {
		return Snapshot{}, err
	}
	// Jumps do not journal intermediate steps; align the sink so later
	// sequential ticks do not re-record already-counted trades.
	p.sink.align(len(snap.Closed))

	if wasPlaying {
		p.mu.Lock()
		if p.state == Playing {
			p.scheduleLocked()
		}
		p.mu.Unlock()
	}
	return snap, nil
}

// cancelPendingLocked stops any scheduled tick and invalidates ticks that
// already fired but have not yet taken the lock.
func (p *Player) cancelPendingLocked() {
	p.ticketSeq++
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
}

func (p *Player) scheduleLocked() {
	ticket := p.ticketSeq
	p.timer = time.AfterFunc(p.interval, func() { p.tick(ticket) })
}

func (p *Player) tick(ticket uint64) {
	p.mu.Lock()
	if p.state != Playing || ticket != p.ticketSeq {
		p.mu.Unlock()
		return
	}

	p.index++
	snap, err := p.engine.StateAt(p.index)
	if err != nil {
		p.state = Stopped
		p.mu.Unlock()
		return
	}

	atEnd := p.index >= p.engine.OrdersCount()
	if atEnd {
		p.state = Stopped
		p.cancelPendingLocked()
	} else {
		p.scheduleLocked()
	}
	onStep := p.onStep
	p.mu.Unlock()

	p.sink.record(snap)
	if onStep != nil {
		onStep(snap)
	}
}
