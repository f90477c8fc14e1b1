// Package virtual decides which contiguous slice of a long ordered sequence
// should be materialized for a given scroll offset, and how much padding must
// stand in for the items left out before and after that slice.
//
// An Engine is not safe for concurrent use. Every method is synchronous and
// in-memory; the listener is invoked on the caller's goroutine.
package virtual

import "fmt"

// leadingBuffer is how far the window is nudged in the last scroll direction
// when the sequence or a size parameter changes under the user.
const leadingBuffer = 2

// Mode classifies the measured sizes seen so far.
type Mode int

const (
	ModeInit Mode = iota
	ModeFixed
	ModeDynamic
)

func (m Mode) String() string {
	switch m {
	case ModeInit:
		return "init"
	case ModeFixed:
		return "fixed"
	case ModeDynamic:
		return "dynamic"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Direction is the sign of the last scroll offset change.
type Direction int

const (
	DirectionNone Direction = iota
	DirectionTowardStart
	DirectionTowardEnd
)

func (d Direction) String() string {
	switch d {
	case DirectionNone:
		return "none"
	case DirectionTowardStart:
		return "toward_start"
	case DirectionTowardEnd:
		return "toward_end"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// Range is a committed window: the inclusive index span [Start, End] plus the
// space standing in for unmaterialized items on either side.
type Range struct {
	Start     int
	End       int
	PadFront  float64
	PadBehind float64
}

// Params configures an Engine. IDs mirrors the data sequence and must hold
// unique, stable identifiers; the engine keeps the slice and does not copy it.
type Params[K comparable] struct {
	Keeps        int
	EstimateSize float64
	Buffer       int
	HeaderSize   float64
	FooterSize   float64
	IDs          []K
}

// Listener receives every committed window change.
// Implementations must not scroll the same engine from inside OnRangeChange.
type Listener interface {
	OnRangeChange(r Range)
}

// ListenerFunc adapts a plain function to Listener.
type ListenerFunc func(r Range)

func (f ListenerFunc) OnRangeChange(r Range) { f(r) }

// Engine owns the size map, the committed window and the scroll state of one list.
type Engine[K comparable] struct {
	params   *Params[K]
	listener Listener

	sizes sizeStore[K]

	// lastCalcIndex is the furthest index whose preceding sizes have been accumulated.
	lastCalcIndex int

	offset    float64
	direction Direction
	band      scrollBand

	rng       Range
	committed bool
}

// New builds an engine and commits its first window immediately, so l sees
// the initial range before New returns. A nil params yields an inert engine.
func New[K comparable](params *Params[K], l Listener) *Engine[K] {
	e := &Engine[K]{}
	e.init(params, l)
	return e
}

func (e *Engine[K]) init(params *Params[K], l Listener) {
	e.params = nil
	if params != nil {
		p := *params
		if p.Keeps < 1 {
			p.Keeps = 1
		}
		if p.Buffer < 0 {
			p.Buffer = 0
		}
		e.params = &p
	}
	e.listener = l
	e.sizes = newSizeStore[K]()
	if e.params != nil {
		e.sizes.track(e.params.IDs)
	}
	e.lastCalcIndex = 0
	e.offset = 0
	e.direction = DirectionNone
	e.band = scrollBand{}
	e.rng = Range{Start: 0, End: -1}
	e.committed = false

	if e.params != nil {
		e.checkRange(0, e.params.Keeps-1)
	}
}

// Reset drops every measurement, the window and the scroll state. The engine
// is inert afterwards, exactly as if built with New(nil, nil).
func (e *Engine[K]) Reset() {
	e.init(nil, nil)
}

// Range returns a copy of the committed window.
func (e *Engine[K]) Range() Range {
	return e.rng
}

func (e *Engine[K]) Direction() Direction { return e.direction }

func (e *Engine[K]) IsTowardStart() bool { return e.direction == DirectionTowardStart }

func (e *Engine[K]) IsTowardEnd() bool { return e.direction == DirectionTowardEnd }

// Offset returns the last scroll offset passed to Scroll.
func (e *Engine[K]) Offset() float64 { return e.offset }

// Mode reports whether the measured sizes are uniform.
func (e *Engine[K]) Mode() Mode { return e.sizes.mode }

// MeasuredCount returns how many items currently hold a measurement.
func (e *Engine[K]) MeasuredCount() int { return len(e.sizes.sizes) }

// Size returns the recorded measurement for id.
func (e *Engine[K]) Size(id K) (float64, bool) {
	return e.sizes.lookup(id)
}

// Len returns the number of items in the sequence.
func (e *Engine[K]) Len() int {
	if e.params == nil {
		return 0
	}
	return len(e.params.IDs)
}

// EstimateSize returns the size currently assumed for unmeasured items.
func (e *Engine[K]) EstimateSize() float64 {
	if e.params == nil {
		return 0
	}
	return e.estimate()
}

// ReportSize records a measured size for id and reports whether it was kept.
// Ids not in the current sequence are ignored. Negative or non-finite sizes
// must be filtered by the caller.
func (e *Engine[K]) ReportSize(id K, size float64) bool {
	if e.params == nil {
		return false
	}
	if !e.sizes.report(id, size, min(e.params.Keeps, len(e.params.IDs))) {
		return false
	}
	e.band.valid = false
	return true
}

func (e *Engine[K]) estimate() float64 {
	return e.sizes.estimate(e.params.EstimateSize)
}

func (e *Engine[K]) total() int {
	return len(e.params.IDs)
}

func (e *Engine[K]) lastIndex() int {
	return len(e.params.IDs) - 1
}

func (e *Engine[K]) clampIndex(i int) int {
	last := e.lastIndex()
	if i > last {
		i = last
	}
	if i < 0 {
		i = 0
	}
	return i
}
