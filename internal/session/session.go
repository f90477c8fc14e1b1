// Package session adapts one windowing engine to a remote host: it filters
// scroll samples the way a browser scroll container would, raises edge
// events near either end of the list and answers scroll-to-index requests.
package session

import (
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/sanspareilsmyn/virtuallist/internal/config"
	"github.com/sanspareilsmyn/virtuallist/internal/virtual"
)

// Edge is raised when a scroll sample comes within threshold of either end.
type Edge string

const (
	EdgeNone   Edge = ""
	EdgeTop    Edge = "to_top"
	EdgeBottom Edge = "to_bottom"
)

// Slot names a fixed region laid out before or after the items.
type Slot int

const (
	SlotHeader Slot = iota
	SlotFooter
)

// Result is what a single host event produced.
type Result struct {
	Range   virtual.Range
	Changed bool
	Edge    Edge
}

// Target is where the host should scroll to bring an index into view.
type Target struct {
	Index  int
	Offset float64
	Bottom bool
}

// Session owns the engine of one list rendered by one host.
// It is not safe for concurrent use.
type Session struct {
	id     string
	cfg    config.ListConfig
	engine *virtual.Engine[string]
	logger *zap.Logger

	autoBuffer bool
	lastSeen   time.Time
	commits    int
}

// New creates a session whose first window is committed immediately.
func New(id string, cfg config.ListConfig, ids []string, now time.Time, logger *zap.Logger) *Session {
	s := &Session{
		id:         id,
		cfg:        cfg,
		logger:     logger.With(zap.String("session", id)),
		autoBuffer: cfg.Buffer == 0,
		lastSeen:   now,
	}

	buffer := cfg.Buffer
	if s.autoBuffer {
		buffer = defaultBuffer(cfg.Keeps)
	}

	s.engine = virtual.New(&virtual.Params[string]{
		Keeps:        cfg.Keeps,
		EstimateSize: cfg.EstimateSize,
		Buffer:       buffer,
		IDs:          ids,
	}, s)

	s.logger.Debug("Session created",
		zap.Int("keeps", cfg.Keeps),
		zap.Int("buffer", buffer),
		zap.Int("items", len(ids)),
	)
	return s
}

// defaultBuffer keeps a third of the window as slack.
func defaultBuffer(keeps int) int {
	return int(math.Round(float64(keeps) / 3))
}

// OnRangeChange implements virtual.Listener.
func (s *Session) OnRangeChange(r virtual.Range) {
	s.commits++
	s.logger.Debug("Range committed",
		zap.Int("start", r.Start),
		zap.Int("end", r.End),
		zap.Float64("pad_front", r.PadFront),
		zap.Float64("pad_behind", r.PadBehind),
	)
}

func (s *Session) ID() string { return s.id }

// Range returns the committed window.
func (s *Session) Range() virtual.Range { return s.engine.Range() }

// Commits returns how many windows the engine has committed.
func (s *Session) Commits() int { return s.commits }

// MeasuredCount returns how many item sizes the session holds.
func (s *Session) MeasuredCount() int { return s.engine.MeasuredCount() }

func (s *Session) LastSeen() time.Time { return s.lastSeen }

func (s *Session) Touch(now time.Time) {
	if now.After(s.lastSeen) {
		s.lastSeen = now
	}
}

// Scroll applies a scroll sample. Samples outside the scrollable extent, as
// produced by elastic overscroll, and samples before layout are ignored and
// reported with accepted=false.
func (s *Session) Scroll(offset, clientSize, scrollSize float64) (res Result, accepted bool) {
	if offset < 0 || offset+clientSize > scrollSize+1 || scrollSize == 0 {
		return Result{Range: s.engine.Range()}, false
	}

	r, changed := s.engine.Scroll(offset)
	res = Result{Range: r, Changed: changed}

	switch {
	case s.engine.IsTowardStart() && s.engine.Len() > 0 && offset-s.cfg.TopThreshold <= 0:
		res.Edge = EdgeTop
	case s.engine.IsTowardEnd() && offset+clientSize+s.cfg.BottomThreshold >= scrollSize:
		res.Edge = EdgeBottom
	}
	return res, true
}

// ReportSize records the rendered size of one item. Items missing from the
// current sequence are not recorded and reported with false.
func (s *Session) ReportSize(itemID string, size float64) bool {
	return s.engine.ReportSize(itemID, size)
}

// SetIDs replaces the item sequence and recomputes the window around the current position.
func (s *Session) SetIDs(ids []string) Result {
	dropped := s.engine.SetIDs(ids)
	if dropped > 0 {
		s.logger.Debug("Evicted sizes of removed items", zap.Int("dropped", dropped), zap.Int("items", len(ids)))
	}
	r, changed := s.engine.SequenceChanged()
	return Result{Range: r, Changed: changed}
}

// SetKeeps changes the window length. An automatic buffer follows the new length.
func (s *Session) SetKeeps(keeps int) Result {
	s.engine.SetKeeps(keeps)
	if s.autoBuffer {
		s.engine.SetBuffer(defaultBuffer(keeps))
	}
	r, changed := s.engine.SizeParamChanged()
	return Result{Range: r, Changed: changed}
}

// ResizeSlot records a new header or footer size.
func (s *Session) ResizeSlot(slot Slot, size float64) Result {
	switch slot {
	case SlotHeader:
		s.engine.UpdateParam(virtual.ParamHeaderSize, size)
	case SlotFooter:
		s.engine.UpdateParam(virtual.ParamFooterSize, size)
	}
	r, changed := s.engine.SizeParamChanged()
	return Result{Range: r, Changed: changed}
}

// ScrollTarget resolves the offset for index. The last item (or beyond)
// resolves to the very bottom of the list, footer included.
func (s *Session) ScrollTarget(index int) Target {
	total := s.engine.Len()
	if index >= total-1 {
		return Target{
			Index:  index,
			Offset: s.engine.OffsetForIndex(total) + s.engine.FooterSize(),
			Bottom: true,
		}
	}
	return Target{Index: index, Offset: s.engine.OffsetForIndex(index)}
}

// Close releases the size map. The session must not be used afterwards.
func (s *Session) Close() {
	s.logger.Debug("Session closed", zap.Int("commits", s.commits), zap.Int("measured", s.engine.MeasuredCount()))
	s.engine.Reset()
}
