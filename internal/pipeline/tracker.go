package pipeline

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sanspareilsmyn/virtuallist/internal/config"
	"github.com/sanspareilsmyn/virtuallist/internal/message"
	"github.com/sanspareilsmyn/virtuallist/internal/session"
	"github.com/sanspareilsmyn/virtuallist/internal/virtual"
)

// Tracker applies host events to per-list sessions and emits the resulting updates.
// Sessions are only touched from the Run goroutine; the mutex guards the table
// for readers such as ActiveSessions.
type Tracker struct {
	cfg    config.PipelineConfig
	list   config.ListConfig
	input  <-chan message.Event
	output chan<- message.Update
	logger *zap.Logger
	now    func() time.Time

	mu       sync.Mutex
	sessions map[string]*session.Session
}

// NewTracker creates a new Tracker instance.
func NewTracker(cfg config.PipelineConfig, list config.ListConfig, input <-chan message.Event, output chan<- message.Update, logger *zap.Logger) *Tracker {
	t := &Tracker{
		cfg:      cfg,
		list:     list,
		input:    input,
		output:   output,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[string]*session.Session),
	}
	logger.Info("Tracker initialized",
		zap.Duration("session_idle_timeout", cfg.SessionIdleTimeout),
		zap.Duration("eviction_interval", cfg.EvictionInterval),
		zap.Int("default_keeps", list.Keeps),
	)
	return t
}

// Run starts the tracker's processing loop.
func (t *Tracker) Run(ctx context.Context) error {
	sugar := t.logger.Sugar()
	sugar.Info("Starting tracker loop...")
	defer sugar.Info("Tracker loop stopped.")

	ticker := time.NewTicker(t.cfg.EvictionInterval)
	defer ticker.Stop()

	for {
		select {
		case evt, ok := <-t.input:
			if !ok {
				sugar.Info("Tracker input channel closed. Releasing sessions...")
				t.closeAll("shutdown")
				return nil
			}
			for _, u := range t.Apply(evt) {
				if !t.emit(ctx, u) {
					t.closeAll("shutdown")
					return ctx.Err()
				}
			}

		case tickTime := <-ticker.C:
			sugar.Debugw("Ticker fired, evicting idle sessions", zap.Time("tick_time", tickTime))
			t.EvictIdle(tickTime)

		case <-ctx.Done():
			sugar.Info("Context cancelled, stopping tracker. Releasing sessions...")
			t.closeAll("shutdown")
			return ctx.Err()
		}
	}
}

func (t *Tracker) emit(ctx context.Context, u message.Update) bool {
	select {
	case t.output <- u:
		return true
	case <-ctx.Done():
		t.logger.Debug("Context cancelled while sending update downstream.",
			zap.String("session", u.Session),
			zap.String("kind", string(u.Kind)),
		)
		return false
	}
}

// Apply runs one event against its session and returns the updates it produced.
// A session is created on first contact; a sequence event seeds its ids.
func (t *Tracker) Apply(evt message.Event) []message.Update {
	now := t.now()
	eventsTotal.WithLabelValues(string(evt.Type)).Inc()

	if evt.Type == message.EventReset {
		t.closeSession(evt.Session, "reset")
		return nil
	}

	s, created := t.getOrCreateSession(evt, now)
	s.Touch(now)

	var updates []message.Update
	if created {
		updates = append(updates, rangeUpdate(s.ID(), s.Range(), now))
	}

	var res session.Result
	switch evt.Type {
	case message.EventScroll:
		var accepted bool
		res, accepted = s.Scroll(evt.Offset, evt.ClientSize, evt.ScrollSize)
		if !accepted {
			scrollSamplesIgnored.Inc()
			t.logger.Debug("Ignoring scroll sample outside scrollable extent",
				zap.String("session", evt.Session),
				zap.Float64("offset", evt.Offset),
				zap.Float64("client_size", evt.ClientSize),
				zap.Float64("scroll_size", evt.ScrollSize),
			)
		}

	case message.EventResize:
		if !s.ReportSize(string(evt.ItemID), evt.Size) {
			sizeReportsIgnored.Inc()
			t.logger.Debug("Ignoring size of item outside the current sequence",
				zap.String("session", evt.Session),
				zap.String("item", string(evt.ItemID)),
			)
		}

	case message.EventSlotResize:
		slot := session.SlotHeader
		if evt.Slot == message.SlotFooter {
			slot = session.SlotFooter
		}
		res = s.ResizeSlot(slot, evt.Size)

	case message.EventSequence:
		if !created {
			res = s.SetIDs(evt.Keys())
		}

	case message.EventKeeps:
		res = s.SetKeeps(evt.Keeps)

	case message.EventScrollToIndex:
		target := s.ScrollTarget(evt.Index)
		updates = append(updates, message.Update{
			Kind:      message.UpdateTarget,
			Session:   s.ID(),
			Timestamp: now,
			Target:    &message.Target{Index: target.Index, Offset: target.Offset, Bottom: target.Bottom},
		})
	}

	if res.Changed {
		updates = append(updates, rangeUpdate(s.ID(), res.Range, now))
	}
	if res.Edge != session.EdgeNone {
		updates = append(updates, message.Update{
			Kind:      message.UpdateEdge,
			Session:   s.ID(),
			Timestamp: now,
			Edge:      string(res.Edge),
		})
	}
	return updates
}

func rangeUpdate(sessionID string, r virtual.Range, now time.Time) message.Update {
	return message.Update{
		Kind:      message.UpdateRange,
		Session:   sessionID,
		Timestamp: now,
		Range: &message.Range{
			Start:     r.Start,
			End:       r.End,
			PadFront:  r.PadFront,
			PadBehind: r.PadBehind,
		},
	}
}

// getOrCreateSession retrieves or initializes the session for an event.
// It acquires and releases the lock internally.
func (t *Tracker) getOrCreateSession(evt message.Event, now time.Time) (*session.Session, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if s, exists := t.sessions[evt.Session]; exists {
		return s, false
	}

	var ids []string
	if evt.Type == message.EventSequence {
		ids = evt.Keys()
	}
	s := session.New(evt.Session, t.list, ids, now, t.logger.Named("session"))
	t.sessions[evt.Session] = s
	activeSessions.Set(float64(len(t.sessions)))
	t.logger.Debug("Created new session", zap.String("session", evt.Session), zap.Int("items", len(ids)))
	return s, true
}

func (t *Tracker) closeSession(id, reason string) {
	t.mu.Lock()
	s, exists := t.sessions[id]
	if exists {
		delete(t.sessions, id)
		activeSessions.Set(float64(len(t.sessions)))
	}
	t.mu.Unlock()

	if !exists {
		return
	}
	s.Close()
	sessionsClosed.WithLabelValues(reason).Inc()
}

// EvictIdle releases every session not touched within the idle timeout of cutoff.
func (t *Tracker) EvictIdle(cutoff time.Time) int {
	t.mu.Lock()
	var idle []*session.Session
	for id, s := range t.sessions {
		if cutoff.Sub(s.LastSeen()) > t.cfg.SessionIdleTimeout {
			idle = append(idle, s)
			delete(t.sessions, id)
		}
	}
	activeSessions.Set(float64(len(t.sessions)))
	t.mu.Unlock()

	for _, s := range idle {
		s.Close()
		sessionsClosed.WithLabelValues("idle").Inc()
	}
	if len(idle) > 0 {
		t.logger.Debug("Evicted idle sessions", zap.Int("count", len(idle)), zap.Time("cutoff", cutoff))
	}
	return len(idle)
}

func (t *Tracker) closeAll(reason string) {
	t.mu.Lock()
	all := t.sessions
	t.sessions = make(map[string]*session.Session)
	activeSessions.Set(0)
	t.mu.Unlock()

	for _, s := range all {
		s.Close()
		sessionsClosed.WithLabelValues(reason).Inc()
	}
}

// ActiveSessions returns the number of sessions held in memory.
func (t *Tracker) ActiveSessions() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sessions)
}
