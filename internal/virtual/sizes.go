package virtual

import "math"

// sizeStore keeps measured sizes by item id and classifies the dataset.
// Only ids of the current sequence are ever stored.
type sizeStore[K comparable] struct {
	live  map[K]struct{}
	sizes map[K]float64
	mode  Mode
	fixed float64

	// average is the running mean of the first measurements. Once sampling
	// latches off it is frozen until the engine is reset.
	average  float64
	sampling bool
}

func newSizeStore[K comparable]() sizeStore[K] {
	return sizeStore[K]{
		live:     make(map[K]struct{}),
		sizes:    make(map[K]float64),
		sampling: true,
	}
}

// report stores size for id and reports whether it was accepted. Ids outside
// the current sequence are dropped. limit is min(keeps, totalItems): the average
// is recomputed while fewer than limit distinct ids were measured before this one.
func (s *sizeStore[K]) report(id K, size float64, limit int) bool {
	if _, ok := s.live[id]; !ok {
		return false
	}
	measured := len(s.sizes)
	s.sizes[id] = size

	switch s.mode {
	case ModeInit:
		s.fixed = size
		s.mode = ModeFixed
	case ModeFixed:
		if s.fixed != size {
			s.mode = ModeDynamic
			s.fixed = 0
		}
	}

	if s.mode == ModeFixed || !s.sampling {
		return true
	}
	if measured >= limit {
		s.sampling = false
		return true
	}

	var total float64
	for _, v := range s.sizes {
		total += v
	}
	s.average = math.Round(total / float64(len(s.sizes)))
	return true
}

func (s *sizeStore[K]) lookup(id K) (float64, bool) {
	v, ok := s.sizes[id]
	return v, ok
}

// track replaces the live id set, evicts every measurement outside it and
// returns how many were dropped.
func (s *sizeStore[K]) track(ids []K) int {
	s.live = make(map[K]struct{}, len(ids))
	for _, id := range ids {
		s.live[id] = struct{}{}
	}

	dropped := 0
	for id := range s.sizes {
		if _, ok := s.live[id]; !ok {
			delete(s.sizes, id)
			dropped++
		}
	}
	return dropped
}

func (s *sizeStore[K]) estimate(fallback float64) float64 {
	if s.mode == ModeFixed {
		return s.fixed
	}
	if s.average != 0 {
		return s.average
	}
	return fallback
}
