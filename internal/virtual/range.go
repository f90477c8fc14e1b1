package virtual

// Scroll records a new scroll offset and moves the window when the offset has
// left the buffered zone around the committed start. It returns the committed
// window and whether this call changed it.
func (e *Engine[K]) Scroll(offset float64) (Range, bool) {
	if offset < e.offset {
		e.direction = DirectionTowardStart
	} else {
		e.direction = DirectionTowardEnd
	}
	e.offset = offset

	if e.params == nil {
		return e.rng, false
	}

	if e.direction == DirectionTowardStart {
		return e.handleTowardStart()
	}
	return e.handleTowardEnd()
}

// scrollBand holds the net offsets between which a scroll sample cannot move
// the committed window, so such samples skip the index search.
type scrollBand struct {
	valid bool
	next  float64 // indexToOffset(start+1)
	lead  float64 // indexToOffset(start+buffer)
}

func (e *Engine[K]) refreshBand() {
	start := e.rng.Start
	e.band = scrollBand{
		valid: true,
		next:  e.indexToOffset(start + 1),
		lead:  e.indexToOffset(start + e.params.Buffer),
	}
}

func (e *Engine[K]) netOffset() float64 {
	return e.offset - e.params.HeaderSize
}

func (e *Engine[K]) handleTowardStart() (Range, bool) {
	if !e.band.valid {
		e.refreshBand()
	}
	if e.rng.Start+1 <= e.lastIndex() && e.netOffset() > e.band.next {
		return e.rng, false
	}

	overs := e.scrollOvers()
	if overs > e.rng.Start {
		return e.rng, false
	}

	start := max(overs-e.params.Buffer, 0)
	return e.checkRange(start, e.endByStart(start))
}

func (e *Engine[K]) handleTowardEnd() (Range, bool) {
	if !e.band.valid {
		e.refreshBand()
	}
	if e.netOffset() < e.band.lead {
		return e.rng, false
	}

	overs := e.scrollOvers()
	if overs < e.rng.Start+e.params.Buffer {
		return e.rng, false
	}

	return e.checkRange(overs, e.endByStart(overs))
}

// scrollOvers is the index of the item at the current offset, header excluded.
func (e *Engine[K]) scrollOvers() int {
	offset := e.netOffset()
	if offset <= 0 {
		return 0
	}
	return e.offsetToIndex(offset)
}

// SequenceChanged recomputes the window after the id list changed, nudging the
// committed start by a lead buffer in the last scroll direction.
func (e *Engine[K]) SequenceChanged() (Range, bool) {
	if e.params == nil {
		return e.rng, false
	}

	start := e.rng.Start
	switch e.direction {
	case DirectionTowardStart:
		start -= leadingBuffer
	case DirectionTowardEnd:
		start += leadingBuffer
	}
	start = max(start, 0)

	start, end := e.correct(start, e.endByStart(start))
	next := e.measure(start, end)
	// A mutation can move end or the padding without moving start, so any difference commits.
	if e.committed && next == e.rng {
		return e.rng, false
	}
	return e.commit(next), true
}

// SizeParamChanged is SequenceChanged for keeps, header or footer updates.
func (e *Engine[K]) SizeParamChanged() (Range, bool) {
	return e.SequenceChanged()
}

func (e *Engine[K]) endByStart(start int) int {
	return min(start+e.params.Keeps-1, e.lastIndex())
}

// correct renders everything when the sequence fits in keeps, and otherwise
// anchors a short window on its end.
func (e *Engine[K]) correct(start, end int) (int, int) {
	keeps := e.params.Keeps
	if e.total() <= keeps {
		return 0, e.lastIndex()
	}
	if end-start < keeps-1 {
		start = end - keeps + 1
	}
	return start, end
}

func (e *Engine[K]) checkRange(start, end int) (Range, bool) {
	start, end = e.correct(start, end)
	if e.committed && e.rng.Start == start {
		return e.rng, false
	}
	return e.commit(e.measure(start, end)), true
}

func (e *Engine[K]) measure(start, end int) Range {
	r := Range{Start: start, End: end}
	r.PadFront = e.padFront(start)
	r.PadBehind = e.padBehind(end)
	return r
}

func (e *Engine[K]) commit(r Range) Range {
	e.rng = r
	e.committed = true
	e.refreshBand()
	if e.listener != nil {
		e.listener.OnRangeChange(r)
	}
	return r
}
