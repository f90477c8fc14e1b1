package virtual

func (e *Engine[K]) padFront(start int) float64 {
	return e.indexToOffset(start)
}

// padBehind is exact once the tail has been accumulated at least once,
// and an estimate before that.
func (e *Engine[K]) padBehind(end int) float64 {
	last := e.lastIndex()
	if e.sizes.mode == ModeFixed {
		return float64(last-end) * e.sizes.fixed
	}
	if e.lastCalcIndex == last {
		return e.indexToOffset(last+1) - e.indexToOffset(end+1)
	}
	return float64(last-end) * e.estimate()
}

// OffsetForIndex returns the scroll offset that brings index to the leading edge.
func (e *Engine[K]) OffsetForIndex(index int) float64 {
	if e.params == nil {
		return 0
	}
	var offset float64
	if index >= 1 {
		offset = e.indexToOffset(index)
	}
	return offset + e.params.HeaderSize
}
