package virtual

import "math"

// indexToOffset returns the summed size of every item before index, header excluded.
// Unmeasured items count as estimate().
func (e *Engine[K]) indexToOffset(index int) float64 {
	if index <= 0 {
		return 0
	}
	e.lastCalcIndex = min(max(e.lastCalcIndex, index-1), e.lastIndex())
	if e.sizes.mode == ModeFixed {
		return float64(index) * e.sizes.fixed
	}

	est := e.estimate()
	ids := e.params.IDs
	var offset float64
	for i := 0; i < index; i++ {
		if i < len(ids) {
			if size, ok := e.sizes.lookup(ids[i]); ok {
				offset += size
				continue
			}
		}
		offset += est
	}
	return offset
}

// offsetToIndex returns the greatest index whose offset does not exceed offset.
// offset must already have the header size subtracted.
func (e *Engine[K]) offsetToIndex(offset float64) int {
	if offset <= 0 {
		return 0
	}

	if e.sizes.mode == ModeFixed {
		if e.sizes.fixed <= 0 {
			return e.clampIndex(e.lastIndex())
		}
		return e.clampIndex(int(math.Floor(offset / e.sizes.fixed)))
	}

	low, high := 0, e.total()
	for low <= high {
		mid := low + (high-low)/2
		midOffset := e.indexToOffset(mid)
		switch {
		case midOffset == offset:
			return e.clampIndex(mid)
		case midOffset < offset:
			low = mid + 1
		default:
			high = mid - 1
		}
	}

	if low > 0 {
		low--
	}
	return e.clampIndex(low)
}
