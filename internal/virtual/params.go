package virtual

// ParamKey names a parameter for UpdateParam.
type ParamKey string

const (
	ParamKeeps        ParamKey = "keeps"
	ParamEstimateSize ParamKey = "estimateSize"
	ParamBuffer       ParamKey = "buffer"
	ParamHeaderSize   ParamKey = "headerSize"
	ParamFooterSize   ParamKey = "footerSize"
	ParamIDs          ParamKey = "ids"
)

// UpdateParam sets one parameter by key and reports whether it was applied.
// Unknown keys and values of the wrong type are ignored. Setting ParamIDs
// evicts measurements for ids no longer present. The window is not
// recomputed; follow with SequenceChanged or SizeParamChanged.
func (e *Engine[K]) UpdateParam(key ParamKey, value any) bool {
	if e.params == nil {
		return false
	}

	if key == ParamIDs {
		ids, ok := value.([]K)
		if !ok {
			return false
		}
		e.SetIDs(ids)
		return true
	}

	n, ok := toFloat(value)
	if !ok {
		return false
	}
	switch key {
	case ParamKeeps:
		e.SetKeeps(int(n))
	case ParamEstimateSize:
		e.params.EstimateSize = n
		e.band.valid = false
	case ParamBuffer:
		e.SetBuffer(int(n))
	case ParamHeaderSize:
		e.SetHeaderSize(n)
	case ParamFooterSize:
		e.SetFooterSize(n)
	default:
		return false
	}
	return true
}

// SetIDs replaces the identifier sequence and drops measurements of removed ids.
func (e *Engine[K]) SetIDs(ids []K) int {
	if e.params == nil {
		return 0
	}
	dropped := e.sizes.track(ids)
	e.params.IDs = ids
	e.band.valid = false
	return dropped
}

func (e *Engine[K]) SetKeeps(keeps int) {
	if e.params == nil {
		return
	}
	e.params.Keeps = max(keeps, 1)
}

func (e *Engine[K]) SetBuffer(buffer int) {
	if e.params == nil {
		return
	}
	e.params.Buffer = max(buffer, 0)
	e.band.valid = false
}

func (e *Engine[K]) SetHeaderSize(size float64) {
	if e.params == nil {
		return
	}
	e.params.HeaderSize = size
}

func (e *Engine[K]) SetFooterSize(size float64) {
	if e.params == nil {
		return
	}
	e.params.FooterSize = size
}

// Keeps returns the configured window length.
func (e *Engine[K]) Keeps() int {
	if e.params == nil {
		return 0
	}
	return e.params.Keeps
}

// FooterSize returns the trailing slot size; the engine itself never offsets by it.
func (e *Engine[K]) FooterSize() float64 {
	if e.params == nil {
		return 0
	}
	return e.params.FooterSize
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
