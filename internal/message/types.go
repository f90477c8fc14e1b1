package message

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// EventType identifies what a host reported for a list session.
type EventType string

const (
	EventScroll        EventType = "scroll"
	EventResize        EventType = "resize"
	EventSlotResize    EventType = "slot_resize"
	EventSequence      EventType = "sequence"
	EventKeeps         EventType = "keeps"
	EventScrollToIndex EventType = "scroll_to_index"
	EventReset         EventType = "reset"
)

// Slot names a fixed leading or trailing region around the list items.
type Slot string

const (
	SlotHeader Slot = "header"
	SlotFooter Slot = "footer"
)

// ItemKey is an item identifier that may arrive as a JSON string or number.
// Numbers keep their literal text, so 7 and "7" name the same item.
type ItemKey string

func (k *ItemKey) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*k = ItemKey(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("item key must be a string or number: %w", err)
	}
	*k = ItemKey(n.String())
	return nil
}

// Event is one inbound report from a host rendering a list session.
// Only the fields relevant to Type are populated.
type Event struct {
	Type      EventType `json:"type"`
	Session   string    `json:"session"`
	Timestamp time.Time `json:"timestamp"`

	// scroll
	Offset     float64 `json:"offset,omitempty"`
	ClientSize float64 `json:"clientSize,omitempty"`
	ScrollSize float64 `json:"scrollSize,omitempty"`

	// resize, slot_resize
	ItemID ItemKey `json:"id,omitempty"`
	Size   float64 `json:"size,omitempty"`
	Slot   Slot    `json:"slot,omitempty"`

	// sequence
	IDs []ItemKey `json:"ids,omitempty"`

	// keeps
	Keeps int `json:"keeps,omitempty"`

	// scroll_to_index
	Index int `json:"index,omitempty"`
}

// Keys returns the sequence ids as plain strings.
func (e Event) Keys() []string {
	keys := make([]string, len(e.IDs))
	for i, id := range e.IDs {
		keys[i] = string(id)
	}
	return keys
}

// UpdateKind identifies an outbound update.
type UpdateKind string

const (
	UpdateRange  UpdateKind = "range"
	UpdateEdge   UpdateKind = "edge"
	UpdateTarget UpdateKind = "target"
)

// Range is the wire form of a committed window.
type Range struct {
	Start     int     `json:"start"`
	End       int     `json:"end"`
	PadFront  float64 `json:"padFront"`
	PadBehind float64 `json:"padBehind"`
}

// Target tells the host where to scroll for a scroll_to_index request.
type Target struct {
	Index  int     `json:"index"`
	Offset float64 `json:"offset"`
	Bottom bool    `json:"bottom"`
}

// Update is one outbound notification for a list session.
type Update struct {
	Kind      UpdateKind `json:"kind"`
	Session   string     `json:"session"`
	Timestamp time.Time  `json:"timestamp"`
	Range     *Range     `json:"range,omitempty"`
	Edge      string     `json:"edge,omitempty"`
	Target    *Target    `json:"target,omitempty"`
}
