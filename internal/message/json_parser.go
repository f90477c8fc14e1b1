package message

import (
	"encoding/json"
	"fmt"
	"math"
	"unicode/utf8"
)

// ParseEvent parses and validates one inbound event.
// It returns ErrJSONUnmarshalFailed (wrapping the original error) if unmarshalling fails.
func ParseEvent(data []byte) (Event, error) {
	var evt Event
	if err := json.Unmarshal(data, &evt); err != nil {
		return Event{}, fmt.Errorf("%w: %w", ErrJSONUnmarshalFailed, err)
	}
	if err := validateEvent(evt); err != nil {
		return Event{}, err
	}
	return evt, nil
}

// EncodeUpdate serializes an outbound update.
func EncodeUpdate(u Update) ([]byte, error) {
	data, err := json.Marshal(u)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrJSONMarshalFailed, err)
	}
	return data, nil
}

func validateEvent(evt Event) error {
	if evt.Session == "" {
		return ErrMissingSession
	}

	switch evt.Type {
	case EventScroll, EventSequence, EventReset:
		return nil
	case EventResize:
		if evt.ItemID == "" {
			return ErrMissingItemID
		}
		return validSize(evt.Size)
	case EventSlotResize:
		if evt.Slot != SlotHeader && evt.Slot != SlotFooter {
			return fmt.Errorf("%w: %q", ErrUnknownSlot, evt.Slot)
		}
		return validSize(evt.Size)
	case EventKeeps:
		if evt.Keeps <= 0 {
			return ErrInvalidKeeps
		}
		return nil
	case EventScrollToIndex:
		if evt.Index < 0 {
			return ErrInvalidIndex
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEventType, evt.Type)
	}
}

// validSize rejects what the engine leaves undefined.
func validSize(size float64) error {
	if size < 0 || math.IsNaN(size) || math.IsInf(size, 0) {
		return ErrInvalidSize
	}
	return nil
}

// Snippet returns a printable prefix of a raw payload, useful for logging.
func Snippet(data []byte, maxLength int) string {
	if maxLength <= 0 {
		return "..."
	}
	if len(data) > maxLength {
		cut := maxLength
		for cut > 0 && !utf8.RuneStart(data[cut]) {
			cut--
		}
		return string(data[:cut]) + "..."
	}
	return string(data)
}
