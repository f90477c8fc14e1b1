package message

import "errors"

var (
	ErrJSONUnmarshalFailed = errors.New("failed to unmarshal JSON message")
	ErrJSONMarshalFailed   = errors.New("failed to marshal JSON message")
	ErrMissingSession      = errors.New("event has no session")
	ErrUnknownEventType    = errors.New("unknown event type")
	ErrMissingItemID       = errors.New("resize event has no item id")
	ErrInvalidSize         = errors.New("size must be a finite, non-negative number")
	ErrUnknownSlot         = errors.New("slot must be header or footer")
	ErrInvalidIndex        = errors.New("index cannot be negative")
	ErrInvalidKeeps        = errors.New("keeps must be positive")
)
