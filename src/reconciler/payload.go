package reconciler

import (
	"bytes"
	"encoding/json"
	"errors"

	"market-monitor/src/helpers"
)

// ErrMalformedPayload is returned when a push is neither an object nor an array.
var ErrMalformedPayload = errors.New("payload is neither a single item nor a sequence")

// -----------------------------------------------------------------------------

// Payload is the normalized shape of a push: Single[T] or Batch[T].
type Payload[T any] interface {
	Items() []T
}

// Single is a push carrying exactly one item.
type Single[T any] struct {
	Item T
}

// Items returns the item as a sequence of length one.
func (s Single[T]) Items() []T { return []T{s.Item} }

// Batch is a push carrying an ordered sequence of items.
type Batch[T any] []T

// Items returns the sequence as is.
func (b Batch[T]) Items() []T { return b }

// -----------------------------------------------------------------------------

// DecodePayload resolves the raw push shape once at ingestion.
func DecodePayload[T any](raw []byte) (Payload[T], error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, helpers.NewPayloadError("empty payload", ErrMalformedPayload)
	}

	switch trimmed[0] {
	case '{':
		var item T
		if err := json.Unmarshal(trimmed, &item); err != nil {
			return nil, helpers.NewPayloadError("cannot decode single item", err)
		}
		return Single[T]{Item: item}, nil
	case '[':
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, helpers.NewPayloadError("cannot decode batch", err)
		}
		return Batch[T](items), nil
	default:
		return nil, helpers.NewPayloadError("unexpected payload shape", ErrMalformedPayload)
	}
}
