package domain

import (
	"context"
	"time"
)

// RawEvent is one inbound message carrying a GeoJSON document.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time

	// Commit acknowledges the message; nil when the source has no offsets.
	Commit func(ctx context.Context) error
}

// OutputEvent is one rendered feed document ready to publish.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}
