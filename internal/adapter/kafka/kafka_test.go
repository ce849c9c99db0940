package kafka

import (
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"

	"github.com/petabencana/cap-feed-service/internal/domain"
)

func TestMapMessageToRawEvent(t *testing.T) {
	now := time.Now()
	msg := kafkago.Message{
		Key:       []byte("floods"),
		Value:     []byte(`{"type":"FeatureCollection","features":[]}`),
		Topic:     "flood-features",
		Partition: 2,
		Offset:    42,
		Time:      now,
		Headers: []kafkago.Header{
			{Key: "kind", Value: []byte("floods")},
		},
	}

	raw := mapMessageToRawEvent(msg)

	assert.Equal(t, []byte("floods"), raw.Key)
	assert.JSONEq(t, `{"type":"FeatureCollection","features":[]}`, string(raw.Value))
	assert.Equal(t, "flood-features", raw.Topic)
	assert.Equal(t, 2, raw.Partition)
	assert.Equal(t, int64(42), raw.Offset)
	assert.Equal(t, now, raw.Timestamp)
	assert.Equal(t, "floods", raw.Headers["kind"])
	assert.Nil(t, raw.Commit)
}

func TestToMessage(t *testing.T) {
	event := domain.OutputEvent{
		Key:   []byte("reports"),
		Value: []byte("<feed/>"),
		Headers: map[string]string{
			"skipped":     "0",
			"kind":        "reports",
			"entries":     "3",
			"rendered_at": "2024-05-01T07:00:00+07:00",
		},
	}

	msg := toMessage(event)

	assert.Equal(t, []byte("reports"), msg.Key)
	assert.Equal(t, []byte("<feed/>"), msg.Value)
	assert.Equal(t, []kafkago.Header{
		{Key: "entries", Value: []byte("3")},
		{Key: "kind", Value: []byte("reports")},
		{Key: "rendered_at", Value: []byte("2024-05-01T07:00:00+07:00")},
		{Key: "skipped", Value: []byte("0")},
	}, msg.Headers)
}

func TestToMessage_NoHeaders(t *testing.T) {
	msg := toMessage(domain.OutputEvent{Key: []byte("floods")})
	assert.Empty(t, msg.Headers)
}
