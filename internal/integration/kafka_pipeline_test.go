//go:build integration

package integration_test

import (
	"context"
	"fmt"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/mmcdole/gofeed"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petabencana/cap-feed-service/internal/adapter/kafka"
	"github.com/petabencana/cap-feed-service/internal/config"
	"github.com/petabencana/cap-feed-service/internal/domain"
	"github.com/petabencana/cap-feed-service/internal/observability"
	"github.com/petabencana/cap-feed-service/internal/pipeline"
)

const (
	testSourceTopic = "test-features"
	testSinkTopic   = "test-feeds"
)

const floodDoc = `{"type":"FeatureCollection","features":[
  {"type":"Feature","geometry":{"type":"Polygon","coordinates":[[[106,-6],[107,-6],[107,-5],[106,-6]]]},
   "properties":{"area_name":"Menteng","parent_name":"Jakarta Pusat","state":3,"last_updated":"2023-01-01T00:00:00Z"}},
  {"type":"Feature","geometry":{"type":"Polygon","coordinates":[[[106,-6],[107,-6],[107,-5],[106,-6]]]},
   "properties":{"area_name":"Gambir","parent_name":"Jakarta Pusat","state":4,"last_updated":"2023-01-01T00:00:00Z"}}
]}`

const reportDoc = `{"type":"FeatureCollection","features":[
  {"type":"Feature","geometry":{"type":"Point","coordinates":[106.8,-6.2]},
   "properties":{"pkey":"101","created_at":"2023-03-04T05:06:07Z","source":"grasp",
                 "disaster_type":"flood","report_data":{"flood_depth":80},"text":"banjir"}}
]}`

// feedMessage is a rendered feed read back from the sink topic.
type feedMessage struct {
	Key     string
	Headers map[string]string
	Feed    *gofeed.Feed
}

func readFeed(ctx context.Context, t *testing.T, consumer *kafkago.Reader) feedMessage {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from sink topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	feed, err := gofeed.NewParser().ParseString(string(msg.Value))
	require.NoError(t, err, "parse sink feed")

	return feedMessage{Key: string(msg.Key), Headers: headers, Feed: feed}
}

func newConfig(broker, group string) *config.Config {
	return &config.Config{
		KafkaBrokers:       []string{broker},
		KafkaSourceTopic:   testSourceTopic,
		KafkaSinkTopic:     testSinkTopic,
		KafkaGroupID:       fmt.Sprintf("%s-%d", group, time.Now().UnixNano()),
		BatchFlushInterval: 5 * time.Second,
	}
}

func newTransformer(t *testing.T) *pipeline.FeedTransformer {
	t.Helper()
	s, err := domain.NewSettings("Asia/Jakarta", 6*time.Hour, domain.DefaultTemplates())
	require.NoError(t, err)
	renderer := pipeline.NewRenderer(domain.NewAssembler(s), nil, discardLogger(), nil)
	return pipeline.NewTransformer(renderer)
}

func sinkConsumer(t *testing.T, broker string) *kafkago.Reader {
	t.Helper()
	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testSinkTopic,
		GroupID:     fmt.Sprintf("test-sink-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })
	return consumer
}

// TestKafkaReaderWriter verifies the adapter layer round-trips a document
// through the source and sink topics.
func TestKafkaReaderWriter(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)
	cfg := newConfig(broker, "test-reader")

	producer := &kafkago.Writer{Addr: kafkago.TCP(broker), Topic: testSourceTopic}
	t.Cleanup(func() { _ = producer.Close() })
	require.NoError(t, producer.WriteMessages(ctx, kafkago.Message{
		Key:     []byte("floods"),
		Value:   []byte(floodDoc),
		Headers: []kafkago.Header{{Key: pipeline.KindHeader, Value: []byte("floods")}},
	}))

	// Retry because the consumer group may need time to rebalance before
	// partitions are assigned.
	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })

	var batch []domain.RawEvent
	for {
		var err error
		batch, err = reader.ExtractBatch(ctx, 1)
		require.NoError(t, err)
		if len(batch) > 0 {
			break
		}
		if ctx.Err() != nil {
			t.Fatal("timed out waiting for message from source topic")
		}
	}
	require.Len(t, batch, 1)
	raw := batch[0]
	assert.Equal(t, []byte(floodDoc), raw.Value)
	assert.Equal(t, "floods", raw.Headers[pipeline.KindHeader])
	require.NotNil(t, raw.Commit)
	require.NoError(t, raw.Commit(ctx))

	out, err := newTransformer(t).Transform(ctx, raw)
	require.NoError(t, err)

	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })
	require.NoError(t, writer.LoadBatch(ctx, []domain.OutputEvent{out}))

	fm := readFeed(ctx, t, sinkConsumer(t, broker))
	assert.Equal(t, "floods", fm.Key)
	assert.Equal(t, "2", fm.Headers["entries"])
	assert.Equal(t, "0", fm.Headers["skipped"])
	_, err = time.Parse(time.RFC3339, fm.Headers["rendered_at"])
	assert.NoError(t, err, "rendered_at should be RFC3339")
	assert.Equal(t, "petabencana.id Flood Affected Areas", fm.Feed.Title)
	assert.Len(t, fm.Feed.Items, 2)
}

// TestPipelineEndToEnd wires Reader, FeedTransformer, and Writer against a
// real broker and checks both feed kinds come out.
func TestPipelineEndToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)
	cfg := newConfig(broker, "test-pipeline")

	producer := &kafkago.Writer{Addr: kafkago.TCP(broker), Topic: testSourceTopic}
	t.Cleanup(func() { _ = producer.Close() })
	require.NoError(t, producer.WriteMessages(ctx,
		kafkago.Message{Key: []byte("floods"), Value: []byte(floodDoc)},
		kafkago.Message{Key: []byte("reports"), Value: []byte(reportDoc)},
	))

	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	p := pipeline.New(reader, newTransformer(t), writer, discardLogger(), observability.NewMetricsForTesting(), 50)

	pipelineCtx, pipelineCancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(pipelineCtx) }()

	consumer := sinkConsumer(t, broker)
	byKind := map[string]feedMessage{}
	for len(byKind) < 2 {
		fm := readFeed(ctx, t, consumer)
		byKind[fm.Key] = fm
	}

	pipelineCancel()
	require.NoError(t, <-errCh)
	assert.True(t, p.Ready())

	require.Contains(t, byKind, "floods")
	require.Contains(t, byKind, "reports")
	assert.Len(t, byKind["floods"].Feed.Items, 2)
	require.Len(t, byKind["reports"].Feed.Items, 1)
	assert.Equal(t, "101", byKind["reports"].Feed.Items[0].GUID)
}

// TestPipelineTransformError verifies a document that cannot be decoded is
// skipped and the pipeline keeps going.
func TestPipelineTransformError(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)
	cfg := newConfig(broker, "test-poison")

	producer := &kafkago.Writer{Addr: kafkago.TCP(broker), Topic: testSourceTopic}
	t.Cleanup(func() { _ = producer.Close() })
	require.NoError(t, producer.WriteMessages(ctx,
		kafkago.Message{Key: []byte("floods"), Value: []byte("not-json{{{")},
		kafkago.Message{Key: []byte("floods"), Value: []byte(floodDoc)},
	))

	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	p := pipeline.New(reader, newTransformer(t), writer, discardLogger(), observability.NewMetricsForTesting(), 50)

	pipelineCtx, pipelineCancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(pipelineCtx) }()

	consumer := sinkConsumer(t, broker)
	fm := readFeed(ctx, t, consumer)
	assert.Equal(t, "2", fm.Headers["entries"])

	readCtx, readCancel := context.WithTimeout(ctx, 5*time.Second)
	_, err := consumer.ReadMessage(readCtx)
	readCancel()
	assert.Error(t, err, "expected no second message on sink topic")

	pipelineCancel()
	require.NoError(t, <-errCh)
}
