package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jonboulle/clockwork"

	"github.com/petabencana/cap-feed-service/internal/domain"
	"github.com/petabencana/cap-feed-service/internal/geojson"
	"github.com/petabencana/cap-feed-service/internal/observability"
)

// Renderer turns a GeoJSON document into a CAP Atom feed document. It is
// shared by the Kafka transformer, the HTTP endpoint, and the CLI.
type Renderer struct {
	assembler *domain.Assembler
	metrics   *observability.Metrics
	logger    *slog.Logger
	clock     clockwork.Clock
}

// NewRenderer creates a Renderer. metrics may be nil.
func NewRenderer(asm *domain.Assembler, metrics *observability.Metrics, logger *slog.Logger, clock clockwork.Clock) *Renderer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Renderer{assembler: asm, metrics: metrics, logger: logger, clock: clock}
}

// Render decodes doc and builds the feed for kind. Records that cannot be
// turned into alerts are logged and counted but do not fail the call.
func (r *Renderer) Render(ctx context.Context, kind domain.Kind, doc []byte) (domain.Document, error) {
	start := r.clock.Now()

	records, err := geojson.DecodeBytes(doc)
	if err != nil {
		return domain.Document{}, fmt.Errorf("decode %s features: %w", kind, err)
	}

	asm, err := r.assembler.Assemble(ctx, kind, records)
	if err != nil {
		return domain.Document{}, err
	}

	xml, err := asm.Feed.Render()
	if err != nil {
		return domain.Document{}, fmt.Errorf("render %s feed: %w", kind, err)
	}

	for _, s := range asm.Skipped {
		reason := domain.SkipReason(s.Err)
		r.logger.Debug("record skipped",
			"kind", kind,
			"index", s.Index,
			"id", s.ID,
			"reason", reason,
			"error", s.Err,
		)
		if r.metrics != nil {
			r.metrics.RecordsSkipped.WithLabelValues(string(kind), reason).Inc()
		}
	}

	if r.metrics != nil {
		r.metrics.FeedsRendered.WithLabelValues(string(kind)).Inc()
		r.metrics.FeedEntries.WithLabelValues(string(kind)).Add(float64(len(asm.Feed.Entries)))
		r.metrics.RenderDuration.WithLabelValues(string(kind)).Observe(r.clock.Since(start).Seconds())
	}

	return domain.Document{
		Kind:    kind,
		XML:     []byte(xml),
		Updated: asm.Feed.Updated,
		Entries: len(asm.Feed.Entries),
		Skipped: asm.Skipped,
	}, nil
}
