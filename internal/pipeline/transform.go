package pipeline

import (
	"context"
	"fmt"
	"strconv"

	"github.com/petabencana/cap-feed-service/internal/domain"
)

// KindHeader names the message header that selects the feed kind. Messages
// without it fall back to their key.
const KindHeader = "kind"

// FeedTransformer implements Transformer by rendering each message's GeoJSON
// payload into a feed document.
type FeedTransformer struct {
	renderer *Renderer
}

// NewTransformer creates a FeedTransformer backed by r.
func NewTransformer(r *Renderer) *FeedTransformer {
	return &FeedTransformer{renderer: r}
}

func (t *FeedTransformer) Transform(ctx context.Context, raw domain.RawEvent) (domain.OutputEvent, error) {
	name := raw.Headers[KindHeader]
	if name == "" {
		name = string(raw.Key)
	}
	kind, err := domain.ParseKind(name)
	if err != nil {
		return domain.OutputEvent{}, err
	}

	doc, err := t.renderer.Render(ctx, kind, raw.Value)
	if err != nil {
		return domain.OutputEvent{}, fmt.Errorf("offset %d: %w", raw.Offset, err)
	}

	return domain.OutputEvent{
		Key:   []byte(kind),
		Value: doc.XML,
		Headers: map[string]string{
			KindHeader:     string(kind),
			"content_type": "application/atom+xml",
			"entries":      strconv.Itoa(doc.Entries),
			"skipped":      strconv.Itoa(len(doc.Skipped)),
			"rendered_at":  doc.Updated,
		},
	}, nil
}
