package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"
)

// Kind selects which alert builder and feed metadata apply.
type Kind string

const (
	KindFloods  Kind = "floods"
	KindReports Kind = "reports"
)

// ParseKind validates a kind name.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindFloods, KindReports:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("unknown feed kind %q", s)
	}
}

// Author is the Atom feed author.
type Author struct {
	Name string
	URI  string
}

// FeedEntry wraps one alert as an Atom entry.
type FeedEntry struct {
	ID      string
	Title   string
	Updated string
	Content Alert
}

// Feed is the Atom envelope. Entries may be empty.
type Feed struct {
	ID      string
	Title   string
	Updated string
	Author  Author
	Entries []FeedEntry
}

// Skip records a feature that produced no entry.
type Skip struct {
	Index int
	ID    string
	Err   error
}

// Assembly is the outcome of building one feed.
type Assembly struct {
	Kind    Kind
	Feed    Feed
	Skipped []Skip
}

// Assembler builds feeds from ordered record batches. It is safe for
// concurrent use; it holds no per-call state.
type Assembler struct {
	settings Settings
	clock    clockwork.Clock
	workers  int
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithClock sets the time source used for feed updated and alert expiry.
func WithClock(c clockwork.Clock) Option {
	return func(a *Assembler) {
		if c != nil {
			a.clock = c
		}
	}
}

// WithWorkers builds records on up to n goroutines. Values below 2 keep the
// build sequential.
func WithWorkers(n int) Option {
	return func(a *Assembler) {
		a.workers = n
	}
}

// NewAssembler creates an Assembler for the given settings.
func NewAssembler(s Settings, opts ...Option) *Assembler {
	a := &Assembler{
		settings: s,
		clock:    clockwork.NewRealClock(),
		workers:  1,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AreaFeed assembles the flood-area feed.
func (a *Assembler) AreaFeed(ctx context.Context, records []FeatureRecord) (Assembly, error) {
	return a.Assemble(ctx, KindFloods, records)
}

// ReportFeed assembles the disaster-report feed.
func (a *Assembler) ReportFeed(ctx context.Context, records []FeatureRecord) (Assembly, error) {
	return a.Assemble(ctx, KindReports, records)
}

// Assemble runs the builder for kind over records and wraps the surviving
// entries, in input order, in a feed. Per-record failures are returned in
// Assembly.Skipped; the only errors returned are an unknown kind or a
// cancelled context.
func (a *Assembler) Assemble(ctx context.Context, kind Kind, records []FeatureRecord) (Assembly, error) {
	if _, err := ParseKind(string(kind)); err != nil {
		return Assembly{}, err
	}
	if err := ctx.Err(); err != nil {
		return Assembly{}, fmt.Errorf("assemble %s feed: %w", kind, err)
	}

	// One clock read per feed so every alert in it shares the same expiry.
	now := a.clock.Now()
	outcomes := make([]outcome, len(records))

	if a.workers < 2 || len(records) < 2 {
		for i := range records {
			outcomes[i] = a.buildEntry(kind, records[i], now)
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(a.workers)
		for i := range records {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				outcomes[i] = a.buildEntry(kind, records[i], now)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return Assembly{}, fmt.Errorf("assemble %s feed: %w", kind, err)
		}
	}

	asm := Assembly{Kind: kind, Feed: a.envelope(kind, now)}
	asm.Feed.Entries = make([]FeedEntry, 0, len(records))
	for i, o := range outcomes {
		if o.err != nil {
			asm.Skipped = append(asm.Skipped, Skip{Index: i, ID: recordID(records[i]), Err: o.err})
			continue
		}
		asm.Feed.Entries = append(asm.Feed.Entries, o.entry)
	}
	return asm, nil
}

type outcome struct {
	entry FeedEntry
	err   error
}

func (a *Assembler) buildEntry(kind Kind, rec FeatureRecord, now time.Time) outcome {
	if rec.DecodeErr != nil {
		return outcome{err: fmt.Errorf("%w: %w", ErrMalformedRecord, rec.DecodeErr)}
	}

	loc := a.settings.Location
	p := rec.Properties

	switch kind {
	case KindFloods:
		alert, err := BuildAreaAlert(rec, a.settings, now)
		if err != nil {
			return outcome{err: err}
		}
		updated := FormatTimestamp(p.LastUpdated, loc)
		return outcome{entry: FeedEntry{
			ID: a.settings.Templates.DataURL + "/floods?parent_name=" + EncodeURI(p.ParentName) +
				"&area_name=" + EncodeURI(p.AreaName) +
				"&time=" + EncodeURI(updated),
			Title:   alert.Identifier + " Flood Affected Area",
			Updated: updated,
			Content: alert,
		}}
	default:
		alert, err := BuildReportAlert(rec, a.settings, now)
		if err != nil {
			return outcome{err: err}
		}
		return outcome{entry: FeedEntry{
			ID:      p.PKey,
			Title:   alert.Identifier + " Disasters in Indonesia",
			Updated: FormatTimestamp(p.CreatedAt, loc),
			Content: alert,
		}}
	}
}

func (a *Assembler) envelope(kind Kind, now time.Time) Feed {
	tpl := a.settings.Templates
	f := Feed{
		Updated: FormatTimestamp(now, a.settings.Location),
		Author:  Author{Name: tpl.AuthorName, URI: tpl.AuthorURI},
	}
	switch kind {
	case KindFloods:
		f.ID = tpl.DataURL + "/floods"
		f.Title = "petabencana.id Flood Affected Areas"
	default:
		f.ID = tpl.DataURL + "/reports"
		f.Title = "Disaster Reports in Indonesia"
	}
	return f
}

func recordID(rec FeatureRecord) string {
	switch {
	case rec.ID != "":
		return rec.ID
	case rec.Properties.PKey != "":
		return rec.Properties.PKey
	default:
		return rec.Properties.ParentName + "." + rec.Properties.AreaName
	}
}
