package archive

import (
	"context"
	"fmt"
	"time"

	qstash "github.com/austindbirch/qstash-go"
	"github.com/austindbirch/qstash-go/internal/config"
	"github.com/austindbirch/qstash-go/internal/logging"
	"github.com/austindbirch/qstash-go/internal/metrics"
)

// Source lists delivery events and dead letter messages. *qstash.Client
// satisfies it.
type Source interface {
	ListEvents(ctx context.Context, opts *qstash.ListEventsOptions) (*qstash.EventPage, error)
	ListDLQ(ctx context.Context, opts *qstash.ListDLQOptions) (*qstash.DLQPage, error)
}

// EventStore persists archived events. *Store satisfies it.
type EventStore interface {
	UpsertEvents(ctx context.Context, events []qstash.Event) (int, error)
	UpsertDLQMessages(ctx context.Context, msgs []qstash.DLQMessage) (int, error)
	LatestEventTime(ctx context.Context) (int64, error)
}

// Archiver periodically copies the hosted event log into Postgres. The
// hosted log has bounded retention, the archive does not.
type Archiver struct {
	source     Source
	store      EventStore
	log        *logging.Logger
	interval   time.Duration
	batchSize  int
	includeDLQ bool
}

// NewArchiver returns an Archiver wired to the given source and store
func NewArchiver(source Source, store EventStore, cfg config.Archiver, log *logging.Logger) *Archiver {
	return &Archiver{
		source:     source,
		store:      store,
		log:        log,
		interval:   cfg.PollInterval,
		batchSize:  cfg.BatchSize,
		includeDLQ: cfg.IncludeDLQ,
	}
}

// Run polls the event log until the context is cancelled
func (a *Archiver) Run(ctx context.Context) error {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	if err := a.runOnce(ctx); err != nil {
		a.log.WithContext(ctx).WithError(err).Error("archive pass failed")
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := a.runOnce(ctx); err != nil {
				a.log.WithContext(ctx).WithError(err).Error("archive pass failed")
			}
		}
	}
}

func (a *Archiver) runOnce(ctx context.Context) error {
	since, err := a.store.LatestEventTime(ctx)
	if err != nil {
		return fmt.Errorf("latest event time: %w", err)
	}

	opts := &qstash.ListEventsOptions{
		Order: qstash.OrderEarliestFirst,
		Count: a.batchSize,
	}
	if since > 0 {
		// Resume just past the watermark so restarts do not refetch
		// the whole log.
		opts.FromDate = since + 1
	}

	var newest int64
	total := 0
	for {
		page, err := a.source.ListEvents(ctx, opts)
		if err != nil {
			metrics.RecordPollError("events")
			return fmt.Errorf("list events: %w", err)
		}
		metrics.RecordArchivePage()

		inserted, err := a.store.UpsertEvents(ctx, page.Events)
		if err != nil {
			return fmt.Errorf("upsert events: %w", err)
		}
		total += inserted

		for _, ev := range page.Events {
			metrics.RecordEventArchived(string(ev.State))
			if ev.Time > newest {
				newest = ev.Time
			}
		}

		if page.Cursor == "" {
			break
		}
		opts.Cursor = page.Cursor
	}

	if newest > 0 {
		metrics.UpdateLastEventTime(float64(newest) / 1000)
	}
	if total > 0 {
		a.log.WithContext(ctx).WithField("events", total).Info("archived events")
	}

	if a.includeDLQ {
		if err := a.archiveDLQ(ctx); err != nil {
			metrics.RecordPollError("dlq")
			a.log.WithContext(ctx).WithError(err).Error("dlq archive pass failed")
		}
	}
	return nil
}

func (a *Archiver) archiveDLQ(ctx context.Context) error {
	opts := &qstash.ListDLQOptions{Count: a.batchSize}
	total := 0
	for {
		page, err := a.source.ListDLQ(ctx, opts)
		if err != nil {
			return fmt.Errorf("list dlq: %w", err)
		}

		inserted, err := a.store.UpsertDLQMessages(ctx, page.Messages)
		if err != nil {
			return fmt.Errorf("upsert dlq messages: %w", err)
		}
		total += inserted
		metrics.DLQArchivedTotal.Add(float64(inserted))

		if page.Cursor == "" {
			break
		}
		opts.Cursor = page.Cursor
	}

	if total > 0 {
		a.log.WithContext(ctx).WithField("messages", total).Info("archived dead letter messages")
	}
	return nil
}
