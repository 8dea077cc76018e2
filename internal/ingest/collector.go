// Package ingest consumes raw page events, assembles them into complete
// documents, runs the cleaning pipeline, and fans the results out to
// storage and the cleaned-pages topic. Repeated-line detection needs the
// whole document, so pages are buffered per source until every page of a
// document has arrived.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ayurcorpus/corpus-cleaning-platform/internal/pipeline"
	apperrors "github.com/ayurcorpus/corpus-cleaning-platform/pkg/errors"
	"github.com/ayurcorpus/corpus-cleaning-platform/pkg/kafka"
	"github.com/ayurcorpus/corpus-cleaning-platform/pkg/logger"
	"github.com/ayurcorpus/corpus-cleaning-platform/pkg/metrics"
)

// RawPageEvent is one OCR page on the raw-pages topic. TotalPages lets the
// collector know when a document is complete.
type RawPageEvent struct {
	Source     string `json:"source"`
	Page       int    `json:"page"`
	Text       string `json:"text"`
	TotalPages int    `json:"total_pages"`
}

// CleanedPageEvent is published to the cleaned-pages topic per page.
type CleanedPageEvent struct {
	Source   string   `json:"source"`
	Page     int      `json:"page"`
	Content  string   `json:"content"`
	Entities []string `json:"entities"`
}

// PageWriter persists a cleaned document.
type PageWriter interface {
	SaveDocument(ctx context.Context, pages []pipeline.CleanedPage) error
}

// EventPublisher publishes cleaned-page events.
type EventPublisher interface {
	PublishBatch(ctx context.Context, events []kafka.Event) error
}

// partial is an in-flight document whose pages are still arriving.
type partial struct {
	pages    map[int]pipeline.Page
	expected int
	lastSeen time.Time
}

// Stats are the collector's processing counters.
type Stats struct {
	DocumentsCompleted int64 `json:"documents_completed"`
	PagesReceived      int64 `json:"pages_received"`
	PagesPublished     int64 `json:"pages_published"`
	PartialsEvicted    int64 `json:"partials_evicted"`
}

// Collector buffers raw pages into documents and drives the pipeline.
type Collector struct {
	pipeline  *pipeline.Pipeline
	writer    PageWriter
	publisher EventPublisher
	metrics   *metrics.Metrics
	logger    *slog.Logger

	mu       sync.Mutex
	partials map[string]*partial

	documents atomic.Int64
	received  atomic.Int64
	published atomic.Int64
	evicted   atomic.Int64
}

// NewCollector builds a Collector. writer, publisher, and m may be nil;
// the corresponding fan-out step is skipped.
func NewCollector(p *pipeline.Pipeline, writer PageWriter, publisher EventPublisher, m *metrics.Metrics) *Collector {
	return &Collector{
		pipeline:  p,
		writer:    writer,
		publisher: publisher,
		metrics:   m,
		logger:    slog.Default().With("component", "collector"),
		partials:  make(map[string]*partial),
	}
}

// Handle is the kafka.MessageHandler for raw page events. A decode failure
// is returned so the consumer logs it without committing; a completed
// document is processed synchronously before the triggering message is
// acknowledged.
func (c *Collector) Handle(ctx context.Context, _ []byte, value []byte) error {
	event, err := kafka.DecodeJSON[RawPageEvent](value)
	if err != nil {
		if c.metrics != nil {
			c.metrics.ConsumerErrorsTotal.Inc()
		}
		return err
	}
	if event.Source == "" || event.TotalPages <= 0 {
		if c.metrics != nil {
			c.metrics.ConsumerErrorsTotal.Inc()
		}
		return apperrors.Local(apperrors.ErrInvalidInput, "raw page event missing source or total_pages: %+v", event)
	}
	c.received.Add(1)

	doc := c.add(event)
	if doc == nil {
		return nil
	}
	return c.process(ctx, event.Source, doc)
}

// add records a page and returns the complete document's pages in order,
// or nil while pages are still missing. Duplicate deliveries of the same
// page overwrite the buffered copy, keeping at-least-once delivery safe.
func (c *Collector) add(event RawPageEvent) []pipeline.Page {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.partials[event.Source]
	if !ok {
		p = &partial{pages: make(map[int]pipeline.Page), expected: event.TotalPages}
		c.partials[event.Source] = p
	}
	p.pages[event.Page] = pipeline.Page{Source: event.Source, Page: event.Page, Text: event.Text}
	p.lastSeen = time.Now()

	if len(p.pages) < p.expected {
		return nil
	}
	delete(c.partials, event.Source)

	ordered := make([]pipeline.Page, 0, len(p.pages))
	for i := 1; i <= p.expected; i++ {
		if page, ok := p.pages[i]; ok {
			ordered = append(ordered, page)
		}
	}
	if len(ordered) < p.expected {
		// Page numbers did not line up with total_pages; fall back to
		// whatever arrived so the document is not lost.
		ordered = ordered[:0]
		for _, page := range p.pages {
			ordered = append(ordered, page)
		}
		sort.Slice(ordered, func(i, j int) bool { return ordered[i].Page < ordered[j].Page })
	}
	return ordered
}

func (c *Collector) process(ctx context.Context, source string, pages []pipeline.Page) error {
	ctx = logger.WithSource(ctx, source)
	cleaned, err := c.pipeline.ProcessDocument(ctx, pages)
	if err != nil {
		return fmt.Errorf("cleaning document %s: %w", source, err)
	}

	if c.writer != nil {
		if err := c.writer.SaveDocument(ctx, cleaned); err != nil {
			return fmt.Errorf("persisting document %s: %w", source, err)
		}
	}

	if c.publisher != nil {
		events := make([]kafka.Event, 0, len(cleaned))
		for _, page := range cleaned {
			events = append(events, kafka.Event{
				Key: fmt.Sprintf("%s:%d", page.Metadata.Source, page.Metadata.Page),
				Value: CleanedPageEvent{
					Source:   page.Metadata.Source,
					Page:     page.Metadata.Page,
					Content:  page.Content,
					Entities: page.Metadata.Entities,
				},
			})
		}
		if err := c.publisher.PublishBatch(ctx, events); err != nil {
			return fmt.Errorf("publishing document %s: %w", source, err)
		}
		c.published.Add(int64(len(events)))
		if c.metrics != nil {
			c.metrics.PagesPublishedTotal.Add(float64(len(events)))
		}
	}

	c.documents.Add(1)
	if c.metrics != nil {
		c.metrics.DocumentsTotal.Inc()
	}
	logger.FromContext(ctx).Info("document completed", "component", "collector", "pages", len(pages))
	return nil
}

// StartJanitor evicts partial documents whose last page arrived more than
// maxAge ago, every interval, until ctx is cancelled. An evicted partial
// is processed with the pages it has rather than discarded.
func (c *Collector) StartJanitor(ctx context.Context, interval, maxAge time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.evictStale(ctx, maxAge)
			}
		}
	}()
}

func (c *Collector) evictStale(ctx context.Context, maxAge time.Duration) {
	cutoff := time.Now().Add(-maxAge)

	c.mu.Lock()
	stale := make(map[string][]pipeline.Page)
	for source, p := range c.partials {
		if p.lastSeen.Before(cutoff) {
			pages := make([]pipeline.Page, 0, len(p.pages))
			for _, page := range p.pages {
				pages = append(pages, page)
			}
			sort.Slice(pages, func(i, j int) bool { return pages[i].Page < pages[j].Page })
			stale[source] = pages
			delete(c.partials, source)
		}
	}
	c.mu.Unlock()

	for source, pages := range stale {
		c.evicted.Add(1)
		c.logger.Warn("processing stale partial document",
			"source", source,
			"pages_received", len(pages),
		)
		if err := c.process(ctx, source, pages); err != nil {
			c.logger.Error("stale partial processing failed", "source", source, "error", err)
		}
	}
}

// Pending returns the number of documents still waiting for pages.
func (c *Collector) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.partials)
}

// Stats returns the collector's counters.
func (c *Collector) Stats() Stats {
	return Stats{
		DocumentsCompleted: c.documents.Load(),
		PagesReceived:      c.received.Load(),
		PagesPublished:     c.published.Load(),
		PartialsEvicted:    c.evicted.Load(),
	}
}
