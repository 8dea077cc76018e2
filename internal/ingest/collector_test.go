package ingest

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/ayurcorpus/corpus-cleaning-platform/internal/canonical"
	"github.com/ayurcorpus/corpus-cleaning-platform/internal/pipeline"
	"github.com/ayurcorpus/corpus-cleaning-platform/internal/spell"
	"github.com/ayurcorpus/corpus-cleaning-platform/internal/vocab"
	"github.com/ayurcorpus/corpus-cleaning-platform/pkg/kafka"
)

type fakeWriter struct {
	mu   sync.Mutex
	docs [][]pipeline.CleanedPage
}

func (w *fakeWriter) SaveDocument(ctx context.Context, pages []pipeline.CleanedPage) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.docs = append(w.docs, pages)
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []kafka.Event
}

func (p *fakePublisher) PublishBatch(ctx context.Context, events []kafka.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func testCollector() (*Collector, *fakeWriter, *fakePublisher) {
	store := vocab.NewStore()
	store.Add("pitta", 420)
	store.Add("dosha", 610)
	dict := canonical.FromMap(map[string][]string{"pitta": {"pltta"}})
	corrector := spell.NewCorrector(store, spell.Options{})
	pipe := pipeline.New(pipeline.Options{Workers: 2}, corrector, dict, nil, nil)

	writer := &fakeWriter{}
	publisher := &fakePublisher{}
	return NewCollector(pipe, writer, publisher, nil), writer, publisher
}

func rawEvent(t *testing.T, source string, page, total int, text string) []byte {
	t.Helper()
	data, err := json.Marshal(RawPageEvent{Source: source, Page: page, Text: text, TotalPages: total})
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestCollectorAssemblesDocument(t *testing.T) {
	c, writer, publisher := testCollector()
	ctx := context.Background()

	// Pages arrive out of order; nothing happens until the set completes.
	texts := map[int]string{
		1: "The pltta dosha governs digestion in the first chapter here.",
		2: "The second chapter continues the discussion of treatment forms.",
		3: "The third chapter concludes with seasonal recommendations given.",
	}
	for _, page := range []int{2, 1} {
		if err := c.Handle(ctx, nil, rawEvent(t, "doc-1", page, 3, texts[page])); err != nil {
			t.Fatal(err)
		}
	}
	if len(writer.docs) != 0 {
		t.Fatal("document processed before all pages arrived")
	}
	if c.Pending() != 1 {
		t.Errorf("Pending = %d, want 1", c.Pending())
	}

	if err := c.Handle(ctx, nil, rawEvent(t, "doc-1", 3, 3, texts[3])); err != nil {
		t.Fatal(err)
	}

	if len(writer.docs) != 1 {
		t.Fatalf("documents written = %d, want 1", len(writer.docs))
	}
	doc := writer.docs[0]
	if len(doc) != 3 {
		t.Fatalf("pages written = %d, want 3", len(doc))
	}
	for i, page := range doc {
		if page.Metadata.Page != i+1 {
			t.Errorf("page order broken: index %d has page %d", i, page.Metadata.Page)
		}
	}
	if len(publisher.events) != 3 {
		t.Errorf("events published = %d, want 3", len(publisher.events))
	}
	if c.Pending() != 0 {
		t.Errorf("Pending after completion = %d, want 0", c.Pending())
	}
	if c.Stats().DocumentsCompleted != 1 {
		t.Errorf("DocumentsCompleted = %d, want 1", c.Stats().DocumentsCompleted)
	}
}

func TestCollectorDuplicateDelivery(t *testing.T) {
	c, writer, _ := testCollector()
	ctx := context.Background()

	text := "The pltta dosha governs digestion throughout the entire text."
	// At-least-once delivery: the same page twice must not complete a
	// two-page document.
	c.Handle(ctx, nil, rawEvent(t, "doc-2", 1, 2, text))
	c.Handle(ctx, nil, rawEvent(t, "doc-2", 1, 2, text))
	if len(writer.docs) != 0 {
		t.Fatal("duplicate page completed the document")
	}
	c.Handle(ctx, nil, rawEvent(t, "doc-2", 2, 2, text+" again"))
	if len(writer.docs) != 1 {
		t.Fatalf("documents written = %d, want 1", len(writer.docs))
	}
}

func TestCollectorRejectsMalformedEvents(t *testing.T) {
	c, _, _ := testCollector()
	ctx := context.Background()

	if err := c.Handle(ctx, nil, []byte("not json")); err == nil {
		t.Error("expected error for undecodable event")
	}
	if err := c.Handle(ctx, nil, rawEvent(t, "", 1, 1, "text")); err == nil {
		t.Error("expected error for event without source")
	}
	if err := c.Handle(ctx, nil, rawEvent(t, "doc", 1, 0, "text")); err == nil {
		t.Error("expected error for event without total_pages")
	}
}

func TestCollectorEvictStale(t *testing.T) {
	c, writer, _ := testCollector()
	ctx := context.Background()

	c.Handle(ctx, nil, rawEvent(t, "doc-3", 1, 5, "The pltta dosha governs digestion in this lonely page here."))
	if c.Pending() != 1 {
		t.Fatalf("Pending = %d, want 1", c.Pending())
	}

	// A negative maxAge puts the cutoff in the future, so the partial is
	// unconditionally stale.
	c.evictStale(ctx, -time.Second)

	if c.Pending() != 0 {
		t.Errorf("Pending after eviction = %d, want 0", c.Pending())
	}
	if len(writer.docs) != 1 {
		t.Fatalf("stale partial not processed: %d docs", len(writer.docs))
	}
	if got := c.Stats().PartialsEvicted; got != 1 {
		t.Errorf("PartialsEvicted = %d, want 1", got)
	}
}
