package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dgallion1/docsect/internal/parser"
	"github.com/dgallion1/docsect/internal/pathstore"
	"github.com/dgallion1/docsect/internal/typography"
)

const guideHTML = `<html><head><title>Guide</title></head><body><div>` +
	`<section><h1>One</h1><p>a "b"</p></section>` +
	`<section><h1>Two</h1><p>c</p></section>` +
	`</div></body></html>`

type fakeStore struct {
	mu    sync.Mutex
	nodes map[string]pathstore.NodeRequest
	links []pathstore.LinkRequest
	calls map[string]int
	// failFirst makes the first write to every key fail with a retryable error.
	failFirst bool
	// failAll makes every node write fail permanently.
	failAll bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{nodes: map[string]pathstore.NodeRequest{}, calls: map[string]int{}}
}

func (f *fakeStore) PutNode(ctx context.Context, key string, req pathstore.NodeRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[key]++
	if f.failAll {
		return errors.New("put node: status 400: bad request")
	}
	if f.failFirst && f.calls[key] == 1 {
		return &pathstore.RetryableError{StatusCode: 503, Message: "busy"}
	}
	f.nodes[key] = req
	return nil
}

func (f *fakeStore) PutLink(ctx context.Context, req pathstore.LinkRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.links = append(f.links, req)
	return nil
}

func noBackoff(t *testing.T) {
	t.Helper()
	backoffFunc = func(int) time.Duration { return 0 }
	t.Cleanup(func() { backoffFunc = Backoff })
}

func newTestWorker(t *testing.T, store Store) *Worker {
	t.Helper()
	s, err := NewSectionizer(typography.DefaultConfig("en"), true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return NewWorker(s, store, NewStats(time.Hour), slog.New(slog.DiscardHandler), parser.Options{}, 2)
}

func TestWorker_ProcessWithoutStore(t *testing.T) {
	w := newTestWorker(t, nil)
	job := NewJob("guide.html", "", []byte(guideHTML))
	w.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusCompleted {
		t.Fatalf("expected completed, got %q (%v)", snap.Status, snap.Progress.Errors)
	}
	if snap.Title != "Guide" {
		t.Errorf("expected parsed title, got %q", snap.Title)
	}
	r := job.Result()
	if r == nil {
		t.Fatal("expected a result")
	}
	if len(r.Sections) != 2 || len(r.TOC) != 2 {
		t.Fatalf("expected 2 sections and 2 outline entries, got %d and %d", len(r.Sections), len(r.TOC))
	}
	if r.TOC[1].Title != "Two" || r.TOC[1].Anchor != "sec-2" {
		t.Errorf("unexpected outline entry %+v", r.TOC[1])
	}
	if !strings.Contains(r.HTML, "“b”") {
		t.Errorf("expected typography in output, got %s", r.HTML)
	}
	if !strings.HasPrefix(r.HTML, "<!DOCTYPE html><html><head><title>Guide</title></head><body>") {
		t.Errorf("unexpected document prefix: %s", r.HTML)
	}
	if w.stats.Snapshot().Completed != 1 {
		t.Error("expected the job to be recorded in stats")
	}
}

func TestWorker_PublishRetries(t *testing.T) {
	noBackoff(t)
	store := newFakeStore()
	store.failFirst = true
	w := newTestWorker(t, store)
	job := NewJob("guide.html", "My Guide", []byte(guideHTML))
	w.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusCompleted {
		t.Fatalf("expected completed, got %q (%v)", snap.Status, snap.Progress.Errors)
	}
	if snap.Progress.SectionsPublished != 2 {
		t.Errorf("expected 2 published sections, got %d", snap.Progress.SectionsPublished)
	}
	if len(store.nodes) != 3 {
		t.Errorf("expected 2 sections and meta, got %d nodes", len(store.nodes))
	}
	meta, ok := store.nodes[pathstore.MetaKey(job.DocID)]
	if !ok {
		t.Fatal("expected document metadata")
	}
	if title := meta.Value.(map[string]any)["title"]; title != "My Guide" {
		t.Errorf("expected job title to win, got %v", title)
	}
	if len(store.links) != 1 || store.links[0].From >= store.links[0].To {
		t.Errorf("expected one link in reading order, got %+v", store.links)
	}
	for key := range store.nodes {
		if pathstore.DocIDFromKey(key) != job.DocID {
			t.Errorf("unexpected key %q", key)
		}
	}
}

func TestWorker_PublishFailure(t *testing.T) {
	store := newFakeStore()
	store.failAll = true
	w := newTestWorker(t, store)
	job := NewJob("guide.html", "", []byte(guideHTML))
	w.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusFailed {
		t.Fatalf("expected failed, got %q", snap.Status)
	}
	if len(snap.Progress.Errors) != 3 {
		t.Errorf("expected 3 errors, got %v", snap.Progress.Errors)
	}
	for key, n := range store.calls {
		if n != 1 {
			t.Errorf("expected no retries for %q, got %d calls", key, n)
		}
	}
}

func TestWorker_UnsupportedFormat(t *testing.T) {
	w := newTestWorker(t, nil)
	job := NewJob("slides.pptx", "", []byte("x"))
	w.Process(context.Background(), job)
	if snap := job.Snapshot(); snap.Status != StatusFailed || snap.Phase != "parsing" {
		t.Errorf("expected failure while parsing, got %q/%q", snap.Status, snap.Phase)
	}
}

func TestWorker_StripsPageNumbers(t *testing.T) {
	w := newTestWorker(t, nil)
	text := "Chapter text\n7\fMore text\n8\fEnd\n9"
	job := NewJob("book.txt", "", []byte(text))
	w.Process(context.Background(), job)

	r := job.Result()
	if r == nil {
		t.Fatalf("expected a result, errors: %v", job.Snapshot().Progress.Errors)
	}
	if len(r.PageNumbers) != 3 || r.PageNumbers[0] != 7 || r.PageNumbers[2] != 9 {
		t.Errorf("expected page numbers [7 8 9], got %v", r.PageNumbers)
	}
	if r.Stripped != 3 {
		t.Errorf("expected 3 stripped, got %d", r.Stripped)
	}
	if strings.Contains(r.HTML, "<p>8</p>") {
		t.Errorf("expected page number paragraphs to be blanked, got %s", r.HTML)
	}
}

func TestWithRetry(t *testing.T) {
	noBackoff(t)
	calls := 0
	err := withRetry(context.Background(), func() error {
		calls++
		return &pathstore.RetryableError{StatusCode: 502}
	})
	if err == nil || calls != MaxRetries {
		t.Errorf("expected %d attempts and an error, got %d and %v", MaxRetries, calls, err)
	}

	calls = 0
	err = withRetry(context.Background(), func() error {
		calls++
		return errors.New("permanent")
	})
	if err == nil || calls != 1 {
		t.Errorf("expected a single attempt, got %d", calls)
	}
}
