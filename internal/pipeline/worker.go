package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/docsect/internal/parser"
	"github.com/dgallion1/docsect/internal/pathstore"
	"github.com/dgallion1/docsect/internal/toc"
)

// Store is the subset of the pathstore client used to publish sections.
type Store interface {
	PutNode(ctx context.Context, key string, req pathstore.NodeRequest) error
	PutLink(ctx context.Context, req pathstore.LinkRequest) error
}

// Worker processes a single document job.
type Worker struct {
	sectionizer *Sectionizer
	store       Store
	stats       *Stats
	log         *slog.Logger
	parserOpts  parser.Options

	maxConcurrentStore int
}

// NewWorker creates a worker. A nil store disables publishing.
func NewWorker(s *Sectionizer, store Store, stats *Stats, log *slog.Logger, opts parser.Options, maxStore int) *Worker {
	return &Worker{
		sectionizer:        s,
		store:              store,
		stats:              stats,
		log:                log,
		parserOpts:         opts,
		maxConcurrentStore: max(maxStore, 1),
	}
}

// Process runs the full pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	start := time.Now()
	log := w.log.With("job_id", job.ID, "doc_id", job.DocID, "filename", job.Filename)

	sections := 0
	defer func() {
		status := job.Snapshot().Status
		if w.stats != nil {
			w.stats.Record(time.Since(start), status, sections)
		}
		log.Info("job finished", "status", status, "sections", sections, "duration", time.Since(start))
	}()

	// Phase 1: Parse
	job.SetStatus(StatusParsing, "parsing")
	p, err := parser.ForFile(job.Filename, w.parserOpts)
	if err != nil {
		log.Error("unsupported format", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "parsing")
		return
	}

	data := job.FileData()
	doc, err := p.Parse(bytes.NewReader(data), job.Filename)
	if err != nil {
		log.Error("parse failed", "error", err)
		job.AddError(fmt.Sprintf("parse: %s", err))
		job.SetStatus(StatusFailed, "parsing")
		return
	}
	if job.Title != "" {
		doc.Title = job.Title
	} else {
		job.SetTitle(doc.Title)
	}
	job.ContentHash = ContentHashHex(data)

	// Phase 2: Page numbers
	job.SetStatus(StatusStripping, "stripping page numbers")
	pn := w.sectionizer.StripPageNumbers(doc)
	job.SetPages(len(doc.Pages), len(pn.Sequence))
	log.Info("page numbers", "pages", len(doc.Pages), "found", len(pn.Sequence), "stripped", pn.Stripped)

	// Phase 3: Sections
	job.SetStatus(StatusSectioning, "building sections")
	secs, entries := w.sectionizer.Sections(doc)
	sections = len(secs)
	job.SetSections(sections)
	log.Info("sectioned document", "sections", sections, "toc_entries", len(entries))

	// Phase 4: Render
	job.SetStatus(StatusRendering, "rendering")
	full, parts, err := w.sectionizer.Render(doc, secs)
	if err != nil {
		log.Error("render failed", "error", err)
		job.AddError(fmt.Sprintf("render: %s", err))
		job.SetStatus(StatusFailed, "rendering")
		return
	}
	result := &Result{
		DocID:       job.DocID,
		Title:       doc.Title,
		HTML:        full,
		Sections:    parts,
		TOC:         entries,
		PageNumbers: pn.Sequence,
		Stripped:    pn.Stripped,
	}
	job.SetResult(result)

	if w.store == nil {
		job.SetStatus(StatusCompleted, "done")
		return
	}

	// Phase 5: Publish
	job.SetStatus(StatusPublishing, "publishing")
	published, failed := w.publish(ctx, log, job, result)
	switch {
	case failed == 0:
		job.SetStatus(StatusCompleted, "done")
	case published > 0:
		job.SetStatus(StatusPartial, "done")
	default:
		job.SetStatus(StatusFailed, "publishing")
	}
}

// publish writes every section with bounded concurrency, links them in
// reading order and finally writes the document metadata. It returns the
// number of sections written and the number of failed writes.
func (w *Worker) publish(ctx context.Context, log *slog.Logger, job *Job, r *Result) (published, failed int) {
	source := "docsect:" + job.DocID
	keys := make([]string, len(r.Sections))
	for i := range keys {
		keys[i] = pathstore.SectionKey(job.DocID, newSectionID())
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, w.maxConcurrentStore)
	for i, html := range r.Sections {
		sem <- struct{}{}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			err := withRetry(ctx, func() error {
				return w.store.PutNode(ctx, keys[i], pathstore.NodeRequest{
					Value:  sectionValue(i, html, r.TOC),
					Source: source,
				})
			})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Error("store failed", "key", keys[i], "error", err)
				job.AddError(fmt.Sprintf("store %s: %s", keys[i], err))
				keys[i] = ""
				failed++
				return
			}
			job.IncrPublished()
			published++
		}()
	}
	wg.Wait()

	prev := ""
	for _, key := range keys {
		if key == "" {
			continue
		}
		if prev != "" {
			err := withRetry(ctx, func() error {
				return w.store.PutLink(ctx, pathstore.LinkRequest{From: prev, To: key, Weight: 1, Summary: "next"})
			})
			if err != nil {
				log.Warn("link write failed", "from", prev, "to", key, "error", err)
			}
		}
		prev = key
	}

	err := withRetry(ctx, func() error {
		return w.store.PutNode(ctx, pathstore.MetaKey(job.DocID), pathstore.NodeRequest{
			Value: map[string]any{
				"filename":     job.Filename,
				"title":        r.Title,
				"content_hash": job.ContentHash,
				"sections":     published,
				"toc":          r.TOC,
				"page_numbers": r.PageNumbers,
				"created_at":   job.CreatedAt.Format(time.RFC3339),
			},
			Source: source,
		})
	})
	if err != nil {
		log.Error("meta write failed", "error", err)
		job.AddError(fmt.Sprintf("meta: %s", err))
		failed++
	}
	log.Info("publish complete", "published", published, "failed", failed)
	return published, failed
}

// sectionValue is the stored form of one section. The outline entry is
// attached when the section has a heading.
func sectionValue(index int, html string, entries []toc.Entry) map[string]any {
	v := map[string]any{"index": index, "html": html}
	for _, e := range entries {
		if e.Section == index {
			v["toc"] = e
			break
		}
	}
	return v
}
