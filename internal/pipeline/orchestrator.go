package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/docsect/internal/config"
	"github.com/dgallion1/docsect/internal/parser"
	"github.com/dgallion1/docsect/internal/pathstore"
)

// Orchestrator manages the sectioning pipeline.
type Orchestrator struct {
	jobs        *JobStore
	queue       chan *Job
	sectionizer *Sectionizer
	ps          *pathstore.Client
	store       Store
	stats       *Stats
	log         *slog.Logger
	cfg         config.Config

	cancel   context.CancelFunc
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewOrchestrator creates the pipeline. ps may be nil, in which case
// sections are not published.
func NewOrchestrator(cfg config.Config, ps *pathstore.Client, log *slog.Logger) (*Orchestrator, error) {
	s, err := NewSectionizer(cfg.Typography, cfg.TOCAnchors)
	if err != nil {
		return nil, err
	}
	o := &Orchestrator{
		jobs:        NewJobStore(cfg.JobTTL),
		queue:       make(chan *Job, cfg.MaxQueueSize),
		sectionizer: s,
		ps:          ps,
		stats:       NewStats(cfg.StatsWindow),
		log:         log,
		cfg:         cfg,
	}
	if ps != nil {
		o.store = ps
	}
	return o, nil
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	opts := parser.Options{FallbackPdftotext: o.cfg.PDFFallbackPdftotext}
	for range o.cfg.WorkerCount {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			w := NewWorker(o.sectionizer, o.store, o.stats, o.log, opts, o.cfg.MaxConcurrentStore)
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					w.Process(workerCtx, job)
				}
			}
		}()
	}

	// Start job store cleanup.
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
}

// Stop gracefully shuts down the pipeline.
func (o *Orchestrator) Stop() {
	o.stopOnce.Do(func() {
		if o.cancel != nil {
			o.cancel()
		}
		close(o.queue)
		o.wg.Wait()
	})
}

// Submit queues a new job for processing.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return nil
	default:
		job.AddError("queue full")
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("job queue is full (%d)", o.cfg.MaxQueueSize)
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// Sectionizer returns the shared sectionizer for synchronous requests.
func (o *Orchestrator) Sectionizer() *Sectionizer {
	return o.sectionizer
}

// Stats returns the finished job statistics.
func (o *Orchestrator) Stats() *Stats {
	return o.stats
}

// PathstoreClient returns the pathstore client for direct use by API
// handlers, or nil when publishing is disabled.
func (o *Orchestrator) PathstoreClient() *pathstore.Client {
	return o.ps
}
