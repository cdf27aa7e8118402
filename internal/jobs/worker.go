package jobs

import (
	"context"
	"log"
	"time"
)

// Processor runs one background pass.
type Processor interface {
	ProcessJobs(ctx context.Context) error
}

// Worker drives a Processor on a fixed interval. One pass runs immediately
// on Start so a fresh deployment indexes without waiting a full interval.
type Worker struct {
	processor Processor
	interval  time.Duration
	stopChan  chan struct{}
	doneChan  chan struct{}
}

// NewWorker creates a new Worker instance
func NewWorker(processor Processor, interval time.Duration) *Worker {
	return &Worker{
		processor: processor,
		interval:  interval,
		stopChan:  make(chan struct{}),
		doneChan:  make(chan struct{}),
	}
}

// Start runs the worker loop. It blocks until Stop is called or ctx is
// cancelled; callers run it in a goroutine.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	defer close(w.doneChan)

	log.Printf("Background worker started with interval: %v", w.interval)

	w.runPass(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Println("Background worker stopped: context cancelled")
			return
		case <-w.stopChan:
			log.Println("Background worker stopped: stop signal received")
			return
		case <-ticker.C:
			w.runPass(ctx)
		}
	}
}

func (w *Worker) runPass(ctx context.Context) {
	if err := w.processor.ProcessJobs(ctx); err != nil {
		log.Printf("Background pass failed: %v", err)
	}
}

// Stop gracefully stops the worker
func (w *Worker) Stop() {
	close(w.stopChan)
	<-w.doneChan
	log.Println("Background worker shutdown complete")
}
