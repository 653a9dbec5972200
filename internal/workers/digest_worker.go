package workers

import (
	"context"
	"time"
)

// DigestRunner is the digest pipeline the worker drives.
type DigestRunner interface {
	Run(ctx context.Context) error
}

// DigestWorker triggers a full digest run on a fixed interval.
type DigestWorker struct {
	*BaseWorker
	runner DigestRunner
}

// NewDigestWorker creates the digest worker.
func NewDigestWorker(runner DigestRunner, interval time.Duration) *DigestWorker {
	return &DigestWorker{
		BaseWorker: NewBaseWorker("digest", interval, true),
		runner:     runner,
	}
}

// Run executes one digest cycle.
func (w *DigestWorker) Run(ctx context.Context) error {
	if err := w.runner.Run(ctx); err != nil {
		w.RecordError(err)
		return err
	}
	w.RecordRun()
	return nil
}
