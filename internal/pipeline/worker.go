package pipeline

import (
	"context"
	"log/slog"
	"time"
)

// Worker runs queued freeze jobs one at a time.
type Worker struct {
	freezer *Freezer
	stats   *Stats
	log     *slog.Logger
}

func NewWorker(freezer *Freezer, stats *Stats, log *slog.Logger) *Worker {
	return &Worker{
		freezer: freezer,
		stats:   stats,
		log:     log,
	}
}

// Process freezes and saves the job's document, tracking each phase on the
// job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "path", job.Path, "mode", job.Mode)
	log.Info("freeze job started")

	start := time.Now()
	phase := string(StatusQueued)
	res, err := w.freezer.Run(ctx, job.Path, job.Mode, func(s JobStatus) {
		phase = string(s)
		job.SetStatus(s, phase)
	})
	w.stats.Record(time.Since(start), err != nil)

	if err != nil {
		log.Error("freeze job failed", "phase", phase, "error", err)
		job.Fail(phase, err)
		return
	}
	log.Info("freeze job completed", "output", res.Output)
	job.Complete(res.Output)
}
