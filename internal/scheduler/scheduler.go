package scheduler

import "context"

// Job is a named task bound to a cron spec. Specs are evaluated in the
// bot's configured timezone.
type Job struct {
	Name string
	Spec string
	Run  func(ctx context.Context)
}

type Scheduler interface {
	// Schedule registers a job. Jobs registered after Start still run.
	Schedule(job Job) error
	Start()
	// Stop waits for running jobs to finish.
	Stop(ctx context.Context) error
}
