package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	schedulerpkg "github.com/ferret9/worklogbot/internal/scheduler"
)

type CronScheduler struct {
	cron *cron.Cron
}

func NewCronScheduler(loc *time.Location) schedulerpkg.Scheduler {
	return &CronScheduler{
		cron: cron.New(cron.WithLocation(loc)),
	}
}

func (s *CronScheduler) Schedule(job schedulerpkg.Job) error {
	_, err := s.cron.AddFunc(job.Spec, func() {
		started := time.Now()
		slog.Info("scheduled job started", "job", job.Name)
		job.Run(context.Background())
		slog.Info("scheduled job finished", "job", job.Name, "elapsed", time.Since(started).String())
	})
	return err
}

func (s *CronScheduler) Start() {
	s.cron.Start()
}

func (s *CronScheduler) Stop(ctx context.Context) error {
	stopped := s.cron.Stop()
	select {
	case <-stopped.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
