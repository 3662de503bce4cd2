package daemon

import (
	"context"
	"log/slog"

	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/logfields"
)

// Scheduler wraps gocron for periodic full rebuilds, the refresh path for
// git-backed zones that the filesystem watcher cannot see.
type Scheduler struct {
	scheduler gocron.Scheduler
}

// NewScheduler creates an idle scheduler.
func NewScheduler() (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryDaemon, "failed to create scheduler").Build()
	}
	return &Scheduler{scheduler: s}, nil
}

// ScheduleRebuild registers task under the given cron expression.
func (s *Scheduler) ScheduleRebuild(cronExpr string, task func(ctx context.Context)) error {
	job, err := s.scheduler.NewJob(
		gocron.CronJob(cronExpr, false),
		gocron.NewTask(func() { task(context.Background()) }),
		gocron.WithName("scheduled-rebuild"),
	)
	if err != nil {
		return errors.WrapError(err, errors.CategoryDaemon, "failed to schedule rebuild").
			WithContext("cron", cronExpr).Build()
	}
	slog.Info("Scheduled periodic rebuild",
		slog.String("cron", cronExpr),
		slog.String("job_id", job.ID().String()))
	return nil
}

// Start begins executing scheduled jobs.
func (s *Scheduler) Start() {
	s.scheduler.Start()
}

// Stop shuts the scheduler down, waiting for running jobs.
func (s *Scheduler) Stop() {
	if err := s.scheduler.Shutdown(); err != nil {
		slog.Error("Error stopping scheduler", logfields.Error(err))
	}
}
