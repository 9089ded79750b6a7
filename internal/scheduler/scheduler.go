// Package scheduler runs periodic housekeeping jobs.
package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/goserg/doublesrating/internal/config"
	"github.com/sirupsen/logrus"
)

const jobTimeout = time.Minute

type Archiver interface {
	ArchiveStale(ctx context.Context, maxAge time.Duration) (int, error)
}

type Scheduler struct {
	sched    gocron.Scheduler
	archiver Archiver
	maxAge   time.Duration
	log      *logrus.Entry
}

// New registers the auto-archive job. Nothing runs until Start.
func New(l *logrus.Logger, archiver Archiver, cfg config.Scheduler) (*Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	s := &Scheduler{
		sched:    sched,
		archiver: archiver,
		maxAge:   cfg.MaxSessionAge,
		log: l.WithFields(map[string]interface{}{
			"from": "scheduler",
		}),
	}
	_, err = sched.NewJob(
		gocron.DurationJob(cfg.Interval),
		gocron.NewTask(s.archiveStale),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.log.WithField("max_age", s.maxAge).Info("auto-archive scheduled")
	s.sched.Start()
}

func (s *Scheduler) Shutdown() error {
	return s.sched.Shutdown()
}

func (s *Scheduler) archiveStale() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	n, err := s.archiver.ArchiveStale(ctx, s.maxAge)
	if err != nil {
		s.log.WithError(err).Error("auto-archive failed")
		return
	}
	if n > 0 {
		s.log.WithField("sessions", n).Info("stale sessions archived")
	}
}
