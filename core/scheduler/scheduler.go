// Package scheduler runs the fixed-period background jobs that poll for
// Bitcoin payments and expired deadlines (§4.1, §4.5): CheckBillPayment,
// CheckOfferToSellPayment, CheckRecoursePayment, and CheckTimeouts.
package scheduler

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Job is one unit of periodic work.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Scheduler runs a fixed set of Jobs, each on its own ticker, until
// stopped.
type Scheduler struct {
	jobs []Job
	log  *logrus.Entry
}

// New builds a Scheduler over jobs.
func New(log *logrus.Logger, jobs ...Job) *Scheduler {
	return &Scheduler{jobs: jobs, log: log.WithField("component", "scheduler")}
}

// Start launches every job on its own goroutine; it returns immediately.
// Callers stop the scheduler by canceling ctx.
func (s *Scheduler) Start(ctx context.Context) {
	for _, j := range s.jobs {
		go s.runJob(ctx, j)
	}
}

func (s *Scheduler) runJob(ctx context.Context, j Job) {
	ticker := time.NewTicker(j.Interval)
	defer ticker.Stop()
	log := s.log.WithField("job", j.Name)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := j.Run(ctx); err != nil {
				log.WithError(err).Warn("job run failed")
			}
		}
	}
}
