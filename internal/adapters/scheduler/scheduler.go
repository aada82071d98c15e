// Package scheduler drives the engine's periodic work: factory ticks,
// billing runs, overdue checks, listing cleanup and snapshots.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	billingCmd "github.com/factorycraft/factory-economy/internal/application/billing/commands"
	"github.com/factorycraft/factory-economy/internal/application/common"
	factoryCmd "github.com/factorycraft/factory-economy/internal/application/factory/commands"
	"github.com/factorycraft/factory-economy/internal/application/mediator"
	"github.com/factorycraft/factory-economy/internal/domain/billing"
)

// Job is one periodic unit of work. A run always completes before the next
// one starts, and the job stops between runs once the context is cancelled.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Scheduler runs a set of jobs, each on its own ticker
type Scheduler struct {
	jobs   []Job
	logger *slog.Logger
	wg     sync.WaitGroup
}

func New(logger *slog.Logger, jobs ...Job) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{jobs: jobs, logger: logger}
}

// Add appends a job; it must be called before Start
func (s *Scheduler) Add(job Job) {
	s.jobs = append(s.jobs, job)
}

// Start launches one goroutine per job and returns immediately
func (s *Scheduler) Start(ctx context.Context) error {
	for _, job := range s.jobs {
		if job.Interval <= 0 {
			return fmt.Errorf("job %s: interval must be positive", job.Name)
		}
	}
	for _, job := range s.jobs {
		s.wg.Add(1)
		go s.loop(ctx, job)
	}
	return nil
}

// Wait blocks until every job goroutine has returned
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

func (s *Scheduler) loop(ctx context.Context, job Job) {
	defer s.wg.Done()
	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	s.logger.Info("job started", "job", job.Name, "interval", job.Interval.String())
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("job stopped", "job", job.Name)
			return
		case <-ticker.C:
			s.runOnce(ctx, job)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context, job Job) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("job panicked", "job", job.Name, "panic", fmt.Sprint(r))
		}
	}()
	start := time.Now()
	if err := job.Run(common.WithLogger(ctx, s.logger.With("job", job.Name))); err != nil {
		s.logger.Error("job failed", "job", job.Name, "error", err)
		return
	}
	s.logger.Debug("job finished", "job", job.Name, "duration", time.Since(start).String())
}

// TickJob advances every factory through the mediator
func TickJob(med mediator.Mediator, interval time.Duration) Job {
	return Job{
		Name:     "tick",
		Interval: interval,
		Run: func(ctx context.Context) error {
			_, err := med.Send(ctx, &factoryCmd.TickFactoriesCommand{})
			return err
		},
	}
}

// BillingJob evaluates tax and salary runs and then checks for overdue invoices.
// Each kind still honours its own interval, so running this often is harmless.
func BillingJob(med mediator.Mediator, interval time.Duration) Job {
	return Job{
		Name:     "billing",
		Interval: interval,
		Run: func(ctx context.Context) error {
			for _, kind := range []billing.InvoiceType{billing.InvoiceTypeTax, billing.InvoiceTypeSalary} {
				if _, err := med.Send(ctx, &billingCmd.RunBillingCommand{Kind: kind}); err != nil {
					return fmt.Errorf("%s run: %w", kind, err)
				}
			}
			if _, err := med.Send(ctx, &billingCmd.CheckOverdueCommand{}); err != nil {
				return fmt.Errorf("overdue check: %w", err)
			}
			return nil
		},
	}
}

// CleanupJob returns expired marketplace listings to their sellers
func CleanupJob(med mediator.Mediator, interval time.Duration) Job {
	return Job{
		Name:     "listing-cleanup",
		Interval: interval,
		Run: func(ctx context.Context) error {
			_, err := med.Send(ctx, &billingCmd.CleanupListingsCommand{})
			return err
		},
	}
}
