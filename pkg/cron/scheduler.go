// Package cron provides scheduled background jobs using robfig/cron.
package cron

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	importservice "github.com/FACorreiaa/smart-finance-dashboard/internal/domain/import/service"
	"github.com/FACorreiaa/smart-finance-dashboard/internal/domain/transactions"
)

// scanTimeout bounds one folder re-scan.
const scanTimeout = 10 * time.Minute

// Scanner re-reads the statement folder into the store.
type Scanner interface {
	ScanInbox(ctx context.Context, policy transactions.ImportPolicy) (*importservice.ImportReport, error)
}

// Scheduler manages background scheduled jobs using robfig/cron.
type Scheduler struct {
	cron     *cron.Cron
	scanner  Scanner
	schedule string
	policy   transactions.ImportPolicy
	logger   *slog.Logger
	afterRun func(report *importservice.ImportReport)
}

// NewScheduler creates a scheduler that re-scans the statement folder on
// schedule, a standard 5-field cron expression. An empty policy uses the
// scanner's default.
func NewScheduler(scanner Scanner, schedule string, policy transactions.ImportPolicy, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))))

	return &Scheduler{
		cron:     c,
		scanner:  scanner,
		schedule: schedule,
		policy:   policy,
		logger:   logger,
	}
}

// OnScan registers a callback run after every successful scan.
func (s *Scheduler) OnScan(fn func(report *importservice.ImportReport)) *Scheduler {
	s.afterRun = fn
	return s
}

// Start begins scheduled jobs.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.scanFolder); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("cron scheduler started",
		slog.String("schedule", s.schedule),
		slog.Int("jobs", len(s.cron.Entries())),
	)
	return nil
}

// Stop gracefully stops all scheduled jobs.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("cron scheduler stopping")
	return s.cron.Stop()
}

// RunNow triggers a folder scan outside the schedule.
func (s *Scheduler) RunNow() {
	go s.scanFolder()
}

func (s *Scheduler) scanFolder() {
	ctx, cancel := context.WithTimeout(context.Background(), scanTimeout)
	defer cancel()

	s.logger.Info("starting statement folder scan")
	start := time.Now()

	report, err := s.scanner.ScanInbox(ctx, s.policy)
	switch {
	case errors.Is(err, importservice.ErrNothingImported):
		s.logger.Warn("statement folder scan read no file", slog.Any("error", err))
		return
	case err != nil:
		s.logger.Error("statement folder scan failed", slog.Any("error", err))
		return
	}

	s.logger.Info("statement folder scan completed",
		slog.Int("files", len(report.Files)),
		slog.Int("imported", report.Imported),
		slog.Int("duplicates", report.Duplicates),
		slog.Int("warnings", len(report.Warnings)),
		slog.Duration("elapsed", time.Since(start)),
	)
	if s.afterRun != nil {
		s.afterRun(report)
	}
}
