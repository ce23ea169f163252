package batch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"credit-system/internal/config"
	"credit-system/internal/domain/credit"
	"credit-system/internal/infrastructure/monitoring"

	"github.com/robfig/cron/v3"
)

const (
	defaultPortfolioSchedule = "*/15 * * * *"
	defaultPortfolioTimeout  = 30 * time.Second
)

type StatusCounter interface {
	CountByStatus(ctx context.Context) (map[credit.Status]int64, error)
}

// PortfolioSnapshotJob publishes the number of stored credits per status as a gauge.
type PortfolioSnapshotJob struct {
	counter StatusCounter
	logger  *slog.Logger
}

func NewPortfolioSnapshotJob(counter StatusCounter, logger *slog.Logger) *PortfolioSnapshotJob {
	if counter == nil || logger == nil {
		panic("PortfolioSnapshotJob dependencies cannot be nil")
	}
	return &PortfolioSnapshotJob{
		counter: counter,
		logger:  logger.With("job", "PortfolioSnapshot"),
	}
}

func (j *PortfolioSnapshotJob) Run(ctx context.Context) error {
	startTime := time.Now()
	j.logger.InfoContext(ctx, "Starting credit portfolio snapshot.")

	counts, err := j.counter.CountByStatus(ctx)
	if err != nil {
		j.logger.ErrorContext(ctx, "Failed to count credits by status", slog.Any("error", err))
		return fmt.Errorf("portfolio snapshot failed: %w", err)
	}

	var total int64
	for status, count := range counts {
		monitoring.SetCreditsByStatus(string(status), count)
		total += count
	}

	j.logger.InfoContext(ctx, "Credit portfolio snapshot finished.",
		slog.Int64("total", total),
		slog.Duration("duration", time.Since(startTime)))
	return nil
}

// Schedule registers the job on c using the configured spec and per-run timeout.
func (j *PortfolioSnapshotJob) Schedule(c *cron.Cron, cfg config.BatchConfig) (cron.EntryID, error) {
	spec := cfg.PortfolioSnapshotSchedule
	if spec == "" {
		spec = defaultPortfolioSchedule
		j.logger.Warn("Portfolio snapshot schedule not configured, using default", "schedule", spec)
	}
	timeout := cfg.PortfolioSnapshotTimeout
	if timeout <= 0 {
		timeout = defaultPortfolioTimeout
	}

	id, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if runErr := j.Run(ctx); runErr != nil {
			j.logger.Error("Portfolio snapshot run finished with error", slog.Any("error", runErr))
		}
	})
	if err != nil {
		return 0, fmt.Errorf("failed to schedule portfolio snapshot %q: %w", spec, err)
	}
	j.logger.Info("Scheduled portfolio snapshot job", "schedule", spec, "job_id", id)
	return id, nil
}
