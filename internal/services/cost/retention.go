package cost

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/thomas-vilte/contextclue/internal/logger"
)

// RetentionJob periodically drops usage records older than a retention window.
type RetentionJob struct {
	scheduler gocron.Scheduler
}

// StartRetention prunes once immediately and then every interval. The returned
// job must be stopped with Stop.
func StartRetention(ctx context.Context, m *Manager, retention, interval time.Duration) (*RetentionJob, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	task := func() {
		removed, err := m.Prune(retention)
		if err != nil {
			logger.Warn(ctx, "usage history pruning failed",
				"path", m.HistoryPath(),
				"error", err)
			return
		}
		if removed > 0 {
			logger.Info(ctx, "usage history pruned",
				"removed", removed,
				"retention", retention.String())
		}
	}

	_, err = s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(task),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, err
	}

	s.Start()
	return &RetentionJob{scheduler: s}, nil
}

func (j *RetentionJob) Stop() error {
	return j.scheduler.Shutdown()
}
