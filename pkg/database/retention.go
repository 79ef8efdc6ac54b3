package database

import (
	"context"
	"time"

	"github.com/dbehnke/dmr-lc/pkg/logger"
)

// maxPruneInterval bounds how long expired messages linger between passes
const maxPruneInterval = time.Hour

// Retention removes stored messages once they are older than a maximum age
type Retention struct {
	repo     *MessageRepository
	maxAge   time.Duration
	interval time.Duration
	logger   *logger.Logger
	now      func() time.Time
}

// NewRetention creates a pruner keeping maxAge of history
func NewRetention(repo *MessageRepository, maxAge time.Duration, log *logger.Logger) *Retention {
	return &Retention{
		repo:     repo,
		maxAge:   maxAge,
		interval: min(maxAge, maxPruneInterval),
		logger:   log.WithComponent("retention"),
		now:      time.Now,
	}
}

// Start prunes once and then periodically until ctx is done
func (r *Retention) Start(ctx context.Context) {
	if r.maxAge <= 0 || ctx.Err() != nil {
		return
	}
	r.prune()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.prune()
		}
	}
}

// Prune deletes messages decoded more than maxAge ago
func (r *Retention) Prune() (int64, error) {
	return r.repo.DeleteOlderThan(r.now().Add(-r.maxAge))
}

func (r *Retention) prune() {
	deleted, err := r.Prune()
	if err != nil {
		r.logger.Error("Failed to prune decoded messages", logger.Error(err))
		return
	}
	if deleted > 0 {
		r.logger.Info("Pruned decoded messages",
			logger.Int64("deleted", deleted),
			logger.String("max_age", r.maxAge.String()))
	}
}
