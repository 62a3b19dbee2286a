package pruner

import (
	"context"
	"time"

	"github.com/Lina0Elman/ApplicationsAssignment1/internal/logger"
	"github.com/Lina0Elman/ApplicationsAssignment1/internal/repository"
)

const defaultInterval = 10 * time.Minute

// Reports how many rows every prune run removed
type Recorder interface {
	Pruned(kind string, count int64)
}

type noopRecorder struct{}

func (noopRecorder) Pruned(string, int64) {}

// Pruner periodically removes expired refresh tokens and blacklist entries
// Reads already ignore expired refresh tokens, pruning only keeps tables small
type Pruner struct {
	interval time.Duration
	storage  repository.Storage
	logger   logger.Logger
	recorder Recorder

	now func() time.Time
}

func New(interval time.Duration, storage repository.Storage, l logger.Logger, r Recorder) *Pruner {
	if interval <= 0 {
		interval = defaultInterval
	}
	if l == nil {
		l = logger.NewNoOpLogger()
	}
	if r == nil {
		r = noopRecorder{}
	}

	return &Pruner{
		interval: interval,
		storage:  storage,
		logger:   l.With("component", "pruner"),
		recorder: r,
		now:      time.Now,
	}
}

// Run prunes on every tick until ctx is done
// Returned channel is closed when the pruner stopped
func (p *Pruner) Run(ctx context.Context) <-chan struct{} {
	idleStopped := make(chan struct{})
	p.logger.Debug("Starting pruner", "interval", p.interval)

	go func() {
		defer close(idleStopped)

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				p.logger.Debug("Pruner stopped by context")
				return

			case <-ticker.C:
				p.Prune(ctx)
			}
		}
	}()

	return idleStopped
}

// Prune deletes everything expired by now. Failures are logged, next tick tries again
func (p *Pruner) Prune(ctx context.Context) {
	now := p.now()

	refreshCount, err := p.storage.Refresh().DeleteExpired(ctx, now)
	if err != nil {
		p.logger.Error("Failed to prune refresh tokens", "error", err)
	} else {
		p.recorder.Pruned("refresh_token", refreshCount)
	}

	blacklistCount, err := p.storage.Blacklist().DeleteExpired(ctx, now)
	if err != nil {
		p.logger.Error("Failed to prune blacklisted tokens", "error", err)
	} else {
		p.recorder.Pruned("blacklisted_token", blacklistCount)
	}

	p.logger.Debug("Pruner tick", "refresh_tokens", refreshCount, "blacklisted_tokens", blacklistCount)
}
