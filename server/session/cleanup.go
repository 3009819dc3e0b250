package session

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Default cleanup configuration.
const (
	DefaultIdleTimeout     = 30 * time.Minute
	DefaultCleanupInterval = 5 * time.Minute
)

// CleanupConfig configures the idle-conversation sweeper.
type CleanupConfig struct {
	// IdleTimeout is how long a conversation may sit without a turn
	// before it is evicted.
	IdleTimeout time.Duration
	// CleanupInterval is how often the sweeper runs.
	CleanupInterval time.Duration
}

// CleanupJob periodically evicts idle conversations from a registry.
// An evicted conversation is simply dropped: its durable signals only
// exist once the client ends the session explicitly.
type CleanupJob struct {
	registry *Registry
	config   CleanupConfig

	mu      sync.Mutex
	cancel  context.CancelFunc
	running bool
}

// NewCleanupJob creates a cleanup job over the registry. Zero config
// fields fall back to the defaults.
func NewCleanupJob(registry *Registry, config CleanupConfig) *CleanupJob {
	if config.IdleTimeout <= 0 {
		config.IdleTimeout = DefaultIdleTimeout
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = DefaultCleanupInterval
	}
	return &CleanupJob{
		registry: registry,
		config:   config,
	}
}

// Start launches the sweeper goroutine. Calling Start on a running job
// is a no-op.
func (j *CleanupJob) Start(ctx context.Context) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.running {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	j.cancel = cancel
	j.running = true

	go j.run(ctx)
	slog.Info("session cleanup job started",
		"idleTimeout", j.config.IdleTimeout,
		"interval", j.config.CleanupInterval,
	)
}

// Stop terminates the sweeper goroutine. Calling Stop on a stopped job
// is a no-op.
func (j *CleanupJob) Stop() {
	j.mu.Lock()
	defer j.mu.Unlock()

	if !j.running {
		return
	}
	j.cancel()
	j.running = false
	slog.Info("session cleanup job stopped")
}

// IsRunning reports whether the sweeper goroutine is active.
func (j *CleanupJob) IsRunning() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.running
}

// RunOnce performs a single sweep and returns how many conversations
// were evicted.
func (j *CleanupJob) RunOnce() int {
	cutoff := time.Now().Add(-j.config.IdleTimeout)
	evicted := j.registry.evictIdleBefore(cutoff)
	if evicted > 0 {
		slog.Info("evicted idle conversations", "count", evicted)
	}
	return evicted
}

func (j *CleanupJob) run(ctx context.Context) {
	ticker := time.NewTicker(j.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.RunOnce()
		}
	}
}
