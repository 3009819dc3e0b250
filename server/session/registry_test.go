package session

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hisr2024/MindVibe-sub009/ai/dialogue"
	"github.com/hisr2024/MindVibe-sub009/ai/insight"
	"github.com/hisr2024/MindVibe-sub009/ai/signals"
	"github.com/hisr2024/MindVibe-sub009/ai/tables"
)

func newTestRegistry() *Registry {
	ts := tables.Default()
	assembler := dialogue.NewAssembler(ts)
	return NewRegistry(
		func() *dialogue.Session {
			return dialogue.NewSession(assembler, dialogue.WithRand(rand.New(rand.NewSource(1))))
		},
		func() *insight.Collector {
			return insight.NewCollector(ts)
		},
	)
}

func TestRegistry(t *testing.T) {
	t.Run("CreateAndGet", func(t *testing.T) {
		registry := newTestRegistry()

		conv := registry.Create("user-a")
		require.NotNil(t, conv)
		require.NotEmpty(t, conv.ID)
		assert.Equal(t, "user-a", conv.UserKey)
		assert.Equal(t, 1, registry.Count())

		got := registry.Get(conv.ID)
		assert.Same(t, conv, got)
		assert.Nil(t, registry.Get("no-such-id"))
	})

	t.Run("RemoveReturnsHandle", func(t *testing.T) {
		registry := newTestRegistry()
		conv := registry.Create("")

		removed := registry.Remove(conv.ID)
		assert.Same(t, conv, removed)
		assert.Equal(t, 0, registry.Count())
		assert.Nil(t, registry.Remove(conv.ID))
	})

	t.Run("RespondAdvancesTurnAndActivity", func(t *testing.T) {
		registry := newTestRegistry()
		conv := registry.Create("")
		before := conv.LastActiveAt()

		time.Sleep(time.Millisecond)
		reply := conv.Respond("I feel so anxious about my exam")
		assert.NotEmpty(t, reply.Response)
		assert.Equal(t, 1, conv.TurnCount())
		assert.True(t, conv.LastActiveAt().After(before))
	})

	t.Run("MoodHistoryFeedsState", func(t *testing.T) {
		registry := newTestRegistry()
		conv := registry.Create("")

		assert.Equal(t, signals.MoodNeutral, moodOf(conv.State()))
		conv.Respond("I feel so anxious about everything")
		assert.NotEmpty(t, conv.State().MoodHistory)
	})

	t.Run("CrisisTurnDoesNotFeedCollector", func(t *testing.T) {
		registry := newTestRegistry()
		conv := registry.Create("")

		reply := conv.Respond("I want to end my life")
		require.True(t, reply.Crisis)

		sig := conv.Signals()
		assert.Empty(t, sig.ThemesDetected)
		assert.Empty(t, sig.ReactivityMarkers)
	})
}

func TestCleanupJob(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		job := NewCleanupJob(newTestRegistry(), CleanupConfig{})
		assert.Equal(t, DefaultIdleTimeout, job.config.IdleTimeout)
		assert.Equal(t, DefaultCleanupInterval, job.config.CleanupInterval)
	})

	t.Run("CustomConfig", func(t *testing.T) {
		job := NewCleanupJob(newTestRegistry(), CleanupConfig{
			IdleTimeout:     time.Minute,
			CleanupInterval: time.Second,
		})
		assert.Equal(t, time.Minute, job.config.IdleTimeout)
		assert.Equal(t, time.Second, job.config.CleanupInterval)
	})

	t.Run("RunOnceEvictsOnlyIdle", func(t *testing.T) {
		registry := newTestRegistry()
		job := NewCleanupJob(registry, CleanupConfig{IdleTimeout: time.Minute})

		idle := registry.Create("")
		idle.mu.Lock()
		idle.lastActiveAt = time.Now().Add(-2 * time.Minute)
		idle.mu.Unlock()

		fresh := registry.Create("")

		evicted := job.RunOnce()
		assert.Equal(t, 1, evicted)
		assert.Nil(t, registry.Get(idle.ID))
		assert.NotNil(t, registry.Get(fresh.ID))
	})

	t.Run("StartStopLifecycle", func(t *testing.T) {
		job := NewCleanupJob(newTestRegistry(), CleanupConfig{})
		assert.False(t, job.IsRunning())

		job.Start(context.Background())
		assert.True(t, job.IsRunning())
		job.Start(context.Background()) // no-op
		assert.True(t, job.IsRunning())

		job.Stop()
		assert.False(t, job.IsRunning())
		job.Stop() // no-op
		assert.False(t, job.IsRunning())
	})
}
