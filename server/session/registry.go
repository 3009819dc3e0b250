// Package session owns the in-memory conversation registry. Each
// conversation wraps one dialogue session and one signal collector; the
// registry hands out single-owner handles and a cleanup job evicts
// conversations that sit idle past the configured window.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hisr2024/MindVibe-sub009/ai/dialogue"
	"github.com/hisr2024/MindVibe-sub009/ai/insight"
	"github.com/hisr2024/MindVibe-sub009/ai/signals"
)

// Conversation is one live chat session. The engine's session object is
// single-owner; the mutex serializes HTTP handlers racing on the same
// conversation id so that ownership holds at this boundary.
type Conversation struct {
	ID      string
	UserKey string

	mu        sync.Mutex
	session   *dialogue.Session
	collector *insight.Collector

	createdAt    time.Time
	lastActiveAt time.Time
}

// Respond runs one turn, feeds the extraction to the collector, and
// refreshes the activity timestamp.
func (c *Conversation) Respond(message string) dialogue.Reply {
	c.mu.Lock()
	defer c.mu.Unlock()

	reply := c.session.Respond(message)
	if !reply.Crisis {
		c.collector.Observe(message, reply.Extraction)
	}
	c.lastActiveAt = time.Now()
	return reply
}

// Signals returns the session's aggregated signal summary so far.
func (c *Conversation) Signals() *insight.SessionSignals {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.collector.Signals()
}

// ThemeCounts returns per-theme observation counts for the router.
func (c *Conversation) ThemeCounts() map[string]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.collector.ThemeCounts()
}

// TurnCount returns the number of completed turns.
func (c *Conversation) TurnCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.TurnCount()
}

// State returns a copy of the conversation's dialogue state.
func (c *Conversation) State() dialogue.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.State()
}

// LastActiveAt returns the time of the last turn (or creation).
func (c *Conversation) LastActiveAt() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastActiveAt
}

// Registry tracks live conversations by id.
type Registry struct {
	mu            sync.RWMutex
	conversations map[string]*Conversation

	newSession   func() *dialogue.Session
	newCollector func() *insight.Collector
}

// NewRegistry creates a registry that builds conversations from the
// given factories. Factories run once per conversation, so each one
// gets its own session state and collector.
func NewRegistry(newSession func() *dialogue.Session, newCollector func() *insight.Collector) *Registry {
	return &Registry{
		conversations: make(map[string]*Conversation),
		newSession:    newSession,
		newCollector:  newCollector,
	}
}

// Create starts a new conversation. userKey may be empty for anonymous
// sessions; anonymous sessions never touch the profile store.
func (r *Registry) Create(userKey string) *Conversation {
	now := time.Now()
	conv := &Conversation{
		ID:           uuid.NewString(),
		UserKey:      userKey,
		session:      r.newSession(),
		collector:    r.newCollector(),
		createdAt:    now,
		lastActiveAt: now,
	}

	r.mu.Lock()
	r.conversations[conv.ID] = conv
	r.mu.Unlock()
	return conv
}

// Get returns the conversation, or nil when the id is unknown.
func (r *Registry) Get(id string) *Conversation {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.conversations[id]
}

// Remove takes the conversation out of the registry and returns it, or
// nil when the id is unknown. The caller still holds a usable handle.
func (r *Registry) Remove(id string) *Conversation {
	r.mu.Lock()
	defer r.mu.Unlock()

	conv := r.conversations[id]
	delete(r.conversations, id)
	return conv
}

// Count returns the number of live conversations.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conversations)
}

// evictIdleBefore removes every conversation whose last activity is
// before the cutoff and returns how many were evicted.
func (r *Registry) evictIdleBefore(cutoff time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for id, conv := range r.conversations {
		if conv.LastActiveAt().Before(cutoff) {
			delete(r.conversations, id)
			evicted++
		}
	}
	return evicted
}

// moodOf is a convenience for tests and the system overview: the most
// recent mood of a conversation, or neutral before the first turn.
func moodOf(st dialogue.State) signals.Mood {
	if len(st.MoodHistory) == 0 {
		return signals.MoodNeutral
	}
	return st.MoodHistory[len(st.MoodHistory)-1]
}
