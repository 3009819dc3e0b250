package feed

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hisr2024/MindVibe-sub009/ai/tables"
	"github.com/hisr2024/MindVibe-sub009/ai/wisdom"
	"github.com/hisr2024/MindVibe-sub009/internal/profile"
	"github.com/hisr2024/MindVibe-sub009/plugin/markdown"
)

func newTestFeedService() *FeedService {
	return NewFeedService(
		&profile.Profile{Mode: "dev", Port: 8080},
		wisdom.NewSelector(tables.Default()),
		markdown.NewService(markdown.WithHardWraps()),
	)
}

func TestRenderFeed(t *testing.T) {
	svc := newTestFeedService()
	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)

	rss, err := svc.renderFeed(now)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(strings.TrimSpace(rss), "<?xml"))
	assert.Contains(t, rss, "<rss")
	assert.Contains(t, rss, "MindVibe Daily Wisdom")
	assert.Equal(t, feedDays, strings.Count(rss, "<item>"))
	assert.Contains(t, rss, "2026-08-25")
}

func TestRenderFeedStableWithinDay(t *testing.T) {
	svc := newTestFeedService()
	now := time.Date(2026, 8, 25, 3, 0, 0, 0, time.UTC)
	later := time.Date(2026, 8, 25, 23, 0, 0, 0, time.UTC)

	first, err := svc.renderFeed(now)
	require.NoError(t, err)
	second, err := svc.renderFeed(later)
	require.NoError(t, err)

	// Item content is identical; only the feed-level Created timestamp
	// moves within a day.
	assert.Equal(t, itemsSection(first), itemsSection(second))
}

func itemsSection(rss string) string {
	idx := strings.Index(rss, "<item>")
	if idx < 0 {
		return ""
	}
	return rss[idx:]
}
