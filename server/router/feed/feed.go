// Package feed serves the wisdom-of-the-day RSS feed. Entries are
// date-seeded, so the feed is identical for every subscriber and stable
// within a day.
package feed

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/feeds"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/hisr2024/MindVibe-sub009/ai/wisdom"
	"github.com/hisr2024/MindVibe-sub009/internal/profile"
	"github.com/hisr2024/MindVibe-sub009/plugin/markdown"
)

// feedDays is how many trailing days of daily wisdom the feed carries.
const feedDays = 14

// FeedService renders the daily wisdom entries as RSS.
type FeedService struct {
	Profile  *profile.Profile
	Selector *wisdom.Selector
	Markdown markdown.Service
}

// NewFeedService creates the feed service.
func NewFeedService(instanceProfile *profile.Profile, selector *wisdom.Selector, md markdown.Service) *FeedService {
	return &FeedService{
		Profile:  instanceProfile,
		Selector: selector,
		Markdown: md,
	}
}

// RegisterRoutes mounts the feed endpoint.
func (s *FeedService) RegisterRoutes(e *echo.Echo) {
	e.GET("/feed/wisdom.xml", s.GetWisdomFeed)
}

// GetWisdomFeed serves the last two weeks of daily wisdom as RSS.
func (s *FeedService) GetWisdomFeed(c echo.Context) error {
	rss, err := s.renderFeed(time.Now().UTC())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to render feed")
	}
	return c.Blob(http.StatusOK, "application/rss+xml; charset=utf-8", []byte(rss))
}

// renderFeed builds the RSS document ending at the given day.
func (s *FeedService) renderFeed(now time.Time) (string, error) {
	baseURL := s.Profile.InstanceURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("http://localhost:%d", s.Profile.Port)
	}

	feed := &feeds.Feed{
		Title:       "MindVibe Daily Wisdom",
		Link:        &feeds.Link{Href: baseURL + "/feed/wisdom.xml"},
		Description: "One curated wisdom entry per day.",
		Created:     now,
	}

	for i := 0; i < feedDays; i++ {
		day := now.AddDate(0, 0, -i)
		selection := s.Selector.Daily(day.Year(), day.YearDay())

		html, err := s.Markdown.Render(selection.Text)
		if err != nil {
			return "", errors.Wrap(err, "failed to render wisdom entry")
		}

		date := day.Format("2006-01-02")
		feed.Items = append(feed.Items, &feeds.Item{
			Id:          baseURL + "/api/v1/wisdom/daily?date=" + date,
			Title:       fmt.Sprintf("%s — %s", date, selection.Principle),
			Link:        &feeds.Link{Href: baseURL + "/api/v1/wisdom/daily"},
			Description: html,
			Created:     time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC),
		})
	}

	rss, err := feed.ToRss()
	if err != nil {
		return "", errors.Wrap(err, "failed to serialize feed")
	}
	return rss, nil
}
