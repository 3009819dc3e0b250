package v1

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// DailyWisdomResponse is the wisdom entry for one calendar day. Every
// caller sees the same entry until midnight UTC.
type DailyWisdomResponse struct {
	Date      string `json:"date"`
	Text      string `json:"text"`
	HTML      string `json:"html"`
	Principle string `json:"principle"`
}

// GetDailyWisdom returns today's wisdom entry, rendered both as the
// authored markdown and as HTML.
func (s *APIV1Service) GetDailyWisdom(c echo.Context) error {
	now := time.Now().UTC()
	selection := s.Selector.Daily(now.Year(), now.YearDay())

	html, err := s.Markdown.Render(selection.Text)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to render wisdom entry")
	}

	return c.JSON(http.StatusOK, &DailyWisdomResponse{
		Date:      now.Format("2006-01-02"),
		Text:      selection.Text,
		HTML:      html,
		Principle: selection.Principle,
	})
}
