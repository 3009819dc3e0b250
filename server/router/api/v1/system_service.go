package v1

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hisr2024/MindVibe-sub009/internal/version"
	"github.com/hisr2024/MindVibe-sub009/store"
)

// SystemOverviewResponse is the operational snapshot served to the
// admin dashboard alongside the Prometheus endpoint.
type SystemOverviewResponse struct {
	Version        string           `json:"version"`
	Mode           string           `json:"mode"`
	TableVersions  map[string]int   `json:"tableVersions"`
	ActiveSessions int              `json:"activeSessions"`
	Suggestions    []*SuggestionLeg `json:"suggestions"`
}

// SuggestionLeg is one source-to-target hop with its hand-out and
// acceptance counters over the last thirty days. AcceptanceRate is
// zero when no suggestion was handed out on the leg.
type SuggestionLeg struct {
	SourceTool     string  `json:"sourceTool"`
	TargetTool     string  `json:"targetTool"`
	Count          int64   `json:"count"`
	Accepted       int64   `json:"accepted"`
	AcceptanceRate float64 `json:"acceptanceRate"`
}

// suggestionLegs is the set of hops the rule table can produce.
var suggestionLegs = [][2]string{
	{"viyoga", "ardha"},
	{"ardha", "kiaan"},
	{"compass", "viyoga"},
	{"compass", "emotional-reset"},
	{"kiaan", "journey"},
	{"journey", "viyoga"},
}

// GetSystemOverview reports table versions, live session count, and
// recent suggestion volume and acceptance per hop.
func (s *APIV1Service) GetSystemOverview(c echo.Context) error {
	ctx := c.Request().Context()
	since := time.Now().Add(-suggestionAcceptanceWindow).Unix()

	legs := make([]*SuggestionLeg, 0, len(suggestionLegs))
	for _, leg := range suggestionLegs {
		sourceTool, targetTool := leg[0], leg[1]
		count, err := s.Store.CountSuggestionEvents(ctx, &store.FindSuggestionEvent{
			SourceTool: &sourceTool,
			TargetTool: &targetTool,
			Since:      &since,
		})
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to count suggestion events")
		}

		accepted := int64(0)
		if count > 0 {
			acceptedOnly := true
			accepted, err = s.Store.CountSuggestionEvents(ctx, &store.FindSuggestionEvent{
				SourceTool: &sourceTool,
				TargetTool: &targetTool,
				Accepted:   &acceptedOnly,
				Since:      &since,
			})
			if err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, "failed to count suggestion events")
			}
		}

		rate := 0.0
		if count > 0 {
			rate = float64(accepted) / float64(count)
		}
		legs = append(legs, &SuggestionLeg{
			SourceTool:     sourceTool,
			TargetTool:     targetTool,
			Count:          count,
			Accepted:       accepted,
			AcceptanceRate: rate,
		})
	}

	return c.JSON(http.StatusOK, &SystemOverviewResponse{
		Version:        version.String(),
		Mode:           s.Profile.Mode,
		TableVersions:  s.Tables.Versions(),
		ActiveSessions: s.Sessions.Count(),
		Suggestions:    legs,
	})
}
