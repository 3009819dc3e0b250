package v1

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hisr2024/MindVibe-sub009/ai/insight"
	"github.com/hisr2024/MindVibe-sub009/store"
)

// ProfileResponse is the stored inner-state profile plus row metadata.
type ProfileResponse struct {
	UserKey   string           `json:"userKey"`
	Profile   *insight.Profile `json:"profile"`
	CreatedTs int64            `json:"createdTs"`
	UpdatedTs int64            `json:"updatedTs"`
}

// GetProfile returns the caller's stored inner-state profile. A paired
// client may only read its own uid.
func (s *APIV1Service) GetProfile(c echo.Context) error {
	uid := c.Param("uid")
	if authenticatedUserKey(c) != uid {
		return echo.NewHTTPError(http.StatusForbidden, "cannot access another user's profile")
	}

	stored, err := s.Store.GetInnerProfile(c.Request().Context(), &store.FindInnerProfile{UserKey: &uid})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load profile")
	}
	if stored == nil {
		return echo.NewHTTPError(http.StatusNotFound, "no profile stored for this user")
	}

	parsed := &insight.Profile{}
	if err := json.Unmarshal([]byte(stored.Payload), parsed); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "stored profile payload corrupt")
	}

	return c.JSON(http.StatusOK, &ProfileResponse{
		UserKey:   stored.UserKey,
		Profile:   parsed,
		CreatedTs: stored.CreatedTs,
		UpdatedTs: stored.UpdatedTs,
	})
}

// DeleteProfile erases the caller's profile and suggestion history.
// This is the right-to-forget path: nothing about the user survives it.
func (s *APIV1Service) DeleteProfile(c echo.Context) error {
	ctx := c.Request().Context()

	uid := c.Param("uid")
	if authenticatedUserKey(c) != uid {
		return echo.NewHTTPError(http.StatusForbidden, "cannot delete another user's profile")
	}

	if err := s.Store.DeleteInnerProfile(ctx, &store.DeleteInnerProfile{UserKey: uid}); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete profile")
	}
	if err := s.Store.DeleteSuggestionEvents(ctx, &store.DeleteSuggestionEvent{UserKey: uid}); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete suggestion history")
	}

	return c.NoContent(http.StatusNoContent)
}
