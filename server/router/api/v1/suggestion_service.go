package v1

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hisr2024/MindVibe-sub009/ai/routing"
	"github.com/hisr2024/MindVibe-sub009/store"
)

// SuggestionRequest asks which tool to offer next when the user leaves
// the given one. SessionSignals carries the per-theme counts a client
// may have aggregated itself.
type SuggestionRequest struct {
	Tool           string                    `json:"tool"`
	UserText       string                    `json:"userText"`
	AIText         string                    `json:"aiText"`
	SessionSignals *SuggestionSessionSignals `json:"sessionSignals"`
}

// SuggestionSessionSignals is the router-relevant slice of a session's
// aggregated signals.
type SuggestionSessionSignals struct {
	ThemeCounts map[string]int `json:"themeCounts"`
}

// SuggestionResponse wraps the routed suggestion. Suggestion is null
// when no rule fires; that is a successful answer, not an error.
type SuggestionResponse struct {
	Suggestion *routing.Suggestion `json:"suggestion"`
	Themes     []string            `json:"themes"`
}

// GetSuggestion evaluates the next-step rule table for one tool exit.
func (s *APIV1Service) GetSuggestion(c echo.Context) error {
	req := &SuggestionRequest{}
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	if req.Tool == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "tool is required")
	}

	in := routing.Input{
		Tool:     routing.Tool(req.Tool),
		UserText: req.UserText,
		AIText:   req.AIText,
	}
	if req.SessionSignals != nil {
		in.ThemeCounts = req.SessionSignals.ThemeCounts
	}

	suggestion := s.Rules.Suggest(in)
	if suggestion != nil {
		s.Metrics.RecordSuggestion(req.Tool, string(suggestion.TargetTool))
	}

	return c.JSON(http.StatusOK, &SuggestionResponse{
		Suggestion: suggestion,
		Themes:     s.Extractor.Themes(req.UserText),
	})
}

// SuggestionEventResponse is one recorded suggestion hand-off.
type SuggestionEventResponse struct {
	ID         int64  `json:"id"`
	UserKey    string `json:"userKey"`
	SessionID  string `json:"sessionId"`
	SourceTool string `json:"sourceTool"`
	TargetTool string `json:"targetTool"`
	ThemeCount int    `json:"themeCount"`
	Accepted   bool   `json:"accepted"`
	CreatedTs  int64  `json:"createdTs"`
}

// AcceptSuggestionEvent marks one of the caller's recorded suggestions
// as followed. Accepting an already-accepted event is a no-op success.
func (s *APIV1Service) AcceptSuggestionEvent(c echo.Context) error {
	userKey := authenticatedUserKey(c)
	if userKey == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid event id")
	}

	event, err := s.Store.AcceptSuggestionEvent(c.Request().Context(), &store.AcceptSuggestionEvent{
		ID:      id,
		UserKey: userKey,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to accept suggestion event")
	}
	if event == nil {
		// Events belonging to other users look identical to missing ones.
		return echo.NewHTTPError(http.StatusNotFound, "suggestion event not found")
	}

	return c.JSON(http.StatusOK, &SuggestionEventResponse{
		ID:         event.ID,
		UserKey:    event.UserKey,
		SessionID:  event.SessionID,
		SourceTool: event.SourceTool,
		TargetTool: event.TargetTool,
		ThemeCount: event.ThemeCount,
		Accepted:   event.Accepted,
		CreatedTs:  event.CreatedTs,
	})
}

// ListSuggestionEvents returns the caller's recorded suggestion events,
// newest first. The optional CEL filter narrows by source tool, e.g.
// `tool == 'kiaan'`.
func (s *APIV1Service) ListSuggestionEvents(c echo.Context) error {
	userKey := authenticatedUserKey(c)
	if userKey == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	find := &store.FindSuggestionEvent{UserKey: &userKey}

	if filterStr := c.QueryParam("filter"); filterStr != "" {
		tool, err := extractToolFromFilter(filterStr)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		if tool != "" {
			find.SourceTool = &tool
		}
	}
	if sinceStr := c.QueryParam("since"); sinceStr != "" {
		since, err := strconv.ParseInt(sinceStr, 10, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid since timestamp")
		}
		find.Since = &since
	}
	limit := 50
	if limitStr := c.QueryParam("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 || parsed > 500 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid limit")
		}
		limit = parsed
	}
	find.Limit = &limit

	events, err := s.Store.ListSuggestionEvents(c.Request().Context(), find)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list suggestion events")
	}

	resp := make([]*SuggestionEventResponse, 0, len(events))
	for _, event := range events {
		resp = append(resp, &SuggestionEventResponse{
			ID:         event.ID,
			UserKey:    event.UserKey,
			SessionID:  event.SessionID,
			SourceTool: event.SourceTool,
			TargetTool: event.TargetTool,
			ThemeCount: event.ThemeCount,
			Accepted:   event.Accepted,
			CreatedTs:  event.CreatedTs,
		})
	}
	return c.JSON(http.StatusOK, resp)
}

// suggestionAcceptanceWindow is how far back the overview's suggestion
// counters look.
const suggestionAcceptanceWindow = 30 * 24 * time.Hour
