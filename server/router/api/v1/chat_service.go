package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hisr2024/MindVibe-sub009/ai/dialogue"
	"github.com/hisr2024/MindVibe-sub009/ai/insight"
	"github.com/hisr2024/MindVibe-sub009/ai/observability/logging"
	"github.com/hisr2024/MindVibe-sub009/ai/routing"
	"github.com/hisr2024/MindVibe-sub009/store"
)

// CreateChatSessionRequest opens a conversation. UserKey is optional;
// anonymous conversations never touch the profile store.
type CreateChatSessionRequest struct {
	UserKey string `json:"userKey"`
}

// ChatSessionResponse describes one live conversation.
type ChatSessionResponse struct {
	ID        string `json:"id"`
	UserKey   string `json:"userKey,omitempty"`
	TurnCount int    `json:"turnCount"`
}

// ChatMessageRequest is one user turn.
type ChatMessageRequest struct {
	Message string `json:"message"`
}

// ChatMessageResponse is the assembled reply plus turn metadata. On a
// crisis turn only Response, Hotline, Phase, and Crisis are meaningful.
type ChatMessageResponse struct {
	Response      string              `json:"response"`
	Mood          string              `json:"mood"`
	MoodIntensity float64             `json:"moodIntensity"`
	Topic         string              `json:"topic"`
	Intent        string              `json:"intent"`
	Entities      []string            `json:"entities"`
	Phase         string              `json:"phase"`
	WisdomUsed    *string             `json:"wisdomUsed"`
	Crisis        bool                `json:"crisis,omitempty"`
	Hotline       string              `json:"hotline,omitempty"`
	TurnCount     int                 `json:"turnCount"`
	Suggestion    *routing.Suggestion `json:"suggestion"`
}

// EndChatSessionResponse summarizes the merge performed at session end.
type EndChatSessionResponse struct {
	Profile   *insight.Profile `json:"profile"`
	Persisted bool             `json:"persisted"`
	Turns     int              `json:"turns"`
}

// CreateChatSession opens a new conversation session.
func (s *APIV1Service) CreateChatSession(c echo.Context) error {
	req := &CreateChatSessionRequest{}
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	if err := validateUserKey(req.UserKey, true); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	conv := s.Sessions.Create(req.UserKey)
	s.Metrics.SetActiveSessions(s.Sessions.Count())

	return c.JSON(http.StatusCreated, &ChatSessionResponse{
		ID:      conv.ID,
		UserKey: conv.UserKey,
	})
}

// PostChatMessage runs one turn of the conversation.
func (s *APIV1Service) PostChatMessage(c echo.Context) error {
	conv := s.Sessions.Get(c.Param("id"))
	if conv == nil {
		return echo.NewHTTPError(http.StatusNotFound, "session not found")
	}

	req := &ChatMessageRequest{}
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	if err := validateMessage(req.Message); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	start := time.Now()
	var reply dialogue.Reply
	_ = s.Tracer.Span(ctx, "dialogue.respond", func(context.Context) error {
		reply = conv.Respond(req.Message)
		return nil
	})
	logging.From(ctx).Debug("chat turn",
		"session", conv.ID,
		"turn", conv.TurnCount(),
		"preview", logging.Preview(req.Message),
	)

	resp := &ChatMessageResponse{
		Response:      reply.Response,
		Mood:          string(reply.Extraction.Mood),
		MoodIntensity: reply.Extraction.MoodIntensity,
		Topic:         string(reply.Extraction.Topic),
		Intent:        string(reply.Extraction.Intent),
		Entities:      reply.Extraction.Entities,
		Phase:         string(reply.Phase),
		TurnCount:     conv.TurnCount(),
	}

	if reply.Crisis {
		resp.Crisis = true
		resp.Hotline = reply.Hotline
		s.Metrics.RecordCrisis()
		return c.JSON(http.StatusOK, resp)
	}

	if reply.Wisdom != nil {
		resp.WisdomUsed = &reply.Wisdom.Principle
		s.Metrics.RecordWisdom(string(reply.Phase), reply.Wisdom.Principle)
	}

	// The chat surface is the kiaan tool; each turn may carry at most
	// one next-step suggestion.
	resp.Suggestion = s.suggestAndRecord(c, conv.UserKey, conv.ID, routing.Input{
		Tool:        routing.ToolKiaan,
		UserText:    req.Message,
		AIText:      reply.Response,
		ThemeCounts: conv.ThemeCounts(),
	})

	s.Metrics.RecordMessage(resp.Mood, resp.Intent, resp.Phase, time.Since(start))
	return c.JSON(http.StatusOK, resp)
}

// EndChatSession closes the conversation and merges its aggregated
// signals into the durable profile. Zero-turn sessions still merge: a
// session that happened is a session counted.
func (s *APIV1Service) EndChatSession(c echo.Context) error {
	ctx := c.Request().Context()

	conv := s.Sessions.Remove(c.Param("id"))
	if conv == nil {
		return echo.NewHTTPError(http.StatusNotFound, "session not found")
	}
	s.Metrics.SetActiveSessions(s.Sessions.Count())

	if err := s.mergeSemaphore.Acquire(ctx, 1); err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "server shutting down")
	}
	defer s.mergeSemaphore.Release(1)

	var prev *insight.Profile
	if conv.UserKey != "" {
		stored, err := s.Store.GetInnerProfile(ctx, &store.FindInnerProfile{UserKey: &conv.UserKey})
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to load profile")
		}
		if stored != nil {
			prev = &insight.Profile{}
			if err := json.Unmarshal([]byte(stored.Payload), prev); err != nil {
				// A corrupt payload is not allowed to block the session
				// from closing; the merge starts over from scratch.
				logging.From(ctx).Error("stored profile payload corrupt, rebuilding", "userKey", conv.UserKey, "error", err)
				prev = nil
			}
		}
	}

	start := time.Now()
	var merged *insight.Profile
	_ = s.Tracer.Span(ctx, "insight.merge", func(context.Context) error {
		merged = insight.Merge(prev, conv.Signals(), time.Now())
		return nil
	})

	persisted := false
	if conv.UserKey != "" {
		payload, err := json.Marshal(merged)
		if err != nil {
			s.Metrics.RecordMerge(time.Since(start), err)
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to serialize profile")
		}
		if _, err := s.Store.UpsertInnerProfile(ctx, &store.UpsertInnerProfile{
			UserKey: conv.UserKey,
			Payload: string(payload),
		}); err != nil {
			s.Metrics.RecordMerge(time.Since(start), err)
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to persist profile")
		}
		persisted = true
	}
	s.Metrics.RecordMerge(time.Since(start), nil)

	return c.JSON(http.StatusOK, &EndChatSessionResponse{
		Profile:   merged,
		Persisted: persisted,
		Turns:     conv.TurnCount(),
	})
}

// suggestAndRecord evaluates the rule table and records the handed-out
// suggestion. Event recording is best-effort; a storage hiccup never
// fails the chat turn.
func (s *APIV1Service) suggestAndRecord(c echo.Context, userKey, sessionID string, in routing.Input) *routing.Suggestion {
	suggestion := s.Rules.Suggest(in)
	if suggestion == nil {
		return nil
	}
	s.Metrics.RecordSuggestion(string(in.Tool), string(suggestion.TargetTool))

	themeCount := 0
	for _, n := range in.ThemeCounts {
		themeCount += n
	}
	if _, err := s.Store.CreateSuggestionEvent(c.Request().Context(), &store.SuggestionEvent{
		UserKey:    userKey,
		SessionID:  sessionID,
		SourceTool: string(in.Tool),
		TargetTool: string(suggestion.TargetTool),
		ThemeCount: themeCount,
		CreatedTs:  time.Now().Unix(),
	}); err != nil {
		logging.From(c.Request().Context()).Warn("failed to record suggestion event", "error", err)
	}
	return suggestion
}
