package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ClassifyRequest carries one message for stateless classification.
type ClassifyRequest struct {
	Message string `json:"message"`
}

// ClassifyResponse is the extractor's result. A crisis hit flips the
// Crisis flag and carries the safety payload instead of signals.
type ClassifyResponse struct {
	Mood          string   `json:"mood"`
	MoodIntensity float64  `json:"moodIntensity"`
	Topic         string   `json:"topic"`
	Intent        string   `json:"intent"`
	Entities      []string `json:"entities"`
	Crisis        bool     `json:"crisis,omitempty"`
	Message       string   `json:"message,omitempty"`
	Hotline       string   `json:"hotline,omitempty"`
}

// Classify runs the signal extractor over one message without touching
// any conversation state.
func (s *APIV1Service) Classify(c echo.Context) error {
	req := &ClassifyRequest{}
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	if err := validateMessage(req.Message); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	extraction, safety := s.Extractor.Classify(req.Message)
	resp := &ClassifyResponse{
		Mood:          string(extraction.Mood),
		MoodIntensity: extraction.MoodIntensity,
		Topic:         string(extraction.Topic),
		Intent:        string(extraction.Intent),
		Entities:      extraction.Entities,
	}
	if safety != nil {
		resp.Crisis = true
		resp.Message = safety.Message
		resp.Hotline = safety.Hotline
		s.Metrics.RecordCrisis()
	}
	return c.JSON(http.StatusOK, resp)
}
