// Package v1 is the REST surface over the conversation engine. Every
// handler is thin: parse, call the pure engine or the store, render.
// The engine itself never sees an echo.Context.
package v1

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/semaphore"

	"github.com/hisr2024/MindVibe-sub009/ai/dialogue"
	"github.com/hisr2024/MindVibe-sub009/ai/insight"
	"github.com/hisr2024/MindVibe-sub009/ai/metrics"
	"github.com/hisr2024/MindVibe-sub009/ai/observability/tracing"
	"github.com/hisr2024/MindVibe-sub009/ai/routing"
	"github.com/hisr2024/MindVibe-sub009/ai/signals"
	"github.com/hisr2024/MindVibe-sub009/ai/tables"
	"github.com/hisr2024/MindVibe-sub009/ai/wisdom"
	"github.com/hisr2024/MindVibe-sub009/internal/profile"
	"github.com/hisr2024/MindVibe-sub009/plugin/markdown"
	"github.com/hisr2024/MindVibe-sub009/server/session"
	"github.com/hisr2024/MindVibe-sub009/store"
)

// maxConcurrentMerges bounds profile merges running at once. A merge is
// cheap CPU work, but an end-of-session burst should not be allowed to
// starve the chat handlers.
const maxConcurrentMerges = 8

// APIV1Service wires the engine components, session registry, and store
// behind the /api/v1 route group.
type APIV1Service struct {
	Secret  string
	Profile *profile.Profile
	Store   *store.Store

	// Engine components, all reading one immutable table set.
	Tables    *tables.Set
	Extractor *signals.Extractor
	Assembler *dialogue.Assembler
	Selector  *wisdom.Selector
	Rules     *routing.RuleRegistry

	// Serving infra.
	Sessions   *session.Registry
	CleanupJob *session.CleanupJob
	Metrics    *metrics.Exporter
	Markdown   markdown.Service
	Tracer     *tracing.Tracer

	mergeSemaphore *semaphore.Weighted
}

// NewAPIV1Service builds the service over one loaded table set.
func NewAPIV1Service(secret string, instanceProfile *profile.Profile, storeInstance *store.Store, exporter *metrics.Exporter) (*APIV1Service, error) {
	ts, err := tables.Load(instanceProfile.TablesDir)
	if err != nil {
		return nil, err
	}
	if instanceProfile.TablesDir != "" {
		slog.Info("loaded rule tables with override directory", "dir", instanceProfile.TablesDir)
	}

	assembler := dialogue.NewAssembler(ts)
	rules := routing.NewRuleRegistry(ts)
	rules.RegisterDefaults()

	registry := session.NewRegistry(
		func() *dialogue.Session {
			return dialogue.NewSession(assembler)
		},
		func() *insight.Collector {
			return insight.NewCollector(ts)
		},
	)

	svc := &APIV1Service{
		Secret:    secret,
		Profile:   instanceProfile,
		Store:     storeInstance,
		Tables:    ts,
		Extractor: signals.NewExtractor(ts),
		Assembler: assembler,
		Selector:  wisdom.NewSelector(ts),
		Rules:     rules,
		Sessions:  registry,
		Metrics:   exporter,
		Markdown: markdown.NewService(
			markdown.WithGFMExtension(),
			markdown.WithHardWraps(),
		),
		// Span logging is debug-level noise in production.
		Tracer:         tracing.NewTracer(instanceProfile.IsDev()),
		mergeSemaphore: semaphore.NewWeighted(maxConcurrentMerges),
	}
	svc.CleanupJob = session.NewCleanupJob(registry, session.CleanupConfig{
		IdleTimeout: instanceProfile.SessionIdleDuration(),
	})
	return svc, nil
}

// RegisterRoutes mounts the /api/v1 route group.
func (s *APIV1Service) RegisterRoutes(e *echo.Echo) {
	apiV1 := e.Group("/api/v1")

	// Conversation surface.
	apiV1.POST("/chat/sessions", s.CreateChatSession)
	apiV1.POST("/chat/sessions/:id/messages", s.PostChatMessage)
	apiV1.POST("/chat/sessions/:id/end", s.EndChatSession)

	// Stateless engine surface.
	apiV1.POST("/classify", s.Classify)
	apiV1.POST("/suggestions", s.GetSuggestion)
	apiV1.GET("/wisdom/daily", s.GetDailyWisdom)

	// Pairing and the authenticated profile surface.
	apiV1.POST("/auth/pair", s.PairDevice)
	apiV1.GET("/profiles/:uid", s.GetProfile, s.requireAuth)
	apiV1.DELETE("/profiles/:uid", s.DeleteProfile, s.requireAuth)
	apiV1.GET("/suggestions/events", s.ListSuggestionEvents, s.requireAuth)
	apiV1.POST("/suggestions/events/:id/accept", s.AcceptSuggestionEvent, s.requireAuth)

	// Operational surface.
	apiV1.GET("/system/metrics/overview", s.GetSystemOverview)
}
