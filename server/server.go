// Package server assembles the echo HTTP server around the engine's
// REST surface: middleware, routes, background jobs, and graceful
// shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/hisr2024/MindVibe-sub009/ai/metrics"
	"github.com/hisr2024/MindVibe-sub009/ai/observability/logging"
	"github.com/hisr2024/MindVibe-sub009/internal/profile"
	"github.com/hisr2024/MindVibe-sub009/plugin/markdown"
	apiv1 "github.com/hisr2024/MindVibe-sub009/server/router/api/v1"
	"github.com/hisr2024/MindVibe-sub009/server/router/feed"
	"github.com/hisr2024/MindVibe-sub009/store"
)

// Server is the assembled HTTP server.
type Server struct {
	Profile *profile.Profile
	Store   *store.Store

	echoServer *echo.Echo
	apiV1      *apiv1.APIV1Service
	exporter   *metrics.Exporter
}

// NewServer creates the server: engine wiring, middleware stack, route
// registration. It does not start listening.
func NewServer(ctx context.Context, instanceProfile *profile.Profile, storeInstance *store.Store) (*Server, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	exporter := metrics.NewExporter(metrics.DefaultConfig())

	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.Gzip())
	e.Use(middleware.Secure())
	e.Use(middleware.RequestID())
	e.Use(requestLogger())
	e.Use(requestMetrics(exporter))
	e.Use(middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Skipper: func(c echo.Context) bool {
			// Operational endpoints are never rate limited.
			return !strings.HasPrefix(c.Path(), "/api/v1/")
		},
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(instanceProfile.RateLimitRPS),
			Burst:     instanceProfile.RateLimitBurst,
			ExpiresIn: 3 * time.Minute,
		}),
	}))

	apiV1Service, err := apiv1.NewAPIV1Service(instanceProfile.JWTSecret, instanceProfile, storeInstance, exporter)
	if err != nil {
		return nil, err
	}
	apiV1Service.RegisterRoutes(e)

	feedService := feed.NewFeedService(
		instanceProfile,
		apiV1Service.Selector,
		markdown.NewService(markdown.WithGFMExtension(), markdown.WithHardWraps()),
	)
	feedService.RegisterRoutes(e)

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "Service ready.")
	})
	e.GET("/metrics", echo.WrapHandler(exporter.Handler()))

	server := &Server{
		Profile:    instanceProfile,
		Store:      storeInstance,
		echoServer: e,
		apiV1:      apiV1Service,
		exporter:   exporter,
	}

	apiV1Service.CleanupJob.Start(ctx)

	return server, nil
}

// Start begins serving in a background goroutine.
func (s *Server) Start(_ context.Context) error {
	address := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	if s.Profile.UNIXSock != "" {
		s.echoServer.ListenerNetwork = "unix"
		address = s.Profile.UNIXSock
	}
	go func() {
		if err := s.echoServer.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("failed to start echo server", "error", err)
		}
	}()
	return nil
}

// Shutdown drains in-flight requests, stops the background jobs, and
// closes the store.
func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	s.apiV1.CleanupJob.Stop()

	if err := s.echoServer.Shutdown(ctx); err != nil {
		slog.Error("failed to shutdown server", "error", err)
	}

	if err := s.Store.Close(); err != nil {
		slog.Error("failed to close database", "error", err)
	}

	slog.Info("mindvibe stopped properly")
}

// requestMetrics records one counter/histogram sample per request,
// labeled by route pattern rather than raw path so cardinality stays
// bounded.
func requestMetrics(exporter *metrics.Exporter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				var httpErr *echo.HTTPError
				if errors.As(err, &httpErr) {
					status = httpErr.Code
				} else {
					status = http.StatusInternalServerError
				}
			}
			exporter.RecordHTTPRequest(c.Request().Method, c.Path(), status, time.Since(start))
			logging.From(c.Request().Context()).Debug("http request",
				"status", status,
				"latency", time.Since(start).String(),
			)
			return err
		}
	}
}

// requestLogger stashes a request-scoped logger in the request context
// so every handler and engine stage downstream logs with the same
// request fields.
func requestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			logger := slog.Default().With(
				"requestId", c.Response().Header().Get(echo.HeaderXRequestID),
				"method", req.Method,
				"path", c.Path(),
			)
			c.SetRequest(req.WithContext(logging.With(req.Context(), logger)))
			return next(c)
		}
	}
}
