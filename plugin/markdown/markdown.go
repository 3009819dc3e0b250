// Package markdown renders curated markdown content (wisdom entries,
// feed bodies) to HTML. It wraps goldmark behind a small service
// interface so callers never touch parser configuration.
package markdown

import (
	"bytes"

	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Service renders markdown source to HTML.
type Service interface {
	Render(source string) (string, error)
}

type service struct {
	md goldmark.Markdown
}

// Option configures the markdown service.
type Option func(*config)

type config struct {
	extensions []goldmark.Extender
	hardWraps  bool
}

// WithGFMExtension enables GitHub-flavored markdown (tables,
// strikethrough, autolinks).
func WithGFMExtension() Option {
	return func(c *config) {
		c.extensions = append(c.extensions, extension.GFM)
	}
}

// WithHardWraps renders single newlines as <br> elements, matching how
// the wisdom entries are authored.
func WithHardWraps() Option {
	return func(c *config) {
		c.hardWraps = true
	}
}

// NewService creates a markdown rendering service.
func NewService(opts ...Option) Service {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	rendererOpts := []goldmark.Option{
		goldmark.WithExtensions(cfg.extensions...),
	}
	if cfg.hardWraps {
		rendererOpts = append(rendererOpts, goldmark.WithRendererOptions(html.WithHardWraps()))
	}

	return &service{md: goldmark.New(rendererOpts...)}
}

// Render converts markdown source to HTML.
func (s *service) Render(source string) (string, error) {
	var buf bytes.Buffer
	if err := s.md.Convert([]byte(source), &buf); err != nil {
		return "", errors.Wrap(err, "failed to render markdown")
	}
	return buf.String(), nil
}
