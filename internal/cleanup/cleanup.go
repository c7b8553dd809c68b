// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cleanup wraps an optional hosted model that tidies pasted text
// before formatting. The Service absorbs every provider failure and returns
// the original text, so callers never see a cleanup error.
package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/apa-formatter/pkg/types"
)

// Provider rewrites text with a hosted model.
type Provider interface {
	Name() string
	Clean(ctx context.Context, text string) (string, error)
}

// NewProvider returns the provider named by cfg.Provider, or nil when
// cleanup is disabled.
func NewProvider(cfg types.CleanupConfig) (Provider, error) {
	switch cfg.Provider {
	case "":
		return nil, nil
	case types.CleanupHuggingFace:
		return NewHuggingFaceProvider(cfg)
	case types.CleanupOpenAI:
		return NewOpenAIProvider(cfg)
	default:
		return nil, fmt.Errorf("unknown cleanup provider %q", cfg.Provider)
	}
}

// Service applies a Provider under a rate limit and a per-call timeout.
// The zero Service and a nil *Service pass text through unchanged.
type Service struct {
	provider Provider
	limiter  *rate.Limiter
	timeout  time.Duration
}

// NewService builds a Service from cfg. A disabled provider yields a
// pass-through service.
func NewService(cfg types.CleanupConfig) (*Service, error) {
	p, err := NewProvider(cfg)
	if err != nil {
		return nil, err
	}
	return newService(p, cfg), nil
}

func newService(p Provider, cfg types.CleanupConfig) *Service {
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}
	return &Service{
		provider: p,
		limiter:  rate.NewLimiter(rate.Limit(rps), 1),
		timeout:  cfg.Timeout,
	}
}

// Enabled reports whether a provider is configured.
func (s *Service) Enabled() bool {
	return s != nil && s.provider != nil
}

// Clean returns the provider's rewrite of text, or text itself when cleanup
// is disabled, the provider fails, or it returns nothing.
func (s *Service) Clean(ctx context.Context, text string) string {
	if !s.Enabled() || strings.TrimSpace(text) == "" {
		return text
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	if err := s.limiter.Wait(ctx); err != nil {
		slog.Warn("text cleanup skipped", "provider", s.provider.Name(), "error", err)
		return text
	}

	out, err := s.provider.Clean(ctx, text)
	if err != nil {
		slog.Warn("text cleanup failed, using original text", "provider", s.provider.Name(), "error", err)
		return text
	}
	if strings.TrimSpace(out) == "" {
		slog.Warn("text cleanup returned empty output, using original text", "provider", s.provider.Name())
		return text
	}
	return out
}
