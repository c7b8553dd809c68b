// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/pdiddy/apa-formatter/internal/container"
	"github.com/pdiddy/apa-formatter/pkg/types"
)

// MarkitdownExtractor converts documents by piping them through a
// markitdown container image and reading the Markdown it prints. It
// depends on a container.Runtime (docker or podman) injected at
// construction time.
type MarkitdownExtractor struct {
	runtime container.Runtime
	image   string
	timeout time.Duration
}

// NewMarkitdownExtractor verifies that cfg.Image exists in rt before
// returning.
func NewMarkitdownExtractor(ctx context.Context, rt container.Runtime, cfg types.ConvertConfig) (*MarkitdownExtractor, error) {
	if cfg.Image == "" {
		return nil, fmt.Errorf("no converter image configured")
	}
	if err := rt.ImageExists(ctx, cfg.Image); err != nil {
		return nil, fmt.Errorf("converter image not available in %s: %w", rt.Name(), err)
	}
	return &MarkitdownExtractor{runtime: rt, image: cfg.Image, timeout: cfg.Timeout}, nil
}

// Extract implements Extractor.
func (m *MarkitdownExtractor) Extract(ctx context.Context, data []byte) (types.RawDocument, error) {
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	var out bytes.Buffer
	if err := m.runtime.Run(ctx, m.image, bytes.NewReader(data), &out); err != nil {
		return types.RawDocument{}, fmt.Errorf("converting with %s: %w", m.image, err)
	}
	if out.Len() == 0 {
		return types.RawDocument{}, fmt.Errorf("%s produced empty output", m.image)
	}
	return TextExtractor{Markdown: true}.Extract(ctx, out.Bytes())
}

// RegisterContainer detects a container runtime and binds cfg.Extensions
// to a MarkitdownExtractor. It returns an error, leaving r unchanged, when
// no runtime or image is available.
func (r *Registry) RegisterContainer(ctx context.Context, cfg types.ConvertConfig) error {
	rt, err := container.DetectRuntime(ctx)
	if err != nil {
		return err
	}
	return r.registerContainer(ctx, rt, cfg)
}

func (r *Registry) registerContainer(ctx context.Context, rt container.Runtime, cfg types.ConvertConfig) error {
	m, err := NewMarkitdownExtractor(ctx, rt, cfg)
	if err != nil {
		return err
	}
	for _, ext := range cfg.Extensions {
		r.Register(ext, m)
	}
	return nil
}
