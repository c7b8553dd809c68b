// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package container runs document converters as throwaway containers under
// docker or podman. A converter reads the source document on stdin and
// prints Markdown on stdout. It runs without network access on a read-only
// root filesystem with a scratch /tmp.
package container

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"slices"
	"strings"
)

// Engine binaries, in detection order.
const (
	Docker = "docker"
	Podman = "podman"
)

// stderrTail is how much converter stderr is kept for error messages.
const stderrTail = 4 << 10

// Runtime runs converter images.
type Runtime interface {
	// Name returns the engine binary ("docker" or "podman").
	Name() string

	// Available reports whether the engine is on PATH and its daemon or
	// service answers "info".
	Available(ctx context.Context) bool

	// ImageExists returns nil when image is present locally.
	ImageExists(ctx context.Context, image string) error

	// Run starts a sandboxed container from image, streams stdin into it
	// and its stdout to stdout. Cancelling ctx kills the container process.
	Run(ctx context.Context, image string, stdin io.Reader, stdout io.Writer) error
}

// sandboxArgs follow "run" on every converter invocation.
var sandboxArgs = []string{
	"--rm", "-i",
	"--network", "none",
	"--read-only", "--tmpfs", "/tmp",
	"--security-opt", "no-new-privileges",
}

// engines lists the supported CLIs in detection order. They differ only in
// the subcommand that checks for a local image.
var engines = []struct {
	bin        string
	imageProbe []string
}{
	{bin: Docker, imageProbe: []string{"image", "inspect"}},
	{bin: Podman, imageProbe: []string{"image", "exists"}},
}

// invocation is one call of an engine binary.
type invocation struct {
	args   []string
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// commander resolves and runs engine binaries; tests substitute it.
type commander interface {
	lookPath(bin string) error
	run(ctx context.Context, bin string, inv invocation) error
}

type osCommander struct{}

func (osCommander) lookPath(bin string) error {
	_, err := exec.LookPath(bin)
	return err
}

func (osCommander) run(ctx context.Context, bin string, inv invocation) error {
	cmd := exec.CommandContext(ctx, bin, inv.args...)
	cmd.Stdin = inv.stdin
	cmd.Stdout = inv.stdout
	cmd.Stderr = inv.stderr
	return cmd.Run()
}

// engine implements Runtime on top of a docker-compatible CLI.
type engine struct {
	bin        string
	imageProbe []string
	cmd        commander
}

// newEngine returns the engine for bin, or nil when bin is not supported.
func newEngine(bin string, cmd commander) *engine {
	for _, e := range engines {
		if e.bin == bin {
			return &engine{bin: e.bin, imageProbe: e.imageProbe, cmd: cmd}
		}
	}
	return nil
}

func (e *engine) Name() string { return e.bin }

func (e *engine) Available(ctx context.Context) bool {
	if e.cmd.lookPath(e.bin) != nil {
		return false
	}
	return e.cmd.run(ctx, e.bin, invocation{args: []string{"info"}}) == nil
}

func (e *engine) ImageExists(ctx context.Context, image string) error {
	args := append(slices.Clone(e.imageProbe), image)
	if err := e.cmd.run(ctx, e.bin, invocation{args: args}); err != nil {
		return fmt.Errorf("%s has no image %s: %w", e.bin, image, err)
	}
	return nil
}

func (e *engine) Run(ctx context.Context, image string, stdin io.Reader, stdout io.Writer) error {
	args := append(append([]string{"run"}, sandboxArgs...), image)
	stderr := &tailBuffer{limit: stderrTail}
	err := e.cmd.run(ctx, e.bin, invocation{args: args, stdin: stdin, stdout: stdout, stderr: stderr})
	switch {
	case err == nil:
		return nil
	case ctx.Err() != nil:
		return fmt.Errorf("%s run: %w", e.bin, ctx.Err())
	}
	if msg := stderr.lastLine(); msg != "" {
		return fmt.Errorf("%s run: %w: %s", e.bin, err, msg)
	}
	return fmt.Errorf("%s run: %w", e.bin, err)
}

// tailBuffer keeps the last limit bytes written to it.
type tailBuffer struct {
	buf   []byte
	limit int
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.limit; over > 0 {
		t.buf = t.buf[over:]
	}
	return len(p), nil
}

// lastLine returns the last non-blank line, which is where converters
// print their error.
func (t *tailBuffer) lastLine() string {
	text := strings.TrimSpace(string(t.buf))
	if i := strings.LastIndexByte(text, '\n'); i >= 0 {
		text = text[i+1:]
	}
	return strings.TrimSpace(text)
}

// DetectRuntime returns the first working engine, docker before podman.
func DetectRuntime(ctx context.Context) (Runtime, error) {
	return detect(ctx, osCommander{})
}

func detect(ctx context.Context, cmd commander) (Runtime, error) {
	tried := make([]string, 0, len(engines))
	for _, spec := range engines {
		e := newEngine(spec.bin, cmd)
		if e.Available(ctx) {
			return e, nil
		}
		tried = append(tried, spec.bin)
	}
	return nil, fmt.Errorf("no container runtime found (tried %s)", strings.Join(tried, ", "))
}
