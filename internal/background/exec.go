package background

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"go.uber.org/zap"
)

// DefaultBinary is the rembg command line tool
const DefaultBinary = "rembg"

// ExecRemover shells out to `rembg i <in> <out>`
type ExecRemover struct {
	binary string
	logger *zap.Logger
}

// ExecOption configures an ExecRemover
type ExecOption func(*ExecRemover)

// WithBinary overrides the rembg executable
func WithBinary(path string) ExecOption {
	return func(r *ExecRemover) {
		if path != "" {
			r.binary = path
		}
	}
}

// WithExecLogger sets the logger
func WithExecLogger(logger *zap.Logger) ExecOption {
	return func(r *ExecRemover) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewExecRemover creates a remover backed by the rembg process
func NewExecRemover(opts ...ExecOption) *ExecRemover {
	r := &ExecRemover{
		binary: DefaultBinary,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RemoveFile runs rembg from inputPath to outputPath
func (r *ExecRemover) RemoveFile(ctx context.Context, inputPath, outputPath string) error {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.binary, "i", inputPath, outputPath)
	cmd.Stderr = &stderr

	r.logger.Debug("running background removal",
		zap.String("binary", r.binary),
		zap.String("input", inputPath),
		zap.String("output", outputPath))

	if err := cmd.Run(); err != nil {
		return &RemovalError{Remover: r.binary, Stderr: stderr.String(), Err: err}
	}
	if _, err := os.Stat(outputPath); err != nil {
		return &RemovalError{Remover: r.binary, Stderr: stderr.String(), Err: fmt.Errorf("no output written: %w", err)}
	}
	return nil
}

// Remove round-trips image through temp files in a private directory
func (r *ExecRemover) Remove(ctx context.Context, image []byte) ([]byte, error) {
	dir, err := os.MkdirTemp("", "poseperfect-rembg-")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	in := filepath.Join(dir, "input")
	out := filepath.Join(dir, "output.png")
	if err := os.WriteFile(in, image, 0o600); err != nil {
		return nil, fmt.Errorf("failed to stage input: %w", err)
	}

	if err := r.RemoveFile(ctx, in, out); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(out)
	if err != nil {
		return nil, &RemovalError{Remover: r.binary, Err: err}
	}
	return data, nil
}

// Close is a no-op; the process exits after every call
func (r *ExecRemover) Close() error {
	return nil
}
