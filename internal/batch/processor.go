// Package batch prepares a directory of photos for dataset use: background
// removal, alpha flattening and lighting normalization per file.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/dudu/poseperfect/internal/background"
	"github.com/dudu/poseperfect/internal/imaging"
	"github.com/dudu/poseperfect/internal/metrics"
	"github.com/dudu/poseperfect/internal/pipeline"
)

const tempPrefix = "temp_"

var imageExtensions = []string{".png", ".jpg", ".jpeg"}

// FileRemover removes the background of the image at inputPath and writes
// the result to outputPath
type FileRemover interface {
	RemoveFile(ctx context.Context, inputPath, outputPath string) error
}

// Summary counts what a run did
type Summary struct {
	Found     int
	Succeeded int
	Failed    int
	// Errors maps a failed file name to its error
	Errors map[string]error
}

// Option configures a Processor
type Option func(*Processor)

// WithOutput sets where human-readable progress is written
func WithOutput(w io.Writer) Option {
	return func(p *Processor) {
		if w != nil {
			p.out = w
		}
	}
}

// WithConfig sets the flattening and lighting parameters
func WithConfig(config pipeline.Config) Option {
	return func(p *Processor) {
		p.config = config
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(p *Processor) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithMetrics counts processed files
func WithMetrics(m *metrics.Manager) Option {
	return func(p *Processor) {
		p.metrics = m
	}
}

// Processor runs the dataset preparation over a directory
type Processor struct {
	remover FileRemover
	config  pipeline.Config
	out     io.Writer
	logger  *zap.Logger
	metrics *metrics.Manager
}

// NewProcessor creates a processor around remover
func NewProcessor(remover FileRemover, opts ...Option) *Processor {
	p := &Processor{
		remover: remover,
		config:  pipeline.DefaultConfig(),
		out:     io.Discard,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run processes every image directly inside inputDir into outputDir under
// the same file name. A failing file is reported and skipped; only errors
// that prevent the run as a whole are returned.
func (p *Processor) Run(ctx context.Context, inputDir, outputDir string) (Summary, error) {
	summary := Summary{Errors: make(map[string]error)}

	if err := p.config.Lighting.Validate(); err != nil {
		return summary, err
	}

	if _, err := os.Stat(outputDir); errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(outputDir, 0o755); err != nil {
			return summary, fmt.Errorf("failed to create output directory: %w", err)
		}
		p.printf("Created output directory: %s\n", outputDir)
	}

	files, err := ListImages(inputDir)
	if err != nil {
		return summary, err
	}
	if len(files) == 0 {
		p.printf("No images found in %s\n", inputDir)
		return summary, nil
	}

	summary.Found = len(files)
	p.printf("Found %d images to process.\n", len(files))

	for _, name := range files {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		p.printf("\n--- Processing %s ---\n", name)
		if err := p.processFile(ctx, name, inputDir, outputDir); err != nil {
			summary.Failed++
			summary.Errors[name] = err
			p.metrics.RecordBatchFile(metrics.OutcomeError)
			p.logger.Error("failed to process image", zap.String("file", name), zap.Error(err))

			var removalErr *background.RemovalError
			if errors.As(err, &removalErr) {
				p.printf("  [ERROR] Background removal failed for %s.\n", name)
				p.printf("  - STDERR: %s\n", strings.TrimSpace(removalErr.Stderr))
			} else {
				p.printf("  [ERROR] Failed to process %s: %v\n", name, err)
			}
			continue
		}

		summary.Succeeded++
		p.metrics.RecordBatchFile(metrics.OutcomeSuccess)
		p.logger.Info("processed image", zap.String("file", name))
		p.printf("  -> Successfully saved %s\n", name)
	}

	p.printf("\n--- All processing complete. ---\n")
	return summary, nil
}

func (p *Processor) processFile(ctx context.Context, name, inputDir, outputDir string) error {
	inputPath := filepath.Join(inputDir, name)
	outputPath := filepath.Join(outputDir, name)
	tempPath := filepath.Join(outputDir, tempPrefix+name)
	defer os.Remove(tempPath)

	p.printf("  [1/4] Removing background...\n")
	if err := p.remover.RemoveFile(ctx, inputPath, tempPath); err != nil {
		return err
	}

	p.printf("  [2/4] Reading temporary file...\n")
	cutout, err := imaging.ReadFile(tempPath)
	if err != nil {
		return err
	}
	defer cutout.Close()

	p.printf("  [3/4] Normalizing lighting...\n")
	normalized, err := pipeline.Normalize(cutout, p.config)
	if err != nil {
		return err
	}
	defer normalized.Close()

	p.printf("  [4/4] Saving final image to: %s\n", outputPath)
	return imaging.WriteFile(outputPath, normalized)
}

func (p *Processor) printf(format string, args ...any) {
	fmt.Fprintf(p.out, format, args...)
}

// ListImages returns the .png, .jpg and .jpeg files directly inside dir,
// sorted by name. Extensions match case-insensitively.
func ListImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		for _, want := range imageExtensions {
			if ext == want {
				files = append(files, e.Name())
				break
			}
		}
	}
	return files, nil
}
