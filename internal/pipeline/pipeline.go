package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"
	"gocv.io/x/gocv"

	"github.com/dudu/poseperfect/internal/background"
	"github.com/dudu/poseperfect/internal/detector"
	"github.com/dudu/poseperfect/internal/imaging"
	"github.com/dudu/poseperfect/internal/metrics"
	"github.com/dudu/poseperfect/internal/pose"
)

// Config holds pipeline configuration
type Config struct {
	Backdrop imaging.Backdrop
	Lighting imaging.LightingParams
}

// DefaultConfig flattens over black and equalizes with clip 2.0 on an 8x8 grid
func DefaultConfig() Config {
	return Config{
		Backdrop: imaging.DefaultBackdrop,
		Lighting: imaging.DefaultLighting(),
	}
}

// Timing holds performance timing information
type Timing struct {
	BackgroundRemoval time.Duration `json:"background_removal"`
	Flatten           time.Duration `json:"flatten"`
	Lighting          time.Duration `json:"lighting"`
	Detection         time.Duration `json:"detection"`
	Annotation        time.Duration `json:"annotation"`
	Total             time.Duration `json:"total"`
}

// Result is the output of one static preprocessing run. The caller owns
// both images and must Close the result.
type Result struct {
	// Normalized is the flattened, lighting-normalized image landmarks were detected on
	Normalized gocv.Mat
	// Annotated is a copy of Normalized with the skeleton drawn when a pose was found
	Annotated gocv.Mat
	Detection pose.Detection
	Width     int
	Height    int
}

// Close releases both images
func (r *Result) Close() error {
	r.Normalized.Close()
	r.Annotated.Close()
	return nil
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithMetrics records stage latencies and failures
func WithMetrics(m *metrics.Manager) Option {
	return func(p *Pipeline) {
		p.metrics = m
	}
}

// Pipeline runs background removal, alpha flattening, lighting
// normalization and landmark detection strictly in that order
type Pipeline struct {
	config     Config
	remover    BackgroundRemover
	detector   LandmarkDetector
	logger     *zap.Logger
	metrics    *metrics.Manager
	lastTiming Timing
}

// New creates a preprocessing pipeline. Collaborators that implement
// io.Closer are closed by Close.
func New(remover BackgroundRemover, det LandmarkDetector, config Config, opts ...Option) (*Pipeline, error) {
	if remover == nil {
		return nil, fmt.Errorf("background remover is required")
	}
	if det == nil {
		return nil, fmt.Errorf("landmark detector is required")
	}
	if err := config.Lighting.Validate(); err != nil {
		return nil, err
	}
	if _, err := imaging.ParseBackdrop(string(config.Backdrop)); err != nil {
		return nil, err
	}

	p := &Pipeline{
		config:   config,
		remover:  remover,
		detector: det,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Preprocess prepares one still image for static analysis. A background
// removal failure aborts the run; finding no pose does not.
func (p *Pipeline) Preprocess(ctx context.Context, data []byte) (*Result, error) {
	totalStart := time.Now()
	var timing Timing

	if err := imaging.Validate(data); err != nil {
		return nil, err
	}

	// Remove background
	start := time.Now()
	removed, err := p.remover.Remove(ctx, data)
	timing.BackgroundRemoval = time.Since(start)
	p.metrics.ObserveStage(metrics.StageBackgroundRemoval, timing.BackgroundRemoval)
	if err != nil {
		p.metrics.RecordRemovalFailure()
		p.logger.Error("background removal failed", zap.Error(err))
		return nil, asRemovalFailure(err)
	}

	cutout, err := imaging.Decode(removed)
	if err != nil {
		p.metrics.RecordRemovalFailure()
		return nil, asRemovalFailure(fmt.Errorf("unreadable output: %w", err))
	}
	defer cutout.Close()

	// Flatten alpha
	start = time.Now()
	flat, err := imaging.Flatten(cutout, p.config.Backdrop)
	timing.Flatten = time.Since(start)
	p.metrics.ObserveStage(metrics.StageFlatten, timing.Flatten)
	if err != nil {
		return nil, fmt.Errorf("flatten failed: %w", err)
	}
	defer flat.Close()

	// Normalize lighting
	start = time.Now()
	normalized, err := imaging.NormalizeLighting(flat, p.config.Lighting)
	timing.Lighting = time.Since(start)
	p.metrics.ObserveStage(metrics.StageLighting, timing.Lighting)
	if err != nil {
		return nil, fmt.Errorf("lighting normalization failed: %w", err)
	}

	// Detect landmarks
	start = time.Now()
	detection, err := p.detector.Detect(normalized)
	timing.Detection = time.Since(start)
	p.metrics.ObserveStage(metrics.StageDetection, timing.Detection)
	if err != nil {
		normalized.Close()
		return nil, fmt.Errorf("landmark detection failed: %w", err)
	}
	if !detection.Found() {
		p.metrics.RecordNoPose()
		p.logger.Info("no pose detected")
	}

	start = time.Now()
	annotated := detector.Annotate(normalized, detection)
	timing.Annotation = time.Since(start)
	p.metrics.ObserveStage(metrics.StageAnnotation, timing.Annotation)

	timing.Total = time.Since(totalStart)
	p.lastTiming = timing

	p.logger.Debug("preprocessed image",
		zap.Bool("pose_detected", detection.Found()),
		zap.Duration("total", timing.Total))

	return &Result{
		Normalized: normalized,
		Annotated:  annotated,
		Detection:  detection,
		Width:      normalized.Cols(),
		Height:     normalized.Rows(),
	}, nil
}

// Normalize flattens and lighting-normalizes an already background-removed
// image, returning a new BGR image
func (p *Pipeline) Normalize(img gocv.Mat) (gocv.Mat, error) {
	return Normalize(img, p.config)
}

// Normalize is the configuration-only form of Pipeline.Normalize
func Normalize(img gocv.Mat, config Config) (gocv.Mat, error) {
	flat, err := imaging.Flatten(img, config.Backdrop)
	if err != nil {
		return gocv.NewMat(), err
	}
	defer flat.Close()

	return imaging.NormalizeLighting(flat, config.Lighting)
}

func asRemovalFailure(err error) error {
	if errors.Is(err, background.ErrRemovalFailed) {
		return err
	}
	return fmt.Errorf("%w: %w", background.ErrRemovalFailed, err)
}

// LastTiming returns timing from last Preprocess call
func (p *Pipeline) LastTiming() Timing {
	return p.lastTiming
}

// Close releases pipeline resources
func (p *Pipeline) Close() error {
	var errs []error

	if c, ok := p.remover.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if c, ok := p.detector.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("cleanup errors: %v", errs)
	}
	return nil
}
