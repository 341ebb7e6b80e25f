// Package analysis runs static image and dynamic routine analyses and
// assembles their reports.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dudu/poseperfect/internal/anatomy"
	"github.com/dudu/poseperfect/internal/imaging"
	"github.com/dudu/poseperfect/internal/metrics"
	"github.com/dudu/poseperfect/internal/pipeline"
	"github.com/dudu/poseperfect/internal/pose"
	"github.com/dudu/poseperfect/internal/routine"
	"github.com/dudu/poseperfect/internal/scoring"
)

// Preprocessor prepares a still image for analysis
type Preprocessor interface {
	Preprocess(ctx context.Context, image []byte) (*pipeline.Result, error)
	LastTiming() pipeline.Timing
}

// Option configures an Analyzer
type Option func(*Analyzer)

// WithAnatomy replaces the muscularity and conditioning providers
func WithAnatomy(muscularity, conditioning anatomy.Provider) Option {
	return func(a *Analyzer) {
		if muscularity != nil {
			a.muscularity = muscularity
		}
		if conditioning != nil {
			a.conditioning = conditioning
		}
	}
}

// WithDeconstructor enables routine analysis
func WithDeconstructor(d routine.Deconstructor) Option {
	return func(a *Analyzer) {
		a.deconstructor = d
	}
}

// WithPhaseAnalyzers replaces the per-phase analyzers
func WithPhaseAnalyzers(stability routine.StabilityAnalyzer, presence routine.PresenceAnalyzer, flow routine.FlowAnalyzer) Option {
	return func(a *Analyzer) {
		if stability != nil {
			a.stability = stability
		}
		if presence != nil {
			a.presence = presence
		}
		if flow != nil {
			a.flow = flow
		}
	}
}

// WithVisibilityThreshold sets the landmark confidence the ratio points must exceed
func WithVisibilityThreshold(threshold float64) Option {
	return func(a *Analyzer) {
		a.visibility = threshold
	}
}

// WithRunIDs overrides how report run IDs are generated
func WithRunIDs(next func() string) Option {
	return func(a *Analyzer) {
		if next != nil {
			a.newRunID = next
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(a *Analyzer) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithMetrics records analysis outcomes
func WithMetrics(m *metrics.Manager) Option {
	return func(a *Analyzer) {
		a.metrics = m
	}
}

// Analyzer is the entry point for both analysis modes
type Analyzer struct {
	preprocessor  Preprocessor
	muscularity   anatomy.Provider
	conditioning  anatomy.Provider
	deconstructor routine.Deconstructor
	stability     routine.StabilityAnalyzer
	presence      routine.PresenceAnalyzer
	flow          routine.FlowAnalyzer
	visibility    float64
	newRunID      func() string
	logger        *zap.Logger
	metrics       *metrics.Manager
}

// New creates an analyzer. Anatomy providers and phase analyzers default
// to their placeholder implementations.
func New(preprocessor Preprocessor, opts ...Option) *Analyzer {
	placeholder := routine.PlaceholderAnalyzer{}
	a := &Analyzer{
		preprocessor: preprocessor,
		muscularity:  anatomy.MuscularityStub{},
		conditioning: anatomy.ConditioningStub{},
		stability:    placeholder,
		presence:     placeholder,
		flow:         placeholder,
		visibility:   pose.DefaultVisibilityThreshold,
		newRunID:     func() string { return uuid.NewString() },
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AnalyzeImage scores one still image
func (a *Analyzer) AnalyzeImage(ctx context.Context, req Request, image []byte) (*StaticReport, error) {
	if req.Mode() != Static {
		return nil, fmt.Errorf("%w: %s request for image analysis", ErrModeMismatch, req.Mode())
	}
	if a.preprocessor == nil {
		return nil, errors.New("no preprocessor configured")
	}

	report := &StaticReport{
		RunID:   a.newRunID(),
		Request: req,
	}
	logger := a.logger.With(zap.String("run_id", report.RunID), zap.String("division", string(req.Division())))

	result, err := a.preprocessor.Preprocess(ctx, image)
	if err != nil {
		a.metrics.RecordAnalysis("static", metrics.OutcomeError)
		return nil, fmt.Errorf("preprocessing failed: %w", err)
	}
	defer result.Close()
	report.Timing = a.preprocessor.LastTiming()

	report.Annotated, err = imaging.EncodePNG(result.Annotated)
	if err != nil {
		a.metrics.RecordAnalysis("static", metrics.OutcomeError)
		return nil, err
	}

	if !result.Detection.Found() {
		report.Message = NoPoseMessage
		logger.Info("no pose detected")
		a.metrics.RecordAnalysis("static", metrics.OutcomeNoPose)
		return report, nil
	}
	report.PoseDetected = true

	ratio := pose.ShoulderWaistRatioWithThreshold(result.Detection, result.Width, result.Height, a.visibility)
	report.Ratio = ratio.Value
	if !ratio.Valid() {
		report.RatioIssue = ratio.Reason.Error()
		a.metrics.RecordDegenerateRatio()
		logger.Warn("shoulder-to-waist ratio unavailable", zap.Error(ratio.Reason))
	}
	report.Symmetry = scoring.ScoreRatio(ratio.Value)

	start := time.Now()
	muscularity, err := a.muscularity.Analyze(result.Annotated)
	if err != nil {
		a.metrics.RecordAnalysis("static", metrics.OutcomeError)
		return nil, fmt.Errorf("muscularity analysis failed: %w", err)
	}
	conditioning, err := a.conditioning.Analyze(result.Annotated)
	if err != nil {
		a.metrics.RecordAnalysis("static", metrics.OutcomeError)
		return nil, fmt.Errorf("conditioning analysis failed: %w", err)
	}
	a.metrics.ObserveStage(metrics.StageAnatomy, time.Since(start))
	report.Muscularity = &muscularity
	report.Conditioning = &conditioning

	report.TotalPackage, err = scoring.TotalPackageWithWeights(req.Weights(),
		report.Symmetry, muscularity.Overall(), conditioning.Overall())
	if err != nil {
		a.metrics.RecordAnalysis("static", metrics.OutcomeError)
		return nil, err
	}
	report.Coaching = CoachingNotes(report.Symmetry)

	logger.Info("static analysis complete",
		zap.Float64("ratio", report.Ratio),
		zap.Int("symmetry", int(report.Symmetry)),
		zap.Int("total_package", int(report.TotalPackage)))
	a.metrics.RecordAnalysis("static", metrics.OutcomeSuccess)
	return report, nil
}

// AnalyzeRoutine deconstructs a routine video and scores each phase
func (a *Analyzer) AnalyzeRoutine(ctx context.Context, req Request, video []byte) (*RoutineReport, error) {
	if req.Mode() != Dynamic {
		return nil, fmt.Errorf("%w: %s request for routine analysis", ErrModeMismatch, req.Mode())
	}
	if a.deconstructor == nil {
		return nil, ErrNoDeconstructor
	}

	var (
		timeline routine.Timeline
		track    []routine.TimedDetection
		err      error
	)
	if tracker, ok := a.deconstructor.(routine.TrackingDeconstructor); ok {
		timeline, track, err = tracker.DeconstructTrack(ctx, video)
	} else {
		timeline, err = a.deconstructor.Deconstruct(ctx, video)
	}
	if err == nil {
		err = timeline.Validate()
	}
	if err != nil {
		a.metrics.RecordAnalysis("dynamic", metrics.OutcomeError)
		return nil, fmt.Errorf("routine deconstruction failed: %w", err)
	}

	report := &RoutineReport{
		RunID:    a.newRunID(),
		Request:  req,
		Duration: timeline.End(),
		Phases:   make([]PhaseReport, 0, len(timeline)),
	}
	for _, phase := range timeline {
		frames := routine.FramesFor(phase, track)
		pr := PhaseReport{Phase: phase, Seconds: phase.Duration()}
		switch phase.Type {
		case routine.HeldPose:
			stability := a.stability.Stability(frames)
			presence := a.presence.Presence(frames)
			pr.Stability = &stability
			pr.Presence = &presence
		case routine.Transition:
			flow := a.flow.Flow(frames)
			pr.Flow = &flow
		}
		report.Phases = append(report.Phases, pr)
	}

	a.logger.Info("routine analysis complete",
		zap.String("run_id", report.RunID),
		zap.Int("phases", len(report.Phases)),
		zap.Float64("duration", report.Duration))
	a.metrics.RecordAnalysis("dynamic", metrics.OutcomeSuccess)
	return report, nil
}
