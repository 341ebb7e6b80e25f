package video

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
	"gocv.io/x/gocv"

	"github.com/dudu/poseperfect/internal/metrics"
	"github.com/dudu/poseperfect/internal/pose"
	"github.com/dudu/poseperfect/internal/routine"
)

// DefaultSampleInterval is the spacing in seconds between analyzed frames
const DefaultSampleInterval = 0.2

// LandmarkDetector finds the body landmarks in one frame
type LandmarkDetector interface {
	Detect(img gocv.Mat) (pose.Detection, error)
}

// Option configures a Deconstructor
type Option func(*Deconstructor)

// WithSampleInterval sets the spacing between analyzed frames
func WithSampleInterval(seconds float64) Option {
	return func(d *Deconstructor) {
		if seconds > 0 {
			d.sampleInterval = seconds
		}
	}
}

// WithMinDwell sets how long a pose must persist to be held
func WithMinDwell(seconds float64) Option {
	return func(d *Deconstructor) {
		d.segmenter = routine.NewSegmenter(seconds)
	}
}

// WithLabeler overrides the per-frame pose labeler
func WithLabeler(l routine.StillnessLabeler) Option {
	return func(d *Deconstructor) {
		d.labeler = l
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(d *Deconstructor) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithMetrics records deconstruction latency
func WithMetrics(m *metrics.Manager) Option {
	return func(d *Deconstructor) {
		d.metrics = m
	}
}

// Deconstructor samples a routine video, labels each sample as a held pose
// or movement and segments the labels into a timeline
type Deconstructor struct {
	detector       LandmarkDetector
	labeler        routine.StillnessLabeler
	segmenter      *routine.Segmenter
	sampleInterval float64
	logger         *zap.Logger
	metrics        *metrics.Manager
}

// NewDeconstructor creates a deconstructor backed by det
func NewDeconstructor(det LandmarkDetector, opts ...Option) *Deconstructor {
	d := &Deconstructor{
		detector:       det,
		labeler:        routine.NewStillnessLabeler(routine.DefaultMaxMotion),
		segmenter:      routine.NewSegmenter(routine.DefaultMinDwell),
		sampleInterval: DefaultSampleInterval,
		logger:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Deconstruct returns the routine timeline of video
func (d *Deconstructor) Deconstruct(ctx context.Context, video []byte) (routine.Timeline, error) {
	timeline, _, err := d.DeconstructTrack(ctx, video)
	return timeline, err
}

// DeconstructTrack returns the timeline together with the sampled landmarks
func (d *Deconstructor) DeconstructTrack(ctx context.Context, video []byte) (routine.Timeline, []routine.TimedDetection, error) {
	if len(video) == 0 {
		return nil, nil, routine.ErrEmptyVideo
	}
	start := time.Now()
	defer func() {
		d.metrics.ObserveStage(metrics.StageDeconstruction, time.Since(start))
	}()

	reader, err := OpenBytes(video)
	if err != nil {
		return nil, nil, err
	}
	defer reader.Close()

	return d.run(ctx, reader)
}

func (d *Deconstructor) run(ctx context.Context, reader *Reader) (routine.Timeline, []routine.TimedDetection, error) {
	step := max(1, int(math.Round(reader.FPS()*d.sampleInterval)))

	frame := gocv.NewMat()
	defer frame.Close()

	var (
		labels []routine.FrameLabel
		track  []routine.TimedDetection
		prev   = pose.NoPose()
		last   float64
		frames int
	)
	for reader.Read(&frame) {
		frames++
		last = reader.Timestamp()
		if (frames-1)%step != 0 {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		detection, err := d.detector.Detect(frame)
		if err != nil {
			return nil, nil, fmt.Errorf("landmark detection at %.2fs failed: %w", last, err)
		}
		labels = append(labels, routine.FrameLabel{Time: last, Pose: d.labeler.Label(prev, detection)})
		track = append(track, routine.TimedDetection{Time: last, Detection: detection})
		prev = detection
	}

	if frames == 0 {
		return nil, nil, fmt.Errorf("%w: no decodable frames", ErrInvalidVideo)
	}

	// the container frame count can be missing or stale
	end := math.Max(reader.Duration(), last+1/reader.FPS())

	timeline, err := d.segmenter.Segment(labels, end)
	if err != nil {
		return nil, nil, err
	}

	d.logger.Debug("deconstructed routine",
		zap.Int("frames", frames),
		zap.Int("samples", len(labels)),
		zap.Int("phases", len(timeline)),
		zap.Float64("duration", end))

	return timeline, track, nil
}
