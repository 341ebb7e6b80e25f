package routine

import (
	"context"
	"math"

	"github.com/dudu/poseperfect/internal/pose"
)

// Pose labels produced by the stillness labeler
const (
	FrontPoseLabel = "Front Pose"
	BackPoseLabel  = "Back Pose"
)

// DefaultMaxMotion is the mean landmark displacement, in normalized image
// units, below which two consecutive samples count as still
const DefaultMaxMotion = 0.01

const labelVisibility = 0.5

// TimedDetection is the landmark detection of one sampled frame
type TimedDetection struct {
	Time      float64
	Detection pose.Detection
}

// TrackingDeconstructor also returns the sampled landmark track so
// per-phase analyzers can see the frames of each phase
type TrackingDeconstructor interface {
	Deconstructor
	DeconstructTrack(ctx context.Context, video []byte) (Timeline, []TimedDetection, error)
}

// FramesFor collects the samples of track that fall inside phase
func FramesFor(phase Phase, track []TimedDetection) Frames {
	frames := Frames{Phase: phase}
	for _, t := range track {
		if t.Time >= phase.Start && t.Time < phase.End {
			frames.Landmarks = append(frames.Landmarks, t.Detection)
		}
	}
	return frames
}

// StillnessLabeler names a frame with a held pose when the athlete has not
// moved since the previous sample. Facing is read from shoulder order: the
// athlete's left shoulder sits on the image right when facing the camera.
type StillnessLabeler struct {
	MaxMotion float64
}

// NewStillnessLabeler creates a labeler; non-positive maxMotion uses DefaultMaxMotion
func NewStillnessLabeler(maxMotion float64) StillnessLabeler {
	if maxMotion <= 0 {
		maxMotion = DefaultMaxMotion
	}
	return StillnessLabeler{MaxMotion: maxMotion}
}

// Label returns the held pose name for cur, or "" when the athlete is
// moving or not visible
func (l StillnessLabeler) Label(prev, cur pose.Detection) string {
	prevSet, ok := prev.Landmarks()
	if !ok {
		return ""
	}
	curSet, ok := cur.Landmarks()
	if !ok {
		return ""
	}

	motion, ok := meanMotion(prevSet, curSet)
	if !ok || motion > l.MaxMotion {
		return ""
	}
	return Facing(curSet)
}

// Facing reports which side of the athlete faces the camera
func Facing(set pose.LandmarkSet) string {
	if set[pose.LeftShoulder].X > set[pose.RightShoulder].X {
		return FrontPoseLabel
	}
	return BackPoseLabel
}

func meanMotion(a, b pose.LandmarkSet) (float64, bool) {
	var sum float64
	n := 0
	for i := range a {
		if a[i].Visibility <= labelVisibility || b[i].Visibility <= labelVisibility {
			continue
		}
		sum += math.Hypot(b[i].X-a[i].X, b[i].Y-a[i].Y)
		n++
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}
