package routine

import "fmt"

const (
	// DefaultMinDwell is how long a pose must persist to count as held
	DefaultMinDwell = 1.0
	transitionLabel = "Transition"
)

// FrameLabel is the pose classification of one sampled frame. An empty
// Pose means no held pose was recognised (the athlete is moving).
type FrameLabel struct {
	Time float64
	Pose string
}

// Segmenter turns per-frame labels into a timeline. Pose runs shorter than
// MinDwell are absorbed into the surrounding transition so a flickering
// classifier does not produce spurious phases.
type Segmenter struct {
	MinDwell float64
}

// NewSegmenter creates a segmenter; non-positive minDwell uses DefaultMinDwell
func NewSegmenter(minDwell float64) *Segmenter {
	if minDwell <= 0 {
		minDwell = DefaultMinDwell
	}
	return &Segmenter{MinDwell: minDwell}
}

type run struct {
	pose       string
	start, end float64
}

// Segment builds a timeline covering [0, end]. Frames at or after end are ignored.
func (s *Segmenter) Segment(frames []FrameLabel, end float64) (Timeline, error) {
	if !(end > 0) {
		return nil, ErrEmptyVideo
	}

	var runs []run
	for i, f := range frames {
		if i > 0 && !(f.Time > frames[i-1].Time) {
			return nil, fmt.Errorf("%w: frame %d at %v", ErrUnorderedFrames, i, f.Time)
		}
		if f.Time >= end {
			break
		}
		if len(runs) > 0 && runs[len(runs)-1].pose == f.Pose {
			continue
		}
		start := f.Time
		if len(runs) == 0 {
			start = 0
		} else {
			runs[len(runs)-1].end = start
		}
		runs = append(runs, run{pose: f.Pose, start: start})
	}

	if len(runs) == 0 {
		return Timeline{{Type: Transition, Start: 0, End: end, Label: transitionLabel}}, nil
	}
	runs[len(runs)-1].end = end

	var timeline Timeline
	for _, r := range runs {
		if !(r.end > r.start) {
			continue
		}
		phase := Phase{Type: Transition, Start: r.start, End: r.end, Label: transitionLabel}
		if r.pose != "" && r.end-r.start >= s.MinDwell {
			phase.Type = HeldPose
			phase.Label = r.pose
		}

		if n := len(timeline); n > 0 {
			last := &timeline[n-1]
			if last.Type == phase.Type && last.Label == phase.Label {
				last.End = phase.End
				continue
			}
		}
		timeline = append(timeline, phase)
	}

	return timeline, nil
}
