// Package routine models a posing routine as a timeline of held poses and
// transitions, and the per-phase analyzers that consume it.
package routine

import (
	"context"
	"fmt"
)

// PhaseType distinguishes judged poses from movement between them
type PhaseType string

const (
	HeldPose   PhaseType = "Held Pose"
	Transition PhaseType = "Transition"
)

// Phase is one timed segment of a routine, in seconds from the start of the video
type Phase struct {
	Type  PhaseType `json:"type"`
	Start float64   `json:"start_time"`
	End   float64   `json:"end_time"`
	Label string    `json:"details"`
}

// Duration returns the phase length in seconds
func (p Phase) Duration() float64 {
	return p.End - p.Start
}

// Timeline is an ordered, non-overlapping sequence of phases
type Timeline []Phase

// Validate checks the timeline contract: non-empty, every phase has
// 0 <= start < end, phases ordered by start and never overlapping
func (t Timeline) Validate() error {
	if len(t) == 0 {
		return ErrEmptyTimeline
	}
	for i, p := range t {
		if p.Type != HeldPose && p.Type != Transition {
			return fmt.Errorf("%w: phase %d has type %q", ErrInvalidPhase, i, p.Type)
		}
		if p.Start < 0 || !(p.Start < p.End) {
			return fmt.Errorf("%w: phase %d spans [%v, %v]", ErrInvalidPhase, i, p.Start, p.End)
		}
		if i > 0 && p.Start < t[i-1].End {
			return fmt.Errorf("%w: phase %d starts at %v before phase %d ends at %v", ErrOverlappingPhases, i, p.Start, i-1, t[i-1].End)
		}
	}
	return nil
}

// End returns the end time of the last phase
func (t Timeline) End() float64 {
	if len(t) == 0 {
		return 0
	}
	return t[len(t)-1].End
}

// HeldPoses returns the held-pose phases in order
func (t Timeline) HeldPoses() []Phase {
	var out []Phase
	for _, p := range t {
		if p.Type == HeldPose {
			out = append(out, p)
		}
	}
	return out
}

// Deconstructor splits a routine video into a timeline
type Deconstructor interface {
	Deconstruct(ctx context.Context, video []byte) (Timeline, error)
}
