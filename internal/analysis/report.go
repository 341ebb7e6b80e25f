package analysis

import (
	"fmt"

	"github.com/dudu/poseperfect/internal/pipeline"
	"github.com/dudu/poseperfect/internal/routine"
	"github.com/dudu/poseperfect/internal/scoring"
)

// NoPoseMessage is reported when no pose is found in a still image
const NoPoseMessage = "Could not detect a pose in the image. Please try a different photo."

// symmetryStrongPoint is the symmetry score from which the V-taper counts as a strength
const symmetryStrongPoint = 80

// StaticReport is the judge's report card for one still image. When no
// pose is detected only the request, the annotated image and the timings
// are filled in.
type StaticReport struct {
	RunID        string                    `json:"run_id"`
	Request      Request                   `json:"request"`
	PoseDetected bool                      `json:"pose_detected"`
	Message      string                    `json:"message,omitempty"`
	Ratio        float64                   `json:"shoulder_waist_ratio"`
	RatioIssue   string                    `json:"ratio_issue,omitempty"`
	Symmetry     scoring.Score             `json:"symmetry"`
	Muscularity  *scoring.CategoryScoreSet `json:"muscularity,omitempty"`
	Conditioning *scoring.CategoryScoreSet `json:"conditioning,omitempty"`
	TotalPackage scoring.Score             `json:"total_package"`
	Coaching     []string                  `json:"coaching,omitempty"`
	Timing       pipeline.Timing           `json:"timing_ns"`

	// Annotated is the PNG-encoded diagnostic image with the skeleton overlay
	Annotated []byte `json:"-"`
}

// PhaseReport is one routine phase with the scores that apply to its type
type PhaseReport struct {
	routine.Phase
	// Seconds is the phase length, serialized as duration
	Seconds   float64                   `json:"duration"`
	Stability *scoring.Score            `json:"stability,omitempty"`
	Presence  *scoring.CategoryScoreSet `json:"presence,omitempty"`
	Flow      *scoring.Score            `json:"flow,omitempty"`
}

// RoutineReport is the per-phase breakdown of one routine video
type RoutineReport struct {
	RunID    string        `json:"run_id"`
	Request  Request       `json:"request"`
	Duration float64       `json:"duration"`
	Phases   []PhaseReport `json:"phases"`
}

// CoachingNotes turns the symmetry score into advice
func CoachingNotes(symmetry scoring.Score) []string {
	var notes []string
	if symmetry < symmetryStrongPoint {
		notes = append(notes, fmt.Sprintf("V-Taper (Score: %d): Your shoulder-to-waist ratio is the primary area for improvement.", symmetry))
	} else {
		notes = append(notes, fmt.Sprintf("V-Taper (Score: %d): Your V-Taper is a dominant strong point!", symmetry))
	}
	return append(notes, "More detailed coaching will be available when the anatomy models are fully trained.")
}
