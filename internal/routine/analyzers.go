package routine

import (
	"github.com/dudu/poseperfect/internal/pose"
	"github.com/dudu/poseperfect/internal/scoring"
)

// Frames is the per-frame landmark track of one phase
type Frames struct {
	Phase     Phase
	Landmarks []pose.Detection
}

// StabilityAnalyzer scores landmark jitter during a held pose
type StabilityAnalyzer interface {
	Stability(frames Frames) scoring.Score
}

// PresenceAnalyzer scores facial expression and gaze during a held pose
type PresenceAnalyzer interface {
	Presence(frames Frames) scoring.CategoryScoreSet
}

// FlowAnalyzer scores how smoothly a transition is executed
type FlowAnalyzer interface {
	Flow(frames Frames) scoring.Score
}

const (
	PresenceCategory   = "Stage Presence"
	OverallPresenceKey = "Overall Presence"
)

var placeholderPresence = scoring.MustCategoryScoreSet(PresenceCategory, OverallPresenceKey,
	scoring.Entry{Label: "Smile", Score: 80},
	scoring.Entry{Label: "Eye Contact", Score: 90},
	scoring.Entry{Label: OverallPresenceKey, Score: 85},
)

// PlaceholderAnalyzer returns fixed scores until trained models exist
type PlaceholderAnalyzer struct{}

// Stability always returns 95
func (PlaceholderAnalyzer) Stability(Frames) scoring.Score { return 95 }

// Presence always returns smile 80, eye contact 90, overall 85
func (PlaceholderAnalyzer) Presence(Frames) scoring.CategoryScoreSet { return placeholderPresence }

// Flow always returns 88
func (PlaceholderAnalyzer) Flow(Frames) scoring.Score { return 88 }
