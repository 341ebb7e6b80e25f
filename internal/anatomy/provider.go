// Package anatomy scores muscularity and conditioning from the annotated
// physique image.
package anatomy

import (
	"gocv.io/x/gocv"

	"github.com/dudu/poseperfect/internal/scoring"
)

const (
	MuscularityCategory  = "Muscularity"
	OverallFullnessKey   = "Overall Fullness"
	ConditioningCategory = "Conditioning"
	OverallConditionKey  = "Overall Conditioning"
)

// Provider scores one category from an image
type Provider interface {
	Analyze(img gocv.Mat) (scoring.CategoryScoreSet, error)
}

var (
	stubMuscularity = scoring.MustCategoryScoreSet(MuscularityCategory, OverallFullnessKey,
		scoring.Entry{Label: "Pectorals", Score: 85},
		scoring.Entry{Label: "Deltoids", Score: 92},
		scoring.Entry{Label: "Abdominals", Score: 88},
		scoring.Entry{Label: OverallFullnessKey, Score: 88},
	)

	stubConditioning = scoring.MustCategoryScoreSet(ConditioningCategory, OverallConditionKey,
		scoring.Entry{Label: "Separation", Score: 82},
		scoring.Entry{Label: "Abdominal Definition", Score: 90},
		scoring.Entry{Label: OverallConditionKey, Score: 86},
	)
)

// MuscularityStub returns fixed muscularity scores
type MuscularityStub struct{}

func (MuscularityStub) Analyze(gocv.Mat) (scoring.CategoryScoreSet, error) {
	return stubMuscularity, nil
}

// ConditioningStub returns fixed conditioning scores
type ConditioningStub struct{}

func (ConditioningStub) Analyze(gocv.Mat) (scoring.CategoryScoreSet, error) {
	return stubConditioning, nil
}
