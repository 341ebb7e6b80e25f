package scoring

import (
	"fmt"
	"math"
)

const weightSumTolerance = 1e-9

// Weights are the per-category weights of the Total Package Score
type Weights struct {
	Symmetry     float64 `json:"symmetry" koanf:"symmetry"`
	Muscularity  float64 `json:"muscularity" koanf:"muscularity"`
	Conditioning float64 `json:"conditioning" koanf:"conditioning"`
}

// DefaultWeights favours symmetry over muscularity and conditioning
var DefaultWeights = Weights{Symmetry: 0.4, Muscularity: 0.3, Conditioning: 0.3}

// Validate checks that weights are non-negative and sum to 1
func (w Weights) Validate() error {
	if w.Symmetry < 0 || w.Muscularity < 0 || w.Conditioning < 0 {
		return fmt.Errorf("%w: negative weight in %+v", ErrInvalidWeights, w)
	}
	sum := w.Symmetry + w.Muscularity + w.Conditioning
	if math.Abs(sum-1) > weightSumTolerance {
		return fmt.Errorf("%w: weights sum to %v", ErrInvalidWeights, sum)
	}
	return nil
}

// TotalPackage combines the three category scores with DefaultWeights
func TotalPackage(symmetry, muscularity, conditioning Score) Score {
	s, _ := TotalPackageWithWeights(DefaultWeights, symmetry, muscularity, conditioning)
	return s
}

// TotalPackageWithWeights returns the weighted average of the three scores
// scaled by 1 - stddev/100 (population stddev). The factor is not clamped:
// with scores in [0,100] stddev never exceeds 100*sqrt(2)/3 (~47.14), so it
// stays in [0.528, 1]. Widening the score range would break that bound.
// The result is clamped to [0, 100] like every other score.
func TotalPackageWithWeights(w Weights, symmetry, muscularity, conditioning Score) (Score, error) {
	if err := w.Validate(); err != nil {
		return 0, err
	}

	scores := [3]float64{float64(symmetry), float64(muscularity), float64(conditioning)}
	weights := [3]float64{w.Symmetry, w.Muscularity, w.Conditioning}

	// explicit float64 conversions keep each product rounded (no FMA)
	var num, den float64
	for i := range scores {
		num += float64(scores[i] * weights[i])
		den += weights[i]
	}
	weightedAverage := num / den

	penaltyFactor := 1 - populationStdDev(scores[:])/100
	final := weightedAverage * penaltyFactor

	return Clamp(final), nil
}

func populationStdDev(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var sq float64
	for _, v := range values {
		d := v - mean
		sq += float64(d * d)
	}
	return math.Sqrt(sq / float64(len(values)))
}
