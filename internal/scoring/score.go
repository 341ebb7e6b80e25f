// Package scoring maps body geometry and category results onto bounded scores.
package scoring

import "math"

const (
	MinScore Score = 0
	MaxScore Score = 100
)

// Score is an integer in [0, 100]
type Score int

// Clamp bounds v to [0, 100] and truncates toward zero
func Clamp(v float64) Score {
	if math.IsNaN(v) {
		return MinScore
	}
	v = math.Max(float64(MinScore), math.Min(float64(MaxScore), v))
	return Score(v)
}

// Valid reports whether s is inside [0, 100]
func (s Score) Valid() bool {
	return s >= MinScore && s <= MaxScore
}
