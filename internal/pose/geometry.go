package pose

import (
	"errors"
	"fmt"
	"math"
)

// DefaultVisibilityThreshold is the visibility a required landmark must exceed
const DefaultVisibilityThreshold = 0.5

var (
	ErrDegenerateGeometry = errors.New("degenerate geometry")

	ErrNoPose            = fmt.Errorf("%w: no pose detected", ErrDegenerateGeometry)
	ErrLowVisibility     = fmt.Errorf("%w: required landmark not visible", ErrDegenerateGeometry)
	ErrZeroHipWidth      = fmt.Errorf("%w: hip width is zero", ErrDegenerateGeometry)
	ErrInvalidDimensions = fmt.Errorf("%w: image dimensions must be positive", ErrDegenerateGeometry)
)

// Ratio is a shoulder-to-hip width ratio. A zero Value is the "could not be
// computed" sentinel; Reason says why.
type Ratio struct {
	Value  float64
	Reason error
}

// Valid reports whether the ratio was measured
func (r Ratio) Valid() bool {
	return r.Reason == nil
}

func degenerate(reason error) Ratio {
	return Ratio{Value: 0, Reason: reason}
}

// ShoulderWaistRatio computes shoulder pixel width over hip pixel width
func ShoulderWaistRatio(d Detection, imageWidth, imageHeight int) Ratio {
	return ShoulderWaistRatioWithThreshold(d, imageWidth, imageHeight, DefaultVisibilityThreshold)
}

// ShoulderWaistRatioWithThreshold is ShoulderWaistRatio with an explicit
// visibility threshold. Only x coordinates contribute to the ratio.
func ShoulderWaistRatioWithThreshold(d Detection, imageWidth, imageHeight int, threshold float64) Ratio {
	set, ok := d.Landmarks()
	if !ok {
		return degenerate(ErrNoPose)
	}
	if imageWidth <= 0 || imageHeight <= 0 {
		return degenerate(ErrInvalidDimensions)
	}

	ls := set[LeftShoulder]
	rs := set[RightShoulder]
	lh := set[LeftHip]
	rh := set[RightHip]

	for _, l := range []Landmark{ls, rs, lh, rh} {
		if !(l.Visibility > threshold) {
			return degenerate(ErrLowVisibility)
		}
	}

	w := float64(imageWidth)
	shoulderWidth := math.Abs(ls.X*w - rs.X*w)
	hipWidth := math.Abs(lh.X*w - rh.X*w)

	if hipWidth == 0 {
		return degenerate(ErrZeroHipWidth)
	}

	return Ratio{Value: shoulderWidth / hipWidth}
}
