package scoring

const (
	// BaselineRatio is equal shoulder and hip width (no taper)
	BaselineRatio = 1.0
	// IdealRatio is the target shoulder-to-waist proportion
	IdealRatio = 1.618
)

// ScoreRatio maps a shoulder-to-waist ratio linearly from baseline (0) to
// ideal (100). The 0.0 sentinel scores 0.
func ScoreRatio(ratio float64) Score {
	if ratio == 0.0 {
		return 0
	}

	// float64 operands, not the exact constant difference
	baseline, ideal := BaselineRatio, IdealRatio
	raw := 100 * (ratio - baseline) / (ideal - baseline)
	return Clamp(raw)
}
