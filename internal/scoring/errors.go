package scoring

import "errors"

var (
	ErrInvalidWeights  = errors.New("invalid category weights")
	ErrScoreOutOfRange = errors.New("score out of range")
	ErrMissingOverall  = errors.New("missing overall score")
	ErrDuplicateLabel  = errors.New("duplicate score label")
)
