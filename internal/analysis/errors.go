package analysis

import "errors"

var (
	ErrUnknownMode     = errors.New("unknown analysis mode")
	ErrUnknownDivision = errors.New("unknown division")
	ErrUnknownPose     = errors.New("pose not offered for division")
	ErrModeMismatch    = errors.New("request mode does not match analysis")
	ErrNoDeconstructor = errors.New("no routine deconstructor configured")
)
