package imaging

import "errors"

var (
	ErrInvalidImage    = errors.New("invalid image")
	ErrUnknownBackdrop = errors.New("unknown backdrop")
	ErrInvalidCLAHE    = errors.New("invalid CLAHE parameters")
)
