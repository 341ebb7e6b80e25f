package routine

import "errors"

var (
	ErrEmptyTimeline     = errors.New("timeline has no phases")
	ErrInvalidPhase      = errors.New("invalid phase")
	ErrOverlappingPhases = errors.New("overlapping phases")
	ErrEmptyVideo        = errors.New("video is empty")
	ErrUnorderedFrames   = errors.New("frame timestamps are not increasing")
)
