package video

import "errors"

var ErrInvalidVideo = errors.New("invalid video")
