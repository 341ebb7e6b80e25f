package pipeline

import (
	"context"

	"gocv.io/x/gocv"

	"github.com/dudu/poseperfect/internal/pose"
)

// BackgroundRemover turns encoded image bytes into encoded image bytes
// with a transparent background
type BackgroundRemover interface {
	Remove(ctx context.Context, image []byte) ([]byte, error)
}

// LandmarkDetector finds the body landmarks in a still BGR image
type LandmarkDetector interface {
	Detect(img gocv.Mat) (pose.Detection, error)
}
