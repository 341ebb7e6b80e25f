// Package video reads routine videos and splits them into timed phases.
package video

import (
	"fmt"
	"os"
	"sync"

	"gocv.io/x/gocv"
)

// Reader iterates the frames of a video file
type Reader struct {
	capture    *gocv.VideoCapture
	fps        float64
	frameCount int
	width      int
	height     int
	index      int
	tempPath   string
	mu         sync.Mutex
}

// OpenFile opens a video file for reading
func OpenFile(path string) (*Reader, error) {
	capture, err := gocv.VideoCaptureFile(path)
	if err != nil {
		if capture != nil {
			capture.Close()
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidVideo, path, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, fmt.Errorf("%w: %s could not be opened", ErrInvalidVideo, path)
	}

	fps := capture.Get(gocv.VideoCaptureFPS)
	if !(fps > 0) {
		capture.Close()
		return nil, fmt.Errorf("%w: %s reports no frame rate", ErrInvalidVideo, path)
	}

	return &Reader{
		capture:    capture,
		fps:        fps,
		frameCount: int(capture.Get(gocv.VideoCaptureFrameCount)),
		width:      int(capture.Get(gocv.VideoCaptureFrameWidth)),
		height:     int(capture.Get(gocv.VideoCaptureFrameHeight)),
	}, nil
}

// OpenBytes stages encoded video bytes in a temp file, removed on Close
func OpenBytes(data []byte) (*Reader, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrInvalidVideo)
	}

	f, err := os.CreateTemp("", "poseperfect-video-*")
	if err != nil {
		return nil, fmt.Errorf("failed to stage video: %w", err)
	}
	path := f.Name()
	_, werr := f.Write(data)
	cerr := f.Close()
	if werr != nil || cerr != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to stage video: %v %v", werr, cerr)
	}

	r, err := OpenFile(path)
	if err != nil {
		os.Remove(path)
		return nil, err
	}
	r.tempPath = path
	return r, nil
}

// Read decodes the next frame into frame
func (r *Reader) Read(frame *gocv.Mat) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.capture == nil {
		return false
	}
	if !r.capture.Read(frame) || frame.Empty() {
		return false
	}
	r.index++
	return true
}

// Timestamp returns the presentation time in seconds of the last frame read
func (r *Reader) Timestamp() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return float64(r.index-1) / r.fps
}

// FPS returns the frame rate
func (r *Reader) FPS() float64 {
	return r.fps
}

// FrameCount returns the container's frame count, which may be an estimate
func (r *Reader) FrameCount() int {
	return r.frameCount
}

// Duration returns the video length in seconds from the frame count
func (r *Reader) Duration() float64 {
	return float64(r.frameCount) / r.fps
}

// Width returns frame width
func (r *Reader) Width() int {
	return r.width
}

// Height returns frame height
func (r *Reader) Height() int {
	return r.height
}

// Close releases the decoder and removes any staged temp file
func (r *Reader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var err error
	if r.capture != nil {
		err = r.capture.Close()
		r.capture = nil
	}
	if r.tempPath != "" {
		if rmErr := os.Remove(r.tempPath); rmErr != nil && err == nil {
			err = rmErr
		}
		r.tempPath = ""
	}
	return err
}
