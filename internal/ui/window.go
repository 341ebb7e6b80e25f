package ui

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

var captionColor = color.RGBA{R: 0, G: 255, B: 0, A: 255}

const (
	captionScale     = 1.5
	captionThickness = 2
	captionLeading   = 28
)

// Window manages the preview display
type Window struct {
	window *gocv.Window
	name   string
}

// NewWindow creates a new preview window
func NewWindow(name string) *Window {
	window := gocv.NewWindow(name)
	// Force window to appear on macOS
	window.ResizeWindow(960, 720)
	window.MoveWindow(100, 100)
	return &Window{
		window: window,
		name:   name,
	}
}

// Overlay returns a copy of img with one caption line per entry drawn
// top-left. The input is left untouched.
func Overlay(img gocv.Mat, lines []string) gocv.Mat {
	out := img.Clone()
	for i, line := range lines {
		gocv.PutText(&out, line, image.Pt(10, 30+i*captionLeading),
			gocv.FontHersheyPlain, captionScale, captionColor, captionThickness)
	}
	return out
}

// Show displays img with captions
func (w *Window) Show(img gocv.Mat, lines []string) {
	frame := Overlay(img, lines)
	defer frame.Close()
	w.window.IMShow(frame)
}

// WaitKey waits for key press, returns key code or -1
func (w *Window) WaitKey(delayMs int) int {
	return w.window.WaitKey(delayMs)
}

// Close closes the window
func (w *Window) Close() error {
	if w.window != nil {
		return w.window.Close()
	}
	return nil
}
