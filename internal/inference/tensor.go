package inference

import (
	"image"
	"math"

	"gocv.io/x/gocv"

	"github.com/dudu/poseperfect/internal/imaging"
)

// Letterbox records how an image was fitted into a square model input
type Letterbox struct {
	Scale float32
	PadX  int
	PadY  int
}

// ToSource maps a point in model input pixels back to source image pixels
func (l Letterbox) ToSource(x, y float32) (float32, float32) {
	return (x - float32(l.PadX)) / l.Scale, (y - float32(l.PadY)) / l.Scale
}

// LetterboxRGB resizes a BGR image into a centred size x size RGB canvas,
// keeping the aspect ratio and padding with black
func LetterboxRGB(img gocv.Mat, size int) (gocv.Mat, Letterbox) {
	height := img.Rows()
	width := img.Cols()

	scale := float32(size) / float32(max(height, width))
	newWidth := max(1, int(float32(width)*scale))
	newHeight := max(1, int(float32(height)*scale))

	resized := gocv.NewMat()
	gocv.Resize(img, &resized, image.Pt(newWidth, newHeight), 0, 0, gocv.InterpolationLinear)
	defer resized.Close()

	padded := gocv.NewMatWithSize(size, size, gocv.MatTypeCV8UC3)
	padded.SetTo(gocv.NewScalar(0, 0, 0, 0))

	padX := (size - newWidth) / 2
	padY := (size - newHeight) / 2
	roi := padded.Region(image.Rect(padX, padY, padX+newWidth, padY+newHeight))
	resized.CopyTo(&roi)
	roi.Close()

	rgb := gocv.NewMat()
	gocv.CvtColor(padded, &rgb, gocv.ColorBGRToRGB)
	padded.Close()

	return rgb, Letterbox{Scale: scale, PadX: padX, PadY: padY}
}

// NHWC returns an 8-bit RGB image as float32 HWC data scaled by 1/255
func NHWC(rgb gocv.Mat) []float32 {
	pixels := imaging.PixelBytes(rgb)
	out := make([]float32, len(pixels))
	for i, p := range pixels {
		out[i] = float32(p) / 255
	}
	return out
}

// NCHW resizes a BGR image to width x height and returns RGB planar data
// normalized per channel as (x/255 - mean) / std
func NCHW(img gocv.Mat, width, height int, mean, std [3]float32) []float32 {
	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(img, &resized, image.Pt(width, height), 0, 0, gocv.InterpolationLinear)

	rgb := gocv.NewMat()
	defer rgb.Close()
	gocv.CvtColor(resized, &rgb, gocv.ColorBGRToRGB)

	pixels := imaging.PixelBytes(rgb)
	plane := width * height
	out := make([]float32, plane*3)
	for i := 0; i < plane; i++ {
		for c := 0; c < 3; c++ {
			v := float32(pixels[i*3+c]) / 255
			out[c*plane+i] = (v - mean[c]) / std[c]
		}
	}
	return out
}

// Sigmoid maps a logit to (0, 1)
func Sigmoid(x float32) float32 {
	return 1.0 / (1.0 + float32(math.Exp(float64(-x))))
}
