package detector

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/dudu/poseperfect/internal/pose"
)

// DrawingSpec controls how landmarks or connections are drawn
type DrawingSpec struct {
	Color     color.RGBA
	Thickness int
	Radius    int
}

var (
	LandmarkSpec   = DrawingSpec{Color: color.RGBA{R: 245, G: 117, B: 66, A: 255}, Thickness: 2, Radius: 2}
	ConnectionSpec = DrawingSpec{Color: color.RGBA{R: 245, G: 66, B: 230, A: 255}, Thickness: 2, Radius: 2}

	borderColor = color.RGBA{R: 224, G: 224, B: 224, A: 255}
)

// overlayVisibility hides joints the model is unsure about
const overlayVisibility = 0.5

// Annotate returns a copy of img with the skeleton drawn on it. The input
// is never modified; without a pose the copy is returned unchanged.
func Annotate(img gocv.Mat, d pose.Detection) gocv.Mat {
	annotated := img.Clone()
	set, ok := d.Landmarks()
	if !ok {
		return annotated
	}
	DrawLandmarks(&annotated, set, LandmarkSpec, ConnectionSpec)
	return annotated
}

// DrawLandmarks draws skeleton connections and then joints onto img
func DrawLandmarks(img *gocv.Mat, set pose.LandmarkSet, landmarkSpec, connectionSpec DrawingSpec) {
	width, height := img.Cols(), img.Rows()

	points := make(map[int]image.Point, pose.NumLandmarks)
	for i, l := range set {
		if l.Visibility < overlayVisibility {
			continue
		}
		x, y := l.Pixel(width, height)
		px, py := int(x), int(y)
		if px < 0 || py < 0 || px >= width || py >= height {
			continue
		}
		points[i] = image.Pt(px, py)
	}

	for _, c := range pose.Connections {
		from, okFrom := points[c.From]
		to, okTo := points[c.To]
		if !okFrom || !okTo {
			continue
		}
		gocv.Line(img, from, to, connectionSpec.Color, connectionSpec.Thickness)
	}

	borderRadius := max(landmarkSpec.Radius+1, int(float64(landmarkSpec.Radius)*1.2))
	for _, pt := range points {
		gocv.Circle(img, pt, borderRadius, borderColor, landmarkSpec.Thickness)
		gocv.Circle(img, pt, landmarkSpec.Radius, landmarkSpec.Color, landmarkSpec.Thickness)
	}
}
