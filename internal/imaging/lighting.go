package imaging

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

const (
	DefaultClipLimit = 2.0
	DefaultTileGrid  = 8
)

// LightingParams configures contrast-limited adaptive histogram equalization
type LightingParams struct {
	ClipLimit float64
	TileGrid  int
}

// DefaultLighting returns clip limit 2.0 over an 8x8 tile grid
func DefaultLighting() LightingParams {
	return LightingParams{ClipLimit: DefaultClipLimit, TileGrid: DefaultTileGrid}
}

// Validate rejects non-positive parameters
func (p LightingParams) Validate() error {
	if p.ClipLimit <= 0 {
		return fmt.Errorf("%w: clip limit %v", ErrInvalidCLAHE, p.ClipLimit)
	}
	if p.TileGrid <= 0 {
		return fmt.Errorf("%w: tile grid %d", ErrInvalidCLAHE, p.TileGrid)
	}
	return nil
}

// NormalizeLighting equalizes the L channel of img in Lab space and returns
// a new BGR image; chroma is left untouched
func NormalizeLighting(img gocv.Mat, params LightingParams) (gocv.Mat, error) {
	if err := params.Validate(); err != nil {
		return gocv.NewMat(), err
	}
	if img.Empty() || img.Channels() != 3 {
		return gocv.NewMat(), fmt.Errorf("%w: expected a 3-channel image", ErrInvalidImage)
	}

	lab := gocv.NewMat()
	defer lab.Close()
	gocv.CvtColor(img, &lab, gocv.ColorBGRToLab)

	channels := gocv.Split(lab)
	defer func() {
		for _, ch := range channels {
			ch.Close()
		}
	}()

	clahe := gocv.NewCLAHEWithParams(params.ClipLimit, image.Pt(params.TileGrid, params.TileGrid))
	defer clahe.Close()

	equalized := gocv.NewMat()
	clahe.Apply(channels[0], &equalized)
	channels[0].Close()
	channels[0] = equalized

	merged := gocv.NewMat()
	defer merged.Close()
	gocv.Merge(channels, &merged)

	out := gocv.NewMat()
	gocv.CvtColor(merged, &out, gocv.ColorLabToBGR)
	return out, nil
}
