package imaging

import (
	"fmt"
	"strings"

	"gocv.io/x/gocv"
)

// Backdrop is the opaque color transparent pixels are composited over
type Backdrop string

const (
	// BackdropBlack matches the transparent black that background removers
	// leave behind, so flattening reproduces a plain RGB conversion
	BackdropBlack Backdrop = "black"
	BackdropWhite Backdrop = "white"

	DefaultBackdrop = BackdropBlack
)

// ParseBackdrop resolves a backdrop name, case-insensitively
func ParseBackdrop(name string) (Backdrop, error) {
	switch b := Backdrop(strings.ToLower(strings.TrimSpace(name))); b {
	case BackdropBlack, BackdropWhite:
		return b, nil
	case "":
		return DefaultBackdrop, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownBackdrop, name)
	}
}

func (b Backdrop) level() int {
	if b == BackdropWhite {
		return 255
	}
	return 0
}

// Flatten returns an opaque 3-channel BGR copy of img. Four-channel input
// is treated as premultiplied over transparent black and composited over
// the backdrop; grayscale input is expanded.
func Flatten(img gocv.Mat, backdrop Backdrop) (gocv.Mat, error) {
	if img.Empty() {
		return gocv.NewMat(), fmt.Errorf("%w: empty image", ErrInvalidImage)
	}

	switch img.Channels() {
	case 3:
		return img.Clone(), nil
	case 1:
		out := gocv.NewMat()
		gocv.CvtColor(img, &out, gocv.ColorGrayToBGR)
		return out, nil
	case 4:
		return composite(img, backdrop.level()), nil
	default:
		return gocv.NewMat(), fmt.Errorf("%w: unsupported channel count %d", ErrInvalidImage, img.Channels())
	}
}

// composite applies out = c + bg*(1-a) per channel on 8-bit BGRA pixels
func composite(img gocv.Mat, bg int) gocv.Mat {
	src := PixelBytes(img)
	pixels := img.Rows() * img.Cols()
	dst := make([]byte, pixels*3)

	for i := 0; i < pixels; i++ {
		a := int(src[i*4+3])
		fill := (bg*(255-a) + 127) / 255
		for c := 0; c < 3; c++ {
			v := int(src[i*4+c]) + fill
			if v > 255 {
				v = 255
			}
			dst[i*3+c] = byte(v)
		}
	}

	out, err := gocv.NewMatFromBytes(img.Rows(), img.Cols(), gocv.MatTypeCV8UC3, dst)
	if err != nil {
		// sizes are derived from img, so this only fails on allocation
		return gocv.NewMat()
	}
	// detach from dst
	owned := out.Clone()
	out.Close()
	return owned
}
