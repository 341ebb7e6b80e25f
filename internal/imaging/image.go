package imaging

import (
	"fmt"
	"os"

	"gocv.io/x/gocv"
)

// Decode decodes encoded image bytes, keeping an alpha channel when present.
// 16-bit images are scaled down to 8 bits per channel.
func Decode(data []byte) (gocv.Mat, error) {
	if len(data) == 0 {
		return gocv.NewMat(), fmt.Errorf("%w: empty input", ErrInvalidImage)
	}

	img, err := gocv.IMDecode(data, gocv.IMReadUnchanged)
	if err != nil {
		img.Close()
		return gocv.NewMat(), fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if img.Empty() {
		img.Close()
		return gocv.NewMat(), fmt.Errorf("%w: could not decode %d bytes", ErrInvalidImage, len(data))
	}

	if img.Type()&0x7 == gocv.MatTypeCV16U {
		scaled := gocv.NewMat()
		img.ConvertToWithParams(&scaled, gocv.MatTypeCV8U+gocv.MatType((img.Channels()-1)<<3), 1.0/257, 0)
		img.Close()
		img = scaled
	}
	return img, nil
}

// Validate reports whether data decodes to a non-empty image
func Validate(data []byte) error {
	img, err := Decode(data)
	if err != nil {
		return err
	}
	img.Close()
	return nil
}

// ReadFile loads and decodes an image from disk
func ReadFile(path string) (gocv.Mat, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("failed to read %s: %w", path, err)
	}
	img, err := Decode(data)
	if err != nil {
		return img, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

// EncodePNG encodes img as PNG bytes
func EncodePNG(img gocv.Mat) ([]byte, error) {
	if img.Empty() {
		return nil, fmt.Errorf("%w: empty image", ErrInvalidImage)
	}
	buf, err := gocv.IMEncode(gocv.PNGFileExt, img)
	if err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	defer buf.Close()

	// GetBytes aliases native memory
	out := make([]byte, buf.Len())
	copy(out, buf.GetBytes())
	return out, nil
}

// WriteFile writes img to path, the format following the file extension
func WriteFile(path string, img gocv.Mat) error {
	if img.Empty() {
		return fmt.Errorf("%w: empty image", ErrInvalidImage)
	}
	if !gocv.IMWrite(path, img) {
		return fmt.Errorf("failed to write image to %s", path)
	}
	return nil
}

// PixelBytes returns the packed pixel data of img. Views such as a Region
// are not stored contiguously, so they are copied first.
func PixelBytes(img gocv.Mat) []byte {
	if img.IsContinuous() {
		return img.ToBytes()
	}
	packed := img.Clone()
	defer packed.Close()
	return packed.ToBytes()
}
