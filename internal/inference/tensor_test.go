package inference_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"github.com/dudu/poseperfect/internal/inference"
)

func solid(rows, cols int, b, g, r float64) gocv.Mat {
	m := gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV8UC3)
	m.SetTo(gocv.NewScalar(b, g, r, 0))
	return m
}

func TestLetterboxRGB(t *testing.T) {
	img := solid(100, 200, 0, 0, 255)
	defer img.Close()

	rgb, lb := inference.LetterboxRGB(img, 256)
	defer rgb.Close()

	require.Equal(t, 256, rgb.Rows())
	require.Equal(t, 256, rgb.Cols())
	assert.InDelta(t, 1.28, lb.Scale, 1e-6)
	assert.Equal(t, 0, lb.PadX)
	assert.Equal(t, 64, lb.PadY)

	x, y := lb.ToSource(128, 128)
	assert.InDelta(t, 100, x, 1e-3)
	assert.InDelta(t, 50, y, 1e-3)

	// padding stays black, content is red in RGB order
	assert.Equal(t, uint8(0), rgb.GetVecbAt(10, 128)[0])
	assert.Equal(t, uint8(255), rgb.GetVecbAt(128, 128)[0])
	assert.Equal(t, uint8(0), rgb.GetVecbAt(128, 128)[2])
}

func TestNHWC(t *testing.T) {
	img := solid(2, 2, 255, 0, 0)
	defer img.Close()

	data := inference.NHWC(img)
	require.Len(t, data, 12)
	assert.Equal(t, float32(1), data[0])
	assert.Equal(t, float32(0), data[2])
}

func TestNCHW(t *testing.T) {
	img := solid(8, 8, 0, 0, 255)
	defer img.Close()

	data := inference.NCHW(img, 4, 4, [3]float32{0, 0, 0}, [3]float32{1, 1, 1})
	require.Len(t, data, 48)
	// R plane first
	assert.Equal(t, float32(1), data[0])
	assert.Equal(t, float32(0), data[16])
	assert.Equal(t, float32(0), data[32])

	normalized := inference.NCHW(img, 4, 4, [3]float32{0.5, 0.5, 0.5}, [3]float32{0.5, 0.5, 0.5})
	assert.Equal(t, float32(1), normalized[0])
	assert.Equal(t, float32(-1), normalized[16])
}

func TestSigmoid(t *testing.T) {
	assert.InDelta(t, 0.5, inference.Sigmoid(0), 1e-6)
	assert.Greater(t, inference.Sigmoid(6), float32(0.99))
	assert.Less(t, inference.Sigmoid(-6), float32(0.01))
}
