package background

import (
	"context"
	"fmt"
	"image"

	ort "github.com/yalue/onnxruntime_go"
	"gocv.io/x/gocv"

	"github.com/dudu/poseperfect/internal/imaging"
	"github.com/dudu/poseperfect/internal/inference"
)

var (
	u2netMean = [3]float32{0.485, 0.456, 0.406}
	u2netStd  = [3]float32{0.229, 0.224, 0.225}
)

// U2NetConfig describes the salient-object matting model
type U2NetConfig struct {
	ModelPath  string
	InputSize  int
	InputName  string
	OutputName string
	CoreML     bool
}

// DefaultU2NetConfig matches the u2net.onnx export shipped with rembg
func DefaultU2NetConfig() U2NetConfig {
	return U2NetConfig{
		ModelPath:  "models/u2net.onnx",
		InputSize:  320,
		InputName:  "input.1",
		OutputName: "1959",
	}
}

// U2Net removes backgrounds in-process with the U²-Net ONNX model
type U2Net struct {
	session *inference.Session
	config  U2NetConfig
}

// NewU2Net creates the remover; inference.Initialize must have run
func NewU2Net(config U2NetConfig, opts ...inference.SessionOption) (*U2Net, error) {
	if config.InputSize <= 0 {
		return nil, fmt.Errorf("invalid input size: %d", config.InputSize)
	}

	opts = append(opts, inference.WithCoreML(config.CoreML))
	session, err := inference.NewSession(config.ModelPath,
		[]string{config.InputName}, []string{config.OutputName}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create U2Net session: %w", err)
	}

	return &U2Net{
		session: session,
		config:  config,
	}, nil
}

// Remove predicts a foreground mask and returns a BGRA PNG whose colors are
// premultiplied by the mask
func (u *U2Net) Remove(ctx context.Context, data []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	decoded, err := imaging.Decode(data)
	if err != nil {
		return nil, err
	}
	defer decoded.Close()

	img, err := imaging.Flatten(decoded, imaging.BackdropBlack)
	if err != nil {
		return nil, err
	}
	defer img.Close()

	mask, err := u.predict(img)
	if err != nil {
		return nil, &RemovalError{Remover: "u2net", Err: err}
	}
	defer mask.Close()

	cutout := applyMask(img, mask)
	defer cutout.Close()

	return imaging.EncodePNG(cutout)
}

// predict returns an 8-bit single channel mask the size of img
func (u *U2Net) predict(img gocv.Mat) (gocv.Mat, error) {
	size := u.config.InputSize

	inputTensor, err := inference.CreateTensor([]int64{1, 3, int64(size), int64(size)},
		inference.NCHW(img, size, size, u2netMean, u2netStd))
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("failed to create input tensor: %w", err)
	}
	defer inputTensor.Destroy()

	outputTensor, err := inference.CreateEmptyTensor[float32]([]int64{1, 1, int64(size), int64(size)})
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("failed to create output tensor: %w", err)
	}
	defer outputTensor.Destroy()

	if err := u.session.Run([]ort.Value{inputTensor}, []ort.Value{outputTensor}); err != nil {
		return gocv.NewMat(), fmt.Errorf("U2Net inference failed: %w", err)
	}

	small := maskFromPrediction(outputTensor.GetData(), size)
	defer small.Close()

	mask := gocv.NewMat()
	gocv.Resize(small, &mask, image.Pt(img.Cols(), img.Rows()), 0, 0, gocv.InterpolationLanczos4)
	return mask, nil
}

// maskFromPrediction min-max normalizes the saliency map into 0..255
func maskFromPrediction(pred []float32, size int) gocv.Mat {
	lo, hi := pred[0], pred[0]
	for _, v := range pred[:size*size] {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	span := hi - lo

	pixels := make([]byte, size*size)
	if span > 0 {
		for i, v := range pred[:size*size] {
			pixels[i] = uint8((v - lo) / span * 255)
		}
	}

	m, _ := gocv.NewMatFromBytes(size, size, gocv.MatTypeCV8UC1, pixels)
	owned := m.Clone()
	m.Close()
	return owned
}

// applyMask builds BGRA with color scaled by mask and alpha set to mask
func applyMask(img, mask gocv.Mat) gocv.Mat {
	src := imaging.PixelBytes(img)
	alpha := imaging.PixelBytes(mask)
	pixels := img.Rows() * img.Cols()
	dst := make([]byte, pixels*4)

	for i := 0; i < pixels; i++ {
		a := int(alpha[i])
		for c := 0; c < 3; c++ {
			dst[i*4+c] = byte((int(src[i*3+c])*a + 127) / 255)
		}
		dst[i*4+3] = byte(a)
	}

	m, _ := gocv.NewMatFromBytes(img.Rows(), img.Cols(), gocv.MatTypeCV8UC4, dst)
	owned := m.Clone()
	m.Close()
	return owned
}

// Close releases model resources
func (u *U2Net) Close() error {
	return u.session.Destroy()
}
