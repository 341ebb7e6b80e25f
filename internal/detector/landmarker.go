package detector

import (
	"fmt"

	ort "github.com/yalue/onnxruntime_go"
	"gocv.io/x/gocv"

	"github.com/dudu/poseperfect/internal/inference"
	"github.com/dudu/poseperfect/internal/pose"
)

// The landmark head emits 39 points (33 body + 6 auxiliary ROI points),
// each as x, y, z, visibility, presence
const (
	modelLandmarks   = 39
	valuesPerPoint   = 5
	landmarkTensorSz = modelLandmarks * valuesPerPoint
)

// Config describes the pose landmark model
type Config struct {
	ModelPath      string
	InputSize      int
	InputName      string
	LandmarkOutput string
	FlagOutput     string
	// MinPoseScore is the pose-presence score below which no pose is reported
	MinPoseScore float32
	CoreML       bool
}

// DefaultConfig returns settings for the heavy BlazePose landmark model
func DefaultConfig() Config {
	return Config{
		ModelPath:      "models/pose_landmark_heavy.onnx",
		InputSize:      256,
		InputName:      "input_1",
		LandmarkOutput: "Identity",
		FlagOutput:     "Identity_1",
		MinPoseScore:   0.5,
	}
}

// PoseLandmarker detects the 33-point body landmarks on a single still image
type PoseLandmarker struct {
	session *inference.Session
	config  Config
}

// NewPoseLandmarker creates a landmark detector; inference.Initialize must have run
func NewPoseLandmarker(config Config, opts ...inference.SessionOption) (*PoseLandmarker, error) {
	if config.InputSize <= 0 {
		return nil, fmt.Errorf("invalid input size: %d", config.InputSize)
	}

	opts = append(opts, inference.WithCoreML(config.CoreML))
	session, err := inference.NewSession(
		config.ModelPath,
		[]string{config.InputName},
		[]string{config.LandmarkOutput, config.FlagOutput},
		opts...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create pose landmark session: %w", err)
	}

	return &PoseLandmarker{
		session: session,
		config:  config,
	}, nil
}

// Detect runs the landmark model over the whole image
func (p *PoseLandmarker) Detect(img gocv.Mat) (pose.Detection, error) {
	if img.Empty() {
		return pose.NoPose(), fmt.Errorf("empty image")
	}
	size := p.config.InputSize

	rgb, lb := inference.LetterboxRGB(img, size)
	defer rgb.Close()

	inputTensor, err := inference.CreateTensor([]int64{1, int64(size), int64(size), 3}, inference.NHWC(rgb))
	if err != nil {
		return pose.NoPose(), fmt.Errorf("failed to create input tensor: %w", err)
	}
	defer inputTensor.Destroy()

	landmarkTensor, err := inference.CreateEmptyTensor[float32]([]int64{1, landmarkTensorSz})
	if err != nil {
		return pose.NoPose(), fmt.Errorf("failed to create landmark tensor: %w", err)
	}
	defer landmarkTensor.Destroy()

	flagTensor, err := inference.CreateEmptyTensor[float32]([]int64{1, 1})
	if err != nil {
		return pose.NoPose(), fmt.Errorf("failed to create flag tensor: %w", err)
	}
	defer flagTensor.Destroy()

	err = p.session.Run([]ort.Value{inputTensor}, []ort.Value{landmarkTensor, flagTensor})
	if err != nil {
		return pose.NoPose(), fmt.Errorf("pose landmark inference failed: %w", err)
	}

	if flagTensor.GetData()[0] < p.config.MinPoseScore {
		return pose.NoPose(), nil
	}

	set := decodeLandmarks(landmarkTensor.GetData(), lb, img.Cols(), img.Rows())
	return pose.Detected(set), nil
}

// decodeLandmarks maps model-space landmarks back to coordinates normalized
// to the source image
func decodeLandmarks(output []float32, lb inference.Letterbox, width, height int) pose.LandmarkSet {
	var set pose.LandmarkSet
	for i := 0; i < pose.NumLandmarks; i++ {
		o := output[i*valuesPerPoint:]
		x, y := lb.ToSource(o[0], o[1])
		set[i] = pose.Landmark{
			X:          float64(x) / float64(width),
			Y:          float64(y) / float64(height),
			Z:          float64(o[2] / lb.Scale / float32(width)),
			Visibility: float64(inference.Sigmoid(o[3])),
		}
	}
	return set
}

// Close releases detector resources
func (p *PoseLandmarker) Close() error {
	return p.session.Destroy()
}
