package anatomy

import (
	"fmt"

	ort "github.com/yalue/onnxruntime_go"
	"gocv.io/x/gocv"

	"github.com/dudu/poseperfect/internal/inference"
	"github.com/dudu/poseperfect/internal/scoring"
)

var (
	imagenetMean = [3]float32{0.485, 0.456, 0.406}
	imagenetStd  = [3]float32{0.229, 0.224, 0.225}
)

// ModelConfig describes a regression-head model that emits one value in
// [0, 1] per label, in label order
type ModelConfig struct {
	ModelPath  string
	Category   string
	OverallKey string
	Labels     []string
	InputSize  int
	InputName  string
	OutputName string
	CoreML     bool
}

// MuscularityModelConfig returns the label layout of the muscularity head
func MuscularityModelConfig(path string) ModelConfig {
	return ModelConfig{
		ModelPath:  path,
		Category:   MuscularityCategory,
		OverallKey: OverallFullnessKey,
		Labels:     []string{"Pectorals", "Deltoids", "Abdominals", OverallFullnessKey},
		InputSize:  224,
		InputName:  "input",
		OutputName: "scores",
	}
}

// ConditioningModelConfig returns the label layout of the conditioning head
func ConditioningModelConfig(path string) ModelConfig {
	return ModelConfig{
		ModelPath:  path,
		Category:   ConditioningCategory,
		OverallKey: OverallConditionKey,
		Labels:     []string{"Separation", "Abdominal Definition", OverallConditionKey},
		InputSize:  224,
		InputName:  "input",
		OutputName: "scores",
	}
}

// ModelProvider scores a category with an ONNX model
type ModelProvider struct {
	session *inference.Session
	config  ModelConfig
}

// NewModelProvider loads the model; inference.Initialize must have run
func NewModelProvider(config ModelConfig, opts ...inference.SessionOption) (*ModelProvider, error) {
	if len(config.Labels) == 0 {
		return nil, fmt.Errorf("%s model has no labels", config.Category)
	}
	if config.InputSize <= 0 {
		return nil, fmt.Errorf("invalid input size: %d", config.InputSize)
	}

	opts = append(opts, inference.WithCoreML(config.CoreML))
	session, err := inference.NewSession(config.ModelPath,
		[]string{config.InputName}, []string{config.OutputName}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s session: %w", config.Category, err)
	}

	return &ModelProvider{
		session: session,
		config:  config,
	}, nil
}

// Analyze runs the regression head over img
func (m *ModelProvider) Analyze(img gocv.Mat) (scoring.CategoryScoreSet, error) {
	if img.Empty() {
		return scoring.CategoryScoreSet{}, fmt.Errorf("empty image")
	}
	size := m.config.InputSize

	inputTensor, err := inference.CreateTensor([]int64{1, 3, int64(size), int64(size)},
		inference.NCHW(img, size, size, imagenetMean, imagenetStd))
	if err != nil {
		return scoring.CategoryScoreSet{}, fmt.Errorf("failed to create input tensor: %w", err)
	}
	defer inputTensor.Destroy()

	outputTensor, err := inference.CreateEmptyTensor[float32]([]int64{1, int64(len(m.config.Labels))})
	if err != nil {
		return scoring.CategoryScoreSet{}, fmt.Errorf("failed to create output tensor: %w", err)
	}
	defer outputTensor.Destroy()

	if err := m.session.Run([]ort.Value{inputTensor}, []ort.Value{outputTensor}); err != nil {
		return scoring.CategoryScoreSet{}, fmt.Errorf("%s inference failed: %w", m.config.Category, err)
	}

	return ScoresFromOutput(m.config, outputTensor.GetData())
}

// ScoresFromOutput maps per-label values in [0, 1] onto clamped scores
func ScoresFromOutput(config ModelConfig, output []float32) (scoring.CategoryScoreSet, error) {
	if len(output) < len(config.Labels) {
		return scoring.CategoryScoreSet{}, fmt.Errorf("%s model returned %d values for %d labels",
			config.Category, len(output), len(config.Labels))
	}

	entries := make([]scoring.Entry, len(config.Labels))
	for i, label := range config.Labels {
		entries[i] = scoring.Entry{Label: label, Score: scoring.Clamp(float64(output[i]) * 100)}
	}
	return scoring.NewCategoryScoreSet(config.Category, config.OverallKey, entries...)
}

// Close releases model resources
func (m *ModelProvider) Close() error {
	return m.session.Destroy()
}
