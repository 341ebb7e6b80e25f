package inference

import (
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
	"go.uber.org/zap"
)

var (
	initialized bool
	initMu      sync.Mutex
)

// Initialize sets up the ONNX Runtime environment (call once at startup).
// An empty libraryPath keeps onnxruntime_go's platform default.
func Initialize(libraryPath string) error {
	initMu.Lock()
	defer initMu.Unlock()

	if initialized {
		return nil
	}

	if libraryPath != "" {
		ort.SetSharedLibraryPath(libraryPath)
	}

	if err := ort.InitializeEnvironment(); err != nil {
		return fmt.Errorf("failed to initialize ONNX Runtime: %w", err)
	}

	initialized = true
	return nil
}

// Shutdown cleans up the ONNX Runtime environment
func Shutdown() error {
	initMu.Lock()
	defer initMu.Unlock()

	if !initialized {
		return nil
	}

	if err := ort.DestroyEnvironment(); err != nil {
		return err
	}

	initialized = false
	return nil
}

// Initialized reports whether Initialize has run
func Initialized() bool {
	initMu.Lock()
	defer initMu.Unlock()
	return initialized
}

// SessionOption configures NewSession
type SessionOption func(*sessionConfig)

type sessionConfig struct {
	coreML bool
	logger *zap.Logger
}

// WithCoreML requests the CoreML execution provider, falling back to CPU
func WithCoreML(enabled bool) SessionOption {
	return func(c *sessionConfig) {
		c.coreML = enabled
	}
}

// WithLogger sets the logger used to report the chosen execution provider
func WithLogger(logger *zap.Logger) SessionOption {
	return func(c *sessionConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Session wraps an ONNX Runtime inference session
type Session struct {
	session     *ort.DynamicAdvancedSession
	modelPath   string
	inputNames  []string
	outputNames []string
}

// NewSession creates a new inference session from an ONNX model
func NewSession(modelPath string, inputNames, outputNames []string, opts ...SessionOption) (*Session, error) {
	if !Initialized() {
		return nil, fmt.Errorf("ONNX Runtime not initialized, call Initialize() first")
	}

	cfg := sessionConfig{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&cfg)
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("failed to create session options: %w", err)
	}
	defer options.Destroy()

	provider := "cpu"
	if cfg.coreML {
		// Flag 0 = default settings, use Neural Engine + GPU
		if err := options.AppendExecutionProviderCoreML(0); err != nil {
			cfg.logger.Warn("CoreML unavailable, using CPU", zap.String("model", modelPath), zap.Error(err))
		} else {
			provider = "coreml"
		}
	}
	cfg.logger.Info("loading model", zap.String("model", modelPath), zap.String("provider", provider))

	session, err := ort.NewDynamicAdvancedSession(
		modelPath,
		inputNames,
		outputNames,
		options,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create session for %s: %w", modelPath, err)
	}

	return &Session{
		session:     session,
		modelPath:   modelPath,
		inputNames:  inputNames,
		outputNames: outputNames,
	}, nil
}

// Run executes inference with the given inputs
func (s *Session) Run(inputs []ort.Value, outputs []ort.Value) error {
	return s.session.Run(inputs, outputs)
}

// ModelPath returns the model file the session was created from
func (s *Session) ModelPath() string {
	return s.modelPath
}

// Destroy releases session resources
func (s *Session) Destroy() error {
	if s.session != nil {
		return s.session.Destroy()
	}
	return nil
}

// CreateTensor creates a tensor with the given shape and data
func CreateTensor[T ort.TensorData](shape []int64, data []T) (*ort.Tensor[T], error) {
	return ort.NewTensor(ort.NewShape(shape...), data)
}

// CreateEmptyTensor creates a zeroed tensor for output
func CreateEmptyTensor[T ort.TensorData](shape []int64) (*ort.Tensor[T], error) {
	size := int64(1)
	for _, dim := range shape {
		size *= dim
	}
	data := make([]T, size)
	return ort.NewTensor(ort.NewShape(shape...), data)
}
