// Package config defines process configuration and its loading.
package config

import (
	"fmt"
)

// Background removal and anatomy provider modes.
const (
	BackgroundRembg = "rembg"
	BackgroundU2Net = "u2net"

	AnatomyStub  = "stub"
	AnatomyModel = "model"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat is "json" for production output, anything else for console.
	LogFormat string `koanf:"log_format"`

	// ONNXLibraryPath points at the onnxruntime shared library; empty uses the platform default.
	ONNXLibraryPath string `koanf:"onnx_library_path"`

	// UseCoreML requests the CoreML execution provider for every model.
	UseCoreML bool `koanf:"use_coreml"`

	PoseModelPath string `koanf:"pose_model_path"`
	PoseInputSize int    `koanf:"pose_input_size"`

	// BackgroundMode selects the remover: rembg (external process) or u2net (in-process).
	BackgroundMode string `koanf:"background_mode"`
	RembgBinary    string `koanf:"rembg_binary"`
	U2NetModelPath string `koanf:"u2net_model_path"`

	// AnatomyMode selects stub or model-backed muscularity and conditioning scores.
	AnatomyMode           string `koanf:"anatomy_mode"`
	MuscularityModelPath  string `koanf:"muscularity_model_path"`
	ConditioningModelPath string `koanf:"conditioning_model_path"`

	// Backdrop is the color transparent pixels are flattened over: black or white.
	Backdrop string `koanf:"backdrop"`

	CLAHEClipLimit float64 `koanf:"clahe_clip_limit"`
	CLAHETileGrid  int     `koanf:"clahe_tile_grid"`

	// VisibilityThreshold is the landmark confidence a ratio point must exceed.
	VisibilityThreshold float64 `koanf:"visibility_threshold"`

	// MetricsAddr serves /metrics when set, e.g. ":9090".
	MetricsAddr string `koanf:"metrics_addr"`

	// MinDwellSeconds is how long a pose must persist to be a held pose.
	MinDwellSeconds float64 `koanf:"min_dwell_seconds"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:              "info",
		LogFormat:             "console",
		PoseModelPath:         "models/pose_landmark_heavy.onnx",
		PoseInputSize:         256,
		BackgroundMode:        BackgroundRembg,
		RembgBinary:           "rembg",
		U2NetModelPath:        "models/u2net.onnx",
		AnatomyMode:           AnatomyStub,
		MuscularityModelPath:  "models/muscularity.onnx",
		ConditioningModelPath: "models/conditioning.onnx",
		Backdrop:              "black",
		CLAHEClipLimit:        2.0,
		CLAHETileGrid:         8,
		VisibilityThreshold:   0.5,
		MinDwellSeconds:       1.0,
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.CLAHEClipLimit <= 0:
		return fmt.Errorf("%w: clahe_clip_limit must be positive, got %v", ErrInvalidConfig, c.CLAHEClipLimit)
	case c.CLAHETileGrid <= 0:
		return fmt.Errorf("%w: clahe_tile_grid must be positive, got %d", ErrInvalidConfig, c.CLAHETileGrid)
	case c.PoseInputSize <= 0:
		return fmt.Errorf("%w: pose_input_size must be positive, got %d", ErrInvalidConfig, c.PoseInputSize)
	case c.VisibilityThreshold < 0 || c.VisibilityThreshold >= 1:
		return fmt.Errorf("%w: visibility_threshold must be in [0, 1), got %v", ErrInvalidConfig, c.VisibilityThreshold)
	case c.MinDwellSeconds <= 0:
		return fmt.Errorf("%w: min_dwell_seconds must be positive, got %v", ErrInvalidConfig, c.MinDwellSeconds)
	}

	switch c.Backdrop {
	case "black", "white":
	default:
		return fmt.Errorf("%w: unknown backdrop %q", ErrInvalidConfig, c.Backdrop)
	}
	switch c.BackgroundMode {
	case BackgroundRembg, BackgroundU2Net:
	default:
		return fmt.Errorf("%w: unknown background_mode %q", ErrInvalidConfig, c.BackgroundMode)
	}
	switch c.AnatomyMode {
	case AnatomyStub, AnatomyModel:
	default:
		return fmt.Errorf("%w: unknown anatomy_mode %q", ErrInvalidConfig, c.AnatomyMode)
	}
	return nil
}
