package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	ort "github.com/yalue/onnxruntime_go"

	"github.com/dudu/poseperfect/internal/anatomy"
	"github.com/dudu/poseperfect/internal/config"
)

func TestConfiguredTargets(t *testing.T) {
	t.Run("defaults probe only the pose model", func(t *testing.T) {
		cfg := config.New()
		cfg.PoseModelPath = "models/pose.onnx"

		targets := configuredTargets(cfg)
		require.Len(t, targets, 1)
		assert.Equal(t, "models/pose.onnx", targets[0].Path)
		assert.Equal(t, []string{"input_1"}, targets[0].Inputs)
		assert.Equal(t, []string{"Identity", "Identity_1"}, targets[0].Outputs)
	})

	t.Run("u2net and anatomy models are added when enabled", func(t *testing.T) {
		cfg := config.New()
		cfg.BackgroundMode = config.BackgroundU2Net
		cfg.U2NetModelPath = "models/u2net.onnx"
		cfg.AnatomyMode = config.AnatomyModel
		cfg.MuscularityModelPath = "models/m.onnx"
		cfg.ConditioningModelPath = "models/c.onnx"

		targets := configuredTargets(cfg)
		require.Len(t, targets, 4)
		assert.Equal(t, "models/u2net.onnx", targets[1].Path)
		assert.Equal(t, []string{"1959"}, targets[1].Outputs)
		assert.Equal(t, anatomy.MuscularityCategory, targets[2].Role)
		assert.Equal(t, "models/m.onnx", targets[2].Path)
		assert.Equal(t, "models/c.onnx", targets[3].Path)
	})
}

func TestArgumentTargets(t *testing.T) {
	targets := argumentTargets([]string{"a.onnx", "b.onnx"})
	require.Len(t, targets, 2)
	assert.Equal(t, "b.onnx", targets[1].Path)
	assert.Empty(t, targets[0].Inputs)

	assert.Empty(t, argumentTargets(nil))
}

func TestMissingNames(t *testing.T) {
	infos := []ort.InputOutputInfo{{Name: "Identity"}, {Name: "Identity_1"}}

	assert.Empty(t, missingNames([]string{"Identity", "Identity_1"}, infos))
	assert.Equal(t, []string{"scores"}, missingNames([]string{"Identity", "scores"}, infos))
	assert.Empty(t, missingNames(nil, infos))
}
