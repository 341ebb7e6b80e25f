package main

import (
	ort "github.com/yalue/onnxruntime_go"

	"github.com/dudu/poseperfect/internal/anatomy"
	"github.com/dudu/poseperfect/internal/background"
	"github.com/dudu/poseperfect/internal/config"
	"github.com/dudu/poseperfect/internal/detector"
)

// target is one model file and the tensor names the loader for it expects.
// Empty name lists skip the name check.
type target struct {
	Role    string
	Path    string
	Inputs  []string
	Outputs []string
}

// configuredTargets lists the models the current configuration would load
func configuredTargets(cfg *config.Config) []target {
	pose := detector.DefaultConfig()
	targets := []target{{
		Role:    "pose landmarks",
		Path:    cfg.PoseModelPath,
		Inputs:  []string{pose.InputName},
		Outputs: []string{pose.LandmarkOutput, pose.FlagOutput},
	}}

	if cfg.BackgroundMode == config.BackgroundU2Net {
		u2 := background.DefaultU2NetConfig()
		targets = append(targets, target{
			Role:    "background matting",
			Path:    cfg.U2NetModelPath,
			Inputs:  []string{u2.InputName},
			Outputs: []string{u2.OutputName},
		})
	}

	if cfg.AnatomyMode == config.AnatomyModel {
		for _, m := range []anatomy.ModelConfig{
			anatomy.MuscularityModelConfig(cfg.MuscularityModelPath),
			anatomy.ConditioningModelConfig(cfg.ConditioningModelPath),
		} {
			targets = append(targets, target{
				Role:    m.Category,
				Path:    m.ModelPath,
				Inputs:  []string{m.InputName},
				Outputs: []string{m.OutputName},
			})
		}
	}
	return targets
}

// argumentTargets wraps model paths given on the command line
func argumentTargets(paths []string) []target {
	targets := make([]target, 0, len(paths))
	for _, p := range paths {
		targets = append(targets, target{Role: "argument", Path: p})
	}
	return targets
}

// missingNames returns the expected tensor names the model does not declare
func missingNames(expected []string, infos []ort.InputOutputInfo) []string {
	declared := make(map[string]bool, len(infos))
	for _, info := range infos {
		declared[info.Name] = true
	}
	var missing []string
	for _, name := range expected {
		if !declared[name] {
			missing = append(missing, name)
		}
	}
	return missing
}
