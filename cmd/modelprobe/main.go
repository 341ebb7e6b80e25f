package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/dudu/poseperfect/internal/config"
	"github.com/dudu/poseperfect/internal/inference"
)

func main() {
	libraryPath := flag.String("lib", "", "onnxruntime shared library (defaults to POSEPERFECT_ONNX_LIBRARY_PATH)")
	skipMetal := flag.Bool("skip-metal", false, "Skip the go-metal import check")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: modelprobe [options] [model.onnx ...]\n\n")
		fmt.Fprintf(os.Stderr, "Checks that ONNX Runtime can load each model and whether go-metal can import it.\n")
		fmt.Fprintf(os.Stderr, "Without arguments every model the current configuration uses is checked.\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := config.Load(context.Background())
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	lib := *libraryPath
	if lib == "" {
		lib = cfg.ONNXLibraryPath
	}

	targets := argumentTargets(flag.Args())
	if len(targets) == 0 {
		targets = configuredTargets(cfg)
	}

	fmt.Println("Initializing ONNX Runtime...")
	if err := inference.Initialize(lib); err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}
	defer inference.Shutdown()
	fmt.Println("✓ ONNX Runtime initialized")

	failed := 0
	for _, t := range targets {
		if err := probeRuntime(t); err != nil {
			fmt.Printf("❌ %v\n", err)
			failed++
			continue
		}
		if !*skipMetal {
			probeMetal(t.Path)
		}
	}

	fmt.Printf("\n%d of %d models passed.\n", len(targets)-failed, len(targets))
	if failed > 0 {
		inference.Shutdown()
		os.Exit(1)
	}
}

func probeRuntime(t target) error {
	fmt.Printf("\nTesting ONNX model (%s): %s\n", t.Role, t.Path)

	if _, err := os.Stat(t.Path); err != nil {
		return fmt.Errorf("model file not readable: %w", err)
	}

	inputs, outputs, err := ort.GetInputOutputInfo(t.Path)
	if err != nil {
		return fmt.Errorf("failed to get model info: %w", err)
	}

	fmt.Println("✅ Model loaded by ONNX Runtime.")
	printInfo("Inputs", inputs)
	printInfo("Outputs", outputs)

	if missing := missingNames(t.Inputs, inputs); len(missing) > 0 {
		return fmt.Errorf("%s: model has no input named %v", t.Path, missing)
	}
	if missing := missingNames(t.Outputs, outputs); len(missing) > 0 {
		return fmt.Errorf("%s: model has no output named %v", t.Path, missing)
	}

	fmt.Println("\nMetadata:")
	metadata, err := ort.GetModelMetadata(t.Path)
	if err != nil {
		fmt.Printf("  (Could not read metadata: %v)\n", err)
		return nil
	}
	defer metadata.Destroy()

	if producer, err := metadata.GetProducerName(); err == nil {
		fmt.Printf("  Producer: %s\n", producer)
	}
	if version, err := metadata.GetVersion(); err == nil {
		fmt.Printf("  Version: %d\n", version)
	}
	if desc, err := metadata.GetDescription(); err == nil && desc != "" {
		fmt.Printf("  Description: %s\n", desc)
	}
	return nil
}

func printInfo(title string, infos []ort.InputOutputInfo) {
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	fmt.Printf("\n%s (%d):\n", title, len(infos))
	for _, info := range infos {
		fmt.Printf("  %s: shape=%v, type=%v\n", info.Name, info.Dimensions, info.DataType)
	}
}
