package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/dudu/poseperfect/internal/background"
	"github.com/dudu/poseperfect/internal/batch"
	"github.com/dudu/poseperfect/internal/config"
	"github.com/dudu/poseperfect/internal/imaging"
	"github.com/dudu/poseperfect/internal/logging"
	"github.com/dudu/poseperfect/internal/pipeline"
)

func main() {
	inputDir := flag.String("input_dir", "", "Directory containing the raw input images (required)")
	outputDir := flag.String("output_dir", "", "Directory where processed images will be saved (required)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Preprocess images for dataset creation.\n\n")
		fmt.Fprintf(os.Stderr, "Usage: prepdataset --input_dir <dir> --output_dir <dir>\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *inputDir == "" || *outputDir == "" {
		fmt.Fprintln(os.Stderr, "Error: --input_dir and --output_dir are required")
		flag.Usage()
		os.Exit(2)
	}

	if err := run(*inputDir, *outputDir); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(inputDir, outputDir string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	defer logger.Sync()

	backdrop, err := imaging.ParseBackdrop(cfg.Backdrop)
	if err != nil {
		return err
	}

	remover := background.NewExecRemover(
		background.WithBinary(cfg.RembgBinary),
		background.WithExecLogger(logger),
	)
	processor := batch.NewProcessor(remover,
		batch.WithOutput(os.Stdout),
		batch.WithLogger(logger),
		batch.WithConfig(pipeline.Config{
			Backdrop: backdrop,
			Lighting: imaging.LightingParams{ClipLimit: cfg.CLAHEClipLimit, TileGrid: cfg.CLAHETileGrid},
		}),
	)

	summary, err := processor.Run(ctx, inputDir, outputDir)
	if err != nil {
		return err
	}
	logger.Info("batch finished",
		zap.Int("found", summary.Found),
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed))
	return nil
}
