package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/dudu/poseperfect/internal/analysis"
	"github.com/dudu/poseperfect/internal/anatomy"
	"github.com/dudu/poseperfect/internal/background"
	"github.com/dudu/poseperfect/internal/config"
	"github.com/dudu/poseperfect/internal/detector"
	"github.com/dudu/poseperfect/internal/imaging"
	"github.com/dudu/poseperfect/internal/inference"
	"github.com/dudu/poseperfect/internal/logging"
	"github.com/dudu/poseperfect/internal/metrics"
	"github.com/dudu/poseperfect/internal/pipeline"
	"github.com/dudu/poseperfect/internal/ui"
	"github.com/dudu/poseperfect/internal/video"
)

type Options struct {
	ImagePath    string
	VideoPath    string
	Division     string
	Pose         string
	AnnotatedOut string
	MetricsAddr  string
	Show         bool
}

func main() {
	opts := parseFlags()

	if (opts.ImagePath == "") == (opts.VideoPath == "") {
		fmt.Fprintln(os.Stderr, "Error: exactly one of --image or --video is required")
		flag.Usage()
		os.Exit(2)
	}

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags() Options {
	opts := Options{}

	flag.StringVar(&opts.ImagePath, "image", "", "Photo to analyze (static mode)")
	flag.StringVar(&opts.ImagePath, "i", "", "Photo to analyze (shorthand)")
	flag.StringVar(&opts.VideoPath, "video", "", "Posing routine video to analyze (dynamic mode)")
	flag.StringVar(&opts.VideoPath, "v", "", "Posing routine video (shorthand)")
	flag.StringVar(&opts.Division, "division", string(analysis.MensPhysique), "Competition division")
	flag.StringVar(&opts.Division, "d", string(analysis.MensPhysique), "Competition division (shorthand)")
	flag.StringVar(&opts.Pose, "pose", "", "Pose being performed, e.g. \"Front Pose\"")
	flag.StringVar(&opts.AnnotatedOut, "annotated-out", "", "Write the annotated diagnostic image to this PNG path")
	flag.StringVar(&opts.MetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while running")
	flag.BoolVar(&opts.Show, "show", false, "Show the annotated image in a window until a key is pressed")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "PosePerfect - physique posing analysis\n\n")
		fmt.Fprintf(os.Stderr, "Usage: poseperfect [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nDivisions:\n")
		for _, d := range analysis.Divisions() {
			fmt.Fprintf(os.Stderr, "  %s\n", d)
		}
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  poseperfect --image front.jpg --pose \"Front Pose\"\n")
		fmt.Fprintf(os.Stderr, "  poseperfect --video routine.mp4 --division \"Classic Physique\"\n")
	}

	flag.Parse()
	return opts
}

func run(opts Options) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	if opts.MetricsAddr != "" {
		cfg.MetricsAddr = opts.MetricsAddr
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	defer logger.Sync()

	req, err := buildRequest(opts)
	if err != nil {
		return err
	}

	m := metrics.NewManager()
	if cfg.MetricsAddr != "" {
		shutdown := serveMetrics(cfg.MetricsAddr, m, logger)
		defer shutdown()
	}

	if err := inference.Initialize(cfg.ONNXLibraryPath); err != nil {
		return err
	}
	defer inference.Shutdown()

	app, err := newApp(cfg, logger, m)
	if err != nil {
		return err
	}
	defer app.Close()

	if req.Mode() == analysis.Dynamic {
		data, err := os.ReadFile(opts.VideoPath)
		if err != nil {
			return err
		}
		report, err := app.analyzer.AnalyzeRoutine(ctx, req, data)
		if err != nil {
			return err
		}
		return writeJSON(os.Stdout, report)
	}

	data, err := os.ReadFile(opts.ImagePath)
	if err != nil {
		return err
	}
	report, err := app.analyzer.AnalyzeImage(ctx, req, data)
	if err != nil {
		return err
	}
	if opts.AnnotatedOut != "" && len(report.Annotated) > 0 {
		if err := os.WriteFile(opts.AnnotatedOut, report.Annotated, 0o644); err != nil {
			return fmt.Errorf("failed to write annotated image: %w", err)
		}
		logger.Info("wrote annotated image", zap.String("path", opts.AnnotatedOut))
	}
	if err := writeJSON(os.Stdout, report); err != nil {
		return err
	}
	if opts.Show && len(report.Annotated) > 0 {
		return showReport(report)
	}
	return nil
}

func buildRequest(opts Options) (analysis.Request, error) {
	mode := analysis.Static
	if opts.VideoPath != "" {
		mode = analysis.Dynamic
	}
	division, err := analysis.ParseDivision(opts.Division)
	if err != nil {
		return analysis.Request{}, err
	}
	return analysis.NewRequest(mode, division, opts.Pose)
}

// app owns every model-backed component of one run
type app struct {
	analyzer *analysis.Analyzer
	pipeline *pipeline.Pipeline
	closers  []io.Closer
}

func newApp(cfg *config.Config, logger *zap.Logger, m *metrics.Manager) (*app, error) {
	a := &app{}
	sessionOpts := []inference.SessionOption{inference.WithLogger(logger)}

	detConfig := detector.DefaultConfig()
	detConfig.ModelPath = cfg.PoseModelPath
	detConfig.InputSize = cfg.PoseInputSize
	detConfig.CoreML = cfg.UseCoreML
	det, err := detector.NewPoseLandmarker(detConfig, sessionOpts...)
	if err != nil {
		return nil, err
	}

	var remover background.Remover
	switch cfg.BackgroundMode {
	case config.BackgroundU2Net:
		u2Config := background.DefaultU2NetConfig()
		u2Config.ModelPath = cfg.U2NetModelPath
		u2Config.CoreML = cfg.UseCoreML
		remover, err = background.NewU2Net(u2Config, sessionOpts...)
		if err != nil {
			det.Close()
			return nil, err
		}
	default:
		remover = background.NewExecRemover(background.WithBinary(cfg.RembgBinary), background.WithExecLogger(logger))
	}

	backdrop, err := imaging.ParseBackdrop(cfg.Backdrop)
	if err != nil {
		det.Close()
		remover.Close()
		return nil, err
	}
	a.pipeline, err = pipeline.New(remover, det, pipeline.Config{
		Backdrop: backdrop,
		Lighting: imaging.LightingParams{ClipLimit: cfg.CLAHEClipLimit, TileGrid: cfg.CLAHETileGrid},
	}, pipeline.WithLogger(logger), pipeline.WithMetrics(m))
	if err != nil {
		det.Close()
		remover.Close()
		return nil, err
	}

	analyzerOpts := []analysis.Option{
		analysis.WithDeconstructor(video.NewDeconstructor(det,
			video.WithMinDwell(cfg.MinDwellSeconds),
			video.WithLogger(logger),
			video.WithMetrics(m))),
		analysis.WithVisibilityThreshold(cfg.VisibilityThreshold),
		analysis.WithLogger(logger),
		analysis.WithMetrics(m),
	}

	if cfg.AnatomyMode == config.AnatomyModel {
		muscularity, err := anatomy.NewModelProvider(anatomy.MuscularityModelConfig(cfg.MuscularityModelPath), sessionOpts...)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, muscularity)

		conditioning, err := anatomy.NewModelProvider(anatomy.ConditioningModelConfig(cfg.ConditioningModelPath), sessionOpts...)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, conditioning)
		analyzerOpts = append(analyzerOpts, analysis.WithAnatomy(muscularity, conditioning))
	}

	a.analyzer = analysis.New(a.pipeline, analyzerOpts...)
	return a, nil
}

// Close releases the pipeline and any anatomy models
func (a *app) Close() error {
	var errs []error
	if a.pipeline != nil {
		errs = append(errs, a.pipeline.Close())
	}
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

func serveMetrics(addr string, m *metrics.Manager, logger *zap.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logger.Info("serving metrics", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)
	}
}

func showReport(report *analysis.StaticReport) error {
	img, err := imaging.Decode(report.Annotated)
	if err != nil {
		return err
	}
	defer img.Close()

	lines := []string{report.Message}
	if report.PoseDetected {
		lines = []string{
			fmt.Sprintf("Ratio %.2f", report.Ratio),
			fmt.Sprintf("Symmetry %d", report.Symmetry),
			fmt.Sprintf("Total %d", report.TotalPackage),
		}
	}

	window := ui.NewWindow("PosePerfect")
	defer window.Close()
	window.Show(img, lines)
	window.WaitKey(0)
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
