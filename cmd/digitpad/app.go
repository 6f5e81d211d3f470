package main

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/spf13/cobra"

	"digitpad/internal/canvas"
	"digitpad/internal/classifier"
	"digitpad/internal/config"
	"digitpad/internal/controller"
	"digitpad/internal/logging"
	"digitpad/internal/metrics"
	"digitpad/internal/pipeline"
	"digitpad/internal/presenter"
	"digitpad/internal/raster"
)

// app holds everything a subcommand needs.
type app struct {
	cfg      *config.Config
	logger   *logging.Logger
	metrics  *metrics.DigitpadMetrics
	client   *classifier.Client
	canvas   *canvas.GG
	preview  *canvas.Preview
	board    *presenter.Board
	ctrl     *controller.Controller
	shutdown context.CancelFunc
}

type stderrNotifier struct{}

func (stderrNotifier) Warn(msg string) { fmt.Fprintln(os.Stderr, "!", msg) }

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = config.FindConfigFile()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if u, _ := cmd.Flags().GetString("classifier-url"); u != "" {
		cfg.Classifier.BaseURL = u
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.Logging.Level = lvl
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*logging.Logger, error) {
	lc, err := cfg.LoggerConfig()
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(lc)
	if err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}
	logging.SetDefault(logger)
	return logger, nil
}

func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics.NewDigitpadMetrics(nil),
		preview: &canvas.Preview{},
		board:   presenter.NewBoard(presenter.DefaultChartOptions()),
	}

	a.client, err = classifier.NewClientWithTimeout(cfg.Classifier.BaseURL, cfg.Timeout())
	if err != nil {
		return nil, err
	}
	a.canvas, err = canvas.NewGG(cfg.Canvas.Width, cfg.Canvas.Height, cfg.Canvas.BrushWidth)
	if err != nil {
		return nil, err
	}

	p, err := pipeline.Build(cfg.StageSpecs())
	if err != nil {
		return nil, err
	}
	a.ctrl, err = controller.New(controller.Options{
		Canvas:        a.canvas,
		Classifier:    a.client,
		Preview:       a.preview,
		Pipeline:      p,
		Presenter:     a.board,
		Notifier:      stderrNotifier{},
		Logger:        logger,
		Metrics:       a.metrics,
		Quiescence:    cfg.Quiescence(),
		TemplateGuide: cfg.Canvas.TemplateGuide,
	})
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	a.shutdown = cancel
	if cfg.Metrics.Enabled {
		go func() {
			if err := a.metrics.Registry().Serve(ctx, cfg.Metrics.Addr); err != nil {
				logger.Error("metrics server stopped", "error", err)
			}
		}()
		logger.Info("serving metrics", "addr", cfg.Metrics.Addr)
	}

	logger.Debug("client ready", "classifier", a.client.BaseURL(), "stages", p.Stages())
	return a, nil
}

func (a *app) Close() {
	if a.shutdown != nil {
		a.shutdown()
	}
	_ = a.logger.Close()
}

// load paints the drawing stored at path onto the canvas.
func (a *app) load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening drawing: %w", err)
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return fmt.Errorf("decoding drawing: %w", err)
	}
	img, err := raster.FromImage(src)
	if err != nil {
		return err
	}
	a.canvas.Clear()
	a.canvas.Paint(img)
	return nil
}

// selectLabel applies --expected when it was given.
func (a *app) selectLabel(cmd *cobra.Command) error {
	if !cmd.Flags().Changed("expected") {
		return nil
	}
	d, _ := cmd.Flags().GetInt("expected")
	return a.ctrl.SelectDigit(d)
}

func writePNG(path string, img image.Image) error {
	r, err := raster.FromImage(img)
	if err != nil {
		return err
	}
	data, err := r.EncodePNG()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
