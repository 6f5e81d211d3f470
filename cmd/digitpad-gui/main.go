// digitpad-gui is the desktop drawing pad.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"gioui.org/app"
	"gioui.org/font/gofont"
	"gioui.org/op"
	"gioui.org/text"
	"gioui.org/unit"
	"gioui.org/widget/material"

	"digitpad/cmd/digitpad-gui/internal/theme"
	"digitpad/cmd/digitpad-gui/internal/ui"
	"digitpad/internal/canvas"
	"digitpad/internal/classifier"
	"digitpad/internal/config"
	"digitpad/internal/controller"
	"digitpad/internal/logging"
	"digitpad/internal/metrics"
	"digitpad/internal/pipeline"
	"digitpad/internal/presenter"
)

var configPath = flag.String("config", "", "path to config file")

func main() {
	flag.Parse()

	go func() {
		w := new(app.Window)
		w.Option(app.Title("digitpad"))
		w.Option(app.Size(unit.Dp(1000), unit.Dp(640)))

		if err := run(w); err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(1)
		}
		os.Exit(0)
	}()
	app.Main()
}

func run(w *app.Window) error {
	path := *configPath
	if path == "" {
		path = config.FindConfigFile()
	}
	loader := config.NewLoader(path)
	defer loader.Close()

	cfg, err := loader.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	lc, err := cfg.LoggerConfig()
	if err != nil {
		return err
	}
	logger, err := logging.New(lc)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer logger.Close()
	logging.SetDefault(logger)

	client, err := classifier.NewClientWithTimeout(cfg.Classifier.BaseURL, cfg.Timeout())
	if err != nil {
		return err
	}
	cv, err := canvas.NewGG(cfg.Canvas.Width, cfg.Canvas.Height, cfg.Canvas.BrushWidth)
	if err != nil {
		return err
	}
	p, err := pipeline.Build(cfg.StageSpecs())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := metrics.NewDigitpadMetrics(nil)
	if cfg.Metrics.Enabled {
		go func() {
			if err := m.Registry().Serve(ctx, cfg.Metrics.Addr); err != nil {
				logger.Error("metrics server stopped", "error", err)
			}
		}()
	}

	preview := &canvas.Preview{}
	board := presenter.NewBoard(presenter.DefaultChartOptions())
	ctrl, err := controller.New(controller.Options{
		Canvas:        cv,
		Classifier:    client,
		Preview:       preview,
		Pipeline:      p,
		Presenter:     board,
		Logger:        logger,
		Metrics:       m,
		Quiescence:    cfg.Quiescence(),
		TemplateGuide: cfg.Canvas.TemplateGuide,
		OnChange:      w.Invalidate,
	})
	if err != nil {
		return err
	}
	ctrl.Start()

	loader.OnChange(func(c *config.Config) {
		if err := ctrl.ApplyConfig(c); err != nil {
			logger.Warn("ignoring reloaded config", "error", err)
			return
		}
		ctrl.SetTemplateGuide(c.Canvas.TemplateGuide)
	})
	if err := loader.Watch(); err != nil {
		logger.Warn("config hot reload disabled", "error", err)
	} else {
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case err := <-loader.Errors():
					logger.Warn("config watch", "error", err)
				}
			}
		}()
	}

	logger.Info("digitpad started", "classifier", client.BaseURL(), "config", loader.Path())

	mt := material.NewTheme()
	mt.Shaper = text.NewShaper(text.WithCollection(gofont.Collection()))
	t := theme.NewTheme(mt)
	pad := ui.NewPad(ctx, t, ctrl, cv, preview, board)

	var ops op.Ops
	for {
		switch e := w.Event().(type) {
		case app.DestroyEvent:
			return e.Err
		case app.FrameEvent:
			gtx := app.NewContext(&ops, e)
			pad.Layout(gtx)
			e.Frame(gtx.Ops)
		}
	}
}
