// Package controller wires capture, the image pipeline, the classifier and
// the presenter into the predict, train and reset flows, and owns the UI
// state those flows mutate.
package controller

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"sync"
	"time"

	"digitpad/internal/canvas"
	"digitpad/internal/capture"
	"digitpad/internal/classifier"
	"digitpad/internal/config"
	"digitpad/internal/debounce"
	"digitpad/internal/logging"
	"digitpad/internal/metrics"
	"digitpad/internal/pipeline"
	"digitpad/internal/presenter"
	"digitpad/internal/raster"
)

// DefaultQuiescence is the debounce window after a stroke ends.
const DefaultQuiescence = 500 * time.Millisecond

// Display shows the processed raster next to the drawing.
type Display interface {
	Show(img *raster.Image)
	Clear()
}

// Notifier surfaces blocking notices to the user.
type Notifier interface {
	Warn(msg string)
}

// Options configures a Controller. Canvas and Classifier are required.
type Options struct {
	Canvas     canvas.Canvas
	Classifier classifier.Service

	Preview   Display
	Pipeline  *pipeline.Pipeline
	Presenter presenter.Presenter
	Notifier  Notifier
	Logger    *logging.Logger
	Metrics   *metrics.DigitpadMetrics

	// Quiescence defaults to DefaultQuiescence when zero.
	Quiescence    time.Duration
	TemplateGuide bool

	// Rand picks random labels; nil uses the global source.
	Rand *rand.Rand

	// OnChange is called after every UIState mutation, outside the lock.
	OnChange func()
}

// Controller is the interaction controller for one drawing surface.
type Controller struct {
	canvas     canvas.Canvas
	classifier classifier.Service
	preview    Display
	presenter  presenter.Presenter
	notifier   Notifier
	logger     *logging.Logger
	metrics    *metrics.DigitpadMetrics
	debouncer  *debounce.Debouncer
	capture    *capture.Capture
	intn       func(int) int
	onChange   func()

	mu         sync.Mutex
	pipeline   *pipeline.Pipeline
	state      UIState
	drawing    bool
	predicting int
	training   int
	epoch      uint64
}

var _ capture.Listener = (*Controller)(nil)

// New creates a controller. Call Start to pick the first expected label.
func New(opts Options) (*Controller, error) {
	if opts.Canvas == nil {
		return nil, errors.New("controller: canvas is required")
	}
	if opts.Classifier == nil {
		return nil, errors.New("controller: classifier is required")
	}

	c := &Controller{
		canvas:     opts.Canvas,
		classifier: opts.Classifier,
		preview:    opts.Preview,
		presenter:  opts.Presenter,
		notifier:   opts.Notifier,
		logger:     opts.Logger,
		metrics:    opts.Metrics,
		pipeline:   opts.Pipeline,
		onChange:   opts.OnChange,
		intn:       rand.IntN,
	}
	if opts.Rand != nil {
		c.intn = opts.Rand.IntN
	}
	if c.preview == nil {
		c.preview = &canvas.Preview{}
	}
	if c.presenter == nil {
		c.presenter = presenter.NewBoard(presenter.DefaultChartOptions())
	}
	if c.logger == nil {
		c.logger = logging.Nop()
	}
	c.logger = c.logger.WithComponent("controller")
	if c.metrics == nil {
		c.metrics = metrics.NewDigitpadMetrics(nil)
	}
	if c.pipeline == nil {
		c.pipeline = pipeline.Default()
	}

	wait := opts.Quiescence
	if wait <= 0 {
		wait = DefaultQuiescence
	}
	c.debouncer = debounce.New(wait)
	c.debouncer.OnCancel = c.metrics.DebounceCancelled.Inc

	c.state.TemplateGuide = opts.TemplateGuide
	c.capture = capture.New(opts.Canvas, c)
	return c, nil
}

// Start picks the initial random expected label.
func (c *Controller) Start() {
	c.RandomizeExpected()
}

// Capture returns the input state machine feeding this controller.
func (c *Controller) Capture() *capture.Capture { return c.capture }

// Handle forwards a pointer event to capture.
func (c *Controller) Handle(e capture.Event) { c.capture.Handle(e) }

// State returns a copy of the UI state.
func (c *Controller) State() UIState {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.state.clone()
	s.Phase = c.phaseLocked()
	return s
}

// Preview returns the display showing processed rasters.
func (c *Controller) Preview() Display { return c.preview }

// Presenter returns the prediction presenter.
func (c *Controller) Presenter() presenter.Presenter { return c.presenter }

// Debouncer exposes the stroke debouncer.
func (c *Controller) Debouncer() *debounce.Debouncer { return c.debouncer }

func (c *Controller) phaseLocked() Phase {
	switch {
	case c.training > 0:
		return PhaseTraining
	case c.predicting > 0:
		return PhasePredicting
	case c.drawing:
		return PhaseDrawing
	default:
		return PhaseIdle
	}
}

func (c *Controller) changed() {
	if c.onChange != nil {
		c.onChange()
	}
}

func (c *Controller) update(fn func(s *UIState)) {
	c.mu.Lock()
	fn(&c.state)
	c.mu.Unlock()
	c.changed()
}

// StrokeStarted implements capture.Listener.
func (c *Controller) StrokeStarted() {
	c.mu.Lock()
	c.drawing = true
	c.mu.Unlock()
	c.changed()
}

// StrokeEnded implements capture.Listener. It schedules a prediction once
// the quiescence window passes without another stroke.
func (c *Controller) StrokeEnded() {
	c.mu.Lock()
	c.drawing = false
	c.mu.Unlock()
	c.metrics.StrokesTotal.Inc()

	c.debouncer.Trigger(func() {
		// errors are logged inside Predict
		_, _ = c.Predict(context.Background())
	})
	c.changed()
}

func (c *Controller) session() (*Session, error) {
	snapshot := c.canvas.Snapshot()

	c.mu.Lock()
	p := c.pipeline
	expected := c.state.Expected
	epoch := c.epoch
	c.mu.Unlock()

	return newSession(snapshot, p, expected, epoch)
}

// Predict snapshots the canvas, normalizes it, shows the result on the
// preview, and asks the classifier for a prediction. On failure the UI is
// left untouched.
func (c *Controller) Predict(ctx context.Context) (*classifier.Prediction, error) {
	sess, err := c.session()
	if err != nil {
		c.logger.Error("prepare drawing", "error", err)
		return nil, err
	}
	c.preview.Show(sess.Image)
	return c.predict(ctx, sess)
}

func (c *Controller) predict(ctx context.Context, sess *Session) (*classifier.Prediction, error) {
	id := sess.ID.String()
	ctx = logging.ContextWithSession(ctx, id)
	log := c.logger.WithContext(ctx)

	c.mu.Lock()
	c.predicting++
	c.mu.Unlock()
	c.metrics.InFlight.Inc()
	c.changed()
	defer func() {
		c.mu.Lock()
		c.predicting--
		c.mu.Unlock()
		c.metrics.InFlight.Dec()
		c.changed()
	}()

	log.Debug("sending prediction request", "image", sess.DataURI, "expected", labelAttr(sess.Expected))

	start := time.Now()
	pred, err := c.requestPrediction(ctx, sess)
	var malformed *classifier.MalformedResponseError
	isMalformed := errors.As(err, &malformed)
	c.metrics.RecordPredict(time.Since(start), err, isMalformed)
	if err != nil {
		log.Error("prediction failed", "error", err, "malformed", isMalformed)
		return nil, fmt.Errorf("predict: %w", err)
	}

	c.mu.Lock()
	stale := sess.epoch != c.epoch
	if !stale {
		markButtons(&c.state.Buttons, pred.Digit)
	}
	c.mu.Unlock()

	if stale {
		log.Info("discarding prediction made before reset", "digit", pred.Digit)
		return pred, nil
	}

	c.presenter.Present(pred)
	summary := presenter.Summary(pred)
	c.update(func(s *UIState) { s.Summary = summary })

	log.Info("prediction received",
		"digit", pred.Digit,
		"expected", labelAttr(pred.Expected),
		"correct", pred.Correct,
		"confidence", pred.Confidences[pred.Digit],
	)
	return pred, nil
}

func (c *Controller) requestPrediction(ctx context.Context, sess *Session) (*classifier.Prediction, error) {
	resp, err := c.classifier.Predict(ctx, &classifier.PredictRequest{Image: sess.DataURI, Expected: sess.Expected})
	if err != nil {
		return nil, err
	}
	pred, err := resp.Decode()
	if err != nil {
		return nil, err
	}
	// judge against the label captured with the image
	if pred.Expected == nil && sess.Expected != nil {
		v := *sess.Expected
		pred.Expected = &v
		pred.Correct = v == pred.Digit
	}
	return pred, nil
}

func (c *Controller) beginTraining() {
	c.mu.Lock()
	c.training++
	c.mu.Unlock()
	c.metrics.InFlight.Inc()
	c.changed()
}

func (c *Controller) endTraining() {
	c.mu.Lock()
	c.training--
	c.mu.Unlock()
	c.metrics.InFlight.Dec()
	c.changed()
}

// Train asks the classifier to start a training run. The outcome is only
// logged.
func (c *Controller) Train(ctx context.Context) error {
	c.beginTraining()
	defer c.endTraining()

	c.metrics.TrainingTriggered.Inc()
	resp, err := c.classifier.StartTraining(ctx)
	if err != nil {
		c.metrics.TrainingFailuresTotal.Inc()
		c.logger.Error("training request failed", "error", err)
		return fmt.Errorf("train: %w", err)
	}
	c.logger.Info("training finished", "bytes", resp.Size)
	return nil
}

// SubmitForTraining sends the current drawing as a labelled example. It
// requires an expected label. The correctness flag comes from a fresh
// prediction of the same processed image that is submitted; if that
// prediction fails nothing is submitted.
func (c *Controller) SubmitForTraining(ctx context.Context) error {
	sess, err := c.session()
	if err != nil {
		c.logger.Error("prepare drawing", "error", err)
		return err
	}
	if sess.Expected == nil {
		return c.reject(ErrExpectedLabelRequired)
	}
	c.preview.Show(sess.Image)

	c.beginTraining()
	defer c.endTraining()

	pred, err := c.predict(ctx, sess)
	if err != nil {
		return fmt.Errorf("submit for training: %w", err)
	}

	ctx = logging.ContextWithSession(ctx, sess.ID.String())
	log := c.logger.WithContext(ctx)

	resp, err := c.classifier.SubmitTraining(ctx, &classifier.TrainRequest{
		Image:    sess.DataURI,
		Expected: *sess.Expected,
		Correct:  pred.Correct,
	})
	if err != nil {
		c.metrics.TrainingFailuresTotal.Inc()
		log.Error("training submission failed", "error", err)
		return fmt.Errorf("submit for training: %w", err)
	}
	c.metrics.TrainingSubmitted.Inc()
	log.Info("training data sent",
		"expected", *sess.Expected,
		"correct", pred.Correct,
		"bytes", resp.Size,
	)
	return nil
}

func (c *Controller) reject(err *ValidationError) error {
	c.metrics.ValidationRejects.Inc()
	c.logger.Warn("action rejected", "op", err.Op, "reason", err.Message)
	c.update(func(s *UIState) { s.Warning = err.Message })
	if c.notifier != nil {
		c.notifier.Warn(err.Message)
	}
	return err
}

// DismissWarning clears the pending warning.
func (c *Controller) DismissWarning() {
	c.update(func(s *UIState) { s.Warning = "" })
}

// Erase clears the drawing and the preview, keeping labels and marks.
func (c *Controller) Erase() {
	c.canvas.Clear()
	c.preview.Clear()
	c.changed()
}

// Reset returns to a fresh exercise: pending submissions are cancelled,
// rasters, marks, selection, the addition exercise and the chart are
// cleared, and a new random label is picked. Predictions still in flight
// are not presented when they arrive.
func (c *Controller) Reset() {
	c.debouncer.Cancel()
	c.capture.Reset()
	c.canvas.Clear()
	c.preview.Clear()
	c.presenter.Clear()

	c.mu.Lock()
	c.epoch++
	// capture dropped the open stroke, so no StrokeEnded will follow
	c.drawing = false
	guide := c.state.TemplateGuide
	c.state = UIState{TemplateGuide: guide}
	c.mu.Unlock()

	c.logger.Debug("reset")
	c.RandomizeExpected()
}

// SelectDigit makes d the expected label and redraws the template guide.
func (c *Controller) SelectDigit(d int) error {
	if d < 0 || d >= classifier.Classes {
		return fmt.Errorf("select digit: %d out of range", d)
	}
	c.setExpected(d, nil)
	c.drawTemplate()
	return nil
}

// RandomizeExpected picks a uniformly random label.
func (c *Controller) RandomizeExpected() {
	c.setExpected(c.intn(classifier.Classes), nil)
	c.drawTemplate()
}

// RandomizeAddition starts an addition exercise whose sum is a single
// digit. The template guide is not drawn since it would show the answer.
func (c *Controller) RandomizeAddition() Addition {
	a := c.intn(classifier.Classes)
	b := c.intn(classifier.Classes - a)
	add := Addition{Augend: a, Addend: b}
	c.setExpected(add.Sum(), &add)
	return add
}

func (c *Controller) setExpected(d int, add *Addition) {
	c.update(func(s *UIState) {
		v := d
		s.Expected = &v
		s.Addition = add
		selectButton(&s.Buttons, d)
	})
}

// SetTemplateGuide toggles the faint tracing glyph.
func (c *Controller) SetTemplateGuide(on bool) {
	c.update(func(s *UIState) { s.TemplateGuide = on })
	c.drawTemplate()
}

// drawTemplate replaces the drawing with the expected label's glyph when
// the guide is on.
func (c *Controller) drawTemplate() {
	c.mu.Lock()
	on := c.state.TemplateGuide
	expected := c.state.Expected
	c.mu.Unlock()

	if !on || expected == nil {
		return
	}
	c.canvas.Clear()
	if err := c.canvas.DrawOverlayText(strconv.Itoa(*expected)); err != nil {
		c.logger.Warn("draw template guide", "digit", *expected, "error", err)
	}
	c.changed()
}

// ApplyConfig swaps in the pipeline and quiescence window from cfg.
func (c *Controller) ApplyConfig(cfg *config.Config) error {
	p, err := pipeline.Build(cfg.StageSpecs())
	if err != nil {
		return fmt.Errorf("apply config: %w", err)
	}

	c.mu.Lock()
	c.pipeline = p
	c.mu.Unlock()

	wait := cfg.Quiescence()
	if wait <= 0 {
		wait = DefaultQuiescence
	}
	c.debouncer.SetWait(wait)
	c.logger.Info("configuration applied", "stages", p.Stages(), "quiescence", wait)
	return nil
}

func labelAttr(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}
