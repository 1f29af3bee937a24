// Package inference adapts the shared model pool to one session: mode
// selection, memoized warm-up, the preprocess→forward→decode→postprocess
// frame path, and rolling timing statistics.
package inference

import (
	"context"
	"time"

	"github.com/ostraka/segstream/errors"
	"github.com/ostraka/segstream/frame"
	"github.com/ostraka/segstream/model"
)

// Meta describes one completed prediction for the segmentation reply.
type Meta struct {
	InferenceTimeMS float64
	TotalTimeMS     float64
	ModelMode       string
	FPS             float64
	AvgInferenceMS  float64
}

// Engine is a session's adapter over the model pool. It holds the active
// mode's backend (a non-owning reference; the pool owns all backends) and
// the session's rolling stats. Engines are not safe for concurrent use: each
// session owns one and drives it from its dispatch worker.
type Engine struct {
	pool        *model.Pool
	warmupIters int

	mode    model.Mode
	backend model.Backend
	stats   rollingStats
}

// NewEngine creates an engine over the pool. No model is loaded until
// SetMode.
func NewEngine(pool *model.Pool, warmupIters int) *Engine {
	if warmupIters < 1 {
		warmupIters = 1
	}
	return &Engine{pool: pool, warmupIters: warmupIters}
}

// Mode returns the active mode.
func (e *Engine) Mode() model.Mode { return e.mode }

// SetMode switches the engine to mode, obtaining the backend from the pool
// (which loads it on first use, process-wide). Switching to the current mode
// is a no-op. A successful switch resets the rolling stats so they describe
// the new model.
func (e *Engine) SetMode(ctx context.Context, mode model.Mode) error {
	if e.backend != nil && mode == e.mode {
		return nil
	}

	backend, err := e.pool.Get(ctx, mode)
	if err != nil {
		return errors.Wrapf(err, "switching to mode %s", mode)
	}

	e.mode = mode
	e.backend = backend
	e.stats.reset()
	return nil
}

// WarmUp runs the active model on synthetic inputs so the first real frame
// does not pay one-time initialization costs. Warm-up is memoized in the
// pool: once any session has warmed a mode, later calls return immediately
// unless force is set.
func (e *Engine) WarmUp(ctx context.Context, force bool) error {
	if e.backend == nil {
		return errors.New("warm-up before a mode is set")
	}
	if !force && e.pool.IsWarm(e.mode) {
		return nil
	}

	p := e.mode.Profile()
	input := &frame.Tensor{
		Data:  make([]float32, 3*p.InputH*p.InputW),
		Shape: []int{1, 3, p.InputH, p.InputW},
	}
	for i := 0; i < e.warmupIters; i++ {
		if _, err := e.backend.Forward(ctx, input); err != nil {
			return errors.Wrapf(err, "warm-up pass %d/%d for %s", i+1, e.warmupIters, e.mode)
		}
	}

	e.pool.MarkWarm(e.mode)
	return nil
}

// Predict runs one frame through the active model and returns the class map
// at the frame's original spatial size. Failures are classified for the
// wire: resource exhaustion as OUT_OF_MEMORY, everything else as
// INFERENCE_FAILED.
func (e *Engine) Predict(ctx context.Context, f *frame.Frame) (*frame.ClassMap, Meta, error) {
	if e.backend == nil {
		return nil, Meta{}, errors.WithCode(errors.New("predict before a mode is set"), errors.CodeInferenceFailed)
	}

	start := time.Now()
	p := e.mode.Profile()

	input, err := frame.Preprocess(f.Img, p.InputH, p.InputW)
	if err != nil {
		return nil, Meta{}, classify(err)
	}

	inferStart := time.Now()
	out, err := e.backend.Forward(ctx, input)
	if err != nil {
		return nil, Meta{}, classify(errors.Wrapf(err, "%s forward pass", e.mode))
	}

	cm, err := decodeOutput(e.mode, out)
	if err != nil {
		return nil, Meta{}, classify(err)
	}
	inferMS := float64(time.Since(inferStart)) / float64(time.Millisecond)

	cm = frame.PostprocessClassMap(cm, f.Img.Height, f.Img.Width)

	e.stats.update(inferMS)
	meta := Meta{
		InferenceTimeMS: inferMS,
		TotalTimeMS:     float64(time.Since(start)) / float64(time.Millisecond),
		ModelMode:       e.mode.String(),
		FPS:             e.stats.avgFPS(),
		AvgInferenceMS:  e.stats.ewmaMS,
	}
	return cm, meta, nil
}

// Stats returns a snapshot of the engine's rolling statistics.
func (e *Engine) Stats() Stats {
	return Stats{
		AvgInferenceMS:  e.stats.ewmaMS,
		MinInferenceMS:  e.stats.minMS,
		MaxInferenceMS:  e.stats.maxMS,
		AvgFPS:          e.stats.avgFPS(),
		FramesProcessed: e.stats.count,
	}
}

// DetectedClasses returns the sorted unique class ids present in the map,
// background (0) excluded.
func DetectedClasses(cm *frame.ClassMap) []int {
	var seen [256]bool
	for _, c := range cm.Classes {
		seen[c] = true
	}
	var ids []int
	for c := 1; c < len(seen); c++ {
		if seen[c] {
			ids = append(ids, c)
		}
	}
	return ids
}

// classify attaches a wire code to a prediction failure unless one is
// already present.
func classify(err error) error {
	if errors.IsOutOfMemory(err) {
		return errors.WithCode(err, errors.CodeOutOfMemory)
	}
	return errors.WithCode(err, errors.CodeInferenceFailed)
}
