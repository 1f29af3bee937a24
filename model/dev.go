package model

import (
	"context"
	"time"

	"github.com/ostraka/segstream/errors"
	"github.com/ostraka/segstream/frame"
)

const (
	// devGrid is the intensity-quantization cell size in input pixels.
	devGrid = 16
	// devStride is the internal stride of the transformer-style outputs.
	devStride = 4

	// Quantization range of ImageNet-normalized intensities: a black pixel
	// averages about -1.99 across channels, a white one about 2.44.
	devIntensityFloor = -2.0
	devIntensitySpan  = 4.5
)

// DevBackend is a deterministic stand-in for a real model. It quantizes
// mean cell intensity into class (or query) indices and emits tensors with
// the same shapes and decoding contracts as the published models, so every
// decode path runs unmodified against it. Darker regions map to lower
// indices; a black cell is background.
type DevBackend struct {
	mode Mode
}

// NewDevBackend creates a synthetic backend for the mode.
func NewDevBackend(mode Mode) *DevBackend {
	return &DevBackend{mode: mode}
}

func (b *DevBackend) Mode() Mode { return b.mode }

// Close is a no-op; dev backends hold no resources.
func (b *DevBackend) Close() error { return nil }

// Forward produces synthetic output for one preprocessed (1, 3, H, W)
// tensor. Fast and balanced emit full-resolution one-hot logits; accurate
// emits logits at the internal stride; sota emits a query head.
func (b *DevBackend) Forward(ctx context.Context, input *frame.Tensor) (*Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "forward")
	}
	h, w, err := checkInput(input)
	if err != nil {
		return nil, err
	}
	switch b.mode {
	case ModeFast, ModeBalanced:
		return b.pixelLogits(input, h, w), nil
	case ModeAccurate:
		return b.stridedLogits(input, h, w), nil
	case ModeSOTA:
		return b.queryLogits(input, h, w), nil
	default:
		return nil, errors.Newf("no synthetic decoder for mode %q", b.mode)
	}
}

func checkInput(input *frame.Tensor) (h, w int, err error) {
	if input == nil || len(input.Shape) != 4 || input.Shape[0] != 1 || input.Shape[1] != 3 {
		return 0, 0, errors.Newf("input is not a (1, 3, H, W) tensor: %v", shapeOf(input))
	}
	h, w = input.Shape[2], input.Shape[3]
	if h < 1 || w < 1 || len(input.Data) != input.Numel() {
		return 0, 0, errors.Newf("input tensor is malformed: shape %v, %d values",
			input.Shape, len(input.Data))
	}
	return h, w, nil
}

func shapeOf(t *frame.Tensor) []int {
	if t == nil {
		return nil
	}
	return t.Shape
}

func (b *DevBackend) pixelLogits(input *frame.Tensor, h, w int) *Output {
	numClasses := b.mode.NumClasses()
	grid := quantizeGrid(input, h, w, numClasses)

	logits := &frame.Tensor{
		Data:  make([]float32, numClasses*h*w),
		Shape: []int{1, numClasses, h, w},
	}
	for y := 0; y < h; y++ {
		gy := y / devGrid
		for x := 0; x < w; x++ {
			cls := grid[gy][x/devGrid]
			logits.Data[cls*h*w+y*w+x] = 1
		}
	}
	return &Output{Logits: logits}
}

func (b *DevBackend) stridedLogits(input *frame.Tensor, h, w int) *Output {
	numClasses := b.mode.NumClasses()
	grid := quantizeGrid(input, h, w, numClasses)
	sh, sw := stridedDims(h, w)

	logits := &frame.Tensor{
		Data:  make([]float32, numClasses*sh*sw),
		Shape: []int{1, numClasses, sh, sw},
	}
	for sy := 0; sy < sh; sy++ {
		gy := min(sy*devStride/devGrid, len(grid)-1)
		for sx := 0; sx < sw; sx++ {
			gx := min(sx*devStride/devGrid, len(grid[gy])-1)
			logits.Data[grid[gy][gx]*sh*sw+sy*sw+sx] = 1
		}
	}
	return &Output{Logits: logits}
}

func (b *DevBackend) queryLogits(input *frame.Tensor, h, w int) *Output {
	queries := b.mode.Profile().Queries
	numClasses := b.mode.NumClasses()
	grid := quantizeGrid(input, h, w, queries)
	sh, sw := stridedDims(h, w)

	masks := &frame.Tensor{
		Data:  make([]float32, queries*sh*sw),
		Shape: []int{1, queries, sh, sw},
	}
	for i := range masks.Data {
		masks.Data[i] = -4
	}
	for sy := 0; sy < sh; sy++ {
		gy := min(sy*devStride/devGrid, len(grid)-1)
		for sx := 0; sx < sw; sx++ {
			gx := min(sx*devStride/devGrid, len(grid[gy])-1)
			q := grid[gy][gx]
			masks.Data[q*sh*sw+sy*sw+sx] = 4
		}
	}

	classes := &frame.Tensor{
		Data:  make([]float32, queries*(numClasses+1)),
		Shape: []int{1, queries, numClasses + 1},
	}
	for q := 0; q < queries; q++ {
		classes.Data[q*(numClasses+1)+devQueryClass(q, numClasses)] = 8
	}
	return &Output{MaskLogits: masks, ClassLogits: classes}
}

// devQueryClass is the single class a dev query proposes. Background (0)
// and the no-object sink are never proposed.
func devQueryClass(q, numClasses int) int {
	return 1 + q%(numClasses-1)
}

func stridedDims(h, w int) (sh, sw int) {
	return max(h/devStride, 1), max(w/devStride, 1)
}

// quantizeGrid maps each devGrid cell of the input to an index in [0, n) by
// quantizing the cell's mean normalized intensity.
func quantizeGrid(input *frame.Tensor, h, w, n int) [][]int {
	gh := (h + devGrid - 1) / devGrid
	gw := (w + devGrid - 1) / devGrid
	grid := make([][]int, gh)
	for gy := range grid {
		grid[gy] = make([]int, gw)
		y0 := gy * devGrid
		y1 := min(y0+devGrid, h)
		for gx := range grid[gy] {
			x0 := gx * devGrid
			x1 := min(x0+devGrid, w)
			grid[gy][gx] = quantize(cellMean(input, h, w, y0, y1, x0, x1), n)
		}
	}
	return grid
}

func cellMean(input *frame.Tensor, h, w, y0, y1, x0, x1 int) float32 {
	var sum float64
	for c := 0; c < 3; c++ {
		plane := input.Data[c*h*w:]
		for y := y0; y < y1; y++ {
			row := y * w
			for x := x0; x < x1; x++ {
				sum += float64(plane[row+x])
			}
		}
	}
	return float32(sum / float64(3*(y1-y0)*(x1-x0)))
}

func quantize(m float32, n int) int {
	u := (m - devIntensityFloor) / devIntensitySpan
	if u < 0 {
		u = 0
	}
	cls := int(u * float32(n))
	if cls >= n {
		cls = n - 1
	}
	return cls
}

// DevLoader builds DevBackends. Delay, when set, simulates the load time of
// a real model so loading states and load coalescing behave as they do in
// production. Dev backends hold no model weights, so the loader skips the
// profile memory check.
type DevLoader struct {
	Delay time.Duration
}

func (l *DevLoader) Load(ctx context.Context, mode Mode) (Backend, error) {
	if l.Delay > 0 {
		select {
		case <-time.After(l.Delay):
		case <-ctx.Done():
			return nil, errors.Wrapf(ctx.Err(), "loading %s model", mode)
		}
	}
	return NewDevBackend(mode), nil
}
