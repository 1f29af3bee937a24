package model

import (
	"context"

	"github.com/ostraka/segstream/frame"
)

// Output carries the raw tensors one forward pass produced. Pixel-decoder
// modes (fast, balanced, accurate) fill Logits; the query-head mode fills
// MaskLogits and ClassLogits instead.
type Output struct {
	Logits      *frame.Tensor // (1, C, H, W), possibly at an internal stride
	MaskLogits  *frame.Tensor // (1, Q, h, w)
	ClassLogits *frame.Tensor // (1, Q, C+1); the last column is the no-object sink
}

// Backend is one loaded model. Implementations own the model's memory and
// must be safe for sequential use; the pool guarantees a single Backend per
// mode but sessions share it, so Forward must tolerate concurrent callers.
type Backend interface {
	// Forward runs one pass over a preprocessed (1, 3, H, W) tensor.
	Forward(ctx context.Context, input *frame.Tensor) (*Output, error)

	// Mode reports which profile this backend serves.
	Mode() Mode

	// Close releases the model's resources. The pool calls it on eviction.
	Close() error
}

// Loader materializes a Backend for a mode. Load blocks for the duration of
// the model load; the pool coalesces concurrent calls so implementations
// never see two in-flight loads for the same mode.
type Loader interface {
	Load(ctx context.Context, mode Mode) (Backend, error)
}
