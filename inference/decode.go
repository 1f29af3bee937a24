package inference

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/ostraka/segstream/errors"
	"github.com/ostraka/segstream/frame"
	"github.com/ostraka/segstream/model"
)

// decodeOutput turns one forward pass's tensors into a class map at the
// output's native resolution. Dispatch is exhaustive over the closed mode
// set, so an unhandled head shape is a backend bug, not a client error.
//
// Transformer heads emit at an internal stride; the class map is decoded at
// that stride and resized by the nearest-neighbor postprocess step. Argmax
// commutes with the resize for all but sub-pixel boundary positions, and
// skipping the per-class logit upsample keeps the per-frame allocation
// bounded by the head's native size.
func decodeOutput(mode model.Mode, out *model.Output) (*frame.ClassMap, error) {
	switch mode {
	case model.ModeFast, model.ModeBalanced, model.ModeAccurate:
		return decodeArgmax(out.Logits)
	case model.ModeSOTA:
		return decodeQueryHead(out, mode.NumClasses())
	default:
		return nil, errors.Newf("no decoder for mode %q", mode)
	}
}

// decodeArgmax reduces (1, C, H, W) logits to a class map by argmax over the
// class axis.
func decodeArgmax(logits *frame.Tensor) (*frame.ClassMap, error) {
	if logits == nil || len(logits.Shape) != 4 || logits.Shape[0] != 1 {
		return nil, errors.Newf("logits are not a (1, C, H, W) tensor: %v", tensorShape(logits))
	}
	c, h, w := logits.Shape[1], logits.Shape[2], logits.Shape[3]
	if c < 1 || c > 256 || len(logits.Data) != logits.Numel() {
		return nil, errors.Newf("malformed logits: shape %v, %d values", logits.Shape, len(logits.Data))
	}

	cm := frame.NewClassMap(w, h)
	plane := h * w
	for i := 0; i < plane; i++ {
		best := 0
		bestV := logits.Data[i]
		for cls := 1; cls < c; cls++ {
			if v := logits.Data[cls*plane+i]; v > bestV {
				bestV = v
				best = cls
			}
		}
		cm.Classes[i] = uint8(best)
	}
	return cm, nil
}

// decodeQueryHead combines a query-based head's (mask, class) pairs into a
// per-pixel class map. The no-object column is sliced away before the
// multiply, so the final argmax never sees it: even when every query's
// no-object score dominates, each pixel still receives its best real class.
func decodeQueryHead(out *model.Output, numClasses int) (*frame.ClassMap, error) {
	masks, classes := out.MaskLogits, out.ClassLogits
	if masks == nil || len(masks.Shape) != 4 || masks.Shape[0] != 1 {
		return nil, errors.Newf("mask logits are not a (1, Q, h, w) tensor: %v", tensorShape(masks))
	}
	if classes == nil || len(classes.Shape) != 3 || classes.Shape[0] != 1 {
		return nil, errors.Newf("class logits are not a (1, Q, C+1) tensor: %v", tensorShape(classes))
	}

	q, h, w := masks.Shape[1], masks.Shape[2], masks.Shape[3]
	if classes.Shape[1] != q {
		return nil, errors.Newf("query count mismatch: %d masks, %d class rows", q, classes.Shape[1])
	}
	if classes.Shape[2] != numClasses+1 {
		return nil, errors.Newf("class logits carry %d columns, want %d classes + no-object",
			classes.Shape[2], numClasses)
	}

	// Softmax each query's class logits over C+1, then drop the no-object
	// column. Laid out (C, Q) for the multiply below.
	classProbs := mat.NewDense(numClasses, q, nil)
	cols := numClasses + 1
	for qi := 0; qi < q; qi++ {
		row := classes.Data[qi*cols : (qi+1)*cols]
		maxv := row[0]
		for _, v := range row[1:] {
			if v > maxv {
				maxv = v
			}
		}
		var sum float64
		exp := make([]float64, cols)
		for i, v := range row {
			exp[i] = math.Exp(float64(v - maxv))
			sum += exp[i]
		}
		for cls := 0; cls < numClasses; cls++ {
			classProbs.Set(cls, qi, exp[cls]/sum)
		}
	}

	// Sigmoid the mask logits, laid out (Q, h·w).
	plane := h * w
	maskProbs := mat.NewDense(q, plane, nil)
	for qi := 0; qi < q; qi++ {
		src := masks.Data[qi*plane : (qi+1)*plane]
		dst := maskProbs.RawRowView(qi)
		for i, v := range src {
			dst[i] = 1 / (1 + math.Exp(-float64(v)))
		}
	}

	// (C, Q) × (Q, h·w) → per-pixel per-class scores (C, h·w).
	var scores mat.Dense
	scores.Mul(classProbs, maskProbs)

	cm := frame.NewClassMap(w, h)
	for i := 0; i < plane; i++ {
		best := 0
		bestV := scores.At(0, i)
		for cls := 1; cls < numClasses; cls++ {
			if v := scores.At(cls, i); v > bestV {
				bestV = v
				best = cls
			}
		}
		cm.Classes[i] = uint8(best)
	}
	return cm, nil
}

func tensorShape(t *frame.Tensor) []int {
	if t == nil {
		return nil
	}
	return t.Shape
}
