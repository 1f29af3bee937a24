package model

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ostraka/segstream/frame"
)

func devInput(h, w int) *frame.Tensor {
	t := &frame.Tensor{
		Data:  make([]float32, 3*h*w),
		Shape: []int{1, 3, h, w},
	}
	for i := range t.Data {
		t.Data[i] = float32(i%17)/17*2 - 1
	}
	return t
}

func TestDevBackendOutputContracts(t *testing.T) {
	ctx := context.Background()

	t.Run("pixel decoder emits full-resolution logits", func(t *testing.T) {
		b := NewDevBackend(ModeBalanced)
		out, err := b.Forward(ctx, devInput(64, 64))
		require.NoError(t, err)
		require.NotNil(t, out.Logits)
		assert.Equal(t, []int{1, ModeBalanced.NumClasses(), 64, 64}, out.Logits.Shape)
		assert.Nil(t, out.MaskLogits)
	})

	t.Run("transformer head emits strided logits", func(t *testing.T) {
		b := NewDevBackend(ModeAccurate)
		out, err := b.Forward(ctx, devInput(64, 64))
		require.NoError(t, err)
		require.NotNil(t, out.Logits)
		assert.Equal(t, []int{1, ModeAccurate.NumClasses(), 16, 16}, out.Logits.Shape)
	})

	t.Run("query head emits mask and class logits", func(t *testing.T) {
		b := NewDevBackend(ModeSOTA)
		out, err := b.Forward(ctx, devInput(64, 64))
		require.NoError(t, err)
		assert.Nil(t, out.Logits)
		require.NotNil(t, out.MaskLogits)
		require.NotNil(t, out.ClassLogits)
		q := ModeSOTA.Profile().Queries
		assert.Equal(t, []int{1, q, 16, 16}, out.MaskLogits.Shape)
		assert.Equal(t, []int{1, q, ModeSOTA.NumClasses() + 1}, out.ClassLogits.Shape)
	})
}

func TestDevBackendDeterministic(t *testing.T) {
	b := NewDevBackend(ModeFast)
	ctx := context.Background()
	in := devInput(32, 32)

	a, err := b.Forward(ctx, in)
	require.NoError(t, err)
	c, err := b.Forward(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, a.Logits.Data, c.Logits.Data)
}

func TestDevBackendRejectsMalformedInput(t *testing.T) {
	b := NewDevBackend(ModeFast)
	ctx := context.Background()

	_, err := b.Forward(ctx, nil)
	assert.Error(t, err)

	_, err = b.Forward(ctx, &frame.Tensor{Data: []float32{1}, Shape: []int{1, 1}})
	assert.Error(t, err)

	short := &frame.Tensor{Data: make([]float32, 10), Shape: []int{1, 3, 8, 8}}
	_, err = b.Forward(ctx, short)
	assert.Error(t, err)
}
