package frame

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/jpeg"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ostraka/segstream/errors"
)

// makeJPEG encodes a solid-color RGB image for decode tests.
func makeJPEG(t *testing.T, w, h int, c color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	buf := new(bytes.Buffer)
	require.NoError(t, jpeg.Encode(buf, img, &jpeg.Options{Quality: 90}))
	return buf.Bytes()
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		wantErr  bool
		wantCode errors.Code
	}{
		{"empty payload", nil, true, errors.CodeMalformedFrame},
		{"garbage payload", []byte("not a jpeg"), true, errors.CodeMalformedFrame},
		{"truncated header", []byte{0xff, 0xd8, 0xff}, true, errors.CodeMalformedFrame},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.data)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, errors.CodeOf(err))
		})
	}

	t.Run("valid jpeg", func(t *testing.T) {
		img, err := Decode(makeJPEG(t, 64, 48, color.RGBA{R: 200, G: 40, B: 40, A: 255}))
		require.NoError(t, err)
		assert.Equal(t, 64, img.Width)
		assert.Equal(t, 48, img.Height)
		assert.Len(t, img.Pix, 64*48*3)

		// JPEG is lossy; the dominant channel should still dominate.
		o := img.Offset(32, 24)
		assert.Greater(t, img.Pix[o], uint8(150))
		assert.Less(t, img.Pix[o+1], uint8(100))
	})

	t.Run("grayscale rejected", func(t *testing.T) {
		gray := image.NewGray(image.Rect(0, 0, 16, 16))
		buf := new(bytes.Buffer)
		require.NoError(t, jpeg.Encode(buf, gray, nil))

		_, err := Decode(buf.Bytes())
		require.Error(t, err)
		assert.Equal(t, errors.CodeMalformedFrame, errors.CodeOf(err))
	})
}

func TestDecodeBase64(t *testing.T) {
	raw := makeJPEG(t, 32, 32, color.RGBA{R: 10, G: 200, B: 10, A: 255})
	encoded := base64.StdEncoding.EncodeToString(raw)

	t.Run("plain base64", func(t *testing.T) {
		img, err := DecodeBase64(encoded)
		require.NoError(t, err)
		assert.Equal(t, 32, img.Width)
	})

	t.Run("data uri prefix stripped", func(t *testing.T) {
		img, err := DecodeBase64("data:image/jpeg;base64," + encoded)
		require.NoError(t, err)
		assert.Equal(t, 32, img.Width)
	})

	t.Run("empty string", func(t *testing.T) {
		_, err := DecodeBase64("")
		require.Error(t, err)
		assert.Equal(t, errors.CodeMalformedFrame, errors.CodeOf(err))
	})

	t.Run("invalid base64", func(t *testing.T) {
		_, err := DecodeBase64("!!!not-base64!!!")
		require.Error(t, err)
		assert.Equal(t, errors.CodeMalformedFrame, errors.CodeOf(err))
	})
}

func TestEncodeRoundTrip(t *testing.T) {
	// Decoding then re-encoding preserves dimensions and channel count;
	// pixel values may shift through the lossy codec.
	original := makeJPEG(t, 80, 60, color.RGBA{R: 90, G: 120, B: 200, A: 255})

	img, err := Decode(original)
	require.NoError(t, err)

	reencoded, err := Encode(img, 60)
	require.NoError(t, err)

	again, err := Decode(reencoded)
	require.NoError(t, err)
	assert.Equal(t, img.Width, again.Width)
	assert.Equal(t, img.Height, again.Height)
	assert.Len(t, again.Pix, img.Width*img.Height*3)
}

func TestEncodeRejectsInvalidImage(t *testing.T) {
	tests := []struct {
		name string
		img  *Image
	}{
		{"nil image", nil},
		{"zero dims", &Image{}},
		{"short pixel buffer", &Image{Width: 4, Height: 4, Pix: make([]uint8, 5)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Encode(tt.img, 60)
			require.Error(t, err)
			assert.Equal(t, errors.CodeEncodeFailed, errors.CodeOf(err))
		})
	}
}

func TestEncodeClampsQuality(t *testing.T) {
	img := NewImage(8, 8)

	for _, q := range []int{-5, 0, 100, 250} {
		_, err := Encode(img, q)
		assert.NoError(t, err, "quality %d", q)
	}
}

func TestEncodeBase64(t *testing.T) {
	img := NewImage(8, 8)
	s, err := EncodeBase64(img, 60)
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(s)
	require.NoError(t, err)
	_, err = Decode(raw)
	assert.NoError(t, err)
}

func TestPreprocess(t *testing.T) {
	img := NewImage(16, 12)
	for i := range img.Pix {
		img.Pix[i] = 128
	}

	t.Run("same size, normalized NCHW", func(t *testing.T) {
		tensor, err := Preprocess(img, 12, 16)
		require.NoError(t, err)
		assert.Equal(t, []int{1, 3, 12, 16}, tensor.Shape)
		require.Len(t, tensor.Data, 3*12*16)
		assert.Equal(t, 3*12*16, tensor.Numel())

		// (128/255 - mean[c]) / std[c] per channel
		plane := 12 * 16
		assert.InDelta(t, 0.07406, tensor.Data[0], 1e-3)
		assert.InDelta(t, 0.20518, tensor.Data[plane], 1e-3)
		assert.InDelta(t, 0.42649, tensor.Data[2*plane], 1e-3)
	})

	t.Run("downscale", func(t *testing.T) {
		tensor, err := Preprocess(img, 6, 8)
		require.NoError(t, err)
		assert.Equal(t, []int{1, 3, 6, 8}, tensor.Shape)
	})

	t.Run("upscale", func(t *testing.T) {
		tensor, err := Preprocess(img, 24, 32)
		require.NoError(t, err)
		assert.Equal(t, []int{1, 3, 24, 32}, tensor.Shape)
	})

	t.Run("rejects invalid image", func(t *testing.T) {
		_, err := Preprocess(&Image{}, 8, 8)
		assert.Error(t, err)
	})

	t.Run("rejects invalid target", func(t *testing.T) {
		_, err := Preprocess(img, 0, 8)
		assert.Error(t, err)
	})
}

func TestResizeAreaAverages(t *testing.T) {
	// Left half 100, right half 200; exact 2x shrink averages uniform boxes.
	img := NewImage(4, 4)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			v := uint8(100)
			if x >= 2 {
				v = 200
			}
			o := img.Offset(x, y)
			img.Pix[o], img.Pix[o+1], img.Pix[o+2] = v, v, v
		}
	}

	small := Resize(img, 2, 2)
	require.Equal(t, 2, small.Width)
	require.Equal(t, 2, small.Height)
	assert.Equal(t, uint8(100), small.Pix[small.Offset(0, 0)])
	assert.Equal(t, uint8(200), small.Pix[small.Offset(1, 0)])
	assert.Equal(t, uint8(100), small.Pix[small.Offset(0, 1)])
	assert.Equal(t, uint8(200), small.Pix[small.Offset(1, 1)])
}

func TestResizeSameSizeReturnsInput(t *testing.T) {
	img := NewImage(10, 10)
	assert.Same(t, img, Resize(img, 10, 10))
}

func TestPostprocessClassMap(t *testing.T) {
	cm := NewClassMap(2, 2)
	cm.Set(0, 0, 1)
	cm.Set(1, 0, 2)
	cm.Set(0, 1, 3)
	cm.Set(1, 1, 4)

	t.Run("nearest neighbor upscale", func(t *testing.T) {
		big := PostprocessClassMap(cm, 4, 4)
		require.Equal(t, 4, big.Width)
		require.Equal(t, 4, big.Height)

		// Each source cell becomes a 2x2 block; no new class values appear.
		assert.Equal(t, uint8(1), big.At(0, 0))
		assert.Equal(t, uint8(1), big.At(1, 1))
		assert.Equal(t, uint8(2), big.At(2, 0))
		assert.Equal(t, uint8(2), big.At(3, 1))
		assert.Equal(t, uint8(3), big.At(0, 2))
		assert.Equal(t, uint8(4), big.At(3, 3))
	})

	t.Run("same size returns input", func(t *testing.T) {
		assert.Same(t, cm, PostprocessClassMap(cm, 2, 2))
	})

	t.Run("downscale", func(t *testing.T) {
		small := PostprocessClassMap(cm, 1, 1)
		require.Equal(t, 1, small.Width)
		assert.Equal(t, uint8(1), small.At(0, 0))
	})
}

func TestResizeToFit(t *testing.T) {
	t.Run("within bounds unchanged", func(t *testing.T) {
		img := NewImage(640, 480)
		assert.Same(t, img, ResizeToFit(img, 960, 540))
	})

	t.Run("shrinks preserving aspect", func(t *testing.T) {
		img := NewImage(1920, 1080)
		out := ResizeToFit(img, 960, 540)
		assert.Equal(t, 960, out.Width)
		assert.Equal(t, 540, out.Height)
	})

	t.Run("tall image keys on height", func(t *testing.T) {
		img := NewImage(500, 2000)
		out := ResizeToFit(img, 960, 540)
		assert.LessOrEqual(t, out.Width, 960)
		assert.LessOrEqual(t, out.Height, 540)
		assert.Equal(t, 135, out.Width) // 500 * (540/2000)
	})
}

func TestTensorDim(t *testing.T) {
	tensor := &Tensor{Data: make([]float32, 6), Shape: []int{1, 2, 3}}
	assert.Equal(t, 2, tensor.Dim(1))
	assert.Equal(t, 0, tensor.Dim(5))
	assert.Equal(t, 0, tensor.Dim(-1))
	assert.Equal(t, 6, tensor.Numel())
}
