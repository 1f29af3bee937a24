package frame

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/jpeg"
	"strings"

	"github.com/ostraka/segstream/errors"
)

// DecodeBase64 decodes a base64 JPEG payload as sent by browser clients.
// A data-URI prefix ("data:image/jpeg;base64,") is tolerated and stripped.
// All failures carry MALFORMED_FRAME.
func DecodeBase64(data string) (*Image, error) {
	if data == "" {
		return nil, errors.WithCode(errors.New("empty frame data"), errors.CodeMalformedFrame)
	}

	// Remove data URL prefix if present
	if idx := strings.IndexByte(data, ','); idx >= 0 {
		data = data[idx+1:]
	}

	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, errors.WithCode(errors.Wrap(err, "invalid base64 encoding"), errors.CodeMalformedFrame)
	}

	return Decode(raw)
}

// Decode decodes a JPEG payload into an RGB image. Empty payloads,
// unparseable data, and images that are not 3-channel 8-bit are rejected
// with MALFORMED_FRAME.
func Decode(data []byte) (*Image, error) {
	if len(data) == 0 {
		return nil, errors.WithCode(errors.New("frame has zero bytes"), errors.CodeMalformedFrame)
	}

	decoded, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.WithCode(errors.Wrap(err, "jpeg decode failed"), errors.CodeMalformedFrame)
	}

	src, ok := decoded.(*image.YCbCr)
	if !ok {
		// Grayscale and CMYK JPEGs decode to other color models.
		return nil, errors.WithCode(
			errors.Newf("frame is not 3-channel: %T", decoded),
			errors.CodeMalformedFrame)
	}

	bounds := src.Bounds()
	img := NewImage(bounds.Dx(), bounds.Dy())
	for y := 0; y < img.Height; y++ {
		off := img.Offset(0, y)
		for x := 0; x < img.Width; x++ {
			c := src.YCbCrAt(bounds.Min.X+x, bounds.Min.Y+y)
			r, g, b := color.YCbCrToRGB(c.Y, c.Cb, c.Cr)
			img.Pix[off] = r
			img.Pix[off+1] = g
			img.Pix[off+2] = b
			off += 3
		}
	}

	return img, nil
}

// Encode JPEG-encodes an RGB image at the given quality, clamped to
// [1, 100]. Invalid image shapes are rejected with ENCODE_FAILED.
func Encode(img *Image, quality int) ([]byte, error) {
	if !img.Valid() {
		return nil, errors.WithCode(errors.New("invalid image for encoding"), errors.CodeEncodeFailed)
	}

	if quality < 1 {
		quality = 1
	}
	if quality > 100 {
		quality = 100
	}

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, toRGBA(img), &jpeg.Options{Quality: quality}); err != nil {
		return nil, errors.WithCode(errors.Wrap(err, "jpeg encode failed"), errors.CodeEncodeFailed)
	}

	return buf.Bytes(), nil
}

// EncodeBase64 encodes an image for the wire: JPEG then standard base64.
func EncodeBase64(img *Image, quality int) (string, error) {
	raw, err := Encode(img, quality)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// toRGBA copies an RGB image into the stdlib layout the JPEG encoder and
// the draw kernels consume.
func toRGBA(img *Image) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, img.Width, img.Height))
	for y := 0; y < img.Height; y++ {
		src := img.Offset(0, y)
		d := dst.PixOffset(0, y)
		for x := 0; x < img.Width; x++ {
			dst.Pix[d] = img.Pix[src]
			dst.Pix[d+1] = img.Pix[src+1]
			dst.Pix[d+2] = img.Pix[src+2]
			dst.Pix[d+3] = 0xff
			src += 3
			d += 4
		}
	}
	return dst
}

// fromRGBA copies the stdlib layout back into an RGB image, dropping alpha.
func fromRGBA(src *image.RGBA) *Image {
	b := src.Bounds()
	img := NewImage(b.Dx(), b.Dy())
	for y := 0; y < img.Height; y++ {
		s := src.PixOffset(b.Min.X, b.Min.Y+y)
		d := img.Offset(0, y)
		for x := 0; x < img.Width; x++ {
			img.Pix[d] = src.Pix[s]
			img.Pix[d+1] = src.Pix[s+1]
			img.Pix[d+2] = src.Pix[s+2]
			s += 4
			d += 3
		}
	}
	return img
}
