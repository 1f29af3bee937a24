package frame

import (
	"image"
	"math"

	xdraw "golang.org/x/image/draw"

	"github.com/ostraka/segstream/errors"
)

// ImageNet channel statistics; every profile's backbone was trained with
// inputs normalized against these.
var (
	imagenetMean = [3]float32{0.485, 0.456, 0.406}
	imagenetStd  = [3]float32{0.229, 0.224, 0.225}
)

// Preprocess resizes an image to the model's input size and packs it as a
// normalized tensor: float32 in [0,1], ImageNet mean/std per channel, NCHW
// shape (1, 3, targetH, targetW), contiguous.
func Preprocess(img *Image, targetH, targetW int) (*Tensor, error) {
	if !img.Valid() {
		return nil, errors.New("invalid image for preprocessing")
	}
	if targetH < 1 || targetW < 1 {
		return nil, errors.Newf("invalid target size %dx%d", targetW, targetH)
	}

	resized := Resize(img, targetW, targetH)

	t := &Tensor{
		Data:  make([]float32, 3*targetH*targetW),
		Shape: []int{1, 3, targetH, targetW},
	}
	plane := targetH * targetW
	for y := 0; y < targetH; y++ {
		off := resized.Offset(0, y)
		row := y * targetW
		for x := 0; x < targetW; x++ {
			for c := 0; c < 3; c++ {
				v := float32(resized.Pix[off+c]) / 255
				t.Data[c*plane+row+x] = (v - imagenetMean[c]) / imagenetStd[c]
			}
			off += 3
		}
	}

	return t, nil
}

// Resize scales an RGB image: area averaging when shrinking, bilinear when
// enlarging. Webcam capture keeps its aspect through the pipeline, so the
// shrink decision keys on width alone.
func Resize(img *Image, dstW, dstH int) *Image {
	if dstW == img.Width && dstH == img.Height {
		return img
	}
	if dstW < img.Width {
		return resizeArea(img, dstW, dstH)
	}
	return resizeBilinear(img, dstW, dstH)
}

// ResizeToFit shrinks an image to fit within maxW×maxH, preserving aspect
// ratio. Images already within bounds are returned unchanged.
func ResizeToFit(img *Image, maxW, maxH int) *Image {
	if img.Width <= maxW && img.Height <= maxH {
		return img
	}

	scale := math.Min(float64(maxW)/float64(img.Width), float64(maxH)/float64(img.Height))
	w := int(float64(img.Width) * scale)
	h := int(float64(img.Height) * scale)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	return resizeBilinear(img, w, h)
}

// PostprocessClassMap resizes a class map back to the original frame size
// with nearest-neighbor sampling. Interpolating between class indices is
// meaningless, so no other kernel is correct here.
func PostprocessClassMap(cm *ClassMap, origH, origW int) *ClassMap {
	if cm.Width == origW && cm.Height == origH {
		return cm
	}

	dst := NewClassMap(origW, origH)
	for y := 0; y < origH; y++ {
		srcRow := (y * cm.Height / origH) * cm.Width
		dstRow := y * origW
		for x := 0; x < origW; x++ {
			dst.Classes[dstRow+x] = cm.Classes[srcRow+x*cm.Width/origW]
		}
	}
	return dst
}

func resizeBilinear(img *Image, dstW, dstH int) *Image {
	dst := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	xdraw.BiLinear.Scale(dst, dst.Bounds(), toRGBA(img), image.Rect(0, 0, img.Width, img.Height), xdraw.Src, nil)
	return fromRGBA(dst)
}

// resizeArea box-filters each destination pixel over its fractional source
// footprint, the INTER_AREA behavior for shrink factors.
func resizeArea(img *Image, dstW, dstH int) *Image {
	dst := NewImage(dstW, dstH)
	sx := float64(img.Width) / float64(dstW)
	sy := float64(img.Height) / float64(dstH)

	for dy := 0; dy < dstH; dy++ {
		y0 := float64(dy) * sy
		y1 := y0 + sy

		for dx := 0; dx < dstW; dx++ {
			x0 := float64(dx) * sx
			x1 := x0 + sx

			var r, g, b, area float64
			for yy := int(y0); yy < img.Height && float64(yy) < y1; yy++ {
				hy := math.Min(y1, float64(yy+1)) - math.Max(y0, float64(yy))
				if hy <= 0 {
					continue
				}
				for xx := int(x0); xx < img.Width && float64(xx) < x1; xx++ {
					wx := math.Min(x1, float64(xx+1)) - math.Max(x0, float64(xx))
					if wx <= 0 {
						continue
					}
					w := wx * hy
					o := img.Offset(xx, yy)
					r += float64(img.Pix[o]) * w
					g += float64(img.Pix[o+1]) * w
					b += float64(img.Pix[o+2]) * w
					area += w
				}
			}

			o := dst.Offset(dx, dy)
			if area > 0 {
				dst.Pix[o] = uint8(r/area + 0.5)
				dst.Pix[o+1] = uint8(g/area + 0.5)
				dst.Pix[o+2] = uint8(b/area + 0.5)
			}
		}
	}

	return dst
}
