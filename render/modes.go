package render

import (
	"github.com/ostraka/segstream/frame"
)

// filled alpha-blends the class color layer over the image. Filtered-out
// pixels keep the original image; opacity 0 reproduces it exactly.
func (r *Renderer) filled(img *frame.Image, cm *frame.ClassMap, s *Settings) *frame.Image {
	out := frame.NewImage(img.Width, img.Height)
	copy(out.Pix, img.Pix)
	if s.Opacity == 0 {
		return out
	}

	a := s.Opacity
	ia := 1 - a
	for y := 0; y < img.Height; y++ {
		row := y * img.Width
		o := img.Offset(0, y)
		for x := 0; x < img.Width; x++ {
			cls := cm.Classes[row+x]
			if s.pass(cls) {
				c := r.color(cls)
				out.Pix[o] = blendByte(img.Pix[o], c[0], a, ia)
				out.Pix[o+1] = blendByte(img.Pix[o+1], c[1], a, ia)
				out.Pix[o+2] = blendByte(img.Pix[o+2], c[2], a, ia)
			}
			o += 3
		}
	}
	return out
}

func blendByte(orig, col uint8, a, ia float64) uint8 {
	v := ia*float64(orig) + a*float64(col)
	if v > 255 {
		v = 255
	}
	if v < 0 {
		v = 0
	}
	return uint8(v + 0.5)
}

// contour draws 1 px class boundaries in the boundary pixel's class color.
// A pixel is a boundary when any 4-neighbor has a different class; with a
// filter, the edge is drawn only when both sides pass. Opacity is ignored.
func (r *Renderer) contour(img *frame.Image, cm *frame.ClassMap, s *Settings) *frame.Image {
	out := frame.NewImage(img.Width, img.Height)
	copy(out.Pix, img.Pix)

	for y := 0; y < img.Height; y++ {
		row := y * img.Width
		for x := 0; x < img.Width; x++ {
			cls := cm.Classes[row+x]
			if !s.pass(cls) {
				continue
			}
			if !onBoundary(cm, x, y, cls, s) {
				continue
			}
			c := r.color(cls)
			o := img.Offset(x, y)
			out.Pix[o] = c[0]
			out.Pix[o+1] = c[1]
			out.Pix[o+2] = c[2]
		}
	}
	return out
}

// onBoundary reports whether (x, y) borders a different, filter-passing
// class across any 4-neighbor.
func onBoundary(cm *frame.ClassMap, x, y int, cls uint8, s *Settings) bool {
	if x > 0 && differs(cm.At(x-1, y), cls, s) {
		return true
	}
	if x < cm.Width-1 && differs(cm.At(x+1, y), cls, s) {
		return true
	}
	if y > 0 && differs(cm.At(x, y-1), cls, s) {
		return true
	}
	if y < cm.Height-1 && differs(cm.At(x, y+1), cls, s) {
		return true
	}
	return false
}

func differs(neighbor, cls uint8, s *Settings) bool {
	return neighbor != cls && s.pass(neighbor)
}

// sideBySide places the original on the left and the fully opaque class
// layer composited over it on the right. Filtered-out pixels on the right
// are black. Opacity is ignored.
func (r *Renderer) sideBySide(img *frame.Image, cm *frame.ClassMap, s *Settings) *frame.Image {
	out := frame.NewImage(img.Width*2, img.Height)

	for y := 0; y < img.Height; y++ {
		src := img.Offset(0, y)
		left := out.Offset(0, y)
		right := out.Offset(img.Width, y)
		row := y * img.Width

		copy(out.Pix[left:left+img.Width*3], img.Pix[src:src+img.Width*3])

		for x := 0; x < img.Width; x++ {
			cls := cm.Classes[row+x]
			if s.pass(cls) {
				c := r.color(cls)
				out.Pix[right] = c[0]
				out.Pix[right+1] = c[1]
				out.Pix[right+2] = c[2]
			}
			right += 3
		}
	}
	return out
}

// blend repaints each passing pixel with the hue of its class color while
// keeping the original saturation and value, preserving image detail under
// the semantic coloring.
func (r *Renderer) blend(img *frame.Image, cm *frame.ClassMap, s *Settings) *frame.Image {
	out := frame.NewImage(img.Width, img.Height)
	copy(out.Pix, img.Pix)

	// Hue per class is fixed, so compute it once per palette entry.
	hues := make([]float64, len(r.palette))
	for i, c := range r.palette {
		hues[i], _, _ = rgbToHSV(c[0], c[1], c[2])
	}

	for y := 0; y < img.Height; y++ {
		row := y * img.Width
		o := img.Offset(0, y)
		for x := 0; x < img.Width; x++ {
			cls := cm.Classes[row+x]
			if s.pass(cls) {
				var hue float64
				if int(cls) < len(hues) {
					hue = hues[cls]
				}
				_, sat, val := rgbToHSV(img.Pix[o], img.Pix[o+1], img.Pix[o+2])
				rr, gg, bb := hsvToRGB(hue, sat, val)
				out.Pix[o] = rr
				out.Pix[o+1] = gg
				out.Pix[o+2] = bb
			}
			o += 3
		}
	}
	return out
}
