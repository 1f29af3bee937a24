package vocab

import (
	"math"
	"sync"
)

var (
	paletteMu    sync.Mutex
	paletteCache = map[Vocabulary][][3]uint8{}
)

// Palette returns the class-index→RGB table for a vocabulary, computed on
// first access and cached. Index 0 is always black so background never
// contributes color. The returned slice is shared; callers must not modify
// it. Unknown vocabularies return nil.
func Palette(v Vocabulary) [][3]uint8 {
	paletteMu.Lock()
	defer paletteMu.Unlock()

	if p, ok := paletteCache[v]; ok {
		return p
	}

	var p [][3]uint8
	switch v {
	case COCO21:
		p = vocPalette(NumClasses(v))
	case ADE150:
		p = spreadPalette(NumClasses(v))
	default:
		return nil
	}

	paletteCache[v] = p
	return p
}

// vocPalette builds the PASCAL VOC colormap: for each class index, the bits
// of the index's low three bits are OR'd into R, G, B from the high bit
// down, shifting the index right by three per round. Index 0 comes out
// black.
func vocPalette(n int) [][3]uint8 {
	p := make([][3]uint8, n)
	for i := range p {
		var r, g, b uint8
		c := i
		for j := 0; j < 8; j++ {
			r |= uint8((c>>0)&1) << (7 - j)
			g |= uint8((c>>1)&1) << (7 - j)
			b |= uint8((c>>2)&1) << (7 - j)
			c >>= 3
		}
		p[i] = [3]uint8{r, g, b}
	}
	return p
}

// spreadPalette builds a perceptually spread table: hues advance by the
// golden angle so consecutive class ids land far apart on the color wheel,
// with saturation and value cycling through tiers to keep near hues apart.
// The 149 non-background entries are pairwise distinct after quantization.
func spreadPalette(n int) [][3]uint8 {
	sats := []float64{0.95, 0.70, 0.85}
	vals := []float64{0.95, 0.80, 0.65}

	p := make([][3]uint8, n)
	for i := 1; i < n; i++ {
		h := math.Mod(float64(i)*0.6180339887498949, 1.0) * 360
		s := sats[i%len(sats)]
		v := vals[(i/len(sats))%len(vals)]
		r, g, b := hsvToRGB(h, s, v)
		p[i] = [3]uint8{r, g, b}
	}
	return p
}

// hsvToRGB converts h in [0,360), s and v in [0,1] to 8-bit RGB.
func hsvToRGB(h, s, v float64) (uint8, uint8, uint8) {
	c := v * s
	hp := h / 60
	x := c * (1 - math.Abs(math.Mod(hp, 2)-1))

	var r, g, b float64
	switch {
	case hp < 1:
		r, g, b = c, x, 0
	case hp < 2:
		r, g, b = x, c, 0
	case hp < 3:
		r, g, b = 0, c, x
	case hp < 4:
		r, g, b = 0, x, c
	case hp < 5:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}

	m := v - c
	return uint8((r+m)*255 + 0.5), uint8((g+m)*255 + 0.5), uint8((b+m)*255 + 0.5)
}
