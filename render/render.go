// Package render composes a class map onto the frame it was derived from.
// Four visualization modes share one renderer; the palette is a per-vocabulary
// byte table gathered by class index.
package render

import (
	"github.com/ostraka/segstream/errors"
	"github.com/ostraka/segstream/frame"
	"github.com/ostraka/segstream/vocab"
)

// VizMode selects one of the pixel-composition schemes.
type VizMode int

const (
	VizFilled     VizMode = iota // alpha-blend class colors over the image
	VizContour                   // 1 px class boundaries, image elsewhere
	VizSideBySide                // original left, opaque fill right
	VizBlend                     // hue from class color, S/V from the image
)

// String returns the wire name of the mode.
func (m VizMode) String() string {
	switch m {
	case VizFilled:
		return "filled"
	case VizContour:
		return "contour"
	case VizSideBySide:
		return "side-by-side"
	case VizBlend:
		return "blend"
	default:
		return "unknown"
	}
}

// ParseVizMode maps a wire name to a VizMode.
func ParseVizMode(s string) (VizMode, error) {
	switch s {
	case "filled":
		return VizFilled, nil
	case "contour":
		return VizContour, nil
	case "side-by-side", "side_by_side":
		return VizSideBySide, nil
	case "blend":
		return VizBlend, nil
	default:
		return 0, errors.Newf("unknown visualization mode %q", s)
	}
}

// Settings carries the per-render parameters a session controls. Filter is
// the set of class indices to overlay; nil means every class passes. Opacity
// outside [0, 1] is clamped, never rejected.
type Settings struct {
	Mode    VizMode
	Opacity float64
	Filter  map[int]bool
}

// pass reports whether class id participates in the overlay.
func (s *Settings) pass(class uint8) bool {
	return s.Filter == nil || s.Filter[int(class)]
}

// Renderer composes class maps for one session. It holds the palette of the
// session's active vocabulary; SwitchVocabulary follows a mode change.
// Renderers are not safe for concurrent use; each session owns exactly one.
type Renderer struct {
	palette [][3]uint8
}

// NewRenderer creates a renderer over the vocabulary's palette.
func NewRenderer(v vocab.Vocabulary) *Renderer {
	return &Renderer{palette: vocab.Palette(v)}
}

// SwitchVocabulary swaps the palette after a model mode change.
func (r *Renderer) SwitchVocabulary(v vocab.Vocabulary) {
	r.palette = vocab.Palette(v)
}

// Render composes the class map onto the image per the settings. The output
// matches the input dimensions except in side-by-side mode, which doubles the
// width. The class map must match the image spatially; neither input is
// modified.
func (r *Renderer) Render(img *frame.Image, cm *frame.ClassMap, s Settings) (*frame.Image, error) {
	if !img.Valid() {
		return nil, errors.New("invalid image for rendering")
	}
	if cm == nil || cm.Width != img.Width || cm.Height != img.Height {
		return nil, errors.Newf("class map %dx%d does not match image %dx%d",
			classMapW(cm), classMapH(cm), img.Width, img.Height)
	}

	if s.Opacity < 0 {
		s.Opacity = 0
	}
	if s.Opacity > 1 {
		s.Opacity = 1
	}

	switch s.Mode {
	case VizFilled:
		return r.filled(img, cm, &s), nil
	case VizContour:
		return r.contour(img, cm, &s), nil
	case VizSideBySide:
		return r.sideBySide(img, cm, &s), nil
	case VizBlend:
		return r.blend(img, cm, &s), nil
	default:
		return nil, errors.Newf("unknown visualization mode %d", s.Mode)
	}
}

// color returns the palette entry for a class, black past the table's end.
func (r *Renderer) color(class uint8) [3]uint8 {
	if int(class) < len(r.palette) {
		return r.palette[class]
	}
	return [3]uint8{}
}

func classMapW(cm *frame.ClassMap) int {
	if cm == nil {
		return 0
	}
	return cm.Width
}

func classMapH(cm *frame.ClassMap) int {
	if cm == nil {
		return 0
	}
	return cm.Height
}
