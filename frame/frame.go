// Package frame owns the pixel-level plumbing between the wire and the
// model: JPEG codec, base64 transport wrapper, tensor preprocessing, and
// the resize kernels for images and class maps.
package frame

// Image is an 8-bit RGB image in row-major HWC layout.
type Image struct {
	Width  int
	Height int
	Pix    []uint8 // len = Height*Width*3
}

// NewImage allocates a zeroed RGB image.
func NewImage(width, height int) *Image {
	return &Image{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*3),
	}
}

// Offset returns the index of pixel (x, y) in Pix.
func (im *Image) Offset(x, y int) int {
	return (y*im.Width + x) * 3
}

// Valid reports whether the image has positive dimensions and a pixel
// buffer of exactly H*W*3 bytes.
func (im *Image) Valid() bool {
	return im != nil && im.Width > 0 && im.Height > 0 && len(im.Pix) == im.Width*im.Height*3
}

// Frame couples decoded pixels with the client-supplied capture timestamp
// (milliseconds, client-local clock). Frames are transient: created by
// decode, discarded after rendering.
type Frame struct {
	Img       *Image
	Timestamp int64
}

// ClassMap assigns a class index to every pixel of the image it was derived
// from. Values lie in [0, numClasses) for the mode that produced it; 150
// classes is the largest vocabulary, so indices fit a byte.
type ClassMap struct {
	Width   int
	Height  int
	Classes []uint8 // len = Height*Width
}

// NewClassMap allocates a zeroed class map.
func NewClassMap(width, height int) *ClassMap {
	return &ClassMap{
		Width:   width,
		Height:  height,
		Classes: make([]uint8, width*height),
	}
}

// At returns the class index at (x, y).
func (cm *ClassMap) At(x, y int) uint8 {
	return cm.Classes[y*cm.Width+x]
}

// Set writes the class index at (x, y).
func (cm *ClassMap) Set(x, y int, class uint8) {
	cm.Classes[y*cm.Width+x] = class
}

// Tensor is a dense float32 array. Data is contiguous in row-major order
// over Shape; a preprocessed frame is NCHW (1, 3, H, W).
type Tensor struct {
	Data  []float32
	Shape []int
}

// Numel returns the number of elements implied by the shape.
func (t *Tensor) Numel() int {
	n := 1
	for _, d := range t.Shape {
		n *= d
	}
	return n
}

// Dim returns the size of dimension i, 0 if out of range.
func (t *Tensor) Dim(i int) int {
	if i < 0 || i >= len(t.Shape) {
		return 0
	}
	return t.Shape[i]
}
