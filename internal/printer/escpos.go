// Package printer sends rendered labels to ESC/POS thermal printers
// over the network.
package printer

import (
	"bytes"
	"image"
)

// ESC/POS control bytes
const (
	esc byte = 0x1B
	gs  byte = 0x1D
)

// Encoder builds an ESC/POS command stream.
type Encoder struct {
	buf bytes.Buffer
}

func NewEncoder() *Encoder {
	return &Encoder{}
}

// Initialize resets the printer to its power-on state.
func (e *Encoder) Initialize() {
	e.buf.WriteByte(esc)
	e.buf.WriteByte('@')
}

// Align sets horizontal alignment: 0 left, 1 center, 2 right.
func (e *Encoder) Align(mode byte) {
	if mode > 2 {
		mode = 0
	}
	e.buf.WriteByte(esc)
	e.buf.WriteByte('a')
	e.buf.WriteByte(mode)
}

// Raster emits the image as GS v 0 raster graphics. Pixels darker than
// 50% gray print black.
func (e *Encoder) Raster(img image.Image) {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	bytesPerLine := (width + 7) / 8

	bitmap := rasterize(img)

	// GS v 0 m xL xH yL yH d1...dk
	e.buf.WriteByte(gs)
	e.buf.WriteByte('v')
	e.buf.WriteByte('0')
	e.buf.WriteByte(0) // normal density
	e.buf.WriteByte(byte(bytesPerLine & 0xFF))
	e.buf.WriteByte(byte((bytesPerLine >> 8) & 0xFF))
	e.buf.WriteByte(byte(height & 0xFF))
	e.buf.WriteByte(byte((height >> 8) & 0xFF))
	e.buf.Write(bitmap)
}

// Feed advances the paper by n lines.
func (e *Encoder) Feed(n int) {
	for i := 0; i < n; i++ {
		e.buf.WriteByte(0x0A)
	}
}

// PartialCut cuts the paper leaving one attachment point, so a strip
// of labels stays connected.
func (e *Encoder) PartialCut() {
	e.buf.WriteByte(gs)
	e.buf.WriteByte('V')
	e.buf.WriteByte(1)
}

// Cut performs a full paper cut.
func (e *Encoder) Cut() {
	e.buf.WriteByte(gs)
	e.buf.WriteByte('V')
	e.buf.WriteByte(0)
}

// Bytes returns the accumulated command stream.
func (e *Encoder) Bytes() []byte {
	return e.buf.Bytes()
}

// Reset clears the buffer for reuse.
func (e *Encoder) Reset() {
	e.buf.Reset()
}

// rasterize packs an image into a 1-bit-per-pixel bitmap, MSB first.
func rasterize(img image.Image) []byte {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	bytesPerLine := (width + 7) / 8
	bitmap := make([]byte, bytesPerLine*height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			gray := (r + g + b) / 3

			if gray < 32768 {
				bitmap[y*bytesPerLine+x/8] |= 1 << (7 - x%8)
			}
		}
	}

	return bitmap
}

// EncodeLabel produces the full command stream for one label: init,
// centered raster image, feed, partial cut.
func EncodeLabel(img image.Image) []byte {
	e := NewEncoder()
	e.Initialize()
	e.Align(1)
	e.Raster(img)
	e.Feed(3)
	e.PartialCut()
	return e.Bytes()
}
