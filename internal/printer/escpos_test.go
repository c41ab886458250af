package printer

import (
	"bytes"
	"image"
	"image/color"
	"testing"
)

func testImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.White)
		}
	}
	return img
}

func TestRasterizePacksBits(t *testing.T) {
	img := testImage(8, 2)
	img.Set(0, 0, color.Black)
	img.Set(7, 0, color.Black)
	img.Set(3, 1, color.Black)

	bitmap := rasterize(img)
	if len(bitmap) != 2 {
		t.Fatalf("bitmap length = %d, want 2", len(bitmap))
	}
	if bitmap[0] != 0x81 {
		t.Errorf("row 0 = %#02x, want 0x81", bitmap[0])
	}
	if bitmap[1] != 0x10 {
		t.Errorf("row 1 = %#02x, want 0x10", bitmap[1])
	}
}

func TestRasterizeRowPadding(t *testing.T) {
	// 10px wide rows pad to 2 bytes each.
	bitmap := rasterize(testImage(10, 3))
	if len(bitmap) != 6 {
		t.Errorf("bitmap length = %d, want 6", len(bitmap))
	}
}

func TestEncodeLabelStructure(t *testing.T) {
	data := EncodeLabel(testImage(16, 4))

	if !bytes.HasPrefix(data, []byte{esc, '@'}) {
		t.Error("stream does not start with initialize")
	}
	if !bytes.Contains(data, []byte{esc, 'a', 1}) {
		t.Error("missing center alignment")
	}
	if !bytes.Contains(data, []byte{gs, 'v', '0', 0}) {
		t.Error("missing raster command")
	}
	if !bytes.HasSuffix(data, []byte{gs, 'V', 1}) {
		t.Error("stream does not end with partial cut")
	}
}

func TestRasterHeader(t *testing.T) {
	e := NewEncoder()
	e.Raster(testImage(16, 300))

	data := e.Bytes()
	// GS v 0 m xL xH yL yH: 16px -> 2 bytes/line, 300 lines.
	want := []byte{gs, 'v', '0', 0, 2, 0, 0x2C, 0x01}
	if !bytes.HasPrefix(data, want) {
		t.Errorf("raster header = %v, want prefix %v", data[:8], want)
	}
}

func TestEncoderReset(t *testing.T) {
	e := NewEncoder()
	e.Initialize()
	e.Reset()
	if len(e.Bytes()) != 0 {
		t.Error("buffer not empty after reset")
	}
}
