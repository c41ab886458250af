// Package composer produces raster label images from a vehicle
// identifier and style options.
package composer

import (
	"bytes"
	"fmt"
	"image"
	"os"

	"github.com/fogleman/gg"
)

// Surface is the drawing capability the composition algorithm needs.
// Keeping it narrow makes the algorithm portable to any raster backend.
type Surface interface {
	Width() int
	Height() int
	Fill(hexColor string)
	FillRect(x, y, w, h float64)
	DrawImage(img image.Image, x, y int)
	SetColor(hexColor string)
	SetFont(family string, sizePx float64, bold bool)
	MeasureText(text string) float64
	DrawText(text string, x, y float64)
	DrawLine(x1, y1, x2, y2, width float64)
	EncodePNG() ([]byte, error)
}

// SurfaceFactory allocates a fresh surface per composition. Each call
// gets its own surface, so concurrent compositions are independent.
type SurfaceFactory func(width, height int) (Surface, error)

// NewImageSurface creates a gg-backed in-memory surface.
func NewImageSurface(width, height int) (Surface, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("%w: invalid dimensions %dx%d", ErrCanvasUnavailable, width, height)
	}

	return &imageSurface{ctx: gg.NewContext(width, height), width: width, height: height}, nil
}

type imageSurface struct {
	ctx    *gg.Context
	width  int
	height int
}

func (s *imageSurface) Width() int  { return s.width }
func (s *imageSurface) Height() int { return s.height }

func (s *imageSurface) Fill(hexColor string) {
	s.ctx.SetHexColor(hexColor)
	s.ctx.Clear()
}

func (s *imageSurface) FillRect(x, y, w, h float64) {
	s.ctx.DrawRectangle(x, y, w, h)
	s.ctx.Fill()
}

func (s *imageSurface) DrawImage(img image.Image, x, y int) {
	s.ctx.DrawImage(img, x, y)
}

func (s *imageSurface) SetColor(hexColor string) {
	s.ctx.SetHexColor(hexColor)
}

// SetFont loads a matching system font face. If nothing loads, gg keeps
// its built-in face, so text still measures and renders.
func (s *imageSurface) SetFont(family string, sizePx float64, bold bool) {
	for _, path := range fontPaths(family, bold) {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := s.ctx.LoadFontFace(path, sizePx); err == nil {
			return
		}
	}
}

func (s *imageSurface) MeasureText(text string) float64 {
	w, _ := s.ctx.MeasureString(text)
	return w
}

func (s *imageSurface) DrawText(text string, x, y float64) {
	s.ctx.DrawString(text, x, y)
}

func (s *imageSurface) DrawLine(x1, y1, x2, y2, width float64) {
	s.ctx.SetLineWidth(width)
	s.ctx.DrawLine(x1, y1, x2, y2)
	s.ctx.Stroke()
}

func (s *imageSurface) EncodePNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := s.ctx.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

func fontPaths(family string, bold bool) []string {
	if bold {
		return []string{
			"/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf",
			"/usr/share/fonts/truetype/liberation/LiberationSans-Bold.ttf",
			"/System/Library/Fonts/Supplemental/Arial Bold.ttf",
			"C:\\Windows\\Fonts\\arialbd.ttf",
		}
	}

	return []string{
		"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
		"/usr/share/fonts/truetype/liberation/LiberationSans-Regular.ttf",
		"/System/Library/Fonts/Supplemental/Arial.ttf",
		"/System/Library/Fonts/Helvetica.ttc",
		"C:\\Windows\\Fonts\\arial.ttf",
	}
}
