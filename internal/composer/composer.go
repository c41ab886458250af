package composer

import (
	"context"
	"strings"

	"github.com/lubritrack/label-engine/pkg/labelformat"
)

// Layout constants sized for 58mm thermal labels.
const (
	captionMargin     = 20 // horizontal space reserved around caption text
	captionLineHeight = 18
	captionGap        = 25 // gap between QR bottom and first caption line
	separatorInset    = 20
	mutedColor        = "#666666"
)

// Composer turns a vehicle identifier and style options into a label
// image. Collaborators are injected so they can be faked in tests.
type Composer struct {
	provider BitmapProvider
	origin   string

	// NewSurface allocates the drawing backend. Overridable in tests.
	NewSurface SurfaceFactory
}

// New creates a composer. origin is the public base URL embedded into
// every consultation deep link.
func New(provider BitmapProvider, origin string) *Composer {
	return &Composer{
		provider:   provider,
		origin:     origin,
		NewSurface: NewImageSurface,
	}
}

// Compose renders the full label: background, centered QR, wrapped
// caption, optional shop line, separator and domain line. Returns a PNG
// data URI. Output is deterministic for deterministic provider output;
// a provider failure is terminal for the call, there are no retries.
func (c *Composer) Compose(ctx context.Context, vehicleID string, opts labelformat.StyleOptions) (string, error) {
	opts = opts.WithDefaults()

	payload := labelformat.ConsultationURL(c.origin, vehicleID)
	qr, err := c.provider.Resolve(ctx, payload, opts.QRPixelSize)
	if err != nil {
		return "", err
	}

	surface, err := c.NewSurface(opts.CanvasWidth, opts.CanvasHeight)
	if err != nil {
		return "", err
	}

	surface.Fill(opts.BackgroundColor)

	qrW := qr.Bounds().Dx()
	surface.DrawImage(qr, (opts.CanvasWidth-qrW)/2, opts.QRMarginPx)

	width := float64(opts.CanvasWidth)
	y := float64(opts.QRMarginPx + opts.QRPixelSize + captionGap)

	if opts.PrimaryCaption != "" {
		surface.SetColor(opts.TextColor)
		surface.SetFont(opts.FontFamily, float64(opts.FontSizePx), true)

		for _, line := range WrapCaption(surface.MeasureText, opts.PrimaryCaption, width-captionMargin) {
			surface.DrawText(line, (width-surface.MeasureText(line))/2, y)
			y += captionLineHeight
		}
	}

	if opts.ShopName != "" {
		surface.SetColor(mutedColor)
		surface.SetFont(opts.FontFamily, float64(opts.FontSizePx)-2, false)
		surface.DrawText(opts.ShopName, (width-surface.MeasureText(opts.ShopName))/2, y)
		y += captionLineHeight
	}

	y += 6
	surface.SetColor(mutedColor)
	surface.DrawLine(separatorInset, y, width-separatorInset, y, 1)
	y += captionLineHeight

	surface.SetFont(opts.FontFamily, float64(opts.FontSizePx)-2, false)
	domain := "Domain: " + strings.ToUpper(vehicleID)
	surface.DrawText(domain, (width-surface.MeasureText(domain))/2, y)

	return encodeSurface(surface)
}

// ComposePlain renders just the QR bitmap with no embedded text, for the
// plain label mode.
func (c *Composer) ComposePlain(ctx context.Context, vehicleID string, sizePx int) (string, error) {
	if sizePx <= 0 {
		sizePx = labelformat.DefaultStyleOptions().QRPixelSize
	}

	payload := labelformat.ConsultationURL(c.origin, vehicleID)
	qr, err := c.provider.Resolve(ctx, payload, sizePx)
	if err != nil {
		return "", err
	}

	surface, err := c.NewSurface(qr.Bounds().Dx(), qr.Bounds().Dy())
	if err != nil {
		return "", err
	}

	surface.Fill("#ffffff")
	surface.DrawImage(qr, 0, 0)

	return encodeSurface(surface)
}

func encodeSurface(s Surface) (string, error) {
	png, err := s.EncodePNG()
	if err != nil {
		return "", err
	}
	return EncodePNGDataURI(png), nil
}
