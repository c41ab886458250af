package composer

import (
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"golang.org/x/sync/errgroup"

	"github.com/lubritrack/label-engine/pkg/labelformat"
)

const (
	logoSize        = 40
	logoPad         = 10
	logoQRTopMargin = 20
	logoCaption     = "Escaneá para ver tu historial"
)

var logoHTTPClient = &http.Client{Timeout: 10 * time.Second}

// ComposeWithLogo renders a label with the shop logo pasted over the QR
// center on a white padding square. The QR and the logo load
// concurrently; if either fails, the result falls back silently to the
// plain composer with the same options.
//
// The logo square occludes part of the QR. The local provider generates
// at the highest error-correction level, which tolerates bounded central
// occlusion; scannability of HTTP-provided bitmaps is not verified.
func (c *Composer) ComposeWithLogo(ctx context.Context, vehicleID, logoSource string, opts labelformat.StyleOptions) (string, error) {
	opts = opts.WithDefaults()
	payload := labelformat.ConsultationURL(c.origin, vehicleID)

	var qr, logo image.Image
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		img, err := c.provider.Resolve(gctx, payload, opts.QRPixelSize)
		if err != nil {
			return err
		}
		qr = img
		return nil
	})
	g.Go(func() error {
		img, err := loadLogo(gctx, logoSource)
		if err != nil {
			return err
		}
		logo = imaging.Resize(img, logoSize, logoSize, imaging.Lanczos)
		return nil
	})

	if err := g.Wait(); err != nil {
		return c.Compose(ctx, vehicleID, opts)
	}

	surface, err := c.NewSurface(opts.CanvasWidth, opts.CanvasHeight)
	if err != nil {
		return "", err
	}

	surface.Fill(opts.BackgroundColor)

	qrW, qrH := qr.Bounds().Dx(), qr.Bounds().Dy()
	qrX := (opts.CanvasWidth - qrW) / 2
	surface.DrawImage(qr, qrX, logoQRTopMargin)

	centerX := qrX + qrW/2
	centerY := logoQRTopMargin + qrH/2
	pad := float64(logoSize + logoPad)

	surface.SetColor("#ffffff")
	surface.FillRect(float64(centerX)-pad/2, float64(centerY)-pad/2, pad, pad)
	surface.DrawImage(logo, centerX-logoSize/2, centerY-logoSize/2)

	width := float64(opts.CanvasWidth)
	surface.SetColor(opts.TextColor)
	surface.SetFont(opts.FontFamily, float64(opts.FontSizePx), true)
	y := float64(logoQRTopMargin + qrH + captionGap)
	surface.DrawText(logoCaption, (width-surface.MeasureText(logoCaption))/2, y)

	return encodeSurface(surface)
}

// loadLogo resolves a logo from a data URI, an HTTP(S) URL or a local
// file path.
func loadLogo(ctx context.Context, source string) (image.Image, error) {
	switch {
	case source == "":
		return nil, fmt.Errorf("%w: empty logo source", ErrBitmapLoad)

	case strings.HasPrefix(source, "data:"):
		idx := strings.Index(source, ",")
		if idx < 0 {
			return nil, fmt.Errorf("%w: malformed data URI", ErrBitmapLoad)
		}
		raw, err := base64.StdEncoding.DecodeString(source[idx+1:])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBitmapLoad, err)
		}
		img, _, err := image.Decode(strings.NewReader(string(raw)))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBitmapLoad, err)
		}
		return img, nil

	case strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://"):
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBitmapLoad, err)
		}
		resp, err := logoHTTPClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBitmapLoad, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("%w: HTTP %d fetching logo", ErrBitmapLoad, resp.StatusCode)
		}
		img, _, err := image.Decode(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBitmapLoad, err)
		}
		return img, nil

	default:
		f, err := os.Open(source)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBitmapLoad, err)
		}
		defer f.Close()
		img, _, err := image.Decode(f)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBitmapLoad, err)
		}
		return img, nil
	}
}
