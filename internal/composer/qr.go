package composer

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/skip2/go-qrcode"
)

// BitmapProvider resolves a QR bitmap for a payload at a pixel size.
// Injected into the composer so tests can fake it.
type BitmapProvider interface {
	Resolve(ctx context.Context, payload string, sizePx int) (image.Image, error)
}

// LocalProvider generates QR bitmaps in-process.
type LocalProvider struct {
	Level qrcode.RecoveryLevel
}

// NewLocalProvider returns a provider at the highest error-correction
// level, so a centered logo overlay stays within recovery capacity.
func NewLocalProvider() *LocalProvider {
	return &LocalProvider{Level: qrcode.Highest}
}

func (p *LocalProvider) Resolve(_ context.Context, payload string, sizePx int) (image.Image, error) {
	q, err := qrcode.New(payload, p.Level)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBitmapLoad, err)
	}

	return q.Image(sizePx), nil
}

// HTTPProvider fetches QR bitmaps from an external rendering endpoint
// accepting size=WxH, data, format and margin query parameters. The
// endpoint is an uncontrolled third party; any non-200 answer is a
// bitmap load failure. Error-correction level is not controllable here,
// so logo overlays on top of HTTP-provided bitmaps carry an unverified
// occlusion risk.
type HTTPProvider struct {
	baseURL string
	margin  int
	client  *http.Client
}

// NewHTTPProvider creates a provider against the given endpoint URL.
func NewHTTPProvider(baseURL string) *HTTPProvider {
	return &HTTPProvider{
		baseURL: baseURL,
		margin:  1,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (p *HTTPProvider) Resolve(ctx context.Context, payload string, sizePx int) (image.Image, error) {
	q := url.Values{}
	q.Set("size", fmt.Sprintf("%dx%d", sizePx, sizePx))
	q.Set("data", payload)
	q.Set("format", "png")
	q.Set("margin", strconv.Itoa(p.margin))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBitmapLoad, err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBitmapLoad, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP %d from bitmap endpoint", ErrBitmapLoad, resp.StatusCode)
	}

	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBitmapLoad, err)
	}

	return img, nil
}
