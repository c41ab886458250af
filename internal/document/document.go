// Package document renders printable label documents for the browser
// print surface.
package document

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/lubritrack/label-engine/pkg/labelformat"
)

const headerMaxRunes = 25

var (
	// ErrMissingVehicleID rejects records without a vehicle identifier.
	ErrMissingVehicleID = errors.New("service record requires a vehicle identifier")
	// ErrNoRecords rejects empty batch requests.
	ErrNoRecords = errors.New("at least one service record is required")
)

// LabelComposer is the slice of the composer the renderer needs.
type LabelComposer interface {
	Compose(ctx context.Context, vehicleID string, opts labelformat.StyleOptions) (string, error)
	ComposePlain(ctx context.Context, vehicleID string, sizePx int) (string, error)
}

// Renderer produces printable HTML documents around composed labels.
type Renderer struct {
	composer LabelComposer
}

// NewRenderer creates a document renderer over the given composer.
func NewRenderer(c LabelComposer) *Renderer {
	return &Renderer{composer: c}
}

type labelPage struct {
	Header       string
	Image        template.URL
	Domain       string
	MakeModel    string
	ServiceDate  string
	NextService  string
	ChangeNumber int
	PrintedAt    string
	Autoprint    bool
	PollMS       int64
	TimeoutMS    int64
}

type batchCell struct {
	Image  template.URL
	Domain string
	Meta   string
}

type batchPage struct {
	Header    string
	Cells     []batchCell
	Autoprint bool
	SettleMS  int64
}

// RenderLabel renders the single-label thermal document. The label mode
// is selected explicitly from the options: caption content picks the
// captioned composer, otherwise the QR is embedded plain. When
// autoprint is off the document never triggers printing on its own.
func (r *Renderer) RenderLabel(ctx context.Context, record labelformat.ServiceRecord, shop labelformat.ShopProfile, opts labelformat.StyleOptions, autoprint bool) (string, error) {
	if record.VehicleID == "" {
		return "", ErrMissingVehicleID
	}

	image, err := r.composeCell(ctx, record.VehicleID, opts)
	if err != nil {
		return "", err
	}

	page := labelPage{
		Header:       truncate(shop.Name, headerMaxRunes),
		Image:        template.URL(image),
		Domain:       strings.ToUpper(record.VehicleID),
		MakeModel:    strings.TrimSpace(record.Make + " " + record.Model),
		ServiceDate:  formatDate(record.ServiceDate),
		NextService:  formatNextService(record),
		ChangeNumber: record.ChangeNumber,
		PrintedAt:    time.Now().Format("02/01/2006 15:04"),
		Autoprint:    autoprint,
		PollMS:       PrintPollInterval.Milliseconds(),
		TimeoutMS:    PrintFallbackTimeout.Milliseconds(),
	}

	var buf bytes.Buffer
	if err := labelTemplate.Execute(&buf, page); err != nil {
		return "", fmt.Errorf("failed to render label document: %w", err)
	}
	return buf.String(), nil
}

// RenderBatch renders N labels in a two-column grid, each cell composed
// independently. Printing waits a fixed settle delay instead of polling
// image state; that asymmetry with the single-label path is deliberate.
func (r *Renderer) RenderBatch(ctx context.Context, records []labelformat.ServiceRecord, shop labelformat.ShopProfile, opts labelformat.StyleOptions, autoprint bool) (string, error) {
	if len(records) == 0 {
		return "", ErrNoRecords
	}

	cells := make([]batchCell, 0, len(records))
	for i, record := range records {
		if record.VehicleID == "" {
			return "", fmt.Errorf("record[%d]: %w", i, ErrMissingVehicleID)
		}

		image, err := r.composeCell(ctx, record.VehicleID, opts)
		if err != nil {
			return "", fmt.Errorf("record[%d]: %w", i, err)
		}

		cells = append(cells, batchCell{
			Image:  template.URL(image),
			Domain: strings.ToUpper(record.VehicleID),
			Meta:   formatDate(record.ServiceDate),
		})
	}

	page := batchPage{
		Header:    truncate(shop.Name, headerMaxRunes),
		Cells:     cells,
		Autoprint: autoprint,
		SettleMS:  BatchSettleDelay.Milliseconds(),
	}

	var buf bytes.Buffer
	if err := batchTemplate.Execute(&buf, page); err != nil {
		return "", fmt.Errorf("failed to render batch document: %w", err)
	}
	return buf.String(), nil
}

func (r *Renderer) composeCell(ctx context.Context, vehicleID string, opts labelformat.StyleOptions) (string, error) {
	if labelformat.ModeFor(opts) == labelformat.ModeCaptioned {
		return r.composer.Compose(ctx, vehicleID, opts)
	}
	return r.composer.ComposePlain(ctx, vehicleID, opts.QRPixelSize)
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02/01/2006")
}

func formatNextService(r labelformat.ServiceRecord) string {
	parts := make([]string, 0, 2)
	if !r.NextServiceDate.IsZero() {
		parts = append(parts, r.NextServiceDate.Format("02/01/2006"))
	}
	if r.NextServiceKM > 0 {
		parts = append(parts, fmt.Sprintf("%d km", r.NextServiceKM))
	}
	return strings.Join(parts, " / ")
}
