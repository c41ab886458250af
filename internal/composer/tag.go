package composer

import (
	"fmt"
	"strings"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"

	"github.com/lubritrack/label-engine/pkg/labelformat"
)

const (
	tagWidth         = 400
	tagHeight        = 130
	tagBarcodeHeight = 80
	tagMargin        = 20
)

// ComposeServiceTag renders a Code128 strip of the vehicle domain and
// change number, used on A4 receipts next to the QR label.
func (c *Composer) ComposeServiceTag(record labelformat.ServiceRecord) (string, error) {
	if record.VehicleID == "" {
		return "", fmt.Errorf("%w: vehicle identifier", ErrMissingInput)
	}

	value := strings.ToUpper(record.VehicleID)
	if record.ChangeNumber > 0 {
		value = fmt.Sprintf("%s-%d", value, record.ChangeNumber)
	}

	bc, err := code128.Encode(value)
	if err != nil {
		return "", fmt.Errorf("failed to encode barcode: %w", err)
	}

	scaled, err := barcode.Scale(bc, tagWidth-2*tagMargin, tagBarcodeHeight)
	if err != nil {
		return "", fmt.Errorf("failed to scale barcode: %w", err)
	}

	surface, err := c.NewSurface(tagWidth, tagHeight)
	if err != nil {
		return "", err
	}

	surface.Fill("#ffffff")
	surface.DrawImage(scaled, tagMargin, 10)

	surface.SetColor("#000000")
	surface.SetFont("default", 12, false)
	surface.DrawText(value, (float64(tagWidth)-surface.MeasureText(value))/2, float64(tagHeight)-12)

	return encodeSurface(surface)
}
