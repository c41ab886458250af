package labelformat

import (
	"fmt"
	"strings"
)

// ValidateOptions checks style options for values that cannot be drawn.
// Validation is opt-in: the composer itself accepts any options and fills
// defaults, so only callers that want early feedback use this.
func ValidateOptions(o StyleOptions) error {
	if o.QRPixelSize < 0 {
		return fmt.Errorf("qr_pixel_size must be positive, got %d", o.QRPixelSize)
	}
	if o.CanvasWidth < 0 {
		return fmt.Errorf("canvas_width must be positive, got %d", o.CanvasWidth)
	}
	if o.CanvasHeight < 0 {
		return fmt.Errorf("canvas_height must be positive, got %d", o.CanvasHeight)
	}
	if o.FontSizePx < 0 {
		return fmt.Errorf("font_size_px must be positive, got %d", o.FontSizePx)
	}
	if o.QRMarginPx < 0 {
		return fmt.Errorf("qr_margin_px must be positive, got %d", o.QRMarginPx)
	}
	if err := validateColor("background_color", o.BackgroundColor); err != nil {
		return err
	}
	if err := validateColor("text_color", o.TextColor); err != nil {
		return err
	}
	return nil
}

// Validate checks a persisted configuration.
func Validate(c *Configuration) error {
	if c.ShopID == "" {
		return fmt.Errorf("shop_id is required")
	}
	if c.PaperSize != "" && c.PaperSize != PaperThermal && c.PaperSize != PaperA4 {
		return fmt.Errorf("invalid paper_size: %s (must be thermal or a4)", c.PaperSize)
	}
	if c.QRSize < 0 {
		return fmt.Errorf("qr_size must be positive, got %d", c.QRSize)
	}
	if c.FontSize < 0 {
		return fmt.Errorf("font_size must be positive, got %d", c.FontSize)
	}
	for name, v := range map[string]int{
		"margins.top":    c.Margins.Top,
		"margins.bottom": c.Margins.Bottom,
		"margins.left":   c.Margins.Left,
		"margins.right":  c.Margins.Right,
	} {
		if v < 0 {
			return fmt.Errorf("%s must not be negative, got %d", name, v)
		}
	}
	for name, v := range map[string]string{
		"colors.background": c.Colors.Background,
		"colors.text":       c.Colors.Text,
		"colors.border":     c.Colors.Border,
	} {
		if err := validateColor(name, v); err != nil {
			return err
		}
	}
	return nil
}

func validateColor(field, value string) error {
	if value == "" {
		return nil
	}
	if !strings.HasPrefix(value, "#") {
		return fmt.Errorf("invalid %s: %q (must be a hex color like #rrggbb)", field, value)
	}
	hex := value[1:]
	if len(hex) != 3 && len(hex) != 6 && len(hex) != 8 {
		return fmt.Errorf("invalid %s: %q (must be 3, 6, or 8 hex digits)", field, value)
	}
	for _, r := range hex {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return fmt.Errorf("invalid %s: %q (non-hex digit %q)", field, value, r)
		}
	}
	return nil
}
