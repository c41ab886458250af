// Package labelformat defines the types for service-label styling and
// per-shop label configuration.
package labelformat

import "time"

// StyleOptions bundles the visual parameters governing label composition.
// Every field is optional; the composer fills in defaults for zero values.
type StyleOptions struct {
	QRPixelSize     int    `json:"qr_pixel_size,omitempty"`
	CanvasWidth     int    `json:"canvas_width,omitempty"`
	CanvasHeight    int    `json:"canvas_height,omitempty"`
	BackgroundColor string `json:"background_color,omitempty"`
	TextColor       string `json:"text_color,omitempty"`
	PrimaryCaption  string `json:"primary_caption,omitempty"`
	ShopName        string `json:"shop_name,omitempty"`
	FontSizePx      int    `json:"font_size_px,omitempty"`
	FontFamily      string `json:"font_family,omitempty"`
	QRMarginPx      int    `json:"qr_margin_px,omitempty"`
}

// DefaultStyleOptions returns the stock style used when a shop has not
// customized anything.
func DefaultStyleOptions() StyleOptions {
	return StyleOptions{
		QRPixelSize:     150,
		CanvasWidth:     300,
		CanvasHeight:    320,
		BackgroundColor: "#ffffff",
		TextColor:       "#000000",
		FontSizePx:      14,
		FontFamily:      "default",
		QRMarginPx:      20,
	}
}

// WithDefaults fills zero-valued fields from DefaultStyleOptions.
// Caption and shop name stay as given; empty means absent.
func (o StyleOptions) WithDefaults() StyleOptions {
	d := DefaultStyleOptions()
	if o.QRPixelSize <= 0 {
		o.QRPixelSize = d.QRPixelSize
	}
	if o.CanvasWidth <= 0 {
		o.CanvasWidth = d.CanvasWidth
	}
	if o.CanvasHeight <= 0 {
		o.CanvasHeight = d.CanvasHeight
	}
	if o.BackgroundColor == "" {
		o.BackgroundColor = d.BackgroundColor
	}
	if o.TextColor == "" {
		o.TextColor = d.TextColor
	}
	if o.FontSizePx <= 0 {
		o.FontSizePx = d.FontSizePx
	}
	if o.FontFamily == "" {
		o.FontFamily = d.FontFamily
	}
	if o.QRMarginPx <= 0 {
		o.QRMarginPx = d.QRMarginPx
	}
	return o
}

// LabelMode selects between a plain QR label and a caption-bearing one.
type LabelMode string

const (
	ModePlain     LabelMode = "plain"
	ModeCaptioned LabelMode = "captioned"
)

// ModeFor reproduces the legacy inference: the captioned path is taken
// whenever the options carry caption content.
func ModeFor(o StyleOptions) LabelMode {
	if o.PrimaryCaption != "" || o.ShopName != "" {
		return ModeCaptioned
	}
	return ModePlain
}

// ServiceRecord is a single vehicle service entry, consumed read-only.
type ServiceRecord struct {
	VehicleID       string    `json:"vehicle_id"`
	ChangeNumber    int       `json:"change_number,omitempty"`
	ServiceDate     time.Time `json:"service_date,omitempty"`
	NextServiceDate time.Time `json:"next_service_date,omitempty"`
	NextServiceKM   int       `json:"next_service_km,omitempty"`
	Make            string    `json:"make,omitempty"`
	Model           string    `json:"model,omitempty"`
	ShopID          string    `json:"shop_id,omitempty"`
}

// ShopProfile describes the shop a label is printed for.
type ShopProfile struct {
	Name       string    `json:"name"`
	LogoSource string    `json:"logo_source,omitempty"` // data URI, URL, or file path
	Colors     *ColorSet `json:"colors,omitempty"`
}

// PaperSize is the target paper for printable documents.
type PaperSize string

const (
	PaperThermal PaperSize = "thermal"
	PaperA4      PaperSize = "a4"
)

// MarginBox holds print margins in millimeters.
type MarginBox struct {
	Top    int `json:"top"`
	Bottom int `json:"bottom"`
	Left   int `json:"left"`
	Right  int `json:"right"`
}

// ColorSet is the background/text/border color triple.
type ColorSet struct {
	Background string `json:"background"`
	Text       string `json:"text"`
	Border     string `json:"border"`
}

// Configuration is the persisted label configuration of one shop.
// Exactly one configuration exists per shop; it is created on first save
// and mutated in place afterwards.
type Configuration struct {
	ShopID          string    `json:"shop_id"`
	HeaderText      string    `json:"header_text"`
	FooterText      string    `json:"footer_text"`
	PaperSize       PaperSize `json:"paper_size"`
	QRSize          int       `json:"qr_size"`
	FontSize        int       `json:"font_size"`
	Margins         MarginBox `json:"margins"`
	Colors          ColorSet  `json:"colors"`
	IncludeDate     bool      `json:"include_date"`
	IncludeShopName bool      `json:"include_shop_name"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// DefaultConfiguration returns the hard-coded defaults a shop starts
// with, also used by reset.
func DefaultConfiguration(shopID string) Configuration {
	return Configuration{
		ShopID:     shopID,
		HeaderText: "Maintenance History",
		FooterText: "Scan to view history",
		PaperSize:  PaperThermal,
		QRSize:     120,
		FontSize:   10,
		Margins:    MarginBox{Top: 5, Bottom: 5, Left: 10, Right: 10},
		Colors: ColorSet{
			Background: "#ffffff",
			Text:       "#000000",
			Border:     "#808080",
		},
		IncludeDate:     true,
		IncludeShopName: true,
	}
}

// ConfigurationPatch is a partial configuration for merge-writes.
// Nil fields are left untouched by Save.
type ConfigurationPatch struct {
	HeaderText      *string    `json:"header_text,omitempty"`
	FooterText      *string    `json:"footer_text,omitempty"`
	PaperSize       *PaperSize `json:"paper_size,omitempty"`
	QRSize          *int       `json:"qr_size,omitempty"`
	FontSize        *int       `json:"font_size,omitempty"`
	Margins         *MarginBox `json:"margins,omitempty"`
	Colors          *ColorSet  `json:"colors,omitempty"`
	IncludeDate     *bool      `json:"include_date,omitempty"`
	IncludeShopName *bool      `json:"include_shop_name,omitempty"`
}

// Apply merges the patch into a configuration, shallow last-writer-wins.
func (p ConfigurationPatch) Apply(c Configuration) Configuration {
	if p.HeaderText != nil {
		c.HeaderText = *p.HeaderText
	}
	if p.FooterText != nil {
		c.FooterText = *p.FooterText
	}
	if p.PaperSize != nil {
		c.PaperSize = *p.PaperSize
	}
	if p.QRSize != nil {
		c.QRSize = *p.QRSize
	}
	if p.FontSize != nil {
		c.FontSize = *p.FontSize
	}
	if p.Margins != nil {
		c.Margins = *p.Margins
	}
	if p.Colors != nil {
		c.Colors = *p.Colors
	}
	if p.IncludeDate != nil {
		c.IncludeDate = *p.IncludeDate
	}
	if p.IncludeShopName != nil {
		c.IncludeShopName = *p.IncludeShopName
	}
	return c
}
