package labelformat

import (
	"net/url"
	"strings"
	"testing"
)

func TestConsultationURLRoundTrip(t *testing.T) {
	cases := []string{"ab123cd", "AB123CD", "aa 123 bb", "ñ-123/4"}

	for _, id := range cases {
		raw := ConsultationURL("https://shop.example.com", id)

		got, err := DecodeConsultationURL(raw)
		if err != nil {
			t.Fatalf("failed to decode %q: %v", raw, err)
		}
		if got != strings.ToUpper(id) {
			t.Errorf("round trip for %q: expected %q, got %q", id, strings.ToUpper(id), got)
		}
	}
}

func TestConsultationURLShape(t *testing.T) {
	raw := ConsultationURL("https://shop.example.com/", "ab123cd")

	if raw != "https://shop.example.com/consulta-historial?dominio=AB123CD" {
		t.Errorf("unexpected URL: %s", raw)
	}

	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("URL does not parse: %v", err)
	}
	if u.Path != ConsultationPath {
		t.Errorf("expected path %s, got %s", ConsultationPath, u.Path)
	}
}

func TestWithDefaultsFillsZeroValues(t *testing.T) {
	opts := StyleOptions{PrimaryCaption: "Cambio de aceite"}.WithDefaults()

	if opts.QRPixelSize != 150 {
		t.Errorf("expected default QR size 150, got %d", opts.QRPixelSize)
	}
	if opts.CanvasWidth != 300 || opts.CanvasHeight != 320 {
		t.Errorf("expected default canvas 300x320, got %dx%d", opts.CanvasWidth, opts.CanvasHeight)
	}
	if opts.PrimaryCaption != "Cambio de aceite" {
		t.Errorf("caption should be preserved, got %q", opts.PrimaryCaption)
	}
	if opts.ShopName != "" {
		t.Errorf("shop name should stay empty, got %q", opts.ShopName)
	}
}

func TestModeFor(t *testing.T) {
	if mode := ModeFor(StyleOptions{}); mode != ModePlain {
		t.Errorf("empty options should select plain mode, got %s", mode)
	}
	if mode := ModeFor(StyleOptions{PrimaryCaption: "hola"}); mode != ModeCaptioned {
		t.Errorf("caption should select captioned mode, got %s", mode)
	}
	if mode := ModeFor(StyleOptions{ShopName: "Lubricentro Sur"}); mode != ModeCaptioned {
		t.Errorf("shop name should select captioned mode, got %s", mode)
	}
}

func TestPatchApplyMergesOnlySetFields(t *testing.T) {
	base := DefaultConfiguration("shop-1")

	header := "Historial de cambios"
	size := 200
	merged := ConfigurationPatch{HeaderText: &header, QRSize: &size}.Apply(base)

	if merged.HeaderText != header {
		t.Errorf("expected header %q, got %q", header, merged.HeaderText)
	}
	if merged.QRSize != 200 {
		t.Errorf("expected qr size 200, got %d", merged.QRSize)
	}
	if merged.FooterText != base.FooterText {
		t.Errorf("unpatched footer changed: %q", merged.FooterText)
	}
	if merged.PaperSize != PaperThermal {
		t.Errorf("unpatched paper size changed: %s", merged.PaperSize)
	}
}

func TestDefaultConfiguration(t *testing.T) {
	cfg := DefaultConfiguration("shop-9")

	if cfg.HeaderText != "Maintenance History" {
		t.Errorf("unexpected header: %q", cfg.HeaderText)
	}
	if cfg.FooterText != "Scan to view history" {
		t.Errorf("unexpected footer: %q", cfg.FooterText)
	}
	if cfg.PaperSize != PaperThermal {
		t.Errorf("unexpected paper size: %s", cfg.PaperSize)
	}
	if cfg.QRSize != 120 || cfg.FontSize != 10 {
		t.Errorf("unexpected sizes: qr=%d font=%d", cfg.QRSize, cfg.FontSize)
	}
	if cfg.Colors.Border != "#808080" {
		t.Errorf("unexpected border color: %s", cfg.Colors.Border)
	}
	if !cfg.IncludeDate || !cfg.IncludeShopName {
		t.Error("expected both include flags on by default")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := DefaultConfiguration("shop-1")
	cfg.PaperSize = "letter"
	if err := Validate(&cfg); err == nil {
		t.Error("expected error for unknown paper size")
	}

	cfg = DefaultConfiguration("shop-1")
	cfg.Colors.Text = "red"
	if err := Validate(&cfg); err == nil {
		t.Error("expected error for non-hex color")
	}

	cfg = DefaultConfiguration("shop-1")
	cfg.ShopID = ""
	if err := Validate(&cfg); err == nil {
		t.Error("expected error for missing shop id")
	}

	cfg = DefaultConfiguration("shop-1")
	if err := Validate(&cfg); err != nil {
		t.Errorf("defaults should validate, got %v", err)
	}
}

func TestParseConfiguration(t *testing.T) {
	data := []byte(`{
		"shop_id": "shop-3",
		"header_text": "Historial",
		"paper_size": "a4",
		"qr_size": 140,
		"colors": {"background": "#fff", "text": "#000", "border": "#ccc"}
	}`)

	cfg, err := ParseConfiguration(data)
	if err != nil {
		t.Fatalf("failed to parse configuration: %v", err)
	}
	if cfg.ShopID != "shop-3" {
		t.Errorf("unexpected shop id: %s", cfg.ShopID)
	}
	if cfg.PaperSize != PaperA4 {
		t.Errorf("unexpected paper size: %s", cfg.PaperSize)
	}

	if _, err := ParseConfiguration([]byte(`{"shop_id":"x","paper_size":"nope"}`)); err == nil {
		t.Error("expected validation error for bad paper size")
	}
}
