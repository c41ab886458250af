package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PUBLIC_ORIGIN", "https://shop.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Port)
	}
	if cfg.QRProvider != "local" {
		t.Errorf("qr provider = %q, want local", cfg.QRProvider)
	}
	if cfg.PrinterPort != 9100 {
		t.Errorf("printer port = %d, want 9100", cfg.PrinterPort)
	}
	if cfg.Addr() != ":8080" {
		t.Errorf("addr = %q, want :8080", cfg.Addr())
	}
}

func TestLoadRequiresOrigin(t *testing.T) {
	t.Setenv("PUBLIC_ORIGIN", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when PUBLIC_ORIGIN is empty")
	}
}

func TestLoadHTTPProviderNeedsURL(t *testing.T) {
	t.Setenv("PUBLIC_ORIGIN", "https://shop.example.com")
	t.Setenv("QR_PROVIDER", "http")
	t.Setenv("QR_SERVICE_URL", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when QR_PROVIDER=http without QR_SERVICE_URL")
	}
}
