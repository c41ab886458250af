package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/lubritrack/label-engine/pkg/labelformat"
)

func openTestStore(t *testing.T) *GormStore {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "labels.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	return s
}

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func TestLoadMissingShop(t *testing.T) {
	s := openTestStore(t)

	_, err := s.Load(context.Background(), "shop-1")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSaveCreatesFromDefaults(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	patch := labelformat.ConfigurationPatch{
		HeaderText: strPtr("Taller San Martín"),
		QRSize:     intPtr(150),
	}
	if err := s.Save(ctx, "shop-1", patch); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	cfg, err := s.Load(ctx, "shop-1")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.HeaderText != "Taller San Martín" {
		t.Errorf("header = %q, want %q", cfg.HeaderText, "Taller San Martín")
	}
	if cfg.QRSize != 150 {
		t.Errorf("qr size = %d, want 150", cfg.QRSize)
	}
	// Unpatched fields keep their defaults.
	if cfg.FooterText != "Scan to view history" {
		t.Errorf("footer = %q, want default", cfg.FooterText)
	}
	if cfg.PaperSize != labelformat.PaperThermal {
		t.Errorf("paper = %q, want thermal", cfg.PaperSize)
	}
}

func TestSaveMergePreservesEarlierWrites(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, "shop-1", labelformat.ConfigurationPatch{
		HeaderText: strPtr("First header"),
	}); err != nil {
		t.Fatalf("first save failed: %v", err)
	}
	if err := s.Save(ctx, "shop-1", labelformat.ConfigurationPatch{
		FooterText: strPtr("Second footer"),
	}); err != nil {
		t.Fatalf("second save failed: %v", err)
	}

	cfg, err := s.Load(ctx, "shop-1")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.HeaderText != "First header" {
		t.Errorf("header = %q, first write lost", cfg.HeaderText)
	}
	if cfg.FooterText != "Second footer" {
		t.Errorf("footer = %q, second write lost", cfg.FooterText)
	}
}

func TestResetRestoresDefaults(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, "shop-1", labelformat.ConfigurationPatch{
		HeaderText: strPtr("Custom"),
		QRSize:     intPtr(200),
	}); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if err := s.Reset(ctx, "shop-1"); err != nil {
		t.Fatalf("reset failed: %v", err)
	}

	cfg, err := s.Load(ctx, "shop-1")
	if err != nil {
		t.Fatalf("load after reset failed: %v", err)
	}

	want := labelformat.DefaultConfiguration("shop-1")
	if cfg.HeaderText != want.HeaderText || cfg.QRSize != want.QRSize {
		t.Errorf("reset did not restore defaults: got header=%q qr=%d", cfg.HeaderText, cfg.QRSize)
	}
	if cfg.Margins != want.Margins {
		t.Errorf("margins = %+v, want %+v", cfg.Margins, want.Margins)
	}
	if cfg.Colors != want.Colors {
		t.Errorf("colors = %+v, want %+v", cfg.Colors, want.Colors)
	}
}

func TestResetWithoutExistingRecord(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.Reset(ctx, "shop-9"); err != nil {
		t.Fatalf("reset failed: %v", err)
	}

	cfg, err := s.Load(ctx, "shop-9")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.HeaderText != "Maintenance History" {
		t.Errorf("header = %q, want defaults", cfg.HeaderText)
	}
}
