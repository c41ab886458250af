package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/lubritrack/label-engine/internal/composer"
	"github.com/lubritrack/label-engine/internal/store"
	"github.com/lubritrack/label-engine/pkg/labelformat"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "labels.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	cache, err := store.NewPresetCache(filepath.Join(dir, "presets.json"))
	if err != nil {
		t.Fatalf("failed to open cache: %v", err)
	}

	return NewServer(Options{
		Composer: composer.New(composer.NewLocalProvider(), "https://shop.example.com"),
		Store:    st,
		Cache:    cache,
		Log:      zerolog.Nop(),
	})
}

func doJSON(t *testing.T, s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodGet, "/health", nil)
	if w.Code != 200 {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}

func TestCreateLabel(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/labels", map[string]interface{}{
		"vehicle_id": "ab123cd",
		"style": map[string]interface{}{
			"primary_caption": "Scan for history",
			"shop_name":       "Lubricentro Norte",
		},
	})
	if w.Code != 200 {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		VehicleID string `json:"vehicle_id"`
		Mode      string `json:"mode"`
		Image     string `json:"image"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}

	if resp.Mode != "captioned" {
		t.Errorf("mode = %q, want captioned", resp.Mode)
	}
	if !strings.HasPrefix(resp.Image, "data:image/png;base64,") {
		t.Errorf("image is not a PNG data URI: %.40s", resp.Image)
	}
}

func TestCreateLabelPlainMode(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/labels", map[string]interface{}{
		"vehicle_id": "AB123CD",
	})
	if w.Code != 200 {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Mode string `json:"mode"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.Mode != "plain" {
		t.Errorf("mode = %q, want plain", resp.Mode)
	}
}

func TestCreateLabelRequiresVehicleID(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/labels", map[string]interface{}{
		"style": map[string]interface{}{"qr_pixel_size": 100},
	})
	if w.Code != 400 {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestLabelPNGEndpoint(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodGet, "/labels/AB123CD/png", nil)
	if w.Code != 200 {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("content type = %q, want image/png", ct)
	}
	// PNG magic bytes
	if !bytes.HasPrefix(w.Body.Bytes(), []byte{0x89, 'P', 'N', 'G'}) {
		t.Error("body is not a PNG")
	}
}

func TestServiceTagEndpoint(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodGet, "/labels/AB123CD/tag.png?change=3", nil)
	if w.Code != 200 {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte{0x89, 'P', 'N', 'G'}) {
		t.Error("body is not a PNG")
	}
}

func TestLabelDocument(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/documents/label?autoprint=true", map[string]interface{}{
		"record": map[string]interface{}{"vehicle_id": "AB123CD"},
		"shop":   map[string]interface{}{"name": "Lubricentro Norte"},
	})
	if w.Code != 200 {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	html := w.Body.String()
	if !strings.Contains(html, "window.print") {
		t.Error("autoprint document missing print trigger")
	}
	if !strings.Contains(html, "AB123CD") {
		t.Error("document missing vehicle domain")
	}
}

func TestLabelDocumentRequiresRecord(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/documents/label", map[string]interface{}{
		"shop": map[string]interface{}{"name": "Lubricentro Norte"},
	})
	if w.Code != 400 {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestBatchDocument(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/documents/batch", map[string]interface{}{
		"records": []map[string]interface{}{
			{"vehicle_id": "AA111AA"},
			{"vehicle_id": "BB222BB"},
		},
	})
	if w.Code != 200 {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	html := w.Body.String()
	if got := strings.Count(html, `<div class="cell">`); got != 2 {
		t.Errorf("cell count = %d, want 2", got)
	}
}

func TestBatchDocumentRejectsEmpty(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/documents/batch", map[string]interface{}{
		"records": []map[string]interface{}{},
	})
	if w.Code != 400 {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestGetConfigServesDefaultsWhenMissing(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodGet, "/shops/shop-1/config", nil)
	if w.Code != 200 {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var cfg labelformat.Configuration
	if err := json.Unmarshal(w.Body.Bytes(), &cfg); err != nil {
		t.Fatalf("failed to parse configuration: %v", err)
	}
	if cfg.HeaderText != "Maintenance History" {
		t.Errorf("header = %q, want defaults", cfg.HeaderText)
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodPut, "/shops/shop-1/config", map[string]interface{}{
		"header_text": "Lubricentro Sur",
		"qr_size":     150,
	})
	if w.Code != 200 {
		t.Fatalf("save status = %d, body = %s", w.Code, w.Body.String())
	}

	w = doJSON(t, s, http.MethodGet, "/shops/shop-1/config", nil)
	if w.Code != 200 {
		t.Fatalf("get status = %d", w.Code)
	}

	var cfg labelformat.Configuration
	if err := json.Unmarshal(w.Body.Bytes(), &cfg); err != nil {
		t.Fatalf("failed to parse configuration: %v", err)
	}
	if cfg.HeaderText != "Lubricentro Sur" {
		t.Errorf("header = %q, save lost", cfg.HeaderText)
	}
	if cfg.QRSize != 150 {
		t.Errorf("qr size = %d, want 150", cfg.QRSize)
	}
	// Untouched fields retain defaults.
	if cfg.FooterText != "Scan to view history" {
		t.Errorf("footer = %q, want default", cfg.FooterText)
	}
}

func TestSaveConfigRejectsInvalid(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodPut, "/shops/shop-1/config", map[string]interface{}{
		"colors": map[string]interface{}{
			"background": "not-a-color",
			"text":       "#000000",
			"border":     "#808080",
		},
	})
	if w.Code != 400 {
		t.Fatalf("status = %d, want 400, body = %s", w.Code, w.Body.String())
	}
}

func TestResetConfig(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodPut, "/shops/shop-1/config", map[string]interface{}{
		"header_text": "Custom",
	})
	if w.Code != 200 {
		t.Fatalf("save status = %d", w.Code)
	}

	w = doJSON(t, s, http.MethodPost, "/shops/shop-1/config/reset", nil)
	if w.Code != 200 {
		t.Fatalf("reset status = %d, body = %s", w.Code, w.Body.String())
	}

	var cfg labelformat.Configuration
	if err := json.Unmarshal(w.Body.Bytes(), &cfg); err != nil {
		t.Fatalf("failed to parse configuration: %v", err)
	}
	if cfg.HeaderText != "Maintenance History" {
		t.Errorf("header = %q, want defaults after reset", cfg.HeaderText)
	}
}

func TestPrintWithoutQueue(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/print", map[string]interface{}{
		"vehicle_id": "AB123CD",
	})
	if w.Code != 503 {
		t.Fatalf("status = %d, want 503", w.Code)
	}
}

func TestJobsWithoutQueue(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodGet, "/jobs", nil)
	if w.Code != 503 {
		t.Fatalf("status = %d, want 503", w.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/labels", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if w.Code != 204 {
		t.Fatalf("status = %d, want 204", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS allow-origin header")
	}
}
