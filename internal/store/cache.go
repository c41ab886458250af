package store

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/lubritrack/label-engine/pkg/labelformat"
)

// PresetCache keeps a JSON-file mirror of shop configurations so the
// label composer can pick up style presets without a database round
// trip. Entries are keyed "qr-options-<shop>" with an unscoped
// "qr-options-default" fallback.
type PresetCache struct {
	filePath string
	data     map[string]labelformat.Configuration
	mu       sync.RWMutex
}

const defaultPresetKey = "qr-options-default"

// NewPresetCache creates a cache backed by the given file.
func NewPresetCache(filePath string) (*PresetCache, error) {
	c := &PresetCache{
		filePath: filePath,
		data:     make(map[string]labelformat.Configuration),
	}

	if err := c.load(); err != nil {
		// Missing file is fine, it will be created on first Put.
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load preset cache: %w", err)
		}
	}

	return c, nil
}

// Get returns the cached configuration for a shop, falling back to the
// default preset when the shop has none.
func (c *PresetCache) Get(shopID string) (labelformat.Configuration, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if cfg, ok := c.data[presetKey(shopID)]; ok {
		return cfg, true
	}
	cfg, ok := c.data[defaultPresetKey]
	return cfg, ok
}

// Put stores a shop's configuration. The shop name is stripped: presets
// capture style only, identity comes from the live record.
func (c *PresetCache) Put(shopID string, cfg labelformat.Configuration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	cfg.ShopID = ""
	c.data[presetKey(shopID)] = cfg

	return c.save()
}

// PutDefault stores the unscoped fallback preset.
func (c *PresetCache) PutDefault(cfg labelformat.Configuration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	cfg.ShopID = ""
	c.data[defaultPresetKey] = cfg

	return c.save()
}

// Remove drops a shop's cached preset. Returns true if it existed.
func (c *PresetCache) Remove(shopID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := presetKey(shopID)
	if _, ok := c.data[key]; !ok {
		return false
	}
	delete(c.data, key)

	// A failed write is non-critical, the next Put rewrites the file.
	_ = c.save()
	return true
}

func presetKey(shopID string) string {
	if shopID == "" {
		return defaultPresetKey
	}
	return "qr-options-" + shopID
}

func (c *PresetCache) load() error {
	data, err := os.ReadFile(c.filePath)
	if err != nil {
		return err
	}

	return json.Unmarshal(data, &c.data)
}

func (c *PresetCache) save() error {
	data, err := json.MarshalIndent(c.data, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(c.filePath, data, 0644)
}
