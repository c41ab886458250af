// Package store persists per-shop label configuration and caches style
// presets locally.
package store

import (
	"context"
	"errors"

	"github.com/lubritrack/label-engine/pkg/labelformat"
)

// ErrNotFound reports that a shop has no stored configuration yet.
// Callers fall back to labelformat.DefaultConfiguration.
var ErrNotFound = errors.New("configuration not found")

// ConfigurationStore is the persistence contract for label
// configurations. One record per shop; saves merge and the last writer
// wins. Callers re-read after a save to obtain the canonical state.
type ConfigurationStore interface {
	Load(ctx context.Context, shopID string) (labelformat.Configuration, error)
	Save(ctx context.Context, shopID string, patch labelformat.ConfigurationPatch) error
	Reset(ctx context.Context, shopID string) error
}
