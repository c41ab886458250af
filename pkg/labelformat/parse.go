package labelformat

import (
	"encoding/json"
	"fmt"
	"os"
)

// ParseConfiguration parses a configuration from JSON bytes and
// validates it.
func ParseConfiguration(data []byte) (*Configuration, error) {
	var c Configuration
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if err := Validate(&c); err != nil {
		return nil, err
	}

	return &c, nil
}

// ParseConfigurationFile parses a configuration from disk.
func ParseConfigurationFile(path string) (*Configuration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file: %w", err)
	}

	return ParseConfiguration(data)
}

// ToJSON converts a configuration to indented JSON bytes.
func (c *Configuration) ToJSON() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}
