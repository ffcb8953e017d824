package filterstore

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/atikulmunna/logloom/internal/model"
)

// DefaultName is the file a chain for fileID is saved under.
func DefaultName(fileID string) string {
	return fileID + "_filters.json"
}

// Load reads a JSON list of {type, value, case_sensitive} records.
func Load(path string) (model.FilterChain, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var chain model.FilterChain
	if err := json.Unmarshal(raw, &chain); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return chain, nil
}

// Save writes the chain to disk atomically.
func Save(path string, chain model.FilterChain) error {
	raw, err := json.MarshalIndent(chain, "", "  ")
	if err != nil {
		return err
	}

	// Write to a temp file first, then rename for atomicity.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
