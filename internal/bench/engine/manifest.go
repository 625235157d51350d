package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const ManifestFile = "manifest.json"

// ModelManifest lists the embedding models available in a model directory.
type ModelManifest struct {
	SchemaVersion int `json:"schema_version"`
	Models        []struct {
		ID string `json:"id"`
	} `json:"models"`
}

func LoadModelManifest(modelDir string) (*ModelManifest, error) {
	path := filepath.Join(modelDir, ManifestFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m ModelManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &m, nil
}

func (m *ModelManifest) Has(id string) bool {
	for _, model := range m.Models {
		if model.ID == id {
			return true
		}
	}
	return false
}
