package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"typeahead/internal/domain"
)

// file is the on-disk catalog layout shared by every supported format
type file struct {
	Results []domain.Result `json:"results" yaml:"results" toml:"results"`
}

// Load reads a catalog file. The format follows the extension: .yaml/.yml,
// .toml, .json or .jsonc (JSON with comments and trailing commas).
func Load(path string) ([]domain.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	entries, err := Parse(filepath.Ext(path), data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return entries, nil
}

// Parse decodes catalog data in the format named by ext
func Parse(ext string, data []byte) ([]domain.Result, error) {
	var f file
	var err error

	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &f)
	case ".toml":
		err = toml.Unmarshal(data, &f)
	case ".json", ".jsonc":
		dec := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
		dec.DisallowUnknownFields()
		err = dec.Decode(&f)
	default:
		return nil, fmt.Errorf("unsupported catalog format %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	seen := make(map[string]bool, len(f.Results))
	for i, r := range f.Results {
		if r.Kind == "" {
			f.Results[i].Kind = domain.KindText
			r.Kind = domain.KindText
		}
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		if seen[r.ID] {
			return nil, fmt.Errorf("entry %d: duplicate id %s", i, r.ID)
		}
		seen[r.ID] = true
	}
	return f.Results, nil
}
