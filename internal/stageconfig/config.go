package stageconfig

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// StageConfig is the parameter/tag bundle for one deployment stage.
type StageConfig struct {
	Parameters map[string]string `json:"Parameters"`
	Tags       map[string]string `json:"Tags"`
}

// StageName returns the StageName parameter and whether it is set.
func (c *StageConfig) StageName() (string, bool) {
	if c == nil || c.Parameters == nil {
		return "", false
	}
	name, ok := c.Parameters[ParamStageName]
	return name, ok
}

// Clone returns a deep copy. A nil Tags map becomes an empty one.
func (c *StageConfig) Clone() *StageConfig {
	out := &StageConfig{
		Parameters: maps.Clone(c.Parameters),
		Tags:       maps.Clone(c.Tags),
	}
	if out.Tags == nil {
		out.Tags = map[string]string{}
	}
	return out
}

// Load reads a stage configuration from path.
//
// Files ending in .yaml or .yml are decoded as YAML, everything else as JSON.
// The document is validated against the stage configuration schema before it is
// decoded, so a successful Load always yields a StageName.
func Load(path string) (*StageConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read stage config: %w", err)
	}
	return Parse(path, raw)
}

// Parse decodes and validates a stage configuration document. name is used for
// format detection and error messages only.
func Parse(name string, raw []byte) (*StageConfig, error) {
	data := raw
	if isYAML(name) {
		converted, err := yamlToJSON(raw)
		if err != nil {
			return nil, &ConfigurationError{Path: name, Message: fmt.Sprintf("invalid YAML: %v", err)}
		}
		data = converted
	}

	if err := Validate(name, data); err != nil {
		return nil, err
	}

	var cfg StageConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, &ConfigurationError{Path: name, Message: fmt.Sprintf("invalid JSON: %v", err)}
	}
	if cfg.Tags == nil {
		cfg.Tags = map[string]string{}
	}
	return &cfg, nil
}

// Write serializes cfg to path as JSON indented with four spaces.
func Write(path string, cfg *StageConfig) error {
	out := cfg.Clone()
	if out.Parameters == nil {
		out.Parameters = map[string]string{}
	}
	return WriteJSON(path, out)
}

// WriteJSON writes v to path as four-space indented JSON without HTML escaping.
// A failed write is reported as a *WriteError.
func WriteJSON(path string, v any) error {
	data, err := MarshalIndent(v)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	return nil
}

// MarshalIndent encodes v the way exported files are written.
func MarshalIndent(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("marshal JSON: %w", err)
	}
	return buf.Bytes(), nil
}

func isYAML(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// yamlToJSON re-encodes a YAML document as JSON so both formats share one
// validation path.
func yamlToJSON(raw []byte) ([]byte, error) {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		doc = map[string]any{}
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	return data, nil
}
