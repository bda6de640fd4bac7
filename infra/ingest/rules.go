package ingest

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/rulecheck/core/rules"
)

// LoadRules reads a rule list from a JSON or YAML file. Records that cannot
// be decoded are kept as rules.Unknown so the validator reports them.
func LoadRules(path string) ([]rules.Rule, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load rules: %w", err)
	}
	rs, err := ParseRules(data, format)
	if err != nil {
		return nil, fmt.Errorf("load rules %s: %w", path, err)
	}
	return rs, nil
}

// ParseRules decodes a rule list document.
func ParseRules(data []byte, format Format) ([]rules.Rule, error) {
	var ms []map[string]any
	var err error
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &ms)
	case FormatYAML:
		err = yaml.Unmarshal(data, &ms)
	default:
		return nil, fmt.Errorf("unsupported rules format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", format, err)
	}
	return rules.FromMaps(ms), nil
}

// SaveRules writes rs to path as JSON or YAML depending on the extension.
func SaveRules(path string, rs []rules.Rule) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	ms := make([]map[string]any, 0, len(rs))
	for _, r := range rs {
		ms = append(ms, rules.ToMap(r))
	}
	var data []byte
	switch format {
	case FormatJSON:
		data, err = json.MarshalIndent(ms, "", "  ")
	case FormatYAML:
		data, err = yaml.Marshal(ms)
	default:
		return fmt.Errorf("unsupported rules format %q", format)
	}
	if err != nil {
		return fmt.Errorf("encode rules: %w", err)
	}
	return writeFileAtomic(path, data)
}
