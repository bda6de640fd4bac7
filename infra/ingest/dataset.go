package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/rulecheck/core/model"
)

// ErrMissingSheet is returned when a dataset source lacks one of the
// clients, workers or tasks collections.
var ErrMissingSheet = errors.New("missing collection")

// Format identifies a serialization.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCSV  Format = "csv"
)

// FormatOf infers the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".csv":
		return FormatCSV, nil
	}
	return "", fmt.Errorf("unsupported file type %q", filepath.Ext(path))
}

// LoadDataset reads a dataset from path. A JSON or YAML file must hold the
// three collections as top level keys; a directory must hold one CSV file
// per collection.
func LoadDataset(path string) (model.Dataset, error) {
	info, err := os.Stat(path)
	if err != nil {
		return model.Dataset{}, fmt.Errorf("load dataset: %w", err)
	}
	if info.IsDir() {
		return LoadCSVDir(path)
	}
	format, err := FormatOf(path)
	if err != nil {
		return model.Dataset{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Dataset{}, fmt.Errorf("load dataset: %w", err)
	}
	ds, err := ParseDataset(data, format)
	if err != nil {
		return model.Dataset{}, fmt.Errorf("load dataset %s: %w", path, err)
	}
	return ds, nil
}

// ParseDataset decodes a unified dataset document. Collections are found by
// keyword, so "Clients", "clients_sheet" and "client" all name the clients.
func ParseDataset(data []byte, format Format) (model.Dataset, error) {
	raw := map[string]any{}
	var err error
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &raw)
	case FormatYAML:
		err = yaml.Unmarshal(data, &raw)
	default:
		return model.Dataset{}, fmt.Errorf("unsupported dataset format %q", format)
	}
	if err != nil {
		return model.Dataset{}, fmt.Errorf("parse %s: %w", format, err)
	}

	sheets := make(map[model.Entity][]model.Record, len(model.Entities))
	var missing []string
	for _, e := range model.Entities {
		key, ok := findSheet(raw, e)
		if !ok {
			missing = append(missing, e.String())
			continue
		}
		recs, err := toRecords(raw[key])
		if err != nil {
			return model.Dataset{}, fmt.Errorf("%s: %w", key, err)
		}
		sheets[e] = recs
	}
	if len(missing) > 0 {
		return model.Dataset{}, fmt.Errorf("%w: %s (found %s)", ErrMissingSheet, strings.Join(missing, ", "), strings.Join(sortedKeys(raw), ", "))
	}
	return decodeSheets(sheets)
}

// findSheet returns the first key, in lexical order, containing the
// singular entity name.
func findSheet(raw map[string]any, e model.Entity) (string, bool) {
	keyword := strings.TrimSuffix(e.String(), "s")
	for _, k := range sortedKeys(raw) {
		if strings.Contains(strings.ToLower(k), keyword) {
			return k, true
		}
	}
	return "", false
}

func toRecords(v any) ([]model.Record, error) {
	if v == nil {
		return []model.Record{}, nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("expected a list of records, got %T", v)
	}
	out := make([]model.Record, 0, len(items))
	for i, it := range items {
		m, ok := it.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("row %d: expected a record, got %T", i, it)
		}
		out = append(out, NormalizeRecord(m))
	}
	return out, nil
}

func decodeSheets(sheets map[model.Entity][]model.Record) (model.Dataset, error) {
	var (
		ds  model.Dataset
		err error
	)
	if ds.Clients, err = model.DecodeClients(sheets[model.EntityClients]); err != nil {
		return model.Dataset{}, fmt.Errorf("clients: %w", err)
	}
	if ds.Workers, err = model.DecodeWorkers(sheets[model.EntityWorkers]); err != nil {
		return model.Dataset{}, fmt.Errorf("workers: %w", err)
	}
	if ds.Tasks, err = model.DecodeTasks(sheets[model.EntityTasks]); err != nil {
		return model.Dataset{}, fmt.Errorf("tasks: %w", err)
	}
	return ds, nil
}

// SaveDataset writes ds to path as JSON or YAML depending on the extension.
func SaveDataset(path string, ds model.Dataset) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	var data []byte
	switch format {
	case FormatJSON:
		data, err = json.MarshalIndent(ds, "", "  ")
	case FormatYAML:
		data, err = yaml.Marshal(ds)
	default:
		return fmt.Errorf("unsupported dataset format %q", format)
	}
	if err != nil {
		return fmt.Errorf("encode dataset: %w", err)
	}
	return writeFileAtomic(path, data)
}

// writeFileAtomic replaces path through a temporary file in the same
// directory so that watchers never observe a partial write.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
