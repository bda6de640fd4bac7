package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kilianp07/rulecheck/core/model"
)

// ReadCSV reads rows of a CSV sheet keyed by normalized header. Blank cells
// are left out of the record so they read as missing values.
func ReadCSV(r io.Reader) ([]model.Record, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return []model.Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i, h := range header {
		header[i] = NormalizeHeader(strings.TrimPrefix(h, "\ufeff"))
	}
	out := []model.Record{}
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if len(row) > len(header) {
			return nil, fmt.Errorf("line %d: %d cells for %d columns", line, len(row), len(header))
		}
		rec := make(model.Record, len(row))
		for i, cell := range row {
			if cell = strings.TrimSpace(cell); cell != "" && header[i] != "" {
				rec[header[i]] = cell
			}
		}
		if len(rec) > 0 {
			out = append(out, rec)
		}
	}
}

// LoadCSVFiles reads one CSV file per collection.
func LoadCSVFiles(paths map[model.Entity]string) (model.Dataset, error) {
	sheets := make(map[model.Entity][]model.Record, len(model.Entities))
	for _, e := range model.Entities {
		p, ok := paths[e]
		if !ok || p == "" {
			return model.Dataset{}, fmt.Errorf("%w: %s", ErrMissingSheet, e)
		}
		recs, err := readCSVFile(p)
		if err != nil {
			return model.Dataset{}, err
		}
		sheets[e] = recs
	}
	return decodeSheets(sheets)
}

// LoadCSVDir reads the CSV files of dir whose names contain "client",
// "worker" and "task".
func LoadCSVDir(dir string) (model.Dataset, error) {
	paths, err := FindCSVFiles(dir)
	if err != nil {
		return model.Dataset{}, err
	}
	return LoadCSVFiles(paths)
}

// FindCSVFiles locates the per collection CSV files in dir. The first
// matching file in lexical order wins.
func FindCSVFiles(dir string) (map[model.Entity]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	out := make(map[model.Entity]string, len(model.Entities))
	var missing []string
	for _, e := range model.Entities {
		keyword := strings.TrimSuffix(e.String(), "s")
		for _, n := range names {
			if strings.Contains(strings.ToLower(n), keyword) {
				out[e] = filepath.Join(dir, n)
				break
			}
		}
		if _, ok := out[e]; !ok {
			missing = append(missing, e.String())
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s (found %s)", ErrMissingSheet, strings.Join(missing, ", "), strings.Join(names, ", "))
	}
	return out, nil
}

func readCSVFile(path string) ([]model.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	recs, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return recs, nil
}
