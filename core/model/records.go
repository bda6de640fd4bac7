package model

import (
	"encoding/json"
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

// Record is an untyped row as exchanged with external collaborators such as
// the natural-language filter.
type Record = map[string]any

// Records converts one collection of the dataset into untyped rows.
func (d Dataset) Records(e Entity) ([]Record, error) {
	var v any
	switch e {
	case EntityClients:
		v = d.Clients
	case EntityWorkers:
		v = d.Workers
	case EntityTasks:
		v = d.Tasks
	default:
		return nil, fmt.Errorf("unknown entity %q", e)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := []Record{}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DecodeClients converts untyped rows into clients. Scalar ID columns are
// weakly converted so numeric spreadsheet cells survive a round trip.
func DecodeClients(recs []Record) ([]Client, error) {
	out := make([]Client, 0, len(recs))
	if err := decodeRecords(recs, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DecodeWorkers converts untyped rows into workers.
func DecodeWorkers(recs []Record) ([]Worker, error) {
	out := make([]Worker, 0, len(recs))
	if err := decodeRecords(recs, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DecodeTasks converts untyped rows into tasks.
func DecodeTasks(recs []Record) ([]Task, error) {
	out := make([]Task, 0, len(recs))
	if err := decodeRecords(recs, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func decodeRecords(recs []Record, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(recs); err != nil {
		return fmt.Errorf("decode records: %w", err)
	}
	return nil
}
