package model

// Dataset is an immutable snapshot of the three collections consumed by
// the validators, the rule checks and the recommender.
type Dataset struct {
	Clients []Client `json:"clients" yaml:"clients"`
	Workers []Worker `json:"workers" yaml:"workers"`
	Tasks   []Task   `json:"tasks" yaml:"tasks"`
}

// Clone returns a copy whose slices can be replaced without affecting d.
// Records are copied by value; dynamic field values are shared.
func (d Dataset) Clone() Dataset {
	return Dataset{
		Clients: append([]Client(nil), d.Clients...),
		Workers: append([]Worker(nil), d.Workers...),
		Tasks:   append([]Task(nil), d.Tasks...),
	}
}

// Len returns the number of records in the given collection.
func (d Dataset) Len(e Entity) int {
	switch e {
	case EntityClients:
		return len(d.Clients)
	case EntityWorkers:
		return len(d.Workers)
	case EntityTasks:
		return len(d.Tasks)
	}
	return 0
}
