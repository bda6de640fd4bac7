package model

import "fmt"

// Entity identifies one of the three record collections.
type Entity string

const (
	EntityClients Entity = "clients"
	EntityWorkers Entity = "workers"
	EntityTasks   Entity = "tasks"
)

// Entities lists the collections in ingestion order.
var Entities = []Entity{EntityClients, EntityWorkers, EntityTasks}

// ParseEntity resolves a user supplied collection name.
func ParseEntity(s string) (Entity, error) {
	switch Entity(s) {
	case EntityClients, EntityWorkers, EntityTasks:
		return Entity(s), nil
	case "client":
		return EntityClients, nil
	case "worker":
		return EntityWorkers, nil
	case "task":
		return EntityTasks, nil
	}
	return "", fmt.Errorf("unknown entity %q", s)
}

func (e Entity) String() string { return string(e) }
