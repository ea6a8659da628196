// Package record is the record-oriented backend used in remote mode: named
// collections of schemaless records scoped to one owner.
package record

import "context"

// Collections known to the service.
const (
	CollectionTask  = "task"
	CollectionStats = "task_stats"
)

// Fields the backend adds to every record it returns.
const (
	FieldID         = "Id"
	FieldOwner      = "Owner"
	FieldCreatedOn  = "CreatedOn"
	FieldModifiedOn = "ModifiedOn"
)

// Record is one stored document. Values are JSON-compatible.
type Record map[string]any

// Direction of an ordering clause.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Order sorts by a data field.
type Order struct {
	Field     string
	Direction Direction
}

// Query selects records of a collection. A zero Limit means no limit.
type Query struct {
	OrderBy []Order
	Limit   int
	Offset  int
}

// Store is the record API. Implementations are scoped to one owner.
type Store interface {
	Fetch(ctx context.Context, collection string, q Query) ([]Record, error)
	Create(ctx context.Context, collection string, r Record) (Record, error)
	// Update merges r into the stored record.
	Update(ctx context.Context, collection, id string, r Record) (Record, error)
	Delete(ctx context.Context, collection, id string) error
}
