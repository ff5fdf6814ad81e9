package repositories

import "context"

// Store groups the entity repositories behind one unit of work.
type Store interface {
	Users() UserRepository
	Projects() ProjectRepository
	Columns() ColumnRepository
	Tasks() TaskRepository

	// Atomic runs fn against a store whose writes are all kept or all
	// discarded: if fn returns an error nothing it wrote survives.
	// Atomic is not reentrant.
	Atomic(ctx context.Context, fn func(Store) error) error
}
