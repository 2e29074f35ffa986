package sharedexpense

import "context"

// MutateFunc applies a change to an aggregate loaded under the store's write
// guard. Returning an error aborts the write.
type MutateFunc func(se *SharedExpense) error

// Reader loads aggregates. Results are copies the caller may keep.
type Reader interface {
	// GetByID returns ErrSplitNotFound when no split has the id
	GetByID(ctx context.Context, id int64) (*SharedExpense, error)

	// ListByUser returns splits the user pays for or participates in, newest
	// first, read from one consistent snapshot.
	ListByUser(ctx context.Context, userID int64, filter ListFilter) ([]*SharedExpense, error)

	// ListEvents returns a split's history, oldest first
	ListEvents(ctx context.Context, id int64) ([]Event, error)
}

// Writer persists aggregates. Every call is one atomic unit of work, and
// writers of the same aggregate are serialized: either by a lock held for the
// whole call or by a version check that fails with ErrConcurrentUpdate.
type Writer interface {
	// Create assigns ids and persists a new aggregate with its entries and events
	Create(ctx context.Context, se *SharedExpense) (*SharedExpense, error)

	// Update loads the latest state, applies mutate, verifies invariants and
	// writes the aggregate, its entries and recorded events together.
	Update(ctx context.Context, id int64, mutate MutateFunc) (*SharedExpense, error)

	// Delete removes the aggregate with its entries when guard allows it
	Delete(ctx context.Context, id int64, guard MutateFunc) error
}

// Store is the persistence contract of the splitting service
type Store interface {
	Reader
	Writer
}
