package memory

import (
	"context"
	"sync"

	"github.com/fkhayef/sharedexpenses/internal/sharedexpense"
)

// Store is an in-memory implementation of sharedexpense.Store.
// One lock serializes all writers; reads and writes work on copies.
// Data is lost on restart.
type Store struct {
	mu     sync.RWMutex
	splits map[int64]*sharedexpense.SharedExpense
	events map[int64][]sharedexpense.Event

	nextSplitID       int64
	nextParticipantID int64
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		splits: make(map[int64]*sharedexpense.SharedExpense),
		events: make(map[int64][]sharedexpense.Event),
	}
}

var _ sharedexpense.Store = (*Store)(nil)

// Create implements sharedexpense.Writer
func (s *Store) Create(ctx context.Context, se *sharedexpense.SharedExpense) (*sharedexpense.SharedExpense, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := se.Clone()
	s.nextSplitID++
	stored.ID = s.nextSplitID
	stored.Version = 1
	s.assignParticipantIDs(stored)
	if err := stored.Verify(); err != nil {
		return nil, err
	}

	events := se.TakeEvents()
	for i := range events {
		events[i].SharedExpenseID = stored.ID
	}

	s.splits[stored.ID] = stored
	s.events[stored.ID] = append(s.events[stored.ID], events...)

	return stored.Clone(), nil
}

// GetByID implements sharedexpense.Reader
func (s *Store) GetByID(ctx context.Context, id int64) (*sharedexpense.SharedExpense, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	se, exists := s.splits[id]
	if !exists {
		return nil, sharedexpense.ErrSplitNotFound
	}
	return se.Clone(), nil
}

// ListByUser implements sharedexpense.Reader
func (s *Store) ListByUser(ctx context.Context, userID int64, filter sharedexpense.ListFilter) ([]*sharedexpense.SharedExpense, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*sharedexpense.SharedExpense, 0)
	for _, se := range s.splits {
		if !se.HasAccess(userID) || !filter.Matches(se) {
			continue
		}
		result = append(result, se.Clone())
	}
	sharedexpense.SortNewestFirst(result)

	return result, nil
}

// ListEvents implements sharedexpense.Reader
func (s *Store) ListEvents(ctx context.Context, id int64) ([]sharedexpense.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, exists := s.splits[id]; !exists {
		return nil, sharedexpense.ErrSplitNotFound
	}
	events := make([]sharedexpense.Event, len(s.events[id]))
	copy(events, s.events[id])
	return events, nil
}

// Update implements sharedexpense.Writer. mutate runs on a copy that replaces
// the stored aggregate only when it succeeds and verifies.
func (s *Store) Update(ctx context.Context, id int64, mutate sharedexpense.MutateFunc) (*sharedexpense.SharedExpense, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, exists := s.splits[id]
	if !exists {
		return nil, sharedexpense.ErrSplitNotFound
	}

	working := current.Clone()
	if err := mutate(working); err != nil {
		return nil, err
	}
	s.assignParticipantIDs(working)
	if err := working.Verify(); err != nil {
		return nil, err
	}
	working.Version = current.Version + 1

	s.splits[id] = working
	s.events[id] = append(s.events[id], working.TakeEvents()...)

	return working.Clone(), nil
}

// Delete implements sharedexpense.Writer
func (s *Store) Delete(ctx context.Context, id int64, guard sharedexpense.MutateFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, exists := s.splits[id]
	if !exists {
		return sharedexpense.ErrSplitNotFound
	}
	if err := guard(current.Clone()); err != nil {
		return err
	}

	delete(s.splits, id)
	delete(s.events, id)
	return nil
}

func (s *Store) assignParticipantIDs(se *sharedexpense.SharedExpense) {
	for _, p := range se.Participants {
		if p.ID == 0 {
			s.nextParticipantID++
			p.ID = s.nextParticipantID
		}
		p.SharedExpenseID = se.ID
	}
}
