// Package memory implements an in-memory entity store.
package memory

import (
	"context"
	"sync"

	"bookstore/pkg/bookstore"
)

// Store provides a mutex-guarded in-memory implementation of
// bookstore.Store. Identities are assigned from a counter starting at 1
// that is never reset or reused, even after deletion.
type Store[E bookstore.Entity] struct {
	kind string

	mu     sync.RWMutex
	nextID uint64
	items  map[uint64]E
}

// New creates an empty store for the given entity kind. The kind labels
// the errors the store returns.
func New[E bookstore.Entity](kind string) *Store[E] {
	return &Store[E]{
		kind:   kind,
		nextID: 1,
		items:  make(map[uint64]E),
	}
}

// Save inserts the entity, assigning the next identity when it carries
// none.
func (s *Store[E]) Save(ctx context.Context, e E) (E, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id := e.EntityID(); id != 0 {
		if _, ok := s.items[id]; ok {
			var zero E
			return zero, &bookstore.AlreadyExistsError{Entity: s.kind}
		}
		// Keep the counter ahead of caller-supplied ids so a later
		// auto-assigned id cannot collide with this entry.
		if id >= s.nextID {
			s.nextID = id + 1
		}
	} else {
		e.SetEntityID(s.nextID)
		s.nextID++
	}
	s.items[e.EntityID()] = e
	return e, nil
}

// FindByID reports the entity and whether it exists.
func (s *Store[E]) FindByID(ctx context.Context, id uint64) (E, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.items[id]
	return e, ok, nil
}

// ExistsByID is a membership test.
func (s *Store[E]) ExistsByID(ctx context.Context, id uint64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.items[id]
	return ok, nil
}

// FindAll returns every stored entity in no particular order.
func (s *Store[E]) FindAll(ctx context.Context) ([]E, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]E, 0, len(s.items))
	for _, e := range s.items {
		out = append(out, e)
	}
	return out, nil
}

// DeleteByID removes the entity if present; deleting an absent id is a
// no-op.
func (s *Store[E]) DeleteByID(ctx context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
	return nil
}

// DeleteAll clears the store. The identity counter keeps its value.
func (s *Store[E]) DeleteAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[uint64]E)
	return nil
}

// Update replaces the stored value at the entity's id, reporting whether
// anything was replaced. Updating an absent id is a no-op.
func (s *Store[E]) Update(ctx context.Context, e E) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[e.EntityID()]; !ok {
		return false, nil
	}
	s.items[e.EntityID()] = e
	return true, nil
}
