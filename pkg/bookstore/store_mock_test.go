package bookstore

import "context"

// mockStore is a plain map-backed Store for the service tests. It mirrors
// the semantics of the memory engine: ids from a counter starting at 1,
// silent deletes, no-op updates on absent ids.
type mockStore[E Entity] struct {
	kind   string
	nextID uint64
	items  map[uint64]E
}

func newMockStore[E Entity](kind string) *mockStore[E] {
	return &mockStore[E]{kind: kind, nextID: 1, items: make(map[uint64]E)}
}

func (s *mockStore[E]) Save(ctx context.Context, e E) (E, error) {
	if id := e.EntityID(); id != 0 {
		if _, ok := s.items[id]; ok {
			var zero E
			return zero, &AlreadyExistsError{Entity: s.kind}
		}
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

func (s *mockStore[E]) FindByID(ctx context.Context, id uint64) (E, bool, error) {
	e, ok := s.items[id]
	return e, ok, nil
}

func (s *mockStore[E]) ExistsByID(ctx context.Context, id uint64) (bool, error) {
	_, ok := s.items[id]
	return ok, nil
}

func (s *mockStore[E]) FindAll(ctx context.Context) ([]E, error) {
	out := make([]E, 0, len(s.items))
	for _, e := range s.items {
		out = append(out, e)
	}
	return out, nil
}

func (s *mockStore[E]) DeleteByID(ctx context.Context, id uint64) error {
	delete(s.items, id)
	return nil
}

func (s *mockStore[E]) DeleteAll(ctx context.Context) error {
	s.items = make(map[uint64]E)
	return nil
}

func (s *mockStore[E]) Update(ctx context.Context, e E) (bool, error) {
	if _, ok := s.items[e.EntityID()]; !ok {
		return false, nil
	}
	s.items[e.EntityID()] = e
	return true, nil
}
