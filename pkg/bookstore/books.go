package bookstore

import "context"

// BookService manages the book catalog and enforces title uniqueness.
type BookService struct {
	store Store[*Book]
}

// NewBookService returns a service backed by the given store.
func NewBookService(store Store[*Book]) *BookService {
	return &BookService{store: store}
}

// Save stores a new book. It fails with AlreadyExistsError when the id is
// already taken or when another book carries the same title.
func (s *BookService) Save(ctx context.Context, book *Book) (*Book, error) {
	if book.ID != 0 {
		exists, err := s.store.ExistsByID(ctx, book.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, &AlreadyExistsError{Entity: KindBook}
		}
	}
	all, err := s.store.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, other := range all {
		if other.Title == book.Title {
			return nil, &AlreadyExistsError{Entity: KindBook}
		}
	}
	return s.store.Save(ctx, book)
}

// FindByID reports the book and whether one exists.
func (s *BookService) FindByID(ctx context.Context, id uint64) (*Book, bool, error) {
	return s.store.FindByID(ctx, id)
}

// All returns every book.
func (s *BookService) All(ctx context.Context) ([]*Book, error) {
	return s.store.FindAll(ctx)
}
