package bookstore

import "context"

// AuthorService manages the author catalog and enforces name uniqueness.
type AuthorService struct {
	store Store[*Author]
}

// NewAuthorService returns a service backed by the given store.
func NewAuthorService(store Store[*Author]) *AuthorService {
	return &AuthorService{store: store}
}

// Save stores a new author. It fails with AlreadyExistsError when the id
// is already taken or when another author carries the same name; the name
// check runs even for authors without an id.
func (s *AuthorService) Save(ctx context.Context, author *Author) (*Author, error) {
	if author.ID != 0 {
		exists, err := s.store.ExistsByID(ctx, author.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, &AlreadyExistsError{Entity: KindAuthor}
		}
	}
	all, err := s.store.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, other := range all {
		if other.Name == author.Name {
			return nil, &AlreadyExistsError{Entity: KindAuthor}
		}
	}
	return s.store.Save(ctx, author)
}

// FindByID reports the author and whether one exists. Absence is the
// caller's call to treat as an error.
func (s *AuthorService) FindByID(ctx context.Context, id uint64) (*Author, bool, error) {
	return s.store.FindByID(ctx, id)
}

// Update replaces an existing author. It fails with NotFoundError when no
// author with that id exists.
func (s *AuthorService) Update(ctx context.Context, author *Author) (*Author, error) {
	exists, err := s.store.ExistsByID(ctx, author.ID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, &NotFoundError{Entity: KindAuthor}
	}
	if _, err := s.store.Update(ctx, author); err != nil {
		return nil, err
	}
	return author, nil
}

// All returns every author.
func (s *AuthorService) All(ctx context.Context) ([]*Author, error) {
	return s.store.FindAll(ctx)
}

// AddBook appends the book to the author's in-memory association. It does
// not persist anything; saving the book and updating the author are
// separate explicit operations.
func (s *AuthorService) AddBook(author *Author, book *Book) {
	author.Books = append(author.Books, book)
}
