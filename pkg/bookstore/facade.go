package bookstore

import "context"

// Service is the single cross-cutting API the transport layer calls. It
// composes the author catalog, the book catalog and the order workflow.
type Service struct {
	authors *AuthorService
	books   *BookService
	orders  *OrderService
}

// New composes the three services into a facade.
func New(authors *AuthorService, books *BookService, orders *OrderService) *Service {
	return &Service{authors: authors, books: books, orders: orders}
}

// GetAllBooks returns every book in the catalog.
func (s *Service) GetAllBooks(ctx context.Context) ([]*Book, error) {
	return s.books.All(ctx)
}

// GetAllAuthors returns every author in the catalog.
func (s *Service) GetAllAuthors(ctx context.Context) ([]*Author, error) {
	return s.authors.All(ctx)
}

// SaveAuthor stores a new author.
func (s *Service) SaveAuthor(ctx context.Context, author *Author) (*Author, error) {
	return s.authors.Save(ctx, author)
}

// FindAuthorByID returns an author, failing with NotFoundError when the
// id does not resolve.
func (s *Service) FindAuthorByID(ctx context.Context, id uint64) (*Author, error) {
	author, ok, err := s.authors.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &NotFoundError{Entity: KindAuthor}
	}
	return author, nil
}

// UpdateAuthor replaces an existing author.
func (s *Service) UpdateAuthor(ctx context.Context, author *Author) (*Author, error) {
	return s.authors.Update(ctx, author)
}

// SaveBook stores a new book. The book's author must already exist in the
// author catalog; the saved book is also attached to that author's list
// of works.
func (s *Service) SaveBook(ctx context.Context, book *Book) (*Book, error) {
	if book.Author == nil || book.Author.ID == 0 {
		return nil, &NotFoundError{Entity: KindAuthor}
	}
	author, ok, err := s.authors.FindByID(ctx, book.Author.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &NotFoundError{Entity: KindAuthor}
	}
	book.Author = author
	saved, err := s.books.Save(ctx, book)
	if err != nil {
		return nil, err
	}
	// Attach the book to a copy of the author and swap it in through the
	// store, so the stored author is never mutated while readers may
	// hold it.
	updated := *author
	updated.Books = append([]*Book(nil), author.Books...)
	s.authors.AddBook(&updated, saved)
	if _, err := s.authors.Update(ctx, &updated); err != nil {
		// Roll the saved book back so the catalogs stay consistent.
		_ = s.books.store.DeleteByID(ctx, saved.ID)
		return nil, err
	}
	return saved, nil
}

// BooksByAuthor returns the books attached to an author, failing with
// NotFoundError when the author does not exist.
func (s *Service) BooksByAuthor(ctx context.Context, authorID uint64) ([]*Book, error) {
	author, err := s.FindAuthorByID(ctx, authorID)
	if err != nil {
		return nil, err
	}
	return author.Books, nil
}

// MakeOrder validates and places an order for the given customer.
func (s *Service) MakeOrder(ctx context.Context, customerName string, lines []OrderLine) (*Order, error) {
	return s.orders.CreateOrder(ctx, customerName, lines)
}

// FindOrderByID returns an order, failing with NotFoundError when the id
// does not resolve.
func (s *Service) FindOrderByID(ctx context.Context, id uint64) (*Order, error) {
	order, ok, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &NotFoundError{Entity: KindOrder}
	}
	return order, nil
}

// DeleteOrder removes an order, failing with NotFoundError when it does
// not exist.
func (s *Service) DeleteOrder(ctx context.Context, id uint64) error {
	return s.orders.Delete(ctx, id)
}

// UpdateOrderStatus transitions a pending order to a terminal status.
func (s *Service) UpdateOrderStatus(ctx context.Context, id uint64, status OrderStatus) (*Order, error) {
	return s.orders.UpdateStatus(ctx, id, status)
}
