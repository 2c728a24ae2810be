package postgres

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"bookstore/pkg/bookstore"
)

// AuthorStore persists authors in PostgreSQL. The author→books
// association is derived from the books table rather than stored twice.
type AuthorStore struct {
	db *sql.DB
}

// NewAuthorStore creates a PostgreSQL-backed author store.
func NewAuthorStore(db *sql.DB) *AuthorStore {
	return &AuthorStore{db: db}
}

// Save inserts the author, assigning an id from the sequence when none is
// set.
func (s *AuthorStore) Save(ctx context.Context, a *bookstore.Author) (*bookstore.Author, error) {
	if a.ID != 0 {
		ok, err := exists(ctx, s.db, "authors", a.ID)
		if err != nil {
			return nil, err
		}
		if ok {
			return nil, &bookstore.AlreadyExistsError{Entity: bookstore.KindAuthor}
		}
		if _, err := s.db.ExecContext(ctx, "INSERT INTO authors (id, name) VALUES ($1,$2)", a.ID, a.Name); err != nil {
			return nil, errors.Wrap(err, "insert author")
		}
		return a, nil
	}
	if err := s.db.QueryRowContext(ctx, "INSERT INTO authors (name) VALUES ($1) RETURNING id", a.Name).Scan(&a.ID); err != nil {
		return nil, errors.Wrap(err, "insert author")
	}
	return a, nil
}

// FindByID retrieves an author and their books.
func (s *AuthorStore) FindByID(ctx context.Context, id uint64) (*bookstore.Author, bool, error) {
	a := &bookstore.Author{}
	err := s.db.QueryRowContext(ctx, "SELECT id, name FROM authors WHERE id=$1", id).Scan(&a.ID, &a.Name)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "select author")
	}
	if err := s.loadBooks(ctx, a); err != nil {
		return nil, false, err
	}
	return a, true, nil
}

// ExistsByID is a membership test.
func (s *AuthorStore) ExistsByID(ctx context.Context, id uint64) (bool, error) {
	return exists(ctx, s.db, "authors", id)
}

// FindAll retrieves every author with their books.
func (s *AuthorStore) FindAll(ctx context.Context) ([]*bookstore.Author, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name FROM authors")
	if err != nil {
		return nil, errors.Wrap(err, "select authors")
	}
	defer rows.Close()
	var authors []*bookstore.Author
	for rows.Next() {
		a := &bookstore.Author{}
		if err := rows.Scan(&a.ID, &a.Name); err != nil {
			return nil, errors.Wrap(err, "scan author")
		}
		authors = append(authors, a)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "select authors")
	}
	for _, a := range authors {
		if err := s.loadBooks(ctx, a); err != nil {
			return nil, err
		}
	}
	return authors, nil
}

// DeleteByID removes an author; absent ids are a no-op.
func (s *AuthorStore) DeleteByID(ctx context.Context, id uint64) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM authors WHERE id=$1", id)
	return errors.Wrap(err, "delete author")
}

// DeleteAll clears the authors table.
func (s *AuthorStore) DeleteAll(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM authors")
	return errors.Wrap(err, "delete authors")
}

// Update replaces the stored author, reporting whether a row was
// replaced.
func (s *AuthorStore) Update(ctx context.Context, a *bookstore.Author) (bool, error) {
	res, err := s.db.ExecContext(ctx, "UPDATE authors SET name=$2 WHERE id=$1", a.ID, a.Name)
	if err != nil {
		return false, errors.Wrap(err, "update author")
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (s *AuthorStore) loadBooks(ctx context.Context, a *bookstore.Author) error {
	rows, err := s.db.QueryContext(ctx, "SELECT id, title, genre, stock_units FROM books WHERE author_id=$1", a.ID)
	if err != nil {
		return errors.Wrap(err, "select author books")
	}
	defer rows.Close()
	a.Books = nil
	for rows.Next() {
		b := &bookstore.Book{Author: a}
		if err := rows.Scan(&b.ID, &b.Title, &b.Genre, &b.StockUnits); err != nil {
			return errors.Wrap(err, "scan author book")
		}
		a.Books = append(a.Books, b)
	}
	return errors.Wrap(rows.Err(), "select author books")
}
