package postgres

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"bookstore/pkg/bookstore"
)

// BookStore persists books in PostgreSQL.
type BookStore struct {
	db *sql.DB
}

// NewBookStore creates a PostgreSQL-backed book store.
func NewBookStore(db *sql.DB) *BookStore {
	return &BookStore{db: db}
}

// Save inserts the book, assigning an id from the sequence when none is
// set. The book must reference an author with an id.
func (s *BookStore) Save(ctx context.Context, b *bookstore.Book) (*bookstore.Book, error) {
	if b.ID != 0 {
		ok, err := exists(ctx, s.db, "books", b.ID)
		if err != nil {
			return nil, err
		}
		if ok {
			return nil, &bookstore.AlreadyExistsError{Entity: bookstore.KindBook}
		}
		_, err = s.db.ExecContext(ctx,
			"INSERT INTO books (id, title, author_id, genre, stock_units) VALUES ($1,$2,$3,$4,$5)",
			b.ID, b.Title, b.Author.ID, b.Genre, b.StockUnits)
		if err != nil {
			return nil, errors.Wrap(err, "insert book")
		}
		return b, nil
	}
	err := s.db.QueryRowContext(ctx,
		"INSERT INTO books (title, author_id, genre, stock_units) VALUES ($1,$2,$3,$4) RETURNING id",
		b.Title, b.Author.ID, b.Genre, b.StockUnits).Scan(&b.ID)
	if err != nil {
		return nil, errors.Wrap(err, "insert book")
	}
	return b, nil
}

// FindByID retrieves a book with its author resolved.
func (s *BookStore) FindByID(ctx context.Context, id uint64) (*bookstore.Book, bool, error) {
	b := &bookstore.Book{Author: &bookstore.Author{}}
	err := s.db.QueryRowContext(ctx,
		"SELECT b.id, b.title, b.genre, b.stock_units, a.id, a.name FROM books b JOIN authors a ON a.id=b.author_id WHERE b.id=$1",
		id).Scan(&b.ID, &b.Title, &b.Genre, &b.StockUnits, &b.Author.ID, &b.Author.Name)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "select book")
	}
	return b, true, nil
}

// ExistsByID is a membership test.
func (s *BookStore) ExistsByID(ctx context.Context, id uint64) (bool, error) {
	return exists(ctx, s.db, "books", id)
}

// FindAll retrieves every book with its author resolved.
func (s *BookStore) FindAll(ctx context.Context) ([]*bookstore.Book, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT b.id, b.title, b.genre, b.stock_units, a.id, a.name FROM books b JOIN authors a ON a.id=b.author_id")
	if err != nil {
		return nil, errors.Wrap(err, "select books")
	}
	defer rows.Close()
	var books []*bookstore.Book
	for rows.Next() {
		b := &bookstore.Book{Author: &bookstore.Author{}}
		if err := rows.Scan(&b.ID, &b.Title, &b.Genre, &b.StockUnits, &b.Author.ID, &b.Author.Name); err != nil {
			return nil, errors.Wrap(err, "scan book")
		}
		books = append(books, b)
	}
	return books, errors.Wrap(rows.Err(), "select books")
}

// DeleteByID removes a book; absent ids are a no-op.
func (s *BookStore) DeleteByID(ctx context.Context, id uint64) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM books WHERE id=$1", id)
	return errors.Wrap(err, "delete book")
}

// DeleteAll clears the books table.
func (s *BookStore) DeleteAll(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM books")
	return errors.Wrap(err, "delete books")
}

// Update replaces the stored book, reporting whether a row was replaced.
func (s *BookStore) Update(ctx context.Context, b *bookstore.Book) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE books SET title=$2, author_id=$3, genre=$4, stock_units=$5 WHERE id=$1",
		b.ID, b.Title, b.Author.ID, b.Genre, b.StockUnits)
	if err != nil {
		return false, errors.Wrap(err, "update book")
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
