package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/pkg/errors"

	"bookstore/pkg/bookstore"
)

// OrderStore persists orders in PostgreSQL. Line items are stored as a
// JSONB document of (book id, quantity) pairs and rehydrated against the
// books table on read.
type OrderStore struct {
	db *sql.DB
}

// NewOrderStore creates a PostgreSQL-backed order store.
func NewOrderStore(db *sql.DB) *OrderStore {
	return &OrderStore{db: db}
}

type itemRecord struct {
	BookID   uint64 `json:"bookId"`
	Quantity int    `json:"quantity"`
}

// Save inserts the order, assigning an id from the sequence when none is
// set.
func (s *OrderStore) Save(ctx context.Context, o *bookstore.Order) (*bookstore.Order, error) {
	items, err := marshalItems(o.Items)
	if err != nil {
		return nil, err
	}
	if o.ID != 0 {
		ok, err := exists(ctx, s.db, "orders", o.ID)
		if err != nil {
			return nil, err
		}
		if ok {
			return nil, &bookstore.AlreadyExistsError{Entity: bookstore.KindOrder}
		}
		_, err = s.db.ExecContext(ctx,
			"INSERT INTO orders (id, customer_name, items, order_date, status) VALUES ($1,$2,$3,$4,$5)",
			o.ID, o.CustomerName, items, o.OrderDate, o.Status)
		if err != nil {
			return nil, errors.Wrap(err, "insert order")
		}
		return o, nil
	}
	err = s.db.QueryRowContext(ctx,
		"INSERT INTO orders (customer_name, items, order_date, status) VALUES ($1,$2,$3,$4) RETURNING id",
		o.CustomerName, items, o.OrderDate, o.Status).Scan(&o.ID)
	if err != nil {
		return nil, errors.Wrap(err, "insert order")
	}
	return o, nil
}

// FindByID retrieves an order with its line items rehydrated.
func (s *OrderStore) FindByID(ctx context.Context, id uint64) (*bookstore.Order, bool, error) {
	o := &bookstore.Order{}
	var raw []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT id, customer_name, items, order_date, status FROM orders WHERE id=$1",
		id).Scan(&o.ID, &o.CustomerName, &raw, &o.OrderDate, &o.Status)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "select order")
	}
	if o.Items, err = s.unmarshalItems(ctx, raw); err != nil {
		return nil, false, err
	}
	return o, true, nil
}

// ExistsByID is a membership test.
func (s *OrderStore) ExistsByID(ctx context.Context, id uint64) (bool, error) {
	return exists(ctx, s.db, "orders", id)
}

// FindAll retrieves every order.
func (s *OrderStore) FindAll(ctx context.Context) ([]*bookstore.Order, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, customer_name, items, order_date, status FROM orders")
	if err != nil {
		return nil, errors.Wrap(err, "select orders")
	}
	defer rows.Close()
	var out []*bookstore.Order
	var raws [][]byte
	for rows.Next() {
		o := &bookstore.Order{}
		var raw []byte
		if err := rows.Scan(&o.ID, &o.CustomerName, &raw, &o.OrderDate, &o.Status); err != nil {
			return nil, errors.Wrap(err, "scan order")
		}
		out = append(out, o)
		raws = append(raws, raw)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "select orders")
	}
	for i, o := range out {
		if o.Items, err = s.unmarshalItems(ctx, raws[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// DeleteByID removes an order; absent ids are a no-op.
func (s *OrderStore) DeleteByID(ctx context.Context, id uint64) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM orders WHERE id=$1", id)
	return errors.Wrap(err, "delete order")
}

// DeleteAll clears the orders table.
func (s *OrderStore) DeleteAll(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM orders")
	return errors.Wrap(err, "delete orders")
}

// Update replaces the stored order, reporting whether a row was replaced.
func (s *OrderStore) Update(ctx context.Context, o *bookstore.Order) (bool, error) {
	items, err := marshalItems(o.Items)
	if err != nil {
		return false, err
	}
	res, err := s.db.ExecContext(ctx,
		"UPDATE orders SET customer_name=$2, items=$3, order_date=$4, status=$5 WHERE id=$1",
		o.ID, o.CustomerName, items, o.OrderDate, o.Status)
	if err != nil {
		return false, errors.Wrap(err, "update order")
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func marshalItems(items map[uint64]bookstore.OrderItem) ([]byte, error) {
	records := make([]itemRecord, 0, len(items))
	for id, item := range items {
		records = append(records, itemRecord{BookID: id, Quantity: item.Quantity})
	}
	raw, err := json.Marshal(records)
	return raw, errors.Wrap(err, "marshal order items")
}

func (s *OrderStore) unmarshalItems(ctx context.Context, raw []byte) (map[uint64]bookstore.OrderItem, error) {
	var records []itemRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, errors.Wrap(err, "unmarshal order items")
	}
	books := NewBookStore(s.db)
	items := make(map[uint64]bookstore.OrderItem, len(records))
	for _, rec := range records {
		book, ok, err := books.FindByID(ctx, rec.BookID)
		if err != nil {
			return nil, err
		}
		if !ok {
			// The book was removed after the order was placed; keep the
			// line with the id only.
			book = &bookstore.Book{ID: rec.BookID}
		}
		items[rec.BookID] = bookstore.OrderItem{Book: book, Quantity: rec.Quantity}
	}
	return items, nil
}
