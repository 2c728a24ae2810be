// Package postgres implements PostgreSQL-backed entity stores.
//
// Identity assignment comes from the tables' BIGSERIAL sequences, which
// keeps ids unique and increasing per store like the in-memory engine.
package postgres

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
)

const schema = `
CREATE TABLE IF NOT EXISTS authors (
	id BIGSERIAL PRIMARY KEY,
	name TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS books (
	id BIGSERIAL PRIMARY KEY,
	title TEXT NOT NULL,
	author_id BIGINT NOT NULL REFERENCES authors (id),
	genre TEXT NOT NULL,
	stock_units INT NOT NULL
);
CREATE TABLE IF NOT EXISTS orders (
	id BIGSERIAL PRIMARY KEY,
	customer_name TEXT NOT NULL,
	items JSONB NOT NULL,
	order_date TIMESTAMPTZ NOT NULL,
	status TEXT NOT NULL
);`

// EnsureSchema creates the bookstore tables if they do not exist yet.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return errors.Wrap(err, "create schema")
}

func exists(ctx context.Context, db *sql.DB, table string, id uint64) (bool, error) {
	var ok bool
	err := db.QueryRowContext(ctx, "SELECT EXISTS (SELECT 1 FROM "+table+" WHERE id=$1)", id).Scan(&ok)
	return ok, errors.Wrapf(err, "exists %s", table)
}
