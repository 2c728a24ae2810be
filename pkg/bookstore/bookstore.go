// Package bookstore holds the domain model and services of the bookstore
// backend: authors, books and customer orders, plus the storage port the
// services persist through.
package bookstore

import (
	"context"
	"time"
)

// Genre classifies a book.
type Genre string

// The closed set of book genres.
const (
	GenreHorror  Genre = "HORROR"
	GenreRomance Genre = "ROMANCE"
	GenreDrama   Genre = "DRAMA"
	GenreComedy  Genre = "COMEDY"
	GenreSciFi   Genre = "SCIFI"
)

// ParseGenre converts a wire value into a Genre.
func ParseGenre(s string) (Genre, bool) {
	switch g := Genre(s); g {
	case GenreHorror, GenreRomance, GenreDrama, GenreComedy, GenreSciFi:
		return g, true
	}
	return "", false
}

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

// Order lifecycle states. PENDING is the sole creation state; COMPLETED
// and CANCELLED are terminal.
const (
	StatusPending   OrderStatus = "PENDING"
	StatusCompleted OrderStatus = "COMPLETED"
	StatusCancelled OrderStatus = "CANCELLED"
)

// ParseOrderStatus converts a wire value into an OrderStatus.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch st := OrderStatus(s); st {
	case StatusPending, StatusCompleted, StatusCancelled:
		return st, true
	}
	return "", false
}

// Author is a book author. Books holds the author's works as an in-memory
// association; the books themselves are owned by the book store.
type Author struct {
	ID    uint64  `json:"id"`
	Name  string  `json:"name"`
	Books []*Book `json:"-"`
}

// EntityID implements Entity.
func (a *Author) EntityID() uint64 { return a.ID }

// SetEntityID implements Entity.
func (a *Author) SetEntityID(id uint64) { a.ID = id }

// Book is a single title in the catalog with its remaining stock.
type Book struct {
	ID         uint64  `json:"id"`
	Title      string  `json:"title"`
	Author     *Author `json:"author,omitempty"`
	Genre      Genre   `json:"genre"`
	StockUnits int     `json:"stockUnits"`
}

// EntityID implements Entity.
func (b *Book) EntityID() uint64 { return b.ID }

// SetEntityID implements Entity.
func (b *Book) SetEntityID(id uint64) { b.ID = id }

// OrderItem is one validated line of a placed order. Book points at the
// catalog's record, not the caller's copy.
type OrderItem struct {
	Book     *Book `json:"book"`
	Quantity int   `json:"quantity"`
}

// Order is an immutable customer order. Only Status changes after
// creation, through OrderService.UpdateStatus.
type Order struct {
	ID           uint64               `json:"id"`
	CustomerName string               `json:"customerName"`
	Items        map[uint64]OrderItem `json:"items"`
	OrderDate    time.Time            `json:"orderDate"`
	Status       OrderStatus          `json:"status"`
}

// EntityID implements Entity.
func (o *Order) EntityID() uint64 { return o.ID }

// SetEntityID implements Entity.
func (o *Order) SetEntityID(id uint64) { o.ID = id }

// OrderLine is a proposed (book, quantity) pair as carried by the caller.
// Title is checked against the catalog during validation.
type OrderLine struct {
	BookID   uint64 `json:"bookId"`
	Title    string `json:"title"`
	Quantity int    `json:"quantity"`
}

// Entity is any record the Store can hold. A zero id means the identity
// has not been assigned yet.
type Entity interface {
	EntityID() uint64
	SetEntityID(id uint64)
}

// Store is the storage port the services persist through. One Store
// instance exists per entity kind and is the unit of mutual exclusion:
// implementations must serialize mutations and never expose a partially
// applied write to readers.
type Store[E Entity] interface {
	// Save inserts the entity, assigning the next identity when the
	// entity carries none. Saving an entity whose id is already present
	// fails with AlreadyExistsError.
	Save(ctx context.Context, e E) (E, error)

	// FindByID reports the entity and whether it exists. Absence is not
	// an error at this layer.
	FindByID(ctx context.Context, id uint64) (E, bool, error)

	// ExistsByID is a membership test.
	ExistsByID(ctx context.Context, id uint64) (bool, error)

	// FindAll returns every stored entity in no particular order.
	FindAll(ctx context.Context) ([]E, error)

	// DeleteByID removes the entity if present. Deleting an absent id is
	// a no-op, not an error.
	DeleteByID(ctx context.Context, id uint64) error

	// DeleteAll clears the store without resetting identity assignment.
	DeleteAll(ctx context.Context) error

	// Update replaces the stored value at the entity's id and reports
	// whether anything was replaced. Updating an absent id is a no-op.
	Update(ctx context.Context, e E) (bool, error)
}
