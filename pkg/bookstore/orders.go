package bookstore

import (
	"context"
	"time"
)

// OrderService validates proposed orders against the live book catalog
// and manages the order lifecycle.
type OrderService struct {
	store Store[*Order]
	books *BookService
	now   func() time.Time
}

// NewOrderService returns a service backed by the given order store,
// validating against the given book catalog.
func NewOrderService(store Store[*Order], books *BookService) *OrderService {
	return &OrderService{store: store, books: books, now: time.Now}
}

// CreateOrder validates every proposed line and, when all pass, persists
// a PENDING order dated now. A line whose book id does not resolve, or
// whose title differs from the catalog's title for that id, fails with
// NotFoundError; a line requesting more units than are in stock fails
// with ErrInsufficientUnits. Any failure aborts the whole order.
//
// Stock is checked but not decremented; see the package design notes.
func (s *OrderService) CreateOrder(ctx context.Context, customerName string, lines []OrderLine) (*Order, error) {
	items := make(map[uint64]OrderItem, len(lines))
	for _, line := range lines {
		book, ok, err := s.books.FindByID(ctx, line.BookID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, &NotFoundError{Entity: KindBook}
		}
		// A stale or mismatched title for a resolving id is treated the
		// same as an unknown book.
		if book.Title != line.Title {
			return nil, &NotFoundError{Entity: KindBook}
		}
		if book.StockUnits < line.Quantity {
			return nil, ErrInsufficientUnits
		}
		items[book.ID] = OrderItem{Book: book, Quantity: line.Quantity}
	}

	order := &Order{
		CustomerName: customerName,
		Items:        items,
		OrderDate:    s.now(),
		Status:       StatusPending,
	}

	// Timestamp-exact duplicate guard: an order by the same customer at
	// the exact same instant is rejected.
	existing, err := s.store.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, other := range existing {
		if other.CustomerName == order.CustomerName && other.OrderDate.Equal(order.OrderDate) {
			return nil, &AlreadyExistsError{Entity: KindOrder}
		}
	}

	return s.store.Save(ctx, order)
}

// FindByID reports the order and whether one exists.
func (s *OrderService) FindByID(ctx context.Context, id uint64) (*Order, bool, error) {
	return s.store.FindByID(ctx, id)
}

// Delete removes an order. Unlike the store's silent delete, it fails
// with NotFoundError when the order does not exist.
func (s *OrderService) Delete(ctx context.Context, id uint64) error {
	exists, err := s.store.ExistsByID(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return &NotFoundError{Entity: KindOrder}
	}
	return s.store.DeleteByID(ctx, id)
}

// UpdateStatus transitions an order from PENDING to the given terminal
// status. It fails with NotFoundError when the order does not exist and
// with ErrStatusTerminal when the order already left PENDING.
func (s *OrderService) UpdateStatus(ctx context.Context, id uint64, status OrderStatus) (*Order, error) {
	order, ok, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &NotFoundError{Entity: KindOrder}
	}
	if order.Status != StatusPending {
		return nil, ErrStatusTerminal
	}
	// Mutate a copy and swap it in, so the stored object is never
	// written in place while readers may hold it.
	updated := *order
	updated.Status = status
	if _, err := s.store.Update(ctx, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}
