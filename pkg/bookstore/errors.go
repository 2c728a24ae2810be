package bookstore

import "errors"

// Entity kind labels carried by the typed errors.
const (
	KindAuthor = "author"
	KindBook   = "book"
	KindOrder  = "order"
)

// ErrInsufficientUnits indicates an order line requested more units than
// the book has in stock.
var ErrInsufficientUnits = errors.New("insufficient stock units")

// ErrStatusTerminal indicates an attempt to change the status of an order
// that is already COMPLETED or CANCELLED.
var ErrStatusTerminal = errors.New("order status is terminal")

// AlreadyExistsError indicates a save collided with an existing entity,
// either by id or by a uniqueness key (author name, book title, or the
// customer+timestamp order guard).
type AlreadyExistsError struct {
	Entity string
}

func (e *AlreadyExistsError) Error() string { return e.Entity + " already exists" }

// NotFoundError indicates a referenced entity does not exist.
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string { return e.Entity + " not found" }

// IsAlreadyExists reports whether err is an AlreadyExistsError.
func IsAlreadyExists(err error) bool {
	var e *AlreadyExistsError
	return errors.As(err, &e)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}
