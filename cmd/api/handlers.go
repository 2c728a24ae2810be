package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"bookstore/pkg/bookstore"
	"bookstore/pkg/logger"
)

// AuthorDTO is the wire representation of an author.
type AuthorDTO struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

// BookDTO is the wire representation of a book, with the author resolved
// to its identity and name.
type BookDTO struct {
	ID         uint64 `json:"id"`
	Title      string `json:"title"`
	AuthorID   uint64 `json:"authorId"`
	AuthorName string `json:"authorName,omitempty"`
	Genre      string `json:"genre"`
	StockUnits int    `json:"stockUnits"`
}

// OrderItemDTO is one line of a placed order.
type OrderItemDTO struct {
	BookID   uint64 `json:"bookId"`
	Title    string `json:"title"`
	Quantity int    `json:"quantity"`
}

// OrderDTO is the wire representation of an order.
type OrderDTO struct {
	ID           uint64         `json:"id"`
	CustomerName string         `json:"customerName"`
	Items        []OrderItemDTO `json:"items"`
	OrderDate    time.Time      `json:"orderDate"`
	Status       string         `json:"status"`
}

func newAuthorDTO(a *bookstore.Author) AuthorDTO {
	return AuthorDTO{ID: a.ID, Name: a.Name}
}

func newBookDTO(b *bookstore.Book) BookDTO {
	dto := BookDTO{ID: b.ID, Title: b.Title, Genre: string(b.Genre), StockUnits: b.StockUnits}
	if b.Author != nil {
		dto.AuthorID = b.Author.ID
		dto.AuthorName = b.Author.Name
	}
	return dto
}

func newOrderDTO(o *bookstore.Order) OrderDTO {
	dto := OrderDTO{
		ID:           o.ID,
		CustomerName: o.CustomerName,
		Items:        make([]OrderItemDTO, 0, len(o.Items)),
		OrderDate:    o.OrderDate,
		Status:       string(o.Status),
	}
	for id, item := range o.Items {
		dto.Items = append(dto.Items, OrderItemDTO{BookID: id, Title: item.Book.Title, Quantity: item.Quantity})
	}
	return dto
}

// writeError maps domain failures onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case bookstore.IsNotFound(err):
		http.Error(w, err.Error(), http.StatusNotFound)
	case bookstore.IsAlreadyExists(err):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, bookstore.ErrInsufficientUnits):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, bookstore.ErrStatusTerminal):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		logger.Log.Error("internal error", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func pathID(r *http.Request) (uint64, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	return id, err == nil
}

const (
	booksCacheKey   = "cache:books"
	authorsCacheKey = "cache:authors"
)

func cacheGet(ctx context.Context, key string) ([]byte, bool) {
	if redisClient == nil {
		return nil, false
	}
	raw, err := redisClient.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return raw, true
}

func cacheSet(ctx context.Context, key string, raw []byte) {
	if redisClient == nil {
		return
	}
	if err := redisClient.Set(ctx, key, raw, cfg.CacheTTL).Err(); err != nil {
		logger.Log.Warn("cache set", zap.String("key", key), zap.Error(err))
	}
}

func cacheInvalidate(ctx context.Context, keys ...string) {
	if redisClient == nil {
		return
	}
	if err := redisClient.Del(ctx, keys...).Err(); err != nil {
		logger.Log.Warn("cache invalidate", zap.Error(err))
	}
}

// listBooksHandler lists all books.
// @Summary Get all books
// @Produce json
// @Success 200 {array} BookDTO
// @Router /books [get]
func listBooksHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if raw, ok := cacheGet(ctx, booksCacheKey); ok {
		w.Header().Set("Content-Type", "application/json")
		w.Write(raw)
		return
	}
	books, err := store.GetAllBooks(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	dtos := make([]BookDTO, 0, len(books))
	for _, b := range books {
		dtos = append(dtos, newBookDTO(b))
	}
	raw, err := json.Marshal(dtos)
	if err != nil {
		writeError(w, err)
		return
	}
	cacheSet(ctx, booksCacheKey, raw)
	w.Header().Set("Content-Type", "application/json")
	w.Write(raw)
}

// saveBookHandler adds a new book.
// @Summary Save a new book
// @Accept json
// @Produce json
// @Param book body BookDTO true "Book"
// @Success 201 {object} BookDTO
// @Router /books [post]
func saveBookHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req BookDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Title == "" {
		http.Error(w, "invalid book", http.StatusBadRequest)
		return
	}
	genre, ok := bookstore.ParseGenre(req.Genre)
	if !ok {
		http.Error(w, "invalid genre", http.StatusBadRequest)
		return
	}
	if req.StockUnits < 0 {
		http.Error(w, "invalid stock units", http.StatusBadRequest)
		return
	}
	book := &bookstore.Book{
		ID:         req.ID,
		Title:      req.Title,
		Author:     &bookstore.Author{ID: req.AuthorID},
		Genre:      genre,
		StockUnits: req.StockUnits,
	}
	saved, err := store.SaveBook(ctx, book)
	if err != nil {
		writeError(w, err)
		return
	}
	cacheInvalidate(ctx, booksCacheKey, authorsCacheKey)
	writeJSON(w, http.StatusCreated, newBookDTO(saved))
}

// listAuthorsHandler lists all authors.
// @Summary Get all authors
// @Produce json
// @Success 200 {array} AuthorDTO
// @Router /authors [get]
func listAuthorsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if raw, ok := cacheGet(ctx, authorsCacheKey); ok {
		w.Header().Set("Content-Type", "application/json")
		w.Write(raw)
		return
	}
	authors, err := store.GetAllAuthors(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	dtos := make([]AuthorDTO, 0, len(authors))
	for _, a := range authors {
		dtos = append(dtos, newAuthorDTO(a))
	}
	raw, err := json.Marshal(dtos)
	if err != nil {
		writeError(w, err)
		return
	}
	cacheSet(ctx, authorsCacheKey, raw)
	w.Header().Set("Content-Type", "application/json")
	w.Write(raw)
}

// saveAuthorHandler adds a new author.
// @Summary Save a new author
// @Accept json
// @Produce json
// @Param author body AuthorDTO true "Author"
// @Success 201 {object} AuthorDTO
// @Router /authors [post]
func saveAuthorHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req AuthorDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		http.Error(w, "invalid author", http.StatusBadRequest)
		return
	}
	saved, err := store.SaveAuthor(ctx, &bookstore.Author{ID: req.ID, Name: req.Name})
	if err != nil {
		writeError(w, err)
		return
	}
	cacheInvalidate(ctx, authorsCacheKey)
	writeJSON(w, http.StatusCreated, newAuthorDTO(saved))
}

// findAuthorHandler retrieves an author by ID.
// @Summary Get author by ID
// @Produce json
// @Param id path int true "Author ID"
// @Success 200 {object} AuthorDTO
// @Router /authors/{id} [get]
func findAuthorHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	author, err := store.FindAuthorByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newAuthorDTO(author))
}

// booksByAuthorHandler retrieves all books written by an author.
// @Summary Get books by author
// @Produce json
// @Param id path int true "Author ID"
// @Success 200 {array} BookDTO
// @Router /authors/{id}/books [get]
func booksByAuthorHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	books, err := store.BooksByAuthor(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	dtos := make([]BookDTO, 0, len(books))
	for _, b := range books {
		dtos = append(dtos, newBookDTO(b))
	}
	writeJSON(w, http.StatusOK, dtos)
}

type makeOrderRequest struct {
	CustomerName string         `json:"customerName"`
	Items        []OrderItemDTO `json:"items"`
}

// makeOrderHandler places a new order.
// @Summary Create an order
// @Accept json
// @Produce json
// @Param order body makeOrderRequest true "Order"
// @Success 201 {object} OrderDTO
// @Router /orders [post]
func makeOrderHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req makeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.CustomerName == "" || len(req.Items) == 0 {
		http.Error(w, "invalid order", http.StatusBadRequest)
		return
	}
	lines := make([]bookstore.OrderLine, 0, len(req.Items))
	seen := make(map[uint64]bool, len(req.Items))
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			http.Error(w, "invalid quantity", http.StatusBadRequest)
			return
		}
		// Line items map book to quantity; a book may appear only once.
		if seen[item.BookID] {
			http.Error(w, "duplicate book in order", http.StatusBadRequest)
			return
		}
		seen[item.BookID] = true
		lines = append(lines, bookstore.OrderLine{BookID: item.BookID, Title: item.Title, Quantity: item.Quantity})
	}
	order, err := store.MakeOrder(ctx, req.CustomerName, lines)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newOrderDTO(order))
}

// findOrderHandler retrieves an order by ID.
// @Summary Get order
// @Produce json
// @Param id path int true "Order ID"
// @Success 200 {object} OrderDTO
// @Router /orders/{id} [get]
func findOrderHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	order, err := store.FindOrderByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newOrderDTO(order))
}

// deleteOrderHandler removes an order.
// @Summary Delete order
// @Param id path int true "Order ID"
// @Success 204
// @Router /orders/{id} [delete]
func deleteOrderHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	if err := store.DeleteOrder(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// updateOrderStatusHandler transitions an order to a terminal status.
// @Summary Update order status
// @Accept json
// @Produce json
// @Param id path int true "Order ID"
// @Param status body updateStatusRequest true "New status"
// @Success 200 {object} OrderDTO
// @Router /orders/{id}/status [put]
func updateOrderStatusHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid status", http.StatusBadRequest)
		return
	}
	status, ok := bookstore.ParseOrderStatus(req.Status)
	if !ok || status == bookstore.StatusPending {
		http.Error(w, "invalid status", http.StatusBadRequest)
		return
	}
	order, err := store.UpdateOrderStatus(r.Context(), id, status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newOrderDTO(order))
}

// requestIDMiddleware tags every request with an id for log correlation.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", reqID)
		logger.Log.Info("request",
			zap.String("id", reqID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path))
		next.ServeHTTP(w, r)
	})
}

func traceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if tracer == nil {
			next.ServeHTTP(w, r)
			return
		}
		ctx, span := tracer.Start(r.Context(), r.Method+" "+r.URL.Path)
		defer span.End()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
