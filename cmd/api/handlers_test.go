package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookstore/pkg/config"
)

func setupAPI(t *testing.T) *mux.Router {
	t.Helper()
	cfg = config.Config{}
	redisClient = nil
	tracer = nil
	var err error
	store, err = buildService(context.Background())
	require.NoError(t, err)
	return newRouter()
}

func doJSON(t *testing.T, r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthorEndpoints(t *testing.T) {
	r := setupAPI(t)

	w := doJSON(t, r, http.MethodPost, "/api/bookstore/authors", AuthorDTO{Name: "Jane Austen"})
	require.Equal(t, http.StatusCreated, w.Code)
	var author AuthorDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&author))
	assert.NotZero(t, author.ID)

	// Duplicate names collide.
	w = doJSON(t, r, http.MethodPost, "/api/bookstore/authors", AuthorDTO{Name: "Jane Austen"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/bookstore/authors/%d", author.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/bookstore/authors/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/bookstore/authors", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var authors []AuthorDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&authors))
	assert.Len(t, authors, 1)
}

func TestBookEndpoints(t *testing.T) {
	r := setupAPI(t)

	w := doJSON(t, r, http.MethodPost, "/api/bookstore/authors", AuthorDTO{Name: "Jane Austen"})
	require.Equal(t, http.StatusCreated, w.Code)
	var author AuthorDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&author))

	w = doJSON(t, r, http.MethodPost, "/api/bookstore/books", BookDTO{
		Title: "Emma", AuthorID: author.ID, Genre: "ROMANCE", StockUnits: 5,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var book BookDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&book))
	assert.NotZero(t, book.ID)
	assert.Equal(t, "Jane Austen", book.AuthorName)

	// Unknown genre is a malformed request, not a domain failure.
	w = doJSON(t, r, http.MethodPost, "/api/bookstore/books", BookDTO{
		Title: "Oddity", AuthorID: author.ID, Genre: "WESTERN", StockUnits: 1,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Unknown author is a domain failure.
	w = doJSON(t, r, http.MethodPost, "/api/bookstore/books", BookDTO{
		Title: "Orphan", AuthorID: 999, Genre: "DRAMA", StockUnits: 1,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/bookstore/authors/%d/books", author.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var books []BookDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&books))
	require.Len(t, books, 1)
	assert.Equal(t, "Emma", books[0].Title)
}

func TestOrderEndpoints(t *testing.T) {
	r := setupAPI(t)

	w := doJSON(t, r, http.MethodPost, "/api/bookstore/authors", AuthorDTO{Name: "Jane Austen"})
	require.Equal(t, http.StatusCreated, w.Code)
	var author AuthorDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&author))

	w = doJSON(t, r, http.MethodPost, "/api/bookstore/books", BookDTO{
		Title: "Pride and Prejudice", AuthorID: author.ID, Genre: "ROMANCE", StockUnits: 10,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var book BookDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&book))

	t.Run("insufficient stock", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/api/bookstore/orders", makeOrderRequest{
			CustomerName: "Alice",
			Items:        []OrderItemDTO{{BookID: book.ID, Title: book.Title, Quantity: 11}},
		})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("title mismatch reads as not found", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/api/bookstore/orders", makeOrderRequest{
			CustomerName: "Alice",
			Items:        []OrderItemDTO{{BookID: book.ID, Title: "Wrong Title", Quantity: 1}},
		})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("duplicate book line", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/api/bookstore/orders", makeOrderRequest{
			CustomerName: "Alice",
			Items: []OrderItemDTO{
				{BookID: book.ID, Title: book.Title, Quantity: 1},
				{BookID: book.ID, Title: book.Title, Quantity: 2},
			},
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	var order OrderDTO
	t.Run("place order", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/api/bookstore/orders", makeOrderRequest{
			CustomerName: "Alice",
			Items:        []OrderItemDTO{{BookID: book.ID, Title: book.Title, Quantity: 2}},
		})
		require.Equal(t, http.StatusCreated, w.Code)
		require.NoError(t, json.NewDecoder(w.Body).Decode(&order))
		assert.Equal(t, "PENDING", order.Status)
		assert.Equal(t, "Alice", order.CustomerName)
		require.Len(t, order.Items, 1)
		assert.Equal(t, 2, order.Items[0].Quantity)
	})

	t.Run("status transition", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPut, fmt.Sprintf("/api/bookstore/orders/%d/status", order.ID), updateStatusRequest{Status: "COMPLETED"})
		require.Equal(t, http.StatusOK, w.Code)

		// Terminal orders reject further transitions.
		w = doJSON(t, r, http.MethodPut, fmt.Sprintf("/api/bookstore/orders/%d/status", order.ID), updateStatusRequest{Status: "CANCELLED"})
		assert.Equal(t, http.StatusConflict, w.Code)

		// PENDING is not a valid transition target.
		w = doJSON(t, r, http.MethodPut, fmt.Sprintf("/api/bookstore/orders/%d/status", order.ID), updateStatusRequest{Status: "PENDING"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("delete", func(t *testing.T) {
		w := doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/bookstore/orders/%d", order.ID), nil)
		assert.Equal(t, http.StatusNoContent, w.Code)

		w = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/bookstore/orders/%d", order.ID), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("lookup absent", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/api/bookstore/orders/999", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestListBooks(t *testing.T) {
	r := setupAPI(t)

	w := doJSON(t, r, http.MethodGet, "/api/bookstore/books", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var books []BookDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&books))
	assert.Empty(t, books)
}
