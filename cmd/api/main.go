package main

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.opentelemetry.io/otel"
	stdouttrace "go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"bookstore/pkg/bookstore"
	"bookstore/pkg/bookstore/memory"
	"bookstore/pkg/bookstore/postgres"
	"bookstore/pkg/config"
	"bookstore/pkg/logger"
)

var (
	store       *bookstore.Service
	redisClient *redis.Client
	cfg         config.Config
	tracer      trace.Tracer
)

// @title Bookstore API
// @version 1.0
// @description API for managing books, authors, and orders in the bookstore.
// @host localhost:8080
// @BasePath /api/bookstore
func main() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		panic(err)
	}
	logger.Init("bookstore")
	defer logger.Log.Sync()
	log := logger.Log

	exp, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		log.Fatal("init tracing", zap.Error(err))
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exp))
	otel.SetTracerProvider(tp)
	defer tp.Shutdown(context.Background())
	tracer = tp.Tracer("bookstore")

	store, err = buildService(context.Background())
	if err != nil {
		log.Fatal("build service", zap.Error(err))
	}

	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	}

	if cfg.SeedDemoData {
		if err := seedDemoData(context.Background()); err != nil {
			log.Fatal("seed demo data", zap.Error(err))
		}
	}

	r := newRouter()

	log.Info("listening", zap.String("addr", cfg.HTTPAddr))
	if err := http.ListenAndServe(cfg.HTTPAddr, r); err != nil {
		log.Error("server closed", zap.Error(err))
	}
}

// newRouter builds the HTTP routing table.
func newRouter() *mux.Router {
	r := mux.NewRouter()
	r.Use(requestIDMiddleware, traceMiddleware)

	api := r.PathPrefix("/api/bookstore").Subrouter()
	api.HandleFunc("/books", listBooksHandler).Methods(http.MethodGet)
	api.HandleFunc("/books", saveBookHandler).Methods(http.MethodPost)
	api.HandleFunc("/authors", listAuthorsHandler).Methods(http.MethodGet)
	api.HandleFunc("/authors", saveAuthorHandler).Methods(http.MethodPost)
	api.HandleFunc("/authors/{id}", findAuthorHandler).Methods(http.MethodGet)
	api.HandleFunc("/authors/{id}/books", booksByAuthorHandler).Methods(http.MethodGet)
	api.HandleFunc("/orders", makeOrderHandler).Methods(http.MethodPost)
	api.HandleFunc("/orders/{id}", findOrderHandler).Methods(http.MethodGet)
	api.HandleFunc("/orders/{id}", deleteOrderHandler).Methods(http.MethodDelete)
	api.HandleFunc("/orders/{id}/status", updateOrderStatusHandler).Methods(http.MethodPut)

	r.PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler)
	return r
}

// buildService wires the catalogs and the order workflow on top of either
// PostgreSQL or in-memory stores, depending on configuration.
func buildService(ctx context.Context) (*bookstore.Service, error) {
	var (
		authorStore bookstore.Store[*bookstore.Author]
		bookStore   bookstore.Store[*bookstore.Book]
		orderStore  bookstore.Store[*bookstore.Order]
	)
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			return nil, err
		}
		authorStore = postgres.NewAuthorStore(db)
		bookStore = postgres.NewBookStore(db)
		orderStore = postgres.NewOrderStore(db)
	} else {
		authorStore = memory.New[*bookstore.Author](bookstore.KindAuthor)
		bookStore = memory.New[*bookstore.Book](bookstore.KindBook)
		orderStore = memory.New[*bookstore.Order](bookstore.KindOrder)
	}
	authors := bookstore.NewAuthorService(authorStore)
	books := bookstore.NewBookService(bookStore)
	orders := bookstore.NewOrderService(orderStore, books)
	return bookstore.New(authors, books, orders), nil
}

// seedDemoData loads a small demo catalog, ignoring entities that are
// already present from a previous run.
func seedDemoData(ctx context.Context) error {
	author, err := store.SaveAuthor(ctx, &bookstore.Author{Name: "Jane Austen"})
	if err != nil {
		if bookstore.IsAlreadyExists(err) {
			return nil
		}
		return err
	}
	seed := []*bookstore.Book{
		{Title: "Pride and Prejudice", Author: author, Genre: bookstore.GenreRomance, StockUnits: 10},
		{Title: "Emma", Author: author, Genre: bookstore.GenreRomance, StockUnits: 5},
	}
	for _, b := range seed {
		if _, err := store.SaveBook(ctx, b); err != nil && !bookstore.IsAlreadyExists(err) {
			return err
		}
	}
	return nil
}
