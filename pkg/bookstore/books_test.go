package bookstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBookService() *BookService {
	return NewBookService(newMockStore[*Book](KindBook))
}

func TestBookServiceSave(t *testing.T) {
	ctx := context.Background()
	books := newBookService()
	author := &Author{ID: 1, Name: "Jane Austen"}

	t.Run("assigns identity", func(t *testing.T) {
		saved, err := books.Save(ctx, &Book{Title: "Emma", Author: author, Genre: GenreRomance, StockUnits: 5})
		require.NoError(t, err)
		assert.NotZero(t, saved.ID)
	})

	t.Run("rejects duplicate title", func(t *testing.T) {
		_, err := books.Save(ctx, &Book{Title: "Emma", Author: author, Genre: GenreDrama, StockUnits: 1})
		assert.True(t, IsAlreadyExists(err), "expected already exists, got %v", err)
	})

	t.Run("rejects taken id", func(t *testing.T) {
		saved, err := books.Save(ctx, &Book{Title: "Persuasion", Author: author, Genre: GenreRomance, StockUnits: 2})
		require.NoError(t, err)
		_, err = books.Save(ctx, &Book{ID: saved.ID, Title: "Northanger Abbey", Author: author, Genre: GenreRomance, StockUnits: 2})
		assert.True(t, IsAlreadyExists(err))
	})
}

func TestBookServiceFindByID(t *testing.T) {
	ctx := context.Background()
	books := newBookService()

	_, ok, err := books.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	saved, err := books.Save(ctx, &Book{Title: "Emma", Author: &Author{ID: 1}, Genre: GenreRomance, StockUnits: 5})
	require.NoError(t, err)

	got, ok, err := books.FindByID(ctx, saved.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Emma", got.Title)
	assert.Equal(t, 5, got.StockUnits)
}
