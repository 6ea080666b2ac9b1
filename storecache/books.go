package storecache

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/shelfd/shelfd/cache"
	"github.com/shelfd/shelfd/internal/domain"
	"github.com/shelfd/shelfd/internal/store"
)

// Books is the read-through caching decorator over the book side of the
// store. Reads consult the cache and populate it on miss; writes go to the
// store first and invalidate only after the write is confirmed.
type Books struct {
	store    store.Store
	entities cache.Service[*domain.Book]
	lists    cache.Service[[]*domain.Book]
	gens     *cache.Generations
	inv      *Invalidator
}

func NewBooks(st store.Store, entities cache.Service[*domain.Book], lists cache.Service[[]*domain.Book], gens *cache.Generations, inv *Invalidator) *Books {
	return &Books{store: st, entities: entities, lists: lists, gens: gens, inv: inv}
}

// Create validates the book and persists it under a freshly generated ID.
// Any caller-supplied ID is discarded; identities are server-owned. New
// records are not pre-warmed into the cache; the first read populates them.
func (b *Books) Create(ctx context.Context, book *domain.Book) (*domain.Book, error) {
	book.ID = uuid.NewString()
	if err := book.Validate(); err != nil {
		return nil, err
	}
	if err := b.store.CreateBook(ctx, book); err != nil {
		return nil, fmt.Errorf("create book: %w", err)
	}
	b.inv.BookCreated(ctx)
	return book, nil
}

func (b *Books) Get(ctx context.Context, id string) (*domain.Book, error) {
	return b.entities.GetOrFetch(ctx, cache.EntityKey(cache.KindBook, id), func(ctx context.Context) (*domain.Book, error) {
		return b.store.GetBook(ctx, id)
	})
}

// List serves the filtered collection under the current booksList generation.
// Equivalent filters map to one key regardless of query parameter order.
func (b *Books) List(ctx context.Context, filter domain.BookFilter) ([]*domain.Book, error) {
	key := cache.ListKey(cache.FamilyBookList, b.gens.Current(cache.FamilyBookList), filter.Canonical())
	return b.lists.GetOrFetch(ctx, key, func(ctx context.Context) ([]*domain.Book, error) {
		return b.store.ListBooks(ctx, filter)
	})
}

// Popular returns the most-assigned books. A negative limit selects the
// default; limit 0 is honored literally and yields an empty list.
func (b *Books) Popular(ctx context.Context, limit int) ([]*domain.Book, error) {
	if limit < 0 {
		limit = store.DefaultPopularLimit
	}
	if limit == 0 {
		return []*domain.Book{}, nil
	}
	key := cache.ListKey(cache.FamilyPopularBooks, b.gens.Current(cache.FamilyPopularBooks), "limit="+strconv.Itoa(limit))
	return b.lists.GetOrFetch(ctx, key, func(ctx context.Context) ([]*domain.Book, error) {
		return b.store.PopularBooks(ctx, limit)
	})
}

func (b *Books) Update(ctx context.Context, id string, patch domain.BookPatch) (*domain.Book, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	book, err := b.store.UpdateBook(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	if err := b.inv.BookUpdated(ctx, id); err != nil {
		return nil, err
	}
	return book, nil
}

// Delete removes the book and every assignment pointing at it. Former owners
// are resolved before the store delete so their relation families can be
// bumped afterwards.
func (b *Books) Delete(ctx context.Context, id string) error {
	owners, err := b.store.BookOwners(ctx, id)
	if err != nil {
		return fmt.Errorf("resolve owners of book %s: %w", id, err)
	}
	if err := b.store.DeleteBook(ctx, id); err != nil {
		return err
	}
	return b.inv.BookDeleted(ctx, id, owners)
}
