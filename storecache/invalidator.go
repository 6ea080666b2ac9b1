package storecache

import (
	"context"
	"fmt"

	"github.com/shelfd/shelfd/cache"
	"github.com/shelfd/shelfd/internal/domain"
)

// Invalidator applies the write-path consistency rules. Every mutation calls
// exactly one method here, after the store write has been confirmed. Entity
// entries are removed directly; list families are abandoned by bumping their
// generation, so cost never depends on how many filter combinations were
// served.
type Invalidator struct {
	gens  *cache.Generations
	books cache.Service[*domain.Book]
	users cache.Service[*domain.User]
}

func NewInvalidator(gens *cache.Generations, books cache.Service[*domain.Book], users cache.Service[*domain.User]) *Invalidator {
	return &Invalidator{gens: gens, books: books, users: users}
}

func (inv *Invalidator) BookCreated(context.Context) {
	inv.gens.Bump(cache.FamilyBookList)
	inv.gens.Bump(cache.FamilyPopularBooks)
}

func (inv *Invalidator) BookUpdated(ctx context.Context, id string) error {
	inv.gens.Bump(cache.FamilyBookList)
	inv.gens.Bump(cache.FamilyPopularBooks)
	if err := inv.books.Delete(ctx, cache.EntityKey(cache.KindBook, id)); err != nil {
		return fmt.Errorf("evict book %s: %w", id, err)
	}
	return nil
}

// BookDeleted also bumps the relation family of every former owner, because
// the store cascaded their assignment rows away.
func (inv *Invalidator) BookDeleted(ctx context.Context, id string, owners []string) error {
	inv.gens.Bump(cache.FamilyBookList)
	inv.gens.Bump(cache.FamilyPopularBooks)
	for _, userID := range owners {
		inv.gens.Bump(cache.UserBooksFamily(userID))
	}
	if err := inv.books.Delete(ctx, cache.EntityKey(cache.KindBook, id)); err != nil {
		return fmt.Errorf("evict book %s: %w", id, err)
	}
	return nil
}

func (inv *Invalidator) UserCreated(context.Context) {
	inv.gens.Bump(cache.FamilyUserList)
}

func (inv *Invalidator) UserUpdated(ctx context.Context, id string) error {
	inv.gens.Bump(cache.FamilyUserList)
	if err := inv.users.Delete(ctx, cache.EntityKey(cache.KindUser, id)); err != nil {
		return fmt.Errorf("evict user %s: %w", id, err)
	}
	return nil
}

func (inv *Invalidator) UserDeleted(ctx context.Context, id string) error {
	inv.gens.Bump(cache.FamilyUserList)
	inv.gens.Bump(cache.FamilyPopularBooks)
	inv.gens.Bump(cache.UserBooksFamily(id))
	if err := inv.users.Delete(ctx, cache.EntityKey(cache.KindUser, id)); err != nil {
		return fmt.Errorf("evict user %s: %w", id, err)
	}
	return nil
}

func (inv *Invalidator) BookAssigned(_ context.Context, userID string) {
	inv.gens.Bump(cache.UserBooksFamily(userID))
	inv.gens.Bump(cache.FamilyPopularBooks)
}

func (inv *Invalidator) BookRemoved(_ context.Context, userID string) {
	inv.gens.Bump(cache.UserBooksFamily(userID))
	inv.gens.Bump(cache.FamilyPopularBooks)
}
