package storecache

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/shelfd/shelfd/cache"
	"github.com/shelfd/shelfd/internal/domain"
	"github.com/shelfd/shelfd/internal/store"
)

// Users is the read-through caching decorator over users and ownership. It
// shares the book list service with Books so a user's assigned-books reads
// live in the same value family as other book collections.
type Users struct {
	store     store.Store
	entities  cache.Service[*domain.User]
	lists     cache.Service[[]*domain.User]
	bookLists cache.Service[[]*domain.Book]
	gens      *cache.Generations
	inv       *Invalidator
}

func NewUsers(st store.Store, entities cache.Service[*domain.User], lists cache.Service[[]*domain.User], bookLists cache.Service[[]*domain.Book], gens *cache.Generations, inv *Invalidator) *Users {
	return &Users{store: st, entities: entities, lists: lists, bookLists: bookLists, gens: gens, inv: inv}
}

// Create persists the user under a freshly generated ID, discarding any
// caller-supplied one.
func (u *Users) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	user.ID = uuid.NewString()
	if err := user.Validate(); err != nil {
		return nil, err
	}
	if err := u.store.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	u.inv.UserCreated(ctx)
	return user, nil
}

func (u *Users) Get(ctx context.Context, id string) (*domain.User, error) {
	return u.entities.GetOrFetch(ctx, cache.EntityKey(cache.KindUser, id), func(ctx context.Context) (*domain.User, error) {
		return u.store.GetUser(ctx, id)
	})
}

func (u *Users) List(ctx context.Context) ([]*domain.User, error) {
	key := cache.ListKey(cache.FamilyUserList, u.gens.Current(cache.FamilyUserList), "")
	return u.lists.GetOrFetch(ctx, key, func(ctx context.Context) ([]*domain.User, error) {
		return u.store.ListUsers(ctx)
	})
}

func (u *Users) Update(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	user, err := u.store.UpdateUser(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	if err := u.inv.UserUpdated(ctx, id); err != nil {
		return nil, err
	}
	return user, nil
}

// Delete removes the user and, through the store, every assignment the user
// held.
func (u *Users) Delete(ctx context.Context, id string) error {
	if err := u.store.DeleteUser(ctx, id); err != nil {
		return err
	}
	return u.inv.UserDeleted(ctx, id)
}

// Assign links a book to a user. Assigning an already-assigned pair is a
// no-op that still succeeds.
func (u *Users) Assign(ctx context.Context, userID, bookID string) error {
	if err := u.store.AssignBook(ctx, userID, bookID); err != nil {
		return err
	}
	u.inv.BookAssigned(ctx, userID)
	return nil
}

// Remove unlinks a book from a user. A pair that is not currently assigned
// is reported as not found.
func (u *Users) Remove(ctx context.Context, userID, bookID string) error {
	if err := u.store.RemoveBook(ctx, userID, bookID); err != nil {
		return err
	}
	u.inv.BookRemoved(ctx, userID)
	return nil
}

// Books serves the user's assigned books under the user's own relation
// generation.
func (u *Users) Books(ctx context.Context, userID string) ([]*domain.Book, error) {
	key := cache.RelationKey(userID, u.gens.Current(cache.UserBooksFamily(userID)))
	return u.bookLists.GetOrFetch(ctx, key, func(ctx context.Context) ([]*domain.Book, error) {
		return u.store.UserBooks(ctx, userID)
	})
}
