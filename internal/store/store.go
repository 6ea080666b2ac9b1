// Package store is the durable source of truth for books, users and
// ownership edges. Cache entries are never authoritative; everything a cache
// holds is reconstructable from here.
package store

import (
	"context"

	"github.com/shelfd/shelfd/internal/domain"
)

// DefaultPopularLimit caps the popular-books ranking when the caller does
// not ask for a specific length.
const DefaultPopularLimit = 10

// Store offers durable CRUD and relation operations. Implementations map
// missing records and edges to domain.NotFoundError; every other failure is
// infrastructural and surfaces as a 500 at the API boundary.
type Store interface {
	CreateBook(ctx context.Context, book *domain.Book) error
	GetBook(ctx context.Context, id string) (*domain.Book, error)
	UpdateBook(ctx context.Context, id string, patch domain.BookPatch) (*domain.Book, error)
	// DeleteBook removes the record and cascades every ownership edge that
	// references it.
	DeleteBook(ctx context.Context, id string) error
	ListBooks(ctx context.Context, filter domain.BookFilter) ([]*domain.Book, error)
	// PopularBooks ranks books by owner count, descending, ties broken by
	// title. A non-positive limit falls back to DefaultPopularLimit.
	PopularBooks(ctx context.Context, limit int) ([]*domain.Book, error)

	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	UpdateUser(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error)
	// DeleteUser removes the record and cascades the user's ownership edges.
	DeleteUser(ctx context.Context, id string) error
	ListUsers(ctx context.Context) ([]*domain.User, error)

	// AssignBook creates the edge; it is idempotent for an existing edge and
	// fails with NotFound when either endpoint is unknown.
	AssignBook(ctx context.Context, userID, bookID string) error
	// RemoveBook deletes the edge and fails with NotFound when the edge does
	// not exist, including when it was already removed.
	RemoveBook(ctx context.Context, userID, bookID string) error
	UserBooks(ctx context.Context, userID string) ([]*domain.Book, error)
	// BookOwners returns the ids of every user holding an edge to the book.
	// An unknown book yields an empty slice, not an error.
	BookOwners(ctx context.Context, bookID string) ([]string, error)

	Ping(ctx context.Context) error
	Close() error
}
