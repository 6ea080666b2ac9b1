package store

import (
	"context"
	"sort"
	"sync"

	"github.com/shelfd/shelfd/internal/domain"
)

// MemoryStore is an in-process Store. It backs tests and the default dev
// configuration, and keeps the same not-found and cascade semantics as the
// SQL implementation.
type MemoryStore struct {
	mu    sync.RWMutex
	books map[string]*domain.Book
	users map[string]*domain.User

	// edge set plus a reverse index so the delete-book sweep does not scan
	// every user's edges
	byUser map[string]map[string]struct{} // userID -> bookIDs
	byBook map[string]map[string]struct{} // bookID -> userIDs
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		books:  make(map[string]*domain.Book),
		users:  make(map[string]*domain.User),
		byUser: make(map[string]map[string]struct{}),
		byBook: make(map[string]map[string]struct{}),
	}
}

func cloneBook(b *domain.Book) *domain.Book {
	cp := *b
	return &cp
}

func cloneUser(u *domain.User) *domain.User {
	cp := *u
	return &cp
}

func (s *MemoryStore) CreateBook(_ context.Context, book *domain.Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.books[book.ID] = cloneBook(book)
	return nil
}

func (s *MemoryStore) GetBook(_ context.Context, id string) (*domain.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.books[id]
	if !ok {
		return nil, domain.NotFound("book", id)
	}
	return cloneBook(b), nil
}

func (s *MemoryStore) UpdateBook(_ context.Context, id string, patch domain.BookPatch) (*domain.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.books[id]
	if !ok {
		return nil, domain.NotFound("book", id)
	}
	patch.Apply(b)
	return cloneBook(b), nil
}

func (s *MemoryStore) DeleteBook(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.books[id]; !ok {
		return domain.NotFound("book", id)
	}
	delete(s.books, id)
	for userID := range s.byBook[id] {
		delete(s.byUser[userID], id)
	}
	delete(s.byBook, id)
	return nil
}

func (s *MemoryStore) ListBooks(_ context.Context, filter domain.BookFilter) ([]*domain.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	books := make([]*domain.Book, 0, len(s.books))
	for _, b := range s.books {
		if filter.Match(b) {
			books = append(books, cloneBook(b))
		}
	}
	sortBooks(books)
	return books, nil
}

func (s *MemoryStore) PopularBooks(_ context.Context, limit int) ([]*domain.Book, error) {
	if limit <= 0 {
		limit = DefaultPopularLimit
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	books := make([]*domain.Book, 0, len(s.books))
	for _, b := range s.books {
		books = append(books, cloneBook(b))
	}
	owners := func(id string) int { return len(s.byBook[id]) }
	sort.Slice(books, func(i, j int) bool {
		oi, oj := owners(books[i].ID), owners(books[j].ID)
		if oi != oj {
			return oi > oj
		}
		return books[i].Title < books[j].Title
	})
	if len(books) > limit {
		books = books[:limit]
	}
	return books, nil
}

func (s *MemoryStore) CreateUser(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = cloneUser(user)
	return nil
}

func (s *MemoryStore) GetUser(_ context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, domain.NotFound("user", id)
	}
	return cloneUser(u), nil
}

func (s *MemoryStore) UpdateUser(_ context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, domain.NotFound("user", id)
	}
	patch.Apply(u)
	return cloneUser(u), nil
}

func (s *MemoryStore) DeleteUser(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return domain.NotFound("user", id)
	}
	delete(s.users, id)
	for bookID := range s.byUser[id] {
		delete(s.byBook[bookID], id)
	}
	delete(s.byUser, id)
	return nil
}

func (s *MemoryStore) ListUsers(_ context.Context) ([]*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]*domain.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, cloneUser(u))
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].Name != users[j].Name {
			return users[i].Name < users[j].Name
		}
		return users[i].ID < users[j].ID
	})
	return users, nil
}

func (s *MemoryStore) AssignBook(_ context.Context, userID, bookID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[userID]; !ok {
		return domain.NotFound("user", userID)
	}
	if _, ok := s.books[bookID]; !ok {
		return domain.NotFound("book", bookID)
	}
	if s.byUser[userID] == nil {
		s.byUser[userID] = make(map[string]struct{})
	}
	if s.byBook[bookID] == nil {
		s.byBook[bookID] = make(map[string]struct{})
	}
	s.byUser[userID][bookID] = struct{}{}
	s.byBook[bookID][userID] = struct{}{}
	return nil
}

func (s *MemoryStore) RemoveBook(_ context.Context, userID, bookID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byUser[userID][bookID]; !ok {
		return domain.NotFound("assignment", userID+"/"+bookID)
	}
	delete(s.byUser[userID], bookID)
	delete(s.byBook[bookID], userID)
	return nil
}

func (s *MemoryStore) UserBooks(_ context.Context, userID string) ([]*domain.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.users[userID]; !ok {
		return nil, domain.NotFound("user", userID)
	}
	books := make([]*domain.Book, 0, len(s.byUser[userID]))
	for bookID := range s.byUser[userID] {
		if b, ok := s.books[bookID]; ok {
			books = append(books, cloneBook(b))
		}
	}
	sortBooks(books)
	return books, nil
}

func (s *MemoryStore) BookOwners(_ context.Context, bookID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.byBook[bookID]))
	for userID := range s.byBook[bookID] {
		ids = append(ids, userID)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }

func sortBooks(books []*domain.Book) {
	sort.Slice(books, func(i, j int) bool {
		if books[i].Title != books[j].Title {
			return books[i].Title < books[j].Title
		}
		return books[i].ID < books[j].ID
	})
}
