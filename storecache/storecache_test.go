package storecache

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/shelfd/shelfd/cache"
	"github.com/shelfd/shelfd/internal/cacheinfra"
	"github.com/shelfd/shelfd/internal/domain"
	"github.com/shelfd/shelfd/internal/store"
)

// countingStore wraps the in-memory store and counts read operations so
// tests can distinguish cache hits from fetches.
type countingStore struct {
	store.Store
	getBook   atomic.Int64
	listBooks atomic.Int64
	popular   atomic.Int64
	getUser   atomic.Int64
	listUsers atomic.Int64
	userBooks atomic.Int64
}

func (c *countingStore) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	c.getBook.Add(1)
	return c.Store.GetBook(ctx, id)
}

func (c *countingStore) ListBooks(ctx context.Context, f domain.BookFilter) ([]*domain.Book, error) {
	c.listBooks.Add(1)
	return c.Store.ListBooks(ctx, f)
}

func (c *countingStore) PopularBooks(ctx context.Context, limit int) ([]*domain.Book, error) {
	c.popular.Add(1)
	return c.Store.PopularBooks(ctx, limit)
}

func (c *countingStore) GetUser(ctx context.Context, id string) (*domain.User, error) {
	c.getUser.Add(1)
	return c.Store.GetUser(ctx, id)
}

func (c *countingStore) ListUsers(ctx context.Context) ([]*domain.User, error) {
	c.listUsers.Add(1)
	return c.Store.ListUsers(ctx)
}

func (c *countingStore) UserBooks(ctx context.Context, userID string) ([]*domain.Book, error) {
	c.userBooks.Add(1)
	return c.Store.UserBooks(ctx, userID)
}

type fixture struct {
	store *countingStore
	books *Books
	users *Users
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	st := &countingStore{Store: store.NewMemoryStore()}
	entityCfg := cache.DefaultEntityConfig()
	listCfg := cache.DefaultListConfig()

	bookEntities, err := cacheinfra.NewSturdycService[*domain.Book](entityCfg)
	if err != nil {
		t.Fatalf("NewSturdycService() error = %v", err)
	}
	userEntities, err := cacheinfra.NewSturdycService[*domain.User](entityCfg)
	if err != nil {
		t.Fatalf("NewSturdycService() error = %v", err)
	}
	bookLists, err := cacheinfra.NewSturdycService[[]*domain.Book](listCfg)
	if err != nil {
		t.Fatalf("NewSturdycService() error = %v", err)
	}
	userLists, err := cacheinfra.NewSturdycService[[]*domain.User](listCfg)
	if err != nil {
		t.Fatalf("NewSturdycService() error = %v", err)
	}

	gens := cache.NewGenerations()
	inv := NewInvalidator(gens, bookEntities, userEntities)
	return &fixture{
		store: st,
		books: NewBooks(st, bookEntities, bookLists, gens, inv),
		users: NewUsers(st, userEntities, userLists, bookLists, gens, inv),
	}
}

func (f *fixture) createBook(t *testing.T, title, author, date string, pages int) *domain.Book {
	t.Helper()
	b, err := f.books.Create(context.Background(), &domain.Book{
		Title:         title,
		Author:        author,
		PublishedDate: date,
		Pages:         pages,
	})
	if err != nil {
		t.Fatalf("Create(%q) error = %v", title, err)
	}
	return b
}

func (f *fixture) createUser(t *testing.T, name, email string) *domain.User {
	t.Helper()
	u, err := f.users.Create(context.Background(), &domain.User{Name: name, Email: email})
	if err != nil {
		t.Fatalf("Create(%q) error = %v", name, err)
	}
	return u
}

func TestBooksCreateAssignsID(t *testing.T) {
	f := newFixture(t)
	b := f.createBook(t, "Animal Farm", "George Orwell", "1945-08-17", 112)
	if b.ID == "" {
		t.Error("Create() left ID empty")
	}
}

func TestCreateDiscardsSuppliedID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	book, err := f.books.Create(ctx, &domain.Book{
		ID:            "client-chosen",
		Title:         "Animal Farm",
		Author:        "George Orwell",
		PublishedDate: "1945-08-17",
		Pages:         112,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if book.ID == "client-chosen" || book.ID == "" {
		t.Errorf("Create() kept the supplied ID: %q", book.ID)
	}

	user, err := f.users.Create(ctx, &domain.User{ID: "client-chosen", Name: "Ada", Email: "ada@example.com"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if user.ID == "client-chosen" || user.ID == "" {
		t.Errorf("Create() kept the supplied ID: %q", user.ID)
	}
}

func TestBooksCreateRejectsInvalid(t *testing.T) {
	f := newFixture(t)
	_, err := f.books.Create(context.Background(), &domain.Book{Author: "nobody"})
	if !domain.IsValidation(err) {
		t.Errorf("Create() error = %v, want validation error", err)
	}
}

func TestBooksGetIsCached(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.createBook(t, "Animal Farm", "George Orwell", "1945-08-17", 112)

	for i := 0; i < 3; i++ {
		got, err := f.books.Get(ctx, b.ID)
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if got.ID != b.ID {
			t.Fatalf("Get() = %v, want %v", got.ID, b.ID)
		}
	}
	if n := f.store.getBook.Load(); n != 1 {
		t.Errorf("store reads = %d, want 1", n)
	}
}

func TestBooksListInvalidatedByCreate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createBook(t, "Animal Farm", "George Orwell", "1945-08-17", 112)

	first, err := f.books.List(ctx, domain.BookFilter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(first) != 1 {
		t.Fatalf("List() returned %d books, want 1", len(first))
	}

	// cached on repeat
	if _, err := f.books.List(ctx, domain.BookFilter{}); err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if n := f.store.listBooks.Load(); n != 1 {
		t.Fatalf("store reads = %d, want 1 before the write", n)
	}

	f.createBook(t, "Nineteen Eighty-Four", "George Orwell", "1949-06-08", 328)

	second, err := f.books.List(ctx, domain.BookFilter{})
	if err != nil {
		t.Fatalf("List() after create error = %v", err)
	}
	if len(second) != 2 {
		t.Errorf("List() after create returned %d books, want 2", len(second))
	}
	if n := f.store.listBooks.Load(); n != 2 {
		t.Errorf("store reads = %d, want 2 after the write", n)
	}
}

func TestBooksListInvalidationCoversAllFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createBook(t, "Animal Farm", "George Orwell", "1945-08-17", 112)

	minPages := 100
	filters := []domain.BookFilter{
		{},
		{Author: "Orwell"},
		{MinPages: &minPages},
		{Author: "Orwell", StartDate: "1940-01-01"},
	}
	for _, filter := range filters {
		if _, err := f.books.List(ctx, filter); err != nil {
			t.Fatalf("List(%q) error = %v", filter.Canonical(), err)
		}
	}

	f.createBook(t, "Nineteen Eighty-Four", "George Orwell", "1949-06-08", 328)

	// every previously cached filter combination must see the new record
	for _, filter := range filters {
		got, err := f.books.List(ctx, filter)
		if err != nil {
			t.Fatalf("List(%q) error = %v", filter.Canonical(), err)
		}
		if len(got) != 2 {
			t.Errorf("List(%q) returned %d books after create, want 2", filter.Canonical(), len(got))
		}
	}
}

func TestBooksUpdateEvictsEntityAndLists(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.createBook(t, "Animal Farm", "George Orwell", "1945-08-17", 112)

	if _, err := f.books.Get(ctx, b.ID); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if _, err := f.books.List(ctx, domain.BookFilter{}); err != nil {
		t.Fatalf("List() error = %v", err)
	}

	title := "Animal Farm: A Fairy Story"
	if _, err := f.books.Update(ctx, b.ID, domain.BookPatch{Title: &title}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, err := f.books.Get(ctx, b.ID)
	if err != nil {
		t.Fatalf("Get() after update error = %v", err)
	}
	if got.Title != title {
		t.Errorf("Get() after update = %q, want %q", got.Title, title)
	}

	listed, err := f.books.List(ctx, domain.BookFilter{})
	if err != nil {
		t.Fatalf("List() after update error = %v", err)
	}
	if len(listed) != 1 || listed[0].Title != title {
		t.Errorf("List() after update = %v, want the renamed book", listed)
	}
}

func TestBooksUpdateUnknownIsNotFound(t *testing.T) {
	f := newFixture(t)
	title := "x"
	_, err := f.books.Update(context.Background(), "3b64cf45-7f0b-4f13-8b5b-111111111111", domain.BookPatch{Title: &title})
	if !domain.IsNotFound(err) {
		t.Errorf("Update() error = %v, want not found", err)
	}
}

func TestBooksDeleteEvictsEverywhere(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.createBook(t, "Animal Farm", "George Orwell", "1945-08-17", 112)
	u := f.createUser(t, "Ada", "ada@example.com")

	if err := f.users.Assign(ctx, u.ID, b.ID); err != nil {
		t.Fatalf("Assign() error = %v", err)
	}

	// warm every read path that can see the book
	if _, err := f.books.Get(ctx, b.ID); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if _, err := f.books.List(ctx, domain.BookFilter{}); err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if _, err := f.users.Books(ctx, u.ID); err != nil {
		t.Fatalf("Books() error = %v", err)
	}

	if err := f.books.Delete(ctx, b.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if _, err := f.books.Get(ctx, b.ID); !domain.IsNotFound(err) {
		t.Errorf("Get() after delete error = %v, want not found", err)
	}
	listed, err := f.books.List(ctx, domain.BookFilter{})
	if err != nil {
		t.Fatalf("List() after delete error = %v", err)
	}
	if len(listed) != 0 {
		t.Errorf("List() after delete = %v, want empty", listed)
	}
	owned, err := f.users.Books(ctx, u.ID)
	if err != nil {
		t.Fatalf("Books() after delete error = %v", err)
	}
	if len(owned) != 0 {
		t.Errorf("Books() after book delete = %v, want empty", owned)
	}
}

func TestPopularBooks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	hot := f.createBook(t, "Animal Farm", "George Orwell", "1945-08-17", 112)
	f.createBook(t, "Nineteen Eighty-Four", "George Orwell", "1949-06-08", 328)
	u := f.createUser(t, "Ada", "ada@example.com")

	// a cached ranking must not survive an assignment
	if _, err := f.books.Popular(ctx, -1); err != nil {
		t.Fatalf("Popular() error = %v", err)
	}
	if err := f.users.Assign(ctx, u.ID, hot.ID); err != nil {
		t.Fatalf("Assign() error = %v", err)
	}
	got, err := f.books.Popular(ctx, -1)
	if err != nil {
		t.Fatalf("Popular() after assign error = %v", err)
	}
	if len(got) == 0 || got[0].ID != hot.ID {
		t.Errorf("Popular() after assign = %v, want %q first", got, hot.Title)
	}
	if n := f.store.popular.Load(); n != 2 {
		t.Errorf("store reads = %d, want 2", n)
	}

	empty, err := f.books.Popular(ctx, 0)
	if err != nil {
		t.Fatalf("Popular(0) error = %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("Popular(0) = %v, want empty", empty)
	}

	one, err := f.books.Popular(ctx, 1)
	if err != nil {
		t.Fatalf("Popular(1) error = %v", err)
	}
	if len(one) != 1 {
		t.Errorf("Popular(1) returned %d books, want 1", len(one))
	}
}

func TestUsersLifecycleAndInvalidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.createUser(t, "Ada", "ada@example.com")

	if _, err := f.users.List(ctx); err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if _, err := f.users.List(ctx); err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if n := f.store.listUsers.Load(); n != 1 {
		t.Fatalf("store reads = %d, want 1", n)
	}

	name := "Ada Lovelace"
	if _, err := f.users.Update(ctx, u.ID, domain.UserPatch{Name: &name}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, err := f.users.Get(ctx, u.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Name != name {
		t.Errorf("Get() after update = %q, want %q", got.Name, name)
	}

	users, err := f.users.List(ctx)
	if err != nil {
		t.Fatalf("List() after update error = %v", err)
	}
	if len(users) != 1 || users[0].Name != name {
		t.Errorf("List() after update = %v, want the renamed user", users)
	}

	if err := f.users.Delete(ctx, u.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := f.users.Get(ctx, u.ID); !domain.IsNotFound(err) {
		t.Errorf("Get() after delete error = %v, want not found", err)
	}
	users, err = f.users.List(ctx)
	if err != nil {
		t.Fatalf("List() after delete error = %v", err)
	}
	if len(users) != 0 {
		t.Errorf("List() after delete = %v, want empty", users)
	}
}

func TestOwnershipInvalidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.createUser(t, "Ada", "ada@example.com")
	b := f.createBook(t, "Animal Farm", "George Orwell", "1945-08-17", 112)

	owned, err := f.users.Books(ctx, u.ID)
	if err != nil {
		t.Fatalf("Books() error = %v", err)
	}
	if len(owned) != 0 {
		t.Fatalf("Books() before assign = %v, want empty", owned)
	}

	if err := f.users.Assign(ctx, u.ID, b.ID); err != nil {
		t.Fatalf("Assign() error = %v", err)
	}
	owned, err = f.users.Books(ctx, u.ID)
	if err != nil {
		t.Fatalf("Books() after assign error = %v", err)
	}
	if len(owned) != 1 || owned[0].ID != b.ID {
		t.Errorf("Books() after assign = %v, want the assigned book", owned)
	}

	// duplicate assignment succeeds and changes nothing
	if err := f.users.Assign(ctx, u.ID, b.ID); err != nil {
		t.Fatalf("duplicate Assign() error = %v", err)
	}

	if err := f.users.Remove(ctx, u.ID, b.ID); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	owned, err = f.users.Books(ctx, u.ID)
	if err != nil {
		t.Fatalf("Books() after remove error = %v", err)
	}
	if len(owned) != 0 {
		t.Errorf("Books() after remove = %v, want empty", owned)
	}

	if err := f.users.Remove(ctx, u.ID, b.ID); !domain.IsNotFound(err) {
		t.Errorf("Remove() on missing edge error = %v, want not found", err)
	}
}

func TestUserBooksUnknownUser(t *testing.T) {
	f := newFixture(t)
	_, err := f.users.Books(context.Background(), "3b64cf45-7f0b-4f13-8b5b-222222222222")
	if !domain.IsNotFound(err) {
		t.Errorf("Books() error = %v, want not found", err)
	}
}
