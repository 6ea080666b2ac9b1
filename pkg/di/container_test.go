package di

import (
	"context"
	"testing"

	"github.com/shelfd/shelfd/internal/config"
	"github.com/shelfd/shelfd/internal/domain"
)

func TestNewContainerMemory(t *testing.T) {
	c, err := NewContainer(context.Background(), config.Default())
	if err != nil {
		t.Fatalf("NewContainer() error = %v", err)
	}
	defer c.Close()

	if c.Books() == nil || c.Users() == nil || c.Store() == nil {
		t.Fatal("container exposed a nil component")
	}
}

func TestNewContainerUnknownBackend(t *testing.T) {
	cfg := config.Default()
	cfg.Cache.Backend = "memcached"
	if _, err := NewContainer(context.Background(), cfg); err == nil {
		t.Fatal("NewContainer() = nil error, want unknown backend failure")
	}
}

func TestNewContainerRejectsTTLAboveCeiling(t *testing.T) {
	cfg := config.Default()
	cfg.Cache.ListTTLSecs = 301
	if _, err := NewContainer(context.Background(), cfg); err == nil {
		t.Fatal("NewContainer() = nil error, want list TTL ceiling rejection")
	}

	cfg = config.Default()
	cfg.Cache.EntityTTLSecs = 3601
	if _, err := NewContainer(context.Background(), cfg); err == nil {
		t.Fatal("NewContainer() = nil error, want entity TTL ceiling rejection")
	}
}

func TestNewContainerUnknownDriver(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Driver = "oracle"
	if _, err := NewContainer(context.Background(), cfg); err == nil {
		t.Fatal("NewContainer() = nil error, want unknown driver failure")
	}
}

func TestContainerEndToEnd(t *testing.T) {
	ctx := context.Background()
	c, err := NewContainer(ctx, config.Default())
	if err != nil {
		t.Fatalf("NewContainer() error = %v", err)
	}
	defer c.Close()

	book, err := c.Books().Create(ctx, &domain.Book{
		Title:         "Animal Farm",
		Author:        "George Orwell",
		PublishedDate: "1945-08-17",
		Pages:         112,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	user, err := c.Users().Create(ctx, &domain.User{Name: "Ada", Email: "ada@example.com"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := c.Users().Assign(ctx, user.ID, book.ID); err != nil {
		t.Fatalf("Assign() error = %v", err)
	}

	owned, err := c.Users().Books(ctx, user.ID)
	if err != nil {
		t.Fatalf("Books() error = %v", err)
	}
	if len(owned) != 1 || owned[0].ID != book.ID {
		t.Errorf("Books() = %v, want the assigned book", owned)
	}

	popular, err := c.Books().Popular(ctx, -1)
	if err != nil {
		t.Fatalf("Popular() error = %v", err)
	}
	if len(popular) == 0 || popular[0].ID != book.ID {
		t.Errorf("Popular() = %v, want the assigned book first", popular)
	}
}
