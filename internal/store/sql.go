package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/shelfd/shelfd/internal/domain"
)

// SQLStore persists entities and ownership edges through bun, backed by
// SQLite or Postgres depending on the configured driver.
type SQLStore struct {
	db *bun.DB
}

// OpenSQL opens the database for driver "sqlite3" or "postgres", verifies
// connectivity and ensures the schema exists.
func OpenSQL(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("store: dsn is required for driver %q", driver)
	}

	sqldb, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", driver, err)
	}

	var db *bun.DB
	switch driver {
	case "sqlite3":
		db = bun.NewDB(sqldb, sqlitedialect.New())
	case "postgres":
		db = bun.NewDB(sqldb, pgdialect.New())
	default:
		_ = sqldb.Close()
		return nil, fmt.Errorf("store: unsupported driver %q", driver)
	}

	s := &SQLStore{db: db}
	if err := s.Ping(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := s.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLStore) ensureSchema(ctx context.Context) error {
	models := []any{
		(*domain.Book)(nil),
		(*domain.User)(nil),
		(*domain.OwnershipEdge)(nil),
	}
	for _, m := range models {
		if _, err := s.db.NewCreateTable().Model(m).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("store: create table for %T: %w", m, err)
		}
	}
	// Edge sweeps on book deletion look up by book_id; without this index
	// they degrade to a full scan of user_books.
	if _, err := s.db.NewCreateIndex().
		Model((*domain.OwnershipEdge)(nil)).
		Index("idx_user_books_book_id").
		Column("book_id").
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("store: create edge index: %w", err)
	}
	return nil
}

func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

// containsExpr builds a case-sensitive substring predicate. LIKE is
// case-insensitive for ASCII on SQLite, so both dialects use their position
// function instead.
func (s *SQLStore) containsExpr(column string) string {
	if s.db.Dialect().Name() == dialect.PG {
		return fmt.Sprintf("strpos(%s, ?) > 0", column)
	}
	return fmt.Sprintf("instr(%s, ?) > 0", column)
}

func (s *SQLStore) CreateBook(ctx context.Context, book *domain.Book) error {
	if _, err := s.db.NewInsert().Model(book).Exec(ctx); err != nil {
		return fmt.Errorf("store: create book: %w", err)
	}
	return nil
}

func (s *SQLStore) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	book := new(domain.Book)
	err := s.db.NewSelect().Model(book).Where("book.id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound("book", id)
	}
	if err != nil {
		return nil, fmt.Errorf("store: get book: %w", err)
	}
	return book, nil
}

func (s *SQLStore) UpdateBook(ctx context.Context, id string, patch domain.BookPatch) (*domain.Book, error) {
	var book *domain.Book
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		book = new(domain.Book)
		err := tx.NewSelect().Model(book).Where("book.id = ?", id).Scan(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NotFound("book", id)
		}
		if err != nil {
			return err
		}
		patch.Apply(book)
		_, err = tx.NewUpdate().Model(book).WherePK().Exec(ctx)
		return err
	})
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, err
		}
		return nil, fmt.Errorf("store: update book: %w", err)
	}
	return book, nil
}

func (s *SQLStore) DeleteBook(ctx context.Context, id string) error {
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*domain.OwnershipEdge)(nil)).
			Where("book_id = ?", id).
			Exec(ctx); err != nil {
			return err
		}
		res, err := tx.NewDelete().
			Model((*domain.Book)(nil)).
			Where("id = ?", id).
			Exec(ctx)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return domain.NotFound("book", id)
		}
		return nil
	})
	if err != nil && !domain.IsNotFound(err) {
		return fmt.Errorf("store: delete book: %w", err)
	}
	return err
}

func (s *SQLStore) ListBooks(ctx context.Context, filter domain.BookFilter) ([]*domain.Book, error) {
	var books []*domain.Book
	q := s.db.NewSelect().Model(&books).Order("book.title ASC").Order("book.id ASC")
	if filter.Author != "" {
		q = q.Where(s.containsExpr("book.author"), filter.Author)
	}
	if filter.StartDate != "" {
		q = q.Where("book.published_date >= ?", filter.StartDate)
	}
	if filter.EndDate != "" {
		q = q.Where("book.published_date <= ?", filter.EndDate)
	}
	if filter.MinPages != nil {
		q = q.Where("book.pages >= ?", *filter.MinPages)
	}
	if filter.MaxPages != nil {
		q = q.Where("book.pages <= ?", *filter.MaxPages)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("store: list books: %w", err)
	}
	if books == nil {
		books = []*domain.Book{}
	}
	return books, nil
}

func (s *SQLStore) PopularBooks(ctx context.Context, limit int) ([]*domain.Book, error) {
	if limit <= 0 {
		limit = DefaultPopularLimit
	}
	var books []*domain.Book
	err := s.db.NewSelect().
		Model(&books).
		ColumnExpr("book.*").
		Join("LEFT JOIN user_books AS ub ON ub.book_id = book.id").
		GroupExpr("book.id, book.title, book.author, book.published_date, book.pages").
		OrderExpr("count(ub.user_id) DESC").
		Order("book.title ASC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: popular books: %w", err)
	}
	if books == nil {
		books = []*domain.Book{}
	}
	return books, nil
}

func (s *SQLStore) CreateUser(ctx context.Context, user *domain.User) error {
	if _, err := s.db.NewInsert().Model(user).Exec(ctx); err != nil {
		return fmt.Errorf("store: create user: %w", err)
	}
	return nil
}

func (s *SQLStore) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user := new(domain.User)
	err := s.db.NewSelect().Model(user).Where("u.id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound("user", id)
	}
	if err != nil {
		return nil, fmt.Errorf("store: get user: %w", err)
	}
	return user, nil
}

func (s *SQLStore) UpdateUser(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	var user *domain.User
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		user = new(domain.User)
		err := tx.NewSelect().Model(user).Where("u.id = ?", id).Scan(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NotFound("user", id)
		}
		if err != nil {
			return err
		}
		patch.Apply(user)
		_, err = tx.NewUpdate().Model(user).WherePK().Exec(ctx)
		return err
	})
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, err
		}
		return nil, fmt.Errorf("store: update user: %w", err)
	}
	return user, nil
}

func (s *SQLStore) DeleteUser(ctx context.Context, id string) error {
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*domain.OwnershipEdge)(nil)).
			Where("user_id = ?", id).
			Exec(ctx); err != nil {
			return err
		}
		res, err := tx.NewDelete().
			Model((*domain.User)(nil)).
			Where("id = ?", id).
			Exec(ctx)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return domain.NotFound("user", id)
		}
		return nil
	})
	if err != nil && !domain.IsNotFound(err) {
		return fmt.Errorf("store: delete user: %w", err)
	}
	return err
}

func (s *SQLStore) ListUsers(ctx context.Context) ([]*domain.User, error) {
	var users []*domain.User
	err := s.db.NewSelect().Model(&users).Order("u.name ASC").Order("u.id ASC").Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: list users: %w", err)
	}
	if users == nil {
		users = []*domain.User{}
	}
	return users, nil
}

func (s *SQLStore) AssignBook(ctx context.Context, userID, bookID string) error {
	if err := s.requireUser(ctx, userID); err != nil {
		return err
	}
	if err := s.requireBook(ctx, bookID); err != nil {
		return err
	}
	edge := &domain.OwnershipEdge{UserID: userID, BookID: bookID}
	if _, err := s.db.NewInsert().Model(edge).On("CONFLICT DO NOTHING").Exec(ctx); err != nil {
		return fmt.Errorf("store: assign book: %w", err)
	}
	return nil
}

func (s *SQLStore) RemoveBook(ctx context.Context, userID, bookID string) error {
	res, err := s.db.NewDelete().
		Model((*domain.OwnershipEdge)(nil)).
		Where("user_id = ?", userID).
		Where("book_id = ?", bookID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("store: remove book: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFound("assignment", userID+"/"+bookID)
	}
	return nil
}

func (s *SQLStore) UserBooks(ctx context.Context, userID string) ([]*domain.Book, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	var books []*domain.Book
	err := s.db.NewSelect().
		Model(&books).
		Join("JOIN user_books AS ub ON ub.book_id = book.id").
		Where("ub.user_id = ?", userID).
		Order("book.title ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: user books: %w", err)
	}
	if books == nil {
		books = []*domain.Book{}
	}
	return books, nil
}

func (s *SQLStore) BookOwners(ctx context.Context, bookID string) ([]string, error) {
	var ids []string
	err := s.db.NewSelect().
		Model((*domain.OwnershipEdge)(nil)).
		Column("user_id").
		Where("book_id = ?", bookID).
		Scan(ctx, &ids)
	if err != nil {
		return nil, fmt.Errorf("store: book owners: %w", err)
	}
	return ids, nil
}

func (s *SQLStore) requireUser(ctx context.Context, id string) error {
	n, err := s.db.NewSelect().Model((*domain.User)(nil)).Where("u.id = ?", id).Count(ctx)
	if err != nil {
		return fmt.Errorf("store: check user: %w", err)
	}
	if n == 0 {
		return domain.NotFound("user", id)
	}
	return nil
}

func (s *SQLStore) requireBook(ctx context.Context, id string) error {
	n, err := s.db.NewSelect().Model((*domain.Book)(nil)).Where("book.id = ?", id).Count(ctx)
	if err != nil {
		return fmt.Errorf("store: check book: %w", err)
	}
	if n == 0 {
		return domain.NotFound("book", id)
	}
	return nil
}
