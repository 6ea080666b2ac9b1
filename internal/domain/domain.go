package domain

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/uptrace/bun"
)

// DateLayout is the calendar-date format accepted wherever a date crosses
// the API boundary: publishedDate on books and the startDate/endDate list
// filter bounds. Values are stored in this form so submitted fields round-trip
// unchanged and range comparisons stay lexicographic-safe.
const DateLayout = "2006-01-02"

// Book is a catalog entry. The ID is a server-generated UUID v4 and is
// immutable for the record's lifetime.
type Book struct {
	bun.BaseModel `bun:"table:books,alias:book" json:"-"`

	ID            string `bun:"id,pk" json:"id"`
	Title         string `bun:"title,notnull" json:"title"`
	Author        string `bun:"author,notnull" json:"author"`
	PublishedDate string `bun:"published_date,notnull" json:"publishedDate"`
	Pages         int    `bun:"pages,notnull" json:"pages"`
}

// Validate checks a full book payload as received on create.
func (b Book) Validate() error {
	err := validation.ValidateStruct(&b,
		validation.Field(&b.Title, validation.Required),
		validation.Field(&b.Author, validation.Required),
		validation.Field(&b.PublishedDate, validation.Required, validation.Date(DateLayout)),
		validation.Field(&b.Pages, validation.Required, validation.Min(1)),
	)
	if err != nil {
		return &ValidationError{Message: err.Error()}
	}
	return nil
}

// BookPatch is a partial update: nil fields are left untouched, set fields
// replace the stored value and must individually pass the same rules as on
// create.
type BookPatch struct {
	Title         *string `json:"title"`
	Author        *string `json:"author"`
	PublishedDate *string `json:"publishedDate"`
	Pages         *int    `json:"pages"`
}

func (p BookPatch) Validate() error {
	err := validation.ValidateStruct(&p,
		validation.Field(&p.Title, validation.NilOrNotEmpty),
		validation.Field(&p.Author, validation.NilOrNotEmpty),
		validation.Field(&p.PublishedDate, validation.NilOrNotEmpty, validation.Date(DateLayout)),
		validation.Field(&p.Pages, validation.By(positivePages)),
	)
	if err != nil {
		return &ValidationError{Message: err.Error()}
	}
	return nil
}

// positivePages rejects a set page count below 1. Threshold rules treat zero
// as empty and skip it, so the bound is checked directly.
func positivePages(value any) error {
	pages, ok := value.(*int)
	if !ok || pages == nil {
		return nil
	}
	if *pages < 1 {
		return errors.New("must be no less than 1")
	}
	return nil
}

// Apply copies the set fields onto the record.
func (p BookPatch) Apply(b *Book) {
	if p.Title != nil {
		b.Title = *p.Title
	}
	if p.Author != nil {
		b.Author = *p.Author
	}
	if p.PublishedDate != nil {
		b.PublishedDate = *p.PublishedDate
	}
	if p.Pages != nil {
		b.Pages = *p.Pages
	}
}

// User mirrors Book's lifecycle with name/email fields.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u" json:"-"`

	ID    string `bun:"id,pk" json:"id"`
	Name  string `bun:"name,notnull" json:"name"`
	Email string `bun:"email,notnull" json:"email"`
}

func (u User) Validate() error {
	err := validation.ValidateStruct(&u,
		validation.Field(&u.Name, validation.Required),
		validation.Field(&u.Email, validation.Required, is.Email),
	)
	if err != nil {
		return &ValidationError{Message: err.Error()}
	}
	return nil
}

// UserPatch is the partial-update shape for users.
type UserPatch struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

func (p UserPatch) Validate() error {
	err := validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.NilOrNotEmpty),
		validation.Field(&p.Email, validation.NilOrNotEmpty, is.Email),
	)
	if err != nil {
		return &ValidationError{Message: err.Error()}
	}
	return nil
}

func (p UserPatch) Apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
}

// OwnershipEdge links a user to a book, many-to-many with no duplicates.
// Edges are removed by the removal operation or cascade-removed when either
// endpoint is deleted.
type OwnershipEdge struct {
	bun.BaseModel `bun:"table:user_books,alias:ub" json:"-"`

	UserID string `bun:"user_id,pk" json:"userId"`
	BookID string `bun:"book_id,pk" json:"bookId"`
}
