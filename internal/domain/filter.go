package domain

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

// BookFilter is the canonical descriptor for a book list query. It is
// order-independent: any arrangement of the raw query parameters that carries
// the same values produces an identical descriptor, and therefore an
// identical cache key. The zero value is the empty filter, itself a valid,
// distinct descriptor.
type BookFilter struct {
	Author    string
	StartDate string
	EndDate   string
	MinPages  *int
	MaxPages  *int
}

// ParseBookFilter builds a BookFilter from raw query parameters. Unknown
// parameters are ignored. A malformed date or a non-numeric page bound fails
// with a ValidationError; callers must not touch the cache or the store after
// a parse failure. The function is pure: no clock, no side effects.
func ParseBookFilter(q url.Values) (BookFilter, error) {
	var f BookFilter

	f.Author = q.Get("author")

	for _, p := range []struct {
		name string
		dst  *string
	}{
		{"startDate", &f.StartDate},
		{"endDate", &f.EndDate},
	} {
		v := q.Get(p.name)
		if v == "" {
			continue
		}
		if _, err := time.Parse(DateLayout, v); err != nil {
			return BookFilter{}, Validationf("invalid %s %q: expected %s", p.name, v, DateLayout)
		}
		*p.dst = v
	}

	for _, p := range []struct {
		name string
		dst  **int
	}{
		{"minPages", &f.MinPages},
		{"maxPages", &f.MaxPages},
	} {
		v := q.Get(p.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return BookFilter{}, Validationf("invalid %s %q: not an integer", p.name, v)
		}
		*p.dst = &n
	}

	return f, nil
}

// IsZero reports whether no constraint is set.
func (f BookFilter) IsZero() bool {
	return f.Author == "" && f.StartDate == "" && f.EndDate == "" &&
		f.MinPages == nil && f.MaxPages == nil
}

// Canonical serializes the set constraints in a fixed parameter order so
// semantically identical filters always yield the same string. Values are
// query-escaped: without escaping, an author value containing "&" or "="
// could collide with a differently constrained filter and the two would
// share a cache key. The empty filter canonicalizes to "".
func (f BookFilter) Canonical() string {
	var parts []string
	if f.Author != "" {
		parts = append(parts, "author="+url.QueryEscape(f.Author))
	}
	if f.StartDate != "" {
		parts = append(parts, "startDate="+url.QueryEscape(f.StartDate))
	}
	if f.EndDate != "" {
		parts = append(parts, "endDate="+url.QueryEscape(f.EndDate))
	}
	if f.MinPages != nil {
		parts = append(parts, "minPages="+strconv.Itoa(*f.MinPages))
	}
	if f.MaxPages != nil {
		parts = append(parts, "maxPages="+strconv.Itoa(*f.MaxPages))
	}
	return strings.Join(parts, "&")
}

// Match applies the filter semantics to a single record: case-sensitive
// substring match on author, inclusive bounds on publishedDate and pages.
// Date comparison is lexicographic, which is exact for the fixed layout.
func (f BookFilter) Match(b *Book) bool {
	if f.Author != "" && !strings.Contains(b.Author, f.Author) {
		return false
	}
	if f.StartDate != "" && b.PublishedDate < f.StartDate {
		return false
	}
	if f.EndDate != "" && b.PublishedDate > f.EndDate {
		return false
	}
	if f.MinPages != nil && b.Pages < *f.MinPages {
		return false
	}
	if f.MaxPages != nil && b.Pages > *f.MaxPages {
		return false
	}
	return true
}
