package cache

import "strconv"

// KeySeparator delimits cache key segments.
const KeySeparator = "::"

// Kind names an entity family for single-record keys.
type Kind string

const (
	KindBook Kind = "book"
	KindUser Kind = "user"
)

// List families. Each family owns one generation counter; bumping it makes
// every previously issued key for the family unreachable in one step.
const (
	FamilyBookList     = "booksList"
	FamilyUserList     = "usersList"
	FamilyPopularBooks = "popularBooks"
)

// EntityKey derives the key for a single record: "<kind>:<id>". It is
// independent of any generation; entity entries are invalidated by deletion,
// not by a generation bump.
func EntityKey(kind Kind, id string) string {
	return string(kind) + ":" + id
}

// ListKey derives the key for a filtered list read:
// "<family>::<generation>::<canonical-filter>". Embedding the generation
// makes bulk invalidation O(1): the set of previously served filter
// combinations is unbounded and unknown to the write path, so it is never
// enumerated, only abandoned.
func ListKey(family string, gen uint64, filter string) string {
	return family + KeySeparator + strconv.FormatUint(gen, 10) + KeySeparator + filter
}

// UserBooksFamily names the per-user relation family. Membership changes with
// assignment, removal, or deletion of an owned book, so each user's list is
// its own invalidatable family.
func UserBooksFamily(userID string) string {
	return "userBooks:" + userID
}

// RelationKey derives the key for a user's assigned-books read:
// "userBooks:<userId>::<generation>".
func RelationKey(userID string, gen uint64) string {
	return UserBooksFamily(userID) + KeySeparator + strconv.FormatUint(gen, 10)
}
