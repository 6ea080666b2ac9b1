// Package cache defines the read-through caching contract and the key scheme
// that keeps cached reads consistent with the store.
//
// # Overview
//
// The package exports three things:
//
//   - Service[V]: a typed read-through cache interface (get-or-populate with
//     a per-service TTL, plus explicit delete)
//   - key derivation: EntityKey, ListKey and RelationKey map a resource kind,
//     an identity or canonical filter descriptor, and a generation to a
//     deterministic key string
//   - Generations: one monotonic counter per invalidatable key family
//
// # Key scheme
//
// Single-entity keys ("book:<id>", "user:<id>") are stable across
// generations and are invalidated by explicit deletion. List keys embed the
// family's current generation:
//
//	booksList::<generation>::<canonical-filter>
//	userBooks:<userId>::<generation>
//
// Bumping a generation makes every previously issued list key for the family
// unreachable at once, without enumerating them. Orphaned entries are
// reclaimed by TTL expiry; MaxListTTL bounds how long they can linger.
//
// # Determinism
//
// For equal inputs the derivation functions always return an equal key. The
// canonical filter serialization is produced upstream (see the domain
// package) in a fixed parameter order, so semantically identical filters hit
// the same entry regardless of how the raw query was spelled.
package cache
