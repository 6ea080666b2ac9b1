// Package storecache decorates the persistence layer with read-through
// caching and generation-based invalidation. Entity reads cache single
// records under stable keys; collection reads cache under keys that embed
// the owning family's current generation, so any write that can change a
// collection's contents invalidates every cached variant of it with one
// counter increment.
package storecache
