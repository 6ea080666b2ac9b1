package cache

import "github.com/puzpuzpuz/xsync/v3"

// Generations tracks one monotonically increasing counter per invalidatable
// cache family. Counters start at 0 and live in-process; after a restart
// every family reads 0 again, which can briefly resurrect old low-generation
// keys on a persistent backend. The list TTL ceiling bounds that window.
type Generations struct {
	families *xsync.MapOf[string, uint64]
}

func NewGenerations() *Generations {
	return &Generations{families: xsync.NewMapOf[string, uint64]()}
}

// Current returns the family's generation; an unseen family is at 0.
func (g *Generations) Current(family string) uint64 {
	v, _ := g.families.Load(family)
	return v
}

// Bump atomically increments the family's generation and returns the new
// value. Every list key derived under an earlier generation becomes
// permanently unreachable; orphaned entries drain via TTL.
func (g *Generations) Bump(family string) uint64 {
	v, _ := g.families.Compute(family, func(old uint64, _ bool) (uint64, bool) {
		return old + 1, false
	})
	return v
}
