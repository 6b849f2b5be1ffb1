// Package lottery draws winners from a waitlist without replacement.
package lottery

import (
	"math/rand/v2"
	"sync"
)

// Source yields a uniform int in [0, n). *rand.Rand satisfies it.
type Source interface {
	IntN(n int) int
}

// Partition picks up to n winners from candidates uniformly at random using a
// partial Fisher-Yates shuffle over a copy. Winners are returned in draw order;
// losers keep their original order. n is clamped to [0, len(candidates)].
func Partition[T comparable](src Source, candidates []T, n int) (winners, losers []T) {
	n = max(0, min(n, len(candidates)))
	pool := make([]T, len(candidates))
	copy(pool, candidates)

	for i := 0; i < n; i++ {
		j := i + src.IntN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	winners = pool[:n:n]

	picked := make(map[T]int, n)
	for _, w := range winners {
		picked[w]++
	}
	losers = make([]T, 0, len(candidates)-n)
	for _, c := range candidates {
		if picked[c] > 0 {
			picked[c]--
			continue
		}
		losers = append(losers, c)
	}
	return winners, losers
}

// Engine is a concurrency-safe lottery over a seedable random source.
type Engine struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewEngine returns an engine whose draws are reproducible for a given seed.
func NewEngine(seed uint64) *Engine {
	return &Engine{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// NewRandomEngine returns an engine seeded from the runtime's random source.
func NewRandomEngine() *Engine {
	return &Engine{rng: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
}

// Draw partitions entrant ids into n winners and the remaining losers.
func (e *Engine) Draw(entrantIDs []int, n int) (winners, losers []int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Partition(e.rng, entrantIDs, n)
}
