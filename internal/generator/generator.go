// Package generator provides seeded random sampling.
package generator

import (
	"hash/fnv"
	"math/rand"
	"sync"
	"time"
)

// Generator draws random samples. It is safe for concurrent use.
type Generator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded returns a Generator with a fixed seed for reproducible samples.
func NewSeeded(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Derive returns a Generator whose seed mixes seed with key, so parallel
// callers sampling per key stay reproducible regardless of scheduling.
func Derive(seed int64, key string) *Generator {
	h := fnv.New64a()
	_, _ = h.Write([]byte(key))
	return NewSeeded(seed ^ int64(h.Sum64()))
}

// Sample selects k items uniformly without replacement. Duplicate values in
// population are distinct items, so repeated values are proportionally more
// likely to be drawn. k is clamped to len(population).
func (g *Generator) Sample(population []string, k int) []string {
	if k > len(population) {
		k = len(population)
	}
	if k <= 0 {
		return []string{}
	}
	pool := make([]string, len(population))
	copy(pool, population)

	g.mu.Lock()
	defer g.mu.Unlock()
	for i := 0; i < k; i++ {
		j := i + g.rnd.Intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:k]
}
