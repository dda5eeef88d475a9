// Package ids generates property and visit identifiers.
package ids

import (
	"fmt"
	"math/rand"
	"sync"
)

// Generator produces new entity identifiers. Uniqueness is the caller's
// responsibility: the stores retry on collision.
type Generator interface {
	PropertyID() string
	VisitID() string
}

// Random generates identifiers with a random 5-digit suffix
// (P-10000..P-99999, V-10000..V-99999).
type Random struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandom creates a Random generator with the given seed source.
func NewRandom(seed int64) *Random {
	return &Random{rng: rand.New(rand.NewSource(seed))}
}

func (g *Random) suffix() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return 10000 + g.rng.Intn(90000)
}

// PropertyID returns a new property identifier.
func (g *Random) PropertyID() string {
	return fmt.Sprintf("P-%05d", g.suffix())
}

// VisitID returns a new visit identifier.
func (g *Random) VisitID() string {
	return fmt.Sprintf("V-%05d", g.suffix())
}

// Sequence generates deterministic identifiers for tests.
type Sequence struct {
	mu    sync.Mutex
	nextP int
	nextV int
}

// NewSequence creates a Sequence generator starting at 1.
func NewSequence() *Sequence {
	return &Sequence{nextP: 1, nextV: 1}
}

// PropertyID returns the next property identifier in sequence.
func (g *Sequence) PropertyID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := fmt.Sprintf("P-%05d", g.nextP)
	g.nextP++
	return id
}

// VisitID returns the next visit identifier in sequence.
func (g *Sequence) VisitID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := fmt.Sprintf("V-%05d", g.nextV)
	g.nextV++
	return id
}
