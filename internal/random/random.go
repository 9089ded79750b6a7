package random

import (
	"math/rand"
	"time"
)

// Source is the only randomness the round generator sees.
// Implementations need not be safe for concurrent use.
type Source interface {
	Intn(n int) int
	Shuffle(n int, swap func(i, j int))
}

// New returns a deterministic source for the given seed.
func New(seed int64) Source {
	return rand.New(rand.NewSource(seed))
}

// NewTimeSeeded returns a source seeded from the wall clock.
func NewTimeSeeded() Source {
	return New(time.Now().UnixNano())
}

// Shuffled returns a shuffled copy of items.
func Shuffled[T any](src Source, items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	src.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}
