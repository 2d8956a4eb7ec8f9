package ports

import (
	"math/rand"
)

// RNG provides seeded random number generation for deterministic operations.
// Monte-Carlo callers request a named stream so repeated analyses of the
// same experiment reproduce identical draws for the same base seed.
type RNG interface {
	// Stream creates a deterministic generator for a named operation.
	// The same (name, seed) pair always yields the same draw sequence.
	Stream(name string, seed int64) *rand.Rand
}
