package rng

import (
	"hash/fnv"
	"math/rand"

	"golift/ports"
)

// SeededSource implements ports.RNG with deterministic per-stream seeding.
// Stream names are folded into the base seed so distinct operations get
// independent but reproducible sequences.
type SeededSource struct{}

// NewSeededSource creates a deterministic RNG source
func NewSeededSource() *SeededSource {
	return &SeededSource{}
}

// Stream derives a generator from the stream name and base seed
func (s *SeededSource) Stream(name string, seed int64) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(name))
	mixed := int64(h.Sum64()) ^ seed
	return rand.New(rand.NewSource(mixed))
}

var _ ports.RNG = (*SeededSource)(nil)
