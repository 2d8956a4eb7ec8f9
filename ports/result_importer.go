package ports

import (
	"golift/domain/core"
)

// ResultRow is one imported per-variant measurement, before the engine
// derives rates, intervals and significance.
type ResultRow struct {
	VariantID   core.VariantID
	SampleSize  int
	Conversions int
	Revenue     float64
}

// ResultImporter reads raw variant measurements from an external export
// (the simulation/import step that populates experiment results).
type ResultImporter interface {
	Import(path string) ([]ResultRow, error)
}
