// Package numerator provides domain contracts for document auto-numbering.
// Implementations live in infrastructure layer.
package numerator

import (
	"context"
	"time"
)

// Generator generates sequential document numbers.
// This is the domain contract - implementations live in infrastructure layer.
//
// Numbers are scoped per (company, prefix, period); two companies each get
// their own independent sequence for the same document kind.
type Generator interface {
	// GetNextNumber generates the next document number.
	// Pattern: PREFIX-YEAR-XXXXX (e.g., SI-2026-00001)
	//
	// Supports Strict (DB-level) and Cached (Memory-level) strategies.
	// Must be called inside the posting transaction so a rolled-back
	// document releases its number together with everything else.
	GetNextNumber(ctx context.Context, cfg Config, opts *Options, period time.Time) (string, error)

	// SetNextNumber sets the next number value (for migration purposes).
	SetNextNumber(ctx context.Context, cfg Config, period time.Time, value int64) error
}
