// Package statement builds the rolling trial balance and the balance
// sheet / income statement pair from an aggregated ledger snapshot.
//
// Every build is a pure function over (index, mapping tables, as-of date):
// nothing is cached or mutated, so reports for different dates may be built
// concurrently from the same snapshot.
package statement

import (
	"github.com/zackfin/ledgerview/internal/ledger"
	"github.com/zackfin/ledgerview/internal/mapping"
)

// Diagnostics lists the data excluded from a report: rows the normalizer
// could not parse and accounts whose classification pair had no mapping.
// Reports carry this alongside their results instead of failing.
type Diagnostics struct {
	BadRows  []*ledger.RowError
	Unmapped []*mapping.UnmappedAccountError
}

// Empty reports whether the report covered every input row and account.
func (d Diagnostics) Empty() bool {
	return len(d.BadRows) == 0 && len(d.Unmapped) == 0
}

// Builder produces reports from one immutable ledger snapshot. BadRows is
// carried into every report's diagnostics so consumers can judge coverage.
type Builder struct {
	Index   *ledger.Index
	Tables  mapping.Tables
	BadRows []*ledger.RowError
}

// NewBuilder wires a builder for the snapshot.
func NewBuilder(ix *ledger.Index, tables mapping.Tables, badRows []*ledger.RowError) *Builder {
	return &Builder{Index: ix, Tables: tables, BadRows: badRows}
}
