package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// SchemaError reports a required column missing from the source sheet.
// It aborts the whole run; there is no way to aggregate without it.
type SchemaError struct {
	Column string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("ledger: required column %q missing from source", e.Column)
}

// RowError reports a single malformed ledger row. The row is excluded from
// aggregation and the error is carried in the report diagnostics; it never
// aborts the batch.
type RowError struct {
	Line  int
	Seq   int64
	Field string
	Value string
	Cause error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("ledger: row %d: bad %s %q: %v", e.Line, e.Field, e.Value, e.Cause)
}

func (e *RowError) Unwrap() error { return e.Cause }

// DuplicateAccountError reports an account listed twice in the opening
// balance source with conflicting values. Seeding for that account cannot
// proceed because there is no rule to pick a winner.
type DuplicateAccountError struct {
	Account     string
	Existing    decimal.Decimal
	Conflicting decimal.Decimal
}

func (e *DuplicateAccountError) Error() string {
	return fmt.Sprintf("ledger: account %s has conflicting opening balances %s and %s",
		e.Account, e.Existing, e.Conflicting)
}
