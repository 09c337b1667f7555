// Package mapping resolves GL classification pairs (FSLI.1/FSLI.3) onto
// financial statement line items with their normal sign and display order.
package mapping

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Statement names the two classification tables.
const (
	StatementIncome  = "income"
	StatementBalance = "balance"
)

// Canonical balance sheet section labels.
const (
	SectionAssets      = "Assets"
	SectionLiabilities = "Liabilities"
	SectionEquity      = "Equity"
)

// Key is the two-level classification code an entry is resolved by.
type Key struct {
	Class1 string
	Class3 string
}

func (k Key) String() string { return k.Class1 + "/" + k.Class3 }

// Entry is the reporting target for one classification pair.
type Entry struct {
	Line    string
	Section string
	Sign    int // +1 debit-positive, -1 credit-positive
	Order   int
}

// Row is one unkeyed mapping record as loaded from the CSV collaborators.
type Row struct {
	Class1  string
	Class3  string
	Line    string
	Section string
	Sign    int
	Order   int
}

// UnmappedAccountError reports a classification pair with no entry in the
// table required for the requested statement. The account is excluded from
// that statement only and listed in diagnostics; it never aborts a report.
type UnmappedAccountError struct {
	Statement string
	Account   string
	Class1    string
	Class3    string
}

func (e *UnmappedAccountError) Error() string {
	return fmt.Sprintf("mapping: account %s (%s/%s) has no %s statement mapping",
		e.Account, e.Class1, e.Class3, e.Statement)
}

// TableError reports a structurally invalid classification table. Unlike
// an unmapped pair this is fatal: no statement can be built from it.
type TableError struct {
	Statement string
	Reason    string
}

func (e *TableError) Error() string {
	return fmt.Sprintf("mapping: %s table: %s", e.Statement, e.Reason)
}

// Table is one loaded classification table, keyed by (class1, class3).
type Table struct {
	statement string
	entries   map[Key]Entry
}

// NewTable builds a classification table. An empty row set is structural
// and fatal: a statement cannot be produced from nothing. Conflicting
// duplicate keys are likewise fatal since resolution must be deterministic.
func NewTable(statement string, rows []Row) (*Table, error) {
	if len(rows) == 0 {
		return nil, &TableError{Statement: statement, Reason: "no entries"}
	}
	t := &Table{statement: statement, entries: make(map[Key]Entry, len(rows))}
	for _, row := range rows {
		if strings.TrimSpace(row.Line) == "" {
			return nil, &TableError{Statement: statement,
				Reason: fmt.Sprintf("entry %s/%s has no target line", row.Class1, row.Class3)}
		}
		if row.Sign != 1 && row.Sign != -1 {
			return nil, &TableError{Statement: statement,
				Reason: fmt.Sprintf("entry %s/%s has sign %d, want +1 or -1", row.Class1, row.Class3, row.Sign)}
		}
		key := normalizeKey(row.Class1, row.Class3)
		entry := Entry{Line: row.Line, Section: row.Section, Sign: row.Sign, Order: row.Order}
		if prev, ok := t.entries[key]; ok {
			if prev != entry {
				return nil, &TableError{Statement: statement,
					Reason: fmt.Sprintf("conflicting entries for %s", key)}
			}
			continue
		}
		t.entries[key] = entry
	}
	return t, nil
}

func normalizeKey(class1, class3 string) Key {
	return Key{
		Class1: strings.ToUpper(strings.TrimSpace(class1)),
		Class3: strings.ToUpper(strings.TrimSpace(class3)),
	}
}

// Statement returns the statement name this table serves.
func (t *Table) Statement() string { return t.statement }

// Len returns the number of distinct classification pairs.
func (t *Table) Len() int { return len(t.entries) }

// Rows returns the table contents as loadable rows, ordered by key so
// persistence is deterministic.
func (t *Table) Rows() []Row {
	out := make([]Row, 0, len(t.entries))
	for key, entry := range t.entries {
		out = append(out, Row{
			Class1:  key.Class1,
			Class3:  key.Class3,
			Line:    entry.Line,
			Section: entry.Section,
			Sign:    entry.Sign,
			Order:   entry.Order,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Class1 != out[j].Class1 {
			return out[i].Class1 < out[j].Class1
		}
		return out[i].Class3 < out[j].Class3
	})
	return out
}

// Contains reports whether the pair resolves in this table.
func (t *Table) Contains(class1, class3 string) bool {
	_, ok := t.entries[normalizeKey(class1, class3)]
	return ok
}

// Resolve looks up the entry for a classification pair. Resolution is a
// pure map lookup: identical inputs always yield the identical entry.
func (t *Table) Resolve(class1, class3 string) (Entry, error) {
	key := normalizeKey(class1, class3)
	entry, ok := t.entries[key]
	if !ok {
		return Entry{}, &UnmappedAccountError{
			Statement: t.statement,
			Class1:    key.Class1,
			Class3:    key.Class3,
		}
	}
	return entry, nil
}

// Tables bundles the two independent classification tables.
type Tables struct {
	Income  *Table
	Balance *Table
}

// Validate checks both tables are present.
func (t Tables) Validate() error {
	if t.Income == nil {
		return errors.New("mapping: income table required")
	}
	if t.Balance == nil {
		return errors.New("mapping: balance table required")
	}
	return nil
}

// LineLess orders statement lines by declared order, ties broken by line
// name, so output is deterministic.
func LineLess(aLine string, aOrder int, bLine string, bOrder int) bool {
	if aOrder != bOrder {
		return aOrder < bOrder
	}
	return aLine < bLine
}
