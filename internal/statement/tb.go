package statement

import (
	"github.com/shopspring/decimal"

	"github.com/zackfin/ledgerview/internal/ledger"
)

// Cell is one month column value for an account row. Present is false while
// the account has neither an opening balance nor any activity yet; such
// cells render blank rather than zero.
type Cell struct {
	Balance decimal.Decimal
	Present bool
}

// TrialBalanceRow is one account across the period axis plus its grand
// total. Cells align index-wise with TrialBalance.Periods.
type TrialBalanceRow struct {
	Account     string
	AccountName string
	Fund        string
	Class1      string
	Class3      string
	Cells       []Cell
	GrandTotal  decimal.Decimal
}

// TrialBalance is the cumulative pivot: accounts by rows, months by
// columns, with a trailing grand total per row.
type TrialBalance struct {
	Periods     []ledger.Period
	Rows        []TrialBalanceRow
	Diagnostics Diagnostics
}

// TrialBalance builds the rolling cumulative pivot over the given period
// range; nil bounds default to the full axis. Each grand total equals the
// account's final cumulative balance, which by construction is the last
// filled cell of its row.
func (b *Builder) TrialBalance(from, to *ledger.Period) TrialBalance {
	axis := clipPeriods(b.Index.Periods(), from, to)
	tb := TrialBalance{
		Periods:     axis,
		Diagnostics: Diagnostics{BadRows: b.BadRows},
	}

	for _, info := range b.Index.Accounts() {
		opening, _ := b.Index.Opening(info.Account)
		cells := fillCells(axis, b.Index.PeriodSeries(info.Account), opening)
		if omitRow(cells, opening) {
			continue
		}
		row := TrialBalanceRow{
			Account:     info.Account,
			AccountName: info.AccountName,
			Fund:        info.Fund,
			Class1:      info.Class1,
			Class3:      info.Class3,
			Cells:       cells,
			GrandTotal:  opening,
		}
		if len(cells) > 0 {
			row.GrandTotal = cells[len(cells)-1].Balance
		}
		tb.Rows = append(tb.Rows, row)
	}
	return tb
}

func clipPeriods(axis []ledger.Period, from, to *ledger.Period) []ledger.Period {
	out := axis[:0:0]
	for _, p := range axis {
		if from != nil && p.Before(*from) {
			continue
		}
		if to != nil && p.After(*to) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// fillCells is the carry-last-value transform: a month with no activity
// keeps the prior cumulative balance. An explicit or implicit opening
// balance of non-zero value marks the row present from the first column.
func fillCells(axis []ledger.Period, series []ledger.PeriodBalance, opening decimal.Decimal) []Cell {
	cells := make([]Cell, len(axis))
	last := opening
	seen := !opening.IsZero()
	i := 0
	for j, p := range axis {
		for i < len(series) && !series[i].Period.After(p) {
			last = series[i].Balance
			seen = true
			i++
		}
		cells[j] = Cell{Balance: last, Present: seen}
	}
	return cells
}

// omitRow applies the omission policy: drop the row only when the balance
// is exactly zero at every period and there is no opening balance.
func omitRow(cells []Cell, opening decimal.Decimal) bool {
	if !opening.IsZero() {
		return false
	}
	for _, c := range cells {
		if c.Present && !c.Balance.IsZero() {
			return false
		}
	}
	return true
}
