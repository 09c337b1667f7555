package statement

import (
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/zackfin/ledgerview/internal/mapping"
)

// IncomeLine is one statement line: the signed sum of every account that
// resolves to it, as of the statement date.
type IncomeLine struct {
	Line  string
	Order int
	Value decimal.Decimal
}

// IncomeStatement is the since-inception income statement at a given date.
type IncomeStatement struct {
	AsOf        time.Time
	Lines       []IncomeLine
	NetIncome   decimal.Decimal
	Diagnostics Diagnostics
}

// IncomeStatement maps every account's cumulative balance at asOf onto its
// income line with the line's normal sign applied. Net income is the sum of
// the already-signed line values; the sign is applied once per account, not
// again per line.
func (b *Builder) IncomeStatement(asOf time.Time) IncomeStatement {
	st := IncomeStatement{
		AsOf:        asOf,
		Diagnostics: Diagnostics{BadRows: b.BadRows},
	}

	lines := make(map[string]*IncomeLine)
	for _, info := range b.Index.Accounts() {
		entry, err := b.Tables.Income.Resolve(info.Class1, info.Class3)
		if err != nil {
			// A pair that resolves in the balance table is simply not an
			// income account; only pairs unknown to both tables are reported.
			if b.Tables.Balance != nil && b.Tables.Balance.Contains(info.Class1, info.Class3) {
				continue
			}
			var unmapped *mapping.UnmappedAccountError
			if errors.As(err, &unmapped) {
				unmapped.Account = info.Account
				st.Diagnostics.Unmapped = append(st.Diagnostics.Unmapped, unmapped)
			}
			continue
		}
		line := lines[entry.Line]
		if line == nil {
			line = &IncomeLine{Line: entry.Line, Order: entry.Order}
			lines[entry.Line] = line
		}
		if entry.Order < line.Order {
			line.Order = entry.Order
		}
		line.Value = line.Value.Add(applySign(b.Index.BalanceAsOf(info.Account, asOf), entry.Sign))
	}

	st.Lines = make([]IncomeLine, 0, len(lines))
	for _, line := range lines {
		st.Lines = append(st.Lines, *line)
		st.NetIncome = st.NetIncome.Add(line.Value)
	}
	sort.Slice(st.Lines, func(i, j int) bool {
		return mapping.LineLess(st.Lines[i].Line, st.Lines[i].Order, st.Lines[j].Line, st.Lines[j].Order)
	})
	return st
}

func applySign(v decimal.Decimal, sign int) decimal.Decimal {
	if sign < 0 {
		return v.Neg()
	}
	return v
}
