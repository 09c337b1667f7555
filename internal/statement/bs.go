package statement

import (
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/zackfin/ledgerview/internal/mapping"
)

// RetainedEarningsLine is the label of the computed equity line. It has no
// source rows; its value is the net income of the income statement at the
// same as-of date.
const RetainedEarningsLine = "Retained Earnings"

// BalanceLine is one balance sheet line. Computed marks derived lines
// (retained earnings) that have no backing GL accounts.
type BalanceLine struct {
	Section  string
	Line     string
	Order    int
	Value    decimal.Decimal
	Computed bool
}

// BalanceSection groups lines under Assets, Liabilities, or Equity.
type BalanceSection struct {
	Label string
	Lines []BalanceLine
	Total decimal.Decimal
}

// BalanceSheet is the since-inception balance sheet at a given date. The
// assets versus liabilities+equity totals are both surfaced; a non-zero
// Discrepancy is reported, never auto-corrected.
type BalanceSheet struct {
	AsOf                      time.Time
	Sections                  []BalanceSection
	RetainedEarnings          decimal.Decimal
	TotalAssets               decimal.Decimal
	TotalLiabilitiesAndEquity decimal.Decimal
	Discrepancy               decimal.Decimal
	Diagnostics               Diagnostics
}

type sectionLineKey struct {
	section string
	line    string
}

// BalanceSheet maps cumulative balances onto balance sheet lines and adds
// the retained earnings line recomputed from the income statement at the
// same date. It is rebuilt per call so the derived line can never go stale.
func (b *Builder) BalanceSheet(asOf time.Time) BalanceSheet {
	bs := BalanceSheet{
		AsOf:        asOf,
		Diagnostics: Diagnostics{BadRows: b.BadRows},
	}

	lines := make(map[sectionLineKey]*BalanceLine)
	for _, info := range b.Index.Accounts() {
		entry, err := b.Tables.Balance.Resolve(info.Class1, info.Class3)
		if err != nil {
			// Income accounts reach the balance sheet through retained
			// earnings; only pairs unknown to both tables are reported.
			if b.Tables.Income != nil && b.Tables.Income.Contains(info.Class1, info.Class3) {
				continue
			}
			var unmapped *mapping.UnmappedAccountError
			if errors.As(err, &unmapped) {
				unmapped.Account = info.Account
				bs.Diagnostics.Unmapped = append(bs.Diagnostics.Unmapped, unmapped)
			}
			continue
		}
		key := sectionLineKey{section: entry.Section, line: entry.Line}
		line := lines[key]
		if line == nil {
			line = &BalanceLine{Section: entry.Section, Line: entry.Line, Order: entry.Order}
			lines[key] = line
		}
		if entry.Order < line.Order {
			line.Order = entry.Order
		}
		line.Value = line.Value.Add(applySign(b.Index.BalanceAsOf(info.Account, asOf), entry.Sign))
	}

	bs.RetainedEarnings = b.IncomeStatement(asOf).NetIncome

	sections := make(map[string]*BalanceSection)
	for _, line := range lines {
		sec := sections[line.Section]
		if sec == nil {
			sec = &BalanceSection{Label: line.Section}
			sections[line.Section] = sec
		}
		sec.Lines = append(sec.Lines, *line)
		sec.Total = sec.Total.Add(line.Value)
	}

	equity := sections[mapping.SectionEquity]
	if equity == nil {
		equity = &BalanceSection{Label: mapping.SectionEquity}
		sections[mapping.SectionEquity] = equity
	}
	equity.Lines = append(equity.Lines, BalanceLine{
		Section:  mapping.SectionEquity,
		Line:     RetainedEarningsLine,
		Order:    maxOrder(equity.Lines) + 1,
		Value:    bs.RetainedEarnings,
		Computed: true,
	})
	equity.Total = equity.Total.Add(bs.RetainedEarnings)

	bs.Sections = orderSections(sections)
	for i := range bs.Sections {
		sec := &bs.Sections[i]
		sort.Slice(sec.Lines, func(x, y int) bool {
			return mapping.LineLess(sec.Lines[x].Line, sec.Lines[x].Order, sec.Lines[y].Line, sec.Lines[y].Order)
		})
		switch sec.Label {
		case mapping.SectionAssets:
			bs.TotalAssets = bs.TotalAssets.Add(sec.Total)
		default:
			bs.TotalLiabilitiesAndEquity = bs.TotalLiabilitiesAndEquity.Add(sec.Total)
		}
	}
	bs.Discrepancy = bs.TotalAssets.Sub(bs.TotalLiabilitiesAndEquity)
	return bs
}

func maxOrder(lines []BalanceLine) int {
	max := 0
	for _, l := range lines {
		if l.Order > max {
			max = l.Order
		}
	}
	return max
}

// orderSections presents Assets, Liabilities, Equity in canonical order;
// any additional sections declared by the mapping follow, ordered by their
// lowest line order then label.
func orderSections(sections map[string]*BalanceSection) []BalanceSection {
	canonical := map[string]int{
		mapping.SectionAssets:      0,
		mapping.SectionLiabilities: 1,
		mapping.SectionEquity:      2,
	}
	out := make([]BalanceSection, 0, len(sections))
	for _, sec := range sections {
		out = append(out, *sec)
	}
	sort.Slice(out, func(i, j int) bool {
		ri, iCanon := canonical[out[i].Label]
		rj, jCanon := canonical[out[j].Label]
		switch {
		case iCanon && jCanon:
			return ri < rj
		case iCanon:
			return true
		case jCanon:
			return false
		}
		oi, oj := minOrder(out[i].Lines), minOrder(out[j].Lines)
		if oi != oj {
			return oi < oj
		}
		return out[i].Label < out[j].Label
	})
	return out
}

func minOrder(lines []BalanceLine) int {
	if len(lines) == 0 {
		return 0
	}
	min := lines[0].Order
	for _, l := range lines[1:] {
		if l.Order < min {
			min = l.Order
		}
	}
	return min
}
