// Package analytics derives the dashboard figures shown next to the
// reports: headline totals over the loaded ledger and the monthly net
// activity series.
package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/zackfin/ledgerview/internal/ledger"
)

// KPISummary contains the headline indicators for a ledger snapshot.
type KPISummary struct {
	Inflow   decimal.Decimal `json:"inflow"`
	Outflow  decimal.Decimal `json:"outflow"`
	Net      decimal.Decimal `json:"net"`
	RowCount int             `json:"row_count"`
}

// Summarize totals positive and negative postings separately; Net is their
// sum, matching the signed ledger convention.
func Summarize(txs []ledger.Transaction) KPISummary {
	summary := KPISummary{RowCount: len(txs)}
	for _, tx := range txs {
		if tx.Amount.IsPositive() {
			summary.Inflow = summary.Inflow.Add(tx.Amount)
		} else {
			summary.Outflow = summary.Outflow.Add(tx.Amount)
		}
	}
	summary.Net = summary.Inflow.Add(summary.Outflow)
	return summary
}

// ActivityPoint is one month of net movement (not cumulative).
type ActivityPoint struct {
	Period string          `json:"period"`
	Net    decimal.Decimal `json:"net"`
}

// MonthlyActivity buckets net movement per calendar month, sorted
// chronologically.
func MonthlyActivity(txs []ledger.Transaction) []ActivityPoint {
	byPeriod := make(map[ledger.Period]decimal.Decimal)
	for _, tx := range txs {
		p := ledger.PeriodOf(tx.Date)
		byPeriod[p] = byPeriod[p].Add(tx.Amount)
	}
	periods := make([]ledger.Period, 0, len(byPeriod))
	for p := range byPeriod {
		periods = append(periods, p)
	}
	sort.Slice(periods, func(i, j int) bool { return periods[i].Before(periods[j]) })

	points := make([]ActivityPoint, 0, len(periods))
	for _, p := range periods {
		points = append(points, ActivityPoint{Period: p.String(), Net: byPeriod[p]})
	}
	return points
}
