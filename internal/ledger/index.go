package ledger

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// AccountInfo describes one GL account observed in the snapshot.
type AccountInfo struct {
	Account     string
	AccountName string
	Fund        string
	Class1      string
	Class3      string
}

// PeriodBalance pairs a period with the cumulative balance at its end.
type PeriodBalance struct {
	Period  Period
	Balance decimal.Decimal
}

type accountSeries struct {
	info       AccountInfo
	opening    decimal.Decimal
	hasOpening bool
	txs        []Transaction
	prefix     []decimal.Decimal // prefix[i] = opening + sum of txs[:i+1]
	series     []PeriodBalance   // cumulative value per period with activity
}

// Index is the cumulative aggregator: signed since-inception balances per
// account, bucketed by calendar month. It is built once from an immutable
// snapshot and is safe for concurrent reads.
type Index struct {
	accounts map[string]*accountSeries
	order    []string
	periods  []Period
}

// NewIndex groups normalized transactions by account and precomputes the
// cumulative series for each, seeded by the account's opening balance.
// Accounts that only appear in the opening balance set are retained so they
// still surface in the trial balance.
func NewIndex(txs []Transaction, openings OpeningBalances) *Index {
	ix := &Index{accounts: make(map[string]*accountSeries)}

	for _, tx := range txs {
		acc := ix.accounts[tx.Account]
		if acc == nil {
			acc = &accountSeries{info: AccountInfo{Account: tx.Account}}
			ix.accounts[tx.Account] = acc
		}
		if acc.info.AccountName == "" {
			acc.info.AccountName = tx.AccountName
		}
		if acc.info.Class1 == "" {
			acc.info.Class1 = tx.Class1
		}
		if acc.info.Class3 == "" {
			acc.info.Class3 = tx.Class3
		}
		if acc.info.Fund == "" {
			acc.info.Fund = tx.Fund
		}
		acc.txs = append(acc.txs, tx)
	}
	for account, balance := range openings {
		acc := ix.accounts[account]
		if acc == nil {
			acc = &accountSeries{info: AccountInfo{Account: account}}
			ix.accounts[account] = acc
		}
		acc.opening = balance
		acc.hasOpening = true
	}

	periodSet := make(map[Period]struct{})
	for account, acc := range ix.accounts {
		ix.order = append(ix.order, account)
		acc.build()
		for _, pb := range acc.series {
			periodSet[pb.Period] = struct{}{}
		}
	}
	sort.Strings(ix.order)

	ix.periods = make([]Period, 0, len(periodSet))
	for p := range periodSet {
		ix.periods = append(ix.periods, p)
	}
	sort.Slice(ix.periods, func(i, j int) bool { return ix.periods[i].Before(ix.periods[j]) })
	return ix
}

// build sorts the account's postings and derives prefix sums plus the
// per-period cumulative series. Cumulative values are always recomputed
// from opening+transactions, never from previously displayed values.
func (a *accountSeries) build() {
	sort.SliceStable(a.txs, func(i, j int) bool {
		if !a.txs[i].Date.Equal(a.txs[j].Date) {
			return a.txs[i].Date.Before(a.txs[j].Date)
		}
		return a.txs[i].Seq < a.txs[j].Seq
	})

	running := a.opening
	a.prefix = make([]decimal.Decimal, len(a.txs))
	for i, tx := range a.txs {
		running = running.Add(tx.Amount)
		a.prefix[i] = running
	}

	for i, tx := range a.txs {
		p := PeriodOf(tx.Date)
		if n := len(a.series); n > 0 && a.series[n-1].Period == p {
			a.series[n-1].Balance = a.prefix[i]
			continue
		}
		a.series = append(a.series, PeriodBalance{Period: p, Balance: a.prefix[i]})
	}
}

// Periods returns the union of all periods with activity across accounts,
// sorted chronologically. This is the column axis of the trial balance.
func (ix *Index) Periods() []Period {
	out := make([]Period, len(ix.periods))
	copy(out, ix.periods)
	return out
}

// Accounts lists every known account ordered by code.
func (ix *Index) Accounts() []AccountInfo {
	out := make([]AccountInfo, 0, len(ix.order))
	for _, account := range ix.order {
		out = append(out, ix.accounts[account].info)
	}
	return out
}

// Opening returns the seeded opening balance and whether one was supplied.
func (ix *Index) Opening(account string) (decimal.Decimal, bool) {
	acc := ix.accounts[account]
	if acc == nil {
		return decimal.Decimal{}, false
	}
	return acc.opening, acc.hasOpening
}

// BalanceAsOf returns opening balance plus the sum of all postings dated on
// or before asOf. Unknown accounts are zero.
func (ix *Index) BalanceAsOf(account string, asOf time.Time) decimal.Decimal {
	acc := ix.accounts[account]
	if acc == nil {
		return decimal.Decimal{}
	}
	// First posting strictly after asOf; everything before it counts.
	n := sort.Search(len(acc.txs), func(i int) bool { return acc.txs[i].Date.After(asOf) })
	if n == 0 {
		return acc.opening
	}
	return acc.prefix[n-1]
}

// PeriodSeries returns the ordered (period, cumulative balance) sequence for
// the account, one entry per period in which it has activity.
func (ix *Index) PeriodSeries(account string) []PeriodBalance {
	acc := ix.accounts[account]
	if acc == nil {
		return nil
	}
	out := make([]PeriodBalance, len(acc.series))
	copy(out, acc.series)
	return out
}

// CumulativeAt returns the cumulative balance at the end of period p, and
// whether the account had any activity at or before p. Months without
// activity carry the prior cumulative value forward.
func (ix *Index) CumulativeAt(account string, p Period) (decimal.Decimal, bool) {
	acc := ix.accounts[account]
	if acc == nil {
		return decimal.Decimal{}, false
	}
	n := sort.Search(len(acc.series), func(i int) bool { return acc.series[i].Period.After(p) })
	if n == 0 {
		return acc.opening, false
	}
	return acc.series[n-1].Balance, true
}
