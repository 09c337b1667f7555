package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func tx(seq int64, account, date, amount string) Transaction {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	return Transaction{
		Seq:     seq,
		Class1:  "REV",
		Class3:  "OPS",
		Account: account,
		Date:    d,
		Amount:  decimal.RequireFromString(amount),
	}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestIndexCumulativeSeries(t *testing.T) {
	ix := NewIndex([]Transaction{
		tx(1, "A", "2024-01-10", "100"),
		tx(2, "A", "2024-01-20", "25"),
		tx(3, "A", "2024-03-05", "-50"),
	}, nil)

	series := ix.PeriodSeries("A")
	require.Len(t, series, 2)
	require.Equal(t, "2024-01", series[0].Period.String())
	require.True(t, series[0].Balance.Equal(dec("125")))
	require.Equal(t, "2024-03", series[1].Period.String())
	require.True(t, series[1].Balance.Equal(dec("75")))
}

func TestIndexCumulativeAtCarriesForward(t *testing.T) {
	ix := NewIndex([]Transaction{
		tx(1, "A", "2024-01-10", "100"),
		tx(2, "A", "2024-03-05", "-50"),
	}, nil)

	jan := Period{Year: 2024, Month: time.January}
	feb := Period{Year: 2024, Month: time.February}
	mar := Period{Year: 2024, Month: time.March}
	dec23 := Period{Year: 2023, Month: time.December}

	v, seen := ix.CumulativeAt("A", jan)
	require.True(t, seen)
	require.True(t, v.Equal(dec("100")))

	// February has no postings; January's cumulative carries forward.
	v, seen = ix.CumulativeAt("A", feb)
	require.True(t, seen)
	require.True(t, v.Equal(dec("100")))

	v, seen = ix.CumulativeAt("A", mar)
	require.True(t, seen)
	require.True(t, v.Equal(dec("50")))

	v, seen = ix.CumulativeAt("A", dec23)
	require.False(t, seen)
	require.True(t, v.IsZero())
}

func TestIndexOpeningSeedsSeries(t *testing.T) {
	openings := OpeningBalances{"A": dec("1000")}
	ix := NewIndex([]Transaction{
		tx(1, "A", "2024-01-10", "100"),
	}, openings)

	v, seen := ix.CumulativeAt("A", Period{Year: 2024, Month: time.January})
	require.True(t, seen)
	require.True(t, v.Equal(dec("1100")))

	// Before any activity the opening balance stands.
	v, seen = ix.CumulativeAt("A", Period{Year: 2023, Month: time.December})
	require.False(t, seen)
	require.True(t, v.Equal(dec("1000")))
}

func TestIndexOpeningOnlyAccountRetained(t *testing.T) {
	ix := NewIndex(nil, OpeningBalances{"Z": dec("77")})
	accounts := ix.Accounts()
	require.Len(t, accounts, 1)
	require.Equal(t, "Z", accounts[0].Account)

	opening, ok := ix.Opening("Z")
	require.True(t, ok)
	require.True(t, opening.Equal(dec("77")))
	require.True(t, ix.BalanceAsOf("Z", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)).Equal(dec("77")))
}

func TestIndexBalanceAsOf(t *testing.T) {
	ix := NewIndex([]Transaction{
		tx(1, "A", "2024-01-10", "100"),
		tx(2, "A", "2024-02-15", "50"),
		tx(3, "A", "2024-03-20", "-30"),
	}, OpeningBalances{"A": dec("10")})

	day := func(date string) time.Time {
		d, _ := time.Parse("2006-01-02", date)
		return d
	}

	require.True(t, ix.BalanceAsOf("A", day("2023-12-31")).Equal(dec("10")))
	require.True(t, ix.BalanceAsOf("A", day("2024-01-10")).Equal(dec("110")))
	require.True(t, ix.BalanceAsOf("A", day("2024-02-28")).Equal(dec("160")))
	require.True(t, ix.BalanceAsOf("A", day("2024-12-31")).Equal(dec("130")))
	require.True(t, ix.BalanceAsOf("missing", day("2024-12-31")).IsZero())
}

func TestIndexPeriodsUnion(t *testing.T) {
	ix := NewIndex([]Transaction{
		tx(1, "A", "2024-03-10", "1"),
		tx(2, "B", "2024-01-10", "1"),
		tx(3, "B", "2024-03-15", "1"),
	}, nil)

	periods := ix.Periods()
	require.Len(t, periods, 2)
	require.Equal(t, "2024-01", periods[0].String())
	require.Equal(t, "2024-03", periods[1].String())
}

func TestIndexAccountsSorted(t *testing.T) {
	ix := NewIndex([]Transaction{
		tx(1, "B", "2024-01-10", "1"),
		tx(2, "A", "2024-01-10", "1"),
	}, nil)
	accounts := ix.Accounts()
	require.Equal(t, "A", accounts[0].Account)
	require.Equal(t, "B", accounts[1].Account)
}

func TestIndexSameDateOrderedBySeq(t *testing.T) {
	ix := NewIndex([]Transaction{
		tx(2, "A", "2024-01-10", "-100"),
		tx(1, "A", "2024-01-10", "100"),
	}, nil)
	series := ix.PeriodSeries("A")
	require.Len(t, series, 1)
	require.True(t, series[0].Balance.IsZero())
}
