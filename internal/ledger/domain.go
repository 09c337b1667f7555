package ledger

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a single normalized GL posting. Immutable once produced by
// Normalize; aggregation treats the slice as a read-only snapshot.
type Transaction struct {
	Seq         int64
	Fund        string
	Class1      string
	Class3      string
	Account     string
	AccountName string
	Reference   string
	Description string
	Date        time.Time
	Amount      decimal.Decimal
}

// Period identifies a calendar month. It is the column granule of the rolling
// trial balance and orders chronologically by (Year, Month).
type Period struct {
	Year  int
	Month time.Month
}

// PeriodOf derives the reporting period for a posting date.
func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: t.Month()}
}

// ParsePeriod reads the YYYY-MM form produced by Period.String.
func ParsePeriod(s string) (Period, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Period{}, fmt.Errorf("ledger: invalid period %q", s)
	}
	return PeriodOf(t), nil
}

// Before reports whether p is strictly earlier than q.
func (p Period) Before(q Period) bool {
	if p.Year != q.Year {
		return p.Year < q.Year
	}
	return p.Month < q.Month
}

// After reports whether p is strictly later than q.
func (p Period) After(q Period) bool { return q.Before(p) }

// Next returns the following calendar month.
func (p Period) Next() Period {
	if p.Month == time.December {
		return Period{Year: p.Year + 1, Month: time.January}
	}
	return Period{Year: p.Year, Month: p.Month + 1}
}

// Start returns midnight UTC on the first day of the month.
func (p Period) Start() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
}

// End returns the last instant of the month covered by the period.
func (p Period) End() time.Time {
	return p.Next().Start().Add(-time.Nanosecond)
}

// IsZero reports whether the period is unset.
func (p Period) IsZero() bool { return p.Year == 0 && p.Month == 0 }

// String renders the period as YYYY-MM.
func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// Label renders the period the way the trial balance headers do, as the
// first day of the month in MM/DD/YYYY.
func (p Period) Label() string {
	return p.Start().Format("01/02/2006")
}
