package ledger

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Source workbooks arrive with dates in several shapes: textual dates,
// Excel serial day numbers, and Unix timestamps in seconds or milliseconds.
// ParseDate accepts all of them and rejects candidates whose year falls
// outside the plausible reporting window.

const (
	minPlausibleYear = 1990
	maxPlausibleYear = 2100
)

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"01/02/2006",
	"1/2/2006",
	"2006/01/02",
	"02-Jan-2006",
	"Jan 2, 2006",
}

// excelEpoch is day zero of the 1900 date system as used by Excel exports.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

var errUnparseableDate = errors.New("unrecognized date")

// ParseDate converts a raw cell value to a calendar date (midnight UTC).
func ParseDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, errUnparseableDate
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil && plausibleYear(t) {
			return truncateDay(t), nil
		}
	}
	num, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return time.Time{}, errUnparseableDate
	}
	for _, cand := range []time.Time{
		excelEpoch.Add(time.Duration(num * 24 * float64(time.Hour))),
		time.Unix(int64(num), 0).UTC(),
		time.UnixMilli(int64(num)).UTC(),
	} {
		if plausibleYear(cand) {
			return truncateDay(cand), nil
		}
	}
	return time.Time{}, errUnparseableDate
}

func plausibleYear(t time.Time) bool {
	return t.Year() >= minPlausibleYear && t.Year() <= maxPlausibleYear
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseAmount converts a raw cell value to a signed decimal. Thousands
// separators are stripped and accounting-style parentheses denote negatives,
// so "(1,234.56)" parses to -1234.56.
func ParseAmount(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Decimal{}, errors.New("empty amount")
	}
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = "-" + strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
	}
	s = strings.ReplaceAll(s, ",", "")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid amount: %w", err)
	}
	return d, nil
}
