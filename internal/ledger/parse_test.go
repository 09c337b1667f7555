package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestParseDateLayouts(t *testing.T) {
	want := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)
	cases := []string{
		"2024-03-05",
		"2024-03-05 13:45:10",
		"2024-03-05T13:45:10Z",
		"03/05/2024",
		"3/5/2024",
		"2024/03/05",
		"05-Mar-2024",
		"Mar 5, 2024",
	}
	for _, raw := range cases {
		got, err := ParseDate(raw)
		require.NoError(t, err, raw)
		require.True(t, got.Equal(want), "parsed %q to %s", raw, got)
	}
}

func TestParseDateExcelSerial(t *testing.T) {
	// 45357 days after 1899-12-30 is 2024-03-06.
	got, err := ParseDate("45357")
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, time.March, 6, 0, 0, 0, 0, time.UTC), got)
}

func TestParseDateUnixSeconds(t *testing.T) {
	ts := time.Date(2024, time.March, 6, 9, 30, 0, 0, time.UTC)
	got, err := ParseDate("1709717400")
	require.NoError(t, err)
	require.Equal(t, time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC), got)
}

func TestParseDateUnixMillis(t *testing.T) {
	got, err := ParseDate("1709717400000")
	require.NoError(t, err)
	require.Equal(t, 2024, got.Year())
	require.Equal(t, time.March, got.Month())
}

func TestParseDateRejectsImplausible(t *testing.T) {
	for _, raw := range []string{"", "not a date", "1850-01-01", "0.5"} {
		_, err := ParseDate(raw)
		require.Error(t, err, raw)
	}
}

func TestParseDateTruncatesToMidnight(t *testing.T) {
	got, err := ParseDate("2024-03-05 23:59:59")
	require.NoError(t, err)
	require.Equal(t, 0, got.Hour())
	require.Equal(t, 0, got.Minute())
}

func TestParseAmount(t *testing.T) {
	cases := map[string]string{
		"100":          "100",
		"1,234.56":     "1234.56",
		"(1,234.56)":   "-1234.56",
		"-42.01":       "-42.01",
		"(0.25)":       "-0.25",
		"  987.00  ":   "987",
		"1,000,000.10": "1000000.1",
	}
	for raw, want := range cases {
		got, err := ParseAmount(raw)
		require.NoError(t, err, raw)
		require.True(t, got.Equal(decimal.RequireFromString(want)), "parsed %q to %s", raw, got)
	}
}

func TestParseAmountRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"", "abc", "(12x)", "--5"} {
		_, err := ParseAmount(raw)
		require.Error(t, err, raw)
	}
}
