package report

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestWriteTrialBalanceCSV(t *testing.T) {
	dto := TrialBalanceDTO{
		Periods: []string{"2024-01", "2024-02"},
		Rows: []TrialBalanceRowDTO{
			{Account: "1000", AccountName: "Cash", Cells: []*decimal.Decimal{decPtr("100"), decPtr("150")}, GrandTotal: decimal.RequireFromString("150")},
			{Account: "2000", AccountName: "Late", Cells: []*decimal.Decimal{nil, decPtr("10")}, GrandTotal: decimal.RequireFromString("10")},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteTrialBalanceCSV(&buf, dto))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Equal(t, []string{"GL Account", "GL Account Name", "2024-01", "2024-02", "Grand Total"}, records[0])
	require.Equal(t, []string{"1000", "Cash", "100", "150", "150"}, records[1])
	require.Equal(t, []string{"2000", "Late", "", "10", "10"}, records[2])
}

func TestWriteIncomeStatementCSV(t *testing.T) {
	dto := IncomeStatementDTO{
		AsOf: "2024-02-29",
		Lines: []StatementLineDTO{
			{Line: "Revenue", Value: decimal.RequireFromString("150")},
			{Line: "Operating Expenses", Value: decimal.RequireFromString("-20")},
		},
		NetIncome: decimal.RequireFromString("130"),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteIncomeStatementCSV(&buf, dto))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Equal(t, []string{"Line", "Value"}, records[0])
	require.Equal(t, []string{"Revenue", "150"}, records[1])
	require.Equal(t, []string{"Net Income", "130"}, records[3])
}

func TestWriteBalanceSheetCSV(t *testing.T) {
	dto := BalanceSheetDTO{
		AsOf: "2024-02-29",
		Sections: []BalanceSectionDTO{
			{
				Label: "Assets",
				Lines: []BalanceLineDTO{{Line: "Cash", Value: decimal.RequireFromString("150")}},
				Total: decimal.RequireFromString("150"),
			},
			{
				Label: "Equity",
				Lines: []BalanceLineDTO{{Line: "Retained Earnings", Value: decimal.RequireFromString("150"), Computed: true}},
				Total: decimal.RequireFromString("150"),
			},
		},
		TotalAssets:               decimal.RequireFromString("150"),
		TotalLiabilitiesAndEquity: decimal.RequireFromString("150"),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteBalanceSheetCSV(&buf, dto))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Equal(t, []string{"Section", "Line", "Value"}, records[0])
	require.Equal(t, []string{"Assets", "Cash", "150"}, records[1])
	require.Equal(t, []string{"Assets", "Total Assets", "150"}, records[2])
	require.Equal(t, []string{"Equity", "Retained Earnings", "150"}, records[3])
	require.Equal(t, []string{"", "Total Assets", "150"}, records[5])
	require.Equal(t, []string{"", "Discrepancy", "0"}, records[7])
}
