package report

import (
	"encoding/csv"
	"io"
)

// CSV exports mirror the JSON reports but keep plain numeric cells so the
// files load cleanly into spreadsheets.

// WriteTrialBalanceCSV serialises the pivot, one account per row with the
// month columns and the trailing grand total. Absent cells stay empty.
func WriteTrialBalanceCSV(w io.Writer, tb TrialBalanceDTO) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	header := []string{"GL Account", "GL Account Name"}
	header = append(header, tb.Periods...)
	header = append(header, "Grand Total")
	if err := writer.Write(header); err != nil {
		return err
	}
	for _, row := range tb.Rows {
		record := []string{row.Account, row.AccountName}
		for _, cell := range row.Cells {
			if cell == nil {
				record = append(record, "")
				continue
			}
			record = append(record, cell.String())
		}
		record = append(record, row.GrandTotal.String())
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteIncomeStatementCSV emits the ordered lines plus the net income row.
func WriteIncomeStatementCSV(w io.Writer, st IncomeStatementDTO) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"Line", "Value"}); err != nil {
		return err
	}
	for _, line := range st.Lines {
		if err := writer.Write([]string{line.Line, line.Value.String()}); err != nil {
			return err
		}
	}
	if err := writer.Write([]string{"Net Income", st.NetIncome.String()}); err != nil {
		return err
	}
	writer.Flush()
	return writer.Error()
}

// WriteBalanceSheetCSV emits sections with their lines, subtotals, and the
// reconciliation totals.
func WriteBalanceSheetCSV(w io.Writer, bs BalanceSheetDTO) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"Section", "Line", "Value"}); err != nil {
		return err
	}
	for _, sec := range bs.Sections {
		for _, line := range sec.Lines {
			if err := writer.Write([]string{sec.Label, line.Line, line.Value.String()}); err != nil {
				return err
			}
		}
		if err := writer.Write([]string{sec.Label, "Total " + sec.Label, sec.Total.String()}); err != nil {
			return err
		}
	}
	records := [][]string{
		{"", "Total Assets", bs.TotalAssets.String()},
		{"", "Total Liabilities and Equity", bs.TotalLiabilitiesAndEquity.String()},
		{"", "Discrepancy", bs.Discrepancy.String()},
	}
	for _, record := range records {
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
