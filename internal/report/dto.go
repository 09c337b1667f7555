package report

import (
	"github.com/shopspring/decimal"

	"github.com/zackfin/ledgerview/internal/analytics"
	"github.com/zackfin/ledgerview/internal/statement"
)

// The DTO layer flattens the statement structures into JSON-friendly and
// cacheable shapes: diagnostics lose their error wrappers, periods become
// strings, and absent pivot cells become nulls.

// BadRowDTO is one excluded ledger row.
type BadRowDTO struct {
	Line  int    `json:"line"`
	Seq   int64  `json:"seq,omitempty"`
	Field string `json:"field"`
	Value string `json:"value"`
	Error string `json:"error"`
}

// UnmappedDTO is one account excluded from a statement for lack of a
// mapping entry.
type UnmappedDTO struct {
	Statement string `json:"statement"`
	Account   string `json:"account"`
	Class1    string `json:"class1"`
	Class3    string `json:"class3"`
}

// DiagnosticsDTO accompanies every report so consumers can judge whether
// excluded data materially affects the result.
type DiagnosticsDTO struct {
	BadRows  []BadRowDTO   `json:"bad_rows"`
	Unmapped []UnmappedDTO `json:"unmapped_accounts"`
}

func toDiagnosticsDTO(d statement.Diagnostics) DiagnosticsDTO {
	dto := DiagnosticsDTO{
		BadRows:  make([]BadRowDTO, 0, len(d.BadRows)),
		Unmapped: make([]UnmappedDTO, 0, len(d.Unmapped)),
	}
	for _, row := range d.BadRows {
		dto.BadRows = append(dto.BadRows, BadRowDTO{
			Line:  row.Line,
			Seq:   row.Seq,
			Field: row.Field,
			Value: row.Value,
			Error: row.Error(),
		})
	}
	for _, u := range d.Unmapped {
		dto.Unmapped = append(dto.Unmapped, UnmappedDTO{
			Statement: u.Statement,
			Account:   u.Account,
			Class1:    u.Class1,
			Class3:    u.Class3,
		})
	}
	return dto
}

// TrialBalanceRowDTO is one pivot row; Cells align with the period axis and
// are nil before the account's first activity or opening balance.
type TrialBalanceRowDTO struct {
	Account     string             `json:"account"`
	AccountName string             `json:"account_name"`
	Fund        string             `json:"fund,omitempty"`
	Class1      string             `json:"class1,omitempty"`
	Class3      string             `json:"class3,omitempty"`
	Cells       []*decimal.Decimal `json:"cells"`
	GrandTotal  decimal.Decimal    `json:"grand_total"`
}

// TrialBalanceDTO is the rolling trial balance pivot.
type TrialBalanceDTO struct {
	SnapshotID  string               `json:"snapshot_id"`
	Periods     []string             `json:"periods"`
	Rows        []TrialBalanceRowDTO `json:"rows"`
	Diagnostics DiagnosticsDTO       `json:"diagnostics"`
}

func toTrialBalanceDTO(snapshotID string, tb statement.TrialBalance) TrialBalanceDTO {
	dto := TrialBalanceDTO{
		SnapshotID:  snapshotID,
		Periods:     make([]string, 0, len(tb.Periods)),
		Rows:        make([]TrialBalanceRowDTO, 0, len(tb.Rows)),
		Diagnostics: toDiagnosticsDTO(tb.Diagnostics),
	}
	for _, p := range tb.Periods {
		dto.Periods = append(dto.Periods, p.String())
	}
	for _, row := range tb.Rows {
		cells := make([]*decimal.Decimal, len(row.Cells))
		for i, cell := range row.Cells {
			if cell.Present {
				v := cell.Balance
				cells[i] = &v
			}
		}
		dto.Rows = append(dto.Rows, TrialBalanceRowDTO{
			Account:     row.Account,
			AccountName: row.AccountName,
			Fund:        row.Fund,
			Class1:      row.Class1,
			Class3:      row.Class3,
			Cells:       cells,
			GrandTotal:  row.GrandTotal,
		})
	}
	return dto
}

// StatementLineDTO is one income statement line.
type StatementLineDTO struct {
	Line  string          `json:"line"`
	Order int             `json:"order"`
	Value decimal.Decimal `json:"value"`
}

// IncomeStatementDTO is the since-inception income statement at a date.
type IncomeStatementDTO struct {
	SnapshotID  string             `json:"snapshot_id"`
	AsOf        string             `json:"as_of"`
	Lines       []StatementLineDTO `json:"lines"`
	NetIncome   decimal.Decimal    `json:"net_income"`
	Diagnostics DiagnosticsDTO     `json:"diagnostics"`
}

func toIncomeStatementDTO(snapshotID string, st statement.IncomeStatement) IncomeStatementDTO {
	dto := IncomeStatementDTO{
		SnapshotID:  snapshotID,
		AsOf:        st.AsOf.Format("2006-01-02"),
		Lines:       make([]StatementLineDTO, 0, len(st.Lines)),
		NetIncome:   st.NetIncome,
		Diagnostics: toDiagnosticsDTO(st.Diagnostics),
	}
	for _, line := range st.Lines {
		dto.Lines = append(dto.Lines, StatementLineDTO{Line: line.Line, Order: line.Order, Value: line.Value})
	}
	return dto
}

// BalanceLineDTO is one balance sheet line; computed lines (retained
// earnings) have no backing GL accounts.
type BalanceLineDTO struct {
	Line     string          `json:"line"`
	Order    int             `json:"order"`
	Value    decimal.Decimal `json:"value"`
	Computed bool            `json:"computed,omitempty"`
}

// BalanceSectionDTO groups balance sheet lines with their subtotal.
type BalanceSectionDTO struct {
	Label string           `json:"label"`
	Lines []BalanceLineDTO `json:"lines"`
	Total decimal.Decimal  `json:"total"`
}

// BalanceSheetDTO is the since-inception balance sheet at a date.
type BalanceSheetDTO struct {
	SnapshotID                string              `json:"snapshot_id"`
	AsOf                      string              `json:"as_of"`
	Sections                  []BalanceSectionDTO `json:"sections"`
	RetainedEarnings          decimal.Decimal     `json:"retained_earnings"`
	TotalAssets               decimal.Decimal     `json:"total_assets"`
	TotalLiabilitiesAndEquity decimal.Decimal     `json:"total_liabilities_and_equity"`
	Discrepancy               decimal.Decimal     `json:"discrepancy"`
	Diagnostics               DiagnosticsDTO      `json:"diagnostics"`
}

func toBalanceSheetDTO(snapshotID string, bs statement.BalanceSheet) BalanceSheetDTO {
	dto := BalanceSheetDTO{
		SnapshotID:                snapshotID,
		AsOf:                      bs.AsOf.Format("2006-01-02"),
		Sections:                  make([]BalanceSectionDTO, 0, len(bs.Sections)),
		RetainedEarnings:          bs.RetainedEarnings,
		TotalAssets:               bs.TotalAssets,
		TotalLiabilitiesAndEquity: bs.TotalLiabilitiesAndEquity,
		Discrepancy:               bs.Discrepancy,
		Diagnostics:               toDiagnosticsDTO(bs.Diagnostics),
	}
	for _, sec := range bs.Sections {
		secDTO := BalanceSectionDTO{Label: sec.Label, Total: sec.Total, Lines: make([]BalanceLineDTO, 0, len(sec.Lines))}
		for _, line := range sec.Lines {
			secDTO.Lines = append(secDTO.Lines, BalanceLineDTO{
				Line: line.Line, Order: line.Order, Value: line.Value, Computed: line.Computed,
			})
		}
		dto.Sections = append(dto.Sections, secDTO)
	}
	return dto
}

// DashboardDTO carries the KPI cards and the monthly activity series.
type DashboardDTO struct {
	SnapshotID string                    `json:"snapshot_id"`
	KPI        analytics.KPISummary      `json:"kpi"`
	Display    DashboardDisplay          `json:"display"`
	Activity   []analytics.ActivityPoint `json:"monthly_activity"`
}

// DashboardDisplay holds pre-formatted currency strings for the KPI cards.
type DashboardDisplay struct {
	Inflow  string `json:"inflow"`
	Outflow string `json:"outflow"`
	Net     string `json:"net"`
}
