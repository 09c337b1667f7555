package ledger

import (
	"errors"
	"sort"
	"strconv"
	"strings"
)

// Canonical column names of the GL sheet. The ingest layer normalizes
// incoming headers against this list before rows reach Normalize.
const (
	ColSeq         = "seq"
	ColFund        = "Fund"
	ColClass1      = "FSLI.1"
	ColClass3      = "FSLI.3"
	ColAccount     = "GL Account"
	ColAccountName = "GL Account Name"
	ColReference   = "reference"
	ColDescription = "description"
	ColDate        = "date"
	ColAmount      = "Net amount"
)

// RequiredColumns lists every column the normalizer expects, in sheet order.
func RequiredColumns() []string {
	return []string{
		ColSeq, ColFund, ColClass1, ColClass3, ColAccount,
		ColAccountName, ColReference, ColDescription, ColDate, ColAmount,
	}
}

// CheckColumns verifies the header set of a source sheet and returns a
// SchemaError naming the first expected column that is absent.
func CheckColumns(headers []string) error {
	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[normalizeHeader(h)] = true
	}
	for _, want := range RequiredColumns() {
		if !present[normalizeHeader(want)] {
			return &SchemaError{Column: want}
		}
	}
	return nil
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}

// RawRow is an unparsed ledger row as handed over by the spreadsheet/CSV
// collaborators. Line is the 1-based position in the source sheet, kept for
// diagnostics.
type RawRow struct {
	Line        int
	Seq         string
	Fund        string
	Class1      string
	Class3      string
	Account     string
	AccountName string
	Reference   string
	Description string
	Date        string
	Amount      string
}

// NormalizeResult carries the usable transactions plus the rows that had to
// be excluded. Bad rows degrade coverage, they never fail the batch.
type NormalizeResult struct {
	Transactions []Transaction
	BadRows      []*RowError
}

// Normalize validates raw rows into canonical transactions. Rows with an
// unparseable date or amount, or an empty account code, are excluded and
// reported; ordering of the result is by seq ascending so presentation has
// a stable tie-break within a period.
func Normalize(rows []RawRow) NormalizeResult {
	res := NormalizeResult{Transactions: make([]Transaction, 0, len(rows))}
	for _, row := range rows {
		tx, rerr := normalizeRow(row)
		if rerr != nil {
			res.BadRows = append(res.BadRows, rerr)
			continue
		}
		res.Transactions = append(res.Transactions, tx)
	}
	sort.SliceStable(res.Transactions, func(i, j int) bool {
		return res.Transactions[i].Seq < res.Transactions[j].Seq
	})
	return res
}

func normalizeRow(row RawRow) (Transaction, *RowError) {
	account := strings.TrimSpace(row.Account)
	if account == "" {
		return Transaction{}, &RowError{
			Line: row.Line, Field: ColAccount, Value: row.Account,
			Cause: errors.New("account code required"),
		}
	}
	seq, err := strconv.ParseInt(strings.TrimSpace(row.Seq), 10, 64)
	if err != nil {
		seq = 0 // seq only breaks presentation ties; a bad one is not fatal
	}
	date, err := ParseDate(row.Date)
	if err != nil {
		return Transaction{}, &RowError{
			Line: row.Line, Seq: seq, Field: ColDate, Value: row.Date, Cause: err,
		}
	}
	amount, err := ParseAmount(row.Amount)
	if err != nil {
		return Transaction{}, &RowError{
			Line: row.Line, Seq: seq, Field: ColAmount, Value: row.Amount, Cause: err,
		}
	}
	return Transaction{
		Seq:         seq,
		Fund:        strings.TrimSpace(row.Fund),
		Class1:      strings.ToUpper(strings.TrimSpace(row.Class1)),
		Class3:      strings.ToUpper(strings.TrimSpace(row.Class3)),
		Account:     account,
		AccountName: strings.TrimSpace(row.AccountName),
		Reference:   strings.TrimSpace(row.Reference),
		Description: strings.TrimSpace(row.Description),
		Date:        date,
		Amount:      amount,
	}, nil
}
