// Package ingest reads the tabular inputs of the reporting engine: the GL
// sheet, the two classification tables, and the optional opening balances.
// It only shapes bytes into raw records; validation of row content belongs
// to the ledger normalizer.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/zackfin/ledgerview/internal/ledger"
	"github.com/zackfin/ledgerview/internal/mapping"
)

// header index lookup tolerant of case and stray whitespace.
type headerIndex map[string]int

func indexHeaders(headers []string) headerIndex {
	idx := make(headerIndex, len(headers))
	for i, h := range headers {
		idx[normalize(h)] = i
	}
	return idx
}

func normalize(h string) string { return strings.ToLower(strings.TrimSpace(h)) }

func (h headerIndex) get(record []string, column string) string {
	i, ok := h[normalize(column)]
	if !ok || i >= len(record) {
		return ""
	}
	return record[i]
}

func (h headerIndex) has(columns ...string) (string, bool) {
	for _, c := range columns {
		if _, ok := h[normalize(c)]; ok {
			return c, true
		}
	}
	return "", false
}

// ReadLedger parses the GL sheet into raw rows. A missing required column
// is a ledger.SchemaError and aborts the whole run.
func ReadLedger(r io.Reader) ([]ledger.RawRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("ingest: read GL header: %w", err)
	}
	if err := ledger.CheckColumns(headers); err != nil {
		return nil, err
	}
	idx := indexHeaders(headers)

	var rows []ledger.RawRow
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ingest: read GL row: %w", err)
		}
		line++
		rows = append(rows, ledger.RawRow{
			Line:        line,
			Seq:         idx.get(record, ledger.ColSeq),
			Fund:        idx.get(record, ledger.ColFund),
			Class1:      idx.get(record, ledger.ColClass1),
			Class3:      idx.get(record, ledger.ColClass3),
			Account:     idx.get(record, ledger.ColAccount),
			AccountName: idx.get(record, ledger.ColAccountName),
			Reference:   idx.get(record, ledger.ColReference),
			Description: idx.get(record, ledger.ColDescription),
			Date:        idx.get(record, ledger.ColDate),
			Amount:      idx.get(record, ledger.ColAmount),
		})
	}
	return rows, nil
}

// ReadMappingTable parses a classification table. Sign accepts either a
// "NormalSign" or "Sign" column with +1/-1 values; "Section" is optional
// for the income table.
func ReadMappingTable(r io.Reader, statement string) ([]mapping.Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("ingest: read %s mapping header: %w", statement, err)
	}
	idx := indexHeaders(headers)
	for _, required := range []string{ledger.ColClass1, ledger.ColClass3, "Line"} {
		if _, ok := idx.has(required); !ok {
			return nil, &ledger.SchemaError{Column: required}
		}
	}
	signColumn, ok := idx.has("NormalSign", "Sign")
	if !ok {
		return nil, &ledger.SchemaError{Column: "NormalSign"}
	}

	var rows []mapping.Row
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ingest: read %s mapping row: %w", statement, err)
		}
		line++
		sign, err := parseSign(idx.get(record, signColumn))
		if err != nil {
			return nil, fmt.Errorf("ingest: %s mapping row %d: %w", statement, line, err)
		}
		order, err := parseOrder(idx.get(record, "Order"))
		if err != nil {
			return nil, fmt.Errorf("ingest: %s mapping row %d: %w", statement, line, err)
		}
		rows = append(rows, mapping.Row{
			Class1:  idx.get(record, ledger.ColClass1),
			Class3:  idx.get(record, ledger.ColClass3),
			Line:    strings.TrimSpace(idx.get(record, "Line")),
			Section: strings.TrimSpace(idx.get(record, "Section")),
			Sign:    sign,
			Order:   order,
		})
	}
	return rows, nil
}

func parseSign(raw string) (int, error) {
	s := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "+"))
	sign, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid sign %q", raw)
	}
	return sign, nil
}

func parseOrder(raw string) (int, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, nil
	}
	order, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid order %q", raw)
	}
	return order, nil
}

// ReadOpeningBalances parses the optional opening balance table. Malformed
// balances here are structural: unlike GL rows there is no partial-coverage
// story for a seeding table, so the first bad value fails the load.
func ReadOpeningBalances(r io.Reader) ([]ledger.OpeningRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("ingest: read opening balance header: %w", err)
	}
	idx := indexHeaders(headers)
	if _, ok := idx.has(ledger.ColAccount); !ok {
		return nil, &ledger.SchemaError{Column: ledger.ColAccount}
	}
	balanceColumn, ok := idx.has("balance", "Opening Balance")
	if !ok {
		return nil, &ledger.SchemaError{Column: "balance"}
	}

	var rows []ledger.OpeningRow
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ingest: read opening balance row: %w", err)
		}
		line++
		account := strings.TrimSpace(idx.get(record, ledger.ColAccount))
		if account == "" {
			return nil, fmt.Errorf("ingest: opening balance row %d: account required", line)
		}
		balance, err := ledger.ParseAmount(idx.get(record, balanceColumn))
		if err != nil {
			return nil, fmt.Errorf("ingest: opening balance row %d: %w", line, err)
		}
		rows = append(rows, ledger.OpeningRow{Account: account, Balance: balance})
	}
	return rows, nil
}
