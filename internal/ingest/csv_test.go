package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zackfin/ledgerview/internal/ledger"
	"github.com/zackfin/ledgerview/internal/mapping"
)

const glSheet = `seq,Fund,FSLI.1,FSLI.3,GL Account,GL Account Name,reference,description,date,Net amount
1,GEN,REV,OPS,4000,Sales,INV-1,January sales,2024-01-10,"1,000.00"
2,GEN,CASH,OPS,1000,Cash,INV-1,January receipt,2024-01-10,(250.00)
`

func TestReadLedger(t *testing.T) {
	rows, err := ReadLedger(strings.NewReader(glSheet))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	require.Equal(t, 2, rows[0].Line)
	require.Equal(t, "1", rows[0].Seq)
	require.Equal(t, "REV", rows[0].Class1)
	require.Equal(t, "4000", rows[0].Account)
	require.Equal(t, "1,000.00", rows[0].Amount)
	require.Equal(t, "(250.00)", rows[1].Amount)
}

func TestReadLedgerHeaderCaseInsensitive(t *testing.T) {
	sheet := strings.ToUpper(strings.SplitN(glSheet, "\n", 2)[0]) + "\n" +
		strings.SplitN(glSheet, "\n", 2)[1]
	rows, err := ReadLedger(strings.NewReader(sheet))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "4000", rows[0].Account)
}

func TestReadLedgerMissingColumn(t *testing.T) {
	sheet := `seq,Fund,FSLI.1,FSLI.3,GL Account,GL Account Name,reference,description,date
1,GEN,REV,OPS,4000,Sales,INV-1,sales,2024-01-10
`
	_, err := ReadLedger(strings.NewReader(sheet))
	var schemaErr *ledger.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	require.Equal(t, ledger.ColAmount, schemaErr.Column)
}

func TestReadLedgerRaggedRows(t *testing.T) {
	sheet := glSheet + "3,GEN,REV\n"
	rows, err := ReadLedger(strings.NewReader(sheet))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	// Short rows surface empty fields; the normalizer decides their fate.
	require.Equal(t, "", rows[2].Amount)
}

func TestReadMappingTable(t *testing.T) {
	src := `FSLI.1,FSLI.3,Line,Section,NormalSign,Order
REV,OPS,Revenue,,+1,1
EXP,OPS,Operating Expenses,,-1,2
`
	rows, err := ReadMappingTable(strings.NewReader(src), mapping.StatementIncome)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, mapping.Row{Class1: "REV", Class3: "OPS", Line: "Revenue", Sign: 1, Order: 1}, rows[0])
	require.Equal(t, -1, rows[1].Sign)
}

func TestReadMappingTableSignAlias(t *testing.T) {
	src := `FSLI.1,FSLI.3,Line,Section,Sign
CASH,OPS,Cash,Assets,1
`
	rows, err := ReadMappingTable(strings.NewReader(src), mapping.StatementBalance)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "Assets", rows[0].Section)
	require.Equal(t, 0, rows[0].Order, "missing order column defaults to zero")
}

func TestReadMappingTableMissingSign(t *testing.T) {
	src := `FSLI.1,FSLI.3,Line
REV,OPS,Revenue
`
	_, err := ReadMappingTable(strings.NewReader(src), mapping.StatementIncome)
	var schemaErr *ledger.SchemaError
	require.ErrorAs(t, err, &schemaErr)
}

func TestReadMappingTableBadSign(t *testing.T) {
	src := `FSLI.1,FSLI.3,Line,NormalSign
REV,OPS,Revenue,positive
`
	_, err := ReadMappingTable(strings.NewReader(src), mapping.StatementIncome)
	require.Error(t, err)
	require.Contains(t, err.Error(), "row 2")
}

func TestReadOpeningBalances(t *testing.T) {
	src := `GL Account,balance
1000,"2,500.00"
2000,(100.00)
`
	rows, err := ReadOpeningBalances(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "1000", rows[0].Account)
	require.Equal(t, "2500", rows[0].Balance.String())
	require.Equal(t, "-100", rows[1].Balance.String())
}

func TestReadOpeningBalancesAltColumn(t *testing.T) {
	src := `GL Account,Opening Balance
1000,10
`
	rows, err := ReadOpeningBalances(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestReadOpeningBalancesBadValue(t *testing.T) {
	src := `GL Account,balance
1000,not-a-number
`
	_, err := ReadOpeningBalances(strings.NewReader(src))
	require.Error(t, err)
	require.Contains(t, err.Error(), "row 2")
}

func TestReadOpeningBalancesMissingAccountColumn(t *testing.T) {
	src := `Account,balance
1000,10
`
	_, err := ReadOpeningBalances(strings.NewReader(src))
	var schemaErr *ledger.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	require.Equal(t, ledger.ColAccount, schemaErr.Column)
}
