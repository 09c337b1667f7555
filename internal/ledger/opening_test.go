package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestSeedOpenings(t *testing.T) {
	openings, err := SeedOpenings([]OpeningRow{
		{Account: "1000", Balance: decimal.RequireFromString("250.50")},
		{Account: "2000", Balance: decimal.RequireFromString("-10")},
	})
	require.NoError(t, err)
	require.True(t, openings.Has("1000"))
	require.True(t, openings.Balance("1000").Equal(decimal.RequireFromString("250.50")))
	require.False(t, openings.Has("9999"))
	require.True(t, openings.Balance("9999").IsZero())
}

func TestSeedOpeningsEmpty(t *testing.T) {
	openings, err := SeedOpenings(nil)
	require.NoError(t, err)
	require.Nil(t, openings)
	require.True(t, openings.Balance("1000").IsZero())
	require.False(t, openings.Has("1000"))
}

func TestSeedOpeningsEqualDuplicate(t *testing.T) {
	openings, err := SeedOpenings([]OpeningRow{
		{Account: "1000", Balance: decimal.RequireFromString("100")},
		{Account: "1000", Balance: decimal.RequireFromString("100.00")},
	})
	require.NoError(t, err)
	require.True(t, openings.Balance("1000").Equal(decimal.RequireFromString("100")))
}

func TestSeedOpeningsConflict(t *testing.T) {
	_, err := SeedOpenings([]OpeningRow{
		{Account: "1000", Balance: decimal.RequireFromString("100")},
		{Account: "1000", Balance: decimal.RequireFromString("101")},
	})
	var dup *DuplicateAccountError
	require.ErrorAs(t, err, &dup)
	require.Equal(t, "1000", dup.Account)
}
