package ledger

import "github.com/shopspring/decimal"

// OpeningRow is one account/balance pair from the opening balance source.
type OpeningRow struct {
	Account string
	Balance decimal.Decimal
}

// OpeningBalances seeds per-account accumulation with all activity strictly
// before the ledger's earliest date. A nil map is the fully since-inception
// case: every account starts at zero.
type OpeningBalances map[string]decimal.Decimal

// SeedOpenings folds opening rows into a balance map. Listing the same
// account twice is tolerated only when the values agree exactly; a conflict
// yields a DuplicateAccountError because there is no defined way to
// reconcile the two.
func SeedOpenings(rows []OpeningRow) (OpeningBalances, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	out := make(OpeningBalances, len(rows))
	for _, row := range rows {
		if prev, ok := out[row.Account]; ok {
			if !prev.Equal(row.Balance) {
				return nil, &DuplicateAccountError{
					Account:     row.Account,
					Existing:    prev,
					Conflicting: row.Balance,
				}
			}
			continue
		}
		out[row.Account] = row.Balance
	}
	return out, nil
}

// Balance returns the seeded value for an account, zero when absent.
func (o OpeningBalances) Balance(account string) decimal.Decimal {
	if o == nil {
		return decimal.Decimal{}
	}
	return o[account]
}

// Has reports whether the account carries an explicit opening balance.
func (o OpeningBalances) Has(account string) bool {
	_, ok := o[account]
	return ok
}
