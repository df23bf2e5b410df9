package settlement

import (
	"fmt"

	"cashflow/pkg/domain"
	"cashflow/pkg/errors"
)

// Verify applies transfers to a copy of balances (the payer's balance rises,
// the payee's falls) and checks that every party ends at zero.
func Verify(balances []int64, transfers []domain.Transfer) error {
	projected := append([]int64(nil), balances...)

	for _, t := range transfers {
		if t.FromIndex == t.ToIndex {
			return errors.Wrap(errors.ErrUnsettled, fmt.Sprintf("self-transfer by %q", t.From))
		}
		if t.Amount <= 0 {
			return errors.Wrap(errors.ErrUnsettled, fmt.Sprintf("non-positive transfer %s", t))
		}
		if t.FromIndex < 0 || t.FromIndex >= len(projected) || t.ToIndex < 0 || t.ToIndex >= len(projected) {
			return errors.Wrap(errors.ErrUnsettled, fmt.Sprintf("transfer %s references unknown party", t))
		}

		var err error
		if projected[t.FromIndex], err = addAmount(projected[t.FromIndex], t.Amount); err != nil {
			return err
		}
		if projected[t.ToIndex], err = subAmount(projected[t.ToIndex], t.Amount); err != nil {
			return err
		}
	}

	for i, b := range projected {
		if b != 0 {
			return errors.Wrap(errors.ErrUnsettled, fmt.Sprintf("party %d left with balance %d", i, b))
		}
	}
	return nil
}
