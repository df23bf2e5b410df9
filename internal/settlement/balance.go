package settlement

import (
	"fmt"
	"math"

	"cashflow/pkg/domain"
	"cashflow/pkg/errors"
)

// NetBalances reduces a debt matrix to one net balance per party: everything
// the party is owed (its column) minus everything it owes (its row).
// The result always sums to zero.
func NetBalances(debts domain.DebtMatrix) ([]int64, error) {
	if !debts.IsSquare() {
		return nil, errors.Wrap(errors.ErrInvalidDebtMatrix, "matrix is not square")
	}

	n := debts.Size()
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if debts[i][j] < 0 {
				return nil, errors.Wrap(errors.ErrInvalidDebtMatrix,
					fmt.Sprintf("negative amount %d at [%d][%d]", debts[i][j], i, j))
			}
		}
	}

	balances := make([]int64, n)
	for k := 0; k < n; k++ {
		var incoming, outgoing int64
		var err error

		// column: what others owe k
		for i := 0; i < n; i++ {
			if incoming, err = addAmount(incoming, debts[i][k]); err != nil {
				return nil, errors.Wrap(err, fmt.Sprintf("incoming total for party %d", k))
			}
		}

		// row: what k owes others
		for j := 0; j < n; j++ {
			if outgoing, err = addAmount(outgoing, debts[k][j]); err != nil {
				return nil, errors.Wrap(err, fmt.Sprintf("outgoing total for party %d", k))
			}
		}

		// both totals are non-negative, so the difference cannot overflow
		balances[k] = incoming - outgoing
	}

	return balances, nil
}

func addAmount(a, b int64) (int64, error) {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return 0, errors.ErrAmountOverflow
	}
	return a + b, nil
}

func subAmount(a, b int64) (int64, error) {
	if b == math.MinInt64 {
		return 0, errors.ErrAmountOverflow
	}
	return addAmount(a, -b)
}

func absAmount(v int64) (int64, error) {
	if v == math.MinInt64 {
		return 0, errors.ErrAmountOverflow
	}
	if v < 0 {
		return -v, nil
	}
	return v, nil
}
