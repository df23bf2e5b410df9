package settlement

import (
	"math"
	"testing"

	"cashflow/pkg/domain"
	"cashflow/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNetBalances(t *testing.T) {
	_, debts := worldBankScenario()

	balances, err := NetBalances(debts)
	require.NoError(t, err)
	assert.Equal(t, []int64{1000, 700, -700, -500, -500}, balances)
}

func TestNetBalancesIgnoresSelfDebt(t *testing.T) {
	debts := domain.DebtMatrix{{5, 10}, {0, 0}}

	balances, err := NetBalances(debts)
	require.NoError(t, err)
	assert.Equal(t, []int64{-10, 10}, balances)
}

func TestCheckedArithmetic(t *testing.T) {
	_, err := addAmount(math.MaxInt64, 1)
	assert.ErrorIs(t, err, errors.ErrAmountOverflow)
	_, err = addAmount(math.MinInt64, -1)
	assert.ErrorIs(t, err, errors.ErrAmountOverflow)
	_, err = subAmount(0, math.MinInt64)
	assert.ErrorIs(t, err, errors.ErrAmountOverflow)
	_, err = absAmount(math.MinInt64)
	assert.ErrorIs(t, err, errors.ErrAmountOverflow)

	v, err := absAmount(-42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), v)
}

func TestMinIndex(t *testing.T) {
	assert.Equal(t, -1, minIndex([]int64{0, 0, 0}))
	assert.Equal(t, -1, minIndex(nil))
	assert.Equal(t, 2, minIndex([]int64{0, -5, -9, 14}))
	// first of equal minima wins
	assert.Equal(t, 1, minIndex([]int64{10, -5, 0, -5}))
}

func TestSimpleMaxIndex(t *testing.T) {
	assert.Equal(t, -1, simpleMaxIndex([]int64{0, 0}))
	assert.Equal(t, -1, simpleMaxIndex([]int64{-3, 0}))
	assert.Equal(t, 3, simpleMaxIndex([]int64{1, -20, 0, 19}))
	assert.Equal(t, 0, simpleMaxIndex([]int64{7, -14, 7}))
}

func TestMatchCreditorPrefersLargestCompatible(t *testing.T) {
	parties := []domain.Party{
		party("Debtor", "PayTM", "UPI"),
		party("Large", "Cash"),
		party("Medium", "UPI", "PayTM"),
		party("Small", "UPI"),
	}
	balances := []int64{-90, 60, 20, 10}

	idx, channel := matchCreditor(0, balances, parties)
	assert.Equal(t, 2, idx)
	assert.Equal(t, "PayTM", channel)
}

func TestMatchCreditorTieGoesToFirst(t *testing.T) {
	parties := []domain.Party{
		party("Debtor", "UPI"),
		party("First", "UPI"),
		party("Second", "UPI"),
	}

	idx, channel := matchCreditor(0, []int64{-40, 20, 20}, parties)
	assert.Equal(t, 1, idx)
	assert.Equal(t, "UPI", channel)
}

func TestMatchCreditorNoMatch(t *testing.T) {
	parties := []domain.Party{party("Debtor", "UPI"), party("Creditor", "Cash"), party("Settled", "UPI")}

	idx, channel := matchCreditor(0, []int64{-40, 40, 0}, parties)
	assert.Equal(t, -1, idx)
	assert.Empty(t, channel)
}

func TestVerifyDetectsUnsettledBalances(t *testing.T) {
	balances := []int64{-100, 100}

	require.NoError(t, Verify(balances, []domain.Transfer{{FromIndex: 0, ToIndex: 1, Amount: 100}}))

	err := Verify(balances, []domain.Transfer{{FromIndex: 0, ToIndex: 1, Amount: 60}})
	assert.ErrorIs(t, err, errors.ErrUnsettled)

	err = Verify(balances, []domain.Transfer{{FromIndex: 1, ToIndex: 1, Amount: 60}})
	assert.ErrorIs(t, err, errors.ErrUnsettled)

	err = Verify(balances, []domain.Transfer{{FromIndex: 0, ToIndex: 5, Amount: 100}})
	assert.ErrorIs(t, err, errors.ErrUnsettled)
}
