// ==============================================================================
// SETTLEMENT ENGINE - internal/settlement/engine.go
// ==============================================================================
// Greedy cash flow minimisation: repeatedly pair the largest debtor with the
// largest channel-compatible creditor, bridging through a universal
// intermediary when no compatible creditor exists, then cancel opposing
// transfers between each pair.
//
// Each iteration settles at least one party for good, so the loop runs at most
// n times. Without channel constraints this yields at most n-1 transfers; with
// them, at most 2(n-1).
// ==============================================================================
package settlement

import (
	"fmt"

	"cashflow/pkg/domain"
	"cashflow/pkg/errors"
)

// Result carries the outcome of a settlement run.
type Result struct {
	// Balances are the initial net balances derived from the debt matrix.
	Balances  []int64
	Transfers []domain.Transfer
	Fallbacks []Fallback
}

// ledger owns every piece of mutable state of a single run.
type ledger struct {
	parties      []domain.Party
	balances     []int64
	raw          *TransferMatrix
	intermediary int
	zeroed       int
	fallbacks    []Fallback
}

// Settle computes the settlement transfers for parties owing each other the
// amounts in debts. intermediary is the index of the party that accepts every
// channel in use, or domain.NoIntermediary.
func Settle(parties []domain.Party, debts domain.DebtMatrix, intermediary int) ([]domain.Transfer, error) {
	res, err := Run(parties, debts, intermediary)
	if err != nil {
		return nil, err
	}
	return res.Transfers, nil
}

// Run is Settle with the intermediate details kept.
func Run(parties []domain.Party, debts domain.DebtMatrix, intermediary int) (*Result, error) {
	n := len(parties)
	if debts.Size() != n {
		return nil, errors.Wrap(errors.ErrInvalidDebtMatrix,
			fmt.Sprintf("matrix has %d rows for %d parties", debts.Size(), n))
	}
	if intermediary != domain.NoIntermediary && (intermediary < 0 || intermediary >= n) {
		return nil, errors.Wrap(errors.ErrInvalidIntermediary,
			fmt.Sprintf("index %d out of range for %d parties", intermediary, n))
	}

	balances, err := NetBalances(debts)
	if err != nil {
		return nil, err
	}

	l := &ledger{
		parties:      parties,
		balances:     append([]int64(nil), balances...),
		raw:          NewTransferMatrix(n),
		intermediary: intermediary,
	}
	if err := l.run(); err != nil {
		return nil, err
	}

	return &Result{
		Balances:  balances,
		Transfers: Simplify(parties, l.raw),
		Fallbacks: l.fallbacks,
	}, nil
}

func (l *ledger) run() error {
	n := len(l.balances)
	for _, b := range l.balances {
		if b == 0 {
			l.zeroed++
		}
	}

	for iterations := 0; l.zeroed < n; iterations++ {
		if iterations > n {
			// every iteration settles a party, so this means the balances did
			// not sum to zero
			return errors.Wrap(errors.ErrUnsettled, "settlement loop did not converge")
		}

		debtor := minIndex(l.balances)
		if debtor < 0 {
			break
		}
		if l.balances[debtor] > 0 {
			return errors.Wrap(errors.ErrUnsettled, "creditors remain without debtors")
		}

		creditor, channel := matchCreditor(debtor, l.balances, l.parties)
		if creditor < 0 {
			if err := l.routeViaIntermediary(debtor); err != nil {
				return err
			}
			continue
		}

		if err := l.settlePair(debtor, creditor, channel); err != nil {
			return err
		}
	}

	return nil
}

// settlePair moves as much as possible from debtor to creditor, settling at
// least one of them.
func (l *ledger) settlePair(debtor, creditor int, channel string) error {
	owed, err := absAmount(l.balances[debtor])
	if err != nil {
		return err
	}
	amount := owed
	if l.balances[creditor] < amount {
		amount = l.balances[creditor]
	}

	if err := l.raw.Add(debtor, creditor, amount, channel); err != nil {
		return err
	}

	l.balances[debtor] += amount
	l.balances[creditor] -= amount

	if l.balances[debtor] == 0 {
		l.zeroed++
	}
	if l.balances[creditor] == 0 {
		l.zeroed++
	}
	return nil
}
