package settlement

import (
	"fmt"

	"cashflow/pkg/domain"
	"cashflow/pkg/errors"
)

type transferCell struct {
	amount  int64
	channel string
}

// TransferMatrix accumulates raw transfers between parties during a settlement
// run. Repeated transfers along the same ordered pair are summed; the channel
// of the most recent one is kept.
type TransferMatrix struct {
	cells [][]transferCell
}

func NewTransferMatrix(n int) *TransferMatrix {
	cells := make([][]transferCell, n)
	for i := range cells {
		cells[i] = make([]transferCell, n)
	}
	return &TransferMatrix{cells: cells}
}

func (m *TransferMatrix) Size() int { return len(m.cells) }

// Add records amount flowing from -> to over channel.
func (m *TransferMatrix) Add(from, to int, amount int64, channel string) error {
	if from == to {
		return fmt.Errorf("self-transfer for party %d", from)
	}
	if amount <= 0 {
		return fmt.Errorf("non-positive transfer amount %d", amount)
	}

	total, err := addAmount(m.cells[from][to].amount, amount)
	if err != nil {
		return errors.Wrap(err, fmt.Sprintf("transfer total %d->%d", from, to))
	}
	m.cells[from][to] = transferCell{amount: total, channel: channel}
	return nil
}

// Amount returns the accumulated amount from -> to.
func (m *TransferMatrix) Amount(from, to int) int64 {
	return m.cells[from][to].amount
}

// Simplify cancels opposing transfers between every pair of parties and
// returns what is left, at most one transfer per pair. Pairs are visited in
// ascending (i, j) order with i < j; both cells of a visited pair are cleared,
// so a second call on the same matrix returns nothing.
func Simplify(parties []domain.Party, m *TransferMatrix) []domain.Transfer {
	transfers := make([]domain.Transfer, 0)
	n := m.Size()

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			forward := m.cells[i][j]
			backward := m.cells[j][i]

			switch {
			case forward.amount > backward.amount:
				transfers = append(transfers, newTransfer(parties, i, j, forward.amount-backward.amount, forward.channel))
			case backward.amount > forward.amount:
				transfers = append(transfers, newTransfer(parties, j, i, backward.amount-forward.amount, backward.channel))
			}

			m.cells[i][j] = transferCell{}
			m.cells[j][i] = transferCell{}
		}
	}

	return transfers
}

func newTransfer(parties []domain.Party, from, to int, amount int64, channel string) domain.Transfer {
	return domain.Transfer{
		From:      parties[from].Name,
		To:        parties[to].Name,
		FromIndex: from,
		ToIndex:   to,
		Amount:    amount,
		Channel:   channel,
	}
}
