package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	// NoIntermediary disables the intermediary fallback.
	NoIntermediary = -1

	// DefaultIntermediary is the conventional position of the universal
	// intermediary ("world bank") in the party list.
	DefaultIntermediary = 0
)

// Party is a participant in a settlement run
type Party struct {
	Name     string     `json:"name"`
	Channels ChannelSet `json:"channels"`
}

// DebtMatrix holds direct obligations: entry [i][j] is the amount party i
// owes party j.
type DebtMatrix [][]int64

// NewDebtMatrix returns an n x n zero matrix.
func NewDebtMatrix(n int) DebtMatrix {
	m := make(DebtMatrix, n)
	for i := range m {
		m[i] = make([]int64, n)
	}
	return m
}

func (m DebtMatrix) Size() int { return len(m) }

// IsSquare reports whether every row has exactly Size() entries.
func (m DebtMatrix) IsSquare() bool {
	for _, row := range m {
		if len(row) != len(m) {
			return false
		}
	}
	return true
}

// Transfer is a single payment that moves a debtor toward a zero balance
type Transfer struct {
	From      string `json:"from"`
	To        string `json:"to"`
	FromIndex int    `json:"from_index"`
	ToIndex   int    `json:"to_index"`
	Amount    int64  `json:"amount"`
	Channel   string `json:"channel"`
}

func (t Transfer) String() string {
	return fmt.Sprintf("%s pays %d to %s via %s", t.From, t.Amount, t.To, t.Channel)
}

// Balance is a party's net position: positive is owed money, negative owes.
type Balance struct {
	Party  string `json:"party"`
	Amount int64  `json:"amount"`
}

// Plan is the outcome of one settlement run
type Plan struct {
	ID               uuid.UUID  `json:"id"`
	Parties          []Party    `json:"parties"`
	Intermediary     int        `json:"intermediary"`
	Balances         []Balance  `json:"balances"`
	Transfers        []Transfer `json:"transfers"`
	IntermediaryHops int        `json:"intermediary_hops"`
	CreatedAt        time.Time  `json:"created_at"`
}

// TotalVolume sums the amounts of every transfer in the plan.
func (p *Plan) TotalVolume() int64 {
	var total int64
	for _, t := range p.Transfers {
		total += t.Amount
	}
	return total
}
