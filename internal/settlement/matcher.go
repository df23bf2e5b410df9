package settlement

import (
	"fmt"

	"cashflow/pkg/domain"
	"cashflow/pkg/errors"
)

// matchCreditor finds the creditor with the largest positive balance that
// shares at least one channel with debtor. It returns -1 when no creditor
// qualifies. Ties go to the earliest party because only a strictly larger
// balance replaces the running best.
func matchCreditor(debtor int, balances []int64, parties []domain.Party) (int, string) {
	best := -1
	var channel string

	for i, b := range balances {
		if b <= 0 {
			continue
		}

		shared, ok := parties[debtor].Channels.FirstShared(parties[i].Channels)
		if !ok {
			continue
		}

		if best < 0 || b > balances[best] {
			best = i
			channel = shared
		}
	}

	return best, channel
}

// Fallback describes one deficit routed through the intermediary.
type Fallback struct {
	Debtor     int
	Creditor   int
	Amount     int64
	InChannel  string
	OutChannel string
}

// routeViaIntermediary bridges a debtor that shares no channel with any
// creditor. The full deficit goes debtor -> intermediary -> largest creditor,
// the creditor absorbs the debtor's balance and the debtor is settled.
//
// The intermediary only conducts funds here: both hops carry the same amount,
// so its own balance is left untouched.
func (l *ledger) routeViaIntermediary(debtor int) error {
	name := l.parties[debtor].Name

	if l.intermediary == domain.NoIntermediary {
		return errors.Wrap(errors.ErrNoIntermediary, fmt.Sprintf("debtor %q", name))
	}

	creditor := simpleMaxIndex(l.balances)
	if creditor < 0 {
		return errors.Wrap(errors.ErrUnsettled, fmt.Sprintf("no creditor left for debtor %q", name))
	}

	hub := l.intermediary
	if debtor == hub || creditor == hub {
		return errors.Wrap(errors.ErrIntermediaryMisconfigured, fmt.Sprintf(
			"%q shares no channel with creditor %q", l.parties[debtor].Name, l.parties[creditor].Name))
	}

	inChannel, ok := l.parties[debtor].Channels.First()
	if !ok {
		return errors.Wrap(errors.ErrEmptyChannelSet, fmt.Sprintf("party %q", name))
	}
	outChannel, ok := l.parties[creditor].Channels.First()
	if !ok {
		return errors.Wrap(errors.ErrEmptyChannelSet, fmt.Sprintf("party %q", l.parties[creditor].Name))
	}

	hubChannels := l.parties[hub].Channels
	for _, c := range []string{inChannel, outChannel} {
		if !hubChannels.Has(c) {
			return errors.Wrap(errors.ErrIntermediaryMisconfigured, fmt.Sprintf(
				"intermediary %q does not accept channel %q", l.parties[hub].Name, c))
		}
	}

	amount, err := absAmount(l.balances[debtor])
	if err != nil {
		return err
	}
	absorbed, err := addAmount(l.balances[creditor], l.balances[debtor])
	if err != nil {
		return err
	}

	if err := l.raw.Add(debtor, hub, amount, inChannel); err != nil {
		return err
	}
	if err := l.raw.Add(hub, creditor, amount, outChannel); err != nil {
		return err
	}

	l.balances[creditor] = absorbed
	l.balances[debtor] = 0
	l.zeroed++
	if absorbed == 0 {
		l.zeroed++
	}

	l.fallbacks = append(l.fallbacks, Fallback{
		Debtor:     debtor,
		Creditor:   creditor,
		Amount:     amount,
		InChannel:  inChannel,
		OutChannel: outChannel,
	})

	return nil
}
