package settlement

// minIndex returns the index of the most negative non-zero balance, or -1
// when every balance is settled. Ties go to the earliest party.
func minIndex(balances []int64) int {
	idx := -1
	for i, b := range balances {
		if b == 0 {
			continue
		}
		if idx < 0 || b < balances[idx] {
			idx = i
		}
	}
	return idx
}

// simpleMaxIndex returns the index of the largest positive balance without
// regard to channels, or -1 when no party is owed money.
func simpleMaxIndex(balances []int64) int {
	idx := -1
	for i, b := range balances {
		if b <= 0 {
			continue
		}
		if idx < 0 || b > balances[idx] {
			idx = i
		}
	}
	return idx
}
