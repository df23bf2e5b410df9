package domain

import (
	"encoding/json"
	"sort"
)

// CommonPaymentModes lists the payment channels offered by default when a
// party is registered.
var CommonPaymentModes = []string{
	"Google_Pay", "PayTM", "PhonePe", "UPI", "NEFT",
	"RTGS", "IMPS", "Bank_Transfer", "Cash", "Cheque",
}

// ChannelSet is an ordered, de-duplicated set of payment channel identifiers.
// Elements are kept in ascending lexical order so iteration, and therefore the
// choice of the first shared channel, is deterministic.
type ChannelSet struct {
	items []string
}

// NewChannelSet builds a set from the given channels, dropping duplicates and
// empty identifiers.
func NewChannelSet(channels ...string) ChannelSet {
	items := make([]string, 0, len(channels))
	for _, c := range channels {
		if c != "" {
			items = append(items, c)
		}
	}
	sort.Strings(items)

	out := items[:0]
	for _, c := range items {
		if len(out) > 0 && out[len(out)-1] == c {
			continue
		}
		out = append(out, c)
	}
	return ChannelSet{items: out}
}

func (s ChannelSet) Len() int { return len(s.items) }

func (s ChannelSet) IsEmpty() bool { return len(s.items) == 0 }

// Has reports whether channel is a member of the set.
func (s ChannelSet) Has(channel string) bool {
	i := sort.SearchStrings(s.items, channel)
	return i < len(s.items) && s.items[i] == channel
}

// First returns the smallest channel in the set.
func (s ChannelSet) First() (string, bool) {
	if len(s.items) == 0 {
		return "", false
	}
	return s.items[0], true
}

// Slice returns a copy of the channels in set order.
func (s ChannelSet) Slice() []string {
	out := make([]string, len(s.items))
	copy(out, s.items)
	return out
}

// Intersect returns the channels present in both sets, in set order. It walks
// both sorted slices once.
func (s ChannelSet) Intersect(other ChannelSet) ChannelSet {
	var out []string
	i, j := 0, 0
	for i < len(s.items) && j < len(other.items) {
		switch {
		case s.items[i] < other.items[j]:
			i++
		case s.items[i] > other.items[j]:
			j++
		default:
			out = append(out, s.items[i])
			i++
			j++
		}
	}
	return ChannelSet{items: out}
}

// FirstShared returns the first channel common to both sets.
func (s ChannelSet) FirstShared(other ChannelSet) (string, bool) {
	i, j := 0, 0
	for i < len(s.items) && j < len(other.items) {
		switch {
		case s.items[i] < other.items[j]:
			i++
		case s.items[i] > other.items[j]:
			j++
		default:
			return s.items[i], true
		}
	}
	return "", false
}

// Union returns every channel present in either set.
func (s ChannelSet) Union(other ChannelSet) ChannelSet {
	merged := make([]string, 0, len(s.items)+len(other.items))
	merged = append(merged, s.items...)
	merged = append(merged, other.items...)
	return NewChannelSet(merged...)
}

// ContainsAll reports whether every channel of other is in s.
func (s ChannelSet) ContainsAll(other ChannelSet) bool {
	return s.Intersect(other).Len() == other.Len()
}

func (s ChannelSet) MarshalJSON() ([]byte, error) {
	if s.items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.items)
}

func (s *ChannelSet) UnmarshalJSON(data []byte) error {
	var channels []string
	if err := json.Unmarshal(data, &channels); err != nil {
		return err
	}
	*s = NewChannelSet(channels...)
	return nil
}
