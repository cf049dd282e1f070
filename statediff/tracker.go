package statediff

import (
	"bytes"
	"sort"

	"github.com/eth2030/statediff/types"
)

// AccountEntry is one address's diff, flattened for reporting: whichever
// of Pre/Post is nil tells you whether this is a creation or a deletion.
type AccountEntry struct {
	Address types.Address
	Pre     *types.Account
	Post    *types.Account
}

func (e AccountEntry) IsInsert() bool { return e.Pre == nil && e.Post != nil }
func (e AccountEntry) IsDelete() bool { return e.Pre != nil && e.Post == nil }
func (e AccountEntry) IsUpdate() bool { return e.Pre != nil && e.Post != nil }

// Summary reports aggregate counts across both the account and storage
// diff maps: how many entries are creations, deletions, or value changes.
// Ordering of the walk's own leaf-handler invocations is already
// deterministic (nibble-ascending, left-before-right); Entries and
// StorageEntries add a stable, key-sorted view on top for reporting.
type Summary struct {
	AccountInserts int
	AccountDeletes int
	AccountUpdates int
	StorageInserts int
	StorageDeletes int
	StorageUpdates int
}

// Entries returns every account diff sorted by address, for deterministic
// reporting regardless of Go's randomized map iteration order.
func (d *StateDiff) Entries() []AccountEntry {
	out := make([]AccountEntry, 0, len(d.AccountDiffs))
	for addr, pair := range d.AccountDiffs {
		out = append(out, AccountEntry{Address: addr, Pre: pair.Pre, Post: pair.Post})
	}
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i].Address[:], out[j].Address[:]) < 0
	})
	return out
}

// StorageEntries returns every storage diff for addr sorted by storage
// key, or nil if addr has no recorded storage changes.
func (d *StateDiff) StorageEntries(addr types.Address) []struct {
	StorageKey types.Hash
	Pair       StoragePair
} {
	inner, ok := d.StorageDiffs[addr]
	if !ok {
		return nil
	}
	out := make([]struct {
		StorageKey types.Hash
		Pair       StoragePair
	}, 0, len(inner))
	for key, pair := range inner {
		out = append(out, struct {
			StorageKey types.Hash
			Pair       StoragePair
		}{StorageKey: key, Pair: pair})
	}
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i].StorageKey[:], out[j].StorageKey[:]) < 0
	})
	return out
}

// Summarize computes aggregate creation/deletion/update counts over the
// whole diff.
func (d *StateDiff) Summarize() Summary {
	var s Summary
	for _, pair := range d.AccountDiffs {
		switch {
		case pair.Pre == nil && pair.Post != nil:
			s.AccountInserts++
		case pair.Pre != nil && pair.Post == nil:
			s.AccountDeletes++
		default:
			s.AccountUpdates++
		}
	}
	for _, inner := range d.StorageDiffs {
		for _, pair := range inner {
			switch {
			case pair.Pre == nil && pair.Post != nil:
				s.StorageInserts++
			case pair.Pre != nil && pair.Post == nil:
				s.StorageDeletes++
			default:
				s.StorageUpdates++
			}
		}
	}
	return s
}
