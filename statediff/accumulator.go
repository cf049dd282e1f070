package statediff

import (
	"github.com/holiman/uint256"

	"github.com/eth2030/statediff/types"
)

// AccountPair is a (pre, post) account snapshot. A nil side means the
// account did not exist there: nil Pre is creation, nil Post is deletion.
type AccountPair struct {
	Pre  *types.Account
	Post *types.Account
}

// StoragePair is a (pre, post) storage-slot value. A nil side means the
// slot was absent there. A trie does not store zero-valued slots and
// FromData maps a zero value to nil; a zero-valued leaf that does reach
// the walk is recorded as a non-nil zero.
type StoragePair struct {
	Pre  *uint256.Int
	Post *uint256.Int
}

// StateDiff is the output of a diff: every account whose record changed,
// and, per address, every storage slot whose value changed.
type StateDiff struct {
	AccountDiffs map[types.Address]AccountPair
	StorageDiffs map[types.Address]map[types.Hash]StoragePair
}

// newStateDiff returns an empty accumulator, populated during the walk.
func newStateDiff() *StateDiff {
	return &StateDiff{
		AccountDiffs: make(map[types.Address]AccountPair),
		StorageDiffs: make(map[types.Address]map[types.Hash]StoragePair),
	}
}

// recordAccount appends an account-level diff entry.
func (d *StateDiff) recordAccount(addr types.Address, pre, post *types.Account) {
	d.AccountDiffs[addr] = AccountPair{Pre: pre, Post: post}
}

// recordStorage appends a storage-slot diff entry, creating the
// per-address inner map on first write.
func (d *StateDiff) recordStorage(addr types.Address, key types.Hash, pre, post *uint256.Int) {
	inner, ok := d.StorageDiffs[addr]
	if !ok {
		inner = make(map[types.Hash]StoragePair)
		d.StorageDiffs[addr] = inner
	}
	inner[key] = StoragePair{Pre: pre, Post: post}
}
