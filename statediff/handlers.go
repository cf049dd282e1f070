package statediff

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"

	"github.com/eth2030/statediff/trie"
	"github.com/eth2030/statediff/types"
)

// accountRLP mirrors the Ethereum canonical account record's field order
// exactly; the go-ethereum rlp decoder reads a list's elements positionally
// into a struct's exported fields in declaration order.
type accountRLP struct {
	Nonce       uint64
	Balance     *big.Int
	StorageRoot types.Hash
	CodeHash    types.Hash
}

func decodeAccount(value []byte) (*types.Account, error) {
	var raw accountRLP
	if err := rlp.DecodeBytes(value, &raw); err != nil {
		return nil, newError(BadRlp, "account leaf", err)
	}
	balance, overflow := uint256.FromBig(raw.Balance)
	if overflow {
		return nil, newError(BadRlp, "account balance overflows u256", nil)
	}
	return &types.Account{
		Nonce:       raw.Nonce,
		Balance:     balance,
		StorageRoot: raw.StorageRoot,
		CodeHash:    raw.CodeHash,
	}, nil
}

// decodeStorageValue decodes a storage leaf's RLP payload -- a big-endian
// integer, per the external RLP encoding of a scalar -- into a u256. Zero
// never appears on the wire (an empty slot is pruned, not stored as a
// zero-valued leaf), but nothing here depends on that; it would decode
// fine either way.
func decodeStorageValue(value []byte) (*uint256.Int, error) {
	var raw *big.Int
	if err := rlp.DecodeBytes(value, &raw); err != nil {
		return nil, newError(BadRlp, "storage leaf", err)
	}
	v, overflow := uint256.FromBig(raw)
	if overflow {
		return nil, newError(BadRlp, "storage value overflows u256", nil)
	}
	return v, nil
}

// storageRootRef turns an account's StorageRoot field into the reference
// the walker should descend into: absent if the account itself is absent,
// else whatever rootRef makes of its storage root.
func storageRootRef(acc *types.Account) trie.Ref {
	if acc == nil {
		return trie.AbsentRef()
	}
	return rootRef(acc.StorageRoot)
}

// packKey packs a leaf's full accumulated path (64 nibbles) into its
// 32-byte trie key, for preimage lookup.
func packKey(path trie.Nibbles) types.Hash {
	return types.BytesToHash(trie.PackNibbles(path))
}

// AccountSink is the LeafSink bound to the account trie: every account
// leaf that differs between the pre- and post-state tries passes through
// here, gets recorded, and triggers a nested storage walk.
type AccountSink struct {
	walker *Walker
	db     *TransitionDB
	diff   *StateDiff
}

// NewAccountSink returns a sink recording into diff and, for each account
// leaf it sees, re-entering walker on that account's two storage roots.
func NewAccountSink(walker *Walker, db *TransitionDB, diff *StateDiff) *AccountSink {
	return &AccountSink{walker: walker, db: db, diff: diff}
}

func (s *AccountSink) OnLeaf(path trie.Nibbles, left, right *trie.Leaf) error {
	keyHash := packKey(path)
	addr, ok := s.db.AddressPreimages[keyHash]
	if !ok {
		return newError(MissingPreimage, fmt.Sprintf("no address preimage for %s", keyHash.Hex()), nil)
	}

	var preAcc, postAcc *types.Account
	if left != nil {
		a, err := decodeAccount(left.Value)
		if err != nil {
			return err
		}
		preAcc = a
	}
	if right != nil {
		a, err := decodeAccount(right.Value)
		if err != nil {
			return err
		}
		postAcc = a
	}
	s.diff.recordAccount(addr, preAcc, postAcc)

	storageSink := &StorageSink{db: s.db, diff: s.diff, addr: addr}
	return s.walker.Walk(storageRootRef(preAcc), storageRootRef(postAcc), trie.Nibbles{}, storageSink)
}

// StorageSink is the LeafSink bound to one address's storage trie.
type StorageSink struct {
	db   *TransitionDB
	diff *StateDiff
	addr types.Address
}

func (s *StorageSink) OnLeaf(path trie.Nibbles, left, right *trie.Leaf) error {
	keyHash := packKey(path)
	storageKey, ok := s.db.StorageKeyPreimages[keyHash]
	if !ok {
		return newError(MissingPreimage, fmt.Sprintf("no storage-key preimage for %s", keyHash.Hex()), nil)
	}

	var preVal, postVal *uint256.Int
	if left != nil {
		v, err := decodeStorageValue(left.Value)
		if err != nil {
			return err
		}
		preVal = v
	}
	if right != nil {
		v, err := decodeStorageValue(right.Value)
		if err != nil {
			return err
		}
		postVal = v
	}
	s.diff.recordStorage(s.addr, storageKey, preVal, postVal)
	return nil
}
