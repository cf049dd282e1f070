package statediff

import "github.com/eth2030/statediff/types"

// NodeMap is the node-hash preimage store: the union of every node
// referenced by either the pre- or post-state trie, keyed by its own
// hash. It satisfies trie.Store directly.
type NodeMap map[types.Hash][]byte

// Node looks up a node's RLP encoding by hash, satisfying trie.Store.
func (m NodeMap) Node(hash types.Hash) ([]byte, bool) {
	b, ok := m[hash]
	return b, ok
}

// AddressPreimages maps keccak(address) to the 20-byte address, for every
// account leaf the witness expects the walk to reach.
type AddressPreimages map[types.Hash]types.Address

// StorageKeyPreimages maps keccak(storage key) to the original 32-byte
// storage key, for every storage leaf the witness expects the walk to
// reach.
type StorageKeyPreimages map[types.Hash]types.Hash

// TransitionDB is the witness handed to FromTries: the node store shared
// by both trie shapes, the two preimage maps, and the two account-trie
// roots being diffed. It is read-only for the duration of a diff.
type TransitionDB struct {
	Nodes               NodeMap
	AddressPreimages    AddressPreimages
	StorageKeyPreimages StorageKeyPreimages
	StateRoot           types.Hash
	PostStateRoot       types.Hash
}
