package trie

import (
	"golang.org/x/crypto/sha3"

	"github.com/eth2030/statediff/types"
)

// HashNode returns the Keccak-256 hash of a node's raw RLP encoding -- the
// same hash a Store key is expected to be. The differ itself never
// calls this: the walker only ever follows hash references it is handed,
// it never derives one. This exists for callers building or validating a
// Store (tests, and any witness loader outside this package's scope)
// that need to confirm a node's claimed hash actually matches its bytes.
func HashNode(rlpEncoding []byte) types.Hash {
	d := sha3.NewLegacyKeccak256()
	d.Write(rlpEncoding)
	return types.BytesToHash(d.Sum(nil))
}
