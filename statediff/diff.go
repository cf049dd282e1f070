package statediff

import (
	"github.com/eth2030/statediff/log"
	"github.com/eth2030/statediff/trie"
	"github.com/eth2030/statediff/types"
)

var logger = log.Default().Module("statediff")

// rootRef turns a state or storage root hash into the reference the
// walker should descend into. The empty-trie hash (keccak256(rlp(""))),
// like a literal zero hash, names a trie with no nodes at all: treating
// it as a hash reference would send the walker looking for a node the
// store never had reason to hold.
func rootRef(root types.Hash) trie.Ref {
	if root == types.EmptyRootHash || root.IsZero() {
		return trie.AbsentRef()
	}
	return trie.HashRef(root)
}

// FromTries computes the full state diff between db.StateRoot and
// db.PostStateRoot: an empty accumulator is created, the walker is driven
// across the account trie with an AccountSink bound to it, and the
// accumulator is returned once the walk completes without error. The walk
// is synchronous; FromTries does not return until every differing leaf
// has been recorded.
func FromTries(db *TransitionDB) (*StateDiff, error) {
	logDiffStarted(db.StateRoot, db.PostStateRoot)
	diff := newStateDiff()
	walker := NewWalker(db.Nodes)
	sink := NewAccountSink(walker, db, diff)

	lRef := rootRef(db.StateRoot)
	rRef := rootRef(db.PostStateRoot)
	if err := walker.Walk(lRef, rRef, trie.Nibbles{}, sink); err != nil {
		logDiffFailed(err)
		return nil, err
	}
	logDiffCompleted(diff)
	return diff, nil
}

// logDiffStarted, logDiffFailed, and logDiffCompleted are the only log
// records FromTries ever produces. Each names exactly the fields this
// package's own domain has on hand at that point -- the two trie roots
// being compared, the error that stopped the walk, or the two diff-map
// sizes the walk produced -- rather than leaving callers to reconstruct a
// generic "args ...any" call at each site.
func logDiffStarted(stateRoot, postStateRoot types.Hash) {
	logger.Debug("diff started", "stateRoot", stateRoot.Hex(), "postStateRoot", postStateRoot.Hex())
}

func logDiffFailed(err error) {
	logger.Warn("diff failed", "err", err)
}

func logDiffCompleted(diff *StateDiff) {
	logger.Debug("diff completed",
		"accounts", len(diff.AccountDiffs),
		"addressesWithStorageDiffs", len(diff.StorageDiffs),
	)
}
