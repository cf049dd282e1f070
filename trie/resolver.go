package trie

import (
	"errors"
	"fmt"

	"github.com/eth2030/statediff/types"
)

// ErrMissingNode is the underlying cause wrapped into statediff's
// MissingNode error kind when a hash reference has no entry in the store.
var ErrMissingNode = errors.New("trie: node hash not found in store")

// Store looks up a node's RLP encoding by its hash. statediff.NodeMap
// satisfies this with a plain map; tests can supply any other backing map
// shaped the same way.
type Store interface {
	Node(hash types.Hash) ([]byte, bool)
}

// Resolve turns a reference into its decoded node. An absent reference
// resolves to (nil, nil) -- there is nothing there, and that is not an
// error. An inline reference is already a decoded node and is returned as
// is. A hash reference is looked up in store and decoded; a lookup miss
// surfaces as ErrMissingNode, and a malformed encoding surfaces as
// whatever DecodeNode returns.
func Resolve(ref Ref, store Store) (Node, error) {
	switch ref.Kind {
	case RefAbsent:
		return nil, nil
	case RefInline:
		return ref.Inline, nil
	case RefHash:
		data, ok := store.Node(ref.Hash)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingNode, ref.Hash.Hex())
		}
		return DecodeNode(data)
	default:
		return nil, fmt.Errorf("%w: unknown reference kind", ErrBadNodeRef)
	}
}
