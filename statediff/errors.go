// Package statediff computes a structural diff between two Ethereum state
// tries -- an account trie and, beneath each changed account, its storage
// trie -- recovering every (address, pre-account, post-account) and
// (address, storage key, pre-value, post-value) pair that changed between
// two block states.
package statediff

import (
	"errors"
	"fmt"

	"github.com/eth2030/statediff/trie"
)

// ErrorKind classifies a diff failure so that a caller can tell an
// incomplete witness (MissingNode, MissingPreimage -- reject the block,
// ask for a bigger witness) from a structural bug (everything else).
type ErrorKind uint8

const (
	// MissingNode: a hash reference has no entry in the node store, and
	// the walker needed to resolve it (the equal-refs fast path did not
	// apply).
	MissingNode ErrorKind = iota
	// MissingPreimage: an account or storage leaf's trie key has no
	// entry in the corresponding preimage map.
	MissingPreimage
	// BadBranch: a branch node carries a non-empty value.
	BadBranch
	// ShapeMismatch: a (left, right) node-variant pair not enumerated by
	// the walker's dispatch table was encountered.
	ShapeMismatch
	// BadRlp: a leaf payload failed to decode as the expected account or
	// storage-value shape, or a node's own encoding is malformed.
	BadRlp
	// BadNodeRef: a node reference is neither absent, a 32-byte hash,
	// nor an inline list.
	BadNodeRef
)

func (k ErrorKind) String() string {
	switch k {
	case MissingNode:
		return "MissingNode"
	case MissingPreimage:
		return "MissingPreimage"
	case BadBranch:
		return "BadBranch"
	case ShapeMismatch:
		return "ShapeMismatch"
	case BadRlp:
		return "BadRlp"
	case BadNodeRef:
		return "BadNodeRef"
	default:
		return "Unknown"
	}
}

// Error is a fatal diff failure. All errors halt the walk immediately --
// no partial accumulator is ever returned alongside one.
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error // wrapped cause, if any (e.g. trie.ErrMissingNode)
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("statediff: %s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("statediff: %s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is a *Error of the same ErrorKind, so callers can
// write errors.Is(err, &statediff.Error{Kind: statediff.MissingNode})
// without a type assertion.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func newError(kind ErrorKind, msg string, cause error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: cause}
}

// wrapResolve turns a trie.Resolve failure into the right statediff error
// kind: a store miss is MissingNode, anything else is a malformed
// reference or node (BadNodeRef/BadRlp).
func wrapResolve(ref trie.Ref, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, trie.ErrMissingNode) {
		return newError(MissingNode, fmt.Sprintf("hash %s", ref.Hash.Hex()), err)
	}
	if errors.Is(err, trie.ErrBadNodeRef) {
		return newError(BadNodeRef, "child reference", err)
	}
	return newError(BadRlp, "node encoding", err)
}
