// Package trie implements the read-only node model for a Merkle Patricia
// Trie as defined in the Ethereum Yellow Paper: decoding a node reference
// into one of its three concrete shapes (Leaf, Extension, Branch) without
// mutating, inserting into, or hashing the trie. Building and committing
// tries is out of scope; this package only resolves what is already there.
package trie

import "github.com/eth2030/statediff/types"

// Nibbles is an unpacked nibble sequence: one nibble (0-15) per byte. Trie
// keys and key segments are carried this way throughout the walker so that
// slicing and prefix comparisons are O(1) instead of requiring bit-level
// arithmetic on packed bytes.
type Nibbles []byte

// HasPrefix reports whether n starts with prefix.
func (n Nibbles) HasPrefix(prefix Nibbles) bool {
	if len(prefix) > len(n) {
		return false
	}
	for i := range prefix {
		if n[i] != prefix[i] {
			return false
		}
	}
	return true
}

// Equal reports whether two nibble sequences hold the same values.
func (n Nibbles) Equal(o Nibbles) bool {
	if len(n) != len(o) {
		return false
	}
	for i := range n {
		if n[i] != o[i] {
			return false
		}
	}
	return true
}

// Node is the resolved shape of a trie node. It is implemented by exactly
// three types: *Leaf, *Extension, and *Branch.
type Node interface {
	isNode()
}

// Leaf is a terminal node. The logical key is the accumulated path plus
// RestOfKey; Value is the node's raw RLP-encoded payload (an account
// record or a storage value, depending on which trie it was found in).
type Leaf struct {
	RestOfKey Nibbles
	Value     []byte
}

// Extension compresses a shared nibble run (KeySegment, length >= 1)
// before continuing at Subnode.
type Extension struct {
	KeySegment Nibbles
	Subnode    Ref
}

// Branch has one child reference per nibble 0-15. Value holds a payload
// that terminates exactly at this node; in this codebase's usage it must
// always be empty (see statediff's checkBranch).
type Branch struct {
	Subnodes [16]Ref
	Value    []byte
}

func (*Leaf) isNode()      {}
func (*Extension) isNode() {}
func (*Branch) isNode()    {}

// WithRestOfKey returns a shallow copy of the leaf with a different
// RestOfKey. Callers use this instead of mutating a decoded leaf in place,
// since the same decoded node may be referenced by more than one path
// during a walk (and, for inline nodes, may be shared with the parent's
// encoding).
func (l *Leaf) WithRestOfKey(rest Nibbles) *Leaf {
	return &Leaf{RestOfKey: rest, Value: l.Value}
}

// WithKeySegment returns a shallow copy of the extension with a different
// KeySegment. Never mutate an Extension in place: it may be a value the
// caller still holds a reference to.
func (e *Extension) WithKeySegment(seg Nibbles) *Extension {
	return &Extension{KeySegment: seg, Subnode: e.Subnode}
}

// RefKind distinguishes the three shapes a node reference can take.
type RefKind uint8

const (
	// RefAbsent marks a reference to nothing: a null slot or an empty-bytes
	// sentinel. The subtree it points to does not exist.
	RefAbsent RefKind = iota
	// RefHash is a 32-byte hash requiring a Store lookup.
	RefHash
	// RefInline is a node embedded directly in its parent's RLP because its
	// own encoding is shorter than 32 bytes.
	RefInline
)

// Ref is a reference to a child node: absent, a hash, or an inline node.
// It is the sum type called for in the design notes, replacing the source
// representation's loose "hash, bytes, or list" union.
type Ref struct {
	Kind   RefKind
	Hash   types.Hash
	Inline Node
}

// AbsentRef returns the reference to no subtree.
func AbsentRef() Ref { return Ref{Kind: RefAbsent} }

// HashRef returns a reference that must be resolved via a Store.
func HashRef(h types.Hash) Ref { return Ref{Kind: RefHash, Hash: h} }

// InlineRef returns a reference to an already-decoded node embedded in its
// parent's RLP encoding.
func InlineRef(n Node) Ref { return Ref{Kind: RefInline, Inline: n} }

// IsAbsent reports whether the reference points to no subtree.
func (r Ref) IsAbsent() bool { return r.Kind == RefAbsent }

// Equal reports structural equality between two references: both absent,
// the same 32-byte hash, or (recursively) the same decoded inline node.
// This is the walker's fast-path test -- two equal references are known
// to root identical subtrees without resolving either one.
func (r Ref) Equal(o Ref) bool {
	if r.Kind != o.Kind {
		return false
	}
	switch r.Kind {
	case RefAbsent:
		return true
	case RefHash:
		return r.Hash == o.Hash
	case RefInline:
		return nodesEqual(r.Inline, o.Inline)
	default:
		return false
	}
}

// nodesEqual recursively compares two decoded nodes for structural
// equality. It only needs to handle inline nodes, which by construction
// are small (the RLP encoding that triggered inlining is under 32 bytes).
func nodesEqual(a, b Node) bool {
	switch a := a.(type) {
	case *Leaf:
		b, ok := b.(*Leaf)
		return ok && a.RestOfKey.Equal(b.RestOfKey) && string(a.Value) == string(b.Value)
	case *Extension:
		b, ok := b.(*Extension)
		return ok && a.KeySegment.Equal(b.KeySegment) && a.Subnode.Equal(b.Subnode)
	case *Branch:
		b, ok := b.(*Branch)
		if !ok || string(a.Value) != string(b.Value) {
			return false
		}
		for i := range a.Subnodes {
			if !a.Subnodes[i].Equal(b.Subnodes[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
