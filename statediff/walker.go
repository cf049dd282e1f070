package statediff

import (
	"fmt"

	"github.com/eth2030/statediff/trie"
)

// LeafSink receives every leaf pair the walker finds to differ. path is
// the full trie key (64 nibbles, i.e. 32 bytes once packed) and either
// side may be nil -- creation, deletion, or genuine presence on both.
type LeafSink interface {
	OnLeaf(path trie.Nibbles, left, right *trie.Leaf) error
}

// Walker re-aligns two node references that encode the same logical key
// range, however differently shaped, and reports every leaf that differs
// between them. It holds no mutable state of its own beyond the node
// store it resolves references through; a single Walker is reused across
// the account walk and every storage sub-walk it triggers.
type Walker struct {
	store trie.Store
}

// NewWalker returns a Walker resolving hash references through store.
func NewWalker(store trie.Store) *Walker {
	return &Walker{store: store}
}

// Walk is the walker's public entry point: compare the subtrees rooted at
// lRef and rRef, with path the nibble prefix already accumulated on the
// way down to them, invoking sink for every leaf pair that differs.
func (w *Walker) Walk(lRef, rRef trie.Ref, path trie.Nibbles, sink LeafSink) error {
	if lRef.Equal(rRef) {
		return nil
	}
	left, err := w.resolve(lRef)
	if err != nil {
		return err
	}
	right, err := w.resolve(rRef)
	if err != nil {
		return err
	}
	return w.walkNodes(left, right, path, sink)
}

// resolve wraps trie.Resolve, translating its errors into the statediff
// error taxonomy. The open question in the source material -- whether a
// hash absent from the store should be treated as an empty subtree or a
// fatal error -- is resolved here in favor of fatal: reaching this point
// already means the two sides were not equal references, so silently
// treating a missing node as absent could under-report a real diff.
func (w *Walker) resolve(ref trie.Ref) (trie.Node, error) {
	n, err := trie.Resolve(ref, w.store)
	if err != nil {
		return nil, wrapResolve(ref, err)
	}
	return n, nil
}

// walkRef resolves both sides fresh and recurses. Used for every
// recursion where neither side is already a decoded value in hand.
func (w *Walker) walkRef(lRef, rRef trie.Ref, path trie.Nibbles, sink LeafSink) error {
	return w.Walk(lRef, rRef, path, sink)
}

// walkNodeRef pairs an already-resolved (possibly synthetic, shortened)
// left node against a right-hand reference still needing resolution.
func (w *Walker) walkNodeRef(left trie.Node, rRef trie.Ref, path trie.Nibbles, sink LeafSink) error {
	right, err := w.resolve(rRef)
	if err != nil {
		return err
	}
	return w.walkNodes(left, right, path, sink)
}

// walkRefNode is the mirror of walkNodeRef.
func (w *Walker) walkRefNode(lRef trie.Ref, right trie.Node, path trie.Nibbles, sink LeafSink) error {
	left, err := w.resolve(lRef)
	if err != nil {
		return err
	}
	return w.walkNodes(left, right, path, sink)
}

// walkNodes dispatches on the concrete (left, right) variant pair. A nil
// trie.Node stands for "no node here" (None in the dispatch table).
func (w *Walker) walkNodes(left, right trie.Node, path trie.Nibbles, sink LeafSink) error {
	if left == nil && right == nil {
		return nil
	}
	if left == nil {
		return w.noneVs(right, path, sink)
	}
	if right == nil {
		return w.vsNone(left, path, sink)
	}
	switch l := left.(type) {
	case *trie.Leaf:
		switch r := right.(type) {
		case *trie.Leaf:
			return w.leafLeaf(l, r, path, sink)
		case *trie.Extension:
			return w.leafExtension(l, r, path, sink)
		case *trie.Branch:
			return w.leafBranch(l, r, path, sink)
		}
	case *trie.Extension:
		switch r := right.(type) {
		case *trie.Leaf:
			return w.extensionLeaf(l, r, path, sink)
		case *trie.Extension:
			return w.extensionExtension(l, r, path, sink)
		case *trie.Branch:
			return w.extensionBranch(l, r, path, sink)
		}
	case *trie.Branch:
		switch r := right.(type) {
		case *trie.Leaf:
			return w.branchLeaf(l, r, path, sink)
		case *trie.Extension:
			return w.branchExtension(l, r, path, sink)
		case *trie.Branch:
			return w.branchBranch(l, r, path, sink)
		}
	}
	return shapeMismatchErr(left, right)
}

// noneVs handles (None, right) for every right-hand variant.
func (w *Walker) noneVs(right trie.Node, path trie.Nibbles, sink LeafSink) error {
	switch r := right.(type) {
	case *trie.Leaf:
		return emit(sink, concatNibbles(path, r.RestOfKey...), nil, r)
	case *trie.Extension:
		return w.walkRef(trie.AbsentRef(), r.Subnode, concatNibbles(path, r.KeySegment...), sink)
	case *trie.Branch:
		if err := checkBranch(r); err != nil {
			return err
		}
		for i := 0; i < 16; i++ {
			childPath := concatNibbles(path, byte(i))
			if err := w.walkRef(trie.AbsentRef(), r.Subnodes[i], childPath, sink); err != nil {
				return err
			}
		}
		return nil
	default:
		return shapeMismatchErr(nil, right)
	}
}

// vsNone handles (left, None) for every left-hand variant.
func (w *Walker) vsNone(left trie.Node, path trie.Nibbles, sink LeafSink) error {
	switch l := left.(type) {
	case *trie.Leaf:
		return emit(sink, concatNibbles(path, l.RestOfKey...), l, nil)
	case *trie.Extension:
		return w.walkRef(l.Subnode, trie.AbsentRef(), concatNibbles(path, l.KeySegment...), sink)
	case *trie.Branch:
		if err := checkBranch(l); err != nil {
			return err
		}
		for i := 0; i < 16; i++ {
			childPath := concatNibbles(path, byte(i))
			if err := w.walkRef(l.Subnodes[i], trie.AbsentRef(), childPath, sink); err != nil {
				return err
			}
		}
		return nil
	default:
		return shapeMismatchErr(left, nil)
	}
}

func (w *Walker) leafLeaf(l, r *trie.Leaf, path trie.Nibbles, sink LeafSink) error {
	if l.RestOfKey.Equal(r.RestOfKey) {
		if string(l.Value) == string(r.Value) {
			return nil
		}
		return emit(sink, concatNibbles(path, l.RestOfKey...), l, r)
	}
	if err := emit(sink, concatNibbles(path, l.RestOfKey...), l, nil); err != nil {
		return err
	}
	return emit(sink, concatNibbles(path, r.RestOfKey...), nil, r)
}

// leafExtension keeps the logical key aligned while descending: if the
// leaf's remaining key starts with the extension's segment, the shared
// run is stripped from a fresh copy of the leaf (never the original) and
// the walk continues one level down. Otherwise the leaf's key diverges
// entirely from everything under the extension: the leaf is a pure
// deletion, and the whole extension subtree is harvested as pure creation.
func (w *Walker) leafExtension(l *trie.Leaf, r *trie.Extension, path trie.Nibbles, sink LeafSink) error {
	if l.RestOfKey.HasPrefix(r.KeySegment) {
		shortened := l.WithRestOfKey(l.RestOfKey[len(r.KeySegment):])
		return w.walkNodeRef(shortened, r.Subnode, concatNibbles(path, r.KeySegment...), sink)
	}
	if err := emit(sink, concatNibbles(path, l.RestOfKey...), l, nil); err != nil {
		return err
	}
	return w.walkRef(trie.AbsentRef(), r.Subnode, concatNibbles(path, r.KeySegment...), sink)
}

// extensionLeaf mirrors leafExtension with the sides swapped.
func (w *Walker) extensionLeaf(l *trie.Extension, r *trie.Leaf, path trie.Nibbles, sink LeafSink) error {
	if r.RestOfKey.HasPrefix(l.KeySegment) {
		shortened := r.WithRestOfKey(r.RestOfKey[len(l.KeySegment):])
		return w.walkRefNode(l.Subnode, shortened, concatNibbles(path, l.KeySegment...), sink)
	}
	if err := emit(sink, concatNibbles(path, r.RestOfKey...), nil, r); err != nil {
		return err
	}
	return w.walkRef(l.Subnode, trie.AbsentRef(), concatNibbles(path, l.KeySegment...), sink)
}

// leafBranch: the leaf continues into exactly the branch slot named by
// its own next nibble; every other slot is harvested against None.
func (w *Walker) leafBranch(l *trie.Leaf, r *trie.Branch, path trie.Nibbles, sink LeafSink) error {
	if err := checkBranch(r); err != nil {
		return err
	}
	if len(l.RestOfKey) == 0 {
		return shapeMismatchErr(l, r)
	}
	slot := l.RestOfKey[0]
	shortened := l.WithRestOfKey(l.RestOfKey[1:])
	for i := 0; i < 16; i++ {
		childPath := concatNibbles(path, byte(i))
		if byte(i) == slot {
			if err := w.walkNodeRef(shortened, r.Subnodes[i], childPath, sink); err != nil {
				return err
			}
			continue
		}
		if err := w.walkRef(trie.AbsentRef(), r.Subnodes[i], childPath, sink); err != nil {
			return err
		}
	}
	return nil
}

// branchLeaf mirrors leafBranch with the sides swapped.
func (w *Walker) branchLeaf(l *trie.Branch, r *trie.Leaf, path trie.Nibbles, sink LeafSink) error {
	if err := checkBranch(l); err != nil {
		return err
	}
	if len(r.RestOfKey) == 0 {
		return shapeMismatchErr(l, r)
	}
	slot := r.RestOfKey[0]
	shortened := r.WithRestOfKey(r.RestOfKey[1:])
	for i := 0; i < 16; i++ {
		childPath := concatNibbles(path, byte(i))
		if byte(i) == slot {
			if err := w.walkRefNode(l.Subnodes[i], shortened, childPath, sink); err != nil {
				return err
			}
			continue
		}
		if err := w.walkRef(l.Subnodes[i], trie.AbsentRef(), childPath, sink); err != nil {
			return err
		}
	}
	return nil
}

// extensionExtension re-aligns two path-compression runs of possibly
// different lengths before recursing, never mutating either input.
func (w *Walker) extensionExtension(l, r *trie.Extension, path trie.Nibbles, sink LeafSink) error {
	ls, rs := l.KeySegment, r.KeySegment
	switch {
	case ls.Equal(rs):
		return w.walkRef(l.Subnode, r.Subnode, concatNibbles(path, ls...), sink)
	case ls.HasPrefix(rs):
		shortenedLeft := l.WithKeySegment(ls[len(rs):])
		return w.walkNodeRef(shortenedLeft, r.Subnode, concatNibbles(path, rs...), sink)
	case rs.HasPrefix(ls):
		shortenedRight := r.WithKeySegment(rs[len(ls):])
		return w.walkRefNode(l.Subnode, shortenedRight, concatNibbles(path, ls...), sink)
	default:
		if err := w.walkRef(l.Subnode, trie.AbsentRef(), concatNibbles(path, ls...), sink); err != nil {
			return err
		}
		return w.walkRef(trie.AbsentRef(), r.Subnode, concatNibbles(path, rs...), sink)
	}
}

// extensionBranch: the extension's leading nibble names the one branch
// slot it continues into; the remaining segment (if any) survives as a
// shortened extension one level down. Every other slot is pure creation.
func (w *Walker) extensionBranch(l *trie.Extension, r *trie.Branch, path trie.Nibbles, sink LeafSink) error {
	if err := checkBranch(r); err != nil {
		return err
	}
	slot := l.KeySegment[0]
	for i := 0; i < 16; i++ {
		childPath := concatNibbles(path, byte(i))
		if byte(i) != slot {
			if err := w.walkRef(trie.AbsentRef(), r.Subnodes[i], childPath, sink); err != nil {
				return err
			}
			continue
		}
		if len(l.KeySegment) == 1 {
			if err := w.walkRef(l.Subnode, r.Subnodes[i], childPath, sink); err != nil {
				return err
			}
			continue
		}
		shortened := l.WithKeySegment(l.KeySegment[1:])
		if err := w.walkNodeRef(shortened, r.Subnodes[i], childPath, sink); err != nil {
			return err
		}
	}
	return nil
}

// branchExtension mirrors extensionBranch with the sides swapped.
func (w *Walker) branchExtension(l *trie.Branch, r *trie.Extension, path trie.Nibbles, sink LeafSink) error {
	if err := checkBranch(l); err != nil {
		return err
	}
	slot := r.KeySegment[0]
	for i := 0; i < 16; i++ {
		childPath := concatNibbles(path, byte(i))
		if byte(i) != slot {
			if err := w.walkRef(l.Subnodes[i], trie.AbsentRef(), childPath, sink); err != nil {
				return err
			}
			continue
		}
		if len(r.KeySegment) == 1 {
			if err := w.walkRef(l.Subnodes[i], r.Subnode, childPath, sink); err != nil {
				return err
			}
			continue
		}
		shortened := r.WithKeySegment(r.KeySegment[1:])
		if err := w.walkRefNode(l.Subnodes[i], shortened, childPath, sink); err != nil {
			return err
		}
	}
	return nil
}

func (w *Walker) branchBranch(l, r *trie.Branch, path trie.Nibbles, sink LeafSink) error {
	if err := checkBranch(l); err != nil {
		return err
	}
	if err := checkBranch(r); err != nil {
		return err
	}
	for i := 0; i < 16; i++ {
		childPath := concatNibbles(path, byte(i))
		if err := w.walkRef(l.Subnodes[i], r.Subnodes[i], childPath, sink); err != nil {
			return err
		}
	}
	return nil
}

// checkBranch validates the invariant that a branch's value slot is
// unused in this codebase's tries; a non-empty value is a structural
// error in the witness, not a value to silently ignore.
func checkBranch(b *trie.Branch) error {
	if len(b.Value) != 0 {
		return newError(BadBranch, "branch node carries a non-empty value", nil)
	}
	return nil
}

func shapeMismatchErr(left, right trie.Node) error {
	return newError(ShapeMismatch, fmt.Sprintf("unhandled node pair (%T, %T)", left, right), nil)
}

func emit(sink LeafSink, path trie.Nibbles, left, right *trie.Leaf) error {
	return sink.OnLeaf(path, left, right)
}

// concatNibbles appends literal nibble values to path, always returning a
// fresh slice so recursive calls never alias a sibling's path buffer.
func concatNibbles(path trie.Nibbles, extra ...byte) trie.Nibbles {
	out := make(trie.Nibbles, len(path)+len(extra))
	copy(out, path)
	copy(out[len(path):], extra)
	return out
}
