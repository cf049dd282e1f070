package trie

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"
)

// ErrMalformedNode is the underlying cause wrapped into statediff's BadRlp
// error kind when a node's RLP encoding cannot be parsed into a Leaf,
// Extension, or Branch.
var ErrMalformedNode = errors.New("trie: malformed node encoding")

// ErrBadNodeRef is the underlying cause wrapped into statediff's
// BadNodeRef error kind when a child reference is neither absent, a
// 32-byte hash, nor an inline RLP list.
var ErrBadNodeRef = errors.New("trie: reference is neither absent, a hash, nor an inline node")

// DecodeNode decodes the RLP encoding of a single trie node -- either the
// bytes retrieved from a Store by hash, or an inline child's raw
// encoding -- into its resolved Leaf, Extension, or Branch form.
//
// A node's RLP is always a list: two elements for a leaf or extension
// (hex-prefix key, then value or child reference), seventeen for a branch
// (sixteen child slots plus a value slot). Any other shape is malformed.
func DecodeNode(data []byte) (Node, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty encoding", ErrMalformedNode)
	}
	content, _, err := rlp.SplitList(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedNode, err)
	}
	count, err := rlp.CountValues(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedNode, err)
	}
	switch count {
	case 2:
		return decodeShort(content)
	case 17:
		return decodeFull(content)
	default:
		return nil, fmt.Errorf("%w: %d elements, want 2 or 17", ErrMalformedNode, count)
	}
}

// decodeShort decodes the 2-element payload of a leaf or extension node.
func decodeShort(content []byte) (Node, error) {
	keyRaw, rest, err := rlp.SplitString(content)
	if err != nil {
		return nil, fmt.Errorf("%w: key: %v", ErrMalformedNode, err)
	}
	nibbles, isLeaf := decodeCompactKey(keyRaw)

	if isLeaf {
		value, _, err := splitValue(rest)
		if err != nil {
			return nil, fmt.Errorf("%w: leaf value: %v", ErrMalformedNode, err)
		}
		return &Leaf{RestOfKey: nibbles, Value: value}, nil
	}

	ref, _, err := decodeChildElement(rest)
	if err != nil {
		return nil, err
	}
	if len(nibbles) == 0 {
		return nil, fmt.Errorf("%w: extension with empty key segment", ErrMalformedNode)
	}
	return &Extension{KeySegment: nibbles, Subnode: ref}, nil
}

// decodeFull decodes the 17-element payload of a branch node.
func decodeFull(content []byte) (Node, error) {
	b := &Branch{}
	rest := content
	for i := 0; i < 16; i++ {
		ref, next, err := decodeChildElement(rest)
		if err != nil {
			return nil, fmt.Errorf("%w: child %d: %w", ErrMalformedNode, i, err)
		}
		b.Subnodes[i] = ref
		rest = next
	}
	value, _, err := splitValue(rest)
	if err != nil {
		return nil, fmt.Errorf("%w: branch value: %v", ErrMalformedNode, err)
	}
	b.Value = value
	return b, nil
}

// splitValue reads the next element as a string (an RLP string element,
// possibly empty) and returns its content, handling the single-byte and
// empty-string encodings transparently via rlp.Split.
func splitValue(data []byte) (value []byte, rest []byte, err error) {
	kind, content, tail, err := rlp.Split(data)
	if err != nil {
		return nil, nil, err
	}
	if kind == rlp.List {
		return nil, nil, fmt.Errorf("%w: expected string, got list", ErrMalformedNode)
	}
	return content, tail, nil
}

// decodeChildElement reads the next RLP element off the front of data as a
// child reference -- an empty string is absent, a 32-byte string is a
// hash, and a list is an inline node -- and returns it alongside the
// remaining bytes. rlp.Split's content and rest are subslices of data
// sharing its backing array, so the element's full raw encoding (needed to
// hand an inline list back into DecodeNode) is recovered as the prefix of
// data that rest does not cover.
func decodeChildElement(data []byte) (ref Ref, rest []byte, err error) {
	kind, content, rest, err := rlp.Split(data)
	if err != nil {
		return Ref{}, nil, fmt.Errorf("%w: %v", ErrBadNodeRef, err)
	}
	raw := data[:len(data)-len(rest)]
	switch kind {
	case rlp.String:
		if len(content) == 0 {
			return AbsentRef(), rest, nil
		}
		if len(content) == 32 {
			var h [32]byte
			copy(h[:], content)
			return HashRef(h), rest, nil
		}
		return Ref{}, nil, fmt.Errorf("%w: %d-byte string", ErrBadNodeRef, len(content))
	case rlp.List:
		n, err := DecodeNode(raw)
		if err != nil {
			return Ref{}, nil, err
		}
		return InlineRef(n), rest, nil
	default:
		return Ref{}, nil, fmt.Errorf("%w: unexpected RLP byte kind", ErrBadNodeRef)
	}
}
