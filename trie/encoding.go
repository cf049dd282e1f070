package trie

// Hex-prefix (HP) decoding, Ethereum Yellow Paper Appendix C. The first
// byte's high nibble carries two flags: bit 0x20 marks a leaf (as opposed
// to an extension), bit 0x10 marks an odd number of nibbles, in which case
// that same byte's low nibble holds the first data nibble.
//
// This package only ever decodes compact keys (nodes are read-only here),
// so there is no corresponding encode side -- contrast with a mutating
// trie implementation, which needs both directions.

// decodeCompactKey decodes a hex-prefix encoded key from a 2-element node
// payload, returning the plain nibble sequence (0-15 values only, no
// terminator marker) and whether the flags mark this a leaf node.
func decodeCompactKey(compact []byte) (nibbles Nibbles, isLeaf bool) {
	if len(compact) == 0 {
		return nil, false
	}
	flags := compact[0] >> 4
	isLeaf = flags&0x2 != 0
	odd := flags&0x1 != 0

	out := make(Nibbles, 0, 2*len(compact))
	if odd {
		out = append(out, compact[0]&0x0f)
	}
	for _, b := range compact[1:] {
		out = append(out, b>>4, b&0x0f)
	}
	return out, isLeaf
}

// PackNibbles packs an even-length nibble sequence into bytes, two nibbles
// per output byte. Every full key handed to a leaf handler has exactly 64
// nibbles (account or storage key width), so an odd remainder never
// occurs for a well-formed witness.
func PackNibbles(nibbles Nibbles) []byte {
	out := make([]byte, len(nibbles)/2)
	for i := range out {
		out[i] = nibbles[2*i]<<4 | nibbles[2*i+1]
	}
	return out
}

// prefixLen returns the length of the common prefix of a and b.
func prefixLen(a, b Nibbles) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return i
}

// concatNibbles returns a freshly allocated concatenation of a and b. The
// walker must never hand out a slice that aliases a caller-visible buffer
// it might later reuse, so this always copies.
func concatNibbles(a Nibbles, b ...byte) Nibbles {
	out := make(Nibbles, len(a)+len(b))
	copy(out, a)
	copy(out[len(a):], b)
	return out
}
