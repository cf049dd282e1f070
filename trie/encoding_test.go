package trie

import "testing"

func TestDecodeCompactKeyLeafEven(t *testing.T) {
	// flags 0x20: leaf, even length.
	nibbles, isLeaf := decodeCompactKey([]byte{0x20, 0x0a, 0xbc})
	if !isLeaf {
		t.Fatalf("expected leaf flag set")
	}
	want := Nibbles{0x0, 0xa, 0xb, 0xc}
	if !nibbles.Equal(want) {
		t.Fatalf("nibbles = %v, want %v", nibbles, want)
	}
}

func TestDecodeCompactKeyLeafOdd(t *testing.T) {
	// flags 0x3: leaf + odd, first data nibble packed into low bits of byte 0.
	nibbles, isLeaf := decodeCompactKey([]byte{0x3a, 0xbc})
	if !isLeaf {
		t.Fatalf("expected leaf flag set")
	}
	want := Nibbles{0xa, 0xb, 0xc}
	if !nibbles.Equal(want) {
		t.Fatalf("nibbles = %v, want %v", nibbles, want)
	}
}

func TestDecodeCompactKeyExtensionEven(t *testing.T) {
	nibbles, isLeaf := decodeCompactKey([]byte{0x00, 0x01, 0x23})
	if isLeaf {
		t.Fatalf("expected extension (leaf flag clear)")
	}
	want := Nibbles{0x0, 0x1, 0x2, 0x3}
	if !nibbles.Equal(want) {
		t.Fatalf("nibbles = %v, want %v", nibbles, want)
	}
}

func TestDecodeCompactKeyExtensionOdd(t *testing.T) {
	nibbles, isLeaf := decodeCompactKey([]byte{0x11, 0x23})
	if isLeaf {
		t.Fatalf("expected extension (leaf flag clear)")
	}
	want := Nibbles{0x1, 0x2, 0x3}
	if !nibbles.Equal(want) {
		t.Fatalf("nibbles = %v, want %v", nibbles, want)
	}
}

func TestDecodeCompactKeyEmpty(t *testing.T) {
	nibbles, isLeaf := decodeCompactKey(nil)
	if isLeaf {
		t.Fatalf("empty key should not be marked leaf")
	}
	if len(nibbles) != 0 {
		t.Fatalf("expected empty nibbles, got %v", nibbles)
	}
}

func TestPackNibbles(t *testing.T) {
	got := PackNibbles(Nibbles{0xd, 0xe, 0xa, 0xd})
	want := []byte{0xde, 0xad}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("byte %d = %x, want %x", i, got[i], want[i])
		}
	}
}

func TestPrefixLen(t *testing.T) {
	cases := []struct {
		a, b Nibbles
		want int
	}{
		{Nibbles{1, 2, 3}, Nibbles{1, 2, 3, 4}, 3},
		{Nibbles{1, 2, 3}, Nibbles{1, 9, 3}, 1},
		{Nibbles{}, Nibbles{1}, 0},
		{Nibbles{1, 2}, Nibbles{1, 2}, 2},
	}
	for _, c := range cases {
		if got := prefixLen(c.a, c.b); got != c.want {
			t.Fatalf("prefixLen(%v, %v) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}

func TestConcatNibblesDoesNotAlias(t *testing.T) {
	base := Nibbles{1, 2, 3}
	out := concatNibbles(base, 4, 5)
	out[0] = 0xf
	if base[0] == 0xf {
		t.Fatalf("concatNibbles aliased its input")
	}
	want := Nibbles{0xf, 2, 3, 4, 5}
	if !out.Equal(want) {
		t.Fatalf("out = %v, want %v", out, want)
	}
}
