// Package types defines the small set of Ethereum state primitives the
// differ operates on: 32-byte hashes, 20-byte addresses, and the account
// record decoded from a state-trie leaf.
package types

import (
	"fmt"

	"github.com/holiman/uint256"
)

const (
	HashLength    = 32
	AddressLength = 20
)

// Hash is a 32-byte reference: a node hash, a storage key, or a trie root.
type Hash [HashLength]byte

// Address is a 20-byte Ethereum account address.
type Address [AddressLength]byte

// BytesToHash right-aligns b into a Hash, left-padding if shorter than 32 bytes.
func BytesToHash(b []byte) Hash {
	var h Hash
	if len(b) > HashLength {
		b = b[len(b)-HashLength:]
	}
	copy(h[HashLength-len(b):], b)
	return h
}

// BytesToAddress right-aligns b into an Address, left-padding if shorter than 20 bytes.
func BytesToAddress(b []byte) Address {
	var a Address
	if len(b) > AddressLength {
		b = b[len(b)-AddressLength:]
	}
	copy(a[AddressLength-len(b):], b)
	return a
}

func (h Hash) Bytes() []byte { return h[:] }
func (h Hash) Hex() string   { return fmt.Sprintf("0x%x", h[:]) }
func (h Hash) String() string { return h.Hex() }
func (h Hash) IsZero() bool  { return h == Hash{} }

func (a Address) Bytes() []byte  { return a[:] }
func (a Address) Hex() string    { return fmt.Sprintf("0x%x", a[:]) }
func (a Address) String() string { return a.Hex() }
func (a Address) IsZero() bool   { return a == Address{} }

// EmptyRootHash is the root hash of an empty Merkle Patricia Trie,
// keccak256(rlp("")). An account whose StorageRoot equals this value has
// no storage entries; its storage trie need not be resolved.
var EmptyRootHash = HexToHash("56e81f171bcc55a6ff8345e692c0f86e5b48e01b996cadc001622fb5e363b421")

// EmptyCodeHash is keccak256 of the empty byte string, the CodeHash of an
// externally-owned account.
var EmptyCodeHash = HexToHash("c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470")

// HexToHash decodes a hex string (with or without 0x prefix) into a Hash.
func HexToHash(s string) Hash { return BytesToHash(fromHex(s)) }

func fromHex(s string) []byte {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}
	if len(s)%2 == 1 {
		s = "0" + s
	}
	b := make([]byte, len(s)/2)
	for i := 0; i < len(b); i++ {
		hi := hexVal(s[i*2])
		lo := hexVal(s[i*2+1])
		b[i] = hi<<4 | lo
	}
	return b
}

func hexVal(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	default:
		return 0
	}
}

// Account is the Ethereum account record as stored in a state-trie leaf:
// [nonce, balance, storageRoot, codeHash]. The account's code body is
// deliberately not part of this record; diffing it is out of scope.
type Account struct {
	Nonce       uint64
	Balance     *uint256.Int
	StorageRoot Hash
	CodeHash    Hash
}

// Equal reports whether two accounts have identical field values. Two nil
// pointers are equal; a nil and non-nil Account are not.
func (a *Account) Equal(b *Account) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Nonce != b.Nonce || a.StorageRoot != b.StorageRoot || a.CodeHash != b.CodeHash {
		return false
	}
	switch {
	case a.Balance == nil && b.Balance == nil:
		return true
	case a.Balance == nil || b.Balance == nil:
		return false
	default:
		return a.Balance.Eq(b.Balance)
	}
}
