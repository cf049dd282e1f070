package statediff

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/holiman/uint256"

	"github.com/eth2030/statediff/types"
)

// jsonAccount is the account shape used by the external ZKPI-style state
// diff schema: hex-string fields throughout, mirroring how the rest of
// the ecosystem's block/state JSON (genesis files, test fixtures) is
// written rather than raw binary.
type jsonAccount struct {
	Balance     string `json:"balance"`
	Nonce       string `json:"nonce"`
	CodeHash    string `json:"codeHash"`
	StorageHash string `json:"storageHash"`
}

type jsonStorageEntry struct {
	StorageKey string `json:"storageKey"`
	PreValue   string `json:"preValue"`
	PostValue  string `json:"postValue"`
}

type jsonAccountDiff struct {
	Address     string             `json:"address"`
	PreAccount  *jsonAccount       `json:"preAccount,omitempty"`
	PostAccount *jsonAccount       `json:"postAccount,omitempty"`
	Storage     []jsonStorageEntry `json:"storage,omitempty"`
}

type jsonStateDiff struct {
	Extra struct {
		StateDiffs []jsonAccountDiff `json:"stateDiffs"`
	} `json:"extra"`
}

// FromData parses a diff out of the external ZKPI-style JSON schema
// instead of computing one by walking tries. This is a thin
// deserialization shim, not a differ: it is the alternative entry point
// the package exists alongside, for consuming a pre-computed diff rather
// than recomputing one from a witness.
func FromData(data []byte) (*StateDiff, error) {
	var parsed jsonStateDiff
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("statediff: parsing state diff JSON: %w", err)
	}

	diff := newStateDiff()
	for _, d := range parsed.Extra.StateDiffs {
		addrBytes, err := hexBytes(d.Address)
		if err != nil {
			return nil, fmt.Errorf("statediff: account address: %w", err)
		}
		addr := types.BytesToAddress(addrBytes)

		pre, err := parseJSONAccount(d.PreAccount)
		if err != nil {
			return nil, err
		}
		post, err := parseJSONAccount(d.PostAccount)
		if err != nil {
			return nil, err
		}
		diff.recordAccount(addr, pre, post)

		for _, s := range d.Storage {
			keyBytes, err := hexBytes(s.StorageKey)
			if err != nil {
				return nil, fmt.Errorf("statediff: storage key: %w", err)
			}
			preVal, err := parseJSONU256(s.PreValue)
			if err != nil {
				return nil, err
			}
			postVal, err := parseJSONU256(s.PostValue)
			if err != nil {
				return nil, err
			}
			diff.recordStorage(addr, types.BytesToHash(keyBytes), preVal, postVal)
		}
	}
	return diff, nil
}

func parseJSONAccount(a *jsonAccount) (*types.Account, error) {
	if a == nil {
		return nil, nil
	}
	nonceBig, err := parseJSONHexInt(a.Nonce)
	if err != nil {
		return nil, fmt.Errorf("statediff: account nonce: %w", err)
	}
	balance, err := parseJSONU256(a.Balance)
	if err != nil {
		return nil, err
	}
	codeHash, err := hexBytes(a.CodeHash)
	if err != nil {
		return nil, fmt.Errorf("statediff: account codeHash: %w", err)
	}
	storageHash, err := hexBytes(a.StorageHash)
	if err != nil {
		return nil, fmt.Errorf("statediff: account storageHash: %w", err)
	}
	return &types.Account{
		Nonce:       nonceBig.Uint64(),
		Balance:     balance,
		CodeHash:    types.BytesToHash(codeHash),
		StorageRoot: types.BytesToHash(storageHash),
	}, nil
}

// parseJSONU256 treats a hex "0x0" value as absence, matching the RLP
// wire format's inability to represent a literal zero leaf: the external
// schema still writes a zero hex string for a cleared slot, so the two
// representations are normalized to the same nil here.
func parseJSONU256(hexStr string) (*uint256.Int, error) {
	if hexStr == "" {
		return nil, nil
	}
	n, err := parseJSONHexInt(hexStr)
	if err != nil {
		return nil, fmt.Errorf("statediff: u256 value: %w", err)
	}
	if n.Sign() == 0 {
		return nil, nil
	}
	v, overflow := uint256.FromBig(n)
	if overflow {
		return nil, newError(BadRlp, "u256 value overflows 256 bits", nil)
	}
	return v, nil
}

func parseJSONHexInt(s string) (*big.Int, error) {
	if len(s) < 2 || s[0] != '0' || (s[1] != 'x' && s[1] != 'X') {
		return nil, fmt.Errorf("not a 0x-prefixed hex integer: %q", s)
	}
	n, ok := new(big.Int).SetString(s[2:], 16)
	if !ok {
		return nil, fmt.Errorf("invalid hex integer: %q", s)
	}
	return n, nil
}

func hexBytes(s string) ([]byte, error) {
	if len(s) < 2 || s[0] != '0' || (s[1] != 'x' && s[1] != 'X') {
		return nil, fmt.Errorf("not a 0x-prefixed hex string: %q", s)
	}
	s = s[2:]
	if len(s)%2 == 1 {
		s = "0" + s
	}
	out := make([]byte, len(s)/2)
	for i := range out {
		hi, err := hexNibble(s[2*i])
		if err != nil {
			return nil, err
		}
		lo, err := hexNibble(s[2*i+1])
		if err != nil {
			return nil, err
		}
		out[i] = hi<<4 | lo
	}
	return out, nil
}

func hexNibble(c byte) (byte, error) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', nil
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, nil
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, nil
	default:
		return 0, fmt.Errorf("invalid hex digit %q", c)
	}
}
