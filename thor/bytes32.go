// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package thor

import (
	"encoding/hex"
	"encoding/json"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// Bytes32 holds a hash, a salt or a deposit id.
type Bytes32 [32]byte

var (
	_ json.Marshaler   = (*Bytes32)(nil)
	_ json.Unmarshaler = (*Bytes32)(nil)
)

func (b Bytes32) String() string { return encodeHex(b[:]) }

func (b Bytes32) Bytes() []byte { return b[:] }

func (b Bytes32) IsZero() bool { return b == Bytes32{} }

// MarshalJSON renders a nil pointer as null.
func (b *Bytes32) MarshalJSON() ([]byte, error) {
	if b == nil {
		return []byte("null"), nil
	}
	return json.Marshal(b.String())
}

func (b *Bytes32) UnmarshalJSON(data []byte) error {
	return unmarshalJSONHex(data, b[:])
}

func (b Bytes32) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

func (b *Bytes32) UnmarshalText(text []byte) error {
	return decodeHex(string(text), b[:])
}

// ParseBytes32 accepts 64 hex digits, with or without a 0x prefix.
func ParseBytes32(s string) (b Bytes32, err error) {
	err = decodeHex(s, b[:])
	return
}

// BytesToBytes32 left pads b with zeros, or keeps its last 32 bytes when longer.
func BytesToBytes32(b []byte) Bytes32 {
	return Bytes32(common.BytesToHash(b))
}

func encodeHex(b []byte) string {
	return "0x" + hex.EncodeToString(b)
}

// decodeHex fills dst from s, which must hold exactly len(dst) bytes of hex.
// dst is left untouched on failure.
func decodeHex(s string, dst []byte) error {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}
	if len(s) != len(dst)*2 {
		return errors.Errorf("invalid length %d, want %d hex digits", len(s), len(dst)*2)
	}
	buf := make([]byte, len(dst))
	if _, err := hex.Decode(buf, []byte(s)); err != nil {
		return errors.Wrap(err, "invalid hex")
	}
	copy(dst, buf)
	return nil
}

func unmarshalJSONHex(data []byte, dst []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	return decodeHex(s, dst)
}
