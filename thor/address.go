// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package thor

import (
	"encoding/json"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
)

const (
	// AddressLength length of address in bytes.
	AddressLength = common.AddressLength
)

// Address address of account.
type Address common.Address

var (
	_ json.Marshaler   = (*Address)(nil)
	_ json.Unmarshaler = (*Address)(nil)
)

func (a Address) String() string { return encodeHex(a[:]) }

func (a Address) Bytes() []byte { return a[:] }

func (a Address) IsZero() bool { return a == Address{} }

// MarshalJSON renders a nil pointer as null.
func (a *Address) MarshalJSON() ([]byte, error) {
	if a == nil {
		return []byte("null"), nil
	}
	return json.Marshal(a.String())
}

func (a *Address) UnmarshalJSON(data []byte) error {
	return unmarshalJSONHex(data, a[:])
}

// MarshalText lets addresses key JSON maps and appear as YAML values.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Address) UnmarshalText(text []byte) error {
	return decodeHex(string(text), a[:])
}

// ParseAddress accepts 40 hex digits, with or without a 0x prefix.
func ParseAddress(s string) (a Address, err error) {
	err = decodeHex(s, a[:])
	return
}

// MustParseAddress convert string presented address into Address type, panic on error.
func MustParseAddress(s string) Address {
	addr, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return addr
}

// BytesToAddress converts bytes slice into address.
// If b is larger than address length, b will be cropped (from the left).
// If b is smaller than address length, b will be extended (from the left).
func BytesToAddress(b []byte) Address {
	return Address(common.BytesToAddress(b))
}

// CreateContractAddress generates a non-deterministic contract address from the deployer
// and its creation count.
func CreateContractAddress(deployer Address, creationCount uint64) Address {
	data, _ := rlp.EncodeToBytes([]any{deployer, creationCount})
	return BytesToAddress(Keccak256(data).Bytes()[12:])
}

// CreateDeterministicAddress generates a contract address that depends only on the
// deployer, the salt and the hash of the deployed code, like CREATE2.
func CreateDeterministicAddress(deployer Address, salt Bytes32, codeHash Bytes32) Address {
	h := Keccak256([]byte{0xff}, deployer.Bytes(), salt.Bytes(), codeHash.Bytes())
	return BytesToAddress(h.Bytes()[12:])
}
