// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"encoding/binary"

	"github.com/vechain/stakeledger/thor"
)

// AddressPair keys a mapping by two addresses, like mapping(address => mapping(address => V)).
type AddressPair struct {
	First  thor.Address
	Second thor.Address
}

func (p AddressPair) Bytes() []byte {
	return append(append(make([]byte, 0, 2*thor.AddressLength), p.First.Bytes()...), p.Second.Bytes()...)
}

// Uint64Key keys a mapping by an unsigned integer.
type Uint64Key uint64

func (k Uint64Key) Bytes() []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(k))
	return b[:]
}
