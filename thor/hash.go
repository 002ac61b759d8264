// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package thor

import (
	"hash"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// Blake2b hashes the concatenation of parts with blake2b-256. Ledger salts
// and storage slots are derived with it.
func Blake2b(parts ...[]byte) Bytes32 {
	if len(parts) == 1 {
		return blake2b.Sum256(parts[0])
	}
	h, _ := blake2b.New256(nil)
	return sum(h, parts)
}

// Keccak256 hashes the concatenation of parts with legacy keccak-256, the
// hash used for contract addresses.
func Keccak256(parts ...[]byte) Bytes32 {
	return sum(sha3.NewLegacyKeccak256(), parts)
}

func sum(h hash.Hash, parts [][]byte) (out Bytes32) {
	for _, p := range parts {
		h.Write(p)
	}
	h.Sum(out[:0])
	return
}
