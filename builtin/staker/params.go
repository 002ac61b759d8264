// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"bytes"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/state"
	"github.com/vechain/stakeledger/thor"
)

// codePrefix tags the deployed code of a ledger.
var codePrefix = []byte("stakeledger:")

// Params are the construction parameters of a ledger. They are stored as its code,
// so the same params deployed with the same salt always land at the same address.
type Params struct {
	RewardToken    thor.Address
	StakeToken     thor.Address
	Calculator     thor.Address
	Admin          thor.Address
	MaxBumpTip     *big.Int
	MaxClaimFee    *big.Int
	RewardDuration uint64
}

// Code returns the encoded params.
func (p *Params) Code() ([]byte, error) {
	data, err := rlp.EncodeToBytes(p)
	if err != nil {
		return nil, err
	}
	return append(append([]byte(nil), codePrefix...), data...), nil
}

// DecodeParams decodes params from ledger code.
func DecodeParams(code []byte) (*Params, error) {
	if !bytes.HasPrefix(code, codePrefix) {
		return nil, errors.New("not a ledger")
	}
	var p Params
	if err := rlp.DecodeBytes(code[len(codePrefix):], &p); err != nil {
		return nil, errors.Wrap(err, "decode ledger params")
	}
	return &p, nil
}

// LoadParams reads the params of the ledger deployed at addr.
func LoadParams(st *state.State, addr thor.Address) (*Params, error) {
	code, err := st.GetCode(addr)
	if err != nil {
		return nil, err
	}
	if len(code) == 0 {
		return nil, errors.Errorf("no ledger at %v", addr)
	}
	return DecodeParams(code)
}
