// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package deposits

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/stakeledger/builtin/staker/deposit"
	"github.com/vechain/stakeledger/thor"
)

type Deposit struct {
	ID              deposit.ID            `json:"id"`
	Owner           thor.Address          `json:"owner"`
	Delegatee       thor.Address          `json:"delegatee"`
	Claimer         thor.Address          `json:"claimer"`
	Surrogate       thor.Address          `json:"surrogate"`
	Balance         *math.HexOrDecimal256 `json:"balance"`
	EarningPower    *math.HexOrDecimal256 `json:"earningPower"`
	UnclaimedReward *math.HexOrDecimal256 `json:"unclaimedReward"`
}

type Owner struct {
	Owner             thor.Address          `json:"owner"`
	TotalStaked       *math.HexOrDecimal256 `json:"totalStaked"`
	TotalEarningPower *math.HexOrDecimal256 `json:"totalEarningPower"`
	Deposits          []*Deposit            `json:"deposits"`
}

type Surrogate struct {
	Delegatee thor.Address          `json:"delegatee"`
	Surrogate thor.Address          `json:"surrogate"`
	Staked    *math.HexOrDecimal256 `json:"staked"`
	Votes     *math.HexOrDecimal256 `json:"votes"`
}

func hex(v *big.Int) *math.HexOrDecimal256 {
	if v == nil {
		v = new(big.Int)
	}
	return (*math.HexOrDecimal256)(new(big.Int).Set(v))
}
