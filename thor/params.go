// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package thor

import (
	"math/big"
)

// Constants of the stake ledger.
const (
	// DefaultRewardDuration is the length of a reward distribution window in seconds.
	DefaultRewardDuration uint64 = 30 * 24 * 60 * 60

	// DefaultStaleOracleWindow is how long a score oracle may stay silent before the
	// eligibility calculator falls back to full earning power.
	DefaultStaleOracleWindow uint64 = 7 * 24 * 60 * 60

	// MaxEligibilityScore is the upper bound of a delegatee score.
	MaxEligibilityScore uint64 = 100
)

// ScaleFactor is the fixed-point scale applied to reward-per-earning-power arithmetic.
// Unclaimed rewards are kept in the same scale and rounded down on payout.
var ScaleFactor = new(big.Int).Exp(big.NewInt(10), big.NewInt(36), nil)

// MaxUint256 is the largest value a storage slot can hold.
var MaxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
