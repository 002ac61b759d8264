// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package deposit

import (
	"encoding/binary"
	"math/big"
	"strconv"

	"github.com/vechain/stakeledger/thor"
)

// ID identifies a deposit. IDs are assigned in increasing order starting at 1 and never reused.
type ID uint64

func (id ID) Bytes() []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(id))
	return b[:]
}

func (id ID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// ParseID parses a decimal deposit id.
func ParseID(s string) (ID, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return ID(v), nil
}

// Deposit is the record of one stake position.
type Deposit struct {
	Owner        thor.Address
	Delegatee    thor.Address
	Claimer      thor.Address
	Balance      *big.Int
	EarningPower *big.Int
	// RewardPerTokenCheckpoint is the accumulator value the unclaimed reward was last synced to.
	RewardPerTokenCheckpoint *big.Int
	// ScaledUnclaimedReward is scaled by thor.ScaleFactor.
	ScaledUnclaimedReward *big.Int
}

// IsEmpty returns true if no deposit exists under the id.
func (d *Deposit) IsEmpty() bool {
	return d.Owner.IsZero()
}

// UnclaimedReward returns the whole reward units owed as of the last checkpoint.
func (d *Deposit) UnclaimedReward() *big.Int {
	return new(big.Int).Quo(d.ScaledUnclaimedReward, thor.ScaleFactor)
}

// Accrue adds the reward earned at the current earning power since the deposit
// checkpoint and moves the checkpoint to acc.
func (d *Deposit) Accrue(acc *big.Int) {
	if delta := new(big.Int).Sub(acc, d.RewardPerTokenCheckpoint); delta.Sign() > 0 {
		d.ScaledUnclaimedReward.Add(d.ScaledUnclaimedReward, delta.Mul(delta, d.EarningPower))
	}
	d.RewardPerTokenCheckpoint = new(big.Int).Set(acc)
}

func (d *Deposit) normalize() {
	for _, v := range []**big.Int{&d.Balance, &d.EarningPower, &d.RewardPerTokenCheckpoint, &d.ScaledUnclaimedReward} {
		if *v == nil {
			*v = new(big.Int)
		}
	}
}

// Totals aggregates the deposits of one owner.
type Totals struct {
	Staked       *big.Int
	EarningPower *big.Int
}
