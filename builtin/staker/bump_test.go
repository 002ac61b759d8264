// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakeledger/builtin/reverts"
	"github.com/vechain/stakeledger/builtin/staker/deposit"
	"github.com/vechain/stakeledger/thor"
	"github.com/vechain/stakeledger/xenv"
)

func (l *testLedger) bump(id deposit.ID, receiver thor.Address, tip int64) error {
	return l.exec(carol, func(env *xenv.Environment) error {
		return l.staker.BumpEarningPower(env, id, receiver, big.NewInt(tip))
	})
}

func TestBumpEarningPowerUp(t *testing.T) {
	l := newTestLedger(t)
	l.useCalculator(mockCalcAddr)

	aliceID := l.createDeposit(alice, 100, delegateeA, thor.Address{})
	bobID := l.createDeposit(bob, 100, delegateeB, thor.Address{})
	l.notify(1000)
	l.warp(500)
	require.Equal(t, int64(250), l.unclaimed(aliceID))

	assert.ErrorIs(t, l.bump(aliceID, carol, 0), reverts.ErrUnqualified, "power unchanged")
	assert.ErrorIs(t, l.bump(aliceID, carol, 6), reverts.ErrTipExceedsBound)
	assert.ErrorIs(t, l.bump(aliceID, thor.Address{}, 5), reverts.ErrInvalidAddress)
	assert.ErrorIs(t, l.bump(aliceID, carol, -1), reverts.ErrInvalidAmount)

	l.mock.multipliers[delegateeA] = 2
	require.NoError(t, l.bump(aliceID, carol, 5))

	assert.Equal(t, int64(300), l.totalEarningPower())
	assert.Equal(t, big.NewInt(200), l.deposit(aliceID).EarningPower)
	assert.Equal(t, int64(245), l.unclaimed(aliceID), "past reward is not re-weighted")
	assert.Equal(t, int64(250), l.unclaimed(bobID))
	assert.Equal(t, int64(5), l.rewardBalance(carol))

	totals, err := l.staker.DepositorTotals(alice)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(200), totals.EarningPower)
	assert.Equal(t, big.NewInt(100), totals.Staked)

	l.warp(300)
	assert.Equal(t, int64(445), l.unclaimed(aliceID))
	assert.Equal(t, int64(350), l.unclaimed(bobID))
}

func TestBumpEarningPowerUpNeedsUnclaimedReward(t *testing.T) {
	l := newTestLedger(t)
	l.useCalculator(mockCalcAddr)
	id := l.createDeposit(alice, 100, delegateeA, thor.Address{})

	l.mock.multipliers[delegateeA] = 2
	assert.ErrorIs(t, l.bump(id, carol, 1), reverts.ErrTipExceedsBound)
	assert.Equal(t, int64(100), l.totalEarningPower())

	require.NoError(t, l.bump(id, carol, 0))
	assert.Equal(t, int64(200), l.totalEarningPower())
}

func TestBumpEarningPowerDownKeepsMaxTip(t *testing.T) {
	l := newTestLedger(t)
	l.useCalculator(mockCalcAddr)
	id := l.createDeposit(alice, 100, delegateeA, thor.Address{})
	l.notify(1000)
	l.warp(8)

	l.mock.multipliers[delegateeA] = 0
	assert.ErrorIs(t, l.bump(id, carol, 5), reverts.ErrTipExceedsBound)
	assert.Equal(t, int64(100), l.totalEarningPower())
	assert.Equal(t, int64(8), l.unclaimed(id))

	require.NoError(t, l.bump(id, carol, 3))
	assert.Zero(t, l.totalEarningPower())
	assert.Equal(t, int64(5), l.unclaimed(id))
	assert.Equal(t, int64(3), l.rewardBalance(carol))
}

func TestBumpEarningPowerNotQualified(t *testing.T) {
	l := newTestLedger(t)
	l.useCalculator(mockCalcAddr)
	id := l.createDeposit(alice, 100, delegateeA, thor.Address{})

	l.mock.multipliers[delegateeA] = 3
	l.mock.qualifies = false
	assert.ErrorIs(t, l.bump(id, carol, 0), reverts.ErrUnqualified)
	assert.Equal(t, int64(100), l.totalEarningPower())

	l.mock.qualifies = true
	require.NoError(t, l.bump(id, carol, 0))
	assert.Equal(t, int64(300), l.totalEarningPower())
}

func TestCalculatorSwitchAppliesOnTouch(t *testing.T) {
	l := newTestLedger(t)
	id := l.createDeposit(alice, 100, delegateeA, thor.Address{})

	l.mock.multipliers[delegateeA] = 4
	l.useCalculator(mockCalcAddr)
	assert.Equal(t, int64(100), l.totalEarningPower(), "switching keeps existing power")

	l.fundStake(alice, 10)
	require.NoError(t, l.exec(alice, func(env *xenv.Environment) error {
		return l.staker.StakeMore(env, id, big.NewInt(10))
	}))
	assert.Equal(t, int64(440), l.totalEarningPower())
}
