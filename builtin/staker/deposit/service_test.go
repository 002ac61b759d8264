// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package deposit

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakeledger/builtin/solidity"
	"github.com/vechain/stakeledger/lvldb"
	"github.com/vechain/stakeledger/state"
	"github.com/vechain/stakeledger/thor"
)

var (
	alice = thor.BytesToAddress([]byte("alice"))
	bob   = thor.BytesToAddress([]byte("bob"))
)

func newSvc(t *testing.T) *Service {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(solidity.NewContext(thor.BytesToAddress([]byte("deposits")), state.New(db)))
}

func TestService_AddAndGet(t *testing.T) {
	svc := newSvc(t)

	empty, err := svc.GetDeposit(1)
	assert.NoError(t, err)
	assert.True(t, empty.IsEmpty())
	assert.Equal(t, 0, empty.Balance.Sign())

	id, err := svc.Add(&Deposit{Owner: alice, Delegatee: bob, Claimer: alice, Balance: big.NewInt(100), EarningPower: big.NewInt(100)})
	require.NoError(t, err)
	assert.Equal(t, ID(1), id)

	id2, err := svc.Add(&Deposit{Owner: alice, Delegatee: alice, Claimer: alice, Balance: big.NewInt(5)})
	require.NoError(t, err)
	assert.Equal(t, ID(2), id2)

	id3, err := svc.Add(&Deposit{Owner: bob, Delegatee: bob, Claimer: bob, Balance: big.NewInt(5)})
	require.NoError(t, err)
	assert.Equal(t, ID(3), id3)

	d, err := svc.GetDeposit(id)
	assert.NoError(t, err)
	assert.False(t, d.IsEmpty())
	assert.Equal(t, bob, d.Delegatee)
	assert.Equal(t, int64(100), d.Balance.Int64())
	assert.Equal(t, 0, d.ScaledUnclaimedReward.Sign())

	ids, err := svc.DepositsOf(alice)
	assert.NoError(t, err)
	assert.Equal(t, []ID{1, 2}, ids)

	count, err := svc.Count()
	assert.NoError(t, err)
	assert.Equal(t, uint64(3), count)

	d.Balance = big.NewInt(1)
	require.NoError(t, svc.Update(id, d))
	d, _ = svc.GetDeposit(id)
	assert.Equal(t, int64(1), d.Balance.Int64())
}

func TestDeposit_Accrue(t *testing.T) {
	d := &Deposit{Owner: alice}
	d.normalize()
	d.EarningPower = big.NewInt(4)

	acc := new(big.Int).Mul(big.NewInt(3), thor.ScaleFactor)
	d.Accrue(acc)
	assert.Equal(t, int64(12), d.UnclaimedReward().Int64())
	assert.Equal(t, acc, d.RewardPerTokenCheckpoint)

	// checkpoint is a copy
	acc.SetInt64(0)
	assert.NotEqual(t, 0, d.RewardPerTokenCheckpoint.Sign())

	// same accumulator adds nothing
	d.Accrue(new(big.Int).Mul(big.NewInt(3), thor.ScaleFactor))
	assert.Equal(t, int64(12), d.UnclaimedReward().Int64())

	// sub unit remainder stays scaled
	d.EarningPower = big.NewInt(1)
	d.Accrue(new(big.Int).Add(d.RewardPerTokenCheckpoint, big.NewInt(1)))
	assert.Equal(t, int64(12), d.UnclaimedReward().Int64())
	assert.Equal(t, 1, new(big.Int).Mod(d.ScaledUnclaimedReward, thor.ScaleFactor).Sign())
}

func TestService_DepositorTotals(t *testing.T) {
	svc := newSvc(t)

	require.NoError(t, svc.AdjustDepositorTotals(alice, big.NewInt(10), big.NewInt(8)))
	require.NoError(t, svc.AdjustDepositorTotals(alice, big.NewInt(-4), big.NewInt(0)))
	totals, err := svc.DepositorTotals(alice)
	assert.NoError(t, err)
	assert.Equal(t, int64(6), totals.Staked.Int64())
	assert.Equal(t, int64(8), totals.EarningPower.Int64())

	assert.ErrorIs(t, svc.AdjustDepositorTotals(alice, big.NewInt(-7), big.NewInt(0)), solidity.ErrUint256Underflow)
}

func TestParseID(t *testing.T) {
	id, err := ParseID("42")
	assert.NoError(t, err)
	assert.Equal(t, ID(42), id)
	assert.Equal(t, "42", id.String())

	_, err = ParseID("-1")
	assert.Error(t, err)
}
