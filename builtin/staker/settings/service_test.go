// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package settings

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

func TestService(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	svc := New(solidity.NewContext(thor.BytesToAddress([]byte("ledger")), state.New(db)))

	fee, err := svc.ClaimFeeParameters()
	assert.NoError(t, err)
	assert.Equal(t, 0, fee.FeeAmount.Sign())
	assert.True(t, fee.FeeCollector.IsZero())

	admin := thor.BytesToAddress([]byte("admin"))
	svc.SetAdmin(admin)
	got, err := svc.Admin()
	assert.NoError(t, err)
	assert.Equal(t, admin, got)

	collector := thor.BytesToAddress([]byte("collector"))
	require.NoError(t, svc.SetClaimFeeParameters(&ClaimFeeParameters{FeeAmount: big.NewInt(3), FeeCollector: collector}))
	fee, _ = svc.ClaimFeeParameters()
	assert.Equal(t, int64(3), fee.FeeAmount.Int64())
	assert.Equal(t, collector, fee.FeeCollector)

	require.NoError(t, svc.SetMaxBumpTip(big.NewInt(10)))
	require.NoError(t, svc.SetMaxClaimFee(big.NewInt(5)))
	require.NoError(t, svc.SetRewardDuration(3600))
	svc.SetCalculator(collector)

	tip, _ := svc.MaxBumpTip()
	assert.Equal(t, int64(10), tip.Int64())
	maxFee, _ := svc.MaxClaimFee()
	assert.Equal(t, int64(5), maxFee.Int64())
	duration, _ := svc.RewardDuration()
	assert.Equal(t, uint64(3600), duration)
	calc, _ := svc.Calculator()
	assert.Equal(t, collector, calc)
}
