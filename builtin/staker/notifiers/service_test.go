// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package notifiers

import (
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
	notifier := thor.BytesToAddress([]byte("notifier"))

	ok, err := svc.IsNotifier(notifier)
	assert.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, svc.Set(notifier, true))
	ok, _ = svc.IsNotifier(notifier)
	assert.True(t, ok)

	require.NoError(t, svc.Set(notifier, false))
	ok, _ = svc.IsNotifier(notifier)
	assert.False(t, ok)
}
