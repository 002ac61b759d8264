// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package xenv

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vechain/stakeledger/thor"
)

func TestWithCallerSharesEvents(t *testing.T) {
	alice := thor.BytesToAddress([]byte("alice"))
	ledger := thor.BytesToAddress([]byte("ledger"))

	env := New(&BlockContext{Number: 1, Time: 1000}, &TransactionContext{Origin: alice}, alice)
	assert.Equal(t, alice, env.Caller())
	assert.Equal(t, uint64(1000), env.Now())

	nested := env.WithCaller(ledger)
	assert.Equal(t, ledger, nested.Caller())
	assert.Equal(t, alice, nested.TransactionContext().Origin)

	env.Emit(&Event{Name: "First"})
	nested.Emit(&Event{Name: "Second"})

	assert.Len(t, env.Events(), 2)
	assert.Equal(t, "Second", env.Events()[1].Name)
	assert.Len(t, nested.Events(), 2)
}
