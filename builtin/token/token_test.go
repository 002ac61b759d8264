// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package token

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakeledger/builtin/reverts"
	"github.com/vechain/stakeledger/lvldb"
	"github.com/vechain/stakeledger/state"
	"github.com/vechain/stakeledger/thor"
	"github.com/vechain/stakeledger/xenv"
)

var (
	minter = thor.BytesToAddress([]byte("minter"))
	alice  = thor.BytesToAddress([]byte("alice"))
	bob    = thor.BytesToAddress([]byte("bob"))
	carol  = thor.BytesToAddress([]byte("carol"))
)

func newTestToken(t *testing.T) *Token {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	tok := New(thor.BytesToAddress([]byte("token")), state.New(db))
	require.NoError(t, tok.Initialize(minter))
	return tok
}

func envOf(caller thor.Address) *xenv.Environment {
	return xenv.New(&xenv.BlockContext{Time: 1}, &xenv.TransactionContext{Origin: caller}, caller)
}

func balance(t *testing.T, tok *Token, addr thor.Address) int64 {
	b, err := tok.BalanceOf(addr)
	require.NoError(t, err)
	return b.Int64()
}

func TestMintAndTransfer(t *testing.T) {
	tok := newTestToken(t)

	assert.ErrorIs(t, tok.Initialize(alice), reverts.ErrUnauthorized)
	assert.ErrorIs(t, tok.Mint(envOf(alice), alice, big.NewInt(10)), reverts.ErrUnauthorized)
	assert.ErrorIs(t, tok.Mint(envOf(minter), alice, big.NewInt(0)), reverts.ErrInvalidAmount)

	env := envOf(minter)
	require.NoError(t, tok.Mint(env, alice, big.NewInt(100)))
	assert.Len(t, env.Events(), 1)
	assert.Equal(t, "Transfer", env.Events()[0].Name)

	supply, err := tok.TotalSupply()
	assert.NoError(t, err)
	assert.Equal(t, int64(100), supply.Int64())

	require.NoError(t, tok.Transfer(envOf(alice), bob, big.NewInt(30)))
	assert.Equal(t, int64(70), balance(t, tok, alice))
	assert.Equal(t, int64(30), balance(t, tok, bob))

	assert.ErrorIs(t, tok.Transfer(envOf(bob), alice, big.NewInt(31)), reverts.ErrInsufficientBalance)
	assert.ErrorIs(t, tok.Transfer(envOf(bob), thor.Address{}, big.NewInt(1)), reverts.ErrInvalidAddress)
}

func TestAllowance(t *testing.T) {
	tok := newTestToken(t)
	require.NoError(t, tok.Mint(envOf(minter), alice, big.NewInt(100)))

	assert.ErrorIs(t, tok.TransferFrom(envOf(bob), alice, carol, big.NewInt(1)), reverts.ErrInsufficientBalance)

	require.NoError(t, tok.Approve(envOf(alice), bob, big.NewInt(40)))
	require.NoError(t, tok.TransferFrom(envOf(bob), alice, carol, big.NewInt(25)))
	allowance, err := tok.Allowance(alice, bob)
	assert.NoError(t, err)
	assert.Equal(t, int64(15), allowance.Int64())
	assert.Equal(t, int64(25), balance(t, tok, carol))

	require.NoError(t, tok.Approve(envOf(alice), bob, thor.MaxUint256))
	require.NoError(t, tok.TransferFrom(envOf(bob), alice, carol, big.NewInt(50)))
	allowance, err = tok.Allowance(alice, bob)
	assert.NoError(t, err)
	assert.Equal(t, thor.MaxUint256, allowance)

	assert.ErrorIs(t, tok.Approve(envOf(alice), thor.Address{}, big.NewInt(1)), reverts.ErrInvalidAddress)
}

func TestDelegateVotes(t *testing.T) {
	tok := newTestToken(t)
	require.NoError(t, tok.Mint(envOf(minter), alice, big.NewInt(100)))

	votes, err := tok.GetVotes(carol)
	assert.NoError(t, err)
	assert.Equal(t, 0, votes.Sign())

	require.NoError(t, tok.Delegate(envOf(alice), carol))
	delegatee, err := tok.Delegates(alice)
	assert.NoError(t, err)
	assert.Equal(t, carol, delegatee)

	votes, _ = tok.GetVotes(carol)
	assert.Equal(t, int64(100), votes.Int64())

	// votes follow the balance
	require.NoError(t, tok.Transfer(envOf(alice), bob, big.NewInt(40)))
	votes, _ = tok.GetVotes(carol)
	assert.Equal(t, int64(60), votes.Int64())

	require.NoError(t, tok.Delegate(envOf(bob), bob))
	require.NoError(t, tok.Transfer(envOf(alice), bob, big.NewInt(10)))
	votes, _ = tok.GetVotes(bob)
	assert.Equal(t, int64(50), votes.Int64())
	votes, _ = tok.GetVotes(carol)
	assert.Equal(t, int64(50), votes.Int64())

	// re-delegation moves the whole balance
	require.NoError(t, tok.Delegate(envOf(alice), bob))
	votes, _ = tok.GetVotes(bob)
	assert.Equal(t, int64(100), votes.Int64())
	votes, _ = tok.GetVotes(carol)
	assert.Equal(t, 0, votes.Sign())
}

func TestMintToDelegator(t *testing.T) {
	tok := newTestToken(t)
	require.NoError(t, tok.Delegate(envOf(alice), bob))

	// minted weight lands on the receiver's delegatee
	require.NoError(t, tok.Mint(envOf(minter), alice, big.NewInt(500)))
	votes, err := tok.GetVotes(bob)
	require.NoError(t, err)
	assert.Equal(t, int64(500), votes.Int64())
	votes, err = tok.GetVotes(alice)
	require.NoError(t, err)
	assert.Equal(t, 0, votes.Sign())

	require.NoError(t, tok.Transfer(envOf(alice), carol, big.NewInt(200)))
	votes, _ = tok.GetVotes(bob)
	assert.Equal(t, int64(300), votes.Int64())

	require.NoError(t, tok.Delegate(envOf(alice), carol))
	votes, _ = tok.GetVotes(bob)
	assert.Equal(t, 0, votes.Sign())
	votes, _ = tok.GetVotes(carol)
	assert.Equal(t, int64(300), votes.Int64())

	// an undelegated receiver adds no votes anywhere
	require.NoError(t, tok.Mint(envOf(minter), carol, big.NewInt(50)))
	votes, _ = tok.GetVotes(carol)
	assert.Equal(t, int64(300), votes.Int64())
}

func TestEmitEncodeError(t *testing.T) {
	tok := newTestToken(t)
	env := envOf(alice)

	err := tok.emit(env, "Broken", &alice, struct{ C chan int }{make(chan int)})
	assert.ErrorContains(t, err, "encode Broken event")
	assert.Empty(t, env.Events())
}

func TestSetMinter(t *testing.T) {
	tok := newTestToken(t)

	assert.ErrorIs(t, tok.SetMinter(envOf(alice), alice), reverts.ErrUnauthorized)
	require.NoError(t, tok.SetMinter(envOf(minter), alice))
	m, err := tok.Minter()
	assert.NoError(t, err)
	assert.Equal(t, alice, m)

	require.NoError(t, tok.Mint(envOf(alice), bob, big.NewInt(5)))
	assert.Equal(t, int64(5), balance(t, tok, bob))
}
