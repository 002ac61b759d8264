// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakeledger/builtin/earningpower"
	"github.com/vechain/stakeledger/builtin/earningpower/eligibility"
	"github.com/vechain/stakeledger/builtin/notifier"
	"github.com/vechain/stakeledger/builtin/reverts"
	"github.com/vechain/stakeledger/builtin/staker"
	"github.com/vechain/stakeledger/builtin/staker/deposit"
	"github.com/vechain/stakeledger/lvldb"
	"github.com/vechain/stakeledger/state"
	"github.com/vechain/stakeledger/thor"
	"github.com/vechain/stakeledger/xenv"
)

var (
	admin = thor.BytesToAddress([]byte("admin"))
	alice = thor.BytesToAddress([]byte("alice"))
	bob   = thor.BytesToAddress([]byte("bob"))
)

type world struct {
	t   *testing.T
	st  *state.State
	now uint64
}

func newWorld(t *testing.T) *world {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	w := &world{t: t, st: state.New(db), now: 10_000}
	Factory.WithState(w.st).Install()
	return w
}

func (w *world) env(caller thor.Address) *xenv.Environment {
	return xenv.New(&xenv.BlockContext{Time: w.now}, &xenv.TransactionContext{Origin: caller}, caller)
}

func (w *world) call(caller, to thor.Address, method string, args any) (any, error) {
	clause, err := NewClause(to, method, args)
	require.NoError(w.t, err)
	return Call(w.env(caller), w.st, clause)
}

func (w *world) deployLedger() *Ledger {
	rewardToken, err := DeployToken(w.env(admin), w.st, "RWD")
	require.NoError(w.t, err)
	stakeToken, err := DeployToken(w.env(admin), w.st, "STK")
	require.NoError(w.t, err)

	l, err := DeployLedger(w.env(admin), w.st, thor.Bytes32{1}, &staker.Params{
		RewardToken:    rewardToken.Address(),
		StakeToken:     stakeToken.Address(),
		Calculator:     earningpower.IdentityAddress,
		Admin:          admin,
		MaxBumpTip:     big.NewInt(5),
		MaxClaimFee:    big.NewInt(5),
		RewardDuration: 100,
	})
	require.NoError(w.t, err)
	return l
}

func TestDeployIsIdempotent(t *testing.T) {
	w := newWorld(t)

	t1, err := DeployToken(w.env(admin), w.st, "RWD")
	require.NoError(t, err)
	t2, err := DeployToken(w.env(bob), w.st, "RWD")
	require.NoError(t, err)
	assert.Equal(t, t1.Address(), t2.Address())
	minter, err := t2.Minter()
	require.NoError(t, err)
	assert.Equal(t, admin, minter, "second deploy does not re-initialize")

	l1 := w.deployLedger()
	l2 := w.deployLedger()
	assert.Equal(t, l1.Address(), l2.Address())

	bound, err := BindLedger(w.st, l1.Address(), nil)
	require.NoError(t, err)
	assert.Equal(t, l1.Params, bound.Params)
	assert.Equal(t, l1.RewardToken.Address(), bound.RewardToken.Address())

	_, err = BindLedger(w.st, alice, nil)
	assert.Error(t, err)
	_, err = BindToken(w.st, l1.Address())
	assert.Error(t, err)
}

func TestCallLedgerClauses(t *testing.T) {
	w := newWorld(t)
	l := w.deployLedger()
	stake, reward := l.StakeToken.Address(), l.RewardToken.Address()

	_, err := w.call(admin, stake, "mint", map[string]any{"to": alice, "amount": 1000})
	require.NoError(t, err)
	_, err = w.call(alice, stake, "approve", map[string]any{"spender": l.Address()})
	require.NoError(t, err)

	out, err := w.call(alice, l.Address(), "createDeposit", map[string]any{"amount": 400, "delegatee": bob})
	require.NoError(t, err)
	assert.Equal(t, deposit.ID(1), out)

	_, err = w.call(admin, reward, "mint", map[string]any{"to": admin, "amount": 100})
	require.NoError(t, err)
	_, err = w.call(admin, reward, "approve", map[string]any{"spender": l.Address(), "amount": 100})
	require.NoError(t, err)
	_, err = w.call(alice, l.Address(), "notifyRewardAmount", map[string]any{"amount": 100})
	assert.ErrorIs(t, err, reverts.ErrInvalidNotifier)
	_, err = w.call(admin, l.Address(), "setRewardNotifier", map[string]any{"notifier": admin, "enabled": true})
	require.NoError(t, err)
	_, err = w.call(admin, l.Address(), "notifyRewardAmount", map[string]any{"amount": 100})
	require.NoError(t, err)

	w.now += 50
	out, err = w.call(alice, l.Address(), "claimReward", map[string]any{"id": 1})
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(50), out)

	balance, err := l.RewardToken.BalanceOf(alice)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(50), balance)
}

func TestCallErrors(t *testing.T) {
	w := newWorld(t)
	l := w.deployLedger()

	_, err := w.call(alice, l.Address(), "selfDestruct", nil)
	assert.ErrorContains(t, err, "unknown method")

	_, err = w.call(alice, l.Address(), "claimReward", map[string]any{"deposit": 1})
	assert.ErrorContains(t, err, "decode native args")

	_, err = w.call(alice, l.Address(), "claimReward", map[string]any{"id": 9})
	assert.ErrorIs(t, err, reverts.ErrUnknownDeposit)

	_, err = w.call(alice, alice, "claimReward", nil)
	assert.ErrorContains(t, err, "no contract")

	_, err = w.call(alice, Factory.Address, "claimReward", nil)
	assert.ErrorContains(t, err, "no native methods")

	methods, err := Methods(w.st, l.Address())
	require.NoError(t, err)
	assert.Contains(t, methods, "createDeposit")
	assert.Contains(t, methods, "bumpEarningPower")
	assert.NotContains(t, methods, "notify")
}

func TestEligibilityInstall(t *testing.T) {
	w := newWorld(t)
	l := w.deployLedger()

	_, err := w.call(admin, l.Address(), "setEarningPowerCalculator", map[string]any{"calculator": Eligibility.Address})
	assert.ErrorIs(t, err, reverts.ErrInvalidAddress, "not installed yet")

	p := &eligibility.Params{
		Owner:                  admin,
		Oracle:                 admin,
		PauseGuardian:          admin,
		Threshold:              50,
		UpdateEligibilityDelay: 10,
		StaleOracleWindow:      thor.DefaultStaleOracleWindow,
	}
	require.NoError(t, Eligibility.Install(w.env(admin), w.st, p))
	assert.Error(t, Eligibility.Install(w.env(admin), w.st, p))

	_, err = w.call(admin, l.Address(), "setEarningPowerCalculator", map[string]any{"calculator": Eligibility.Address})
	require.NoError(t, err)

	_, err = w.call(admin, Eligibility.Address, "updateDelegateeScore", map[string]any{"delegatee": bob, "score": 70})
	require.NoError(t, err)
	score, err := Eligibility.WithState(w.st, nil).Score(bob)
	require.NoError(t, err)
	assert.Equal(t, uint64(70), score)

	_, err = w.call(bob, Eligibility.Address, "updateDelegateeScore", map[string]any{"delegatee": bob, "score": 10})
	assert.ErrorIs(t, err, reverts.ErrUnauthorized)
}

func TestNotifierClauses(t *testing.T) {
	w := newWorld(t)
	l := w.deployLedger()

	n, err := DeployNotifier(w.env(admin), w.st, thor.Bytes32{2}, &notifier.Params{
		Ledger:         l.Address(),
		RewardToken:    l.RewardToken.Address(),
		Source:         notifier.SourceMint,
		Owner:          admin,
		RewardAmount:   big.NewInt(300),
		RewardInterval: 3600,
	})
	require.NoError(t, err)

	_, err = w.call(admin, l.RewardToken.Address(), "setMinter", map[string]any{"minter": n.Address()})
	require.NoError(t, err)
	_, err = w.call(admin, l.Address(), "setRewardNotifier", map[string]any{"notifier": n.Address(), "enabled": true})
	require.NoError(t, err)

	out, err := w.call(bob, n.Address(), "notify", nil)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(300), out)

	_, err = w.call(bob, n.Address(), "notify", nil)
	assert.ErrorIs(t, err, reverts.ErrTooEarly)

	_, err = w.call(admin, n.Address(), "setRewardInterval", map[string]any{"interval": 60})
	require.NoError(t, err)

	balance, err := l.RewardToken.BalanceOf(l.Address())
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(300), balance)
}
