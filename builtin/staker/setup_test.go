// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"math/big"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakeledger/builtin/earningpower"
	"github.com/vechain/stakeledger/builtin/earningpower/eligibility"
	"github.com/vechain/stakeledger/builtin/staker/deposit"
	"github.com/vechain/stakeledger/builtin/token"
	"github.com/vechain/stakeledger/lvldb"
	"github.com/vechain/stakeledger/state"
	"github.com/vechain/stakeledger/thor"
	"github.com/vechain/stakeledger/xenv"
)

const (
	testDuration = 1000
	startTime    = 1_000_000
)

var (
	admin      = thor.BytesToAddress([]byte("admin"))
	minter     = thor.BytesToAddress([]byte("minter"))
	notifier   = thor.BytesToAddress([]byte("notifier"))
	oracle     = thor.BytesToAddress([]byte("oracle"))
	collector  = thor.BytesToAddress([]byte("collector"))
	alice      = thor.BytesToAddress([]byte("alice"))
	bob        = thor.BytesToAddress([]byte("bob"))
	carol      = thor.BytesToAddress([]byte("carol"))
	delegateeA = thor.BytesToAddress([]byte("delegateeA"))
	delegateeB = thor.BytesToAddress([]byte("delegateeB"))

	ledgerAddr      = thor.BytesToAddress([]byte("ledger"))
	mockCalcAddr    = thor.BytesToAddress([]byte("mock-calculator"))
	eligibilityAddr = thor.BytesToAddress([]byte("eligibility-calculator"))

	testMaxBumpTip  = big.NewInt(5)
	testMaxClaimFee = big.NewInt(10)
)

// mockCalculator grants amount * multiplier of the delegatee, 1 by default.
type mockCalculator struct {
	multipliers map[thor.Address]int64
	qualifies   bool
}

func (m *mockCalculator) power(amount *big.Int, delegatee thor.Address) *big.Int {
	mult, ok := m.multipliers[delegatee]
	if !ok {
		mult = 1
	}
	return new(big.Int).Mul(amount, big.NewInt(mult))
}

func (m *mockCalculator) Power(amount *big.Int, _, delegatee thor.Address) (*big.Int, error) {
	return m.power(amount, delegatee), nil
}

func (m *mockCalculator) UpdatedPower(amount *big.Int, _, delegatee thor.Address, _ *big.Int) (*big.Int, bool, error) {
	return m.power(amount, delegatee), m.qualifies, nil
}

type testLedger struct {
	t   *testing.T
	st  *state.State
	now uint64

	staker      *Staker
	rewardToken *token.Token
	stakeToken  *token.Token
	mock        *mockCalculator
	eligibility *eligibility.Calculator
}

type tokenWrappers struct {
	reward func(l *testLedger, base *token.Token) Token
	stake  func(l *testLedger, base *token.Token) VotesToken
}

func newTestLedger(t *testing.T) *testLedger {
	return newWrappedTestLedger(t, tokenWrappers{})
}

func newWrappedTestLedger(t *testing.T, wrappers tokenWrappers) *testLedger {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st := state.New(db)
	l := &testLedger{t: t, st: st, now: startTime}

	l.rewardToken = token.New(thor.BytesToAddress([]byte("reward-token")), st)
	l.stakeToken = token.New(thor.BytesToAddress([]byte("stake-token")), st)
	require.NoError(t, l.rewardToken.Initialize(minter))
	require.NoError(t, l.stakeToken.Initialize(minter))

	calcs := earningpower.NewRegistry()
	l.mock = &mockCalculator{multipliers: map[thor.Address]int64{}, qualifies: true}
	calcs.Register(mockCalcAddr, l.mock)
	l.eligibility = eligibility.New(eligibilityAddr, st, func() uint64 { return l.now })
	require.NoError(t, l.eligibility.Initialize(l.env(admin), &eligibility.Params{
		Owner:                  admin,
		Oracle:                 oracle,
		PauseGuardian:          admin,
		Threshold:              50,
		UpdateEligibilityDelay: 100,
		StaleOracleWindow:      thor.DefaultStaleOracleWindow,
	}))
	calcs.Register(eligibilityAddr, l.eligibility)

	var rewardToken Token = l.rewardToken
	if wrappers.reward != nil {
		rewardToken = wrappers.reward(l, l.rewardToken)
	}
	var stakeToken VotesToken = l.stakeToken
	if wrappers.stake != nil {
		stakeToken = wrappers.stake(l, l.stakeToken)
	}

	l.staker = New(ledgerAddr, st, rewardToken, stakeToken, calcs)
	require.NoError(t, l.staker.Initialize(l.env(admin), &Params{
		RewardToken:    l.rewardToken.Address(),
		StakeToken:     l.stakeToken.Address(),
		Calculator:     earningpower.IdentityAddress,
		Admin:          admin,
		MaxBumpTip:     testMaxBumpTip,
		MaxClaimFee:    testMaxClaimFee,
		RewardDuration: testDuration,
	}))
	require.NoError(t, l.staker.SetRewardNotifier(l.env(admin), notifier, true))
	return l
}

func (l *testLedger) env(caller thor.Address) *xenv.Environment {
	return xenv.New(&xenv.BlockContext{Time: l.now}, &xenv.TransactionContext{Origin: caller}, caller)
}

// exec runs fn like a clause: all state changes are reverted when it fails.
func (l *testLedger) exec(caller thor.Address, fn func(env *xenv.Environment) error) error {
	rev := l.st.NewCheckpoint()
	if err := fn(l.env(caller)); err != nil {
		l.st.RevertTo(rev)
		return err
	}
	return nil
}

func (l *testLedger) warp(seconds uint64) {
	l.now += seconds
}

func (l *testLedger) fundStake(who thor.Address, amount int64) {
	require.NoError(l.t, l.stakeToken.Mint(l.env(minter), who, big.NewInt(amount)))
	require.NoError(l.t, l.stakeToken.Approve(l.env(who), ledgerAddr, thor.MaxUint256))
}

func (l *testLedger) fundReward(who thor.Address, amount int64) {
	require.NoError(l.t, l.rewardToken.Mint(l.env(minter), who, big.NewInt(amount)))
	require.NoError(l.t, l.rewardToken.Approve(l.env(who), ledgerAddr, thor.MaxUint256))
}

func (l *testLedger) createDeposit(owner thor.Address, amount int64, delegatee, claimer thor.Address) deposit.ID {
	l.fundStake(owner, amount)
	var id deposit.ID
	require.NoError(l.t, l.exec(owner, func(env *xenv.Environment) (err error) {
		id, err = l.staker.CreateDeposit(env, big.NewInt(amount), delegatee, claimer)
		return
	}))
	return id
}

func (l *testLedger) notify(amount int64) {
	l.fundReward(notifier, amount)
	require.NoError(l.t, l.exec(notifier, func(env *xenv.Environment) error {
		return l.staker.NotifyRewardAmount(env, big.NewInt(amount))
	}))
}

func (l *testLedger) claim(caller thor.Address, id deposit.ID) int64 {
	var claimed *big.Int
	require.NoError(l.t, l.exec(caller, func(env *xenv.Environment) (err error) {
		claimed, err = l.staker.ClaimReward(env, id)
		return
	}))
	return claimed.Int64()
}

func (l *testLedger) unclaimed(id deposit.ID) int64 {
	v, err := l.staker.UnclaimedReward(id, l.now)
	require.NoError(l.t, err)
	return v.Int64()
}

func (l *testLedger) deposit(id deposit.ID) *deposit.Deposit {
	d, err := l.staker.Deposit(id)
	require.NoError(l.t, err)
	return d
}

func (l *testLedger) totalEarningPower() int64 {
	v, err := l.staker.TotalEarningPower()
	require.NoError(l.t, err)
	return v.Int64()
}

func (l *testLedger) rewardBalance(addr thor.Address) int64 {
	v, err := l.rewardToken.BalanceOf(addr)
	require.NoError(l.t, err)
	return v.Int64()
}

func (l *testLedger) stakeBalance(addr thor.Address) int64 {
	v, err := l.stakeToken.BalanceOf(addr)
	require.NoError(l.t, err)
	return v.Int64()
}

func (l *testLedger) useCalculator(addr thor.Address) {
	require.NoError(l.t, l.exec(admin, func(env *xenv.Environment) error {
		return l.staker.SetEarningPowerCalculator(env, addr)
	}))
}

type TestFunc func(t *testing.T)

// TestSequence runs ledger steps in order.
type TestSequence struct {
	ledger *testLedger

	funcs []TestFunc
	mu    sync.Mutex
}

func NewSequence(ledger *testLedger) *TestSequence {
	return &TestSequence{funcs: make([]TestFunc, 0), ledger: ledger}
}

func (ts *TestSequence) AddFunc(f TestFunc) *TestSequence {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	ts.funcs = append(ts.funcs, f)
	return ts
}

func (ts *TestSequence) CreateDeposit(owner thor.Address, amount int64, delegatee thor.Address, id *deposit.ID) *TestSequence {
	return ts.AddFunc(func(t *testing.T) {
		*id = ts.ledger.createDeposit(owner, amount, delegatee, thor.Address{})
		t.Logf("created deposit %v for %s", *id, owner)
	})
}

func (ts *TestSequence) Notify(amount int64) *TestSequence {
	return ts.AddFunc(func(t *testing.T) {
		ts.ledger.notify(amount)
		t.Logf("notified %d", amount)
	})
}

func (ts *TestSequence) Warp(seconds uint64) *TestSequence {
	return ts.AddFunc(func(t *testing.T) {
		ts.ledger.warp(seconds)
	})
}

func (ts *TestSequence) AssertUnclaimed(id *deposit.ID, expected int64) *TestSequence {
	return ts.AddFunc(func(t *testing.T) {
		assert.Equal(t, expected, ts.ledger.unclaimed(*id), "unclaimed of deposit %v", *id)
	})
}

func (ts *TestSequence) Claim(caller thor.Address, id *deposit.ID, expected int64) *TestSequence {
	return ts.AddFunc(func(t *testing.T) {
		assert.Equal(t, expected, ts.ledger.claim(caller, *id), "claimed from deposit %v", *id)
	})
}

func (ts *TestSequence) AssertTotalEarningPower(expected int64) *TestSequence {
	return ts.AddFunc(func(t *testing.T) {
		assert.Equal(t, expected, ts.ledger.totalEarningPower())
	})
}

func (ts *TestSequence) Run(t *testing.T) {
	for _, f := range ts.funcs {
		f(t)
	}
}
