// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"bytes"

	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/builtin/earningpower"
	"github.com/vechain/stakeledger/builtin/earningpower/eligibility"
	"github.com/vechain/stakeledger/builtin/factory"
	"github.com/vechain/stakeledger/builtin/notifier"
	"github.com/vechain/stakeledger/builtin/staker"
	"github.com/vechain/stakeledger/builtin/token"
	"github.com/vechain/stakeledger/state"
	"github.com/vechain/stakeledger/thor"
	"github.com/vechain/stakeledger/xenv"
)

// Builtin contracts binding.
var (
	Factory     = &factoryContract{thor.BytesToAddress([]byte("Factory"))}
	Eligibility = &eligibilityContract{thor.BytesToAddress([]byte("EligibilityCalculator"))}
)

var (
	tokenCodePrefix = []byte("token:")
	eligibilityCode = []byte("eligibility-calculator")
)

type (
	factoryContract     struct{ Address thor.Address }
	eligibilityContract struct{ Address thor.Address }
)

func (f *factoryContract) WithState(state *state.State) *factory.Factory {
	return factory.New(f.Address, state)
}

func (e *eligibilityContract) WithState(state *state.State, clock func() uint64) *eligibility.Calculator {
	return eligibility.New(e.Address, state, clock)
}

// Install puts the eligibility calculator in place and initializes it.
func (e *eligibilityContract) Install(env *xenv.Environment, state *state.State, p *eligibility.Params) error {
	exists, err := state.Exists(e.Address)
	if err != nil {
		return err
	}
	if exists {
		return errors.New("eligibility calculator already installed")
	}
	state.SetCode(e.Address, eligibilityCode)
	return e.WithState(state, env.Now).Initialize(env, p)
}

func (e *eligibilityContract) Installed(state *state.State) (bool, error) {
	return state.Exists(e.Address)
}

// Calculators returns the earning power calculators available in the state.
func Calculators(state *state.State, clock func() uint64) (*earningpower.Registry, error) {
	reg := earningpower.NewRegistry()
	installed, err := Eligibility.Installed(state)
	if err != nil {
		return nil, err
	}
	if installed {
		reg.Register(Eligibility.Address, Eligibility.WithState(state, clock))
	}
	return reg, nil
}

// DeployToken deploys a token through the factory. The caller becomes its minter.
func DeployToken(env *xenv.Environment, state *state.State, symbol string) (*token.Token, error) {
	code := append(append([]byte(nil), tokenCodePrefix...), symbol...)
	addr, created, err := Factory.WithState(state).Deploy(env, thor.Blake2b([]byte(symbol)), code)
	if err != nil {
		return nil, err
	}
	t := token.New(addr, state)
	if created {
		if err := t.Initialize(env.Caller()); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// BindToken binds the token deployed at addr.
func BindToken(state *state.State, addr thor.Address) (*token.Token, error) {
	code, err := state.GetCode(addr)
	if err != nil {
		return nil, err
	}
	if !bytes.HasPrefix(code, tokenCodePrefix) {
		return nil, errors.Errorf("no token at %v", addr)
	}
	return token.New(addr, state), nil
}

// Ledger is a staking ledger bound to a state, together with its tokens.
type Ledger struct {
	*staker.Staker
	Params      *staker.Params
	RewardToken *token.Token
	StakeToken  *token.Token
}

// DeployLedger deploys a ledger with the params through the factory and initializes it.
// Deploying the same params with the same salt again binds the existing ledger.
func DeployLedger(env *xenv.Environment, state *state.State, salt thor.Bytes32, p *staker.Params) (*Ledger, error) {
	code, err := p.Code()
	if err != nil {
		return nil, err
	}
	addr, created, err := Factory.WithState(state).Deploy(env, salt, code)
	if err != nil {
		return nil, err
	}
	l, err := BindLedger(state, addr, env.Now)
	if err != nil {
		return nil, err
	}
	if created {
		if err := l.Initialize(env, p); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// BindLedger binds the ledger deployed at addr. The clock feeds time dependent calculators.
func BindLedger(state *state.State, addr thor.Address, clock func() uint64) (*Ledger, error) {
	p, err := staker.LoadParams(state, addr)
	if err != nil {
		return nil, err
	}
	rewardToken, err := BindToken(state, p.RewardToken)
	if err != nil {
		return nil, errors.WithMessage(err, "reward token")
	}
	stakeToken, err := BindToken(state, p.StakeToken)
	if err != nil {
		return nil, errors.WithMessage(err, "stake token")
	}
	calcs, err := Calculators(state, clock)
	if err != nil {
		return nil, err
	}
	return &Ledger{
		Staker:      staker.New(addr, state, rewardToken, stakeToken, calcs),
		Params:      p,
		RewardToken: rewardToken,
		StakeToken:  stakeToken,
	}, nil
}

// DeployNotifier deploys a scheduled reward notifier through the factory and initializes it.
func DeployNotifier(env *xenv.Environment, state *state.State, salt thor.Bytes32, p *notifier.Params) (*notifier.Notifier, error) {
	code, err := p.Code()
	if err != nil {
		return nil, err
	}
	addr, created, err := Factory.WithState(state).Deploy(env, salt, code)
	if err != nil {
		return nil, err
	}
	n, err := BindNotifier(state, addr, env.Now)
	if err != nil {
		return nil, err
	}
	if created {
		if err := n.Initialize(p); err != nil {
			return nil, err
		}
	}
	return n, nil
}

// BindNotifier binds the reward notifier deployed at addr.
func BindNotifier(state *state.State, addr thor.Address, clock func() uint64) (*notifier.Notifier, error) {
	p, err := notifier.LoadParams(state, addr)
	if err != nil {
		return nil, err
	}
	l, err := BindLedger(state, p.Ledger, clock)
	if err != nil {
		return nil, errors.WithMessage(err, "notifier ledger")
	}
	rewardToken, err := BindToken(state, p.RewardToken)
	if err != nil {
		return nil, errors.WithMessage(err, "notifier reward token")
	}
	return notifier.New(addr, state, p.Source, l.Staker, rewardToken), nil
}
