// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"sort"

	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/builtin/notifier"
	"github.com/vechain/stakeledger/builtin/staker"
	"github.com/vechain/stakeledger/builtin/staker/deposit"
	"github.com/vechain/stakeledger/state"
	"github.com/vechain/stakeledger/thor"
	"github.com/vechain/stakeledger/xenv"
)

// Clause is a call to a native method of a builtin contract.
type Clause struct {
	To     thor.Address    `json:"to"`
	Method string          `json:"method"`
	Args   json.RawMessage `json:"args,omitempty"`
}

// NewClause encodes args into a clause.
func NewClause(to thor.Address, method string, args any) (*Clause, error) {
	c := &Clause{To: to, Method: method}
	if args != nil {
		data, err := json.Marshal(args)
		if err != nil {
			return nil, errors.Wrap(err, "encode clause args")
		}
		c.Args = data
	}
	return c, nil
}

type contractKind int

const (
	kindLedger contractKind = iota
	kindToken
	kindNotifier
	kindEligibility
)

// callEnv is the env of a native method invocation.
type callEnv struct {
	*xenv.Environment
	state *state.State
	to    thor.Address
	args  json.RawMessage
}

type argsError struct{ error }

func (env *callEnv) ParseArgs(val any) {
	if len(env.args) == 0 {
		return
	}
	dec := json.NewDecoder(bytes.NewReader(env.args))
	dec.DisallowUnknownFields()
	if err := dec.Decode(val); err != nil {
		// Call will handle it
		panic(&argsError{errors.WithMessage(err, "decode native args")})
	}
}

type nativeMethod func(env *callEnv) (any, error)

var nativeMethods = map[contractKind]map[string]nativeMethod{}

// Methods lists the native methods callable on the contract at addr.
func Methods(state *state.State, addr thor.Address) ([]string, error) {
	kind, err := kindOf(state, addr)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(nativeMethods[kind]))
	for name := range nativeMethods[kind] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Call runs the clause against the state. State changes are not reverted on error,
// that is up to the caller.
func Call(env *xenv.Environment, state *state.State, clause *Clause) (out any, err error) {
	kind, err := kindOf(state, clause.To)
	if err != nil {
		return nil, err
	}
	run, ok := nativeMethods[kind][clause.Method]
	if !ok {
		return nil, errors.Errorf("unknown method %q on %v", clause.Method, clause.To)
	}

	defer func() {
		// handle panic in ParseArgs
		if e := recover(); e != nil {
			switch e := e.(type) {
			case *argsError:
				err = e.error
			case error:
				err = errors.WithMessage(e, "native")
			default:
				err = fmt.Errorf("native: %v", e)
			}
		}
	}()

	return run(&callEnv{env, state, clause.To, clause.Args})
}

func kindOf(state *state.State, addr thor.Address) (contractKind, error) {
	if addr == Eligibility.Address {
		return kindEligibility, nil
	}
	code, err := state.GetCode(addr)
	if err != nil {
		return 0, err
	}
	switch {
	case bytes.HasPrefix(code, tokenCodePrefix):
		return kindToken, nil
	case len(code) == 0:
		return 0, errors.Errorf("no contract at %v", addr)
	}
	if _, err := staker.DecodeParams(code); err == nil {
		return kindLedger, nil
	}
	if _, err := notifier.DecodeParams(code); err == nil {
		return kindNotifier, nil
	}
	return 0, errors.Errorf("no native methods at %v", addr)
}

func (env *callEnv) ledger() *Ledger {
	l, err := BindLedger(env.state, env.to, env.Now)
	if err != nil {
		panic(err)
	}
	return l
}

func init() {
	type amountArgs struct {
		Amount *big.Int `json:"amount"`
	}
	type depositAmountArgs struct {
		ID     deposit.ID `json:"id"`
		Amount *big.Int   `json:"amount"`
	}

	ledgerDefines := []struct {
		name string
		run  nativeMethod
	}{
		{"createDeposit", func(env *callEnv) (any, error) {
			var args struct {
				Amount    *big.Int     `json:"amount"`
				Delegatee thor.Address `json:"delegatee"`
				Claimer   thor.Address `json:"claimer"`
			}
			env.ParseArgs(&args)
			return env.ledger().CreateDeposit(env.Environment, orZero(args.Amount), args.Delegatee, args.Claimer)
		}},
		{"stakeMore", func(env *callEnv) (any, error) {
			var args depositAmountArgs
			env.ParseArgs(&args)
			return nil, env.ledger().StakeMore(env.Environment, args.ID, orZero(args.Amount))
		}},
		{"withdraw", func(env *callEnv) (any, error) {
			var args depositAmountArgs
			env.ParseArgs(&args)
			return nil, env.ledger().Withdraw(env.Environment, args.ID, orZero(args.Amount))
		}},
		{"alterDelegatee", func(env *callEnv) (any, error) {
			var args struct {
				ID        deposit.ID   `json:"id"`
				Delegatee thor.Address `json:"delegatee"`
			}
			env.ParseArgs(&args)
			return nil, env.ledger().AlterDelegatee(env.Environment, args.ID, args.Delegatee)
		}},
		{"alterClaimer", func(env *callEnv) (any, error) {
			var args struct {
				ID      deposit.ID   `json:"id"`
				Claimer thor.Address `json:"claimer"`
			}
			env.ParseArgs(&args)
			return nil, env.ledger().AlterClaimer(env.Environment, args.ID, args.Claimer)
		}},
		{"claimReward", func(env *callEnv) (any, error) {
			var args struct {
				ID deposit.ID `json:"id"`
			}
			env.ParseArgs(&args)
			return env.ledger().ClaimReward(env.Environment, args.ID)
		}},
		{"notifyRewardAmount", func(env *callEnv) (any, error) {
			var args amountArgs
			env.ParseArgs(&args)
			return nil, env.ledger().NotifyRewardAmount(env.Environment, orZero(args.Amount))
		}},
		{"bumpEarningPower", func(env *callEnv) (any, error) {
			var args struct {
				ID          deposit.ID   `json:"id"`
				TipReceiver thor.Address `json:"tipReceiver"`
				Tip         *big.Int     `json:"tip"`
			}
			env.ParseArgs(&args)
			return nil, env.ledger().BumpEarningPower(env.Environment, args.ID, args.TipReceiver, orZero(args.Tip))
		}},
		{"setRewardNotifier", func(env *callEnv) (any, error) {
			var args struct {
				Notifier thor.Address `json:"notifier"`
				Enabled  bool         `json:"enabled"`
			}
			env.ParseArgs(&args)
			return nil, env.ledger().SetRewardNotifier(env.Environment, args.Notifier, args.Enabled)
		}},
		{"setAdmin", func(env *callEnv) (any, error) {
			var args struct {
				Admin thor.Address `json:"admin"`
			}
			env.ParseArgs(&args)
			return nil, env.ledger().SetAdmin(env.Environment, args.Admin)
		}},
		{"setClaimFeeParameters", func(env *callEnv) (any, error) {
			var args struct {
				FeeAmount    *big.Int     `json:"feeAmount"`
				FeeCollector thor.Address `json:"feeCollector"`
			}
			env.ParseArgs(&args)
			return nil, env.ledger().SetClaimFeeParameters(env.Environment, orZero(args.FeeAmount), args.FeeCollector)
		}},
		{"setMaxBumpTip", func(env *callEnv) (any, error) {
			var args struct {
				Tip *big.Int `json:"tip"`
			}
			env.ParseArgs(&args)
			return nil, env.ledger().SetMaxBumpTip(env.Environment, orZero(args.Tip))
		}},
		{"setEarningPowerCalculator", func(env *callEnv) (any, error) {
			var args struct {
				Calculator thor.Address `json:"calculator"`
			}
			env.ParseArgs(&args)
			return nil, env.ledger().SetEarningPowerCalculator(env.Environment, args.Calculator)
		}},
	}

	tokenDefines := []struct {
		name string
		run  nativeMethod
	}{
		{"transfer", func(env *callEnv) (any, error) {
			var args struct {
				To     thor.Address `json:"to"`
				Amount *big.Int     `json:"amount"`
			}
			env.ParseArgs(&args)
			t, err := BindToken(env.state, env.to)
			if err != nil {
				return nil, err
			}
			return nil, t.Transfer(env.Environment, args.To, orZero(args.Amount))
		}},
		{"approve", func(env *callEnv) (any, error) {
			var args struct {
				Spender thor.Address `json:"spender"`
				Amount  *big.Int     `json:"amount"`
			}
			env.ParseArgs(&args)
			t, err := BindToken(env.state, env.to)
			if err != nil {
				return nil, err
			}
			amount := args.Amount
			if amount == nil {
				amount = thor.MaxUint256
			}
			return nil, t.Approve(env.Environment, args.Spender, amount)
		}},
		{"mint", func(env *callEnv) (any, error) {
			var args struct {
				To     thor.Address `json:"to"`
				Amount *big.Int     `json:"amount"`
			}
			env.ParseArgs(&args)
			t, err := BindToken(env.state, env.to)
			if err != nil {
				return nil, err
			}
			return nil, t.Mint(env.Environment, args.To, orZero(args.Amount))
		}},
		{"delegate", func(env *callEnv) (any, error) {
			var args struct {
				Delegatee thor.Address `json:"delegatee"`
			}
			env.ParseArgs(&args)
			t, err := BindToken(env.state, env.to)
			if err != nil {
				return nil, err
			}
			return nil, t.Delegate(env.Environment, args.Delegatee)
		}},
		{"setMinter", func(env *callEnv) (any, error) {
			var args struct {
				Minter thor.Address `json:"minter"`
			}
			env.ParseArgs(&args)
			t, err := BindToken(env.state, env.to)
			if err != nil {
				return nil, err
			}
			return nil, t.SetMinter(env.Environment, args.Minter)
		}},
	}

	notifierDefines := []struct {
		name string
		run  nativeMethod
	}{
		{"notify", func(env *callEnv) (any, error) {
			n, err := BindNotifier(env.state, env.to, env.Now)
			if err != nil {
				return nil, err
			}
			return n.Notify(env.Environment)
		}},
		{"setRewardAmount", func(env *callEnv) (any, error) {
			var args amountArgs
			env.ParseArgs(&args)
			n, err := BindNotifier(env.state, env.to, env.Now)
			if err != nil {
				return nil, err
			}
			return nil, n.SetRewardAmount(env.Environment, orZero(args.Amount))
		}},
		{"setRewardInterval", func(env *callEnv) (any, error) {
			var args struct {
				Interval uint64 `json:"interval"`
			}
			env.ParseArgs(&args)
			n, err := BindNotifier(env.state, env.to, env.Now)
			if err != nil {
				return nil, err
			}
			return nil, n.SetRewardInterval(env.Environment, args.Interval)
		}},
		{"setFunder", func(env *callEnv) (any, error) {
			var args struct {
				Funder thor.Address `json:"funder"`
			}
			env.ParseArgs(&args)
			n, err := BindNotifier(env.state, env.to, env.Now)
			if err != nil {
				return nil, err
			}
			return nil, n.SetFunder(env.Environment, args.Funder)
		}},
		{"setOwner", func(env *callEnv) (any, error) {
			var args struct {
				Owner thor.Address `json:"owner"`
			}
			env.ParseArgs(&args)
			n, err := BindNotifier(env.state, env.to, env.Now)
			if err != nil {
				return nil, err
			}
			return nil, n.SetOwner(env.Environment, args.Owner)
		}},
	}

	type scoreArgs struct {
		Delegatee thor.Address `json:"delegatee"`
		Score     uint64       `json:"score"`
	}
	eligibilityDefines := []struct {
		name string
		run  nativeMethod
	}{
		{"updateDelegateeScore", func(env *callEnv) (any, error) {
			var args scoreArgs
			env.ParseArgs(&args)
			return nil, Eligibility.WithState(env.state, env.Now).UpdateDelegateeScore(env.Environment, args.Delegatee, args.Score)
		}},
		{"overrideDelegateeScore", func(env *callEnv) (any, error) {
			var args scoreArgs
			env.ParseArgs(&args)
			return nil, Eligibility.WithState(env.state, env.Now).OverrideDelegateeScore(env.Environment, args.Delegatee, args.Score)
		}},
		{"setDelegateeScoreLock", func(env *callEnv) (any, error) {
			var args struct {
				Delegatee thor.Address `json:"delegatee"`
				Locked    bool         `json:"locked"`
			}
			env.ParseArgs(&args)
			return nil, Eligibility.WithState(env.state, env.Now).SetDelegateeScoreLock(env.Environment, args.Delegatee, args.Locked)
		}},
		{"setDelegateeEligibilityThreshold", func(env *callEnv) (any, error) {
			var args struct {
				Threshold uint64 `json:"threshold"`
			}
			env.ParseArgs(&args)
			return nil, Eligibility.WithState(env.state, env.Now).SetDelegateeEligibilityThreshold(env.Environment, args.Threshold)
		}},
		{"setUpdateEligibilityDelay", func(env *callEnv) (any, error) {
			var args struct {
				Delay uint64 `json:"delay"`
			}
			env.ParseArgs(&args)
			return nil, Eligibility.WithState(env.state, env.Now).SetUpdateEligibilityDelay(env.Environment, args.Delay)
		}},
		{"setScoreOracle", func(env *callEnv) (any, error) {
			var args struct {
				Oracle thor.Address `json:"oracle"`
			}
			env.ParseArgs(&args)
			return nil, Eligibility.WithState(env.state, env.Now).SetScoreOracle(env.Environment, args.Oracle)
		}},
		{"setOraclePauseGuardian", func(env *callEnv) (any, error) {
			var args struct {
				Guardian thor.Address `json:"guardian"`
			}
			env.ParseArgs(&args)
			return nil, Eligibility.WithState(env.state, env.Now).SetOraclePauseGuardian(env.Environment, args.Guardian)
		}},
		{"setOracleState", func(env *callEnv) (any, error) {
			var args struct {
				Paused bool `json:"paused"`
			}
			env.ParseArgs(&args)
			return nil, Eligibility.WithState(env.state, env.Now).SetOracleState(env.Environment, args.Paused)
		}},
	}

	register := func(kind contractKind, defines []struct {
		name string
		run  nativeMethod
	}) {
		methods := make(map[string]nativeMethod, len(defines))
		for _, def := range defines {
			if _, exists := methods[def.name]; exists {
				panic("duplicated native method: " + def.name)
			}
			methods[def.name] = def.run
		}
		nativeMethods[kind] = methods
	}
	register(kindLedger, ledgerDefines)
	register(kindToken, tokenDefines)
	register(kindNotifier, notifierDefines)
	register(kindEligibility, eligibilityDefines)
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
