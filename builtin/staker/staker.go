// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/builtin/earningpower"
	"github.com/vechain/stakeledger/builtin/reverts"
	"github.com/vechain/stakeledger/builtin/solidity"
	"github.com/vechain/stakeledger/builtin/staker/deposit"
	"github.com/vechain/stakeledger/builtin/staker/notifiers"
	"github.com/vechain/stakeledger/builtin/staker/rewardstream"
	"github.com/vechain/stakeledger/builtin/staker/settings"
	"github.com/vechain/stakeledger/builtin/staker/surrogate"
	"github.com/vechain/stakeledger/log"
	"github.com/vechain/stakeledger/state"
	"github.com/vechain/stakeledger/thor"
	"github.com/vechain/stakeledger/xenv"
)

var logger = log.WithContext("pkg", "staker")

func SetLogger(l log.Logger) {
	logger = l
}

// Token is the reward asset as seen by the ledger.
type Token interface {
	Address() thor.Address
	BalanceOf(owner thor.Address) (*big.Int, error)
	Transfer(env *xenv.Environment, to thor.Address, amount *big.Int) error
	TransferFrom(env *xenv.Environment, from, to thor.Address, amount *big.Int) error
}

// VotesToken is the stake asset. Surrogates delegate their votes through it.
type VotesToken interface {
	Token
	Approve(env *xenv.Environment, spender thor.Address, amount *big.Int) error
	Delegate(env *xenv.Environment, delegatee thor.Address) error
}

// Staker implements native methods of the staking ledger.
type Staker struct {
	addr        thor.Address
	rewardToken Token
	stakeToken  VotesToken
	calculators *earningpower.Registry

	streamService    *rewardstream.Service
	depositService   *deposit.Service
	surrogateService *surrogate.Service
	notifierService  *notifiers.Service
	settingsService  *settings.Service
}

// New create a new instance.
func New(
	addr thor.Address,
	state *state.State,
	rewardToken Token,
	stakeToken VotesToken,
	calculators *earningpower.Registry,
) *Staker {
	sctx := solidity.NewContext(addr, state)

	return &Staker{
		addr:        addr,
		rewardToken: rewardToken,
		stakeToken:  stakeToken,
		calculators: calculators,

		streamService:    rewardstream.New(sctx),
		depositService:   deposit.New(sctx),
		surrogateService: surrogate.New(sctx),
		notifierService:  notifiers.New(sctx),
		settingsService:  settings.New(sctx),
	}
}

// Initialize applies the construction parameters. It runs once, right after deployment.
func (s *Staker) Initialize(env *xenv.Environment, p *Params) error {
	logger.Debug("initializing ledger", "addr", s.addr, "admin", p.Admin, "calculator", p.Calculator)

	admin, err := s.settingsService.Admin()
	if err != nil {
		return err
	}
	if !admin.IsZero() {
		return reverts.New(reverts.ErrUnauthorized, "ledger already initialized")
	}
	if p.Admin.IsZero() || p.RewardToken.IsZero() || p.StakeToken.IsZero() {
		return reverts.New(reverts.ErrInvalidAddress, "zero admin or token")
	}
	if _, ok := s.calculators.Get(p.Calculator); !ok {
		return reverts.Newf(reverts.ErrInvalidAddress, "unknown calculator %v", p.Calculator)
	}
	duration := p.RewardDuration
	if duration == 0 {
		duration = thor.DefaultRewardDuration
	}

	s.settingsService.SetAdmin(p.Admin)
	s.settingsService.SetCalculator(p.Calculator)
	if err := s.settingsService.SetMaxBumpTip(orZero(p.MaxBumpTip)); err != nil {
		return err
	}
	if err := s.settingsService.SetMaxClaimFee(orZero(p.MaxClaimFee)); err != nil {
		return err
	}
	if err := s.settingsService.SetRewardDuration(duration); err != nil {
		return err
	}
	return s.emit(env, EventAdminSet, nil, &p.Admin, adminSetEvent{New: p.Admin})
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}

//
// Getters - no state change
//

func (s *Staker) Address() thor.Address {
	return s.addr
}

func (s *Staker) RewardToken() Token {
	return s.rewardToken
}

func (s *Staker) StakeToken() VotesToken {
	return s.stakeToken
}

// Deposit returns the deposit record. It fails with ErrUnknownDeposit for ids never assigned.
func (s *Staker) Deposit(id deposit.ID) (*deposit.Deposit, error) {
	d, err := s.depositService.GetDeposit(id)
	if err != nil {
		return nil, err
	}
	if d.IsEmpty() {
		return nil, reverts.Newf(reverts.ErrUnknownDeposit, "deposit %v", id)
	}
	return d, nil
}

// UnclaimedReward returns the reward the deposit could claim at time now, fee not deducted.
func (s *Staker) UnclaimedReward(id deposit.ID, now uint64) (*big.Int, error) {
	d, err := s.Deposit(id)
	if err != nil {
		return nil, err
	}
	acc, err := s.streamService.RewardPerTokenAccumulated(now)
	if err != nil {
		return nil, err
	}
	d.Accrue(acc)
	return d.UnclaimedReward(), nil
}

// DepositsOf lists the deposits created by the owner.
func (s *Staker) DepositsOf(owner thor.Address) ([]deposit.ID, error) {
	return s.depositService.DepositsOf(owner)
}

func (s *Staker) DepositCount() (uint64, error) {
	return s.depositService.Count()
}

// DepositorTotals returns the sum of stake and earning power over the owner's deposits.
func (s *Staker) DepositorTotals(owner thor.Address) (*deposit.Totals, error) {
	return s.depositService.DepositorTotals(owner)
}

func (s *Staker) TotalEarningPower() (*big.Int, error) {
	return s.streamService.TotalEarningPower()
}

func (s *Staker) TotalStaked() (*big.Int, error) {
	return s.streamService.TotalStaked()
}

// RewardStream returns the global reward state as of the last checkpoint.
func (s *Staker) RewardStream() (*rewardstream.Stream, error) {
	return s.streamService.Get()
}

// RewardPerTokenAccumulated returns the live accumulator at time now.
func (s *Staker) RewardPerTokenAccumulated(now uint64) (*big.Int, error) {
	return s.streamService.RewardPerTokenAccumulated(now)
}

// Surrogate returns the custody account of the delegatee, zero if none exists yet.
func (s *Staker) Surrogate(delegatee thor.Address) (thor.Address, error) {
	return s.surrogateService.Get(delegatee)
}

func (s *Staker) IsRewardNotifier(addr thor.Address) (bool, error) {
	return s.notifierService.IsNotifier(addr)
}

func (s *Staker) Admin() (thor.Address, error) {
	return s.settingsService.Admin()
}

func (s *Staker) ClaimFeeParameters() (*settings.ClaimFeeParameters, error) {
	return s.settingsService.ClaimFeeParameters()
}

func (s *Staker) MaxBumpTip() (*big.Int, error) {
	return s.settingsService.MaxBumpTip()
}

func (s *Staker) MaxClaimFee() (*big.Int, error) {
	return s.settingsService.MaxClaimFee()
}

func (s *Staker) EarningPowerCalculator() (thor.Address, error) {
	return s.settingsService.Calculator()
}

func (s *Staker) RewardDuration() (uint64, error) {
	return s.settingsService.RewardDuration()
}

//
// internals
//

func (s *Staker) calculator() (earningpower.Calculator, error) {
	addr, err := s.settingsService.Calculator()
	if err != nil {
		return nil, err
	}
	calc, ok := s.calculators.Get(addr)
	if !ok {
		return nil, errors.Errorf("earning power calculator %v not registered", addr)
	}
	return calc, nil
}

// ledgerEnv is the env of calls made by the ledger itself.
func (s *Staker) ledgerEnv(env *xenv.Environment) *xenv.Environment {
	return env.WithCaller(s.addr)
}

// ownedDeposit loads a deposit and checks the caller owns it.
func (s *Staker) ownedDeposit(env *xenv.Environment, id deposit.ID) (*deposit.Deposit, error) {
	d, err := s.Deposit(id)
	if err != nil {
		return nil, err
	}
	if d.Owner != env.Caller() {
		return nil, reverts.Newf(reverts.ErrUnauthorized, "caller is not owner of deposit %v", id)
	}
	return d, nil
}

// checkpoint moves the global accumulator to now and syncs the deposit's unclaimed
// reward at its current earning power. It must run before the deposit's balance,
// delegatee or earning power change.
func (s *Staker) checkpoint(now uint64, d *deposit.Deposit) error {
	acc, err := s.streamService.Checkpoint(now)
	if err != nil {
		return err
	}
	d.Accrue(acc)
	return nil
}

// setEarningPower moves the deposit to newPower and applies the deltas to every aggregate.
func (s *Staker) setEarningPower(d *deposit.Deposit, newPower *big.Int, stakedDelta *big.Int) error {
	powerDelta := new(big.Int).Sub(newPower, d.EarningPower)
	switch powerDelta.Sign() {
	case 1:
		if err := s.streamService.AddEarningPower(powerDelta); err != nil {
			return errors.Wrap(err, "total earning power")
		}
	case -1:
		if err := s.streamService.SubEarningPower(new(big.Int).Neg(powerDelta)); err != nil {
			return errors.Wrap(err, "total earning power")
		}
	}
	switch stakedDelta.Sign() {
	case 1:
		if err := s.streamService.AddStaked(stakedDelta); err != nil {
			return errors.Wrap(err, "total staked")
		}
	case -1:
		if err := s.streamService.SubStaked(new(big.Int).Neg(stakedDelta)); err != nil {
			return errors.Wrap(err, "total staked")
		}
	}
	if err := s.depositService.AdjustDepositorTotals(d.Owner, stakedDelta, powerDelta); err != nil {
		return err
	}
	d.EarningPower = new(big.Int).Set(newPower)
	return nil
}

// obtainSurrogate returns the surrogate of the delegatee, registering it if absent.
// A newly registered surrogate must be set up with deploySurrogate once all state is final.
func (s *Staker) obtainSurrogate(delegatee thor.Address) (thor.Address, bool, error) {
	addr, err := s.surrogateService.Get(delegatee)
	if err != nil {
		return thor.Address{}, false, err
	}
	if !addr.IsZero() {
		return addr, false, nil
	}
	addr, err = s.surrogateService.Create(delegatee)
	if err != nil {
		return thor.Address{}, false, err
	}
	return addr, true, nil
}

// deploySurrogate delegates the surrogate votes and lets the ledger move its funds.
func (s *Staker) deploySurrogate(env *xenv.Environment, delegatee, addr thor.Address) error {
	surrogateEnv := env.WithCaller(addr)
	if err := s.stakeToken.Delegate(surrogateEnv, delegatee); err != nil {
		return errors.WithMessage(err, "surrogate delegate")
	}
	if err := s.stakeToken.Approve(surrogateEnv, s.addr, thor.MaxUint256); err != nil {
		return errors.WithMessage(err, "surrogate approve")
	}
	if err := s.emit(env, EventSurrogateDeployed, nil, &delegatee, surrogateDeployedEvent{Delegatee: delegatee, Surrogate: addr}); err != nil {
		return err
	}
	logger.Debug("surrogate deployed", "delegatee", delegatee, "surrogate", addr)
	return nil
}
