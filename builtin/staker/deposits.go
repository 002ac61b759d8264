// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"math/big"

	"github.com/vechain/stakeledger/builtin/reverts"
	"github.com/vechain/stakeledger/builtin/staker/deposit"
	"github.com/vechain/stakeledger/thor"
	"github.com/vechain/stakeledger/xenv"
)

// CreateDeposit stakes amount of the caller's stake token into a new deposit.
// A zero delegatee or claimer defaults to the caller.
func (s *Staker) CreateDeposit(
	env *xenv.Environment,
	amount *big.Int,
	delegatee thor.Address,
	claimer thor.Address,
) (id deposit.ID, err error) {
	defer observe("create_deposit", &err)
	owner := env.Caller()
	logger.Debug("creating deposit", "owner", owner, "amount", amount, "delegatee", delegatee, "claimer", claimer)

	if amount.Sign() <= 0 {
		return 0, reverts.New(reverts.ErrInvalidAmount, "zero stake")
	}
	if delegatee.IsZero() {
		delegatee = owner
	}
	if claimer.IsZero() {
		claimer = owner
	}

	acc, err := s.streamService.Checkpoint(env.Now())
	if err != nil {
		return 0, err
	}
	surrogateAddr, created, err := s.obtainSurrogate(delegatee)
	if err != nil {
		return 0, err
	}
	calc, err := s.calculator()
	if err != nil {
		return 0, err
	}
	power, err := calc.Power(amount, owner, delegatee)
	if err != nil {
		return 0, err
	}

	d := &deposit.Deposit{
		Owner:                    owner,
		Delegatee:                delegatee,
		Claimer:                  claimer,
		Balance:                  new(big.Int).Set(amount),
		EarningPower:             new(big.Int),
		RewardPerTokenCheckpoint: acc,
		ScaledUnclaimedReward:    new(big.Int),
	}
	if err := s.setEarningPower(d, power, amount); err != nil {
		return 0, err
	}
	if id, err = s.depositService.Add(d); err != nil {
		return 0, err
	}
	if err := s.emit(env, EventDepositCreated, &id, &owner, depositCreatedEvent{
		Owner:        owner,
		Delegatee:    delegatee,
		Claimer:      claimer,
		Amount:       amount,
		EarningPower: d.EarningPower,
	}); err != nil {
		return 0, err
	}

	if created {
		if err := s.deploySurrogate(env, delegatee, surrogateAddr); err != nil {
			return 0, err
		}
	}
	if err := s.stakeToken.TransferFrom(s.ledgerEnv(env), owner, surrogateAddr, amount); err != nil {
		logger.Info("create deposit failed", "owner", owner, "error", err)
		return 0, err
	}

	logger.Info("created deposit", "id", id, "owner", owner)
	return id, nil
}

// StakeMore adds amount of the owner's stake token to an existing deposit.
func (s *Staker) StakeMore(env *xenv.Environment, id deposit.ID, amount *big.Int) (err error) {
	defer observe("stake_more", &err)
	logger.Debug("staking more", "id", id, "caller", env.Caller(), "amount", amount)

	if amount.Sign() <= 0 {
		return reverts.New(reverts.ErrInvalidAmount, "zero stake")
	}
	d, err := s.ownedDeposit(env, id)
	if err != nil {
		logger.Info("stake more failed", "id", id, "error", err)
		return err
	}
	if err := s.checkpoint(env.Now(), d); err != nil {
		return err
	}

	balance := new(big.Int).Add(d.Balance, amount)
	calc, err := s.calculator()
	if err != nil {
		return err
	}
	power, err := calc.Power(balance, d.Owner, d.Delegatee)
	if err != nil {
		return err
	}
	d.Balance = balance
	if err := s.setEarningPower(d, power, amount); err != nil {
		return err
	}
	if err := s.depositService.Update(id, d); err != nil {
		return err
	}
	surrogateAddr, err := s.surrogateService.Get(d.Delegatee)
	if err != nil {
		return err
	}
	if err := s.emit(env, EventStakeDeposited, &id, &d.Owner, stakeChangedEvent{
		Owner:          d.Owner,
		Amount:         amount,
		DepositBalance: d.Balance,
		EarningPower:   d.EarningPower,
	}); err != nil {
		return err
	}

	return s.stakeToken.TransferFrom(s.ledgerEnv(env), d.Owner, surrogateAddr, amount)
}

// Withdraw returns amount of stake from the deposit's surrogate to the owner.
// The deposit stays in place when its balance drops to zero.
func (s *Staker) Withdraw(env *xenv.Environment, id deposit.ID, amount *big.Int) (err error) {
	defer observe("withdraw", &err)
	logger.Debug("withdrawing", "id", id, "caller", env.Caller(), "amount", amount)

	if amount.Sign() <= 0 {
		return reverts.New(reverts.ErrInvalidAmount, "zero withdrawal")
	}
	d, err := s.ownedDeposit(env, id)
	if err != nil {
		logger.Info("withdraw failed", "id", id, "error", err)
		return err
	}
	if amount.Cmp(d.Balance) > 0 {
		logger.Info("withdraw failed", "id", id, "balance", d.Balance, "amount", amount)
		return reverts.Newf(reverts.ErrInvalidAmount, "withdrawal %v above balance %v", amount, d.Balance)
	}
	if err := s.checkpoint(env.Now(), d); err != nil {
		return err
	}

	balance := new(big.Int).Sub(d.Balance, amount)
	calc, err := s.calculator()
	if err != nil {
		return err
	}
	power, err := calc.Power(balance, d.Owner, d.Delegatee)
	if err != nil {
		return err
	}
	d.Balance = balance
	if err := s.setEarningPower(d, power, new(big.Int).Neg(amount)); err != nil {
		return err
	}
	if err := s.depositService.Update(id, d); err != nil {
		return err
	}
	surrogateAddr, err := s.surrogateService.Get(d.Delegatee)
	if err != nil {
		return err
	}
	if err := s.emit(env, EventStakeWithdrawn, &id, &d.Owner, stakeChangedEvent{
		Owner:          d.Owner,
		Amount:         amount,
		DepositBalance: d.Balance,
		EarningPower:   d.EarningPower,
	}); err != nil {
		return err
	}

	return s.stakeToken.TransferFrom(s.ledgerEnv(env), surrogateAddr, d.Owner, amount)
}

// AlterDelegatee moves the deposit's stake to the surrogate of newDelegatee.
// Reward accrued so far is kept.
func (s *Staker) AlterDelegatee(env *xenv.Environment, id deposit.ID, newDelegatee thor.Address) (err error) {
	defer observe("alter_delegatee", &err)
	logger.Debug("altering delegatee", "id", id, "caller", env.Caller(), "delegatee", newDelegatee)

	if newDelegatee.IsZero() {
		return reverts.New(reverts.ErrInvalidAddress, "zero delegatee")
	}
	d, err := s.ownedDeposit(env, id)
	if err != nil {
		logger.Info("alter delegatee failed", "id", id, "error", err)
		return err
	}
	if err := s.checkpoint(env.Now(), d); err != nil {
		return err
	}

	oldDelegatee := d.Delegatee
	oldSurrogate, err := s.surrogateService.Get(oldDelegatee)
	if err != nil {
		return err
	}
	newSurrogate, created, err := s.obtainSurrogate(newDelegatee)
	if err != nil {
		return err
	}
	calc, err := s.calculator()
	if err != nil {
		return err
	}
	power, err := calc.Power(d.Balance, d.Owner, newDelegatee)
	if err != nil {
		return err
	}
	d.Delegatee = newDelegatee
	if err := s.setEarningPower(d, power, new(big.Int)); err != nil {
		return err
	}
	if err := s.depositService.Update(id, d); err != nil {
		return err
	}
	if err := s.emit(env, EventDelegateeAltered, &id, &d.Owner, addressAlteredEvent{
		Old:          oldDelegatee,
		New:          newDelegatee,
		EarningPower: d.EarningPower,
	}); err != nil {
		return err
	}

	if created {
		if err := s.deploySurrogate(env, newDelegatee, newSurrogate); err != nil {
			return err
		}
	}
	if d.Balance.Sign() == 0 || oldSurrogate == newSurrogate {
		return nil
	}
	return s.stakeToken.TransferFrom(s.ledgerEnv(env), oldSurrogate, newSurrogate, d.Balance)
}

// AlterClaimer sets who besides the owner may claim the deposit's reward.
func (s *Staker) AlterClaimer(env *xenv.Environment, id deposit.ID, newClaimer thor.Address) (err error) {
	defer observe("alter_claimer", &err)
	logger.Debug("altering claimer", "id", id, "caller", env.Caller(), "claimer", newClaimer)

	if newClaimer.IsZero() {
		return reverts.New(reverts.ErrInvalidAddress, "zero claimer")
	}
	d, err := s.ownedDeposit(env, id)
	if err != nil {
		logger.Info("alter claimer failed", "id", id, "error", err)
		return err
	}
	if err := s.checkpoint(env.Now(), d); err != nil {
		return err
	}
	oldClaimer := d.Claimer
	d.Claimer = newClaimer
	if err := s.depositService.Update(id, d); err != nil {
		return err
	}
	return s.emit(env, EventClaimerAltered, &id, &d.Owner, addressAlteredEvent{Old: oldClaimer, New: newClaimer})
}
