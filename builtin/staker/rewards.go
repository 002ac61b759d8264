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

// NotifyRewardAmount pulls amount of reward token from the caller and streams it,
// together with whatever is left of the running window, over a new reward duration.
// Caller must be an enabled reward notifier.
func (s *Staker) NotifyRewardAmount(env *xenv.Environment, amount *big.Int) (err error) {
	defer observe("notify_reward_amount", &err)
	notifier := env.Caller()
	logger.Debug("notifying reward", "notifier", notifier, "amount", amount)

	enabled, err := s.notifierService.IsNotifier(notifier)
	if err != nil {
		return err
	}
	if !enabled {
		logger.Info("notify failed", "notifier", notifier, "error", "not a notifier")
		return reverts.New(reverts.ErrInvalidNotifier, notifier.String())
	}
	if amount.Sign() <= 0 {
		return reverts.New(reverts.ErrInvalidAmount, "zero reward")
	}
	duration, err := s.settingsService.RewardDuration()
	if err != nil {
		return err
	}

	stream, err := s.streamService.Notify(env.Now(), amount, duration)
	if err != nil {
		return err
	}
	if err := s.emit(env, EventRewardNotified, nil, &notifier, rewardNotifiedEvent{
		Notifier:         notifier,
		Amount:           amount,
		ScaledRewardRate: stream.ScaledRewardRate,
		RewardEndTime:    stream.RewardEndTime,
	}); err != nil {
		return err
	}

	if err := s.rewardToken.TransferFrom(s.ledgerEnv(env), notifier, s.addr, amount); err != nil {
		logger.Info("notify failed", "notifier", notifier, "error", err)
		return err
	}

	// the stream must be covered by what the ledger holds
	balance, err := s.rewardToken.BalanceOf(s.addr)
	if err != nil {
		return err
	}
	scheduled := new(big.Int).Mul(stream.ScaledRewardRate, new(big.Int).SetUint64(duration))
	if scheduled.Cmp(new(big.Int).Mul(balance, thor.ScaleFactor)) > 0 {
		return reverts.Newf(reverts.ErrInsufficientRewardBalance, "balance %v", balance)
	}

	logger.Info("notified reward", "notifier", notifier, "amount", amount, "end", stream.RewardEndTime)
	return nil
}

// ClaimReward pays the deposit's unclaimed reward, less the claim fee, to the caller.
// Caller must be the owner or the claimer. When the reward does not exceed the fee
// nothing is paid and zero is returned.
func (s *Staker) ClaimReward(env *xenv.Environment, id deposit.ID) (claimed *big.Int, err error) {
	defer observe("claim_reward", &err)
	caller := env.Caller()
	logger.Debug("claiming reward", "id", id, "caller", caller)

	d, err := s.Deposit(id)
	if err != nil {
		return nil, err
	}
	if caller != d.Owner && caller != d.Claimer {
		logger.Info("claim failed", "id", id, "caller", caller, "error", "not owner or claimer")
		return nil, reverts.Newf(reverts.ErrUnauthorized, "caller cannot claim deposit %v", id)
	}
	if err := s.checkpoint(env.Now(), d); err != nil {
		return nil, err
	}

	feeParams, err := s.settingsService.ClaimFeeParameters()
	if err != nil {
		return nil, err
	}
	fee := feeParams.FeeAmount
	if feeParams.FeeCollector.IsZero() {
		fee = new(big.Int)
	}
	reward := d.UnclaimedReward()
	if reward.Cmp(fee) <= 0 {
		// nothing payable, keep the checkpoint
		if err := s.depositService.Update(id, d); err != nil {
			return nil, err
		}
		return new(big.Int), nil
	}

	d.ScaledUnclaimedReward.Sub(d.ScaledUnclaimedReward, new(big.Int).Mul(reward, thor.ScaleFactor))
	payout := new(big.Int).Sub(reward, fee)

	calc, err := s.calculator()
	if err != nil {
		return nil, err
	}
	power, err := calc.Power(d.Balance, d.Owner, d.Delegatee)
	if err != nil {
		return nil, err
	}
	if err := s.setEarningPower(d, power, new(big.Int)); err != nil {
		return nil, err
	}
	if err := s.depositService.Update(id, d); err != nil {
		return nil, err
	}
	if err := s.emit(env, EventRewardClaimed, &id, &caller, rewardClaimedEvent{
		Claimer:      caller,
		Amount:       payout,
		Fee:          fee,
		EarningPower: d.EarningPower,
	}); err != nil {
		return nil, err
	}

	ledgerEnv := s.ledgerEnv(env)
	if err := s.rewardToken.Transfer(ledgerEnv, caller, payout); err != nil {
		return nil, err
	}
	if fee.Sign() > 0 {
		if err := s.rewardToken.Transfer(ledgerEnv, feeParams.FeeCollector, fee); err != nil {
			return nil, err
		}
	}

	logger.Info("claimed reward", "id", id, "claimer", caller, "amount", payout, "fee", fee)
	return payout, nil
}
