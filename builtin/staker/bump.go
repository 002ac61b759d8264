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

// BumpEarningPower re-evaluates the deposit's earning power against the calculator and
// pays requestedTip out of the deposit's unclaimed reward to tipReceiver. Anyone may call it.
//
// The tip is bounded by the max bump tip and by the unclaimed reward. When earning power
// goes down, the deposit must keep at least max bump tip of unclaimed reward after the tip.
func (s *Staker) BumpEarningPower(
	env *xenv.Environment,
	id deposit.ID,
	tipReceiver thor.Address,
	requestedTip *big.Int,
) (err error) {
	defer observe("bump_earning_power", &err)
	logger.Debug("bumping earning power", "id", id, "bumper", env.Caller(), "tip", requestedTip)

	if requestedTip.Sign() < 0 {
		return reverts.New(reverts.ErrInvalidAmount, "negative tip")
	}
	maxTip, err := s.settingsService.MaxBumpTip()
	if err != nil {
		return err
	}
	if requestedTip.Cmp(maxTip) > 0 {
		return reverts.Newf(reverts.ErrTipExceedsBound, "tip %v above max %v", requestedTip, maxTip)
	}
	if requestedTip.Sign() > 0 && tipReceiver.IsZero() {
		return reverts.New(reverts.ErrInvalidAddress, "zero tip receiver")
	}

	d, err := s.Deposit(id)
	if err != nil {
		return err
	}
	if err := s.checkpoint(env.Now(), d); err != nil {
		return err
	}

	calc, err := s.calculator()
	if err != nil {
		return err
	}
	newPower, qualifies, err := calc.UpdatedPower(d.Balance, d.Owner, d.Delegatee, d.EarningPower)
	if err != nil {
		return err
	}
	oldPower := d.EarningPower
	if !qualifies || newPower.Cmp(oldPower) == 0 {
		logger.Info("bump failed", "id", id, "qualifies", qualifies, "power", oldPower)
		return reverts.Newf(reverts.ErrUnqualified, "deposit %v earning power %v", id, oldPower)
	}

	unclaimed := d.UnclaimedReward()
	if newPower.Cmp(oldPower) > 0 {
		if unclaimed.Cmp(requestedTip) < 0 {
			return reverts.Newf(reverts.ErrTipExceedsBound, "tip %v above unclaimed %v", requestedTip, unclaimed)
		}
	} else {
		remaining := new(big.Int).Sub(unclaimed, requestedTip)
		if remaining.Cmp(maxTip) < 0 {
			return reverts.Newf(reverts.ErrTipExceedsBound, "unclaimed %v after tip below max tip %v", remaining, maxTip)
		}
	}

	if err := s.setEarningPower(d, newPower, new(big.Int)); err != nil {
		return err
	}
	d.ScaledUnclaimedReward.Sub(d.ScaledUnclaimedReward, new(big.Int).Mul(requestedTip, thor.ScaleFactor))
	if err := s.depositService.Update(id, d); err != nil {
		return err
	}
	bumper := env.Caller()
	if err := s.emit(env, EventEarningPowerBumped, &id, &bumper, earningPowerBumpedEvent{
		OldEarningPower: oldPower,
		NewEarningPower: d.EarningPower,
		Bumper:          bumper,
		TipReceiver:     tipReceiver,
		Tip:             requestedTip,
	}); err != nil {
		return err
	}

	if requestedTip.Sign() > 0 {
		if err := s.rewardToken.Transfer(s.ledgerEnv(env), tipReceiver, requestedTip); err != nil {
			return err
		}
	}

	logger.Info("bumped earning power", "id", id, "old", oldPower, "new", d.EarningPower)
	return nil
}
