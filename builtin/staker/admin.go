// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"math/big"

	"github.com/vechain/stakeledger/builtin/reverts"
	"github.com/vechain/stakeledger/builtin/staker/settings"
	"github.com/vechain/stakeledger/thor"
	"github.com/vechain/stakeledger/xenv"
)

func (s *Staker) requireAdmin(env *xenv.Environment) error {
	admin, err := s.settingsService.Admin()
	if err != nil {
		return err
	}
	if env.Caller() != admin {
		logger.Info("unauthorized admin call", "caller", env.Caller())
		return reverts.New(reverts.ErrUnauthorized, "caller is not admin")
	}
	return nil
}

// SetRewardNotifier enables or disables a reward notifier.
func (s *Staker) SetRewardNotifier(env *xenv.Environment, notifier thor.Address, enabled bool) (err error) {
	defer observe("set_reward_notifier", &err)
	logger.Debug("setting reward notifier", "notifier", notifier, "enabled", enabled)

	if err := s.requireAdmin(env); err != nil {
		return err
	}
	if notifier.IsZero() {
		return reverts.New(reverts.ErrInvalidAddress, "zero notifier")
	}
	if err := s.notifierService.Set(notifier, enabled); err != nil {
		return err
	}
	return s.emit(env, EventRewardNotifierSet, nil, &notifier, notifierSetEvent{Notifier: notifier, Enabled: enabled})
}

// SetAdmin hands the admin role over.
func (s *Staker) SetAdmin(env *xenv.Environment, newAdmin thor.Address) (err error) {
	defer observe("set_admin", &err)
	logger.Debug("setting admin", "admin", newAdmin)

	if err := s.requireAdmin(env); err != nil {
		return err
	}
	if newAdmin.IsZero() {
		return reverts.New(reverts.ErrInvalidAddress, "zero admin")
	}
	old := env.Caller()
	s.settingsService.SetAdmin(newAdmin)
	return s.emit(env, EventAdminSet, nil, &newAdmin, adminSetEvent{Old: old, New: newAdmin})
}

// SetClaimFeeParameters sets the fee deducted from claims. A positive fee needs a collector.
func (s *Staker) SetClaimFeeParameters(env *xenv.Environment, feeAmount *big.Int, feeCollector thor.Address) (err error) {
	defer observe("set_claim_fee_parameters", &err)
	logger.Debug("setting claim fee", "fee", feeAmount, "collector", feeCollector)

	if err := s.requireAdmin(env); err != nil {
		return err
	}
	if feeAmount.Sign() < 0 {
		return reverts.New(reverts.ErrInvalidAmount, "negative fee")
	}
	maxFee, err := s.settingsService.MaxClaimFee()
	if err != nil {
		return err
	}
	if feeAmount.Cmp(maxFee) > 0 {
		return reverts.Newf(reverts.ErrFeeExceedsMax, "fee %v above max %v", feeAmount, maxFee)
	}
	if feeAmount.Sign() > 0 && feeCollector.IsZero() {
		return reverts.New(reverts.ErrInvalidAddress, "zero fee collector")
	}
	old, err := s.settingsService.ClaimFeeParameters()
	if err != nil {
		return err
	}
	if err := s.settingsService.SetClaimFeeParameters(&settings.ClaimFeeParameters{
		FeeAmount:    new(big.Int).Set(feeAmount),
		FeeCollector: feeCollector,
	}); err != nil {
		return err
	}
	return s.emit(env, EventClaimFeeParametersSet, nil, &feeCollector, claimFeeSetEvent{
		OldFeeAmount:    old.FeeAmount,
		NewFeeAmount:    feeAmount,
		OldFeeCollector: old.FeeCollector,
		NewFeeCollector: feeCollector,
	})
}

// SetMaxBumpTip changes the upper bound of bump tips.
func (s *Staker) SetMaxBumpTip(env *xenv.Environment, tip *big.Int) (err error) {
	defer observe("set_max_bump_tip", &err)
	logger.Debug("setting max bump tip", "tip", tip)

	if err := s.requireAdmin(env); err != nil {
		return err
	}
	if tip.Sign() < 0 {
		return reverts.New(reverts.ErrInvalidAmount, "negative tip")
	}
	old, err := s.settingsService.MaxBumpTip()
	if err != nil {
		return err
	}
	if err := s.settingsService.SetMaxBumpTip(tip); err != nil {
		return reverts.New(reverts.ErrInvalidAmount, err.Error())
	}
	return s.emit(env, EventMaxBumpTipSet, nil, nil, maxBumpTipSetEvent{Old: old, New: tip})
}

// SetEarningPowerCalculator switches to another registered calculator.
// Existing deposits keep their earning power until they are touched or bumped.
func (s *Staker) SetEarningPowerCalculator(env *xenv.Environment, calculator thor.Address) (err error) {
	defer observe("set_earning_power_calculator", &err)
	logger.Debug("setting earning power calculator", "calculator", calculator)

	if err := s.requireAdmin(env); err != nil {
		return err
	}
	if _, ok := s.calculators.Get(calculator); !ok {
		return reverts.Newf(reverts.ErrInvalidAddress, "unknown calculator %v", calculator)
	}
	old, err := s.settingsService.Calculator()
	if err != nil {
		return err
	}
	s.settingsService.SetCalculator(calculator)
	return s.emit(env, EventEarningPowerCalculatorSet, nil, &calculator, calculatorSetEvent{Old: old, New: calculator})
}
