// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"encoding/json"
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/builtin/staker/deposit"
	"github.com/vechain/stakeledger/thor"
	"github.com/vechain/stakeledger/xenv"
)

const (
	EventDepositCreated            = "DepositCreated"
	EventStakeDeposited            = "StakeDeposited"
	EventStakeWithdrawn            = "StakeWithdrawn"
	EventDelegateeAltered          = "DelegateeAltered"
	EventClaimerAltered            = "ClaimerAltered"
	EventRewardClaimed             = "RewardClaimed"
	EventRewardNotified            = "RewardNotified"
	EventEarningPowerBumped        = "EarningPowerBumped"
	EventRewardNotifierSet         = "RewardNotifierSet"
	EventAdminSet                  = "AdminSet"
	EventClaimFeeParametersSet     = "ClaimFeeParametersSet"
	EventMaxBumpTipSet             = "MaxBumpTipSet"
	EventEarningPowerCalculatorSet = "EarningPowerCalculatorSet"
	EventSurrogateDeployed         = "SurrogateDeployed"
)

type depositCreatedEvent struct {
	Owner        thor.Address `json:"owner"`
	Delegatee    thor.Address `json:"delegatee"`
	Claimer      thor.Address `json:"claimer"`
	Amount       *big.Int     `json:"amount"`
	EarningPower *big.Int     `json:"earningPower"`
}

type stakeChangedEvent struct {
	Owner          thor.Address `json:"owner"`
	Amount         *big.Int     `json:"amount"`
	DepositBalance *big.Int     `json:"depositBalance"`
	EarningPower   *big.Int     `json:"earningPower"`
}

type addressAlteredEvent struct {
	Old          thor.Address `json:"old"`
	New          thor.Address `json:"new"`
	EarningPower *big.Int     `json:"earningPower,omitempty"`
}

type rewardClaimedEvent struct {
	Claimer      thor.Address `json:"claimer"`
	Amount       *big.Int     `json:"amount"`
	Fee          *big.Int     `json:"fee"`
	EarningPower *big.Int     `json:"earningPower"`
}

type rewardNotifiedEvent struct {
	Notifier         thor.Address `json:"notifier"`
	Amount           *big.Int     `json:"amount"`
	ScaledRewardRate *big.Int     `json:"scaledRewardRate"`
	RewardEndTime    uint64       `json:"rewardEndTime"`
}

type earningPowerBumpedEvent struct {
	OldEarningPower *big.Int     `json:"oldEarningPower"`
	NewEarningPower *big.Int     `json:"newEarningPower"`
	Bumper          thor.Address `json:"bumper"`
	TipReceiver     thor.Address `json:"tipReceiver"`
	Tip             *big.Int     `json:"tip"`
}

type notifierSetEvent struct {
	Notifier thor.Address `json:"notifier"`
	Enabled  bool         `json:"enabled"`
}

type adminSetEvent struct {
	Old thor.Address `json:"oldAdmin"`
	New thor.Address `json:"newAdmin"`
}

type claimFeeSetEvent struct {
	OldFeeAmount    *big.Int     `json:"oldFeeAmount"`
	NewFeeAmount    *big.Int     `json:"newFeeAmount"`
	OldFeeCollector thor.Address `json:"oldFeeCollector"`
	NewFeeCollector thor.Address `json:"newFeeCollector"`
}

type maxBumpTipSetEvent struct {
	Old *big.Int `json:"oldMaxBumpTip"`
	New *big.Int `json:"newMaxBumpTip"`
}

type calculatorSetEvent struct {
	Old thor.Address `json:"oldCalculator"`
	New thor.Address `json:"newCalculator"`
}

type surrogateDeployedEvent struct {
	Delegatee thor.Address `json:"delegatee"`
	Surrogate thor.Address `json:"surrogate"`
}

func (s *Staker) emit(env *xenv.Environment, name string, id *deposit.ID, account *thor.Address, fields any) error {
	data, err := json.Marshal(fields)
	if err != nil {
		return errors.Wrapf(err, "encode %s event", name)
	}
	ev := &xenv.Event{Address: s.addr, Name: name, Account: account, Data: data}
	if id != nil {
		v := uint64(*id)
		ev.DepositID = &v
	}
	env.Emit(ev)
	return nil
}
