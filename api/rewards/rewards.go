// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rewards

import (
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"

	"github.com/vechain/stakeledger/api/restutil"
	"github.com/vechain/stakeledger/builtin"
	"github.com/vechain/stakeledger/state"
	"github.com/vechain/stakeledger/thor"
)

// Summary is the global reward state of a ledger. Scaled values carry the 1e36 factor.
type Summary struct {
	Ledger                    thor.Address          `json:"ledger"`
	Time                      uint64                `json:"time"`
	RewardToken               thor.Address          `json:"rewardToken"`
	StakeToken                thor.Address          `json:"stakeToken"`
	Admin                     thor.Address          `json:"admin"`
	EarningPowerCalculator    thor.Address          `json:"earningPowerCalculator"`
	TotalStaked               *math.HexOrDecimal256 `json:"totalStaked"`
	TotalEarningPower         *math.HexOrDecimal256 `json:"totalEarningPower"`
	ScaledRewardRate          *math.HexOrDecimal256 `json:"scaledRewardRate"`
	RewardEndTime             uint64                `json:"rewardEndTime"`
	LastCheckpointTime        uint64                `json:"lastCheckpointTime"`
	RewardPerTokenAccumulated *math.HexOrDecimal256 `json:"rewardPerTokenAccumulated"`
	ScaledHeldReward          *math.HexOrDecimal256 `json:"scaledHeldReward"`
	RewardBalance             *math.HexOrDecimal256 `json:"rewardBalance"`
	RewardDuration            uint64                `json:"rewardDuration"`
	MaxBumpTip                *math.HexOrDecimal256 `json:"maxBumpTip"`
	MaxClaimFee               *math.HexOrDecimal256 `json:"maxClaimFee"`
	ClaimFeeAmount            *math.HexOrDecimal256 `json:"claimFeeAmount"`
	ClaimFeeCollector         thor.Address          `json:"claimFeeCollector"`
	DepositCount              uint64                `json:"depositCount"`
}

type Rewards struct {
	viewer restutil.Viewer
	ledger thor.Address
}

func New(viewer restutil.Viewer, ledger thor.Address) *Rewards {
	return &Rewards{
		viewer,
		ledger,
	}
}

func hex(v *big.Int) *math.HexOrDecimal256 {
	return (*math.HexOrDecimal256)(new(big.Int).Set(v))
}

// Summarize reads the reward state of the ledger at time now.
func Summarize(st *state.State, ledger thor.Address, now uint64) (*Summary, error) {
	l, err := builtin.BindLedger(st, ledger, func() uint64 { return now })
	if err != nil {
		return nil, err
	}
	stream, err := l.RewardStream()
	if err != nil {
		return nil, err
	}
	acc, err := l.RewardPerTokenAccumulated(now)
	if err != nil {
		return nil, err
	}
	admin, err := l.Admin()
	if err != nil {
		return nil, err
	}
	calc, err := l.EarningPowerCalculator()
	if err != nil {
		return nil, err
	}
	totalStaked, err := l.TotalStaked()
	if err != nil {
		return nil, err
	}
	totalPower, err := l.TotalEarningPower()
	if err != nil {
		return nil, err
	}
	balance, err := l.RewardToken.BalanceOf(l.Address())
	if err != nil {
		return nil, err
	}
	duration, err := l.RewardDuration()
	if err != nil {
		return nil, err
	}
	maxTip, err := l.MaxBumpTip()
	if err != nil {
		return nil, err
	}
	maxFee, err := l.MaxClaimFee()
	if err != nil {
		return nil, err
	}
	fee, err := l.ClaimFeeParameters()
	if err != nil {
		return nil, err
	}
	count, err := l.DepositCount()
	if err != nil {
		return nil, err
	}
	return &Summary{
		Ledger:                    l.Address(),
		Time:                      now,
		RewardToken:               l.Params.RewardToken,
		StakeToken:                l.Params.StakeToken,
		Admin:                     admin,
		EarningPowerCalculator:    calc,
		TotalStaked:               hex(totalStaked),
		TotalEarningPower:         hex(totalPower),
		ScaledRewardRate:          hex(stream.ScaledRewardRate),
		RewardEndTime:             stream.RewardEndTime,
		LastCheckpointTime:        stream.LastCheckpointTime,
		RewardPerTokenAccumulated: hex(acc),
		ScaledHeldReward:          hex(stream.ScaledHeldReward),
		RewardBalance:             hex(balance),
		RewardDuration:            duration,
		MaxBumpTip:                hex(maxTip),
		MaxClaimFee:               hex(maxFee),
		ClaimFeeAmount:            hex(fee.FeeAmount),
		ClaimFeeCollector:         fee.FeeCollector,
		DepositCount:              count,
	}, nil
}

func (r *Rewards) handleGetSummary(w http.ResponseWriter, _ *http.Request) error {
	var res *Summary
	if err := r.viewer.View(func(st *state.State, now uint64) (err error) {
		res, err = Summarize(st, r.ledger, now)
		return err
	}); err != nil {
		return err
	}
	return restutil.WriteJSON(w, res)
}

func (r *Rewards) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /rewards").
		HandlerFunc(restutil.WrapHandlerFunc(r.handleGetSummary))
}
