// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package settings

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/builtin/solidity"
	"github.com/vechain/stakeledger/thor"
)

var (
	slotAdmin          = thor.BytesToBytes32([]byte("admin"))
	slotClaimFee       = thor.BytesToBytes32([]byte("claim-fee-parameters"))
	slotMaxBumpTip     = thor.BytesToBytes32([]byte("max-bump-tip"))
	slotMaxClaimFee    = thor.BytesToBytes32([]byte("max-claim-fee"))
	slotCalculator     = thor.BytesToBytes32([]byte("earning-power-calculator"))
	slotRewardDuration = thor.BytesToBytes32([]byte("reward-duration"))
)

// ClaimFeeParameters is the fee deducted from every claim and where it goes.
type ClaimFeeParameters struct {
	FeeAmount    *big.Int
	FeeCollector thor.Address
}

// Service holds the admin controlled configuration of a ledger.
type Service struct {
	admin          *solidity.Address
	claimFee       *solidity.Raw[*ClaimFeeParameters]
	maxBumpTip     *solidity.Uint256
	maxClaimFee    *solidity.Uint256
	calculator     *solidity.Address
	rewardDuration *solidity.Raw[uint64]
}

func New(sctx *solidity.Context) *Service {
	return &Service{
		admin:          solidity.NewAddress(sctx, slotAdmin),
		claimFee:       solidity.NewRaw[*ClaimFeeParameters](sctx, slotClaimFee),
		maxBumpTip:     solidity.NewUint256(sctx, slotMaxBumpTip),
		maxClaimFee:    solidity.NewUint256(sctx, slotMaxClaimFee),
		calculator:     solidity.NewAddress(sctx, slotCalculator),
		rewardDuration: solidity.NewRaw[uint64](sctx, slotRewardDuration),
	}
}

func (s *Service) Admin() (thor.Address, error) {
	return s.admin.Get()
}

func (s *Service) SetAdmin(admin thor.Address) {
	s.admin.Set(admin)
}

func (s *Service) ClaimFeeParameters() (*ClaimFeeParameters, error) {
	p, err := s.claimFee.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get claim fee parameters")
	}
	if p.FeeAmount == nil {
		p.FeeAmount = new(big.Int)
	}
	return p, nil
}

func (s *Service) SetClaimFeeParameters(p *ClaimFeeParameters) error {
	return s.claimFee.Set(p)
}

func (s *Service) MaxBumpTip() (*big.Int, error) {
	return s.maxBumpTip.Get()
}

func (s *Service) SetMaxBumpTip(tip *big.Int) error {
	return s.maxBumpTip.Set(tip)
}

func (s *Service) MaxClaimFee() (*big.Int, error) {
	return s.maxClaimFee.Get()
}

func (s *Service) SetMaxClaimFee(fee *big.Int) error {
	return s.maxClaimFee.Set(fee)
}

func (s *Service) Calculator() (thor.Address, error) {
	return s.calculator.Get()
}

func (s *Service) SetCalculator(addr thor.Address) {
	s.calculator.Set(addr)
}

func (s *Service) RewardDuration() (uint64, error) {
	return s.rewardDuration.Get()
}

func (s *Service) SetRewardDuration(d uint64) error {
	return s.rewardDuration.Set(d)
}
