// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package deposit

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/builtin/solidity"
	"github.com/vechain/stakeledger/thor"
)

var (
	slotDeposits        = thor.BytesToBytes32([]byte("deposits"))
	slotDepositsCounter = thor.BytesToBytes32([]byte("deposits-counter"))
	slotOwnerDeposits   = thor.BytesToBytes32([]byte("owner-deposits"))
	slotDepositorStaked = thor.BytesToBytes32([]byte("depositor-staked"))
	slotDepositorPower  = thor.BytesToBytes32([]byte("depositor-earning-power"))
)

// Service stores deposits, the owner index and per owner totals.
type Service struct {
	deposits        *solidity.Mapping[ID, *Deposit]
	idCounter       *solidity.Raw[uint64]
	ownerDeposits   *solidity.Mapping[thor.Address, []uint64]
	depositorStaked *solidity.Mapping[thor.Address, *big.Int]
	depositorPower  *solidity.Mapping[thor.Address, *big.Int]
}

func New(sctx *solidity.Context) *Service {
	return &Service{
		deposits:        solidity.NewMapping[ID, *Deposit](sctx, slotDeposits),
		idCounter:       solidity.NewRaw[uint64](sctx, slotDepositsCounter),
		ownerDeposits:   solidity.NewMapping[thor.Address, []uint64](sctx, slotOwnerDeposits),
		depositorStaked: solidity.NewMapping[thor.Address, *big.Int](sctx, slotDepositorStaked),
		depositorPower:  solidity.NewMapping[thor.Address, *big.Int](sctx, slotDepositorPower),
	}
}

// GetDeposit returns the deposit, or an empty one if the id is unknown.
func (s *Service) GetDeposit(id ID) (*Deposit, error) {
	d, err := s.deposits.Get(id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get deposit")
	}
	d.normalize()
	return d, nil
}

// Add stores a new deposit under the next id and indexes it by owner.
func (s *Service) Add(d *Deposit) (ID, error) {
	next, err := s.idCounter.Get()
	if err != nil {
		return 0, errors.Wrap(err, "failed to get deposit counter")
	}
	next++
	if err := s.idCounter.Set(next); err != nil {
		return 0, errors.Wrap(err, "failed to increment deposit counter")
	}
	id := ID(next)

	d.normalize()
	if err := s.deposits.Set(id, d); err != nil {
		return 0, errors.Wrap(err, "failed to set deposit")
	}

	ids, err := s.ownerDeposits.Get(d.Owner)
	if err != nil {
		return 0, errors.Wrap(err, "failed to get owner deposits")
	}
	if err := s.ownerDeposits.Set(d.Owner, append(ids, next)); err != nil {
		return 0, errors.Wrap(err, "failed to index deposit")
	}
	return id, nil
}

func (s *Service) Update(id ID, d *Deposit) error {
	if err := s.deposits.Set(id, d); err != nil {
		return errors.Wrap(err, "failed to update deposit")
	}
	return nil
}

// DepositsOf lists the ids of the deposits created by the owner.
func (s *Service) DepositsOf(owner thor.Address) ([]ID, error) {
	raw, err := s.ownerDeposits.Get(owner)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get owner deposits")
	}
	ids := make([]ID, 0, len(raw))
	for _, id := range raw {
		ids = append(ids, ID(id))
	}
	return ids, nil
}

// Count returns the number of deposits ever created.
func (s *Service) Count() (uint64, error) {
	return s.idCounter.Get()
}

func (s *Service) DepositorTotals(owner thor.Address) (*Totals, error) {
	staked, err := s.depositorStaked.Get(owner)
	if err != nil {
		return nil, err
	}
	power, err := s.depositorPower.Get(owner)
	if err != nil {
		return nil, err
	}
	return &Totals{Staked: staked, EarningPower: power}, nil
}

// AdjustDepositorTotals applies signed deltas to the owner totals.
func (s *Service) AdjustDepositorTotals(owner thor.Address, stakedDelta, powerDelta *big.Int) error {
	if err := adjust(s.depositorStaked, owner, stakedDelta); err != nil {
		return errors.Wrap(err, "depositor staked")
	}
	if err := adjust(s.depositorPower, owner, powerDelta); err != nil {
		return errors.Wrap(err, "depositor earning power")
	}
	return nil
}

func adjust(m *solidity.Mapping[thor.Address, *big.Int], owner thor.Address, delta *big.Int) error {
	if delta.Sign() == 0 {
		return nil
	}
	v, err := m.Get(owner)
	if err != nil {
		return err
	}
	v.Add(v, delta)
	if v.Sign() < 0 {
		return solidity.ErrUint256Underflow
	}
	return m.Set(owner, v)
}
