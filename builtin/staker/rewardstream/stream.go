// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rewardstream

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/builtin/solidity"
	"github.com/vechain/stakeledger/thor"
)

var (
	slotStream            = thor.BytesToBytes32([]byte("reward-stream"))
	slotTotalEarningPower = thor.BytesToBytes32([]byte("total-earning-power"))
	slotTotalStaked       = thor.BytesToBytes32([]byte("total-staked"))
)

// Stream is the global reward state. All reward amounts are scaled by thor.ScaleFactor.
type Stream struct {
	// RewardPerTokenCheckpoint is the accumulated reward per unit of earning power
	// as of LastCheckpointTime.
	RewardPerTokenCheckpoint *big.Int
	ScaledRewardRate         *big.Int
	RewardEndTime            uint64
	LastCheckpointTime       uint64
	// ScaledHeldReward is reward streamed while no earning power existed.
	// It is folded into the next notification.
	ScaledHeldReward *big.Int
}

func (s *Stream) normalize() {
	if s.RewardPerTokenCheckpoint == nil {
		s.RewardPerTokenCheckpoint = new(big.Int)
	}
	if s.ScaledRewardRate == nil {
		s.ScaledRewardRate = new(big.Int)
	}
	if s.ScaledHeldReward == nil {
		s.ScaledHeldReward = new(big.Int)
	}
}

// lastTimeRewardDistributed is min(now, RewardEndTime).
func (s *Stream) lastTimeRewardDistributed(now uint64) uint64 {
	if s.RewardEndTime <= now {
		return s.RewardEndTime
	}
	return now
}

// scaledStreamedSince returns rate * elapsed since the last checkpoint, capped at the window end.
func (s *Stream) scaledStreamedSince(now uint64) *big.Int {
	last := s.lastTimeRewardDistributed(now)
	if last <= s.LastCheckpointTime {
		return new(big.Int)
	}
	elapsed := new(big.Int).SetUint64(last - s.LastCheckpointTime)
	return elapsed.Mul(elapsed, s.ScaledRewardRate)
}

// Service manages the reward stream and the ledger wide totals.
type Service struct {
	stream            *solidity.Raw[*Stream]
	totalEarningPower *solidity.Uint256
	totalStaked       *solidity.Uint256
}

func New(sctx *solidity.Context) *Service {
	return &Service{
		stream:            solidity.NewRaw[*Stream](sctx, slotStream),
		totalEarningPower: solidity.NewUint256(sctx, slotTotalEarningPower),
		totalStaked:       solidity.NewUint256(sctx, slotTotalStaked),
	}
}

func (s *Service) Get() (*Stream, error) {
	stream, err := s.stream.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get reward stream")
	}
	stream.normalize()
	return stream, nil
}

func (s *Service) TotalEarningPower() (*big.Int, error) {
	return s.totalEarningPower.Get()
}

func (s *Service) TotalStaked() (*big.Int, error) {
	return s.totalStaked.Get()
}

// RewardPerTokenAccumulated returns the live accumulator value at now, without writing.
func (s *Service) RewardPerTokenAccumulated(now uint64) (*big.Int, error) {
	stream, err := s.Get()
	if err != nil {
		return nil, err
	}
	total, err := s.totalEarningPower.Get()
	if err != nil {
		return nil, err
	}
	return accumulated(stream, total, now), nil
}

func accumulated(stream *Stream, totalEarningPower *big.Int, now uint64) *big.Int {
	acc := new(big.Int).Set(stream.RewardPerTokenCheckpoint)
	if totalEarningPower.Sign() == 0 {
		return acc
	}
	delta := stream.scaledStreamedSince(now)
	delta.Quo(delta, totalEarningPower)
	return acc.Add(acc, delta)
}

// Checkpoint moves the accumulator up to now and returns its new value.
// Reward streamed while total earning power is zero is moved to the held pool.
func (s *Service) Checkpoint(now uint64) (*big.Int, error) {
	stream, err := s.Get()
	if err != nil {
		return nil, err
	}
	total, err := s.totalEarningPower.Get()
	if err != nil {
		return nil, err
	}
	if err := s.checkpoint(stream, total, now); err != nil {
		return nil, err
	}
	return stream.RewardPerTokenCheckpoint, nil
}

func (s *Service) checkpoint(stream *Stream, totalEarningPower *big.Int, now uint64) error {
	if totalEarningPower.Sign() == 0 {
		stream.ScaledHeldReward.Add(stream.ScaledHeldReward, stream.scaledStreamedSince(now))
	} else {
		stream.RewardPerTokenCheckpoint = accumulated(stream, totalEarningPower, now)
	}
	if last := stream.lastTimeRewardDistributed(now); last > stream.LastCheckpointTime {
		stream.LastCheckpointTime = last
	}
	return s.stream.Set(stream)
}

// Notify adds amount to the stream and restarts the window at now.
// Reward left in the running window and held reward are spread over the new window.
func (s *Service) Notify(now uint64, amount *big.Int, duration uint64) (*Stream, error) {
	if duration == 0 {
		return nil, errors.New("zero reward duration")
	}
	stream, err := s.Get()
	if err != nil {
		return nil, err
	}
	total, err := s.totalEarningPower.Get()
	if err != nil {
		return nil, err
	}
	if err := s.checkpoint(stream, total, now); err != nil {
		return nil, err
	}

	scaled := new(big.Int).Mul(amount, thor.ScaleFactor)
	if now < stream.RewardEndTime {
		remaining := new(big.Int).SetUint64(stream.RewardEndTime - now)
		scaled.Add(scaled, remaining.Mul(remaining, stream.ScaledRewardRate))
	}
	scaled.Add(scaled, stream.ScaledHeldReward)

	stream.ScaledRewardRate = scaled.Quo(scaled, new(big.Int).SetUint64(duration))
	stream.ScaledHeldReward = new(big.Int)
	stream.RewardEndTime = now + duration
	stream.LastCheckpointTime = now

	if err := s.stream.Set(stream); err != nil {
		return nil, err
	}
	return stream, nil
}

// AddEarningPower and SubEarningPower keep the total incrementally. The caller
// must checkpoint before changing the total.
func (s *Service) AddEarningPower(power *big.Int) error {
	return s.totalEarningPower.Add(power)
}

func (s *Service) SubEarningPower(power *big.Int) error {
	return s.totalEarningPower.Sub(power)
}

func (s *Service) AddStaked(amount *big.Int) error {
	return s.totalStaked.Add(amount)
}

func (s *Service) SubStaked(amount *big.Int) error {
	return s.totalStaked.Sub(amount)
}
