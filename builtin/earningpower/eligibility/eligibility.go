// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package eligibility implements an earning power calculator gated by delegatee scores
// published by an oracle. Deposits delegating to an ineligible delegatee earn nothing.
// When the oracle goes stale or is paused, every deposit earns its full amount.
package eligibility

import (
	"encoding/json"
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/builtin/reverts"
	"github.com/vechain/stakeledger/builtin/solidity"
	"github.com/vechain/stakeledger/log"
	"github.com/vechain/stakeledger/state"
	"github.com/vechain/stakeledger/thor"
	"github.com/vechain/stakeledger/xenv"
)

var (
	logger = log.WithContext("pkg", "eligibility")

	slotOwner               = thor.BytesToBytes32([]byte("owner"))
	slotOracle              = thor.BytesToBytes32([]byte("score-oracle"))
	slotGuardian            = thor.BytesToBytes32([]byte("pause-guardian"))
	slotConfig              = thor.BytesToBytes32([]byte("config"))
	slotLastOracleUpdate    = thor.BytesToBytes32([]byte("last-oracle-update"))
	slotScores              = thor.BytesToBytes32([]byte("scores"))
	slotLocks               = thor.BytesToBytes32([]byte("locks"))
	slotTimeOfIneligibility = thor.BytesToBytes32([]byte("time-of-ineligibility"))
)

// Params are the construction parameters of the calculator.
type Params struct {
	Owner                  thor.Address
	Oracle                 thor.Address
	PauseGuardian          thor.Address
	Threshold              uint64
	UpdateEligibilityDelay uint64
	StaleOracleWindow      uint64
}

type config struct {
	Threshold              uint64
	UpdateEligibilityDelay uint64
	StaleOracleWindow      uint64
	Paused                 bool
}

// Calculator implements earningpower.Calculator.
type Calculator struct {
	addr  thor.Address
	clock func() uint64

	owner            *solidity.Address
	oracle           *solidity.Address
	guardian         *solidity.Address
	config           *solidity.Raw[*config]
	lastOracleUpdate *solidity.Raw[uint64]
	scores           *solidity.Mapping[thor.Address, uint64]
	locks            *solidity.Mapping[thor.Address, bool]
	ineligibleSince  *solidity.Mapping[thor.Address, uint64]
}

// New create a new instance. clock returns the current ledger time.
func New(addr thor.Address, state *state.State, clock func() uint64) *Calculator {
	sctx := solidity.NewContext(addr, state)
	return &Calculator{
		addr:             addr,
		clock:            clock,
		owner:            solidity.NewAddress(sctx, slotOwner),
		oracle:           solidity.NewAddress(sctx, slotOracle),
		guardian:         solidity.NewAddress(sctx, slotGuardian),
		config:           solidity.NewRaw[*config](sctx, slotConfig),
		lastOracleUpdate: solidity.NewRaw[uint64](sctx, slotLastOracleUpdate),
		scores:           solidity.NewMapping[thor.Address, uint64](sctx, slotScores),
		locks:            solidity.NewMapping[thor.Address, bool](sctx, slotLocks),
		ineligibleSince:  solidity.NewMapping[thor.Address, uint64](sctx, slotTimeOfIneligibility),
	}
}

func (c *Calculator) Address() thor.Address {
	return c.addr
}

// Initialize stores the parameters. The oracle counts as fresh from now on.
func (c *Calculator) Initialize(env *xenv.Environment, p *Params) error {
	owner, err := c.owner.Get()
	if err != nil {
		return err
	}
	if !owner.IsZero() {
		return reverts.New(reverts.ErrUnauthorized, "calculator already initialized")
	}
	if p.Owner.IsZero() || p.Oracle.IsZero() || p.PauseGuardian.IsZero() {
		return reverts.New(reverts.ErrInvalidAddress, "zero role address")
	}
	if p.Threshold > thor.MaxEligibilityScore {
		return reverts.Newf(reverts.ErrInvalidAmount, "threshold above %d", thor.MaxEligibilityScore)
	}
	c.owner.Set(p.Owner)
	c.oracle.Set(p.Oracle)
	c.guardian.Set(p.PauseGuardian)
	if err := c.config.Set(&config{
		Threshold:              p.Threshold,
		UpdateEligibilityDelay: p.UpdateEligibilityDelay,
		StaleOracleWindow:      p.StaleOracleWindow,
	}); err != nil {
		return err
	}
	return c.lastOracleUpdate.Set(env.Now())
}

//
// Calculator
//

func (c *Calculator) Power(amount *big.Int, _, delegatee thor.Address) (*big.Int, error) {
	fallback, err := c.fullPowerFallback()
	if err != nil {
		return nil, err
	}
	if fallback {
		return new(big.Int).Set(amount), nil
	}
	eligible, err := c.IsEligible(delegatee)
	if err != nil {
		return nil, err
	}
	if !eligible {
		return new(big.Int), nil
	}
	return new(big.Int).Set(amount), nil
}

func (c *Calculator) UpdatedPower(amount *big.Int, _, delegatee thor.Address, _ *big.Int) (*big.Int, bool, error) {
	fallback, err := c.fullPowerFallback()
	if err != nil {
		return nil, false, err
	}
	if fallback {
		return new(big.Int).Set(amount), true, nil
	}
	eligible, err := c.IsEligible(delegatee)
	if err != nil {
		return nil, false, err
	}
	if eligible {
		return new(big.Int).Set(amount), true, nil
	}
	cfg, err := c.config.Get()
	if err != nil {
		return nil, false, err
	}
	since, err := c.ineligibleSince.Get(delegatee)
	if err != nil {
		return nil, false, err
	}
	return new(big.Int), c.clock() >= since+cfg.UpdateEligibilityDelay, nil
}

func (c *Calculator) fullPowerFallback() (bool, error) {
	cfg, err := c.config.Get()
	if err != nil {
		return false, err
	}
	if cfg.Paused {
		return true, nil
	}
	return c.isStale(cfg)
}

func (c *Calculator) isStale(cfg *config) (bool, error) {
	last, err := c.lastOracleUpdate.Get()
	if err != nil {
		return false, err
	}
	return last+cfg.StaleOracleWindow < c.clock(), nil
}

//
// Views
//

// IsEligible reports whether the delegatee score reaches the threshold.
func (c *Calculator) IsEligible(delegatee thor.Address) (bool, error) {
	cfg, err := c.config.Get()
	if err != nil {
		return false, err
	}
	score, err := c.scores.Get(delegatee)
	if err != nil {
		return false, err
	}
	return score >= cfg.Threshold, nil
}

func (c *Calculator) IsOracleStale() (bool, error) {
	cfg, err := c.config.Get()
	if err != nil {
		return false, err
	}
	return c.isStale(cfg)
}

func (c *Calculator) IsOraclePaused() (bool, error) {
	cfg, err := c.config.Get()
	if err != nil {
		return false, err
	}
	return cfg.Paused, nil
}

func (c *Calculator) Score(delegatee thor.Address) (uint64, error) {
	return c.scores.Get(delegatee)
}

func (c *Calculator) IsScoreLocked(delegatee thor.Address) (bool, error) {
	return c.locks.Get(delegatee)
}

func (c *Calculator) TimeOfIneligibility(delegatee thor.Address) (uint64, error) {
	return c.ineligibleSince.Get(delegatee)
}

//
// Setters
//

// UpdateDelegateeScore records a score published by the oracle.
func (c *Calculator) UpdateDelegateeScore(env *xenv.Environment, delegatee thor.Address, score uint64) error {
	logger.Debug("update delegatee score", "delegatee", delegatee, "score", score)

	if err := c.requireRole(env, c.oracle, "score oracle"); err != nil {
		return err
	}
	cfg, err := c.config.Get()
	if err != nil {
		return err
	}
	if cfg.Paused {
		return reverts.New(reverts.ErrOraclePaused, "")
	}
	locked, err := c.locks.Get(delegatee)
	if err != nil {
		return err
	}
	if locked {
		return reverts.New(reverts.ErrDelegateeScoreLocked, delegatee.String())
	}
	if err := c.updateScore(env, cfg, delegatee, score); err != nil {
		return err
	}
	return c.lastOracleUpdate.Set(env.Now())
}

// OverrideDelegateeScore sets a score on behalf of the oracle and locks it.
func (c *Calculator) OverrideDelegateeScore(env *xenv.Environment, delegatee thor.Address, score uint64) error {
	logger.Debug("override delegatee score", "delegatee", delegatee, "score", score)

	if err := c.requireRole(env, c.owner, "owner"); err != nil {
		return err
	}
	cfg, err := c.config.Get()
	if err != nil {
		return err
	}
	if err := c.updateScore(env, cfg, delegatee, score); err != nil {
		return err
	}
	return c.setLock(env, delegatee, true)
}

func (c *Calculator) SetDelegateeScoreLock(env *xenv.Environment, delegatee thor.Address, locked bool) error {
	if err := c.requireRole(env, c.owner, "owner"); err != nil {
		return err
	}
	return c.setLock(env, delegatee, locked)
}

func (c *Calculator) SetDelegateeEligibilityThreshold(env *xenv.Environment, threshold uint64) error {
	if err := c.requireRole(env, c.owner, "owner"); err != nil {
		return err
	}
	if threshold > thor.MaxEligibilityScore {
		return reverts.Newf(reverts.ErrInvalidAmount, "threshold above %d", thor.MaxEligibilityScore)
	}
	return c.updateConfig(env, "DelegateeEligibilityThresholdSet", func(cfg *config) any {
		old := cfg.Threshold
		cfg.Threshold = threshold
		return thresholdEvent{Old: old, New: threshold}
	})
}

func (c *Calculator) SetUpdateEligibilityDelay(env *xenv.Environment, delay uint64) error {
	if err := c.requireRole(env, c.owner, "owner"); err != nil {
		return err
	}
	return c.updateConfig(env, "UpdateEligibilityDelaySet", func(cfg *config) any {
		old := cfg.UpdateEligibilityDelay
		cfg.UpdateEligibilityDelay = delay
		return delayEvent{Old: old, New: delay}
	})
}

func (c *Calculator) SetScoreOracle(env *xenv.Environment, oracle thor.Address) error {
	return c.setRole(env, c.oracle, oracle, "ScoreOracleSet")
}

func (c *Calculator) SetOraclePauseGuardian(env *xenv.Environment, guardian thor.Address) error {
	return c.setRole(env, c.guardian, guardian, "OraclePauseGuardianSet")
}

// SetOracleState pauses or resumes the oracle. Caller must be the pause guardian.
func (c *Calculator) SetOracleState(env *xenv.Environment, paused bool) error {
	if err := c.requireRole(env, c.guardian, "pause guardian"); err != nil {
		return err
	}
	return c.updateConfig(env, "OraclePausedStatusSet", func(cfg *config) any {
		old := cfg.Paused
		cfg.Paused = paused
		return pausedEvent{Old: old, New: paused}
	})
}

func (c *Calculator) updateScore(env *xenv.Environment, cfg *config, delegatee thor.Address, score uint64) error {
	if score > thor.MaxEligibilityScore {
		return reverts.Newf(reverts.ErrInvalidAmount, "score above %d", thor.MaxEligibilityScore)
	}
	old, err := c.scores.Get(delegatee)
	if err != nil {
		return err
	}
	wasEligible := old >= cfg.Threshold
	if wasEligible && score < cfg.Threshold {
		if err := c.ineligibleSince.Set(delegatee, env.Now()); err != nil {
			return err
		}
	}
	if err := c.scores.Set(delegatee, score); err != nil {
		return err
	}
	return c.emit(env, "DelegateeScoreUpdated", &delegatee, scoreEvent{Delegatee: delegatee, Old: old, New: score})
}

func (c *Calculator) setLock(env *xenv.Environment, delegatee thor.Address, locked bool) error {
	if err := c.locks.Set(delegatee, locked); err != nil {
		return err
	}
	return c.emit(env, "DelegateeScoreLockSet", &delegatee, lockEvent{Delegatee: delegatee, Locked: locked})
}

func (c *Calculator) setRole(env *xenv.Environment, role *solidity.Address, addr thor.Address, name string) error {
	if err := c.requireRole(env, c.owner, "owner"); err != nil {
		return err
	}
	if addr.IsZero() {
		return reverts.New(reverts.ErrInvalidAddress, "zero role address")
	}
	old, err := role.Get()
	if err != nil {
		return err
	}
	role.Set(addr)
	return c.emit(env, name, &addr, roleEvent{Old: old, New: addr})
}

func (c *Calculator) updateConfig(env *xenv.Environment, name string, fn func(*config) any) error {
	cfg, err := c.config.Get()
	if err != nil {
		return err
	}
	fields := fn(cfg)
	if err := c.config.Set(cfg); err != nil {
		return err
	}
	return c.emit(env, name, nil, fields)
}

func (c *Calculator) requireRole(env *xenv.Environment, role *solidity.Address, name string) error {
	addr, err := role.Get()
	if err != nil {
		return err
	}
	if env.Caller() != addr {
		logger.Info("unauthorized caller", "role", name, "caller", env.Caller())
		return reverts.Newf(reverts.ErrUnauthorized, "caller is not %s", name)
	}
	return nil
}

type scoreEvent struct {
	Delegatee thor.Address `json:"delegatee"`
	Old       uint64       `json:"oldScore"`
	New       uint64       `json:"newScore"`
}

type lockEvent struct {
	Delegatee thor.Address `json:"delegatee"`
	Locked    bool         `json:"locked"`
}

type roleEvent struct {
	Old thor.Address `json:"old"`
	New thor.Address `json:"new"`
}

type thresholdEvent struct {
	Old uint64 `json:"oldThreshold"`
	New uint64 `json:"newThreshold"`
}

type delayEvent struct {
	Old uint64 `json:"oldDelay"`
	New uint64 `json:"newDelay"`
}

type pausedEvent struct {
	Old bool `json:"oldState"`
	New bool `json:"newState"`
}

func (c *Calculator) emit(env *xenv.Environment, name string, account *thor.Address, fields any) error {
	data, err := json.Marshal(fields)
	if err != nil {
		return errors.Wrapf(err, "encode %s event", name)
	}
	env.Emit(&xenv.Event{Address: c.addr, Name: name, Account: account, Data: data})
	return nil
}
