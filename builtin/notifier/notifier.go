// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package notifier implements reward notifiers that feed a ledger a fixed amount of
// reward on a schedule. Anyone may trigger a notification once the interval elapsed.
package notifier

import (
	"bytes"
	"encoding/json"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/builtin/reverts"
	"github.com/vechain/stakeledger/builtin/solidity"
	"github.com/vechain/stakeledger/log"
	"github.com/vechain/stakeledger/state"
	"github.com/vechain/stakeledger/thor"
	"github.com/vechain/stakeledger/xenv"
)

var (
	logger = log.WithContext("pkg", "notifier")

	slotOwner          = thor.BytesToBytes32([]byte("owner"))
	slotFunder         = thor.BytesToBytes32([]byte("funder"))
	slotRewardAmount   = thor.BytesToBytes32([]byte("reward-amount"))
	slotRewardInterval = thor.BytesToBytes32([]byte("reward-interval"))
	slotNextRewardTime = thor.BytesToBytes32([]byte("next-reward-time"))

	codePrefix = []byte("rewardnotifier:")
)

// Source is where the notified reward comes from.
type Source uint8

const (
	// SourceTransfer pulls the reward from the funder, which must have approved the notifier.
	SourceTransfer Source = iota
	// SourceMint mints the reward. The notifier must be the token's minter.
	SourceMint
)

func (s Source) String() string {
	switch s {
	case SourceTransfer:
		return "transfer"
	case SourceMint:
		return "mint"
	default:
		return "unknown"
	}
}

// ParseSource parses "transfer" or "mint".
func ParseSource(s string) (Source, error) {
	switch s {
	case "transfer":
		return SourceTransfer, nil
	case "mint":
		return SourceMint, nil
	}
	return 0, errors.Errorf("unknown reward source %q", s)
}

// Ledger receives the notifications.
type Ledger interface {
	Address() thor.Address
	NotifyRewardAmount(env *xenv.Environment, amount *big.Int) error
}

// Token is the reward token as used by the notifier.
type Token interface {
	Approve(env *xenv.Environment, spender thor.Address, amount *big.Int) error
	TransferFrom(env *xenv.Environment, from, to thor.Address, amount *big.Int) error
	Mint(env *xenv.Environment, to thor.Address, amount *big.Int) error
}

// Params are the construction parameters. Ledger, token and source are fixed for
// the lifetime of the notifier and stored as its code.
type Params struct {
	Ledger         thor.Address
	RewardToken    thor.Address
	Source         Source
	Owner          thor.Address
	Funder         thor.Address
	RewardAmount   *big.Int
	RewardInterval uint64
}

func (p *Params) Code() ([]byte, error) {
	data, err := rlp.EncodeToBytes(p)
	if err != nil {
		return nil, err
	}
	return append(append([]byte(nil), codePrefix...), data...), nil
}

func DecodeParams(code []byte) (*Params, error) {
	if !bytes.HasPrefix(code, codePrefix) {
		return nil, errors.New("not a reward notifier")
	}
	var p Params
	if err := rlp.DecodeBytes(code[len(codePrefix):], &p); err != nil {
		return nil, errors.Wrap(err, "decode notifier params")
	}
	return &p, nil
}

// LoadParams reads the params of the notifier deployed at addr.
func LoadParams(st *state.State, addr thor.Address) (*Params, error) {
	code, err := st.GetCode(addr)
	if err != nil {
		return nil, err
	}
	if len(code) == 0 {
		return nil, errors.Errorf("no reward notifier at %v", addr)
	}
	return DecodeParams(code)
}

// Notifier implements native methods of a scheduled reward notifier.
type Notifier struct {
	addr   thor.Address
	source Source
	ledger Ledger
	token  Token

	owner          *solidity.Address
	funder         *solidity.Address
	rewardAmount   *solidity.Uint256
	rewardInterval *solidity.Raw[uint64]
	nextRewardTime *solidity.Raw[uint64]
}

// New create a new instance.
func New(addr thor.Address, state *state.State, source Source, ledger Ledger, token Token) *Notifier {
	sctx := solidity.NewContext(addr, state)
	return &Notifier{
		addr:   addr,
		source: source,
		ledger: ledger,
		token:  token,

		owner:          solidity.NewAddress(sctx, slotOwner),
		funder:         solidity.NewAddress(sctx, slotFunder),
		rewardAmount:   solidity.NewUint256(sctx, slotRewardAmount),
		rewardInterval: solidity.NewRaw[uint64](sctx, slotRewardInterval),
		nextRewardTime: solidity.NewRaw[uint64](sctx, slotNextRewardTime),
	}
}

// Initialize applies the mutable part of the params. The first notification is
// allowed right away.
func (n *Notifier) Initialize(p *Params) error {
	owner, err := n.owner.Get()
	if err != nil {
		return err
	}
	if !owner.IsZero() {
		return reverts.New(reverts.ErrUnauthorized, "notifier already initialized")
	}
	if p.Owner.IsZero() {
		return reverts.New(reverts.ErrInvalidAddress, "zero owner")
	}
	if p.Source == SourceTransfer && p.Funder.IsZero() {
		return reverts.New(reverts.ErrInvalidAddress, "zero funder")
	}
	if p.RewardAmount == nil || p.RewardAmount.Sign() <= 0 || p.RewardInterval == 0 {
		return reverts.New(reverts.ErrInvalidAmount, "zero reward amount or interval")
	}
	n.owner.Set(p.Owner)
	n.funder.Set(p.Funder)
	if err := n.rewardAmount.Set(p.RewardAmount); err != nil {
		return err
	}
	return n.rewardInterval.Set(p.RewardInterval)
}

func (n *Notifier) Address() thor.Address { return n.addr }
func (n *Notifier) Source() Source        { return n.source }

func (n *Notifier) Owner() (thor.Address, error) {
	return n.owner.Get()
}

func (n *Notifier) Funder() (thor.Address, error) {
	return n.funder.Get()
}

func (n *Notifier) RewardAmount() (*big.Int, error) {
	return n.rewardAmount.Get()
}

func (n *Notifier) RewardInterval() (uint64, error) {
	return n.rewardInterval.Get()
}

// NextRewardTime is the earliest time Notify succeeds.
func (n *Notifier) NextRewardTime() (uint64, error) {
	return n.nextRewardTime.Get()
}

// Notify sources the reward amount and hands it to the ledger.
func (n *Notifier) Notify(env *xenv.Environment) (*big.Int, error) {
	logger.Debug("notify", "notifier", n.addr, "caller", env.Caller())

	next, err := n.nextRewardTime.Get()
	if err != nil {
		return nil, err
	}
	if env.Now() < next {
		return nil, reverts.Newf(reverts.ErrTooEarly, "next reward at %d", next)
	}
	amount, err := n.rewardAmount.Get()
	if err != nil {
		return nil, err
	}
	interval, err := n.rewardInterval.Get()
	if err != nil {
		return nil, err
	}
	next = env.Now() + interval
	if err := n.nextRewardTime.Set(next); err != nil {
		return nil, err
	}
	caller := env.Caller()
	if err := n.emit(env, "Notified", &caller, notifiedEvent{Caller: caller, Amount: amount, NextRewardTime: next}); err != nil {
		return nil, err
	}

	self := env.WithCaller(n.addr)
	switch n.source {
	case SourceMint:
		if err := n.token.Mint(self, n.addr, amount); err != nil {
			return nil, errors.WithMessage(err, "mint reward")
		}
	default:
		funder, err := n.funder.Get()
		if err != nil {
			return nil, err
		}
		if err := n.token.TransferFrom(self, funder, n.addr, amount); err != nil {
			return nil, errors.WithMessage(err, "pull reward")
		}
	}
	if err := n.token.Approve(self, n.ledger.Address(), amount); err != nil {
		return nil, err
	}
	if err := n.ledger.NotifyRewardAmount(self, amount); err != nil {
		logger.Info("notify failed", "notifier", n.addr, "error", err)
		return nil, err
	}

	logger.Info("notified reward", "notifier", n.addr, "amount", amount, "next", next)
	return amount, nil
}

// SetRewardAmount changes the amount of each notification.
func (n *Notifier) SetRewardAmount(env *xenv.Environment, amount *big.Int) error {
	if err := n.requireOwner(env); err != nil {
		return err
	}
	if amount.Sign() <= 0 {
		return reverts.New(reverts.ErrInvalidAmount, "zero reward amount")
	}
	old, err := n.rewardAmount.Get()
	if err != nil {
		return err
	}
	if err := n.rewardAmount.Set(amount); err != nil {
		return reverts.New(reverts.ErrInvalidAmount, err.Error())
	}
	return n.emit(env, "RewardAmountSet", nil, amountSetEvent{Old: old, New: amount})
}

// SetRewardInterval changes the interval between notifications. The pending
// notification time is not moved.
func (n *Notifier) SetRewardInterval(env *xenv.Environment, interval uint64) error {
	if err := n.requireOwner(env); err != nil {
		return err
	}
	if interval == 0 {
		return reverts.New(reverts.ErrInvalidAmount, "zero reward interval")
	}
	old, err := n.rewardInterval.Get()
	if err != nil {
		return err
	}
	if err := n.rewardInterval.Set(interval); err != nil {
		return err
	}
	return n.emit(env, "RewardIntervalSet", nil, intervalSetEvent{Old: old, New: interval})
}

func (n *Notifier) SetFunder(env *xenv.Environment, funder thor.Address) error {
	return n.setRole(env, n.funder, funder, "FunderSet")
}

func (n *Notifier) SetOwner(env *xenv.Environment, owner thor.Address) error {
	return n.setRole(env, n.owner, owner, "OwnerSet")
}

func (n *Notifier) setRole(env *xenv.Environment, role *solidity.Address, addr thor.Address, name string) error {
	if err := n.requireOwner(env); err != nil {
		return err
	}
	if addr.IsZero() {
		return reverts.New(reverts.ErrInvalidAddress, "zero address")
	}
	old, err := role.Get()
	if err != nil {
		return err
	}
	role.Set(addr)
	return n.emit(env, name, &addr, roleSetEvent{Old: old, New: addr})
}

func (n *Notifier) requireOwner(env *xenv.Environment) error {
	owner, err := n.owner.Get()
	if err != nil {
		return err
	}
	if env.Caller() != owner {
		logger.Info("unauthorized caller", "notifier", n.addr, "caller", env.Caller())
		return reverts.New(reverts.ErrUnauthorized, "caller is not owner")
	}
	return nil
}

type notifiedEvent struct {
	Caller         thor.Address `json:"caller"`
	Amount         *big.Int     `json:"amount"`
	NextRewardTime uint64       `json:"nextRewardTime"`
}

type amountSetEvent struct {
	Old *big.Int `json:"oldAmount"`
	New *big.Int `json:"newAmount"`
}

type intervalSetEvent struct {
	Old uint64 `json:"oldInterval"`
	New uint64 `json:"newInterval"`
}

type roleSetEvent struct {
	Old thor.Address `json:"old"`
	New thor.Address `json:"new"`
}

func (n *Notifier) emit(env *xenv.Environment, name string, account *thor.Address, fields any) error {
	data, err := json.Marshal(fields)
	if err != nil {
		return errors.Wrapf(err, "encode %s event", name)
	}
	env.Emit(&xenv.Event{Address: n.addr, Name: name, Account: account, Data: data})
	return nil
}
