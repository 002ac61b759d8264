// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package token implements a fungible token with allowances and delegated voting,
// stored in ledger state. It is the reward and stake asset of a staker.
package token

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
	logger = log.WithContext("pkg", "token")

	slotBalances    = thor.BytesToBytes32([]byte("balances"))
	slotAllowances  = thor.BytesToBytes32([]byte("allowances"))
	slotDelegates   = thor.BytesToBytes32([]byte("delegates"))
	slotVotes       = thor.BytesToBytes32([]byte("votes"))
	slotTotalSupply = thor.BytesToBytes32([]byte("total-supply"))
	slotMinter      = thor.BytesToBytes32([]byte("minter"))
)

// Token implements native methods of a votes token.
type Token struct {
	addr        thor.Address
	balances    *solidity.Mapping[thor.Address, *big.Int]
	allowances  *solidity.Mapping[solidity.AddressPair, *big.Int]
	delegates   *solidity.Mapping[thor.Address, thor.Address]
	votes       *solidity.Mapping[thor.Address, *big.Int]
	totalSupply *solidity.Uint256
	minter      *solidity.Address
}

// New create a new instance.
func New(addr thor.Address, state *state.State) *Token {
	sctx := solidity.NewContext(addr, state)
	return &Token{
		addr:        addr,
		balances:    solidity.NewMapping[thor.Address, *big.Int](sctx, slotBalances),
		allowances:  solidity.NewMapping[solidity.AddressPair, *big.Int](sctx, slotAllowances),
		delegates:   solidity.NewMapping[thor.Address, thor.Address](sctx, slotDelegates),
		votes:       solidity.NewMapping[thor.Address, *big.Int](sctx, slotVotes),
		totalSupply: solidity.NewUint256(sctx, slotTotalSupply),
		minter:      solidity.NewAddress(sctx, slotMinter),
	}
}

func (t *Token) Address() thor.Address {
	return t.addr
}

// Initialize sets the minter. Only possible once.
func (t *Token) Initialize(minter thor.Address) error {
	current, err := t.minter.Get()
	if err != nil {
		return err
	}
	if !current.IsZero() {
		return reverts.New(reverts.ErrUnauthorized, "token already initialized")
	}
	if minter.IsZero() {
		return reverts.New(reverts.ErrInvalidAddress, "zero minter")
	}
	t.minter.Set(minter)
	return nil
}

func (t *Token) Minter() (thor.Address, error) {
	return t.minter.Get()
}

func (t *Token) BalanceOf(owner thor.Address) (*big.Int, error) {
	return t.balances.Get(owner)
}

func (t *Token) TotalSupply() (*big.Int, error) {
	return t.totalSupply.Get()
}

func (t *Token) Allowance(owner, spender thor.Address) (*big.Int, error) {
	return t.allowances.Get(solidity.AddressPair{First: owner, Second: spender})
}

// Delegates returns the account the votes of the given account are delegated to.
func (t *Token) Delegates(account thor.Address) (thor.Address, error) {
	return t.delegates.Get(account)
}

// GetVotes returns the voting weight delegated to the account.
func (t *Token) GetVotes(account thor.Address) (*big.Int, error) {
	return t.votes.Get(account)
}

// Transfer moves amount from the caller to the receiver.
func (t *Token) Transfer(env *xenv.Environment, to thor.Address, amount *big.Int) error {
	return t.transfer(env, env.Caller(), to, amount)
}

// TransferFrom moves amount on behalf of the owner, spending the caller's allowance.
// An allowance of MaxUint256 is never decreased.
func (t *Token) TransferFrom(env *xenv.Environment, from, to thor.Address, amount *big.Int) error {
	key := solidity.AddressPair{First: from, Second: env.Caller()}
	allowance, err := t.allowances.Get(key)
	if err != nil {
		return err
	}
	if allowance.Cmp(amount) < 0 {
		logger.Debug("allowance too low", "owner", from, "spender", env.Caller(), "allowance", allowance, "amount", amount)
		return reverts.New(reverts.ErrInsufficientBalance, "insufficient allowance")
	}
	if allowance.Cmp(thor.MaxUint256) != 0 {
		if err := t.allowances.Set(key, new(big.Int).Sub(allowance, amount)); err != nil {
			return err
		}
	}
	return t.transfer(env, from, to, amount)
}

func (t *Token) Approve(env *xenv.Environment, spender thor.Address, amount *big.Int) error {
	if spender.IsZero() {
		return reverts.New(reverts.ErrInvalidAddress, "zero spender")
	}
	if amount.Sign() < 0 || amount.Cmp(thor.MaxUint256) > 0 {
		return reverts.New(reverts.ErrInvalidAmount, "allowance out of range")
	}
	if err := t.allowances.Set(solidity.AddressPair{First: env.Caller(), Second: spender}, amount); err != nil {
		return err
	}
	owner := env.Caller()
	return t.emit(env, "Approval", &owner, approvalEvent{Owner: owner, Spender: spender, Amount: amount})
}

// Mint creates amount new tokens for the receiver. Caller must be the minter.
func (t *Token) Mint(env *xenv.Environment, to thor.Address, amount *big.Int) error {
	minter, err := t.minter.Get()
	if err != nil {
		return err
	}
	if env.Caller() != minter {
		return reverts.New(reverts.ErrUnauthorized, "caller is not minter")
	}
	if to.IsZero() {
		return reverts.New(reverts.ErrInvalidAddress, "mint to zero address")
	}
	if amount.Sign() <= 0 {
		return reverts.New(reverts.ErrInvalidAmount, "zero mint")
	}
	if err := t.totalSupply.Add(amount); err != nil {
		return errors.Wrap(err, "total supply")
	}
	if err := t.addBalance(to, amount); err != nil {
		return err
	}
	toDelegate, err := t.delegates.Get(to)
	if err != nil {
		return err
	}
	if err := t.moveVotes(thor.Address{}, toDelegate, amount); err != nil {
		return err
	}
	return t.emit(env, "Transfer", &to, transferEvent{To: to, Amount: amount})
}

// SetMinter hands the minter role over. Caller must be the current minter.
func (t *Token) SetMinter(env *xenv.Environment, minter thor.Address) error {
	current, err := t.minter.Get()
	if err != nil {
		return err
	}
	if env.Caller() != current {
		return reverts.New(reverts.ErrUnauthorized, "caller is not minter")
	}
	if minter.IsZero() {
		return reverts.New(reverts.ErrInvalidAddress, "zero minter")
	}
	t.minter.Set(minter)
	return nil
}

// Delegate assigns the caller's voting weight to the delegatee.
func (t *Token) Delegate(env *xenv.Environment, delegatee thor.Address) error {
	account := env.Caller()
	previous, err := t.delegates.Get(account)
	if err != nil {
		return err
	}
	if err := t.delegates.Set(account, delegatee); err != nil {
		return err
	}
	balance, err := t.balances.Get(account)
	if err != nil {
		return err
	}
	if err := t.moveVotes(previous, delegatee, balance); err != nil {
		return err
	}
	return t.emit(env, "DelegateChanged", &account, delegateEvent{Delegator: account, From: previous, To: delegatee})
}

func (t *Token) transfer(env *xenv.Environment, from, to thor.Address, amount *big.Int) error {
	if to.IsZero() {
		return reverts.New(reverts.ErrInvalidAddress, "transfer to zero address")
	}
	if amount.Sign() < 0 {
		return reverts.New(reverts.ErrInvalidAmount, "negative amount")
	}
	balance, err := t.balances.Get(from)
	if err != nil {
		return err
	}
	if balance.Cmp(amount) < 0 {
		return reverts.Newf(reverts.ErrInsufficientBalance, "balance %v below %v", balance, amount)
	}
	if err := t.balances.Set(from, balance.Sub(balance, amount)); err != nil {
		return err
	}
	if err := t.addBalance(to, amount); err != nil {
		return err
	}

	fromDelegate, err := t.delegates.Get(from)
	if err != nil {
		return err
	}
	toDelegate, err := t.delegates.Get(to)
	if err != nil {
		return err
	}
	if err := t.moveVotes(fromDelegate, toDelegate, amount); err != nil {
		return err
	}
	return t.emit(env, "Transfer", &from, transferEvent{From: from, To: to, Amount: amount})
}

func (t *Token) addBalance(to thor.Address, amount *big.Int) error {
	balance, err := t.balances.Get(to)
	if err != nil {
		return err
	}
	return t.balances.Set(to, balance.Add(balance, amount))
}

func (t *Token) moveVotes(from, to thor.Address, amount *big.Int) error {
	if from == to || amount.Sign() == 0 {
		return nil
	}
	if !from.IsZero() {
		votes, err := t.votes.Get(from)
		if err != nil {
			return err
		}
		if votes.Cmp(amount) < 0 {
			return errors.New("votes underflow")
		}
		if err := t.votes.Set(from, votes.Sub(votes, amount)); err != nil {
			return err
		}
	}
	if !to.IsZero() {
		votes, err := t.votes.Get(to)
		if err != nil {
			return err
		}
		if err := t.votes.Set(to, votes.Add(votes, amount)); err != nil {
			return err
		}
	}
	return nil
}

type transferEvent struct {
	From   thor.Address `json:"from"`
	To     thor.Address `json:"to"`
	Amount *big.Int     `json:"amount"`
}

type approvalEvent struct {
	Owner   thor.Address `json:"owner"`
	Spender thor.Address `json:"spender"`
	Amount  *big.Int     `json:"amount"`
}

type delegateEvent struct {
	Delegator thor.Address `json:"delegator"`
	From      thor.Address `json:"from"`
	To        thor.Address `json:"to"`
}

func (t *Token) emit(env *xenv.Environment, name string, account *thor.Address, fields any) error {
	data, err := json.Marshal(fields)
	if err != nil {
		return errors.Wrapf(err, "encode %s event", name)
	}
	env.Emit(&xenv.Event{Address: t.addr, Name: name, Account: account, Data: data})
	return nil
}
