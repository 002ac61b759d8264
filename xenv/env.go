// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package xenv

import (
	"github.com/vechain/stakeledger/thor"
)

// BlockContext block context.
type BlockContext struct {
	Number uint32
	Time   uint64
}

// TransactionContext transaction context.
type TransactionContext struct {
	ID     thor.Bytes32
	Origin thor.Address
}

// Event is a log emitted by a native contract.
type Event struct {
	Address   thor.Address // emitting contract
	Name      string
	DepositID *uint64
	Account   *thor.Address
	Data      []byte // json encoded fields
}

// Environment an env to execute native method.
type Environment struct {
	blockCtx *BlockContext
	txCtx    *TransactionContext
	caller   thor.Address
	events   *[]*Event
}

// New create a new env.
func New(blockCtx *BlockContext, txCtx *TransactionContext, caller thor.Address) *Environment {
	return &Environment{
		blockCtx: blockCtx,
		txCtx:    txCtx,
		caller:   caller,
		events:   new([]*Event),
	}
}

func (env *Environment) TransactionContext() *TransactionContext { return env.txCtx }
func (env *Environment) BlockContext() *BlockContext             { return env.blockCtx }
func (env *Environment) Caller() thor.Address                    { return env.caller }
func (env *Environment) Now() uint64                             { return env.blockCtx.Time }

// WithCaller derives the env of a nested call made by the given contract.
// Events of nested calls are collected into the same log.
func (env *Environment) WithCaller(caller thor.Address) *Environment {
	return &Environment{
		blockCtx: env.blockCtx,
		txCtx:    env.txCtx,
		caller:   caller,
		events:   env.events,
	}
}

// Emit appends an event to the log of the running clause.
func (env *Environment) Emit(ev *Event) {
	*env.events = append(*env.events, ev)
}

// Events returns all events emitted so far.
func (env *Environment) Events() []*Event {
	return *env.events
}
