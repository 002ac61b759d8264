// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"github.com/vechain/stakeledger/thor"
	"github.com/vechain/stakeledger/xenv"
)

// Event represents xenv.Event that can be stored in db.
type Event struct {
	BatchNumber uint32
	Index       uint32
	BatchTime   uint64
	TxID        thor.Bytes32
	TxOrigin    thor.Address
	Address     thor.Address // the emitting contract
	Name        string
	DepositID   *uint64
	Account     *thor.Address
	Data        []byte
}

func newEvent(batchNum uint32, batchTime uint64, index uint32, txID thor.Bytes32, txOrigin thor.Address, ev *xenv.Event) *Event {
	return &Event{
		BatchNumber: batchNum,
		Index:       index,
		BatchTime:   batchTime,
		TxID:        txID,
		TxOrigin:    txOrigin,
		Address:     ev.Address,
		Name:        ev.Name,
		DepositID:   ev.DepositID,
		Account:     ev.Account,
		Data:        ev.Data,
	}
}

type Range struct {
	From uint64
	To   uint64
}

type Options struct {
	Offset uint64
	Limit  uint64
}

type Order string

const (
	ASC  Order = "asc"
	DESC Order = "desc"
)

// EventCriteria matches events by emitter, name, deposit or account.
// Nil fields match anything.
type EventCriteria struct {
	Address   *thor.Address
	Name      *string
	DepositID *uint64
	Account   *thor.Address
}

// EventFilter selects events matching any of the criteria within the time range.
type EventFilter struct {
	CriteriaSet []*EventCriteria
	Range       *Range
	Options     *Options
	Order       Order // default asc
}
