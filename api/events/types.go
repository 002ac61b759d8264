// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"encoding/json"

	"github.com/vechain/stakeledger/logdb"
	"github.com/vechain/stakeledger/thor"
)

type EventCriteria struct {
	Address   *thor.Address `json:"address"`
	Name      *string       `json:"name"`
	DepositID *uint64       `json:"depositId"`
	Account   *thor.Address `json:"account"`
}

// Range is a ledger time range, both ends included.
type Range struct {
	From *uint64 `json:"from,omitempty"`
	To   *uint64 `json:"to,omitempty"`
}

type Options struct {
	Offset uint64 `json:"offset"`
	Limit  uint64 `json:"limit"`
}

type EventFilter struct {
	CriteriaSet []*EventCriteria `json:"criteriaSet"`
	Range       *Range           `json:"range"`
	Options     *Options         `json:"options"`
	Order       logdb.Order      `json:"order"`
}

type LogMeta struct {
	BatchNumber uint32       `json:"batchNumber"`
	Index       uint32       `json:"index"`
	BatchTime   uint64       `json:"batchTime"`
	TxID        thor.Bytes32 `json:"txID"`
	TxOrigin    thor.Address `json:"txOrigin"`
}

type FilteredEvent struct {
	Address   thor.Address    `json:"address"`
	Name      string          `json:"name"`
	DepositID *uint64         `json:"depositId,omitempty"`
	Account   *thor.Address   `json:"account,omitempty"`
	Data      json.RawMessage `json:"data"`
	Meta      LogMeta         `json:"meta"`
}

func convertFilter(ef *EventFilter) *logdb.EventFilter {
	f := &logdb.EventFilter{
		Order: ef.Order,
	}
	if ef.Range != nil {
		r := &logdb.Range{}
		if ef.Range.From != nil {
			r.From = *ef.Range.From
		}
		if ef.Range.To != nil {
			r.To = *ef.Range.To
		}
		f.Range = r
	}
	if ef.Options != nil {
		f.Options = &logdb.Options{Offset: ef.Options.Offset, Limit: ef.Options.Limit}
	}
	for _, c := range ef.CriteriaSet {
		f.CriteriaSet = append(f.CriteriaSet, &logdb.EventCriteria{
			Address:   c.Address,
			Name:      c.Name,
			DepositID: c.DepositID,
			Account:   c.Account,
		})
	}
	return f
}

func ConvertEvent(e *logdb.Event) *FilteredEvent {
	return &FilteredEvent{
		Address:   e.Address,
		Name:      e.Name,
		DepositID: e.DepositID,
		Account:   e.Account,
		Data:      json.RawMessage(e.Data),
		Meta: LogMeta{
			BatchNumber: e.BatchNumber,
			Index:       e.Index,
			BatchTime:   e.BatchTime,
			TxID:        e.TxID,
			TxOrigin:    e.TxOrigin,
		},
	}
}
