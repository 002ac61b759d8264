// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"context"
	"math"

	"github.com/vechain/stakeledger/api/events"
	"github.com/vechain/stakeledger/logdb"
)

const readLimit = 100

type eventReader struct {
	db       *logdb.LogDB
	criteria *logdb.EventCriteria
	batchNum uint32
	index    uint32
}

func newEventReader(db *logdb.LogDB, batchNum uint32, criteria *logdb.EventCriteria) *eventReader {
	return &eventReader{
		db:       db,
		criteria: criteria,
		batchNum: batchNum,
	}
}

// Read returns the matching events stored since the previous read.
// The flag reports whether more events may be waiting.
func (er *eventReader) Read(ctx context.Context) ([]*events.FilteredEvent, bool, error) {
	evs, err := er.db.EventsFrom(ctx, er.batchNum, er.index, readLimit)
	if err != nil {
		return nil, false, err
	}
	var msgs []*events.FilteredEvent
	for _, ev := range evs {
		if match(er.criteria, ev) {
			msgs = append(msgs, events.ConvertEvent(ev))
		}
	}
	if n := len(evs); n > 0 {
		last := evs[n-1]
		if last.Index == math.MaxInt32 {
			er.batchNum, er.index = last.BatchNumber+1, 0
		} else {
			er.batchNum, er.index = last.BatchNumber, last.Index+1
		}
	}
	return msgs, len(evs) == readLimit, nil
}

func match(c *logdb.EventCriteria, ev *logdb.Event) bool {
	if c.Address != nil && *c.Address != ev.Address {
		return false
	}
	if c.Name != nil && *c.Name != ev.Name {
		return false
	}
	if c.DepositID != nil && (ev.DepositID == nil || *c.DepositID != *ev.DepositID) {
		return false
	}
	if c.Account != nil && (ev.Account == nil || *c.Account != *ev.Account) {
		return false
	}
	return true
}
