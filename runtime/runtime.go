// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"encoding/binary"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/builtin"
	"github.com/vechain/stakeledger/co"
	"github.com/vechain/stakeledger/kv"
	"github.com/vechain/stakeledger/log"
	"github.com/vechain/stakeledger/logdb"
	"github.com/vechain/stakeledger/state"
	"github.com/vechain/stakeledger/thor"
	"github.com/vechain/stakeledger/xenv"
)

var logger = log.WithContext("pkg", "runtime")

var (
	clockKey = []byte("m:clock")
	batchKey = []byte("m:batch")
	nonceKey = []byte("m:nonce")
)

// Receipt is the result of an executed clause.
type Receipt struct {
	TxID   thor.Bytes32
	Origin thor.Address
	Time   uint64
	Output any
	Events []*xenv.Event
}

// Runtime executes clauses against the ledger state.
// Changes are kept in memory until Commit, which persists the state to the kv store
// and the emitted events to the log db as one batch.
type Runtime struct {
	mu    sync.Mutex
	db    kv.Store
	state *state.State
	logDB *logdb.LogDB

	clock    uint64
	batchNum uint32
	nonce    uint64
	pending  []*pendingTx
	commits  co.Signal
}

type pendingTx struct {
	id     thor.Bytes32
	origin thor.Address
	events []*xenv.Event
}

// New opens the runtime over db. When the db is fresh the clock starts at genesisTime.
func New(db kv.Store, logDB *logdb.LogDB, genesisTime uint64) (*Runtime, error) {
	rt := &Runtime{
		db:    db,
		state: state.New(db),
		logDB: logDB,
		clock: genesisTime,
	}
	clock, err := loadUint64(db, clockKey)
	if err != nil {
		return nil, err
	}
	if clock != nil {
		rt.clock = *clock
	}
	batch, err := loadUint64(db, batchKey)
	if err != nil {
		return nil, err
	}
	if batch != nil {
		rt.batchNum = uint32(*batch)
	}
	nonce, err := loadUint64(db, nonceKey)
	if err != nil {
		return nil, err
	}
	if nonce != nil {
		rt.nonce = *nonce
	}
	return rt, nil
}

func loadUint64(db kv.Getter, key []byte) (*uint64, error) {
	val, err := db.Get(key)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "load runtime meta")
	}
	if len(val) != 8 {
		return nil, errors.Errorf("corrupted runtime meta %q", key)
	}
	v := binary.BigEndian.Uint64(val)
	return &v, nil
}

// Now returns the ledger clock.
func (rt *Runtime) Now() uint64 {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.clock
}

// BatchNumber returns the number of the last committed batch.
func (rt *Runtime) BatchNumber() uint32 {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.batchNum
}

// Warp advances the clock by the given seconds.
func (rt *Runtime) Warp(seconds uint64) uint64 {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.clock += seconds
	return rt.clock
}

// SetTime moves the clock to ts. The clock never goes backwards.
func (rt *Runtime) SetTime(ts uint64) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if ts < rt.clock {
		return errors.Errorf("time %d is before ledger clock %d", ts, rt.clock)
	}
	rt.clock = ts
	return nil
}

// View runs fn with the state and the clock, serialized with executions.
func (rt *Runtime) View(fn func(st *state.State, now uint64) error) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return fn(rt.state, rt.clock)
}

// Execute runs the clause on behalf of caller.
func (rt *Runtime) Execute(caller thor.Address, clause *builtin.Clause) (*Receipt, error) {
	return rt.Run(caller, func(env *xenv.Environment, st *state.State) (any, error) {
		return builtin.Call(env, st, clause)
	})
}

// Run runs fn as one transaction of caller. If fn fails, its state changes and events are dropped.
func (rt *Runtime) Run(caller thor.Address, fn func(env *xenv.Environment, st *state.State) (any, error)) (*Receipt, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	start := time.Now()
	rt.nonce++
	var nonce [8]byte
	binary.BigEndian.PutUint64(nonce[:], rt.nonce)
	txID := thor.Blake2b(caller.Bytes(), nonce[:])

	env := xenv.New(
		&xenv.BlockContext{Number: rt.batchNum + 1, Time: rt.clock},
		&xenv.TransactionContext{ID: txID, Origin: caller},
		caller,
	)

	checkpoint := rt.state.NewCheckpoint()
	out, err := fn(env, rt.state)
	if err != nil {
		rt.state.RevertTo(checkpoint)
		metricExecutionCount().AddWithLabel(1, map[string]string{"status": "reverted"})
		logger.Debug("transaction reverted", "tx", txID, "origin", caller, "err", err)
		return nil, err
	}
	metricExecutionCount().AddWithLabel(1, map[string]string{"status": "success"})
	metricExecutionDuration().Observe(time.Since(start).Milliseconds())

	events := env.Events()
	rt.pending = append(rt.pending, &pendingTx{txID, caller, events})
	metricPending().AddWithLabel(1, map[string]string{"kind": "tx"})
	metricPending().AddWithLabel(int64(len(events)), map[string]string{"kind": "event"})
	logger.Debug("transaction executed", "tx", txID, "origin", caller, "events", len(events))
	return &Receipt{
		TxID:   txID,
		Origin: caller,
		Time:   rt.clock,
		Output: out,
		Events: events,
	}, nil
}

// Commit persists the state, the clock and the pending events.
func (rt *Runtime) Commit() error {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	if err := rt.state.Commit(); err != nil {
		return errors.Wrap(err, "commit state")
	}
	batchNum := rt.batchNum + 1
	if rt.logDB != nil {
		batch := rt.logDB.Prepare(batchNum, rt.clock)
		for _, tx := range rt.pending {
			batch.ForTransaction(tx.id, tx.origin).Insert(tx.events)
		}
		if err := batch.Commit(); err != nil {
			return errors.Wrap(err, "commit events")
		}
	}

	b := rt.db.NewBatch()
	for _, m := range []struct {
		key []byte
		val uint64
	}{
		{clockKey, rt.clock},
		{batchKey, uint64(batchNum)},
		{nonceKey, rt.nonce},
	} {
		var val [8]byte
		binary.BigEndian.PutUint64(val[:], m.val)
		if err := b.Put(m.key, val[:]); err != nil {
			return err
		}
	}
	if err := b.Write(); err != nil {
		return errors.Wrap(err, "commit runtime meta")
	}
	rt.batchNum = batchNum
	rt.pending = nil
	metricBatchNumber().Set(int64(batchNum))
	metricPending().SetWithLabel(0, map[string]string{"kind": "tx"})
	metricPending().SetWithLabel(0, map[string]string{"kind": "event"})
	logger.Debug("committed", "batch", batchNum, "time", rt.clock)
	rt.commits.Broadcast()
	return nil
}

// NewCommitWaiter returns a waiter woken after each Commit.
func (rt *Runtime) NewCommitWaiter() co.Waiter {
	return rt.commits.NewWaiter()
}
