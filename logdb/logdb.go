// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"context"
	"database/sql"
	"math"

	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/thor"
	"github.com/vechain/stakeledger/xenv"
)

const insertEventQuery = "INSERT OR REPLACE INTO event(seq, batchTime, txID, txOrigin, address, name, depositID, account, data) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)"

type LogDB struct {
	path          string
	db            *sql.DB
	driverVersion string
	prepared      *preparedSet
}

// New create or open log db at given path.
func New(path string) (logDB *LogDB, err error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if logDB == nil {
			db.Close()
		}
	}()
	// a memory db lives as long as its single connection
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(eventTableSchema); err != nil {
		return nil, err
	}

	driverVer, _, _ := sqlite3.Version()
	return &LogDB{
		path,
		db,
		driverVer,
		newPreparedSet(db),
	}, nil
}

// NewMem create a log db in ram.
func NewMem() (*LogDB, error) {
	return New(":memory:")
}

// Close close the log db.
func (db *LogDB) Close() error {
	db.prepared.close()
	return db.db.Close()
}

func (db *LogDB) Path() string {
	return db.path
}

func (db *LogDB) DriverVersion() string {
	return db.driverVersion
}

// NewestBatchNumber returns the number of the last committed batch, 0 if none.
func (db *LogDB) NewestBatchNumber(ctx context.Context) (uint32, error) {
	var seq sql.NullInt64
	if err := db.db.QueryRowContext(ctx, "SELECT MAX(seq) FROM event").Scan(&seq); err != nil {
		return 0, err
	}
	if !seq.Valid {
		return 0, nil
	}
	return sequence(seq.Int64).BatchNumber(), nil
}

// Prepare starts a batch of events committed together.
func (db *LogDB) Prepare(batchNum uint32, batchTime uint64) *Batch {
	return &Batch{
		db:        db,
		batchNum:  batchNum,
		batchTime: batchTime,
	}
}

func (db *LogDB) FilterEvents(ctx context.Context, filter *EventFilter) ([]*Event, error) {
	if filter == nil {
		return db.queryEvents(ctx, "SELECT * FROM event ORDER BY seq ASC")
	}
	observeFilter(filter)

	var args []any
	stmt := "SELECT * FROM event WHERE 1"
	if filter.Range != nil {
		args = append(args, filter.Range.From)
		stmt += " AND batchTime >= ? "
		if filter.Range.To >= filter.Range.From {
			args = append(args, filter.Range.To)
			stmt += " AND batchTime <= ? "
		}
	}
	length := len(filter.CriteriaSet)
	for i, criteria := range filter.CriteriaSet {
		if i == 0 {
			stmt += " AND (( 1"
		} else {
			stmt += " OR ( 1"
		}
		if criteria.Address != nil {
			args = append(args, criteria.Address.Bytes())
			stmt += " AND address = ? "
		}
		if criteria.Name != nil {
			args = append(args, *criteria.Name)
			stmt += " AND name = ? "
		}
		if criteria.DepositID != nil {
			args = append(args, int64(*criteria.DepositID))
			stmt += " AND depositID = ? "
		}
		if criteria.Account != nil {
			args = append(args, criteria.Account.Bytes())
			stmt += " AND account = ? "
		}
		if i == length-1 {
			stmt += " )) "
		} else {
			stmt += " ) "
		}
	}

	if filter.Order == DESC {
		stmt += " ORDER BY seq DESC "
	} else {
		stmt += " ORDER BY seq ASC "
	}

	if filter.Options != nil {
		limit := filter.Options.Limit
		if limit > math.MaxInt64 {
			limit = math.MaxInt64
		}
		stmt += " LIMIT ?, ? "
		args = append(args, int64(filter.Options.Offset), int64(limit))
	}
	return db.queryEvents(ctx, stmt, args...)
}

// EventsFrom returns up to limit events stored at or after the given batch position, oldest first.
func (db *LogDB) EventsFrom(ctx context.Context, batchNum, index uint32, limit uint64) ([]*Event, error) {
	if limit > math.MaxInt64 {
		limit = math.MaxInt64
	}
	return db.queryEvents(ctx, "SELECT * FROM event WHERE seq >= ? ORDER BY seq ASC LIMIT ?",
		int64(newSequence(batchNum, index)), int64(limit))
}

func (db *LogDB) queryEvents(ctx context.Context, query string, args ...any) ([]*Event, error) {
	stmt, err := db.prepared.get(query)
	if err != nil {
		return nil, err
	}
	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		var (
			seq       int64
			batchTime uint64
			txID      []byte
			txOrigin  []byte
			address   []byte
			name      string
			depositID sql.NullInt64
			account   []byte
			data      []byte
		)
		if err := rows.Scan(
			&seq,
			&batchTime,
			&txID,
			&txOrigin,
			&address,
			&name,
			&depositID,
			&account,
			&data,
		); err != nil {
			return nil, err
		}
		event := &Event{
			BatchNumber: sequence(seq).BatchNumber(),
			Index:       sequence(seq).Index(),
			BatchTime:   batchTime,
			TxID:        thor.BytesToBytes32(txID),
			TxOrigin:    thor.BytesToAddress(txOrigin),
			Address:     thor.BytesToAddress(address),
			Name:        name,
			Data:        data,
		}
		if depositID.Valid {
			id := uint64(depositID.Int64)
			event.DepositID = &id
		}
		if len(account) > 0 {
			acc := thor.BytesToAddress(account)
			event.Account = &acc
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// Batch collects the events of one commit.
type Batch struct {
	db        *LogDB
	batchNum  uint32
	batchTime uint64
	events    []*Event
}

// ForTransaction scopes the following inserts to a transaction.
func (b *Batch) ForTransaction(txID thor.Bytes32, txOrigin thor.Address) *TxBatch {
	return &TxBatch{b, txID, txOrigin}
}

// TxBatch adds the events emitted by one transaction to a batch.
type TxBatch struct {
	batch    *Batch
	txID     thor.Bytes32
	txOrigin thor.Address
}

func (t *TxBatch) Insert(events []*xenv.Event) *TxBatch {
	b := t.batch
	for _, ev := range events {
		b.events = append(b.events, newEvent(b.batchNum, b.batchTime, uint32(len(b.events)), t.txID, t.txOrigin, ev))
	}
	return t
}

func (b *Batch) Len() int {
	return len(b.events)
}

func (b *Batch) execInTx(proc func(*sql.Tx) error) (err error) {
	tx, err := b.db.db.Begin()
	if err != nil {
		return err
	}
	if err := proc(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Commit writes the batch in one transaction.
func (b *Batch) Commit() error {
	if len(b.events) == 0 {
		return nil
	}
	// prepared before the tx takes the only connection
	stmt, err := b.db.prepared.get(insertEventQuery)
	if err != nil {
		return err
	}
	err = b.execInTx(func(tx *sql.Tx) error {
		txStmt := tx.Stmt(stmt)
		for _, ev := range b.events {
			var depositID any
			if ev.DepositID != nil {
				depositID = int64(*ev.DepositID)
			}
			var account []byte
			if ev.Account != nil {
				account = ev.Account.Bytes()
			}
			if _, err := txStmt.Exec(
				int64(newSequence(ev.BatchNumber, ev.Index)),
				ev.BatchTime,
				ev.TxID.Bytes(),
				ev.TxOrigin.Bytes(),
				ev.Address.Bytes(),
				ev.Name,
				depositID,
				account,
				ev.Data,
			); err != nil {
				return errors.Wrap(err, "insert event")
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	metricEventsStored().Add(int64(len(b.events)))
	return nil
}
