// Copyright (c) 2020 The VeChainThor developers
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"database/sql"
	"sync"

	"github.com/pkg/errors"
)

// preparedSet keeps one prepared statement per query text for the life of
// the db. The event store issues a handful of fixed queries, so it never
// evicts.
type preparedSet struct {
	db    *sql.DB
	mu    sync.Mutex
	stmts map[string]*sql.Stmt
}

func newPreparedSet(db *sql.DB) *preparedSet {
	return &preparedSet{db: db, stmts: make(map[string]*sql.Stmt)}
}

// get must not be called while a tx holds the connection, since preparing
// needs a connection of its own.
func (p *preparedSet) get(query string) (*sql.Stmt, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if stmt := p.stmts[query]; stmt != nil {
		return stmt, nil
	}
	stmt, err := p.db.Prepare(query)
	if err != nil {
		return nil, errors.Wrap(err, "prepare")
	}
	p.stmts[query] = stmt
	return stmt, nil
}

func (p *preparedSet) close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for query, stmt := range p.stmts {
		_ = stmt.Close()
		delete(p.stmts, query)
	}
}
