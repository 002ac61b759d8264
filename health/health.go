// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package health

import (
	"sync"
	"time"
)

type Commit struct {
	BatchNumber *uint32    `json:"batchNumber"`
	LedgerTime  uint64     `json:"ledgerTime"`
	Timestamp   *time.Time `json:"timestamp"`
}

type Status struct {
	Healthy    bool    `json:"healthy"`
	LastCommit *Commit `json:"lastCommit"`
	WallClock  bool    `json:"wallClock"`
}

// Health tracks ledger commits. A ledger following the wall clock is unhealthy
// once it stops committing.
type Health struct {
	lock       sync.RWMutex
	lastCommit time.Time
	batchNum   *uint32
	ledgerTime uint64
	wallClock  bool
}

func New(wallClock bool) *Health {
	return &Health{wallClock: wallClock}
}

func (h *Health) NewCommit(batchNum uint32, ledgerTime uint64) {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.lastCommit = time.Now()
	h.batchNum = &batchNum
	h.ledgerTime = ledgerTime
}

func (h *Health) Status(maxTimeBetweenCommits time.Duration) *Status {
	h.lock.RLock()
	defer h.lock.RUnlock()

	var commit *Commit
	if h.batchNum != nil {
		ts := h.lastCommit
		commit = &Commit{
			BatchNumber: h.batchNum,
			LedgerTime:  h.ledgerTime,
			Timestamp:   &ts,
		}
	}

	healthy := !h.wallClock ||
		(h.batchNum != nil && time.Since(h.lastCommit) <= maxTimeBetweenCommits)

	return &Status{
		Healthy:    healthy,
		LastCommit: commit,
		WallClock:  h.wallClock,
	}
}
