// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package co_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/vechain/stakeledger/co"
)

func woken(w co.Waiter) bool {
	select {
	case <-w.C():
		return true
	case <-time.After(50 * time.Millisecond):
		return false
	}
}

func TestBroadcastBeforeWaiter(t *testing.T) {
	var sig co.Signal
	sig.Broadcast()

	assert.False(t, woken(sig.NewWaiter()), "earlier broadcasts are not observed")
}

func TestBroadcastWakesAll(t *testing.T) {
	var sig co.Signal

	var ws []co.Waiter
	for range 10 {
		ws = append(ws, sig.NewWaiter())
	}
	sig.Broadcast()

	for _, w := range ws {
		assert.True(t, woken(w))
	}
}

func TestBroadcastBetweenWaits(t *testing.T) {
	var sig co.Signal
	w := sig.NewWaiter()

	assert.False(t, woken(w))
	sig.Broadcast()
	assert.True(t, woken(w), "broadcast while not selecting is kept")
}
