// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"time"

	"github.com/beevik/ntp"
	"github.com/elastic/gosigar"
	"github.com/ethereum/go-ethereum/common/fdlimit"

	"github.com/vechain/stakeledger/log"
)

const (
	minCacheMB       = 16
	maxOpenFiles     = 5120
	ntpHost          = "pool.ntp.org"
	clockCheckPeriod = time.Hour
)

var (
	physicalMemory = func() (uint64, error) {
		var mem gosigar.Mem
		if err := mem.Get(); err != nil {
			return 0, err
		}
		return mem.Total, nil
	}
	queryClockOffset = func(host string) (time.Duration, error) {
		resp, err := ntp.QueryWithOptions(host, ntp.QueryOptions{Timeout: 5 * time.Second})
		if err != nil {
			return 0, err
		}
		return resp.ClockOffset, nil
	}
)

// normalizeCacheSize bounds the state cache to half of the physical ram.
func normalizeCacheSize(sizeMB int) int {
	if sizeMB < minCacheMB {
		sizeMB = minCacheMB
	}
	total, err := physicalMemory()
	if err != nil {
		log.Warn("failed to get total mem", "err", err)
		return sizeMB
	}
	if limitMB := int(total / 1024 / 1024 / 2); sizeMB > limitMB {
		sizeMB = max(limitMB, minCacheMB)
		log.Warn("cache size(MB) limited", "limit", sizeMB)
	}
	return sizeMB
}

// suggestFDCache leaves half of the fd limit to the state db.
func suggestFDCache() int {
	limit, err := fdlimit.Current()
	if err != nil {
		log.Warn("failed to get fd limit", "err", err)
		return 64
	}
	if limit <= 1024 {
		log.Warn("low fd limit, increase it if possible", "limit", limit)
	}
	return max(min(limit/2, maxOpenFiles), 16)
}

// checkClockOffset warns when the host clock drifts from ntp by more than tolerance.
// The ledger clock follows the host clock in wall-clock mode.
func checkClockOffset(tolerance time.Duration) (time.Duration, bool) {
	offset, err := queryClockOffset(ntpHost)
	if err != nil {
		log.Debug("failed to access NTP", "err", err)
		return 0, false
	}
	if offset > tolerance || -offset > tolerance {
		log.Warn("clock offset detected", "offset", offset)
		return offset, false
	}
	return offset, true
}

func watchClockOffset(ctx context.Context, tolerance time.Duration) error {
	ticker := time.NewTicker(clockCheckPeriod)
	defer ticker.Stop()

	checkClockOffset(tolerance)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			checkClockOffset(tolerance)
		}
	}
}
