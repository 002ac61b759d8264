// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"github.com/vechain/stakeledger/builtin/reverts"
	"github.com/vechain/stakeledger/metrics"
)

var metricOperations = metrics.LazyLoadCounterVec("staker_operations_count", []string{"op", "status"})

// observe counts the outcome of an operation. It is deferred with a pointer to the named error result.
func observe(op string, err *error) {
	status := "ok"
	switch {
	case *err == nil:
	case reverts.IsRevertErr(*err):
		status = "revert"
	default:
		status = "error"
	}
	metricOperations().AddWithLabel(1, map[string]string{"op": op, "status": status})
}
