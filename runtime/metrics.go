// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import "github.com/vechain/stakeledger/metrics"

var (
	metricExecutionDuration = metrics.LazyLoadHistogram("runtime_execution_duration_ms", metrics.BucketExecution)
	metricExecutionCount    = metrics.LazyLoadCounterVec("runtime_execution_count", []string{"status"})
	metricBatchNumber       = metrics.LazyLoadGauge("runtime_batch_number")
	metricPending           = metrics.LazyLoadGaugeVec("runtime_pending", []string{"kind"})
)
