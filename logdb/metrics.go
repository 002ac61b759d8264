// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"strings"

	"github.com/vechain/stakeledger/metrics"
)

var (
	metricCriteriaCount = metrics.LazyLoadHistogram("logdb_event_criteria_count", []int64{0, 1, 2, 5, 10, 25, 100})
	metricCriteriaKeys  = metrics.LazyLoadCounterVec("logdb_event_criteria_keys", []string{"keys"})
	metricQueryOrder    = metrics.LazyLoadCounterVec("logdb_event_query_order", []string{"order"})
	metricQueryOffset   = metrics.LazyLoadHistogram("logdb_event_query_offset", []int64{
		0, 100, 1_000, 10_000, 100_000, 1_000_000,
	})
	metricQueryLimit = metrics.LazyLoadHistogram("logdb_event_query_limit", []int64{
		0, 10, 50, 100, 250, 1000,
	})
	metricEventsStored = metrics.LazyLoadCounter("logdb_events_stored_count")
)

// observeFilter records the shape of an event query. Offsets and limits
// past the last bucket are clamped into the overflow bucket.
func observeFilter(filter *EventFilter) {
	if metrics.NoOp() {
		return
	}

	metricCriteriaCount().Observe(int64(len(filter.CriteriaSet)))
	for _, c := range filter.CriteriaSet {
		metricCriteriaKeys().AddWithLabel(1, map[string]string{"keys": criteriaKeys(c)})
	}

	order := "asc"
	if filter.Order == DESC {
		order = "desc"
	}
	metricQueryOrder().AddWithLabel(1, map[string]string{"order": order})

	if opts := filter.Options; opts != nil {
		metricQueryOffset().Observe(int64(min(opts.Offset, 1_000_001)))
		metricQueryLimit().Observe(int64(min(opts.Limit, 1001)))
	}
}

// criteriaKeys names the fields a criteria narrows on, e.g. "address,name".
func criteriaKeys(c *EventCriteria) string {
	var keys []string
	if c.Address != nil {
		keys = append(keys, "address")
	}
	if c.Name != nil {
		keys = append(keys, "name")
	}
	if c.DepositID != nil {
		keys = append(keys, "depositID")
	}
	if c.Account != nil {
		keys = append(keys, "account")
	}
	return strings.Join(keys, ",")
}
