// Copyright (c) 2018 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"net/http/pprof"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/vechain/stakeledger/api/deposits"
	"github.com/vechain/stakeledger/api/events"
	"github.com/vechain/stakeledger/api/middleware"
	"github.com/vechain/stakeledger/api/notifiers"
	"github.com/vechain/stakeledger/api/restutil"
	"github.com/vechain/stakeledger/api/rewards"
	"github.com/vechain/stakeledger/api/subscriptions"
	"github.com/vechain/stakeledger/log"
	"github.com/vechain/stakeledger/logdb"
	"github.com/vechain/stakeledger/metrics"
	"github.com/vechain/stakeledger/thor"
)

var logger = log.WithContext("pkg", "api")

type Options struct {
	AllowedOrigins       string
	LogsLimit            uint64
	BacktraceLimit       uint32
	PprofOn              bool
	SkipLogs             bool
	EnableMetrics        bool
	EnableReqLogger      *atomic.Bool
	SlowQueriesThreshold time.Duration
}

// Backend is the ledger runtime served by the API.
type Backend interface {
	restutil.Viewer
	subscriptions.Beat
}

// New return api router and a func closing the open subscriptions
func New(
	backend Backend,
	logDB *logdb.LogDB,
	ledger thor.Address,
	opts Options,
) (http.HandlerFunc, func()) {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	router := mux.NewRouter()

	deposits.New(backend, ledger).
		Mount(router)
	rewards.New(backend, ledger).
		Mount(router, "/rewards")
	notifiers.New(backend, ledger).
		Mount(router, "/notifiers")
	closeSubs := func() {}
	if !opts.SkipLogs && logDB != nil {
		events.New(logDB, opts.LogsLimit).
			Mount(router, "/events")
		subs := subscriptions.New(logDB, backend, origins, opts.BacktraceLimit)
		subs.Mount(router, "/subscriptions")
		closeSubs = subs.Close
	}

	if opts.PprofOn {
		router.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		router.HandleFunc("/debug/pprof/profile", pprof.Profile)
		router.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		router.HandleFunc("/debug/pprof/trace", pprof.Trace)
		router.PathPrefix("/debug/pprof/").HandlerFunc(pprof.Index)
	}

	if opts.EnableMetrics && !metrics.NoOp() {
		router.PathPrefix("/metrics").Handler(metrics.HTTPHandler())
		router.Use(metricsMiddleware)
	}

	enabled := opts.EnableReqLogger
	if enabled == nil {
		enabled = &atomic.Bool{}
	}
	router.Use(middleware.RequestLoggerMiddleware(logger, enabled, opts.SlowQueriesThreshold))

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type"}),
	)(handler)

	return handler.ServeHTTP, closeSubs // subscriptions hold hijacked conns, which need to be closed
}
