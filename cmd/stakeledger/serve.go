// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/stakeledger/api"
	"github.com/vechain/stakeledger/api/admin"
	"github.com/vechain/stakeledger/builtin"
	"github.com/vechain/stakeledger/health"
	"github.com/vechain/stakeledger/log"
	"github.com/vechain/stakeledger/metrics"
	"github.com/vechain/stakeledger/state"
	"github.com/vechain/stakeledger/thor"
)

const defaultTick = 10 * time.Second

func serveAction(ctx *cli.Context) error {
	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
	}

	lc, err := openLedger(ctx, 0)
	if err != nil {
		return err
	}
	defer lc.close()

	inst, err := lc.requireInstance()
	if err != nil {
		return err
	}

	cfg := lc.config.API
	if s := ctx.String(apiAddrFlag.Name); s != "" {
		cfg.Addr = s
	}
	if s := ctx.String(apiCorsFlag.Name); s != "" {
		cfg.CORS = s
	}
	reqLogs := &atomic.Bool{}
	reqLogs.Store(ctx.Bool(enableAPILogsFlag.Name))

	handler, closeSubs := api.New(lc.rt, lc.logDB, inst.Ledger, api.Options{
		AllowedOrigins:       cfg.CORS,
		LogsLimit:            cfg.LogsLimit,
		BacktraceLimit:       cfg.BacktraceLimit,
		EnableMetrics:        ctx.Bool(enableMetricsFlag.Name),
		EnableReqLogger:      reqLogs,
		SlowQueriesThreshold: time.Second,
	})

	wallClock := ctx.Bool(wallClockFlag.Name)
	ledgerHealth := health.New(wallClock)
	ledgerHealth.NewCommit(lc.rt.BatchNumber(), lc.rt.Now())
	if ctx.Bool(enableAdminFlag.Name) {
		url, stop, err := admin.StartServer(ctx.String(adminAddrFlag.Name), logLevel, reqLogs, ledgerHealth)
		if err != nil {
			return err
		}
		defer func() { log.Info("stopping admin server..."); stop() }()
		log.Info("admin server started", "url", url)
	}

	listener, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return errors.Wrapf(err, "listen API addr [%v]", cfg.Addr)
	}
	srv := &http.Server{Handler: handler, ReadHeaderTimeout: 5 * time.Second}
	log.Info("API server started", "url", "http://"+listener.Addr().String()+"/", "ledger", inst.Ledger)

	exitCtx := handleExitSignal()
	g, gctx := errgroup.WithContext(exitCtx)
	g.Go(func() error {
		if err := srv.Serve(listener); err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("stopping API server...")
		closeSubs()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if wallClock {
		tick := ctx.Duration(tickFlag.Name)
		if tick <= 0 {
			tick = defaultTick
		}
		g.Go(func() error {
			return lc.syncWallClock(gctx, inst, tick, ledgerHealth)
		})
		g.Go(func() error {
			return watchClockOffset(gctx, tick/2)
		})
	}
	return g.Wait()
}

// syncWallClock follows the wall clock and triggers scheduled notifiers once due.
func (lc *ledgerContext) syncWallClock(ctx context.Context, inst *Instance, tick time.Duration, h *health.Health) error {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case t := <-ticker.C:
			now := uint64(t.Unix())
			if now <= lc.rt.Now() {
				continue
			}
			if err := lc.rt.SetTime(now); err != nil {
				return err
			}
			for _, addr := range lc.dueNotifiers(inst) {
				clause, err := builtin.NewClause(addr, "notify", map[string]any{})
				if err != nil {
					return err
				}
				if _, err := lc.rt.Execute(lc.config.Admin, clause); err != nil {
					log.Warn("scheduled notify failed", "notifier", addr, "err", err)
				}
			}
			if err := lc.rt.Commit(); err != nil {
				return err
			}
			h.NewCommit(lc.rt.BatchNumber(), lc.rt.Now())
		}
	}
}

func (lc *ledgerContext) dueNotifiers(inst *Instance) []thor.Address {
	var due []thor.Address
	err := lc.rt.View(func(st *state.State, now uint64) error {
		for _, addr := range inst.Notifiers {
			n, err := builtin.BindNotifier(st, addr, func() uint64 { return now })
			if err != nil {
				return err
			}
			next, err := n.NextRewardTime()
			if err != nil {
				return err
			}
			if next <= now {
				due = append(due, addr)
			}
		}
		return nil
	})
	if err != nil {
		log.Warn("failed to load notifiers", "err", err)
		return nil
	}
	return due
}
