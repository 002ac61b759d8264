// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/stakeledger/log"
)

var (
	dataDirFlag = cli.StringFlag{
		Name:  "data-dir",
		Value: defaultDataDir(),
		Usage: "directory for ledger databases",
	}
	configFlag = cli.StringFlag{
		Name:  "config",
		Usage: "path to the ledger config file (default <data-dir>/config.yaml)",
	}
	verbosityFlag = cli.Uint64Flag{
		Name:  "verbosity",
		Value: log.LegacyLevelWarn,
		Usage: "log verbosity (0-5)",
	}
	jsonLogsFlag = cli.BoolFlag{
		Name:  "json-logs",
		Usage: "output logs in JSON format",
	}
	cacheFlag = cli.Uint64Flag{
		Name:  "cache",
		Usage: "megabytes of ram allocated to the state db cache",
		Value: 64,
	}
	fromFlag = cli.StringFlag{
		Name:  "from",
		Usage: "address the clause is executed on behalf of (default admin)",
	}

	// init
	adminFlag = cli.StringFlag{
		Name:  "admin",
		Usage: "ledger admin address, overrides the config file",
	}
	genesisTimeFlag = cli.Uint64Flag{
		Name:  "genesis-time",
		Usage: "initial ledger clock in unix seconds (default now)",
	}

	// clause arguments
	idFlag = cli.Uint64Flag{
		Name:  "id",
		Usage: "deposit id",
	}
	amountFlag = cli.StringFlag{
		Name:  "amount",
		Usage: "token amount (decimal or 0x hex)",
	}
	tokenFlag = cli.StringFlag{
		Name:  "token",
		Value: "stake",
		Usage: "token to operate (stake|reward)",
	}
	toFlag = cli.StringFlag{
		Name:  "to",
		Usage: "receiver address",
	}
	delegateeFlag = cli.StringFlag{
		Name:  "delegatee",
		Usage: "delegatee address",
	}
	claimerFlag = cli.StringFlag{
		Name:  "claimer",
		Usage: "claimer address",
	}
	notifierFlag = cli.StringFlag{
		Name:  "notifier",
		Usage: "reward notifier address",
	}
	enabledFlag = cli.BoolTFlag{
		Name:  "enabled",
		Usage: "whether the notifier is allowed",
	}
	tipFlag = cli.StringFlag{
		Name:  "tip",
		Value: "0",
		Usage: "bump tip amount",
	}
	tipReceiverFlag = cli.StringFlag{
		Name:  "tip-receiver",
		Usage: "address receiving the bump tip",
	}
	collectorFlag = cli.StringFlag{
		Name:  "collector",
		Usage: "claim fee collector address",
	}
	calculatorFlag = cli.StringFlag{
		Name:  "calculator",
		Usage: "earning power calculator (identity|eligibility)",
	}
	scoreFlag = cli.Uint64Flag{
		Name:  "score",
		Usage: "delegatee score (0-100)",
	}
	overrideFlag = cli.BoolFlag{
		Name:  "override",
		Usage: "override and lock the score, calculator owner only",
	}
	sourceFlag = cli.StringFlag{
		Name:  "source",
		Value: "transfer",
		Usage: "scheduled notifier funding (transfer|mint)",
	}
	funderFlag = cli.StringFlag{
		Name:  "funder",
		Usage: "account the scheduled notifier pulls rewards from",
	}
	intervalFlag = cli.Uint64Flag{
		Name:  "interval",
		Usage: "seconds between scheduled notifications",
	}
	secondsFlag = cli.Uint64Flag{
		Name:  "seconds",
		Usage: "seconds to advance the ledger clock",
	}
	timeFlag = cli.Uint64Flag{
		Name:  "time",
		Usage: "unix time to move the ledger clock to",
	}

	// queries
	accountFlag = cli.StringFlag{
		Name:  "account",
		Usage: "filter by account",
	}
	nameFlag = cli.StringFlag{
		Name:  "name",
		Usage: "filter by event name",
	}
	limitFlag = cli.Uint64Flag{
		Name:  "limit",
		Value: 100,
		Usage: "maximum number of results",
	}
	descFlag = cli.BoolFlag{
		Name:  "desc",
		Usage: "newest first",
	}

	// serve
	apiAddrFlag = cli.StringFlag{
		Name:  "api-addr",
		Usage: "API service listening address, overrides the config file",
	}
	apiCorsFlag = cli.StringFlag{
		Name:  "api-cors",
		Usage: "comma separated list of domains from which to accept cross origin requests to API",
	}
	enableAPILogsFlag = cli.BoolFlag{
		Name:  "enable-api-logs",
		Usage: "enables API requests logging",
	}
	enableMetricsFlag = cli.BoolFlag{
		Name:  "enable-metrics",
		Usage: "enables metrics collection, served at /metrics",
	}
	wallClockFlag = cli.BoolFlag{
		Name:  "wall-clock",
		Usage: "advance the ledger clock with the wall clock and trigger due scheduled notifiers",
	}
	enableAdminFlag = cli.BoolFlag{
		Name:  "enable-admin",
		Usage: "enables admin server",
	}
	adminAddrFlag = cli.StringFlag{
		Name:  "admin-addr",
		Value: "localhost:2113",
		Usage: "admin service listening address",
	}
	tickFlag = cli.DurationFlag{
		Name:  "tick",
		Usage: "wall clock sync interval",
	}
)
