// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"os"
	"os/signal"
	"os/user"
	"path/filepath"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/stakeledger/builtin"
	"github.com/vechain/stakeledger/log"
	"github.com/vechain/stakeledger/logdb"
	"github.com/vechain/stakeledger/lvldb"
	"github.com/vechain/stakeledger/runtime"
	"github.com/vechain/stakeledger/thor"
)

var (
	eligibilityAddress = builtin.Eligibility.Address
	logLevel           = new(slog.LevelVar)
)

func defaultDataDir() string {
	if home := homeDir(); home != "" {
		return filepath.Join(home, ".stakeledger")
	}
	return ""
}

func homeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}

func initLogger(ctx *cli.Context) {
	logLevel.Set(log.FromLegacyLevel(int(ctx.GlobalUint64(verbosityFlag.Name))))

	format := log.FormatTerminal
	if ctx.GlobalBool(jsonLogsFlag.Name) {
		format = log.FormatJSON
	}
	useColor := (isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())) && os.Getenv("TERM") != "dumb"
	handler := log.NewHandler(os.Stderr, format, logLevel, useColor)
	log.SetDefault(log.NewLogger(handler))
}

func dataDir(ctx *cli.Context) (string, error) {
	dir := ctx.GlobalString(dataDirFlag.Name)
	if dir == "" {
		return "", fmt.Errorf("unable to infer default data dir, use -%s to specify one", dataDirFlag.Name)
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", errors.Wrapf(err, "create data dir at %v", dir)
	}
	return dir, nil
}

func configPath(ctx *cli.Context, dir string) string {
	if p := ctx.GlobalString(configFlag.Name); p != "" {
		return p
	}
	return filepath.Join(dir, "config.yaml")
}

func instancePath(dir string) string {
	return filepath.Join(dir, "instance.yaml")
}

// ledgerContext bundles everything a command needs.
type ledgerContext struct {
	dir      string
	config   *Config
	instance *Instance
	rt       *runtime.Runtime
	logDB    *logdb.LogDB
	close    func()
}

// openLedger opens the databases. The instance is nil before init.
func openLedger(ctx *cli.Context, genesisTime uint64) (*ledgerContext, error) {
	dir, err := dataDir(ctx)
	if err != nil {
		return nil, err
	}
	cfg, err := loadConfig(configPath(ctx, dir))
	if err != nil {
		return nil, err
	}

	stateDir := filepath.Join(dir, "state.db")
	db, err := lvldb.New(stateDir, lvldb.Options{
		CacheSize:              normalizeCacheSize(int(ctx.GlobalUint64(cacheFlag.Name))),
		OpenFilesCacheCapacity: suggestFDCache(),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "open state database at %v", stateDir)
	}
	logPath := filepath.Join(dir, "logs.db")
	logDB, err := logdb.New(logPath)
	if err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "open log database at %v", logPath)
	}
	if genesisTime == 0 {
		genesisTime = uint64(time.Now().Unix())
	}
	rt, err := runtime.New(db, logDB, genesisTime)
	if err != nil {
		logDB.Close()
		db.Close()
		return nil, err
	}

	lc := &ledgerContext{
		dir:    dir,
		config: cfg,
		rt:     rt,
		logDB:  logDB,
		close: func() {
			logDB.Close()
			db.Close()
		},
	}
	if inst, err := loadInstance(instancePath(dir)); err == nil {
		lc.instance = inst
	}
	return lc, nil
}

func (lc *ledgerContext) requireInstance() (*Instance, error) {
	if lc.instance == nil {
		return nil, errors.New("ledger not initialized, run init first")
	}
	return lc.instance, nil
}

// caller resolves the --from flag, defaulting to the admin.
func (lc *ledgerContext) caller(ctx *cli.Context) (thor.Address, error) {
	if s := ctx.String(fromFlag.Name); s != "" {
		return thor.ParseAddress(s)
	}
	if lc.config.Admin.IsZero() {
		return thor.Address{}, errors.New("no --from given and no admin configured")
	}
	return lc.config.Admin, nil
}

func addressFlag(ctx *cli.Context, flag cli.StringFlag, required bool) (thor.Address, error) {
	s := ctx.String(flag.Name)
	if s == "" {
		if required {
			return thor.Address{}, errors.Errorf("--%s required", flag.Name)
		}
		return thor.Address{}, nil
	}
	addr, err := thor.ParseAddress(s)
	if err != nil {
		return thor.Address{}, errors.WithMessagef(err, "--%s", flag.Name)
	}
	return addr, nil
}

func amountFlagValue(ctx *cli.Context, flag cli.StringFlag) (*big.Int, error) {
	s := ctx.String(flag.Name)
	if s == "" {
		return nil, errors.Errorf("--%s required", flag.Name)
	}
	v, err := parseAmount(s)
	if err != nil {
		return nil, errors.WithMessagef(err, "--%s", flag.Name)
	}
	return v, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func handleExitSignal() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		exitSignalCh := make(chan os.Signal, 1)
		signal.Notify(exitSignalCh, os.Interrupt, syscall.SIGTERM)

		sig := <-exitSignalCh
		log.Info("exit signal received", "signal", sig)
		cancel()
	}()
	return ctx
}
