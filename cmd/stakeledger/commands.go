// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"encoding/binary"

	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/stakeledger/api/deposits"
	"github.com/vechain/stakeledger/api/events"
	"github.com/vechain/stakeledger/api/rewards"
	"github.com/vechain/stakeledger/builtin"
	"github.com/vechain/stakeledger/builtin/notifier"
	"github.com/vechain/stakeledger/builtin/staker/deposit"
	"github.com/vechain/stakeledger/log"
	"github.com/vechain/stakeledger/logdb"
	"github.com/vechain/stakeledger/runtime"
	"github.com/vechain/stakeledger/state"
	"github.com/vechain/stakeledger/thor"
	"github.com/vechain/stakeledger/xenv"
)

var ledgerSalt = thor.Blake2b([]byte("stakeledger"))

// clauseBuilder resolves the target, method and args of a clause from the command flags.
type clauseBuilder func(ctx *cli.Context, inst *Instance) (to thor.Address, method string, args map[string]any, err error)

// clauseCommand makes a command executing one clause on behalf of --from.
func clauseCommand(name, usage string, flags []cli.Flag, build clauseBuilder) cli.Command {
	return cli.Command{
		Name:  name,
		Usage: usage,
		Flags: append([]cli.Flag{fromFlag}, flags...),
		Action: func(ctx *cli.Context) error {
			lc, err := openLedger(ctx, 0)
			if err != nil {
				return err
			}
			defer lc.close()

			inst, err := lc.requireInstance()
			if err != nil {
				return err
			}
			caller, err := lc.caller(ctx)
			if err != nil {
				return err
			}
			to, method, args, err := build(ctx, inst)
			if err != nil {
				return err
			}
			receipt, err := lc.execute(caller, to, method, args)
			if err != nil {
				return err
			}
			return printReceipt(ctx, receipt)
		},
	}
}

func (lc *ledgerContext) execute(caller, to thor.Address, method string, args any) (*runtime.Receipt, error) {
	clause, err := builtin.NewClause(to, method, args)
	if err != nil {
		return nil, err
	}
	receipt, err := lc.rt.Execute(caller, clause)
	if err != nil {
		return nil, errors.WithMessage(err, method)
	}
	if err := lc.rt.Commit(); err != nil {
		return nil, err
	}
	return receipt, nil
}

func printReceipt(ctx *cli.Context, receipt *runtime.Receipt) error {
	names := make([]string, 0, len(receipt.Events))
	for _, ev := range receipt.Events {
		names = append(names, ev.Name)
	}
	return printJSON(ctx.App.Writer, map[string]any{
		"txID":   receipt.TxID,
		"time":   receipt.Time,
		"output": receipt.Output,
		"events": names,
	})
}

func tokenAddress(ctx *cli.Context, inst *Instance) (thor.Address, error) {
	switch ctx.String(tokenFlag.Name) {
	case "stake":
		return inst.StakeToken, nil
	case "reward":
		return inst.RewardToken, nil
	default:
		return thor.Address{}, errors.Errorf("unknown token %q", ctx.String(tokenFlag.Name))
	}
}

func commands() []cli.Command {
	return []cli.Command{
		{
			Name:   "init",
			Usage:  "deploy the tokens and the ledger",
			Flags:  []cli.Flag{adminFlag, genesisTimeFlag},
			Action: initAction,
		},
		clauseCommand("mint", "mint tokens, --from must be the token minter",
			[]cli.Flag{tokenFlag, toFlag, amountFlag},
			func(ctx *cli.Context, inst *Instance) (thor.Address, string, map[string]any, error) {
				token, err := tokenAddress(ctx, inst)
				if err != nil {
					return thor.Address{}, "", nil, err
				}
				to, err := addressFlag(ctx, toFlag, true)
				if err != nil {
					return thor.Address{}, "", nil, err
				}
				amount, err := amountFlagValue(ctx, amountFlag)
				if err != nil {
					return thor.Address{}, "", nil, err
				}
				return token, "mint", map[string]any{"to": to, "amount": amount}, nil
			}),
		clauseCommand("approve", "allow the ledger to move tokens of --from, unlimited if no amount",
			[]cli.Flag{tokenFlag, amountFlag},
			func(ctx *cli.Context, inst *Instance) (thor.Address, string, map[string]any, error) {
				token, err := tokenAddress(ctx, inst)
				if err != nil {
					return thor.Address{}, "", nil, err
				}
				args := map[string]any{"spender": inst.Ledger}
				if ctx.String(amountFlag.Name) != "" {
					amount, err := amountFlagValue(ctx, amountFlag)
					if err != nil {
						return thor.Address{}, "", nil, err
					}
					args["amount"] = amount
				}
				return token, "approve", args, nil
			}),
		clauseCommand("deposit", "create a deposit",
			[]cli.Flag{amountFlag, delegateeFlag, claimerFlag},
			func(ctx *cli.Context, inst *Instance) (thor.Address, string, map[string]any, error) {
				amount, err := amountFlagValue(ctx, amountFlag)
				if err != nil {
					return thor.Address{}, "", nil, err
				}
				delegatee, err := addressFlag(ctx, delegateeFlag, false)
				if err != nil {
					return thor.Address{}, "", nil, err
				}
				claimer, err := addressFlag(ctx, claimerFlag, false)
				if err != nil {
					return thor.Address{}, "", nil, err
				}
				return inst.Ledger, "createDeposit", map[string]any{"amount": amount, "delegatee": delegatee, "claimer": claimer}, nil
			}),
		clauseCommand("stake-more", "add stake to a deposit", []cli.Flag{idFlag, amountFlag}, depositAmountClause("stakeMore")),
		clauseCommand("withdraw", "withdraw stake from a deposit", []cli.Flag{idFlag, amountFlag}, depositAmountClause("withdraw")),
		clauseCommand("alter-delegatee", "move a deposit to another delegatee",
			[]cli.Flag{idFlag, delegateeFlag},
			func(ctx *cli.Context, inst *Instance) (thor.Address, string, map[string]any, error) {
				delegatee, err := addressFlag(ctx, delegateeFlag, true)
				if err != nil {
					return thor.Address{}, "", nil, err
				}
				return inst.Ledger, "alterDelegatee", map[string]any{"id": ctx.Uint64(idFlag.Name), "delegatee": delegatee}, nil
			}),
		clauseCommand("alter-claimer", "change the claimer of a deposit",
			[]cli.Flag{idFlag, claimerFlag},
			func(ctx *cli.Context, inst *Instance) (thor.Address, string, map[string]any, error) {
				claimer, err := addressFlag(ctx, claimerFlag, true)
				if err != nil {
					return thor.Address{}, "", nil, err
				}
				return inst.Ledger, "alterClaimer", map[string]any{"id": ctx.Uint64(idFlag.Name), "claimer": claimer}, nil
			}),
		clauseCommand("claim", "claim the reward of a deposit",
			[]cli.Flag{idFlag},
			func(ctx *cli.Context, inst *Instance) (thor.Address, string, map[string]any, error) {
				return inst.Ledger, "claimReward", map[string]any{"id": ctx.Uint64(idFlag.Name)}, nil
			}),
		clauseCommand("notify", "notify a reward amount, or trigger a scheduled notifier with --notifier",
			[]cli.Flag{amountFlag, notifierFlag},
			func(ctx *cli.Context, inst *Instance) (thor.Address, string, map[string]any, error) {
				if ctx.String(notifierFlag.Name) != "" {
					n, err := addressFlag(ctx, notifierFlag, true)
					if err != nil {
						return thor.Address{}, "", nil, err
					}
					return n, "notify", map[string]any{}, nil
				}
				amount, err := amountFlagValue(ctx, amountFlag)
				if err != nil {
					return thor.Address{}, "", nil, err
				}
				return inst.Ledger, "notifyRewardAmount", map[string]any{"amount": amount}, nil
			}),
		clauseCommand("bump", "update the earning power of a deposit for a tip",
			[]cli.Flag{idFlag, tipReceiverFlag, tipFlag},
			func(ctx *cli.Context, inst *Instance) (thor.Address, string, map[string]any, error) {
				receiver, err := addressFlag(ctx, tipReceiverFlag, false)
				if err != nil {
					return thor.Address{}, "", nil, err
				}
				tip, err := amountFlagValue(ctx, tipFlag)
				if err != nil {
					return thor.Address{}, "", nil, err
				}
				return inst.Ledger, "bumpEarningPower", map[string]any{"id": ctx.Uint64(idFlag.Name), "tipReceiver": receiver, "tip": tip}, nil
			}),
		clauseCommand("set-notifier", "allow or revoke a reward notifier",
			[]cli.Flag{notifierFlag, enabledFlag},
			func(ctx *cli.Context, inst *Instance) (thor.Address, string, map[string]any, error) {
				n, err := addressFlag(ctx, notifierFlag, true)
				if err != nil {
					return thor.Address{}, "", nil, err
				}
				return inst.Ledger, "setRewardNotifier", map[string]any{"notifier": n, "enabled": ctx.BoolT(enabledFlag.Name)}, nil
			}),
		clauseCommand("set-admin", "hand the admin role over",
			[]cli.Flag{adminFlag},
			func(ctx *cli.Context, inst *Instance) (thor.Address, string, map[string]any, error) {
				admin, err := addressFlag(ctx, adminFlag, true)
				if err != nil {
					return thor.Address{}, "", nil, err
				}
				return inst.Ledger, "setAdmin", map[string]any{"admin": admin}, nil
			}),
		clauseCommand("set-fee", "set the claim fee and its collector",
			[]cli.Flag{amountFlag, collectorFlag},
			func(ctx *cli.Context, inst *Instance) (thor.Address, string, map[string]any, error) {
				amount, err := amountFlagValue(ctx, amountFlag)
				if err != nil {
					return thor.Address{}, "", nil, err
				}
				collector, err := addressFlag(ctx, collectorFlag, false)
				if err != nil {
					return thor.Address{}, "", nil, err
				}
				return inst.Ledger, "setClaimFeeParameters", map[string]any{"feeAmount": amount, "feeCollector": collector}, nil
			}),
		clauseCommand("set-max-tip", "set the maximum bump tip",
			[]cli.Flag{tipFlag},
			func(ctx *cli.Context, inst *Instance) (thor.Address, string, map[string]any, error) {
				tip, err := amountFlagValue(ctx, tipFlag)
				if err != nil {
					return thor.Address{}, "", nil, err
				}
				return inst.Ledger, "setMaxBumpTip", map[string]any{"tip": tip}, nil
			}),
		clauseCommand("set-calculator", "switch the earning power calculator",
			[]cli.Flag{calculatorFlag},
			func(ctx *cli.Context, inst *Instance) (thor.Address, string, map[string]any, error) {
				calc, err := calculatorAddress(ctx.String(calculatorFlag.Name))
				if err != nil {
					return thor.Address{}, "", nil, err
				}
				return inst.Ledger, "setEarningPowerCalculator", map[string]any{"calculator": calc}, nil
			}),
		clauseCommand("set-score", "report a delegatee score to the eligibility calculator",
			[]cli.Flag{delegateeFlag, scoreFlag, overrideFlag},
			func(ctx *cli.Context, _ *Instance) (thor.Address, string, map[string]any, error) {
				delegatee, err := addressFlag(ctx, delegateeFlag, true)
				if err != nil {
					return thor.Address{}, "", nil, err
				}
				method := "updateDelegateeScore"
				if ctx.Bool(overrideFlag.Name) {
					method = "overrideDelegateeScore"
				}
				return eligibilityAddress, method, map[string]any{"delegatee": delegatee, "score": ctx.Uint64(scoreFlag.Name)}, nil
			}),
		{
			Name:   "deploy-notifier",
			Usage:  "deploy a scheduled reward notifier owned by --from",
			Flags:  []cli.Flag{fromFlag, sourceFlag, funderFlag, amountFlag, intervalFlag},
			Action: deployNotifierAction,
		},
		{
			Name:   "warp",
			Usage:  "advance the ledger clock",
			Flags:  []cli.Flag{secondsFlag, timeFlag},
			Action: warpAction,
		},
		{
			Name:   "show",
			Usage:  "show the ledger, or a deposit with --id",
			Flags:  []cli.Flag{idFlag},
			Action: showAction,
		},
		{
			Name:   "events",
			Usage:  "list ledger events",
			Flags:  []cli.Flag{idFlag, accountFlag, nameFlag, limitFlag, descFlag},
			Action: eventsAction,
		},
		{
			Name:  "serve",
			Usage: "serve the read API",
			Flags: []cli.Flag{
				apiAddrFlag,
				apiCorsFlag,
				enableAPILogsFlag,
				enableMetricsFlag,
				enableAdminFlag,
				adminAddrFlag,
				wallClockFlag,
				tickFlag,
			},
			Action: serveAction,
		},
	}
}

func depositAmountClause(method string) clauseBuilder {
	return func(ctx *cli.Context, inst *Instance) (thor.Address, string, map[string]any, error) {
		amount, err := amountFlagValue(ctx, amountFlag)
		if err != nil {
			return thor.Address{}, "", nil, err
		}
		return inst.Ledger, method, map[string]any{"id": ctx.Uint64(idFlag.Name), "amount": amount}, nil
	}
}

func initAction(ctx *cli.Context) error {
	lc, err := openLedger(ctx, ctx.Uint64(genesisTimeFlag.Name))
	if err != nil {
		return err
	}
	defer lc.close()

	if lc.instance != nil {
		return errors.Errorf("ledger already initialized at %v", lc.instance.Ledger)
	}
	cfg := lc.config
	if ctx.String(adminFlag.Name) != "" {
		if cfg.Admin, err = addressFlag(ctx, adminFlag, true); err != nil {
			return err
		}
	}

	inst := &Instance{}
	_, err = lc.rt.Run(cfg.Admin, func(env *xenv.Environment, st *state.State) (any, error) {
		factory := builtin.Factory.WithState(st)
		installed, err := factory.Installed()
		if err != nil {
			return nil, err
		}
		if !installed {
			factory.Install()
		}
		if p := cfg.EligibilityParams(); p != nil {
			if err := builtin.Eligibility.Install(env, st, p); err != nil {
				return nil, errors.WithMessage(err, "install eligibility calculator")
			}
		}
		rewardToken, err := builtin.DeployToken(env, st, cfg.RewardSymbol)
		if err != nil {
			return nil, errors.WithMessage(err, "deploy reward token")
		}
		stakeToken, err := builtin.DeployToken(env, st, cfg.StakeSymbol)
		if err != nil {
			return nil, errors.WithMessage(err, "deploy stake token")
		}
		p, err := cfg.LedgerParams(rewardToken.Address(), stakeToken.Address())
		if err != nil {
			return nil, err
		}
		l, err := builtin.DeployLedger(env, st, ledgerSalt, p)
		if err != nil {
			return nil, errors.WithMessage(err, "deploy ledger")
		}
		inst.Ledger = l.Address()
		inst.RewardToken = rewardToken.Address()
		inst.StakeToken = stakeToken.Address()
		return nil, nil
	})
	if err != nil {
		return err
	}
	if err := lc.rt.Commit(); err != nil {
		return err
	}
	if err := saveConfig(configPath(ctx, lc.dir), cfg); err != nil {
		return err
	}
	if err := saveInstance(instancePath(lc.dir), inst); err != nil {
		return err
	}
	log.Info("ledger initialized", "ledger", inst.Ledger, "admin", cfg.Admin)
	return printJSON(ctx.App.Writer, inst)
}

func deployNotifierAction(ctx *cli.Context) error {
	lc, err := openLedger(ctx, 0)
	if err != nil {
		return err
	}
	defer lc.close()

	inst, err := lc.requireInstance()
	if err != nil {
		return err
	}
	caller, err := lc.caller(ctx)
	if err != nil {
		return err
	}
	source, err := notifier.ParseSource(ctx.String(sourceFlag.Name))
	if err != nil {
		return err
	}
	funder, err := addressFlag(ctx, funderFlag, false)
	if err != nil {
		return err
	}
	amount, err := amountFlagValue(ctx, amountFlag)
	if err != nil {
		return err
	}

	var seq [8]byte
	binary.BigEndian.PutUint64(seq[:], uint64(len(inst.Notifiers)))
	salt := thor.Blake2b(inst.Ledger.Bytes(), seq[:])

	receipt, err := lc.rt.Run(caller, func(env *xenv.Environment, st *state.State) (any, error) {
		n, err := builtin.DeployNotifier(env, st, salt, &notifier.Params{
			Ledger:         inst.Ledger,
			RewardToken:    inst.RewardToken,
			Source:         source,
			Owner:          caller,
			Funder:         funder,
			RewardAmount:   amount,
			RewardInterval: ctx.Uint64(intervalFlag.Name),
		})
		if err != nil {
			return nil, err
		}
		return n.Address(), nil
	})
	if err != nil {
		return err
	}
	if err := lc.rt.Commit(); err != nil {
		return err
	}
	addr := receipt.Output.(thor.Address)
	inst.Notifiers = append(inst.Notifiers, addr)
	if err := saveInstance(instancePath(lc.dir), inst); err != nil {
		return err
	}
	return printReceipt(ctx, receipt)
}

func warpAction(ctx *cli.Context) error {
	lc, err := openLedger(ctx, 0)
	if err != nil {
		return err
	}
	defer lc.close()

	if ctx.IsSet(timeFlag.Name) {
		if err := lc.rt.SetTime(ctx.Uint64(timeFlag.Name)); err != nil {
			return err
		}
	} else {
		lc.rt.Warp(ctx.Uint64(secondsFlag.Name))
	}
	if err := lc.rt.Commit(); err != nil {
		return err
	}
	return printJSON(ctx.App.Writer, map[string]uint64{"time": lc.rt.Now()})
}

func showAction(ctx *cli.Context) error {
	lc, err := openLedger(ctx, 0)
	if err != nil {
		return err
	}
	defer lc.close()

	inst, err := lc.requireInstance()
	if err != nil {
		return err
	}
	var res any
	err = lc.rt.View(func(st *state.State, now uint64) error {
		if !ctx.IsSet(idFlag.Name) {
			res, err = rewards.Summarize(st, inst.Ledger, now)
			return err
		}
		l, err := builtin.BindLedger(st, inst.Ledger, func() uint64 { return now })
		if err != nil {
			return err
		}
		res, err = deposits.Convert(l, deposit.ID(ctx.Uint64(idFlag.Name)), now)
		return err
	})
	if err != nil {
		return err
	}
	return printJSON(ctx.App.Writer, res)
}

func eventsAction(ctx *cli.Context) error {
	lc, err := openLedger(ctx, 0)
	if err != nil {
		return err
	}
	defer lc.close()

	criteria := &logdb.EventCriteria{}
	if ctx.IsSet(idFlag.Name) {
		id := ctx.Uint64(idFlag.Name)
		criteria.DepositID = &id
	}
	if ctx.String(accountFlag.Name) != "" {
		account, err := addressFlag(ctx, accountFlag, true)
		if err != nil {
			return err
		}
		criteria.Account = &account
	}
	if name := ctx.String(nameFlag.Name); name != "" {
		criteria.Name = &name
	}
	filter := &logdb.EventFilter{
		CriteriaSet: []*logdb.EventCriteria{criteria},
		Options:     &logdb.Options{Limit: ctx.Uint64(limitFlag.Name)},
		Order:       logdb.ASC,
	}
	if ctx.Bool(descFlag.Name) {
		filter.Order = logdb.DESC
	}
	evs, err := lc.logDB.FilterEvents(context.Background(), filter)
	if err != nil {
		return err
	}
	res := make([]*events.FilteredEvent, 0, len(evs))
	for _, ev := range evs {
		res = append(res, events.ConvertEvent(ev))
	}
	return printJSON(ctx.App.Writer, res)
}
