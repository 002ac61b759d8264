// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package deposits

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/api/restutil"
	"github.com/vechain/stakeledger/builtin"
	"github.com/vechain/stakeledger/builtin/reverts"
	"github.com/vechain/stakeledger/builtin/staker/deposit"
	"github.com/vechain/stakeledger/state"
	"github.com/vechain/stakeledger/thor"
)

type Deposits struct {
	viewer restutil.Viewer
	ledger thor.Address
}

func New(viewer restutil.Viewer, ledger thor.Address) *Deposits {
	return &Deposits{
		viewer,
		ledger,
	}
}

func (d *Deposits) withLedger(fn func(l *builtin.Ledger, now uint64) error) error {
	return d.viewer.View(func(st *state.State, now uint64) error {
		l, err := builtin.BindLedger(st, d.ledger, func() uint64 { return now })
		if err != nil {
			return err
		}
		return fn(l, now)
	})
}

// Convert reads the deposit with its live unclaimed reward.
func Convert(l *builtin.Ledger, id deposit.ID, now uint64) (*Deposit, error) {
	dep, err := l.Deposit(id)
	if err != nil {
		return nil, err
	}
	unclaimed, err := l.UnclaimedReward(id, now)
	if err != nil {
		return nil, err
	}
	surrogate, err := l.Surrogate(dep.Delegatee)
	if err != nil {
		return nil, err
	}
	return &Deposit{
		ID:              id,
		Owner:           dep.Owner,
		Delegatee:       dep.Delegatee,
		Claimer:         dep.Claimer,
		Surrogate:       surrogate,
		Balance:         hex(dep.Balance),
		EarningPower:    hex(dep.EarningPower),
		UnclaimedReward: hex(unclaimed),
	}, nil
}

func (d *Deposits) handleGetDeposit(w http.ResponseWriter, req *http.Request) error {
	n, err := strconv.ParseUint(mux.Vars(req)["id"], 10, 64)
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "id"))
	}
	var res *Deposit
	err = d.withLedger(func(l *builtin.Ledger, now uint64) (err error) {
		res, err = Convert(l, deposit.ID(n), now)
		return err
	})
	if err != nil {
		if errors.Is(err, reverts.ErrUnknownDeposit) {
			return restutil.NotFound(err)
		}
		return err
	}
	return restutil.WriteJSON(w, res)
}

func (d *Deposits) handleGetOwnerDeposits(w http.ResponseWriter, req *http.Request) error {
	owner, err := thor.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "address"))
	}
	res := &Owner{Owner: owner, Deposits: []*Deposit{}}
	err = d.withLedger(func(l *builtin.Ledger, now uint64) error {
		totals, err := l.DepositorTotals(owner)
		if err != nil {
			return err
		}
		res.TotalStaked = hex(totals.Staked)
		res.TotalEarningPower = hex(totals.EarningPower)

		ids, err := l.DepositsOf(owner)
		if err != nil {
			return err
		}
		for _, id := range ids {
			dep, err := Convert(l, id, now)
			if err != nil {
				return err
			}
			res.Deposits = append(res.Deposits, dep)
		}
		return nil
	})
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, res)
}

func (d *Deposits) handleGetSurrogate(w http.ResponseWriter, req *http.Request) error {
	delegatee, err := thor.ParseAddress(mux.Vars(req)["delegatee"])
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "delegatee"))
	}
	var res *Surrogate
	err = d.withLedger(func(l *builtin.Ledger, _ uint64) error {
		surrogate, err := l.Surrogate(delegatee)
		if err != nil {
			return err
		}
		if surrogate.IsZero() {
			return restutil.NotFound(errors.Errorf("no surrogate for %v", delegatee))
		}
		staked, err := l.StakeToken.BalanceOf(surrogate)
		if err != nil {
			return err
		}
		votes, err := l.StakeToken.GetVotes(delegatee)
		if err != nil {
			return err
		}
		res = &Surrogate{
			Delegatee: delegatee,
			Surrogate: surrogate,
			Staked:    hex(staked),
			Votes:     hex(votes),
		}
		return nil
	})
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, res)
}

// Mount registers the deposit views on the root router.
func (d *Deposits) Mount(root *mux.Router) {
	root.Path("/deposits/{id}").
		Methods(http.MethodGet).
		Name("GET /deposits/{id}").
		HandlerFunc(restutil.WrapHandlerFunc(d.handleGetDeposit))
	root.Path("/owners/{address}/deposits").
		Methods(http.MethodGet).
		Name("GET /owners/{address}/deposits").
		HandlerFunc(restutil.WrapHandlerFunc(d.handleGetOwnerDeposits))
	root.Path("/surrogates/{delegatee}").
		Methods(http.MethodGet).
		Name("GET /surrogates/{delegatee}").
		HandlerFunc(restutil.WrapHandlerFunc(d.handleGetSurrogate))
}
