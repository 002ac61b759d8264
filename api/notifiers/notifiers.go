// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package notifiers

import (
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/api/restutil"
	"github.com/vechain/stakeledger/builtin"
	"github.com/vechain/stakeledger/builtin/notifier"
	"github.com/vechain/stakeledger/state"
	"github.com/vechain/stakeledger/thor"
)

// Notifier tells whether an address may notify rewards to the ledger.
// Scheduled is set when the address hosts a scheduled reward notifier.
type Notifier struct {
	Address   thor.Address `json:"address"`
	Enabled   bool         `json:"enabled"`
	Scheduled *Scheduled   `json:"scheduled,omitempty"`
}

type Scheduled struct {
	Ledger         thor.Address          `json:"ledger"`
	Source         string                `json:"source"`
	Owner          thor.Address          `json:"owner"`
	Funder         thor.Address          `json:"funder"`
	RewardAmount   *math.HexOrDecimal256 `json:"rewardAmount"`
	RewardInterval uint64                `json:"rewardInterval"`
	NextRewardTime uint64                `json:"nextRewardTime"`
}

type Notifiers struct {
	viewer restutil.Viewer
	ledger thor.Address
}

func New(viewer restutil.Viewer, ledger thor.Address) *Notifiers {
	return &Notifiers{
		viewer,
		ledger,
	}
}

func scheduled(st *state.State, addr thor.Address, now uint64) (*Scheduled, error) {
	code, err := st.GetCode(addr)
	if err != nil {
		return nil, err
	}
	p, err := notifier.DecodeParams(code)
	if err != nil {
		// not a scheduled notifier
		return nil, nil
	}
	n, err := builtin.BindNotifier(st, addr, func() uint64 { return now })
	if err != nil {
		return nil, err
	}
	owner, err := n.Owner()
	if err != nil {
		return nil, err
	}
	funder, err := n.Funder()
	if err != nil {
		return nil, err
	}
	amount, err := n.RewardAmount()
	if err != nil {
		return nil, err
	}
	interval, err := n.RewardInterval()
	if err != nil {
		return nil, err
	}
	next, err := n.NextRewardTime()
	if err != nil {
		return nil, err
	}
	return &Scheduled{
		Ledger:         p.Ledger,
		Source:         n.Source().String(),
		Owner:          owner,
		Funder:         funder,
		RewardAmount:   (*math.HexOrDecimal256)(new(big.Int).Set(amount)),
		RewardInterval: interval,
		NextRewardTime: next,
	}, nil
}

func (n *Notifiers) handleGetNotifier(w http.ResponseWriter, req *http.Request) error {
	addr, err := thor.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "address"))
	}
	res := &Notifier{Address: addr}
	err = n.viewer.View(func(st *state.State, now uint64) error {
		l, err := builtin.BindLedger(st, n.ledger, func() uint64 { return now })
		if err != nil {
			return err
		}
		if res.Enabled, err = l.IsRewardNotifier(addr); err != nil {
			return err
		}
		res.Scheduled, err = scheduled(st, addr, now)
		return err
	})
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, res)
}

func (n *Notifiers) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{address}").
		Methods(http.MethodGet).
		Name("GET /notifiers/{address}").
		HandlerFunc(restutil.WrapHandlerFunc(n.handleGetNotifier))
}
