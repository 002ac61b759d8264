// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package surrogate keeps one custody account per delegatee. A surrogate holds the stake of
// every deposit delegating to its delegatee, so votes are attributed to the delegatee.
package surrogate

import (
	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/builtin/solidity"
	"github.com/vechain/stakeledger/thor"
)

var slotSurrogates = thor.BytesToBytes32([]byte("surrogates"))

// Address derives the custody address of the delegatee under the ledger.
func Address(ledger, delegatee thor.Address) thor.Address {
	h := thor.Keccak256(ledger.Bytes(), delegatee.Bytes())
	return thor.BytesToAddress(h[12:])
}

type Service struct {
	ledger     thor.Address
	surrogates *solidity.Mapping[thor.Address, thor.Address]
}

func New(sctx *solidity.Context) *Service {
	return &Service{
		ledger:     sctx.Address(),
		surrogates: solidity.NewMapping[thor.Address, thor.Address](sctx, slotSurrogates),
	}
}

// Get returns the surrogate of the delegatee, or the zero address if none was created.
func (s *Service) Get(delegatee thor.Address) (thor.Address, error) {
	addr, err := s.surrogates.Get(delegatee)
	if err != nil {
		return thor.Address{}, errors.Wrap(err, "failed to get surrogate")
	}
	return addr, nil
}

// Create registers the surrogate of the delegatee. It fails if one exists.
func (s *Service) Create(delegatee thor.Address) (thor.Address, error) {
	existing, err := s.Get(delegatee)
	if err != nil {
		return thor.Address{}, err
	}
	if !existing.IsZero() {
		return thor.Address{}, errors.Errorf("surrogate of %v exists", delegatee)
	}
	addr := Address(s.ledger, delegatee)
	if err := s.surrogates.Set(delegatee, addr); err != nil {
		return thor.Address{}, errors.Wrap(err, "failed to set surrogate")
	}
	return addr, nil
}
