// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package earningpower defines how staked amounts are turned into a share of the reward stream.
package earningpower

import (
	"math/big"
	"sync"

	"github.com/vechain/stakeledger/thor"
)

// IdentityAddress is where the identity calculator is registered.
var IdentityAddress = thor.BytesToAddress([]byte("IdentityCalculator"))

// Calculator computes the earning power of a deposit.
type Calculator interface {
	// Power returns the earning power of a new or changed deposit.
	Power(amount *big.Int, owner, delegatee thor.Address) (*big.Int, error)
	// UpdatedPower re-evaluates an existing deposit. The bool result tells whether the
	// change is large enough, or old enough, to be applied by a third party.
	UpdatedPower(amount *big.Int, owner, delegatee thor.Address, oldPower *big.Int) (*big.Int, bool, error)
}

// Identity grants earning power equal to the staked amount.
type Identity struct{}

func (Identity) Power(amount *big.Int, _, _ thor.Address) (*big.Int, error) {
	return new(big.Int).Set(amount), nil
}

func (Identity) UpdatedPower(amount *big.Int, _, _ thor.Address, _ *big.Int) (*big.Int, bool, error) {
	return new(big.Int).Set(amount), true, nil
}

// Registry resolves calculator addresses stored by a ledger.
type Registry struct {
	mu          sync.RWMutex
	calculators map[thor.Address]Calculator
}

// NewRegistry returns a registry with the identity calculator installed.
func NewRegistry() *Registry {
	return &Registry{
		calculators: map[thor.Address]Calculator{
			IdentityAddress: Identity{},
		},
	}
}

func (r *Registry) Register(addr thor.Address, calc Calculator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calculators[addr] = calc
}

func (r *Registry) Get(addr thor.Address) (Calculator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	calc, ok := r.calculators[addr]
	return calc, ok
}
