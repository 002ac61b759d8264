// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package factory deploys contracts to addresses derived from the deployer, a salt and the code.
package factory

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/builtin/solidity"
	"github.com/vechain/stakeledger/log"
	"github.com/vechain/stakeledger/state"
	"github.com/vechain/stakeledger/thor"
	"github.com/vechain/stakeledger/xenv"
)

var (
	logger = log.WithContext("pkg", "factory")

	slotNonce = thor.BytesToBytes32([]byte("nonce"))

	// deployerCode marks the factory as installed.
	deployerCode = []byte("deterministic-deployer")
)

// Factory implements native methods of the deployer contract.
type Factory struct {
	addr  thor.Address
	state *state.State
}

// New create a new instance.
func New(addr thor.Address, state *state.State) *Factory {
	return &Factory{addr: addr, state: state}
}

func (f *Factory) Address() thor.Address {
	return f.addr
}

// Install puts the deployer in place. Calling it again has no effect.
func (f *Factory) Install() {
	f.state.SetCode(f.addr, deployerCode)
}

func (f *Factory) Installed() (bool, error) {
	return f.state.Exists(f.addr)
}

// DeterministicAddress returns where code deployed with salt ends up.
func (f *Factory) DeterministicAddress(salt thor.Bytes32, code []byte) thor.Address {
	return thor.CreateDeterministicAddress(f.addr, salt, thor.Keccak256(code))
}

// Deploy places code at its deterministic address. Deploying the same code with
// the same salt again returns the existing address and false.
// Without an installed deployer, the address is derived from the caller and its
// deployment nonce instead, so repeated calls create new instances.
func (f *Factory) Deploy(env *xenv.Environment, salt thor.Bytes32, code []byte) (thor.Address, bool, error) {
	if len(code) == 0 {
		return thor.Address{}, false, errors.New("empty code")
	}
	installed, err := f.Installed()
	if err != nil {
		return thor.Address{}, false, err
	}

	var addr thor.Address
	if installed {
		addr = f.DeterministicAddress(salt, code)
		exists, err := f.state.Exists(addr)
		if err != nil {
			return thor.Address{}, false, err
		}
		if exists {
			logger.Debug("already deployed", "addr", addr)
			return addr, false, nil
		}
	} else {
		addr, err = f.nextContractAddress(env.Caller())
		if err != nil {
			return thor.Address{}, false, err
		}
		logger.Warn("deterministic deployer missing, using nonce address", "deployer", env.Caller(), "addr", addr)
	}

	f.state.SetCode(addr, code)

	caller := env.Caller()
	data, _ := json.Marshal(deployedEvent{Deployer: caller, Salt: salt, Contract: addr, Deterministic: installed})
	env.Emit(&xenv.Event{Address: f.addr, Name: "Deployed", Account: &caller, Data: data})
	return addr, true, nil
}

func (f *Factory) nextContractAddress(deployer thor.Address) (thor.Address, error) {
	nonce := solidity.NewRaw[uint64](solidity.NewContext(deployer, f.state), slotNonce)
	n, err := nonce.Get()
	if err != nil {
		return thor.Address{}, err
	}
	if err := nonce.Set(n + 1); err != nil {
		return thor.Address{}, err
	}
	return thor.CreateContractAddress(deployer, n), nil
}

type deployedEvent struct {
	Deployer      thor.Address `json:"deployer"`
	Salt          thor.Bytes32 `json:"salt"`
	Contract      thor.Address `json:"contract"`
	Deterministic bool         `json:"deterministic"`
}
