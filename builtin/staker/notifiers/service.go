// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package notifiers

import (
	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/builtin/solidity"
	"github.com/vechain/stakeledger/thor"
)

var slotNotifiers = thor.BytesToBytes32([]byte("reward-notifiers"))

// Service is the allow-list of accounts permitted to notify rewards.
type Service struct {
	notifiers *solidity.Mapping[thor.Address, bool]
}

func New(sctx *solidity.Context) *Service {
	return &Service{
		notifiers: solidity.NewMapping[thor.Address, bool](sctx, slotNotifiers),
	}
}

func (s *Service) IsNotifier(addr thor.Address) (bool, error) {
	enabled, err := s.notifiers.Get(addr)
	if err != nil {
		return false, errors.Wrap(err, "failed to get notifier")
	}
	return enabled, nil
}

// Set enables or disables the notifier. Disabled entries are cleared.
func (s *Service) Set(addr thor.Address, enabled bool) error {
	if !enabled {
		s.notifiers.Delete(addr)
		return nil
	}
	return s.notifiers.Set(addr, true)
}
