// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/vechain/stakeledger/builtin/earningpower"
	"github.com/vechain/stakeledger/builtin/earningpower/eligibility"
	"github.com/vechain/stakeledger/builtin/staker"
	"github.com/vechain/stakeledger/thor"
)

const (
	calculatorIdentity    = "identity"
	calculatorEligibility = "eligibility"
)

// Config is the operator configuration of a ledger instance.
type Config struct {
	Admin          thor.Address       `yaml:"admin"`
	RewardSymbol   string             `yaml:"rewardSymbol"`
	StakeSymbol    string             `yaml:"stakeSymbol"`
	MaxBumpTip     string             `yaml:"maxBumpTip"`
	MaxClaimFee    string             `yaml:"maxClaimFee"`
	RewardDuration uint64             `yaml:"rewardDuration"`
	Calculator     string             `yaml:"calculator"`
	Eligibility    *EligibilityConfig `yaml:"eligibility,omitempty"`
	API            APIConfig          `yaml:"api"`
}

type EligibilityConfig struct {
	Oracle            thor.Address `yaml:"oracle"`
	PauseGuardian     thor.Address `yaml:"pauseGuardian"`
	Threshold         uint64       `yaml:"threshold"`
	UpdateDelay       uint64       `yaml:"updateDelay"`
	StaleOracleWindow uint64       `yaml:"staleOracleWindow"`
}

type APIConfig struct {
	Addr           string `yaml:"addr"`
	CORS           string `yaml:"cors"`
	LogsLimit      uint64 `yaml:"logsLimit"`
	BacktraceLimit uint32 `yaml:"backtraceLimit"`
}

func defaultConfig() *Config {
	return &Config{
		RewardSymbol:   "RWD",
		StakeSymbol:    "STK",
		MaxBumpTip:     "0",
		MaxClaimFee:    "0",
		RewardDuration: thor.DefaultRewardDuration,
		Calculator:     calculatorIdentity,
		API: APIConfig{
			Addr:           "localhost:8669",
			LogsLimit:      1000,
			BacktraceLimit: 1000,
		},
	}
}

// loadConfig reads the config file over the defaults. A missing file yields the defaults.
func loadConfig(path string) (*Config, error) {
	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, errors.Wrap(err, "read config")
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parse config %v", path)
	}
	return cfg, nil
}

func saveConfig(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

func parseAmount(s string) (*big.Int, error) {
	v, ok := math.ParseBig256(s)
	if !ok {
		return nil, errors.Errorf("invalid amount %q", s)
	}
	return v, nil
}

// LedgerParams returns the construction params of the ledger.
func (c *Config) LedgerParams(rewardToken, stakeToken thor.Address) (*staker.Params, error) {
	if c.Admin.IsZero() {
		return nil, errors.New("admin not configured")
	}
	maxTip, err := parseAmount(c.MaxBumpTip)
	if err != nil {
		return nil, errors.WithMessage(err, "maxBumpTip")
	}
	maxFee, err := parseAmount(c.MaxClaimFee)
	if err != nil {
		return nil, errors.WithMessage(err, "maxClaimFee")
	}
	calc, err := c.CalculatorAddress()
	if err != nil {
		return nil, err
	}
	return &staker.Params{
		RewardToken:    rewardToken,
		StakeToken:     stakeToken,
		Calculator:     calc,
		Admin:          c.Admin,
		MaxBumpTip:     maxTip,
		MaxClaimFee:    maxFee,
		RewardDuration: c.RewardDuration,
	}, nil
}

func calculatorAddress(name string) (thor.Address, error) {
	switch name {
	case "", calculatorIdentity:
		return earningpower.IdentityAddress, nil
	case calculatorEligibility:
		return eligibilityAddress, nil
	default:
		return thor.Address{}, errors.Errorf("unknown calculator %q", name)
	}
}

func (c *Config) CalculatorAddress() (thor.Address, error) {
	return calculatorAddress(c.Calculator)
}

// EligibilityParams returns the params of the eligibility calculator, nil if not configured.
func (c *Config) EligibilityParams() *eligibility.Params {
	if c.Eligibility == nil {
		return nil
	}
	window := c.Eligibility.StaleOracleWindow
	if window == 0 {
		window = thor.DefaultStaleOracleWindow
	}
	return &eligibility.Params{
		Owner:                  c.Admin,
		Oracle:                 c.Eligibility.Oracle,
		PauseGuardian:          c.Eligibility.PauseGuardian,
		Threshold:              c.Eligibility.Threshold,
		UpdateEligibilityDelay: c.Eligibility.UpdateDelay,
		StaleOracleWindow:      window,
	}
}

// Instance records the addresses deployed by init.
type Instance struct {
	Ledger      thor.Address   `yaml:"ledger"`
	RewardToken thor.Address   `yaml:"rewardToken"`
	StakeToken  thor.Address   `yaml:"stakeToken"`
	Notifiers   []thor.Address `yaml:"notifiers,omitempty"`
}

func loadInstance(path string) (*Instance, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("ledger not initialized, run init first")
		}
		return nil, err
	}
	var inst Instance
	if err := yaml.Unmarshal(data, &inst); err != nil {
		return nil, errors.Wrapf(err, "parse instance %v", path)
	}
	return &inst, nil
}

func saveInstance(path string, inst *Instance) error {
	data, err := yaml.Marshal(inst)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
