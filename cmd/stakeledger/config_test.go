// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakeledger/builtin/earningpower"
	"github.com/vechain/stakeledger/thor"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, defaultConfig(), cfg)

	admin := thor.BytesToAddress([]byte("admin"))
	cfg.Admin = admin
	cfg.MaxBumpTip = "0x64"
	cfg.Eligibility = &EligibilityConfig{Threshold: 50}
	require.NoError(t, saveConfig(path, cfg))

	loaded, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)

	require.NoError(t, os.WriteFile(path, []byte("admin: [\n"), 0600))
	_, err = loadConfig(path)
	assert.Error(t, err)
}

func TestLedgerParams(t *testing.T) {
	reward := thor.BytesToAddress([]byte("reward"))
	stake := thor.BytesToAddress([]byte("stake"))

	cfg := defaultConfig()
	_, err := cfg.LedgerParams(reward, stake)
	assert.EqualError(t, err, "admin not configured")

	cfg.Admin = thor.BytesToAddress([]byte("admin"))
	cfg.MaxBumpTip = "1000"
	cfg.MaxClaimFee = "0x0a"
	p, err := cfg.LedgerParams(reward, stake)
	require.NoError(t, err)
	assert.Equal(t, reward, p.RewardToken)
	assert.Equal(t, stake, p.StakeToken)
	assert.Equal(t, earningpower.IdentityAddress, p.Calculator)
	assert.Equal(t, big.NewInt(1000), p.MaxBumpTip)
	assert.Equal(t, big.NewInt(10), p.MaxClaimFee)
	assert.Equal(t, thor.DefaultRewardDuration, p.RewardDuration)

	cfg.Calculator = calculatorEligibility
	p, err = cfg.LedgerParams(reward, stake)
	require.NoError(t, err)
	assert.Equal(t, eligibilityAddress, p.Calculator)

	cfg.Calculator = "quadratic"
	_, err = cfg.LedgerParams(reward, stake)
	assert.Error(t, err)

	cfg.Calculator = calculatorIdentity
	cfg.MaxBumpTip = "lots"
	_, err = cfg.LedgerParams(reward, stake)
	assert.Error(t, err)
}

func TestEligibilityParams(t *testing.T) {
	cfg := defaultConfig()
	assert.Nil(t, cfg.EligibilityParams())

	cfg.Admin = thor.BytesToAddress([]byte("admin"))
	cfg.Eligibility = &EligibilityConfig{
		Oracle:    thor.BytesToAddress([]byte("oracle")),
		Threshold: 75,
	}
	p := cfg.EligibilityParams()
	require.NotNil(t, p)
	assert.Equal(t, cfg.Admin, p.Owner)
	assert.Equal(t, cfg.Eligibility.Oracle, p.Oracle)
	assert.Equal(t, uint64(75), p.Threshold)
	assert.Equal(t, thor.DefaultStaleOracleWindow, p.StaleOracleWindow)
}

func TestInstance(t *testing.T) {
	path := filepath.Join(t.TempDir(), "instance.yaml")
	_, err := loadInstance(path)
	assert.Error(t, err)

	inst := &Instance{
		Ledger:      thor.BytesToAddress([]byte("ledger")),
		RewardToken: thor.BytesToAddress([]byte("reward")),
		StakeToken:  thor.BytesToAddress([]byte("stake")),
		Notifiers:   []thor.Address{thor.BytesToAddress([]byte("n1"))},
	}
	require.NoError(t, saveInstance(path, inst))
	loaded, err := loadInstance(path)
	require.NoError(t, err)
	assert.Equal(t, inst, loaded)
}
