// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package admin

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakeledger/api/admin/apilogs"
	"github.com/vechain/stakeledger/api/admin/loglevel"
	"github.com/vechain/stakeledger/health"
)

func TestAdminServer(t *testing.T) {
	var logLevel slog.LevelVar
	logLevel.Set(slog.LevelWarn)
	apiLogs := &atomic.Bool{}

	url, stop, err := StartServer("localhost:0", &logLevel, apiLogs, health.New(false))
	require.NoError(t, err)
	defer stop()

	res, err := http.Post(url+"/loglevel", "application/json", bytes.NewBufferString(`{"level":"debug"}`))
	require.NoError(t, err)
	var lvl loglevel.Response
	require.NoError(t, json.NewDecoder(res.Body).Decode(&lvl))
	res.Body.Close()
	assert.Equal(t, "DEBUG", lvl.CurrentLevel)
	assert.Equal(t, slog.LevelDebug, logLevel.Level())

	res, err = http.Post(url+"/apilogs", "application/json", bytes.NewBufferString(`{"enabled":true}`))
	require.NoError(t, err)
	var status apilogs.LogStatus
	require.NoError(t, json.NewDecoder(res.Body).Decode(&status))
	res.Body.Close()
	assert.True(t, status.Enabled)
	assert.True(t, apiLogs.Load())

	res, err = http.Get(url + "/health")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	res, err = http.Get(url + "/unknown")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}
